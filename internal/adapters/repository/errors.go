package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnknownField     = errors.New("unknown collection or field")
	ErrDuplicateKey     = errors.New("duplicate key for unique index")
	ErrUnknownDriver    = errors.New("unknown store driver")
)
