package generator

import (
	"errors"
	"fmt"
)

// Sentinel kinds for generation errors.
var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrWorkerFailed  = errors.New("match worker failed")
)

// WorkerError reports the first worker failure of a generation run.
type WorkerError struct {
	WorkerID int
	Err      error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.WorkerID, e.Err)
}

// Unwrap exposes the cause.
func (e *WorkerError) Unwrap() error {
	return e.Err
}

// Is matches ErrWorkerFailed.
func (e *WorkerError) Is(target error) bool {
	return target == ErrWorkerFailed
}
