package model

import "errors"

// Sentinel kinds for entity validation.
var (
	ErrSamePlayers          = errors.New("player1 and player2 must differ")
	ErrWinnerNotParticipant = errors.New("winner must be one of the two players")
	ErrUnknownSurface       = errors.New("unknown surface")
)
