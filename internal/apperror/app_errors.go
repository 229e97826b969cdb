package apperror

import "errors"

var (
	ErrInvalidMove          = errors.New("invalid move")
	ErrInvalidCell          = errors.New("invalid cell index")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrGameFinished         = errors.New("game is already finished")
	ErrNoAvailableMoves     = errors.New("no available moves")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrSessionNotFound      = errors.New("session not found")
)
