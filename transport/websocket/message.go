package websocket

import (
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	ActionMove       = "game:move"
	ActionReset      = "game:reset"
	ActionMode       = "game:mode"
	ActionDifficulty = "game:difficulty"
	ActionState      = "game:state"
	ActionError      = "error"
)

var (
	errMalformedMessage = errors.New("malformed message")
	errMalformedPayload = errors.New("malformed payload")
	errUnknownAction    = errors.New("unknown action")
	errCellRequired     = errors.New("cell is required")
	errInternal         = errors.New("internal server error")
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	Cell *int `json:"cell"`
}

type ModePayload struct {
	Mode string `json:"mode"`
}

type DifficultyPayload struct {
	Difficulty string `json:"difficulty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// publicError - the part of err a client may see.
func publicError(err error) error {
	switch {
	case errors.Is(err, apperror.ErrInvalidConfiguration),
		errors.Is(err, errMalformedPayload),
		errors.Is(err, errCellRequired):
		return err
	case errors.Is(err, apperror.ErrSessionNotFound):
		return apperror.ErrSessionNotFound
	default:
		return errInternal
	}
}
