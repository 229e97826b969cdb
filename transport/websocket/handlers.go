package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

func (that *Server) handleMove(ctx context.Context, sessionID string, msg *Message) (*entity.Snapshot, error) {
	var payload MovePayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}

	if payload.Cell == nil {
		return nil, errCellRequired
	}

	snapshot, err := that.sessions.SubmitMove(ctx, sessionID, *payload.Cell)
	if err != nil {
		return nil, fmt.Errorf("failed to submit move: %w", err)
	}

	return snapshot, nil
}

func (that *Server) handleReset(ctx context.Context, sessionID string, _ *Message) (*entity.Snapshot, error) {
	snapshot, err := that.sessions.Reset(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	return snapshot, nil
}

func (that *Server) handleMode(ctx context.Context, sessionID string, msg *Message) (*entity.Snapshot, error) {
	var payload ModePayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}

	mode, err := entity.ParseGameMode(payload.Mode)
	if err != nil {
		return nil, err
	}

	snapshot, err := that.sessions.SetMode(ctx, sessionID, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to set mode: %w", err)
	}

	return snapshot, nil
}

func (that *Server) handleDifficulty(ctx context.Context, sessionID string, msg *Message) (*entity.Snapshot, error) {
	var payload DifficultyPayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}

	level, err := entity.ParseDifficulty(payload.Difficulty)
	if err != nil {
		return nil, err
	}

	snapshot, err := that.sessions.SetDifficulty(ctx, sessionID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to set difficulty: %w", err)
	}

	return snapshot, nil
}

func (that *Server) handleState(ctx context.Context, sessionID string, _ *Message) (*entity.Snapshot, error) {
	snapshot, err := that.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return snapshot, nil
}

func decodePayload(msg *Message, dst any) error {
	if len(msg.Payload) == 0 {
		return errMalformedPayload
	}

	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: %w", errMalformedPayload, err)
	}

	return nil
}
