package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, record *entity.SessionRecord) error
	GetByID(ctx context.Context, id string) (*entity.SessionRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

// SessionDefaults - mode and difficulty of sessions created without an explicit choice.
type SessionDefaults struct {
	Mode       entity.GameMode
	Difficulty entity.Difficulty
}

type liveSession struct {
	mu        sync.Mutex
	game      *GameSession
	touchedAt time.Time
	// removed is set under mu once the session left the map; holders must look it up again.
	removed bool
}

// SessionManager - keeps live sessions in memory and mirrors their latest state to the repository.
// Events on one session are serialized; different sessions proceed in parallel.
type SessionManager struct {
	logger   *slog.Logger
	repo     sessionRepo
	newBot   BotFactory
	defaults SessionDefaults
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*liveSession
}

func NewSessionManager(logger *slog.Logger, repo sessionRepo, newBot BotFactory, defaults SessionDefaults) *SessionManager {
	return &SessionManager{
		logger:   logger.With("component", "session_manager"),
		repo:     repo,
		newBot:   newBot,
		defaults: defaults,
		now:      time.Now,
		sessions: make(map[string]*liveSession),
	}
}

// CreateSession - starts a new session. Empty mode or difficulty fall back to the defaults.
func (that *SessionManager) CreateSession(ctx context.Context, mode entity.GameMode, level entity.Difficulty) (*entity.Snapshot, error) {
	if mode == "" {
		mode = that.defaults.Mode
	}

	if level == "" {
		level = that.defaults.Difficulty
	}

	game, err := NewGameSession(that.logger, uuid.NewString(), mode, level, that.newBot)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	live := &liveSession{game: game, touchedAt: that.now()}

	that.mu.Lock()
	that.sessions[game.ID()] = live
	that.mu.Unlock()

	that.save(ctx, game)
	that.logger.Info("session created", "sessionID", game.ID(), "mode", mode, "difficulty", level)

	snapshot := game.Snapshot()

	return &snapshot, nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.Snapshot, error) {
	return that.withSession(ctx, id, false, func(game *GameSession) (entity.Snapshot, error) {
		return game.Snapshot(), nil
	})
}

func (that *SessionManager) SubmitMove(ctx context.Context, id string, cell int) (*entity.Snapshot, error) {
	return that.withSession(ctx, id, true, func(game *GameSession) (entity.Snapshot, error) {
		return game.SubmitHumanMove(cell), nil
	})
}

func (that *SessionManager) Reset(ctx context.Context, id string) (*entity.Snapshot, error) {
	return that.withSession(ctx, id, true, func(game *GameSession) (entity.Snapshot, error) {
		return game.ResetGame(), nil
	})
}

func (that *SessionManager) SetMode(ctx context.Context, id string, mode entity.GameMode) (*entity.Snapshot, error) {
	return that.withSession(ctx, id, true, func(game *GameSession) (entity.Snapshot, error) {
		return game.SetMode(mode)
	})
}

func (that *SessionManager) SetDifficulty(ctx context.Context, id string, level entity.Difficulty) (*entity.Snapshot, error) {
	return that.withSession(ctx, id, true, func(game *GameSession) (entity.Snapshot, error) {
		return game.SetDifficulty(level)
	})
}

// DeleteSession - forgets the session in memory and in the repository.
// It waits for an event in progress, so nothing is saved after the delete.
func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	for {
		that.mu.Lock()
		live, inMemory := that.sessions[id]
		if !inMemory {
			// held so that no restore of id runs concurrently
			err := that.deleteRecord(ctx, id, false)
			that.mu.Unlock()
			return err
		}
		that.mu.Unlock()

		live.mu.Lock()
		if live.removed {
			// evicted meanwhile, the record is still in the repository
			live.mu.Unlock()
			continue
		}

		that.mu.Lock()
		delete(that.sessions, id)
		that.mu.Unlock()

		live.removed = true
		err := that.deleteRecord(ctx, id, true)
		live.mu.Unlock()

		return err
	}
}

func (that *SessionManager) deleteRecord(ctx context.Context, id string, inMemory bool) error {
	err := that.repo.DeleteByID(ctx, id)
	if errors.Is(err, apperror.ErrSessionNotFound) && inMemory {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session deleted", "sessionID", id)

	return nil
}

// EvictIdle - drops in-memory sessions untouched for longer than maxIdle and returns how many went.
// The repository copy stays, so an evicted session is restored on its next event.
func (that *SessionManager) EvictIdle(maxIdle time.Duration) int {
	deadline := that.now().Add(-maxIdle)

	that.mu.Lock()
	defer that.mu.Unlock()

	evicted := 0
	for id, live := range that.sessions {
		if !live.mu.TryLock() {
			continue
		}

		if live.touchedAt.Before(deadline) {
			delete(that.sessions, id)
			live.removed = true
			evicted++
		}
		live.mu.Unlock()
	}

	if evicted > 0 {
		that.logger.Info("idle sessions evicted", "count", evicted, "remaining", len(that.sessions))
	}

	return evicted
}

func (that *SessionManager) withSession(
	ctx context.Context,
	id string,
	persist bool,
	event func(game *GameSession) (entity.Snapshot, error),
) (*entity.Snapshot, error) {
	for {
		live, err := that.getOrRestore(ctx, id)
		if err != nil {
			return nil, err
		}

		live.mu.Lock()
		if live.removed {
			// deleted or evicted while we waited, look it up again
			live.mu.Unlock()
			continue
		}

		snapshot, err := event(live.game)
		live.touchedAt = that.now()
		if err == nil && persist {
			that.save(ctx, live.game)
		}
		live.mu.Unlock()

		if err != nil {
			return nil, err
		}

		return &snapshot, nil
	}
}

// getOrRestore - returns the live session, loading it from the repository on a miss.
// Restores run under the manager lock so they cannot interleave with a delete of the same id.
func (that *SessionManager) getOrRestore(ctx context.Context, id string) (*liveSession, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if live, ok := that.sessions[id]; ok {
		return live, nil
	}

	record, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	game, err := RestoreGameSession(that.logger, record, that.newBot)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	// the pending bot move was played during the restore
	if game.Record() != *record {
		that.save(ctx, game)
	}

	live := &liveSession{game: game, touchedAt: that.now()}
	that.sessions[id] = live
	that.logger.Info("session restored", "sessionID", id)

	return live, nil
}

func (that *SessionManager) save(ctx context.Context, game *GameSession) {
	record := game.Record()
	if err := that.repo.CreateOrUpdate(ctx, &record); err != nil {
		that.logger.Error("failed to save session", "sessionID", game.ID(), "error", err)
	}
}
