package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis down")

// memoryRepo stands in for the redis repository.
type memoryRepo struct {
	mu       sync.Mutex
	records  map[string]entity.SessionRecord
	saveErr  error
	saveHits int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]entity.SessionRecord)}
}

func (that *memoryRepo) CreateOrUpdate(_ context.Context, record *entity.SessionRecord) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.saveHits++
	if that.saveErr != nil {
		return that.saveErr
	}

	that.records[record.ID] = *record

	return nil
}

func (that *memoryRepo) GetByID(_ context.Context, id string) (*entity.SessionRecord, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	record, ok := that.records[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	return &record, nil
}

func (that *memoryRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.records[id]; !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.records, id)

	return nil
}

func (that *memoryRepo) get(id string) (entity.SessionRecord, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	record, ok := that.records[id]

	return record, ok
}

func newTestManager(repo *memoryRepo) *SessionManager {
	return NewSessionManager(discardLogger(), repo, realBots, SessionDefaults{
		Mode:       entity.ModeHumanVsOpponent,
		Difficulty: entity.DifficultyOptimal,
	})
}

func TestSessionManager_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses defaults and persists the session", func(t *testing.T) {
		// Given: a manager with an empty repository
		repo := newMemoryRepo()
		manager := newTestManager(repo)

		// When: creating a session without a preference
		snapshot, err := manager.CreateSession(ctx, "", "")

		// Then: the defaults apply and the record is stored
		require.NoError(t, err)
		assert.NotEmpty(t, snapshot.ID)
		assert.Equal(t, entity.ModeHumanVsOpponent, snapshot.Mode)
		assert.Equal(t, entity.DifficultyOptimal, snapshot.Difficulty)

		record, ok := repo.get(snapshot.ID)
		require.True(t, ok)
		assert.Equal(t, entity.Board{}, record.Board)
		assert.Equal(t, x, record.Turn)
	})

	t.Run("Explicit configuration", func(t *testing.T) {
		manager := newTestManager(newMemoryRepo())

		snapshot, err := manager.CreateSession(ctx, entity.ModeHumanVsHuman, entity.DifficultyRandom)

		require.NoError(t, err)
		assert.Equal(t, entity.ModeHumanVsHuman, snapshot.Mode)
		assert.Equal(t, entity.DifficultyRandom, snapshot.Difficulty)
	})

	t.Run("Invalid configuration", func(t *testing.T) {
		manager := newTestManager(newMemoryRepo())

		_, err := manager.CreateSession(ctx, entity.GameMode("online"), "")

		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
	})

	t.Run("Repository failure does not fail the game", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.saveErr = errRedisDown
		manager := newTestManager(repo)

		snapshot, err := manager.CreateSession(ctx, "", "")
		require.NoError(t, err)

		snapshot, err = manager.SubmitMove(ctx, snapshot.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, o, snapshot.Board[4])
	})
}

func TestSessionManager_Events(t *testing.T) {
	ctx := context.Background()

	t.Run("Move is answered and persisted", func(t *testing.T) {
		// Given: a session against the optimal bot
		repo := newMemoryRepo()
		manager := newTestManager(repo)
		created, err := manager.CreateSession(ctx, "", "")
		require.NoError(t, err)

		// When: the human plays a corner
		snapshot, err := manager.SubmitMove(ctx, created.ID, 0)

		// Then: the reply is in the snapshot and in the repository
		require.NoError(t, err)
		assert.Equal(t, entity.Board{x, e, e, e, o, e, e, e, e}, snapshot.Board)

		record, ok := repo.get(created.ID)
		require.True(t, ok)
		assert.Equal(t, snapshot.Board, record.Board)
	})

	t.Run("Reset, mode and difficulty", func(t *testing.T) {
		manager := newTestManager(newMemoryRepo())
		created, err := manager.CreateSession(ctx, "", "")
		require.NoError(t, err)

		_, err = manager.SubmitMove(ctx, created.ID, 0)
		require.NoError(t, err)

		snapshot, err := manager.Reset(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, snapshot.Board)

		snapshot, err = manager.SetMode(ctx, created.ID, entity.ModeHumanVsHuman)
		require.NoError(t, err)
		assert.Equal(t, entity.ModeHumanVsHuman, snapshot.Mode)

		snapshot, err = manager.SetDifficulty(ctx, created.ID, entity.DifficultyHeuristic)
		require.NoError(t, err)
		assert.Equal(t, entity.DifficultyHeuristic, snapshot.Difficulty)

		_, err = manager.SetDifficulty(ctx, created.ID, entity.Difficulty("hard"))
		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)

		snapshot, err = manager.GetSession(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.DifficultyHeuristic, snapshot.Difficulty)
	})

	t.Run("Unknown session", func(t *testing.T) {
		manager := newTestManager(newMemoryRepo())

		_, err := manager.SubmitMove(ctx, "missing", 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Concurrent moves on one session are serialized", func(t *testing.T) {
		// Given: a two player session
		manager := newTestManager(newMemoryRepo())
		created, err := manager.CreateSession(ctx, entity.ModeHumanVsHuman, "")
		require.NoError(t, err)

		// When: every cell is clicked at the same time
		var wg sync.WaitGroup
		for cell := 0; cell < entity.BoardSize; cell++ {
			cell := cell
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = manager.SubmitMove(ctx, created.ID, cell)
			}()
		}
		wg.Wait()

		// Then: the marks still alternate
		snapshot, err := manager.GetSession(ctx, created.ID)
		require.NoError(t, err)

		var xCount, oCount int
		for _, mark := range snapshot.Board {
			switch mark {
			case x:
				xCount++
			case o:
				oCount++
			}
		}
		assert.Contains(t, []int{0, 1}, xCount-oCount, fmt.Sprintf("board %v", snapshot.Board))
	})
}

func TestSessionManager_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Evicted session is restored from the repository", func(t *testing.T) {
		// Given: a session with one move and a clock we control
		repo := newMemoryRepo()
		manager := newTestManager(repo)
		now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
		manager.now = func() time.Time { return now }

		created, err := manager.CreateSession(ctx, "", "")
		require.NoError(t, err)
		played, err := manager.SubmitMove(ctx, created.ID, 0)
		require.NoError(t, err)

		// When: the session sits idle past the limit
		now = now.Add(time.Hour)
		evicted := manager.EvictIdle(30 * time.Minute)

		// Then: it leaves memory but comes back with its board
		assert.Equal(t, 1, evicted)

		restored, err := manager.GetSession(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, played.Board, restored.Board)
		assert.Equal(t, played.State, restored.State)
	})

	t.Run("Fresh sessions are kept", func(t *testing.T) {
		manager := newTestManager(newMemoryRepo())
		_, err := manager.CreateSession(ctx, "", "")
		require.NoError(t, err)

		assert.Zero(t, manager.EvictIdle(time.Minute))
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newMemoryRepo()
		manager := newTestManager(repo)
		created, err := manager.CreateSession(ctx, "", "")
		require.NoError(t, err)

		require.NoError(t, manager.DeleteSession(ctx, created.ID))

		_, ok := repo.get(created.ID)
		assert.False(t, ok)

		_, err = manager.GetSession(ctx, created.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)

		err = manager.DeleteSession(ctx, created.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

// gateBot holds every move until released.
type gateBot struct {
	entered chan struct{}
	release chan struct{}
}

func (that *gateBot) ChooseCell(board entity.Board, _ entity.Mark) (int, error) {
	that.entered <- struct{}{}
	<-that.release

	for cell, mark := range board {
		if mark.IsEmpty() {
			return cell, nil
		}
	}

	return 0, apperror.ErrNoAvailableMoves
}

func TestSessionManager_Races(t *testing.T) {
	ctx := context.Background()

	t.Run("Delete during a bot turn stays deleted", func(t *testing.T) {
		// Given: a bot that is thinking about its reply
		repo := newMemoryRepo()
		bot := &gateBot{entered: make(chan struct{}, 1), release: make(chan struct{})}
		manager := NewSessionManager(discardLogger(), repo, func(entity.Difficulty) (service.BotStrategy, error) {
			return bot, nil
		}, SessionDefaults{Mode: entity.ModeHumanVsOpponent, Difficulty: entity.DifficultyRandom})

		created, err := manager.CreateSession(ctx, "", "")
		require.NoError(t, err)

		moveDone := make(chan error, 1)
		go func() {
			_, moveErr := manager.SubmitMove(ctx, created.ID, 0)
			moveDone <- moveErr
		}()
		<-bot.entered

		// When: the session is deleted before the bot answers
		deleteDone := make(chan error, 1)
		go func() {
			deleteDone <- manager.DeleteSession(ctx, created.ID)
		}()

		select {
		case <-deleteDone:
			t.Fatal("delete returned while the move was still running")
		case <-time.After(50 * time.Millisecond):
		}

		close(bot.release)

		// Then: the move finishes first and the delete wins
		require.NoError(t, <-moveDone)
		require.NoError(t, <-deleteDone)

		_, ok := repo.get(created.ID)
		assert.False(t, ok)

		_, err = manager.GetSession(ctx, created.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Event waiting on an evicted session reloads it", func(t *testing.T) {
		// Given: a two player session held by someone else
		repo := newMemoryRepo()
		manager := newTestManager(repo)
		created, err := manager.CreateSession(ctx, entity.ModeHumanVsHuman, "")
		require.NoError(t, err)

		manager.mu.Lock()
		live := manager.sessions[created.ID]
		manager.mu.Unlock()
		live.mu.Lock()

		moveDone := make(chan *entity.Snapshot, 1)
		go func() {
			snapshot, _ := manager.SubmitMove(ctx, created.ID, 4)
			moveDone <- snapshot
		}()
		time.Sleep(20 * time.Millisecond)

		// When: the session is evicted before the waiting move gets it
		manager.mu.Lock()
		delete(manager.sessions, created.ID)
		live.removed = true
		manager.mu.Unlock()
		live.mu.Unlock()

		// Then: the move lands on a fresh copy and is saved
		snapshot := <-moveDone
		require.NotNil(t, snapshot)
		assert.Equal(t, x, snapshot.Board[4])

		record, ok := repo.get(created.ID)
		require.True(t, ok)
		assert.Equal(t, x, record.Board[4])

		manager.mu.Lock()
		assert.NotSame(t, live, manager.sessions[created.ID])
		manager.mu.Unlock()
	})

	t.Run("Bot move played on restore is saved", func(t *testing.T) {
		// Given: a record where the bot was due to answer
		repo := newMemoryRepo()
		repo.records["pending"] = entity.SessionRecord{
			ID:         "pending",
			Board:      entity.Board{x, e, e, e, e, e, e, e, e},
			Turn:       o,
			Mode:       entity.ModeHumanVsOpponent,
			Difficulty: entity.DifficultyOptimal,
		}
		manager := newTestManager(repo)

		// When: the session is only read
		snapshot, err := manager.GetSession(ctx, "pending")

		// Then: the bot's reply is in the repository too
		require.NoError(t, err)
		assert.Equal(t, o, snapshot.Board[4])

		record, ok := repo.get("pending")
		require.True(t, ok)
		assert.Equal(t, snapshot.Board, record.Board)
		assert.Equal(t, x, record.Turn)
	})
}
