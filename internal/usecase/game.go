package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

// BotFactory - builds the bot for a difficulty level.
type BotFactory func(level entity.Difficulty) (service.BotStrategy, error)

// GameSession - one game with its board, turn, mode and bot.
// It is not safe for concurrent use; callers deliver one event at a time.
type GameSession struct {
	logger *slog.Logger

	id         string
	board      entity.Board
	turn       entity.Mark
	state      entity.SessionState
	mode       entity.GameMode
	difficulty entity.Difficulty

	newBot BotFactory
	bot    service.BotStrategy
}

func NewGameSession(logger *slog.Logger, id string, mode entity.GameMode, level entity.Difficulty, newBot BotFactory) (*GameSession, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown game mode %q", apperror.ErrInvalidConfiguration, mode)
	}

	bot, err := newBot(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	session := &GameSession{
		logger:     logger.With("sessionID", id),
		id:         id,
		mode:       mode,
		difficulty: level,
		newBot:     newBot,
		bot:        bot,
	}
	session.reset()

	return session, nil
}

// RestoreGameSession - rebuilds a session from its record. If the bot was due to move, it moves now.
func RestoreGameSession(logger *slog.Logger, record *entity.SessionRecord, newBot BotFactory) (*GameSession, error) {
	session, err := NewGameSession(logger, record.ID, record.Mode, record.Difficulty, newBot)
	if err != nil {
		return nil, err
	}

	for i, mark := range record.Board {
		if !mark.IsValid() {
			return nil, fmt.Errorf("%w: cell %d holds %q", apperror.ErrInvalidConfiguration, i, mark)
		}
	}

	if record.Turn != tictactoe.NextTurn(record.Board) {
		return nil, fmt.Errorf("%w: turn %q does not match the board", apperror.ErrInvalidConfiguration, record.Turn)
	}

	session.board = record.Board
	session.turn = record.Turn
	session.state = session.nextState()

	if session.state == entity.StateAwaitingOpponentMove {
		if err = session.playBotTurn(); err != nil {
			session.logger.Error("bot failed to move after restore", "error", err)
		}
	}

	return session, nil
}

func (that *GameSession) ID() string {
	return that.id
}

// SubmitHumanMove - plays cell for the human to move. Moves on an occupied or unknown cell,
// or on a finished game, are ignored: the returned snapshot is simply unchanged.
func (that *GameSession) SubmitHumanMove(cell int) entity.Snapshot {
	log := that.logger.With("method", "SubmitHumanMove", "cell", cell)

	if that.state == entity.StateAwaitingOpponentMove {
		// an earlier bot turn failed, give it another go before the human
		if err := that.playBotTurn(); err != nil {
			log.Error("bot failed to make turn", "error", err)
			return that.Snapshot()
		}
	}

	if that.state != entity.StateAwaitingHumanMove {
		log.Debug("move ignored", "state", that.state)
		return that.Snapshot()
	}

	if err := that.applyMove(cell); err != nil {
		log.Debug("move ignored", "error", err)
		return that.Snapshot()
	}

	if that.state == entity.StateAwaitingOpponentMove {
		if err := that.playBotTurn(); err != nil {
			log.Error("bot failed to make turn", "error", err)
		}
	}

	if that.state == entity.StateTerminal {
		outcome := tictactoe.Evaluate(that.board)
		log.Info("game finished", "outcome", outcome.Status, "winner", outcome.Winner)
	}

	return that.Snapshot()
}

// ResetGame - starts a new game with the current mode and difficulty.
func (that *GameSession) ResetGame() entity.Snapshot {
	that.reset()
	that.logger.Info("game reset", "mode", that.mode, "difficulty", that.difficulty)

	return that.Snapshot()
}

// SetMode - switches the mode and starts a new game. An unknown mode is rejected and nothing changes.
func (that *GameSession) SetMode(mode entity.GameMode) (entity.Snapshot, error) {
	if !mode.IsValid() {
		return that.Snapshot(), fmt.Errorf("%w: unknown game mode %q", apperror.ErrInvalidConfiguration, mode)
	}

	that.mode = mode

	return that.ResetGame(), nil
}

// SetDifficulty - switches the bot and starts a new game. An unknown level is rejected and nothing changes.
func (that *GameSession) SetDifficulty(level entity.Difficulty) (entity.Snapshot, error) {
	bot, err := that.newBot(level)
	if err != nil {
		return that.Snapshot(), fmt.Errorf("failed to create bot: %w", err)
	}

	that.bot = bot
	that.difficulty = level

	return that.ResetGame(), nil
}

func (that *GameSession) Snapshot() entity.Snapshot {
	turn := that.turn
	if that.state == entity.StateTerminal {
		turn = entity.EmptyCell
	}

	return entity.Snapshot{
		ID:         that.id,
		Board:      that.board,
		Turn:       turn,
		State:      that.state,
		Mode:       that.mode,
		Difficulty: that.difficulty,
		Outcome:    tictactoe.Evaluate(that.board),
	}
}

func (that *GameSession) Record() entity.SessionRecord {
	return entity.SessionRecord{
		ID:         that.id,
		Board:      that.board,
		Turn:       that.turn,
		Mode:       that.mode,
		Difficulty: that.difficulty,
	}
}

func (that *GameSession) reset() {
	that.board = entity.Board{}
	that.turn = entity.HumanMark
	that.state = entity.StateAwaitingHumanMove
}

// applyMove - plays the side to move and advances turn and state.
func (that *GameSession) applyMove(cell int) error {
	if err := tictactoe.ApplyMove(&that.board, cell, that.turn); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	that.turn = that.turn.Opponent()
	that.state = that.nextState()

	return nil
}

func (that *GameSession) playBotTurn() error {
	cell, err := that.bot.ChooseCell(that.board, that.turn)
	if err != nil {
		return fmt.Errorf("bot failed to choose cell: %w", err)
	}

	if err = that.applyMove(cell); err != nil {
		return fmt.Errorf("bot chose cell %d: %w", cell, err)
	}

	that.logger.Debug("bot made turn", "cell", cell, "difficulty", that.difficulty)

	if that.difficulty == entity.DifficultyOptimal && that.logger.Enabled(context.Background(), slog.LevelDebug) {
		that.logger.Debug("position score", "toMove", that.turn, "score", service.Score(that.board, that.turn))
	}

	return nil
}

func (that *GameSession) nextState() entity.SessionState {
	switch {
	case tictactoe.IsTerminal(that.board):
		return entity.StateTerminal
	case that.mode == entity.ModeHumanVsOpponent && that.turn == entity.BotMark:
		return entity.StateAwaitingOpponentMove
	default:
		return entity.StateAwaitingHumanMove
	}
}
