package service

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

// BotStrategy - picks the cell the bot plays next. mark is the bot's mark; the human plays mark.Opponent().
// Callers ask only while the game is ongoing.
type BotStrategy interface {
	ChooseCell(board entity.Board, mark entity.Mark) (int, error)
}

// RandomSource - the part of *rand.Rand the bots use. Injected so tests can seed it.
type RandomSource interface {
	Intn(n int) int
}

// NewBotStrategy - returns the bot for the difficulty level.
func NewBotStrategy(level entity.Difficulty, rnd RandomSource) (BotStrategy, error) {
	switch level {
	case entity.DifficultyRandom:
		return NewRandomBot(rnd), nil
	case entity.DifficultyHeuristic:
		return NewHeuristicBot(rnd), nil
	case entity.DifficultyOptimal:
		return NewOptimalBot(), nil
	default:
		return nil, fmt.Errorf("%w: unknown difficulty %q", apperror.ErrInvalidConfiguration, level)
	}
}

type randomBot struct {
	rnd RandomSource
}

func NewRandomBot(rnd RandomSource) BotStrategy {
	return &randomBot{rnd: rnd}
}

func (that *randomBot) ChooseCell(board entity.Board, _ entity.Mark) (int, error) {
	return pickRandom(that.rnd, tictactoe.EmptyCells(board))
}

type optimalBot struct{}

func NewOptimalBot() BotStrategy {
	return &optimalBot{}
}

func (that *optimalBot) ChooseCell(board entity.Board, mark entity.Mark) (int, error) {
	cell := BestMove(board, mark)
	if cell < 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	return cell, nil
}

func pickRandom(rnd RandomSource, cells []int) (int, error) {
	if len(cells) == 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	return cells[rnd.Intn(len(cells))], nil
}
