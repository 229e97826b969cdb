package service

import (
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type heuristicBot struct {
	rnd      RandomSource
	fallback BotStrategy
}

// NewHeuristicBot - rule based bot: win, block, center, corner, edge.
func NewHeuristicBot(rnd RandomSource) BotStrategy {
	return &heuristicBot{
		rnd:      rnd,
		fallback: NewRandomBot(rnd),
	}
}

func (that *heuristicBot) ChooseCell(board entity.Board, mark entity.Mark) (int, error) {
	if cell, ok := findWinningCell(board, mark); ok {
		return cell, nil
	}

	if cell, ok := findWinningCell(board, mark.Opponent()); ok {
		return cell, nil
	}

	if board[entity.CenterCell] == entity.EmptyCell {
		return entity.CenterCell, nil
	}

	if corners := freeCells(board, entity.CornerCells[:]); len(corners) > 0 {
		return pickRandom(that.rnd, corners)
	}

	if edges := freeCells(board, entity.EdgeCells[:]); len(edges) > 0 {
		return pickRandom(that.rnd, edges)
	}

	// unreachable while the board has an empty cell
	return that.fallback.ChooseCell(board, mark)
}

// findWinningCell - first empty cell, in index order, that completes a line for mark.
func findWinningCell(board entity.Board, mark entity.Mark) (int, bool) {
	for _, cell := range tictactoe.EmptyCells(board) {
		var wins bool
		tictactoe.TryMove(&board, cell, mark, func(trial *entity.Board) {
			outcome := tictactoe.Evaluate(*trial)
			wins = outcome.IsWin() && outcome.Winner == mark
		})

		if wins {
			return cell, true
		}
	}

	return 0, false
}

func freeCells(board entity.Board, candidates []int) []int {
	free := make([]int, 0, len(candidates))
	for _, cell := range candidates {
		if board[cell] == entity.EmptyCell {
			free = append(free, cell)
		}
	}

	return free
}
