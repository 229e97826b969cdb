package service

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	winScore  = 10
	lossScore = -10
	drawScore = 0
)

// BestMove - exhaustive minimax for mark. Scores carry no depth discount, so among equally good
// cells the lowest index is played. Returns -1 when the board has no empty cell.
func BestMove(board entity.Board, mark entity.Mark) int {
	bestCell := -1
	bestScore := math.MinInt

	for _, cell := range tictactoe.EmptyCells(board) {
		var score int
		tictactoe.TryMove(&board, cell, mark, func(trial *entity.Board) {
			score = minimax(trial, mark, false)
		})

		if score > bestScore {
			bestScore = score
			bestCell = cell
		}
	}

	return bestCell
}

// Score - value of the position for mark when mark is the side to move.
func Score(board entity.Board, mark entity.Mark) int {
	return minimax(&board, mark, true)
}

// minimax - mark maximizes, its opponent minimizes. board is mutated during the walk and restored before return.
func minimax(board *entity.Board, mark entity.Mark, maximizing bool) int {
	if score, ok := terminalScore(*board, mark); ok {
		return score
	}

	if maximizing {
		best := math.MinInt
		for cell := range board {
			if board[cell] != entity.EmptyCell {
				continue
			}

			tictactoe.TryMove(board, cell, mark, func(trial *entity.Board) {
				best = max(best, minimax(trial, mark, false))
			})
		}

		return best
	}

	best := math.MaxInt
	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		tictactoe.TryMove(board, cell, mark.Opponent(), func(trial *entity.Board) {
			best = min(best, minimax(trial, mark, true))
		})
	}

	return best
}

func terminalScore(board entity.Board, mark entity.Mark) (int, bool) {
	switch {
	case tictactoe.HasWon(board, mark):
		return winScore, true
	case tictactoe.HasWon(board, mark.Opponent()):
		return lossScore, true
	case tictactoe.IsFull(board):
		return drawScore, true
	default:
		return 0, false
	}
}
