package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// ApplyMove - puts mark into cell. On error the board is left untouched and the error wraps apperror.ErrInvalidMove.
func ApplyMove(board *entity.Board, cell int, mark entity.Mark) error {
	if err := validateMove(board, cell, mark); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	board[cell] = mark

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(board *entity.Board, cell int, mark entity.Mark) error {
	if mark != entity.PlayerX && mark != entity.PlayerO {
		return fmt.Errorf("unknown mark %q", mark)
	}

	if cell < 0 || cell >= len(board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if IsTerminal(*board) {
		return apperror.ErrGameFinished
	}

	if !board[cell].IsEmpty() {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

// TryMove - places mark into an empty cell, calls inspect and always clears the cell again.
// The caller guarantees the cell is empty; it is the trial step of look-ahead and search.
func TryMove(board *entity.Board, cell int, mark entity.Mark, inspect func(board *entity.Board)) {
	board[cell] = mark
	defer func() { board[cell] = entity.EmptyCell }()

	inspect(board)
}

func IsFull(board entity.Board) bool {
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells - indices of free cells in ascending order.
func EmptyCells(board entity.Board) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// NextTurn - the side to move on a board played from empty with X first.
func NextTurn(board entity.Board) entity.Mark {
	var xCount, oCount int
	for _, cell := range board {
		switch cell {
		case entity.PlayerX:
			xCount++
		case entity.PlayerO:
			oCount++
		}
	}

	if xCount > oCount {
		return entity.PlayerO
	}

	return entity.PlayerX
}
