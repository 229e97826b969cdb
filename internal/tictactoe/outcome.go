package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

// Evaluate - derives the outcome of a board. It never mutates the board, so it is safe on trial positions.
func Evaluate(board entity.Board) entity.Outcome {
	if line, winner, ok := findWinningLine(board); ok {
		return entity.Outcome{
			Status: entity.OutcomeWin,
			Winner: winner,
			Line:   &line,
		}
	}

	// the game will continue until all the squares are full
	if IsFull(board) {
		return entity.Outcome{Status: entity.OutcomeDraw}
	}

	return entity.Outcome{Status: entity.OutcomeInProgress}
}

func IsTerminal(board entity.Board) bool {
	return Evaluate(board).IsTerminal()
}

// HasWon - reports whether mark owns any full line.
func HasWon(board entity.Board, mark entity.Mark) bool {
	for _, line := range entity.WinningLines {
		if board[line[0]] == mark && board[line[1]] == mark && board[line[2]] == mark {
			return true
		}
	}

	return false
}

func findWinningLine(board entity.Board) (entity.WinningLine, entity.Mark, bool) {
	for _, line := range entity.WinningLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return line, a, true
		}
	}

	return entity.WinningLine{}, entity.EmptyCell, false
}
