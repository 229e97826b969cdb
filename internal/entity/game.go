package entity

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

// Opponent - returns the mark of the other side. EmptyCell has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Mark) IsEmpty() bool {
	return that == EmptyCell
}

// IsValid - reports whether the value may stand in a board cell.
func (that Mark) IsValid() bool {
	return that == PlayerX || that == PlayerO || that == EmptyCell
}

const (
	BoardSize  = 9
	CenterCell = 4

	// HumanMark moves first; in human_vs_opponent mode the bot plays BotMark.
	HumanMark = PlayerX
	BotMark   = PlayerO
)

var (
	CornerCells = [4]int{0, 2, 6, 8}
	EdgeCells   = [4]int{1, 3, 5, 7}
)

// Board - cells in row-major order, 0 is top left and 8 is bottom right.
type Board [BoardSize]Mark

// WinningLine - three cell indices that win when they carry the same mark.
type WinningLine [3]int

// WinningLines - order matters: the first uniform line is the one reported.
var WinningLines = [8]WinningLine{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type OutcomeStatus string

const (
	OutcomeInProgress OutcomeStatus = "in_progress"
	OutcomeWin        OutcomeStatus = "win"
	OutcomeDraw       OutcomeStatus = "draw"
)

// Outcome - result of evaluating a board. Winner and Line are set only for a win.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Mark          `json:"winner,omitempty"`
	Line   *WinningLine  `json:"line,omitempty"`
}

func (that Outcome) IsTerminal() bool {
	return that.Status == OutcomeWin || that.Status == OutcomeDraw
}

func (that Outcome) IsWin() bool {
	return that.Status == OutcomeWin
}

func (that Outcome) IsDraw() bool {
	return that.Status == OutcomeDraw
}
