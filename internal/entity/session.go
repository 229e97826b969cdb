package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

type GameMode string

const (
	ModeHumanVsHuman    GameMode = "human_vs_human"
	ModeHumanVsOpponent GameMode = "human_vs_opponent"
)

type Difficulty string

const (
	DifficultyRandom    Difficulty = "random"
	DifficultyHeuristic Difficulty = "heuristic"
	DifficultyOptimal   Difficulty = "optimal"
)

type SessionState string

const (
	StateAwaitingHumanMove    SessionState = "awaiting_human_move"
	StateAwaitingOpponentMove SessionState = "awaiting_opponent_move"
	StateTerminal             SessionState = "terminal"
)

func (that GameMode) IsValid() bool {
	return that == ModeHumanVsHuman || that == ModeHumanVsOpponent
}

func (that Difficulty) IsValid() bool {
	switch that {
	case DifficultyRandom, DifficultyHeuristic, DifficultyOptimal:
		return true
	default:
		return false
	}
}

// ParseGameMode - accepts the canonical names and the labels of the old web client ("player", "computer").
func ParseGameMode(value string) (GameMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeHumanVsHuman), "player":
		return ModeHumanVsHuman, nil
	case string(ModeHumanVsOpponent), "computer":
		return ModeHumanVsOpponent, nil
	default:
		return "", fmt.Errorf("%w: unknown game mode %q", apperror.ErrInvalidConfiguration, value)
	}
}

// ParseDifficulty - accepts the canonical names and "easy", "medium", "impossible".
func ParseDifficulty(value string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(DifficultyRandom), "easy":
		return DifficultyRandom, nil
	case string(DifficultyHeuristic), "medium":
		return DifficultyHeuristic, nil
	case string(DifficultyOptimal), "impossible":
		return DifficultyOptimal, nil
	default:
		return "", fmt.Errorf("%w: unknown difficulty %q", apperror.ErrInvalidConfiguration, value)
	}
}

// Snapshot - everything the presentation layer needs to draw the game after an event.
type Snapshot struct {
	ID         string       `json:"id"`
	Board      Board        `json:"board"`
	Turn       Mark         `json:"turn"`
	State      SessionState `json:"state"`
	Mode       GameMode     `json:"mode"`
	Difficulty Difficulty   `json:"difficulty"`
	Outcome    Outcome      `json:"outcome"`
}

func (that *Snapshot) IsTerminal() bool {
	return that.State == StateTerminal
}

// SessionRecord - the persisted part of a session. State and outcome are derived from it on load.
type SessionRecord struct {
	ID         string     `json:"id"`
	Board      Board      `json:"board"`
	Turn       Mark       `json:"turn"`
	Mode       GameMode   `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
}
