package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

func TestSessionDefaults(t *testing.T) {
	t.Run("Aliases are resolved", func(t *testing.T) {
		conf := &config.Config{Session: config.Session{DefaultMode: "computer", DefaultDifficulty: "Impossible"}}

		defaults, err := sessionDefaults(conf)

		require.NoError(t, err)
		assert.Equal(t, entity.ModeHumanVsOpponent, defaults.Mode)
		assert.Equal(t, entity.DifficultyOptimal, defaults.Difficulty)
	})

	t.Run("Unknown values fail start-up", func(t *testing.T) {
		conf := &config.Config{Session: config.Session{DefaultMode: "human_vs_human", DefaultDifficulty: "hard"}}

		_, err := sessionDefaults(conf)

		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
	})
}
