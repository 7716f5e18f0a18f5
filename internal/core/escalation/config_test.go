package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFillsDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultMaxLevel, cfg.MaxLevel)
	assert.Equal(t, []int{3, 3, 3}, cfg.Thresholds)
	assert.Equal(t, DefaultDecayTimeout, cfg.DecayTimeout)
	assert.Len(t, cfg.Messages, DefaultMaxLevel)
}

func TestValidatePadsThresholds(t *testing.T) {
	cfg := Config{MaxLevel: 4, Thresholds: []int{2, 3}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{2, 3, 3, 3}, cfg.Thresholds)
}

func TestValidateRejectsDecreasingThresholds(t *testing.T) {
	cfg := Config{Thresholds: []int{3, 2, 1}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Config{MaxLevel: -1}
	assert.Error(t, cfg.Validate())

	cfg = Config{Thresholds: []int{0}}
	assert.Error(t, cfg.Validate())

	cfg = Config{DecayTimeout: -time.Second}
	assert.Error(t, cfg.Validate())
}

func TestMessageClamping(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	// Levels beyond the message table reuse the last entry.
	assert.Equal(t, cfg.Messages[len(cfg.Messages)-1], cfg.message(10))
	assert.Equal(t, cfg.Messages[0], cfg.message(1))
}
