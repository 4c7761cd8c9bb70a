package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_Defaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":5054", cfg.Server.ListenAddr)
	assert.Equal(t, "/media", cfg.Media.BasePath)
	assert.Equal(t, 300, cfg.Trivia.FrameSampleTarget)
	assert.Equal(t, 5, cfg.Trivia.StillFrameCount)
	assert.Equal(t, 2, cfg.Trivia.QuoteMinLines)
	assert.Equal(t, 4, cfg.Trivia.QuoteMaxLines)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.MaxAge)
	assert.Equal(t, 10*time.Minute, cfg.Session.MaxAge)
}

func TestNewFromEnv_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("FRAME_SAMPLE_TARGET", "150")
	t.Setenv("QUOTE_MAX_GAP_SECONDS", "2.5")
	t.Setenv("CACHE_MAX_AGE", "48h")
	t.Setenv("SESSION_MAX_AGE", "300")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, 150, cfg.Trivia.FrameSampleTarget)
	assert.Equal(t, 2.5, cfg.Trivia.QuoteMaxGap)
	assert.Equal(t, 48*time.Hour, cfg.Cache.MaxAge)
	// Plain numbers are seconds.
	assert.Equal(t, 5*time.Minute, cfg.Session.MaxAge)
}

func TestNewFromEnv_InvalidBounds(t *testing.T) {
	t.Setenv("QUOTE_MIN_LINES", "5")
	t.Setenv("QUOTE_MAX_LINES", "2")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUOTE_MIN_LINES")
}

func TestNewFromEnv_Options(t *testing.T) {
	cfg, err := NewFromEnv(func(c *Config) {
		c.Server.ListenAddr = ":7777"
	})
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.ListenAddr)
}
