package main

import (
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	cfg := config.Config{ScoringConcurrency: 3, ScoringDelay: 1500 * time.Millisecond}

	opts, err := parseFlags(nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "full", opts.mode)
	assert.Equal(t, 3, opts.concurrency)
	assert.Equal(t, 1500*time.Millisecond, opts.delay)

	opts, err = parseFlags([]string{"-mode", "ccu_snapshot", "-dry-run", "-concurrency", "8", "-delay", "0s", "-date", "2026-03-01"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "ccu_snapshot", opts.mode)
	assert.True(t, opts.dryRun)
	assert.Equal(t, 8, opts.concurrency)
	assert.Zero(t, opts.delay)
	assert.Equal(t, "2026-03-01", opts.date)
}

func TestParseFlagsRejectsBadInput(t *testing.T) {
	t.Parallel()

	cfg := config.Config{ScoringConcurrency: 3}
	for _, args := range [][]string{
		{"-mode", "weekly"},
		{"-concurrency", "0"},
		{"-delay", "-1s"},
		{"-date", "03/01/2026"},
	} {
		_, err := parseFlags(args, cfg)
		assert.Error(t, err, "args %v", args)
	}
}
