package simulator

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/statistics"
)

func testConfig() Config {
	return Config{
		Matches: 6,
		Frames:  3000,
		Seed:    12345,
		Game:    game.DefaultConfig(),
		Logger:  log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel}),
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	sim := New(Config{Matches: 1, Frames: 1})

	assert.Positive(t, sim.config.Interval)
	assert.Positive(t, sim.config.Workers)
	assert.NotNil(t, sim.config.Logger)
	assert.NoError(t, sim.config.Game.Validate())
}

func TestSimulator_Run(t *testing.T) {
	cfg := testConfig()
	stats, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cfg.Matches, stats.Matches)
	assert.Equal(t, cfg.Matches*cfg.Frames, stats.Frames)
	assert.Zero(t, stats.PaddleViolations, "paddles must stay in their half")
	assert.Positive(t, stats.PaddleHits, "random drags should reach the puck")
	assert.GreaterOrEqual(t, stats.Resets, stats.Goals())
	assert.Len(t, stats.Values, cfg.Matches)
}

func TestSimulator_Deterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 4
	first, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	cfg.Workers = 1
	second, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed must replay the same matches")
}

func TestSimulator_MatchReplaysFromItsSeed(t *testing.T) {
	cfg := testConfig()
	sim := New(cfg)

	a, err := sim.playMatch(context.Background(), 0, cfg.Seed+3)
	require.NoError(t, err)
	b, err := sim.playMatch(context.Background(), 7, cfg.Seed+3)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, cfg.Seed+3, a.Seed)
}

func TestSimulator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no matches", func(c *Config) { c.Matches = 0 }},
		{"no frames", func(c *Config) { c.Frames = -1 }},
		{"paddle too big", func(c *Config) { c.Game.PaddleRadius = 500 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			stats, err := New(cfg).Run(context.Background())
			assert.Error(t, err)
			assert.Nil(t, stats)
		})
	}
}

func TestSimulator_InvalidCourtWrapsSentinel(t *testing.T) {
	cfg := testConfig()
	cfg.Game.Width = -1
	_, err := New(cfg).Run(context.Background())
	assert.ErrorIs(t, err, game.ErrInvalidCourt)
}

func TestSimulator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvariantChecker(t *testing.T) {
	cfg := game.DefaultConfig()

	t.Run("serve spot is allowed", func(t *testing.T) {
		c := newInvariantChecker(cfg)
		assert.True(t, c.paddleConfined(game.Player1, game.Vec2{X: 160, Y: 0}))
		assert.True(t, c.paddleConfined(game.Player2, game.Vec2{X: 160, Y: 480}))
	})

	t.Run("paddle across the midline", func(t *testing.T) {
		c := newInvariantChecker(cfg)
		assert.False(t, c.paddleConfined(game.Player1, game.Vec2{X: 160, Y: 250}))
		assert.False(t, c.paddleConfined(game.Player2, game.Vec2{X: 160, Y: 230}))
	})

	t.Run("counts escapes and violations", func(t *testing.T) {
		c := newInvariantChecker(cfg)
		snap := game.NewTestMatch(
			game.WithPuck(game.Vec2{X: 2, Y: 100}, game.Vec2{X: -3, Y: 4}),
			game.WithPaddle(game.Player1, game.Vec2{X: 160, Y: 300}, game.Vec2{}),
		).Snapshot()
		snap.Frame = 1

		var result statistics.MatchResult
		require.NoError(t, c.check(snap, &result))
		assert.Equal(t, 1, result.PuckEscapes)
		assert.Equal(t, 1, result.PaddleViolations)
		assert.Equal(t, 5.0, result.MaxPuckSpeed)
	})

	t.Run("score must not decrease", func(t *testing.T) {
		c := newInvariantChecker(cfg)
		var result statistics.MatchResult
		require.NoError(t, c.check(game.Snapshot{Frame: 1, Score1: 2,
			Paddle1: game.BodyState{Position: game.Vec2{X: 160, Y: 20}},
			Paddle2: game.BodyState{Position: game.Vec2{X: 160, Y: 460}},
			Puck:    game.BodyState{Position: game.Vec2{X: 160, Y: 240}},
		}, &result))

		err := c.check(game.Snapshot{Frame: 2, Score1: 1}, &result)
		assert.ErrorIs(t, err, errScoreDecreased)
	})

	t.Run("frame must advance", func(t *testing.T) {
		c := newInvariantChecker(cfg)
		var result statistics.MatchResult
		assert.Error(t, c.check(game.Snapshot{}, &result))
	})
}
