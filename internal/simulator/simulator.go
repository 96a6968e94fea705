package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/statistics"
)

const (
	grabChance    = 0.2
	releaseChance = 0.02
	chaseChance   = 0.5
	maxJitter     = 40.0
	ctxCheckEvery = 1024
	epsilon       = 1e-9
)

// Config holds configuration for running simulations
type Config struct {
	Matches  int
	Frames   int // Frames per match
	Seed     int64
	Game     game.Config
	Interval time.Duration // Frame interval passed to Tick
	Workers  int           // Defaults to GOMAXPROCS
	Logger   *log.Logger
}

// Simulator plays headless matches between random pointer drags and checks
// the court invariants on every frame
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Interval <= 0 {
		config.Interval = time.Second / 60
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Game == (game.Config{}) {
		config.Game = game.DefaultConfig()
	}
	config.Game = config.Game.WithDefaults()
	return &Simulator{config: config}
}

// Run plays every match and returns the merged statistics. When the
// statistics fail validation they are returned together with the error so
// callers can still report them.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Matches <= 0 {
		return nil, fmt.Errorf("matches must be positive, got %d", s.config.Matches)
	}
	if s.config.Frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", s.config.Frames)
	}
	if err := s.config.Game.Validate(); err != nil {
		return nil, err
	}

	s.config.Logger.Info("Starting simulation",
		"matches", s.config.Matches,
		"frames", s.config.Frames,
		"seed", s.config.Seed,
		"workers", s.config.Workers)

	results := make([]statistics.MatchResult, s.config.Matches)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range results {
		matchSeed := s.config.Seed + int64(i)
		g.Go(func() error {
			result, err := s.playMatch(ctx, i, matchSeed)
			if err != nil {
				return fmt.Errorf("match %d (seed %d): %w", i+1, matchSeed, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, result := range results {
		stats.Add(result)
	}

	if err := stats.Validate(); err != nil {
		return stats, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playMatch runs one match to completion
func (s *Simulator) playMatch(ctx context.Context, index int, seed int64) (statistics.MatchResult, error) {
	rng := matchRand(seed)
	result := statistics.MatchResult{Seed: seed}

	draggers := []*dragger{
		{player: game.Player1, id: 1, rng: rng},
		{player: game.Player2, id: 2, rng: rng},
	}

	bus := game.NewEventBus()
	bus.Subscribe(game.EventSubscriberFunc(func(event game.GameEvent) {
		switch e := event.(type) {
		case game.GoalEvent:
			if e.Scorer == game.Player1 {
				result.Goals1++
			} else {
				result.Goals2++
			}
		case game.PaddleHitEvent:
			result.PaddleHits++
		case game.WallBounceEvent:
			result.WallBounces++
		case game.RoundResetEvent:
			result.Resets++
			for _, d := range draggers {
				d.held = false
			}
		}
	}))

	logger := s.config.Logger.With("match", index+1)
	m, err := game.NewMatch(s.config.Game, game.WithLogger(logger), game.WithEventBus(bus))
	if err != nil {
		return result, err
	}

	checker := newInvariantChecker(s.config.Game)
	for frame := 0; frame < s.config.Frames; frame++ {
		if frame%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		snap := m.Snapshot()
		for _, d := range draggers {
			d.act(m, snap)
		}

		if err := m.Tick(s.config.Interval); err != nil {
			return result, err
		}
		result.Frames++

		if err := checker.check(m.Snapshot(), &result); err != nil {
			return result, err
		}
	}

	logger.Debug("Match finished",
		"score1", result.Goals1,
		"score2", result.Goals2,
		"hits", result.PaddleHits,
		"escapes", result.PuckEscapes)
	return result, nil
}

// dragger is a random player holding one pointer. It grabs its paddle,
// swings it toward the puck or jitters it around, and lets go now and then.
type dragger struct {
	player game.Player
	id     game.PointerID
	rng    *rand.Rand
	held   bool
}

func (d *dragger) act(m *game.Match, snap game.Snapshot) {
	paddle := snap.Paddle1
	if d.player == game.Player2 {
		paddle = snap.Paddle2
	}

	if !d.held {
		if d.rng.Float64() >= grabChance {
			return
		}
		// Presses land near the paddle; the odd one misses
		x := paddle.Position.X + d.rng.NormFloat64()*paddle.Radius*0.6
		y := paddle.Position.Y + d.rng.NormFloat64()*paddle.Radius*0.6
		m.PointerDown(d.id, x, y)
		if d.player == game.Player1 {
			d.held = m.Snapshot().Paddle1.Dragged
		} else {
			d.held = m.Snapshot().Paddle2.Dragged
		}
		return
	}

	if d.rng.Float64() < releaseChance {
		m.PointerUp(d.id)
		d.held = false
		return
	}

	target := paddle.Position.Add(game.Vec2{
		X: (d.rng.Float64()*2 - 1) * maxJitter,
		Y: (d.rng.Float64()*2 - 1) * maxJitter,
	})
	if d.rng.Float64() < chaseChance {
		target = snap.Puck.Position
	}
	// Targets outside the half are left for the match to clamp
	m.PointerMove(d.id, target.X, target.Y)
}

// invariantChecker verifies the per-frame court rules
type invariantChecker struct {
	cfg            game.Config
	score1, score2 int
	frame          uint64
}

func newInvariantChecker(cfg game.Config) *invariantChecker {
	return &invariantChecker{cfg: cfg}
}

var errScoreDecreased = errors.New("score decreased")

func (c *invariantChecker) check(snap game.Snapshot, result *statistics.MatchResult) error {
	if snap.Frame <= c.frame {
		return fmt.Errorf("frame counter went from %d to %d", c.frame, snap.Frame)
	}
	c.frame = snap.Frame

	if snap.Score1 < c.score1 || snap.Score2 < c.score2 {
		return fmt.Errorf("%w: %d-%d after %d-%d", errScoreDecreased, snap.Score1, snap.Score2, c.score1, c.score2)
	}
	c.score1, c.score2 = snap.Score1, snap.Score2

	if !c.paddleConfined(game.Player1, snap.Paddle1.Position) {
		result.PaddleViolations++
	}
	if !c.paddleConfined(game.Player2, snap.Paddle2.Position) {
		result.PaddleViolations++
	}

	lo, hi := c.cfg.PuckArea()
	if !inside(snap.Puck.Position, lo, hi) {
		result.PuckEscapes++
	}

	if speed := snap.Puck.Movement.Length(); speed > result.MaxPuckSpeed {
		result.MaxPuckSpeed = speed
	}
	return nil
}

// paddleConfined reports whether a paddle is inside its half. The serve
// spot on the end wall where a round reset parks the paddle also counts.
func (c *invariantChecker) paddleConfined(p game.Player, pos game.Vec2) bool {
	serve := game.Vec2{X: c.cfg.Width / 2, Y: 0}
	if p == game.Player2 {
		serve.Y = c.cfg.Height
	}
	if pos == serve {
		return true
	}
	lo, hi := c.cfg.PaddleArea(p)
	return inside(pos, lo, hi)
}

func inside(p, lo, hi game.Vec2) bool {
	return p.X >= lo.X-epsilon && p.X <= hi.X+epsilon &&
		p.Y >= lo.Y-epsilon && p.Y <= hi.Y+epsilon
}
