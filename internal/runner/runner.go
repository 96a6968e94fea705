package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/airhockey/internal/game"
)

var (
	ErrAlreadyStarted = errors.New("runner already started")
)

// Runner drives a match from a frame clock. Pointer input and frame ticks
// share one lock, so input arriving on any goroutine is applied strictly
// between two frames.
type Runner struct {
	mu       sync.Mutex
	match    *game.Match
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger

	subMu       sync.Mutex
	subscribers map[int]chan game.Snapshot
	nextSub     int

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a runner that advances match once per interval of clock
func New(match *game.Match, clock quartz.Clock, interval time.Duration, logger *log.Logger) *Runner {
	return &Runner{
		match:       match,
		clock:       clock,
		interval:    interval,
		logger:      logger.WithPrefix("runner"),
		subscribers: make(map[int]chan game.Snapshot),
		done:        make(chan struct{}),
	}
}

// Start begins ticking in the background. The ticker is created before
// Start returns.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	ticker := r.clock.NewTicker(r.interval, "runner", "frame")
	last := r.clock.Now()

	r.logger.Info("Frame loop started", "interval", r.interval)

	go func() {
		defer close(r.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("Frame loop stopped", "frame", r.Snapshot().Frame)
				return
			case now := <-ticker.C:
				dt := now.Sub(last)
				last = now
				if _, err := r.Step(dt); err != nil {
					r.logger.Error("Frame failed", "error", err)
					return
				}
			}
		}
	}()

	return nil
}

// Stop cancels the frame loop and waits for it to exit
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	started := r.started
	r.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-r.done
}

// Done is closed once a started frame loop has exited
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Step advances the match by one frame and publishes the resulting snapshot
func (r *Runner) Step(dt time.Duration) (game.Snapshot, error) {
	r.mu.Lock()
	if err := r.match.Tick(dt); err != nil {
		r.mu.Unlock()
		return game.Snapshot{}, err
	}
	snap := r.match.Snapshot()
	r.mu.Unlock()

	r.publish(snap)
	return snap, nil
}

func (r *Runner) PointerDown(id game.PointerID, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match.PointerDown(id, x, y)
}

func (r *Runner) PointerMove(id game.PointerID, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match.PointerMove(id, x, y)
}

func (r *Runner) PointerUp(id game.PointerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match.PointerUp(id)
}

// ResetRound restarts the current round without touching the score
func (r *Runner) ResetRound() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match.ResetGame()
	r.logger.Info("Round reset requested")
}

// Snapshot returns the committed state of the match
func (r *Runner) Snapshot() game.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match.Snapshot()
}

// OnEvent subscribes to match events. Subscribers are called inside the
// frame and must not call back into the runner.
func (r *Runner) OnEvent(subscriber game.EventSubscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match.EventBus().Subscribe(subscriber)
}

// Subscribe returns a channel receiving the latest snapshot after every
// frame. Slow readers skip frames rather than stall the loop. The returned
// function unsubscribes and closes the channel.
func (r *Runner) Subscribe() (<-chan game.Snapshot, func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan game.Snapshot, 1)
	r.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subMu.Lock()
			defer r.subMu.Unlock()
			delete(r.subscribers, id)
			close(ch)
		})
	}
}

func (r *Runner) publish(snap game.Snapshot) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for _, ch := range r.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale frame so the reader always sees the newest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
