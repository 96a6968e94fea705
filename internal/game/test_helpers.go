package game

import (
	"io"

	"github.com/charmbracelet/log"
)

// TestMatchOption configures test match creation
type TestMatchOption func(*testMatchBuilder)

type testMatchBuilder struct {
	config   Config
	eventBus EventBus
	setup    []func(*Match)
}

// WithCourt overrides the court size
func WithCourt(width, height float64) TestMatchOption {
	return func(b *testMatchBuilder) {
		b.config.Width = width
		b.config.Height = height
	}
}

// WithRadii overrides the paddle and puck radii
func WithRadii(paddle, puck float64) TestMatchOption {
	return func(b *testMatchBuilder) {
		b.config.PaddleRadius = paddle
		b.config.PuckRadius = puck
	}
}

// WithTestEventBus publishes events on bus
func WithTestEventBus(bus EventBus) TestMatchOption {
	return func(b *testMatchBuilder) { b.eventBus = bus }
}

// WithPuck places the puck and sets its movement vector
func WithPuck(position, movement Vec2) TestMatchOption {
	return func(b *testMatchBuilder) {
		b.setup = append(b.setup, func(m *Match) {
			m.puck.SetPosition(position)
			m.puck.SetMovementVector(movement)
		})
	}
}

// WithPaddle places a paddle and sets its movement vector without binding
// a pointer
func WithPaddle(p Player, position, movement Vec2) TestMatchOption {
	return func(b *testMatchBuilder) {
		b.setup = append(b.setup, func(m *Match) {
			paddle := m.paddle1
			if p == Player2 {
				paddle = m.paddle2
			}
			paddle.SetPosition(position)
			paddle.SetMovementVector(movement)
		})
	}
}

// NewTestMatch creates a match on the default court with a silent logger
func NewTestMatch(opts ...TestMatchOption) *Match {
	builder := &testMatchBuilder{
		config:   DefaultConfig(),
		eventBus: NewEventBus(),
	}

	for _, opt := range opts {
		opt(builder)
	}

	m, err := NewMatch(builder.config, WithLogger(log.New(io.Discard)), WithEventBus(builder.eventBus))
	if err != nil {
		panic(err)
	}
	for _, fn := range builder.setup {
		fn(m)
	}
	return m
}

// EventRecorder collects published events in order
type EventRecorder struct {
	Events []GameEvent
}

func (r *EventRecorder) OnEvent(event GameEvent) {
	r.Events = append(r.Events, event)
}

// Types returns the recorded event types in order
func (r *EventRecorder) Types() []EventType {
	types := make([]EventType, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.EventType()
	}
	return types
}
