package game

import (
	"fmt"
	"time"
)

// EventType represents a match event type with type safety
type EventType string

const (
	EventTypeGoal       EventType = "goal"
	EventTypePaddleHit  EventType = "paddle_hit"
	EventTypeWallBounce EventType = "wall_bounce"
	EventTypeRoundReset EventType = "round_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything notable that happened during a frame
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
	Frame() uint64
}

// GoalEvent is published when the puck enters a goal mouth
type GoalEvent struct {
	Scorer    Player
	Score1    int
	Score2    int
	frame     uint64
	timestamp time.Time
}

func (e GoalEvent) EventType() EventType { return EventTypeGoal }
func (e GoalEvent) Timestamp() time.Time { return e.timestamp }
func (e GoalEvent) Frame() uint64        { return e.frame }

// PaddleHitEvent is published when a paddle strikes the puck
type PaddleHitEvent struct {
	Paddle    Player
	Force     float64
	Angle     float64
	frame     uint64
	timestamp time.Time
}

func (e PaddleHitEvent) EventType() EventType { return EventTypePaddleHit }
func (e PaddleHitEvent) Timestamp() time.Time { return e.timestamp }
func (e PaddleHitEvent) Frame() uint64        { return e.frame }

// Wall identifies one side of the court
type Wall int

const (
	WallLeft Wall = iota
	WallRight
	WallBottom
	WallTop
)

func (w Wall) String() string {
	switch w {
	case WallLeft:
		return "left"
	case WallRight:
		return "right"
	case WallBottom:
		return "bottom"
	case WallTop:
		return "top"
	default:
		return fmt.Sprintf("wall(%d)", int(w))
	}
}

// WallBounceEvent is published when the puck rebounds off a wall
type WallBounceEvent struct {
	Wall      Wall
	frame     uint64
	timestamp time.Time
}

func (e WallBounceEvent) EventType() EventType { return EventTypeWallBounce }
func (e WallBounceEvent) Timestamp() time.Time { return e.timestamp }
func (e WallBounceEvent) Frame() uint64        { return e.frame }

// RoundResetEvent is published after entities are put back on their serve
// positions
type RoundResetEvent struct {
	frame     uint64
	timestamp time.Time
}

func (e RoundResetEvent) EventType() EventType { return EventTypeRoundReset }
func (e RoundResetEvent) Timestamp() time.Time { return e.timestamp }
func (e RoundResetEvent) Frame() uint64        { return e.frame }

// EventSubscriber receives published events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber
type EventSubscriberFunc func(event GameEvent)

func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a synchronous in-memory event bus. Subscribers run on
// the publishing goroutine, inside the frame that produced the event.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Function
// subscribers are not comparable and cannot be removed.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if _, ok := subscriber.(EventSubscriberFunc); ok {
		return
	}
	for i, sub := range bus.subscribers {
		if _, ok := sub.(EventSubscriberFunc); ok {
			continue
		}
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
