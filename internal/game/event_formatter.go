package game

import (
	"fmt"
	"math"
)

// FormattingOptions controls how events are rendered for different contexts
type FormattingOptions struct {
	ShowFrame bool // Prefix with the frame number (for logs)
	ShowForce bool // Include strike force and angle
}

// EventFormatter turns match events into one-line descriptions
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format describes any match event
func (ef *EventFormatter) Format(event GameEvent) string {
	var text string
	switch e := event.(type) {
	case GoalEvent:
		text = ef.FormatGoal(e)
	case PaddleHitEvent:
		text = ef.FormatPaddleHit(e)
	case WallBounceEvent:
		text = fmt.Sprintf("puck bounces off the %s wall", e.Wall)
	case RoundResetEvent:
		text = "round reset"
	default:
		text = event.EventType().String()
	}

	if ef.opts.ShowFrame {
		return fmt.Sprintf("[frame %d] %s", event.Frame(), text)
	}
	return text
}

// FormatGoal announces a goal with the new score
func (ef *EventFormatter) FormatGoal(e GoalEvent) string {
	return fmt.Sprintf("GOAL! %s scores (%d-%d)", e.Scorer, e.Score1, e.Score2)
}

// FormatPaddleHit describes a strike
func (ef *EventFormatter) FormatPaddleHit(e PaddleHitEvent) string {
	if !ef.opts.ShowForce {
		return fmt.Sprintf("%s hits the puck", e.Paddle)
	}
	return fmt.Sprintf("%s hits the puck (force %.1f, angle %.0f°)", e.Paddle, e.Force, e.Angle*180/math.Pi)
}
