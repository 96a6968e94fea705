package game

import (
	"fmt"
	"math"
)

const (
	DefaultCourtWidth   = 320.0
	DefaultCourtHeight  = 480.0
	DefaultPaddleRadius = 20.0
	DefaultPuckRadius   = 12.0

	// DefaultGoalWidth is the goal mouth as a fraction of the court width,
	// centred on each end wall.
	DefaultGoalWidth = 0.48

	// DefaultRestitution is the share of speed kept after a wall bounce.
	DefaultRestitution = 0.75

	// DefaultDamping multiplies the puck movement vector every frame.
	DefaultDamping = 1.0
)

// Config describes the court and the bodies on it. It is fixed for the
// lifetime of a match.
type Config struct {
	Width        float64
	Height       float64
	PaddleRadius float64
	PuckRadius   float64
	GoalWidth    float64
	Restitution  float64
	Damping      float64
}

// DefaultConfig returns a portrait court sized for a phone screen
func DefaultConfig() Config {
	return Config{
		Width:        DefaultCourtWidth,
		Height:       DefaultCourtHeight,
		PaddleRadius: DefaultPaddleRadius,
		PuckRadius:   DefaultPuckRadius,
		GoalWidth:    DefaultGoalWidth,
		Restitution:  DefaultRestitution,
		Damping:      DefaultDamping,
	}
}

// WithDefaults fills the tuning fields left at zero, so zero always means
// the default. Dimensions are not defaulted; a zero court is an error.
func (c Config) WithDefaults() Config {
	if c.GoalWidth == 0 {
		c.GoalWidth = DefaultGoalWidth
	}
	if c.Restitution == 0 {
		c.Restitution = DefaultRestitution
	}
	if c.Damping == 0 {
		c.Damping = DefaultDamping
	}
	return c
}

// Validate checks that the court can hold both paddles and the puck
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: court must have positive size, got %gx%g", ErrInvalidCourt, c.Width, c.Height)
	}
	if c.PaddleRadius <= 0 || c.PuckRadius <= 0 {
		return fmt.Errorf("%w: radii must be positive, got paddle=%g puck=%g", ErrInvalidCourt, c.PaddleRadius, c.PuckRadius)
	}
	if 2*c.PaddleRadius > c.Width || 2*c.PaddleRadius > c.Height/2 {
		return fmt.Errorf("%w: paddle radius %g does not fit in a %gx%g half", ErrInvalidCourt, c.PaddleRadius, c.Width, c.Height/2)
	}
	if 2*c.PuckRadius > c.Width || 2*c.PuckRadius > c.Height {
		return fmt.Errorf("%w: puck radius %g does not fit in the court", ErrInvalidCourt, c.PuckRadius)
	}
	if c.GoalWidth <= 0 || c.GoalWidth > 1 {
		return fmt.Errorf("%w: goal width must be in (0, 1], got %g", ErrInvalidCourt, c.GoalWidth)
	}
	if c.Restitution <= 0 || c.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in (0, 1], got %g", ErrInvalidCourt, c.Restitution)
	}
	if c.Damping <= 0 || c.Damping > 1 {
		return fmt.Errorf("%w: damping must be in (0, 1], got %g", ErrInvalidCourt, c.Damping)
	}
	return nil
}

// Midline is the y coordinate splitting the two halves
func (c Config) Midline() float64 {
	return c.Height / 2
}

// GoalMouth returns the x range of both goal mouths
func (c Config) GoalMouth() (left, right float64) {
	margin := (1 - c.GoalWidth) / 2
	return c.Width * margin, c.Width * (1 - margin)
}

// PaddleArea is the rectangle a dragged paddle's centre is kept inside:
// the player's half inset by the paddle radius.
func (c Config) PaddleArea(p Player) (min, max Vec2) {
	r := c.PaddleRadius
	mid := c.Midline()
	if p == Player1 {
		return Vec2{X: r, Y: r}, Vec2{X: c.Width - r, Y: mid - r}
	}
	return Vec2{X: r, Y: mid + r}, Vec2{X: c.Width - r, Y: c.Height - r}
}

// Diagonal is the longest straight line that fits on the court. Paddle drag
// deltas are capped at this length.
func (c Config) Diagonal() float64 {
	return math.Hypot(c.Width, c.Height)
}

// PuckArea is the full court inset by the puck radius
func (c Config) PuckArea() (min, max Vec2) {
	r := c.PuckRadius
	return Vec2{X: r, Y: r}, Vec2{X: c.Width - r, Y: c.Height - r}
}
