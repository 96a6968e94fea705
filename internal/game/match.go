package game

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// Player identifies one side of the table. Player1 defends the bottom wall
// (y = 0), Player2 the top wall (y = height).
type Player int

const (
	Player1 Player = 1
	Player2 Player = 2
)

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return fmt.Sprintf("player(%d)", int(p))
	}
}

// Opponent returns the other player
func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Match owns the paddles, the puck and the score. It is not safe for
// concurrent use; hosts must serialize pointer input and Tick (see
// internal/runner).
type Match struct {
	cfg     Config
	paddle1 *Entity
	paddle2 *Entity
	puck    *Entity
	paddles [2]*Entity

	score1 int
	score2 int

	frame   uint64
	elapsed time.Duration

	logger   *log.Logger
	eventBus EventBus
}

// Option configures a Match
type Option func(*Match)

// WithLogger sets the logger used for match diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(m *Match) {
		if logger != nil {
			m.logger = logger.WithPrefix("match")
		}
	}
}

// WithEventBus publishes match events on bus instead of a private bus
func WithEventBus(bus EventBus) Option {
	return func(m *Match) {
		if bus != nil {
			m.eventBus = bus
		}
	}
}

// NewMatch creates a match with both paddles resting against their own
// wall and the puck in the centre of the court.
func NewMatch(cfg Config, opts ...Option) (*Match, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Match{
		cfg:      cfg,
		logger:   log.New(io.Discard),
		eventBus: NewEventBus(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.paddle1 = NewEntity("paddle1", Vec2{X: cfg.Width / 2, Y: cfg.PaddleRadius}, cfg.PaddleRadius)
	m.paddle2 = NewEntity("paddle2", Vec2{X: cfg.Width / 2, Y: cfg.Height - cfg.PaddleRadius}, cfg.PaddleRadius)
	m.puck = NewEntity("puck", Vec2{X: cfg.Width / 2, Y: cfg.Height / 2}, cfg.PuckRadius)
	m.paddles = [2]*Entity{m.paddle1, m.paddle2}

	m.logger.Debug("Match created",
		"width", cfg.Width,
		"height", cfg.Height,
		"paddleRadius", cfg.PaddleRadius,
		"puckRadius", cfg.PuckRadius)

	return m, nil
}

// EventBus returns the bus match events are published on
func (m *Match) EventBus() EventBus { return m.eventBus }

func (m *Match) Config() Config { return m.cfg }

func (m *Match) Paddle1Position() Vec2 { return m.paddle1.Position() }
func (m *Match) Paddle2Position() Vec2 { return m.paddle2.Position() }
func (m *Match) PuckPosition() Vec2    { return m.puck.Position() }
func (m *Match) Score1() int           { return m.score1 }
func (m *Match) Score2() int           { return m.score2 }

// Frame returns the number of frames advanced so far
func (m *Match) Frame() uint64 { return m.frame }

// Score returns the score of player p
func (m *Match) Score(p Player) int {
	if p == Player1 {
		return m.score1
	}
	return m.score2
}

// PointerDown binds id to the paddle whose hit circle contains (x, y).
// Paddle1 is tried first, so it wins if both circles contain the point.
// A pointer that was already bound elsewhere is moved to the new paddle.
func (m *Match) PointerDown(id PointerID, x, y float64) {
	point := Vec2{X: x, Y: y}
	m.releaseBinding(id)

	for _, paddle := range m.paddles {
		if paddle.Contains(point) {
			paddle.BindPointer(id)
			m.logger.Debug("Pointer bound", "pointer", id, "paddle", paddle.Name())
			return
		}
	}
}

// PointerMove drags the paddle bound to id towards (x, y). The target is
// clamped to the paddle's half; the movement vector keeps the raw delta so
// a fast drag still hits hard when the paddle is pinned against the midline.
// The delta is capped at the court diagonal and non-finite points are
// ignored.
func (m *Match) PointerMove(id PointerID, x, y float64) {
	paddle := m.paddleFor(id)
	if paddle == nil {
		return
	}
	if !isFinite(x) || !isFinite(y) {
		m.logger.Debug("Ignoring non-finite pointer move", "pointer", id)
		return
	}

	point := Vec2{X: x, Y: y}
	r := paddle.Radius()
	mid := m.cfg.Midline()

	next := point
	next.X = clamp(next.X, r, m.cfg.Width-r)
	if paddle.Position().Y < mid {
		next.Y = clamp(next.Y, r, mid-r)
	} else {
		next.Y = clamp(next.Y, mid+r, m.cfg.Height-r)
	}

	delta := point.Sub(paddle.Position())
	if limit := m.cfg.Diagonal(); delta.Length() > limit {
		delta = delta.Scale(limit / delta.Length())
	}

	paddle.SetMovementVector(delta)
	paddle.SetNextPosition(next)
}

// PointerUp releases the paddle bound to id. The paddle stays where it is.
func (m *Match) PointerUp(id PointerID) {
	paddle := m.paddleFor(id)
	if paddle == nil {
		return
	}
	paddle.ClearPointer()
	paddle.SetMovementVector(Vec2{})
	m.logger.Debug("Pointer released", "pointer", id, "paddle", paddle.Name())
}

func (m *Match) paddleFor(id PointerID) *Entity {
	for _, paddle := range m.paddles {
		if paddle.OwnedBy(id) {
			return paddle
		}
	}
	return nil
}

func (m *Match) releaseBinding(id PointerID) {
	if paddle := m.paddleFor(id); paddle != nil {
		paddle.ClearPointer()
		paddle.SetMovementVector(Vec2{})
	}
}

// Tick advances the match by one frame. Motion is per frame: dt is
// accumulated for display but does not scale any displacement.
func (m *Match) Tick(dt time.Duration) error {
	if m == nil || m.puck == nil {
		return ErrMatchNotStarted
	}

	m.frame++
	m.elapsed += dt

	// Goals are judged on the committed position from the previous frame,
	// before the wall bounce below can push the puck back into play.
	if m.IsGoal() {
		scorer := m.WhichCourt().Opponent()
		m.IncreaseScore(scorer)
		m.logger.Info("Goal", "scorer", scorer, "score1", m.score1, "score2", m.score2)
		m.eventBus.Publish(GoalEvent{
			Scorer:    scorer,
			Score1:    m.score1,
			Score2:    m.score2,
			frame:     m.frame,
			timestamp: time.Now(),
		})
		m.ResetGame()
		return nil
	}

	movement := m.puck.MovementVector().Scale(m.cfg.Damping)
	m.puck.SetMovementVector(movement)
	m.puck.SetNextPosition(m.puck.Position().Add(movement))

	for i, paddle := range m.paddles {
		m.collide(Player(i+1), paddle)
	}

	m.bounce()

	m.puck.CommitPosition()
	m.paddle1.CommitPosition()
	m.paddle2.CommitPosition()
	return nil
}

// collide redirects the puck along the contact normal when paddle overlaps
// it. Speed after the hit is the root of the summed squared speeds. When
// both paddles touch the puck in one frame the second one wins.
func (m *Match) collide(player Player, paddle *Entity) {
	paddleNext := paddle.NextPosition()
	puckNext := m.puck.NextPosition()
	reach := paddle.Radius() + m.puck.Radius()

	if paddleNext.DistanceSquared(puckNext) > reach*reach {
		return
	}

	force := math.Hypot(paddle.MovementVector().Length(), m.puck.MovementVector().Length())
	if !isFinite(force) {
		m.logger.Warn("Dropping paddle hit with non-finite force", "paddle", player)
		return
	}
	angle := puckNext.Sub(paddleNext).Angle()

	m.puck.SetMovementVector(FromAngle(angle, force))
	m.puck.SetNextPosition(paddleNext.Add(FromAngle(angle, reach+force)))

	m.logger.Debug("Paddle hit", "paddle", player, "force", force, "angle", angle)
	m.eventBus.Publish(PaddleHitEvent{
		Paddle:    player,
		Force:     force,
		Angle:     angle,
		frame:     m.frame,
		timestamp: time.Now(),
	})
}

// bounce resolves at most one wall per frame, checked left, right, bottom,
// top. A corner hit therefore corrects a single axis this frame.
func (m *Match) bounce() {
	next := m.puck.NextPosition()
	movement := m.puck.MovementVector()
	r := m.puck.Radius()
	k := m.cfg.Restitution

	var wall Wall
	switch {
	case next.X < r:
		next.X = r
		movement.X = -movement.X * k
		wall = WallLeft
	case next.X > m.cfg.Width-r:
		next.X = m.cfg.Width - r
		movement.X = -movement.X * k
		wall = WallRight
	case next.Y < r:
		next.Y = r
		movement.Y = -movement.Y * k
		wall = WallBottom
	case next.Y > m.cfg.Height-r:
		next.Y = m.cfg.Height - r
		movement.Y = -movement.Y * k
		wall = WallTop
	default:
		return
	}

	m.puck.SetNextPosition(next)
	m.puck.SetMovementVector(movement)
	m.eventBus.Publish(WallBounceEvent{Wall: wall, frame: m.frame, timestamp: time.Now()})
}

// IsGoal reports whether the committed puck position touches an end wall
// inside the goal mouth.
func (m *Match) IsGoal() bool {
	p := m.puck.Position()
	r := m.puck.Radius()
	if p.Y > r && p.Y < m.cfg.Height-r {
		return false
	}
	left, right := m.cfg.GoalMouth()
	return p.X >= left && p.X <= right
}

// WhichCourt returns the player whose half holds the puck. The midline
// belongs to Player1.
func (m *Match) WhichCourt() Player {
	if m.puck.Position().Y <= m.cfg.Midline() {
		return Player1
	}
	return Player2
}

// IncreaseScore adds one point to player p. Scores are unbounded.
func (m *Match) IncreaseScore(p Player) {
	switch p {
	case Player1:
		m.score1++
	case Player2:
		m.score2++
	}
}

// ResetGame puts both paddles against the centre of their own wall and the
// puck on the centre spot, stops everything and drops pointer bindings.
func (m *Match) ResetGame() {
	w, h := m.cfg.Width, m.cfg.Height

	m.paddle1.SetPosition(Vec2{X: w / 2, Y: 0})
	m.paddle2.SetPosition(Vec2{X: w / 2, Y: h})
	m.puck.SetPosition(Vec2{X: w / 2, Y: h / 2})

	for _, e := range []*Entity{m.paddle1, m.paddle2, m.puck} {
		e.SetMovementVector(Vec2{})
		e.ClearPointer()
	}

	m.eventBus.Publish(RoundResetEvent{frame: m.frame, timestamp: time.Now()})
}
