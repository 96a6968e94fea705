package game

import "time"

// BodyState is the read-only view of one entity
type BodyState struct {
	Position Vec2    `json:"position"`
	Movement Vec2    `json:"movement"`
	Radius   float64 `json:"radius"`
	Dragged  bool    `json:"dragged"`
}

// CourtState describes the fixed court geometry
type CourtState struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GoalLeft  float64 `json:"goalLeft"`
	GoalRight float64 `json:"goalRight"`
}

// Snapshot is everything a presentation layer needs to draw one frame
type Snapshot struct {
	Frame   uint64        `json:"frame"`
	Elapsed time.Duration `json:"elapsed"`
	Court   CourtState    `json:"court"`
	Paddle1 BodyState     `json:"paddle1"`
	Paddle2 BodyState     `json:"paddle2"`
	Puck    BodyState     `json:"puck"`
	Score1  int           `json:"score1"`
	Score2  int           `json:"score2"`
}

// Snapshot captures the committed state of the match
func (m *Match) Snapshot() Snapshot {
	left, right := m.cfg.GoalMouth()
	return Snapshot{
		Frame:   m.frame,
		Elapsed: m.elapsed,
		Court: CourtState{
			Width:     m.cfg.Width,
			Height:    m.cfg.Height,
			GoalLeft:  left,
			GoalRight: right,
		},
		Paddle1: bodyState(m.paddle1),
		Paddle2: bodyState(m.paddle2),
		Puck:    bodyState(m.puck),
		Score1:  m.score1,
		Score2:  m.score2,
	}
}

func bodyState(e *Entity) BodyState {
	_, dragged := e.Pointer()
	return BodyState{
		Position: e.Position(),
		Movement: e.MovementVector(),
		Radius:   e.Radius(),
		Dragged:  dragged,
	}
}
