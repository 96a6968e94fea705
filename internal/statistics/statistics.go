package statistics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lox/airhockey/internal/game"
)

// MatchResult is the outcome of one simulated match
type MatchResult struct {
	Seed             int64   // RNG seed for this match (for replay)
	Frames           int     // Frames simulated
	Goals1           int     // Goals scored by player1
	Goals2           int     // Goals scored by player2
	PaddleHits       int     // Paddle strikes on the puck
	WallBounces      int     // Wall reflections
	Resets           int     // Round resets, including those after goals
	PaddleViolations int     // Frames where a paddle left its half
	PuckEscapes      int     // Frames where the puck was outside the court
	MaxPuckSpeed     float64 // Largest per-frame puck displacement
}

// Differential returns player1's goals minus player2's
func (r MatchResult) Differential() int {
	return r.Goals1 - r.Goals2
}

// PlayerStats tracks goals for one side of the court
type PlayerStats struct {
	Goals       int
	MatchesWon  int
	ShutoutWins int
}

// Statistics aggregates simulated matches. Values holds the goal
// differential of every match for median and percentile queries.
type Statistics struct {
	Matches int
	Frames  int
	SumDiff float64
	SumSq   float64
	Values  []float64

	Players [3]PlayerStats // Index 0 unused, 1-2 for players
	Draws   int

	PaddleHits       int
	WallBounces      int
	Resets           int
	PaddleViolations int
	PuckEscapes      int
	MaxPuckSpeed     float64
}

// Add incorporates a match result into the statistics
func (s *Statistics) Add(result MatchResult) {
	diff := float64(result.Differential())
	s.Matches++
	s.Frames += result.Frames
	s.SumDiff += diff
	s.SumSq += diff * diff
	s.Values = append(s.Values, diff)

	s.Players[game.Player1].Goals += result.Goals1
	s.Players[game.Player2].Goals += result.Goals2
	switch {
	case result.Goals1 > result.Goals2:
		s.Players[game.Player1].MatchesWon++
		if result.Goals2 == 0 {
			s.Players[game.Player1].ShutoutWins++
		}
	case result.Goals2 > result.Goals1:
		s.Players[game.Player2].MatchesWon++
		if result.Goals1 == 0 {
			s.Players[game.Player2].ShutoutWins++
		}
	default:
		s.Draws++
	}

	s.PaddleHits += result.PaddleHits
	s.WallBounces += result.WallBounces
	s.Resets += result.Resets
	s.PaddleViolations += result.PaddleViolations
	s.PuckEscapes += result.PuckEscapes
	if result.MaxPuckSpeed > s.MaxPuckSpeed {
		s.MaxPuckSpeed = result.MaxPuckSpeed
	}
}

// Goals returns the total goals scored by both players
func (s *Statistics) Goals() int {
	return s.Players[game.Player1].Goals + s.Players[game.Player2].Goals
}

// GoalsPerMinute converts the goal count to a rate at the given frame interval
func (s *Statistics) GoalsPerMinute(interval time.Duration) float64 {
	if s.Frames == 0 || interval <= 0 {
		return 0
	}
	played := time.Duration(s.Frames) * interval
	return float64(s.Goals()) / played.Minutes()
}

// Mean returns the mean goal differential per match
func (s *Statistics) Mean() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.SumDiff / float64(s.Matches)
}

// Variance returns the sample variance of the goal differential
func (s *Statistics) Variance() float64 {
	if s.Matches < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.Matches)*mean*mean) / float64(s.Matches-1)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistics) StdError() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Matches))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
// differential. An interval straddling zero means neither side is favoured.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

func (s *Statistics) sorted() []float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return sorted
}

// Median returns the median goal differential
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the differential at p, interpolating between ranks
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the bookkeeping and the paddle confinement rule
func (s *Statistics) Validate() error {
	if s.Matches <= 0 {
		return fmt.Errorf("invalid match count: %d", s.Matches)
	}

	if len(s.Values) != s.Matches {
		return fmt.Errorf("values array length (%d) does not match match count (%d)",
			len(s.Values), s.Matches)
	}

	decided := s.Players[game.Player1].MatchesWon + s.Players[game.Player2].MatchesWon + s.Draws
	if decided != s.Matches {
		return fmt.Errorf("wins plus draws (%d) does not match match count (%d)", decided, s.Matches)
	}

	if s.Resets < s.Goals() {
		return fmt.Errorf("fewer resets (%d) than goals (%d)", s.Resets, s.Goals())
	}

	if s.PaddleViolations > 0 {
		return fmt.Errorf("paddles left their half on %d frames", s.PaddleViolations)
	}

	return nil
}
