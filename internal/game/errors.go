package game

import "errors"

var (
	// ErrMatchNotStarted is returned when a frame is advanced on a match that
	// was not created with NewMatch.
	ErrMatchNotStarted = errors.New("match not started")

	// ErrInvalidCourt is returned for court or body dimensions that cannot
	// hold a match.
	ErrInvalidCourt = errors.New("invalid court configuration")
)
