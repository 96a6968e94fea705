// Package game implements the simulation core of a two player air hockey
// table: two dragged paddles, one puck, the court walls, both goals and the
// score.
//
// The main type is Match. A host feeds it pointer input and advances it one
// frame at a time, then reads positions and scores back to draw them.
//
// # Basic Usage
//
//	m, err := game.NewMatch(game.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	m.PointerDown(1, x, y)   // touch lands on a paddle
//	m.PointerMove(1, x2, y2) // drag it
//	if err := m.Tick(16 * time.Millisecond); err != nil {
//	    return err
//	}
//	draw(m.Snapshot())
//
// # Frame Order
//
// Tick runs the same steps every frame:
//   - goal check against last frame's committed puck position
//     (a goal scores, resets the round and ends the frame)
//   - puck integration by its movement vector
//   - paddle against puck collisions
//   - a single wall bounce
//   - commit of every entity's pending position
//
// Entities use a propose/commit update: pointer input and physics only
// write NextPosition, and the positions other code reads change once, at
// the end of Tick.
//
// Match is not safe for concurrent use. internal/runner wraps it with a
// lock and a frame clock for hosts that receive input on other goroutines.
package game
