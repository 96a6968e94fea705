package game

// PointerID identifies an input pointer (a touch, the mouse, a keyboard
// driven cursor) as reported by the host.
type PointerID int64

// Entity is a movable circular body: a paddle or the puck.
//
// Position updates are two-phase. Callers propose a position with
// SetNextPosition during a frame and CommitPosition makes it current at the
// end of the frame, so every collision check in a frame sees the same
// committed state.
type Entity struct {
	name         string
	position     Vec2
	nextPosition Vec2
	movement     Vec2
	radius       float64

	pointer    PointerID
	hasPointer bool
}

// NewEntity creates an entity at position with a fixed radius.
func NewEntity(name string, position Vec2, radius float64) *Entity {
	return &Entity{
		name:         name,
		position:     position,
		nextPosition: position,
		radius:       radius,
	}
}

func (e *Entity) Name() string { return e.name }

// Position returns the committed position.
func (e *Entity) Position() Vec2 { return e.position }

// NextPosition returns the position that will be committed at frame end.
func (e *Entity) NextPosition() Vec2 { return e.nextPosition }

// MovementVector returns the per-frame displacement (puck) or the last drag
// delta (paddle).
func (e *Entity) MovementVector() Vec2 { return e.movement }

func (e *Entity) Radius() float64 { return e.radius }

// SetPosition snaps the entity: both the committed and the pending position
// are replaced.
func (e *Entity) SetPosition(p Vec2) {
	e.position = p
	e.nextPosition = p
}

func (e *Entity) SetNextPosition(p Vec2) {
	e.nextPosition = p
}

func (e *Entity) SetMovementVector(v Vec2) {
	e.movement = v
}

// CommitPosition makes the pending position current.
func (e *Entity) CommitPosition() {
	e.position = e.nextPosition
}

// BindPointer records id as the pointer dragging this entity.
func (e *Entity) BindPointer(id PointerID) {
	e.pointer = id
	e.hasPointer = true
}

func (e *Entity) ClearPointer() {
	e.pointer = 0
	e.hasPointer = false
}

// Pointer returns the bound pointer, if any.
func (e *Entity) Pointer() (PointerID, bool) {
	return e.pointer, e.hasPointer
}

// OwnedBy reports whether id is the pointer bound to this entity.
func (e *Entity) OwnedBy(id PointerID) bool {
	return e.hasPointer && e.pointer == id
}

// Contains reports whether p falls inside the entity's circular hit area
// around its committed position.
func (e *Entity) Contains(p Vec2) bool {
	return e.position.DistanceSquared(p) <= e.radius*e.radius
}
