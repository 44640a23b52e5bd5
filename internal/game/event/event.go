// Package event defines the player-intent events the protocol layer
// delivers to the tick pipeline, and the per-tick batch they are grouped
// into.
package event

import (
	"blockyard.gg/internal/game/session"
	"blockyard.gg/internal/game/world"
)

// Face is the clicked face of a block.
type Face uint8

const (
	FaceBottom Face = iota
	FaceTop
	FaceNorth
	FaceSouth
	FaceWest
	FaceEast
)

// Offset returns the unit offset from a block to its neighbor through the
// face.
func (f Face) Offset() world.Vec3i {
	switch f {
	case FaceBottom:
		return world.Vec3i{Y: -1}
	case FaceTop:
		return world.Vec3i{Y: 1}
	case FaceNorth:
		return world.Vec3i{Z: -1}
	case FaceSouth:
		return world.Vec3i{Z: 1}
	case FaceWest:
		return world.Vec3i{X: -1}
	case FaceEast:
		return world.Vec3i{X: 1}
	}
	return world.Vec3i{}
}

func (f Face) String() string {
	switch f {
	case FaceBottom:
		return "BOTTOM"
	case FaceTop:
		return "TOP"
	case FaceNorth:
		return "NORTH"
	case FaceSouth:
		return "SOUTH"
	case FaceWest:
		return "WEST"
	case FaceEast:
		return "EAST"
	}
	return "UNKNOWN"
}

// ParseFace maps a wire face name to a Face.
func ParseFace(s string) (Face, bool) {
	switch s {
	case "BOTTOM":
		return FaceBottom, true
	case "TOP":
		return FaceTop, true
	case "NORTH":
		return FaceNorth, true
	case "SOUTH":
		return FaceSouth, true
	case "WEST":
		return FaceWest, true
	case "EAST":
		return FaceEast, true
	}
	return FaceBottom, false
}

// Hand is the hand used for an interaction.
type Hand uint8

const (
	MainHand Hand = iota
	OffHand
)

// ParseHand maps a wire hand name to a Hand.
func ParseHand(s string) (Hand, bool) {
	switch s {
	case "MAIN_HAND":
		return MainHand, true
	case "OFF_HAND":
		return OffHand, true
	}
	return MainHand, false
}

// ClientAdded announces a freshly accepted connection. The session is
// created by the transport; the lifecycle handler attaches it to the
// world.
type ClientAdded struct {
	Session *session.Session
}

// ClientRemoved announces a disconnect.
type ClientRemoved struct {
	Client string
}

// UpdateLook reports the client's current facing. It is applied before
// any gameplay handler runs, so placement sees the yaw the client had
// when it clicked.
type UpdateLook struct {
	Client string
	Yaw    float64
}

// StartSneaking is the sneak gesture used as the mode toggle.
type StartSneaking struct {
	Client string
}

// StartDigging begins breaking a block.
type StartDigging struct {
	Client string
	Pos    world.Vec3i
}

// FinishDigging completes breaking a block. The dig-duration gating
// between start and finish is owned by the protocol layer.
type FinishDigging struct {
	Client string
	Pos    world.Vec3i
}

// UseItemOnBlock places the held item against a block.
type UseItemOnBlock struct {
	Client string
	Pos    world.Vec3i
	Face   Face
	Cursor [3]float64 // hit offset within the clicked face, each in [0,1]
	Hand   Hand
}

// Gameplay is any intent event carrying a client identity. Connection
// lifecycle events are batched separately, ahead of gameplay.
type Gameplay interface {
	ClientID() string
}

func (e UpdateLook) ClientID() string     { return e.Client }
func (e StartSneaking) ClientID() string  { return e.Client }
func (e StartDigging) ClientID() string   { return e.Client }
func (e FinishDigging) ClientID() string  { return e.Client }
func (e UseItemOnBlock) ClientID() string { return e.Client }

// Batch is one tick's worth of already-ordered events, grouped by type so
// handlers can run in their fixed order.
type Batch struct {
	Added     []ClientAdded
	Removed   []ClientRemoved
	Looks     []UpdateLook
	Sneaks    []StartSneaking
	DigStart  []StartDigging
	DigFinish []FinishDigging
	Uses      []UseItemOnBlock
}

// Add appends a gameplay event to its group, preserving arrival order
// within the group.
func (b *Batch) Add(ev Gameplay) {
	switch e := ev.(type) {
	case UpdateLook:
		b.Looks = append(b.Looks, e)
	case StartSneaking:
		b.Sneaks = append(b.Sneaks, e)
	case StartDigging:
		b.DigStart = append(b.DigStart, e)
	case FinishDigging:
		b.DigFinish = append(b.DigFinish, e)
	case UseItemOnBlock:
		b.Uses = append(b.Uses, e)
	}
}

// Reset empties the batch for reuse.
func (b *Batch) Reset() {
	b.Added = b.Added[:0]
	b.Removed = b.Removed[:0]
	b.Looks = b.Looks[:0]
	b.Sneaks = b.Sneaks[:0]
	b.DigStart = b.DigStart[:0]
	b.DigFinish = b.DigFinish[:0]
	b.Uses = b.Uses[:0]
}
