// Package events is the single source of truth for the wire contract between
// systems: every event name, each with exactly one payload shape. Topics are
// declared here and nowhere else; the bus panics at init on a duplicate name,
// so the registry stays closed and centrally validated.
//
// Naming: cmd.* are commands requesting an action, everything else is a
// status event stating a fact that already happened.
package events

import (
	"github.com/verdant-games/gecko/internal/core/entity"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/mathx"
)

// GameMode is the coarse gameplay state owned by the game coordinator.
type GameMode string

const (
	ModeLoading GameMode = "loading"
	ModeWaiting GameMode = "waiting"
	ModeNormal  GameMode = "normal"
	ModeGecko   GameMode = "gecko"
)

// Valid reports whether m is one of the known modes.
func (m GameMode) Valid() bool {
	switch m {
	case ModeLoading, ModeWaiting, ModeNormal, ModeGecko:
		return true
	}
	return false
}

// Payload shapes.

type ModeChange struct {
	Mode GameMode
}

type ModeTransition struct {
	Prev GameMode
	Curr GameMode
}

type MoveCommand struct {
	// Direction is the desired planar movement in entity-local space.
	Direction mathx.Vec3
}

type OrientCommand struct {
	Yaw float64
}

type ForceCommand struct {
	// Scale multiplies movement impulse strength.
	Scale float64
}

type DisposeRequest struct {
	Entity entity.Entity
}

type Disposed struct {
	ID entity.ID
}

type InitFailure struct {
	ID   entity.ID
	Kind entity.Kind
	Err  error
}

type TransformUpdate struct {
	ID          entity.ID
	Translation mathx.Vec3
	Rotation    mathx.Quat
}

type CollisionEvent struct {
	A, B     entity.ID
	Distance float64
}

type Relocation struct {
	Index       int
	Translation mathx.Vec3
}

type WinEvent struct {
	Scans int
}

type BoundsBreach struct {
	ID          entity.ID
	Translation mathx.Vec3
}

type Progress struct {
	Stage    string
	Fraction float64
}

type StartBlocked struct {
	Failures int
}

// Command topics.
var (
	CmdChangeMode  = bus.NewTopic[ModeChange]("cmd.change_mode")
	CmdStartGame   = bus.NewTopic[struct{}]("cmd.start_game")
	CmdMove        = bus.NewTopic[MoveCommand]("cmd.move")
	CmdOrient      = bus.NewTopic[OrientCommand]("cmd.orient")
	CmdForceUpdate = bus.NewTopic[ForceCommand]("cmd.force_update")
	CmdResetPlayer = bus.NewTopic[struct{}]("cmd.reset_player")
)

// Entity lifecycle topics.
var (
	EntityAdded           = bus.NewTopic[entity.Entity]("entity.added")
	EntityDisposed        = bus.NewTopic[Disposed]("entity.disposed")
	DisposePhysicsRequest = bus.NewTopic[DisposeRequest]("entity.dispose_physics_request")
	DisposeRenderRequest  = bus.NewTopic[DisposeRequest]("entity.dispose_render_request")
)

// Physics and render status topics.
var (
	PhysicsReady        = bus.NewTopic[struct{}]("physics.ready")
	InitializationError = bus.NewTopic[InitFailure]("physics.initialization_error")
	TransformUpdated    = bus.NewTopic[TransformUpdate]("physics.transform_updated")
	Collision           = bus.NewTopic[CollisionEvent]("physics.collision")
	OutOfBounds         = bus.NewTopic[BoundsBreach]("physics.out_of_bounds")
)

// Game-flow status topics.
var (
	ModeUpdated     = bus.NewTopic[ModeTransition]("game.mode_updated")
	TargetRelocated = bus.NewTopic[Relocation]("game.target_relocated")
	GameWon         = bus.NewTopic[WinEvent]("game.won")
	LoadProgress    = bus.NewTopic[Progress]("game.load_progress")
	StartRefused    = bus.NewTopic[StartBlocked]("game.start_refused")
)
