package entity

import (
	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// ComponentID addresses a component slot on an entity. An entity holds at
// most one component per ID.
type ComponentID uint32

const (
	ComponentPhysics ComponentID = iota + 1
	ComponentRender
	ComponentControl
	ComponentScan
)

// Component is pure data bound to exactly one entity at construction time.
// Components never mutate engine state on their own; the owning system does
// that through the entity's capability methods.
type Component interface {
	TypeID() ComponentID
}

// Registry is the per-entity component store.
type Registry struct {
	lg         log.Log
	components map[ComponentID]Component
}

func NewRegistry(lg log.Log) *Registry {
	if lg == nil {
		lg = log.Provide()
	}
	return &Registry{lg: lg, components: make(map[ComponentID]Component)}
}

// Add stores the component keyed by its type. Adding the same type twice
// overwrites the previous instance; last write wins, with a warning because
// it usually indicates a construction defect.
func (r *Registry) Add(c Component) {
	id := c.TypeID()
	if _, exists := r.components[id]; exists {
		r.lg.Warn("component overwritten", log.Int("component", int(id)))
	}
	r.components[id] = c
}

// Get returns the component for id, or false when absent. Never panics.
func (r *Registry) Get(id ComponentID) (Component, bool) {
	c, ok := r.components[id]
	return c, ok
}

// Has reports whether the entity carries a component of the given type.
func (r *Registry) Has(id ComponentID) bool {
	_, ok := r.components[id]
	return ok
}

// PhysicsComponent marks an entity as simulation-bearing and holds its body
// handle once the physics system has initialized it.
type PhysicsComponent struct {
	Desc engine.BodyDesc
	Body engine.Body
}

func (*PhysicsComponent) TypeID() ComponentID { return ComponentPhysics }

// RenderComponent marks an entity as drawable and holds its scene node.
type RenderComponent struct {
	Node engine.Node
	// Placeholder is set when the node is a substitute primitive standing in
	// for a visual that failed to load.
	Placeholder bool
}

func (*RenderComponent) TypeID() ComponentID { return ComponentRender }

// ControlComponent holds the latest movement intent for a steerable entity.
// Input glue writes it; the entity's physics update consumes it.
type ControlComponent struct {
	Move         mathx.Vec3 // desired planar direction, entity-local
	Yaw          float64
	ImpulseScale float64
	// Halted blocks movement after an out-of-bounds breach until an explicit
	// reset command restores the entity.
	Halted bool
}

func (*ControlComponent) TypeID() ComponentID { return ComponentControl }

// ScanComponent marks the objective marker and carries a pending relocation
// the physics system applies on the next update.
type ScanComponent struct {
	Index   int
	Pending *mathx.Vec3
}

func (*ScanComponent) TypeID() ComponentID { return ComponentScan }
