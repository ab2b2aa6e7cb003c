package entity

import (
	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// ID is a stable entity identity drawn from a finite, known-in-advance set.
// Identity is fixed at construction; the manager never assigns one.
type ID string

const (
	IDPlayer     ID = "player"
	IDGround     ID = "ground"
	IDBackdrop   ID = "backdrop"
	IDScanTarget ID = "scan_target"
)

// Kind tags the concrete entity variant. Shared behavior is reached through
// capability interfaces, not through the kind; systems only special-case a
// kind for named cross-entity interactions (camera target, proximity pair).
type Kind uint8

const (
	KindAvatar Kind = iota
	KindScenery
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindAvatar:
		return "avatar"
	case KindScenery:
		return "scenery"
	case KindMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// Entity is a stable identity plus an attached-component set.
type Entity interface {
	ID() ID
	Kind() Kind
	Components() *Registry
}

// Disposable releases an entity's own references at removal. Engine-owned
// resources are not touched here; those are freed by the owning systems
// through the physics/render dispose capabilities.
type Disposable interface {
	Dispose()
}

// PhysicsCapable is the capability contract an entity implements when it
// declares a physics component. The world is always received as a parameter;
// entities must not retain it.
type PhysicsCapable interface {
	InitPhysics(w engine.World) error
	UpdatePhysics(dt float64, w engine.World)
	DisposePhysics(w engine.World)
}

// RenderCapable is the capability contract behind the render component.
type RenderCapable interface {
	InitRender(s engine.Scene) error
	UpdateRender(dt float64, s engine.Scene, c engine.Camera, r engine.Renderer)
	DisposeRender(s engine.Scene, c engine.Camera)
}

// Base carries the identity and component registry shared by the concrete
// kinds. Embed it; it has no behavior of its own.
type Base struct {
	id       ID
	kind     Kind
	registry *Registry
}

func NewBase(id ID, kind Kind, lg log.Log) Base {
	return Base{id: id, kind: kind, registry: NewRegistry(lg)}
}

func (b *Base) ID() ID                { return b.id }
func (b *Base) Kind() Kind            { return b.kind }
func (b *Base) Components() *Registry { return b.registry }
