// Package manager owns the canonical entity collection. Every other system
// holds a reference to this one Manager; none keeps its own copy of the
// collection, only derived caches invalidated through lifecycle events.
package manager

import (
	"sync"

	"github.com/verdant-games/gecko/internal/core/entity"
	"github.com/verdant-games/gecko/internal/core/events"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/observability/log"
	"github.com/verdant-games/gecko/pkg/sequence"
)

type Manager struct {
	mu   sync.RWMutex
	lg   log.Log
	b    *bus.Bus
	byID map[entity.ID]entity.Entity
	// order preserves insertion order for deterministic queries
	order []entity.ID
}

func New(b *bus.Bus, lg log.Log) *Manager {
	if lg == nil {
		lg = log.Provide()
	}
	return &Manager{
		lg:   lg,
		b:    b,
		byID: make(map[entity.ID]entity.Entity),
	}
}

// Add registers a fully-constructed entity under its identity and announces
// it on the bus. A duplicate identity replaces the previous entity with a
// warning; the displaced entity goes through the same disposal path Remove
// uses, so two entities with one identity never coexist and the old one never
// leaks its engine resources.
func (m *Manager) Add(e entity.Entity) {
	id := e.ID()

	m.mu.Lock()
	prev, exists := m.byID[id]
	m.byID[id] = e
	if !exists {
		m.order = append(m.order, id)
	}
	m.mu.Unlock()

	if exists {
		m.lg.Warn("duplicate entity identity, replacing", log.String("entity", string(id)))
		m.requestResourceDisposal(prev)
		m.disposeOwn(prev)
		bus.Emit(m.b, events.EntityDisposed, events.Disposed{ID: id})
	}
	bus.Emit(m.b, events.EntityAdded, e)
}

// Get looks up an entity by identity.
func (m *Manager) Get(id entity.ID) (entity.Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[id]
	return e, ok
}

// Count reports the number of registered entities.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Remove unregisters and disposes the entity. The systems free their engine
// resources first, driven by the dispose-request events, then the entity
// releases its own references. Returns whether an entity was found.
func (m *Manager) Remove(id entity.ID) bool {
	m.mu.Lock()
	e, ok := m.byID[id]
	if ok {
		delete(m.byID, id)
		m.deleteFromOrder(id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	m.requestResourceDisposal(e)
	m.disposeOwn(e)
	bus.Emit(m.b, events.EntityDisposed, events.Disposed{ID: id})
	return true
}

// EntitiesWith returns all entities carrying the component, in insertion
// order. Callers must not depend on the order beyond test determinism.
func (m *Manager) EntitiesWith(cid entity.ComponentID) []entity.Entity {
	m.mu.RLock()
	snapshot := make([]entity.Entity, 0, len(m.order))
	for _, id := range m.order {
		snapshot = append(snapshot, m.byID[id])
	}
	m.mu.RUnlock()

	return sequence.From(snapshot).
		Filter(func(e entity.Entity) bool { return e.Components().Has(cid) }).
		Collect()
}

// Dispose tears down every remaining entity, then clears the collection.
// Engine-side resources are expected to have been freed by the owning
// systems already; this pass only runs entity-local disposal.
func (m *Manager) Dispose() {
	m.mu.Lock()
	remaining := make([]entity.Entity, 0, len(m.order))
	for _, id := range m.order {
		remaining = append(remaining, m.byID[id])
	}
	m.byID = make(map[entity.ID]entity.Entity)
	m.order = nil
	m.mu.Unlock()

	for _, e := range remaining {
		m.disposeOwn(e)
	}
}

func (m *Manager) deleteFromOrder(id entity.ID) {
	for i, cur := range m.order {
		if cur == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func (m *Manager) requestResourceDisposal(e entity.Entity) {
	if e.Components().Has(entity.ComponentPhysics) {
		bus.Emit(m.b, events.DisposePhysicsRequest, events.DisposeRequest{Entity: e})
	}
	if e.Components().Has(entity.ComponentRender) {
		bus.Emit(m.b, events.DisposeRenderRequest, events.DisposeRequest{Entity: e})
	}
}

// disposeOwn runs the entity's own dispose capability. A missing capability
// is a programming defect, but teardown must not stop for it.
func (m *Manager) disposeOwn(e entity.Entity) {
	d, ok := e.(entity.Disposable)
	if !ok {
		m.lg.Warn("entity lacks dispose capability",
			log.String("entity", string(e.ID())),
			log.String("kind", e.Kind().String()),
		)
		return
	}
	d.Dispose()
}
