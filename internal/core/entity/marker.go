package entity

import (
	"math"

	"github.com/verdant-games/gecko/internal/core/assets"
	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// Marker is the objective entity the player scans. Its body is a kinematic
// sensor: it detects proximity without pushing anything around.
type Marker struct {
	Base
	visual *assets.Visual

	phys *PhysicsComponent
	rend *RenderComponent
	scan *ScanComponent

	bobPhase float64
}

const markerSensorRadius = 0.75

func NewMarker(visual *assets.Visual, at mathx.Vec3, lg log.Log) *Marker {
	m := &Marker{
		Base:   NewBase(IDScanTarget, KindMarker, lg),
		visual: visual,
	}
	m.phys = &PhysicsComponent{Desc: engine.BodyDesc{
		Kind:        engine.BodyKinematic,
		Translation: at,
		Rotation:    mathx.QuatIdentity,
		Collider: engine.ColliderDesc{
			Shape:  engine.ShapeSphere,
			Radius: markerSensorRadius,
			Sensor: true,
		},
	}}
	m.rend = &RenderComponent{}
	m.scan = &ScanComponent{}

	m.Components().Add(m.phys)
	m.Components().Add(m.rend)
	m.Components().Add(m.scan)
	return m
}

// Relocate queues a move to the next objective position. The new translation
// is applied by the physics system on its next update, never directly here.
func (m *Marker) Relocate(index int, to mathx.Vec3) {
	m.scan.Index = index
	m.scan.Pending = &to
}

// Body returns the sensor body, nil before physics init.
func (m *Marker) Body() engine.Body { return m.phys.Body }

func (m *Marker) InitPhysics(w engine.World) error {
	body, err := w.CreateBody(m.phys.Desc)
	if err != nil {
		return err
	}
	m.phys.Body = body
	return nil
}

func (m *Marker) UpdatePhysics(_ float64, _ engine.World) {
	if m.phys.Body == nil {
		return
	}
	if m.scan.Pending != nil {
		m.phys.Body.SetTranslation(*m.scan.Pending)
		m.scan.Pending = nil
	}
}

func (m *Marker) DisposePhysics(w engine.World) {
	if m.phys.Body != nil {
		w.RemoveBody(m.phys.Body)
		m.phys.Body = nil
	}
}

func (m *Marker) InitRender(s engine.Scene) error {
	node, err := m.visual.Instantiate()
	if err != nil {
		return err
	}
	node.SetTranslation(m.phys.Desc.Translation)
	s.Add(node)
	m.rend.Node = node
	return nil
}

// UpdateRender tracks the sensor body and adds a slow vertical bob so the
// objective reads as interactive.
func (m *Marker) UpdateRender(dt float64, _ engine.Scene, _ engine.Camera, _ engine.Renderer) {
	node := m.rend.Node
	if node == nil {
		return
	}
	m.bobPhase += dt * 2
	pos := m.phys.Desc.Translation
	if m.phys.Body != nil {
		pos = m.phys.Body.Translation()
	}
	pos.Y += 0.15 * math.Sin(m.bobPhase)
	node.SetTranslation(pos)
}

func (m *Marker) DisposeRender(s engine.Scene, _ engine.Camera) {
	if m.rend.Node != nil {
		s.Remove(m.rend.Node)
		m.rend.Node.Free()
		m.rend.Node = nil
	}
}

func (m *Marker) Dispose() {
	m.visual = nil
}
