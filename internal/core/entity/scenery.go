package entity

import (
	"github.com/verdant-games/gecko/internal/core/assets"
	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// Scenery is static scene geometry: a fixed body plus a non-animated visual.
type Scenery struct {
	Base
	visual *assets.Visual

	phys *PhysicsComponent
	rend *RenderComponent
}

// NewScenery builds a static entity from an explicit body descriptor. The
// descriptor's kind is forced to static; scenery never moves.
func NewScenery(id ID, visual *assets.Visual, desc engine.BodyDesc, lg log.Log) *Scenery {
	desc.Kind = engine.BodyStatic
	if (desc.Rotation == mathx.Quat{}) {
		desc.Rotation = mathx.QuatIdentity
	}

	s := &Scenery{
		Base:   NewBase(id, KindScenery, lg),
		visual: visual,
		phys:   &PhysicsComponent{Desc: desc},
		rend:   &RenderComponent{},
	}
	s.Components().Add(s.phys)
	s.Components().Add(s.rend)
	return s
}

func (s *Scenery) InitPhysics(w engine.World) error {
	body, err := w.CreateBody(s.phys.Desc)
	if err != nil {
		return err
	}
	s.phys.Body = body
	return nil
}

func (s *Scenery) UpdatePhysics(float64, engine.World) {}

func (s *Scenery) DisposePhysics(w engine.World) {
	if s.phys.Body != nil {
		w.RemoveBody(s.phys.Body)
		s.phys.Body = nil
	}
}

func (s *Scenery) InitRender(sc engine.Scene) error {
	node, err := s.visual.Instantiate()
	if err != nil {
		return err
	}
	node.SetTranslation(s.phys.Desc.Translation)
	node.SetRotation(s.phys.Desc.Rotation)
	sc.Add(node)
	s.rend.Node = node
	return nil
}

func (s *Scenery) UpdateRender(float64, engine.Scene, engine.Camera, engine.Renderer) {}

func (s *Scenery) DisposeRender(sc engine.Scene, _ engine.Camera) {
	if s.rend.Node != nil {
		sc.Remove(s.rend.Node)
		s.rend.Node.Free()
		s.rend.Node = nil
	}
}

func (s *Scenery) Dispose() {
	s.visual = nil
}
