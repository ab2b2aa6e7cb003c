package entity

import (
	"math"

	"github.com/verdant-games/gecko/internal/core/assets"
	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// Avatar is the player-controlled entity. It declares physics, render and
// control components and implements the matching capability contracts.
type Avatar struct {
	Base
	lg     log.Log
	visual *assets.Visual

	phys *PhysicsComponent
	ctrl *ControlComponent
	rend *RenderComponent

	moveSpeed float64
	animTime  float64
}

const (
	avatarMoveSpeed     = 4.0
	avatarCapsuleRadius = 0.4
	avatarCapsuleHalfH  = 0.6
)

// NewAvatar builds the player avatar. The visual must be fully loaded before
// the avatar is registered anywhere; a nil visual is tolerated and surfaces
// later as a render-init failure handled by the render system.
func NewAvatar(visual *assets.Visual, start mathx.Vec3, lg log.Log) *Avatar {
	if lg == nil {
		lg = log.Provide()
	}
	a := &Avatar{
		Base:      NewBase(IDPlayer, KindAvatar, lg),
		lg:        lg,
		visual:    visual,
		moveSpeed: avatarMoveSpeed,
	}

	a.phys = &PhysicsComponent{Desc: engine.BodyDesc{
		Kind:          engine.BodyDynamic,
		Translation:   start,
		Rotation:      mathx.QuatIdentity,
		LinearDamping: 0.4,
		Collider: engine.ColliderDesc{
			Shape:      engine.ShapeCapsule,
			Radius:     avatarCapsuleRadius,
			HalfHeight: avatarCapsuleHalfH,
		},
	}}
	a.ctrl = &ControlComponent{ImpulseScale: 1}
	a.rend = &RenderComponent{}

	a.Components().Add(a.phys)
	a.Components().Add(a.ctrl)
	a.Components().Add(a.rend)
	return a
}

// Control exposes the avatar's control component for input glue.
func (a *Avatar) Control() *ControlComponent { return a.ctrl }

// Body returns the rigid body, nil before physics init.
func (a *Avatar) Body() engine.Body { return a.phys.Body }

func (a *Avatar) InitPhysics(w engine.World) error {
	body, err := w.CreateBody(a.phys.Desc)
	if err != nil {
		return err
	}
	a.phys.Body = body
	return nil
}

func (a *Avatar) UpdatePhysics(dt float64, _ engine.World) {
	body := a.phys.Body
	if body == nil {
		return
	}
	if a.ctrl.Halted {
		v := body.LinearVelocity()
		body.SetLinearVelocity(mathx.V(0, v.Y, 0))
		return
	}

	dir := a.ctrl.Move.RotateY(a.ctrl.Yaw).Normalized()
	planar := dir.Scale(a.moveSpeed * a.ctrl.ImpulseScale)
	v := body.LinearVelocity()
	body.SetLinearVelocity(mathx.V(planar.X, v.Y, planar.Z))
	body.SetRotation(mathx.QuatFromYaw(a.ctrl.Yaw))
}

func (a *Avatar) DisposePhysics(w engine.World) {
	if a.phys.Body != nil {
		w.RemoveBody(a.phys.Body)
		a.phys.Body = nil
	}
}

func (a *Avatar) InitRender(s engine.Scene) error {
	node, err := a.visual.Instantiate()
	if err != nil {
		return err
	}
	s.Add(node)
	a.rend.Node = node
	return nil
}

func (a *Avatar) UpdateRender(dt float64, _ engine.Scene, _ engine.Camera, _ engine.Renderer) {
	node := a.rend.Node
	if node == nil {
		return
	}
	if body := a.phys.Body; body != nil {
		node.SetTranslation(body.Translation())
		node.SetRotation(body.Rotation())
	}
	a.animTime += dt
	if clip, ok := a.visual.Animation("walk"); ok && clip.Duration > 0 {
		a.animTime = math.Mod(a.animTime, clip.Duration)
	}
}

func (a *Avatar) DisposeRender(s engine.Scene, _ engine.Camera) {
	if a.rend.Node != nil {
		s.Remove(a.rend.Node)
		a.rend.Node.Free()
		a.rend.Node = nil
	}
}

func (a *Avatar) Dispose() {
	a.visual = nil
}
