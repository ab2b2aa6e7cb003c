// Package kinetic is the reference physics engine: a semi-implicit Euler
// integrator with gravity, linear damping and a ground plane at y=0. It
// implements enough of the engine contracts to run sessions headless and to
// test the systems deterministically.
package kinetic

import (
	"context"
	"errors"
	"sync"

	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/mathx"
)

// ErrBadGeometry is returned for collider descriptors that cannot produce a
// usable shape.
var ErrBadGeometry = errors.New("kinetic: malformed collider geometry")

// Engine implements engine.PhysicsEngine.
type Engine struct{}

// Load is the default engine.PhysicsLoader. The real engine module arrives
// asynchronously; loading here is immediate but still honors ctx so callers
// exercise the same completion path.
func Load(ctx context.Context) (engine.PhysicsEngine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return Engine{}, nil
	}
}

func (Engine) NewWorld(gravity mathx.Vec3) engine.World {
	return &world{gravity: gravity}
}

type world struct {
	mu      sync.Mutex
	gravity mathx.Vec3
	bodies  []*body
	freed   bool
}

func (w *world) CreateBody(desc engine.BodyDesc) (engine.Body, error) {
	if err := validate(desc.Collider); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.freed {
		return nil, errors.New("kinetic: world already freed")
	}

	b := &body{
		kind:        desc.Kind,
		translation: desc.Translation,
		rotation:    desc.Rotation,
		damping:     desc.LinearDamping,
		sensor:      desc.Collider.Sensor,
		restY:       restHeight(desc.Collider),
	}
	if (b.rotation == mathx.Quat{}) {
		b.rotation = mathx.QuatIdentity
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

func (w *world) RemoveBody(rb engine.Body) {
	b, ok := rb.(*body)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, cur := range w.bodies {
		if cur == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

func (w *world) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.freed || dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.kind != engine.BodyDynamic || b.sensor {
			continue
		}
		b.velocity = b.velocity.Add(w.gravity.Scale(dt))
		if b.damping > 0 {
			factor := 1 - b.damping*dt
			if factor < 0 {
				factor = 0
			}
			b.velocity = b.velocity.Scale(factor)
		}
		b.translation = b.translation.Add(b.velocity.Scale(dt))

		// ground plane keeps dynamic bodies from falling through y=0
		if b.translation.Y < b.restY {
			b.translation.Y = b.restY
			if b.velocity.Y < 0 {
				b.velocity.Y = 0
			}
		}
	}
}

func (w *world) BodyCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.bodies)
}

func (w *world) Free() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bodies = nil
	w.freed = true
}

func validate(c engine.ColliderDesc) error {
	switch c.Shape {
	case engine.ShapeBox:
		if c.HalfExtents.X <= 0 || c.HalfExtents.Y <= 0 || c.HalfExtents.Z <= 0 {
			return ErrBadGeometry
		}
	case engine.ShapeSphere:
		if c.Radius <= 0 {
			return ErrBadGeometry
		}
	case engine.ShapeCapsule:
		if c.Radius <= 0 || c.HalfHeight <= 0 {
			return ErrBadGeometry
		}
	case engine.ShapeMesh:
		if len(c.Vertices) < 3 {
			return ErrBadGeometry
		}
	default:
		return ErrBadGeometry
	}
	return nil
}

// restHeight is the distance from a body's origin to its lowest point, used
// as the resting height on the ground plane.
func restHeight(c engine.ColliderDesc) float64 {
	switch c.Shape {
	case engine.ShapeBox:
		return c.HalfExtents.Y
	case engine.ShapeSphere:
		return c.Radius
	case engine.ShapeCapsule:
		return c.HalfHeight + c.Radius
	default:
		return 0
	}
}

type body struct {
	kind        engine.BodyKind
	translation mathx.Vec3
	rotation    mathx.Quat
	velocity    mathx.Vec3
	damping     float64
	restY       float64
	sensor      bool
}

func (b *body) Translation() mathx.Vec3     { return b.translation }
func (b *body) SetTranslation(v mathx.Vec3) { b.translation = v }

func (b *body) Rotation() mathx.Quat     { return b.rotation }
func (b *body) SetRotation(q mathx.Quat) { b.rotation = q }

func (b *body) LinearVelocity() mathx.Vec3     { return b.velocity }
func (b *body) SetLinearVelocity(v mathx.Vec3) { b.velocity = v }

// ApplyImpulse treats mass as unit, so an impulse is a direct velocity delta.
func (b *body) ApplyImpulse(v mathx.Vec3) {
	if b.kind == engine.BodyDynamic {
		b.velocity = b.velocity.Add(v)
	}
}

func (b *body) IsSensor() bool { return b.sensor }
