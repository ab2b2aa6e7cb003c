package engine

// Engine-facing contracts for the two black-box collaborators of the runtime
// core: a rigid-body physics engine and a scene-graph renderer. The systems
// only ever talk to these interfaces; the in-tree kinetic and headless
// packages provide reference implementations for tests and headless runs.

import (
	"context"

	"github.com/verdant-games/gecko/internal/core/mathx"
)

// PhysicsEngine creates simulation worlds. Engines load asynchronously, so
// instances are obtained through a PhysicsLoader rather than a constructor.
type PhysicsEngine interface {
	NewWorld(gravity mathx.Vec3) World
}

// PhysicsLoader resolves the physics engine module. Loading may take
// arbitrarily long; callers must tolerate completion at any time.
type PhysicsLoader func(ctx context.Context) (PhysicsEngine, error)

// World is one simulation instance. It is owned by exactly one system and
// mutated only during that system's update or lifecycle handling.
type World interface {
	// CreateBody adds a rigid body built from desc. Malformed descriptors
	// (for example a mesh collider without vertices) return an error and
	// leave the world unchanged.
	CreateBody(desc BodyDesc) (Body, error)
	// RemoveBody frees the body and its collider. Unknown bodies are ignored.
	RemoveBody(b Body)
	// Step advances the simulation by dt seconds.
	Step(dt float64)
	// BodyCount reports the number of live bodies.
	BodyCount() int
	// Free releases the world. Step and CreateBody become no-ops afterward.
	Free()
}

// BodyKind selects how a body participates in integration.
type BodyKind uint8

const (
	// BodyDynamic is fully simulated.
	BodyDynamic BodyKind = iota
	// BodyKinematic is moved only by SetTranslation, never by integration.
	BodyKinematic
	// BodyStatic never moves.
	BodyStatic
)

// Shape selects the collider geometry.
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeSphere
	ShapeCapsule
	ShapeMesh
)

// ColliderDesc declares collision geometry for a body.
type ColliderDesc struct {
	Shape       Shape
	HalfExtents mathx.Vec3 // box
	Radius      float64    // sphere, capsule
	HalfHeight  float64    // capsule
	Vertices    []mathx.Vec3
	// Sensor colliders detect overlap without collision response.
	Sensor bool
}

// BodyDesc declares a rigid body.
type BodyDesc struct {
	Kind          BodyKind
	Translation   mathx.Vec3
	Rotation      mathx.Quat
	LinearDamping float64
	Collider      ColliderDesc
}

// Body exposes the simulation state of one rigid body.
type Body interface {
	Translation() mathx.Vec3
	SetTranslation(mathx.Vec3)
	Rotation() mathx.Quat
	SetRotation(mathx.Quat)
	LinearVelocity() mathx.Vec3
	SetLinearVelocity(mathx.Vec3)
	ApplyImpulse(mathx.Vec3)
	IsSensor() bool
}

// RenderEngine creates the render surface primitives.
type RenderEngine interface {
	NewRenderer(width, height int) Renderer
	NewScene() Scene
	NewCamera(fovDegrees, aspect float64) Camera
	// NewNode builds a drawable node. Asset glue uses it to instantiate
	// loaded visuals; the render system uses it for placeholder primitives.
	NewNode(name string) Node
}

// Scene is a flat scene graph of nodes.
type Scene interface {
	Add(n Node)
	Remove(n Node)
	Nodes() []Node
	// FreeAll frees every remaining node's geometry and empties the scene.
	FreeAll()
}

// Node is one drawable object.
type Node interface {
	Name() string
	Translation() mathx.Vec3
	SetTranslation(mathx.Vec3)
	Rotation() mathx.Quat
	SetRotation(mathx.Quat)
	Visible() bool
	SetVisible(bool)
	// Free releases the node's geometry and material.
	Free()
}

// Camera is the view into the scene.
type Camera interface {
	Translation() mathx.Vec3
	SetTranslation(mathx.Vec3)
	Target() mathx.Vec3
	LookAt(mathx.Vec3)
	SetAspect(aspect float64)
}

// Renderer draws a scene from a camera and owns the render target.
type Renderer interface {
	Draw(s Scene, c Camera)
	Resize(width, height int)
	Free()
}
