// Package render owns the render surface, camera and scene graph, and
// synchronizes entity visuals from simulation state once per frame.
package render

import (
	"math"
	"sync"

	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/entity"
	"github.com/verdant-games/gecko/internal/core/events"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/manager"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// Options configures the system.
type Options struct {
	Width, Height int
	FOV           float64
	// CameraOffset is the follow camera's position relative to the followed
	// entity, rotated into the entity's facing direction each frame.
	CameraOffset mathx.Vec3
	// Smoothing scales per-second camera convergence. The camera always
	// interpolates; it never snaps.
	Smoothing float64
}

// System implements the render side of the frame loop.
type System struct {
	mu       sync.Mutex
	lg       log.Log
	b        *bus.Bus
	entities *manager.Manager
	re       engine.RenderEngine
	opts     Options

	renderer engine.Renderer
	scene    engine.Scene
	camera   engine.Camera

	cache      []entity.Entity
	cacheDirty bool

	followID   entity.ID
	hasFollow  bool
	lookTarget mathx.Vec3

	disposed bool
	subs     []bus.Subscription
}

// New builds the render surface immediately; unlike physics there is no
// asynchronous readiness gate.
func New(b *bus.Bus, entities *manager.Manager, re engine.RenderEngine, opts Options, lg log.Log) *System {
	if lg == nil {
		lg = log.Provide()
	}
	aspect := 1.0
	if opts.Height > 0 {
		aspect = float64(opts.Width) / float64(opts.Height)
	}
	s := &System{
		lg:         lg.With(log.String("system", "render")),
		b:          b,
		entities:   entities,
		re:         re,
		opts:       opts,
		renderer:   re.NewRenderer(opts.Width, opts.Height),
		scene:      re.NewScene(),
		camera:     re.NewCamera(opts.FOV, aspect),
		cacheDirty: true,
	}

	s.subs = append(s.subs,
		bus.On(b, events.EntityAdded, s.onEntityAdded),
		bus.On(b, events.DisposeRenderRequest, s.onDisposeRequest),
	)
	return s
}

// Scene exposes the scene graph for asset glue and tests.
func (s *System) Scene() engine.Scene { return s.scene }

// Camera exposes the camera for tests.
func (s *System) Camera() engine.Camera { return s.camera }

// Renderer exposes the renderer for tests.
func (s *System) Renderer() engine.Renderer { return s.renderer }

// FollowEntity designates the entity the camera tracks.
func (s *System) FollowEntity(id entity.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followID = id
	s.hasFollow = true
}

// Update runs every render-bearing entity's render capability, applies
// camera follow and issues one draw call.
func (s *System) Update(dt float64) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}

	for _, e := range s.workingSetLocked() {
		if rc, ok := e.(entity.RenderCapable); ok {
			rc.UpdateRender(dt, s.scene, s.camera, s.renderer)
		}
	}

	s.followLocked(dt)
	s.renderer.Draw(s.scene, s.camera)
	s.mu.Unlock()
}

// Resize recomputes the camera aspect ratio and resizes the render target.
// Pure side effect, no state machine involved.
func (s *System) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || height == 0 {
		return
	}
	s.camera.SetAspect(float64(width) / float64(height))
	s.renderer.Resize(width, height)
}

// Dispose frees every cached entity's visuals, then all remaining scene
// objects, then the renderer. Safe to call more than once.
func (s *System) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	ents := s.entities.EntitiesWith(entity.ComponentRender)
	scene, camera, renderer := s.scene, s.camera, s.renderer
	s.cache = nil
	s.mu.Unlock()

	for _, e := range ents {
		if rc, ok := e.(entity.RenderCapable); ok {
			rc.DisposeRender(scene, camera)
		}
	}
	scene.FreeAll()
	renderer.Free()
	for _, sub := range s.subs {
		sub.Cancel()
	}
}

// onEntityAdded initializes visuals immediately. A missing renderable is
// tolerated by substituting a placeholder primitive: an invisible entity is
// worse than an ugly one.
func (s *System) onEntityAdded(e entity.Entity) {
	if !e.Components().Has(entity.ComponentRender) {
		return
	}

	s.mu.Lock()
	s.cacheDirty = true
	disposed := s.disposed
	scene := s.scene
	s.mu.Unlock()
	if disposed {
		return
	}

	rc, ok := e.(entity.RenderCapable)
	if !ok {
		s.lg.Warn("entity declares render component without capability",
			log.String("entity", string(e.ID())))
		return
	}
	if err := rc.InitRender(scene); err != nil {
		s.lg.Warn("render init failed, substituting placeholder",
			log.String("entity", string(e.ID())), log.Err(err))
		s.placeholder(e, scene)
	}
}

func (s *System) placeholder(e entity.Entity, scene engine.Scene) {
	c, ok := e.Components().Get(entity.ComponentRender)
	if !ok {
		return
	}
	rc, ok := c.(*entity.RenderComponent)
	if !ok {
		return
	}
	node := s.re.NewNode(string(e.ID()) + "/placeholder")
	scene.Add(node)
	rc.Node = node
	rc.Placeholder = true
}

func (s *System) onDisposeRequest(req events.DisposeRequest) {
	s.mu.Lock()
	s.cacheDirty = true
	disposed := s.disposed
	scene, camera := s.scene, s.camera
	s.mu.Unlock()
	if disposed {
		return
	}
	if rc, ok := req.Entity.(entity.RenderCapable); ok {
		rc.DisposeRender(scene, camera)
	}
}

func (s *System) workingSetLocked() []entity.Entity {
	if s.cacheDirty || s.cache == nil {
		s.cache = s.entities.EntitiesWith(entity.ComponentRender)
		s.cacheDirty = false
	}
	return s.cache
}

// followLocked eases the camera toward the followed entity's frame: a fixed
// offset rotated into its facing direction, looking at the entity itself.
func (s *System) followLocked(dt float64) {
	if !s.hasFollow {
		return
	}
	e, ok := s.entities.Get(s.followID)
	if !ok {
		return
	}
	pos, yaw, ok := pose(e)
	if !ok {
		return
	}

	targetPos := pos.Add(s.opts.CameraOffset.RotateY(yaw))

	// exponential ease keeps convergence framerate-independent
	t := 1 - math.Exp(-s.opts.Smoothing*dt)
	s.camera.SetTranslation(mathx.Lerp(s.camera.Translation(), targetPos, t))
	s.lookTarget = mathx.Lerp(s.lookTarget, pos, t)
	s.camera.LookAt(s.lookTarget)
}

// pose reads an entity's position and yaw from its physics body, falling
// back to its render node when physics has not initialized yet.
func pose(e entity.Entity) (mathx.Vec3, float64, bool) {
	if c, ok := e.Components().Get(entity.ComponentPhysics); ok {
		if pc, ok := c.(*entity.PhysicsComponent); ok && pc.Body != nil {
			return pc.Body.Translation(), pc.Body.Rotation().Yaw(), true
		}
	}
	if c, ok := e.Components().Get(entity.ComponentRender); ok {
		if rc, ok := c.(*entity.RenderComponent); ok && rc.Node != nil {
			return rc.Node.Translation(), rc.Node.Rotation().Yaw(), true
		}
	}
	return mathx.Vec3{}, 0, false
}
