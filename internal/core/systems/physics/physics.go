// Package physics owns the simulation world: engine bootstrap, per-frame
// stepping, entity rigid-body lifecycle and the proximity trigger.
package physics

import (
	"context"
	"sync"

	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/entity"
	"github.com/verdant-games/gecko/internal/core/events"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/manager"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// State tracks engine bootstrap. Transitions are monotonic; teardown is the
// only way back to StateUninitialized.
type State uint8

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Options configures the system.
type Options struct {
	Loader  engine.PhysicsLoader
	Gravity mathx.Vec3
	// OutOfBoundsY is the floor below which the tracked player is halted.
	OutOfBoundsY float64
	// Trigger configures the proximity check between the player and the
	// objective marker.
	TriggerThreshold float64
	// TriggerCooldown suppresses re-triggering for this many seconds of
	// simulated time after a trigger fires.
	TriggerCooldown float64
}

// System implements the physics side of the frame loop.
type System struct {
	mu       sync.Mutex
	lg       log.Log
	b        *bus.Bus
	entities *manager.Manager
	opts     Options

	state    State
	failed   bool
	torndown bool
	world    engine.World

	// cache is the lazily-rebuilt working set of physics-bearing entities.
	// nil or dirty means it must be recomputed from the manager before use.
	cache      []entity.Entity
	cacheDirty bool

	trigger trigger

	subs []bus.Subscription
}

// New wires the system to the bus and manager. Call Initialize to start the
// engine bootstrap.
func New(b *bus.Bus, entities *manager.Manager, opts Options, lg log.Log) *System {
	if lg == nil {
		lg = log.Provide()
	}
	s := &System{
		lg:         lg.With(log.String("system", "physics")),
		b:          b,
		entities:   entities,
		opts:       opts,
		cacheDirty: true,
		trigger: trigger{
			threshold: opts.TriggerThreshold,
			cooldown:  opts.TriggerCooldown,
		},
	}

	s.subs = append(s.subs,
		bus.On(b, events.EntityAdded, s.onEntityAdded),
		bus.On(b, events.DisposePhysicsRequest, s.onDisposeRequest),
		bus.On(b, events.TargetRelocated, s.onTargetRelocated),
		bus.On(b, events.CmdResetPlayer, s.onResetPlayer),
		bus.On(b, events.CmdMove, s.onMove),
		bus.On(b, events.CmdOrient, s.onOrient),
		bus.On(b, events.CmdForceUpdate, s.onForce),
	)
	return s
}

// State reports the bootstrap state.
func (s *System) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether the world exists and stepping is active.
func (s *System) Ready() bool { return s.State() == StateReady }

// Initialize starts the asynchronous engine bootstrap. Calling it again
// while initializing or ready is a no-op, as is calling it after a failed
// bootstrap; failure is permanent for the session.
func (s *System) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateUninitialized || s.failed || s.torndown {
		s.mu.Unlock()
		return
	}
	s.state = StateInitializing
	s.mu.Unlock()

	go s.bootstrap(ctx)
}

func (s *System) bootstrap(ctx context.Context) {
	eng, err := s.opts.Loader(ctx)

	s.mu.Lock()
	// teardown may have begun while the module was loading; a late
	// completion must not resurrect a freed world
	if s.torndown {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state = StateUninitialized
		s.failed = true
		s.mu.Unlock()
		s.lg.Error("engine bootstrap failed, continuing render-only", log.Err(err))
		return
	}
	s.world = eng.NewWorld(s.opts.Gravity)
	s.state = StateReady
	s.mu.Unlock()

	// Entities registered before this point have no bodies and none are
	// created for them retroactively. Construction code must not register
	// physics-bearing entities before the ready signal; the coordinator
	// spawns them only after it.
	s.lg.Info("physics engine ready")
	bus.Emit(s.b, events.PhysicsReady, struct{}{})
}

// Update steps the world once and runs every physics-bearing entity's update
// capability. Before the engine is ready this is a no-op, not an error; the
// render loop runs every frame regardless of physics readiness.
func (s *System) Update(dt float64) {
	s.mu.Lock()
	if s.state != StateReady || s.torndown {
		s.mu.Unlock()
		return
	}

	s.world.Step(dt)

	working := s.workingSetLocked()
	for _, e := range working {
		if pc, ok := e.(entity.PhysicsCapable); ok {
			pc.UpdatePhysics(dt, s.world)
		}
	}

	transforms := s.collectTransformsLocked(working)
	fired, dist := s.checkProximityLocked(dt)
	breach := s.checkBoundsLocked()
	s.mu.Unlock()

	// bus emission happens outside the lock: handlers may re-enter the
	// system (dispose requests, trigger resets)
	for _, tr := range transforms {
		bus.Emit(s.b, events.TransformUpdated, tr)
	}
	if breach != nil {
		s.lg.Warn("entity out of bounds", log.String("entity", string(breach.ID)))
		bus.Emit(s.b, events.OutOfBounds, *breach)
	}
	if fired {
		bus.Emit(s.b, events.Collision, events.CollisionEvent{
			A:        entity.IDPlayer,
			B:        entity.IDScanTarget,
			Distance: dist,
		})
	}
}

// ResetTrigger clears the proximity trigger's active flag and cooldown, so
// stale state cannot suppress a legitimate approach to a relocated target.
func (s *System) ResetTrigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trigger.reset()
}

// Dispose frees every entity's physics resources, then the world, and marks
// the system uninitialized. An engine bootstrap still in flight is
// short-circuited; its late completion is discarded.
func (s *System) Dispose() {
	s.mu.Lock()
	if s.torndown {
		s.mu.Unlock()
		return
	}
	s.torndown = true
	world := s.world
	s.world = nil
	s.state = StateUninitialized
	ents := s.physicsEntitiesLocked()
	s.cache = nil
	s.mu.Unlock()

	if world != nil {
		for _, e := range ents {
			if pc, ok := e.(entity.PhysicsCapable); ok {
				pc.DisposePhysics(world)
			}
		}
		world.Free()
	}
	for _, sub := range s.subs {
		sub.Cancel()
	}
}

func (s *System) onEntityAdded(e entity.Entity) {
	if !e.Components().Has(entity.ComponentPhysics) {
		return
	}

	s.mu.Lock()
	s.cacheDirty = true
	ready := s.state == StateReady && !s.torndown
	world := s.world
	s.mu.Unlock()

	// before readiness no init call is made, and none happens later:
	// pre-ready registrations are never retroactively initialized
	if ready {
		s.initEntity(e, world)
	}
}

// initEntity creates the entity's rigid body. A per-entity failure must not
// take the session down: it is reported as a status event and followed by a
// best-effort fallback collider so play continues degraded.
func (s *System) initEntity(e entity.Entity, world engine.World) {
	pc, ok := e.(entity.PhysicsCapable)
	if !ok {
		s.lg.Warn("entity declares physics component without capability",
			log.String("entity", string(e.ID())))
		return
	}

	err := pc.InitPhysics(world)
	if err == nil {
		return
	}

	s.lg.Error("entity physics init failed",
		log.String("entity", string(e.ID())), log.Err(err))
	bus.Emit(s.b, events.InitializationError, events.InitFailure{
		ID:   e.ID(),
		Kind: e.Kind(),
		Err:  err,
	})

	s.fallbackBody(e, world)
}

// fallbackBody substitutes a minimal unit box so the entity still exists in
// the simulation.
func (s *System) fallbackBody(e entity.Entity, world engine.World) {
	c, ok := e.Components().Get(entity.ComponentPhysics)
	if !ok {
		return
	}
	pc, ok := c.(*entity.PhysicsComponent)
	if !ok {
		return
	}

	desc := pc.Desc
	desc.Collider = engine.ColliderDesc{
		Shape:       engine.ShapeBox,
		HalfExtents: mathx.V(0.5, 0.5, 0.5),
		Sensor:      pc.Desc.Collider.Sensor,
	}
	body, err := world.CreateBody(desc)
	if err != nil {
		s.lg.Error("fallback collider failed", log.String("entity", string(e.ID())), log.Err(err))
		return
	}
	pc.Body = body
}

func (s *System) onDisposeRequest(req events.DisposeRequest) {
	s.mu.Lock()
	world := s.world
	s.cacheDirty = true
	s.mu.Unlock()
	if world == nil {
		return
	}
	if pc, ok := req.Entity.(entity.PhysicsCapable); ok {
		pc.DisposePhysics(world)
	}
}

func (s *System) onTargetRelocated(events.Relocation) {
	s.ResetTrigger()
}

// onResetPlayer restores the player's pose and velocity after an
// out-of-bounds halt. Body mutation happens here because the world is only
// ever touched by its owning system.
func (s *System) onResetPlayer(struct{}) {
	e, ok := s.entities.Get(entity.IDPlayer)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}

	if c, ok := e.Components().Get(entity.ComponentPhysics); ok {
		if pc, ok := c.(*entity.PhysicsComponent); ok && pc.Body != nil {
			pc.Body.SetTranslation(pc.Desc.Translation)
			pc.Body.SetLinearVelocity(mathx.Vec3{})
		}
	}
	if c, ok := e.Components().Get(entity.ComponentControl); ok {
		if ctrl, ok := c.(*entity.ControlComponent); ok {
			ctrl.Halted = false
		}
	}
}

// Movement command handlers. Control state is read by the frame update under
// the system mutex, so mutation happens under the same lock; hosts emit these
// from their own goroutines.

func (s *System) onMove(mc events.MoveCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctrl := s.playerControlLocked(); ctrl != nil {
		ctrl.Move = mc.Direction
	}
}

func (s *System) onOrient(oc events.OrientCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctrl := s.playerControlLocked(); ctrl != nil {
		ctrl.Yaw = oc.Yaw
	}
}

func (s *System) onForce(fc events.ForceCommand) {
	if fc.Scale < 0 {
		s.lg.Warn("negative force scale ignored", log.Float64("scale", fc.Scale))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctrl := s.playerControlLocked(); ctrl != nil {
		ctrl.ImpulseScale = fc.Scale
	}
}

func (s *System) playerControlLocked() *entity.ControlComponent {
	if s.torndown {
		return nil
	}
	e, ok := s.entities.Get(entity.IDPlayer)
	if !ok {
		return nil
	}
	c, ok := e.Components().Get(entity.ComponentControl)
	if !ok {
		return nil
	}
	ctrl, ok := c.(*entity.ControlComponent)
	if !ok {
		return nil
	}
	return ctrl
}

// workingSetLocked returns the physics entity cache, rebuilding it in full
// when dirty. Correctness never depends on staleness: a dirty cache is
// always recomputed before use.
func (s *System) workingSetLocked() []entity.Entity {
	if s.cacheDirty || s.cache == nil {
		s.cache = s.entities.EntitiesWith(entity.ComponentPhysics)
		s.cacheDirty = false
	}
	return s.cache
}

// physicsEntitiesLocked queries the manager directly, bypassing the cache.
func (s *System) physicsEntitiesLocked() []entity.Entity {
	return s.entities.EntitiesWith(entity.ComponentPhysics)
}

func (s *System) collectTransformsLocked(working []entity.Entity) []events.TransformUpdate {
	out := make([]events.TransformUpdate, 0, len(working))
	for _, e := range working {
		body := bodyOf(e)
		if body == nil {
			continue
		}
		out = append(out, events.TransformUpdate{
			ID:          e.ID(),
			Translation: body.Translation(),
			Rotation:    body.Rotation(),
		})
	}
	return out
}

func (s *System) checkProximityLocked(dt float64) (bool, float64) {
	a, ok := s.entities.Get(entity.IDPlayer)
	if !ok {
		return false, 0
	}
	b, ok := s.entities.Get(entity.IDScanTarget)
	if !ok {
		return false, 0
	}
	bodyA, bodyB := bodyOf(a), bodyOf(b)
	if bodyA == nil || bodyB == nil {
		return false, 0
	}
	return s.trigger.check(dt, bodyA.Translation(), bodyB.Translation())
}

func (s *System) checkBoundsLocked() *events.BoundsBreach {
	e, ok := s.entities.Get(entity.IDPlayer)
	if !ok {
		return nil
	}
	body := bodyOf(e)
	if body == nil {
		return nil
	}
	pos := body.Translation()
	if pos.Y >= s.opts.OutOfBoundsY {
		return nil
	}

	c, ok := e.Components().Get(entity.ComponentControl)
	if !ok {
		return nil
	}
	ctrl, ok := c.(*entity.ControlComponent)
	if !ok || ctrl.Halted {
		return nil
	}
	ctrl.Halted = true
	return &events.BoundsBreach{ID: e.ID(), Translation: pos}
}

func bodyOf(e entity.Entity) engine.Body {
	c, ok := e.Components().Get(entity.ComponentPhysics)
	if !ok {
		return nil
	}
	pc, ok := c.(*entity.PhysicsComponent)
	if !ok {
		return nil
	}
	return pc.Body
}
