package game

import (
	"context"
	"sync"

	"github.com/verdant-games/gecko/internal/core/assets"
	"github.com/verdant-games/gecko/internal/core/config"
	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/entity"
	"github.com/verdant-games/gecko/internal/core/events"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/manager"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
	"github.com/verdant-games/gecko/internal/core/systems"
	"github.com/verdant-games/gecko/internal/core/systems/physics"
	"github.com/verdant-games/gecko/internal/core/systems/render"
)

// Coordinator owns the authoritative game mode and sequences the session:
// content spawning on physics readiness, game start, objective progression
// and the win condition. All mode reads by other systems go through the
// mode_updated event, never by polling.
type Coordinator struct {
	mu       sync.Mutex
	lg       log.Log
	b        *bus.Bus
	entities *manager.Manager
	phys     *physics.System
	rend     *render.System
	library  *assets.Library
	cfg      config.Config
	sched    *Scheduler
	pipeline []systems.System

	mode      events.GameMode
	targetIdx int
	started   bool
	won       bool
	failures  int

	subs []bus.Subscription
}

func NewCoordinator(
	b *bus.Bus,
	entities *manager.Manager,
	phys *physics.System,
	rend *render.System,
	library *assets.Library,
	cfg config.Config,
	lg log.Log,
) *Coordinator {
	if lg == nil {
		lg = log.Provide()
	}
	c := &Coordinator{
		lg:       lg.With(log.String("system", "coordinator")),
		b:        b,
		entities: entities,
		phys:     phys,
		rend:     rend,
		library:  library,
		cfg:      cfg,
		mode:     events.ModeLoading,
	}
	// physics first so render always consumes this frame's simulation
	// results
	c.pipeline = []systems.System{phys, rend}
	c.sched = NewScheduler(cfg.FrameInterval.Std(), c.tick)

	c.subs = append(c.subs,
		bus.Once(b, events.PhysicsReady, c.onPhysicsReady),
		bus.On(b, events.CmdChangeMode, c.onChangeMode),
		bus.On(b, events.CmdStartGame, c.onStartGame),
		bus.On(b, events.Collision, c.onCollision),
		bus.On(b, events.InitializationError, c.onInitFailure),
	)
	return c
}

// Mode returns the current game mode. Systems should prefer reacting to
// mode_updated events; this accessor exists for the host surface and tests.
func (c *Coordinator) Mode() events.GameMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Won reports whether the session's objectives are complete. Winning is an
// orthogonal flag; it does not replace the mode.
func (c *Coordinator) Won() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.won
}

// Failures reports accumulated per-entity initialization failures. A host
// should treat a non-zero count as a blocking cannot-safely-start state.
func (c *Coordinator) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// Dispose stops the frame scheduler and detaches from the bus.
func (c *Coordinator) Dispose() {
	c.sched.Stop()
	for _, sub := range c.subs {
		sub.Cancel()
	}
}

// tick runs the fixed per-frame system sequence.
func (c *Coordinator) tick(dt float64) {
	for _, sys := range c.pipeline {
		sys.Update(dt)
	}
}

// transition overwrites the mode and emits the (prev, curr) status event
// synchronously: the new value is observable the moment the emit returns.
func (c *Coordinator) transition(to events.GameMode) {
	c.mu.Lock()
	prev := c.mode
	if prev == to {
		c.mu.Unlock()
		c.lg.Debug("mode unchanged", log.String("mode", string(to)))
		return
	}
	c.mode = to
	c.mu.Unlock()

	c.lg.Info("mode updated", log.String("prev", string(prev)), log.String("curr", string(to)))
	bus.Emit(c.b, events.ModeUpdated, events.ModeTransition{Prev: prev, Curr: to})
}

func (c *Coordinator) onChangeMode(mc events.ModeChange) {
	if !mc.Mode.Valid() {
		c.lg.Warn("change_mode with unknown mode ignored", log.String("mode", string(mc.Mode)))
		return
	}
	c.transition(mc.Mode)
}

// onPhysicsReady spawns the session content, then signals readiness for a
// user-initiated start. It runs on the bootstrap completion, so asset loads
// here never block the frame loop.
func (c *Coordinator) onPhysicsReady(struct{}) {
	c.spawnContent(context.Background())
	c.transition(events.ModeWaiting)
}

func (c *Coordinator) spawnContent(ctx context.Context) {
	// warm the library concurrently; the per-entity loads below are cache
	// hits, and a partial preload still degrades per entity
	paths := []string{c.cfg.Assets.Ground, c.cfg.Assets.Avatar, c.cfg.Assets.Marker}
	if _, err := c.library.LoadAll(ctx, paths); err != nil {
		c.lg.Warn("asset preload incomplete", log.Err(err))
	}

	groundVis := c.loadVisual(ctx, c.cfg.Assets.Ground)
	avatarVis := c.loadVisual(ctx, c.cfg.Assets.Avatar)

	ground := entity.NewScenery(entity.IDGround, groundVis, engine.BodyDesc{
		Translation: mathx.V(0, -0.25, 0),
		Collider: engine.ColliderDesc{
			Shape:       engine.ShapeBox,
			HalfExtents: mathx.V(25, 0.25, 25),
		},
	}, c.lg)
	c.entities.Add(ground)

	avatar := entity.NewAvatar(avatarVis, c.cfg.PlayerStart, c.lg)
	c.entities.Add(avatar)
	c.rend.FollowEntity(entity.IDPlayer)

	bus.Emit(c.b, events.LoadProgress, events.Progress{Stage: "content", Fraction: 1})
}

// loadVisual tolerates a failed load by returning nil; the render system
// substitutes a placeholder primitive for the entity.
func (c *Coordinator) loadVisual(ctx context.Context, path string) *assets.Visual {
	v, err := c.library.Load(ctx, path)
	if err != nil {
		c.lg.Warn("visual load failed, entity will use placeholder",
			log.String("path", path), log.Err(err))
		return nil
	}
	return v
}

func (c *Coordinator) onStartGame(struct{}) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		c.lg.Warn("start_game ignored, session already started")
		return
	}
	if c.mode != events.ModeWaiting {
		mode := c.mode
		c.mu.Unlock()
		c.lg.Warn("start_game ignored outside waiting mode", log.String("mode", string(mode)))
		return
	}
	if c.failures > 0 {
		failures := c.failures
		c.mu.Unlock()
		c.lg.Warn("start_game refused, session degraded", log.Int("failures", failures))
		bus.Emit(c.b, events.StartRefused, events.StartBlocked{Failures: failures})
		return
	}
	c.started = true
	c.targetIdx = 0
	c.mu.Unlock()

	c.spawnMarker()
	c.transition(events.ModeNormal)
	c.sched.Start()
}

func (c *Coordinator) spawnMarker() {
	if len(c.cfg.Scan.Targets) == 0 {
		c.lg.Warn("no scan targets configured, session has no objective")
		return
	}
	vis := c.loadVisual(context.Background(), c.cfg.Assets.Marker)
	marker := entity.NewMarker(vis, c.cfg.Scan.Targets[0], c.lg)
	c.entities.Add(marker)
}

// onCollision advances the objective sequence: relocate the marker to the
// next target, or, past the last one, remove it and declare the win.
func (c *Coordinator) onCollision(events.CollisionEvent) {
	c.mu.Lock()
	if c.won || !c.started {
		c.mu.Unlock()
		return
	}
	c.targetIdx++
	idx := c.targetIdx
	targets := c.cfg.Scan.Targets
	c.mu.Unlock()

	if idx < len(targets) {
		next := targets[idx]
		if e, ok := c.entities.Get(entity.IDScanTarget); ok {
			if m, ok := e.(*entity.Marker); ok {
				m.Relocate(idx, next)
			}
		}
		c.lg.Info("target relocated", log.Int("index", idx))
		bus.Emit(c.b, events.TargetRelocated, events.Relocation{Index: idx, Translation: next})
		return
	}

	c.entities.Remove(entity.IDScanTarget)
	c.mu.Lock()
	c.won = true
	c.mu.Unlock()
	c.lg.Info("all targets scanned, game won")
	bus.Emit(c.b, events.GameWon, events.WinEvent{Scans: len(targets)})
}

func (c *Coordinator) onInitFailure(events.InitFailure) {
	c.mu.Lock()
	c.failures++
	c.mu.Unlock()
}
