package game

import (
	"context"
	"sync/atomic"

	"github.com/verdant-games/gecko/internal/core/assets"
	"github.com/verdant-games/gecko/internal/core/config"
	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/engine/headless"
	"github.com/verdant-games/gecko/internal/core/engine/kinetic"
	"github.com/verdant-games/gecko/internal/core/events"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/manager"
	"github.com/verdant-games/gecko/internal/core/observability/log"
	"github.com/verdant-games/gecko/internal/core/systems/physics"
	"github.com/verdant-games/gecko/internal/core/systems/render"
)

// Session is the host-facing surface: one constructed game session. The host
// drives it entirely through the exposed event bus (commands in, status
// out), plus Resize and Dispose.
type Session struct {
	lg       log.Log
	b        *bus.Bus
	cfg      config.Config
	entities *manager.Manager
	phys     *physics.System
	rend     *render.System
	coord    *Coordinator

	cancel   context.CancelFunc
	disposed atomic.Bool
}

type sessionOptions struct {
	logger        log.Log
	physicsLoader engine.PhysicsLoader
	renderEngine  engine.RenderEngine
	assetLoader   assets.Loader
	progress      func(stage string, fraction float64)
}

type Option func(*sessionOptions)

func WithLogger(lg log.Log) Option {
	return func(o *sessionOptions) { o.logger = lg }
}

// WithPhysicsLoader swaps the physics engine module loader. The default is
// the in-tree kinetic engine.
func WithPhysicsLoader(l engine.PhysicsLoader) Option {
	return func(o *sessionOptions) { o.physicsLoader = l }
}

// WithRenderEngine swaps the render engine. The default is the in-tree
// headless engine.
func WithRenderEngine(re engine.RenderEngine) Option {
	return func(o *sessionOptions) { o.renderEngine = re }
}

// WithAssetLoader swaps the asset loader behind the session's library.
func WithAssetLoader(l assets.Loader) Option {
	return func(o *sessionOptions) { o.assetLoader = l }
}

// WithProgress installs a loading-state callback for host UI.
func WithProgress(fn func(stage string, fraction float64)) Option {
	return func(o *sessionOptions) { o.progress = fn }
}

// NewSession wires a complete session and begins the physics engine
// bootstrap. The session starts in loading mode; the host starts play by
// emitting start_game once the mode reaches waiting.
func NewSession(cfg config.Config, opts ...Option) *Session {
	o := sessionOptions{
		logger:        log.Provide(),
		physicsLoader: kinetic.Load,
		renderEngine:  headless.Engine{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.assetLoader == nil {
		o.assetLoader = assets.NewProcedural(o.renderEngine)
	}
	lg := o.logger

	b := bus.New(lg)
	entities := manager.New(b, lg)

	rend := render.New(b, entities, o.renderEngine, render.Options{
		Width:        cfg.Viewport.Width,
		Height:       cfg.Viewport.Height,
		FOV:          cfg.Camera.FOV,
		CameraOffset: cfg.Camera.Offset,
		Smoothing:    cfg.Camera.Smoothing,
	}, lg)

	phys := physics.New(b, entities, physics.Options{
		Loader:           o.physicsLoader,
		Gravity:          cfg.Gravity,
		OutOfBoundsY:     cfg.OutOfBoundsY,
		TriggerThreshold: cfg.Scan.Threshold,
		TriggerCooldown:  cfg.Scan.Cooldown.Seconds(),
	}, lg)

	library := assets.NewLibrary(o.assetLoader, lg, assets.WithProgress(func(path string, fraction float64) {
		bus.Emit(b, events.LoadProgress, events.Progress{Stage: path, Fraction: fraction})
	}))

	coord := NewCoordinator(b, entities, phys, rend, library, cfg, lg)

	if o.progress != nil {
		fn := o.progress
		bus.On(b, events.LoadProgress, func(p events.Progress) {
			fn(p.Stage, p.Fraction)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	phys.Initialize(ctx)

	return &Session{
		lg:       lg,
		b:        b,
		cfg:      cfg,
		entities: entities,
		phys:     phys,
		rend:     rend,
		coord:    coord,
		cancel:   cancel,
	}
}

// Bus exposes the event bus so host UI can emit commands and observe status
// without reaching into internals.
func (s *Session) Bus() *bus.Bus { return s.b }

// Mode reports the current game mode.
func (s *Session) Mode() events.GameMode { return s.coord.Mode() }

// Won reports whether the session's objectives are complete.
func (s *Session) Won() bool { return s.coord.Won() }

// Failures reports accumulated per-entity initialization failures.
func (s *Session) Failures() int { return s.coord.Failures() }

// Resize propagates a host-surface resize to the render system.
func (s *Session) Resize(width, height int) { s.rend.Resize(width, height) }

// Dispose tears the session down exactly once: scheduler, physics, render,
// entities, bus, in that order. Further calls are no-ops.
func (s *Session) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()
	s.coord.Dispose()
	s.phys.Dispose()
	s.rend.Dispose()
	s.entities.Dispose()
	s.b.Destroy()
	s.lg.Info("session disposed")
}
