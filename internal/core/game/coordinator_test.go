package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verdant-games/gecko/internal/core/assets"
	"github.com/verdant-games/gecko/internal/core/config"
	"github.com/verdant-games/gecko/internal/core/engine/headless"
	"github.com/verdant-games/gecko/internal/core/engine/kinetic"
	"github.com/verdant-games/gecko/internal/core/entity"
	"github.com/verdant-games/gecko/internal/core/events"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/manager"
	"github.com/verdant-games/gecko/internal/core/mathx"
	"github.com/verdant-games/gecko/internal/core/observability/log"
	"github.com/verdant-games/gecko/internal/core/systems/physics"
	"github.com/verdant-games/gecko/internal/core/systems/render"
)

const waitTimeout = 2 * time.Second

func testConfig() config.Config {
	cfg := config.Default()
	cfg.FrameInterval = config.Duration(time.Millisecond)
	cfg.Scan.Targets = []mathx.Vec3{
		mathx.V(8, 1, 0),
		mathx.V(-6, 1, 7),
	}
	return cfg
}

type fixture struct {
	b        *bus.Bus
	entities *manager.Manager
	phys     *physics.System
	library  *assets.Library
	coord    *Coordinator
}

func newFixture(t *testing.T, cfg config.Config) *fixture {
	t.Helper()
	b := bus.New(log.Nop())
	entities := manager.New(b, log.Nop())

	rend := render.New(b, entities, headless.Engine{}, render.Options{
		Width:        cfg.Viewport.Width,
		Height:       cfg.Viewport.Height,
		FOV:          cfg.Camera.FOV,
		CameraOffset: cfg.Camera.Offset,
		Smoothing:    cfg.Camera.Smoothing,
	}, log.Nop())

	phys := physics.New(b, entities, physics.Options{
		Loader:           kinetic.Load,
		Gravity:          cfg.Gravity,
		OutOfBoundsY:     cfg.OutOfBoundsY,
		TriggerThreshold: cfg.Scan.Threshold,
		TriggerCooldown:  cfg.Scan.Cooldown.Seconds(),
	}, log.Nop())

	library := assets.NewLibrary(assets.NewProcedural(headless.Engine{}), log.Nop())
	coord := NewCoordinator(b, entities, phys, rend, library, cfg, log.Nop())

	t.Cleanup(func() {
		coord.Dispose()
		phys.Dispose()
		rend.Dispose()
	})
	return &fixture{b: b, entities: entities, phys: phys, library: library, coord: coord}
}

// startPhysics drives the fixture through the bootstrap into waiting mode.
func (f *fixture) startPhysics(t *testing.T) {
	t.Helper()
	waiting := make(chan struct{})
	sub := bus.On(f.b, events.ModeUpdated, func(tr events.ModeTransition) {
		if tr.Curr == events.ModeWaiting {
			close(waiting)
		}
	})
	defer sub.Cancel()

	f.phys.Initialize(context.Background())
	select {
	case <-waiting:
	case <-time.After(waitTimeout):
		t.Fatal("session never reached waiting mode")
	}
}

func TestPhysicsReadySpawnsContent(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)

	require.Equal(t, events.ModeWaiting, f.coord.Mode())
	require.Equal(t, 2, f.entities.Count())

	ground, ok := f.entities.Get(entity.IDGround)
	require.True(t, ok)
	require.Equal(t, entity.KindScenery, ground.Kind())

	avatar, ok := f.entities.Get(entity.IDPlayer)
	require.True(t, ok)
	// spawned after readiness, so the body exists immediately
	require.NotNil(t, avatar.(*entity.Avatar).Body())
}

func TestSpawnContentWarmsAssetLibrary(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)

	// ground, avatar and marker are all cached by the preload, not just the
	// two visuals spawned so far
	require.Equal(t, 3, f.library.Size())
}

func TestChangeModeEmitsTransition(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)

	var transitions []events.ModeTransition
	bus.On(f.b, events.ModeUpdated, func(tr events.ModeTransition) { transitions = append(transitions, tr) })

	bus.Emit(f.b, events.CmdChangeMode, events.ModeChange{Mode: events.ModeGecko})
	require.Equal(t, events.ModeGecko, f.coord.Mode())
	require.Len(t, transitions, 1)
	require.Equal(t, events.ModeWaiting, transitions[0].Prev)
	require.Equal(t, events.ModeGecko, transitions[0].Curr)

	// same mode again is not a transition
	bus.Emit(f.b, events.CmdChangeMode, events.ModeChange{Mode: events.ModeGecko})
	require.Len(t, transitions, 1)

	// unknown modes are rejected
	bus.Emit(f.b, events.CmdChangeMode, events.ModeChange{Mode: "turbo"})
	require.Equal(t, events.ModeGecko, f.coord.Mode())
	require.Len(t, transitions, 1)
}

func TestStartGameEntersNormalMode(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)

	bus.Emit(f.b, events.CmdStartGame, struct{}{})

	require.Equal(t, events.ModeNormal, f.coord.Mode())
	require.True(t, f.coord.sched.Running())

	marker, ok := f.entities.Get(entity.IDScanTarget)
	require.True(t, ok)
	require.Equal(t, entity.KindMarker, marker.Kind())

	// repeat start is ignored
	count := f.entities.Count()
	bus.Emit(f.b, events.CmdStartGame, struct{}{})
	require.Equal(t, count, f.entities.Count())
}

func TestStartGameBeforeWaitingIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig())

	bus.Emit(f.b, events.CmdStartGame, struct{}{})
	require.Equal(t, events.ModeLoading, f.coord.Mode())
	_, ok := f.entities.Get(entity.IDScanTarget)
	require.False(t, ok)
}

func TestStartGameRefusedWhenDegraded(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)

	var refused *events.StartBlocked
	bus.On(f.b, events.StartRefused, func(sb events.StartBlocked) { refused = &sb })

	bus.Emit(f.b, events.InitializationError, events.InitFailure{ID: entity.IDGround})
	bus.Emit(f.b, events.CmdStartGame, struct{}{})

	require.Equal(t, events.ModeWaiting, f.coord.Mode())
	require.NotNil(t, refused)
	require.Equal(t, 1, refused.Failures)
	require.Equal(t, 1, f.coord.Failures())
}

func TestCollisionAdvancesObjectives(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)
	bus.Emit(f.b, events.CmdStartGame, struct{}{})
	// collisions are driven by hand below, the frame loop would only race them
	f.coord.sched.Stop()

	var relocations []events.Relocation
	var win *events.WinEvent
	bus.On(f.b, events.TargetRelocated, func(r events.Relocation) { relocations = append(relocations, r) })
	bus.On(f.b, events.GameWon, func(w events.WinEvent) { win = &w })

	bus.Emit(f.b, events.Collision, events.CollisionEvent{A: entity.IDPlayer, B: entity.IDScanTarget})
	require.Len(t, relocations, 1)
	require.Equal(t, 1, relocations[0].Index)
	require.Equal(t, mathx.V(-6, 1, 7), relocations[0].Translation)
	require.Nil(t, win)
	require.False(t, f.coord.Won())

	// past the last target the marker goes away and the session is won
	bus.Emit(f.b, events.Collision, events.CollisionEvent{A: entity.IDPlayer, B: entity.IDScanTarget})
	require.Len(t, relocations, 1)
	require.NotNil(t, win)
	require.Equal(t, 2, win.Scans)
	require.True(t, f.coord.Won())
	_, ok := f.entities.Get(entity.IDScanTarget)
	require.False(t, ok)

	// collisions after the win change nothing
	bus.Emit(f.b, events.Collision, events.CollisionEvent{A: entity.IDPlayer, B: entity.IDScanTarget})
	require.Len(t, relocations, 1)
}

func TestCollisionBeforeStartIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)

	fired := false
	bus.On(f.b, events.TargetRelocated, func(events.Relocation) { fired = true })
	bus.Emit(f.b, events.Collision, events.CollisionEvent{A: entity.IDPlayer, B: entity.IDScanTarget})
	require.False(t, fired)
	require.False(t, f.coord.Won())
}

func TestMovementCommandsReachAvatarControl(t *testing.T) {
	f := newFixture(t, testConfig())
	f.startPhysics(t)

	bus.Emit(f.b, events.CmdMove, events.MoveCommand{Direction: mathx.V(0, 0, 1)})
	bus.Emit(f.b, events.CmdOrient, events.OrientCommand{Yaw: 1.5})
	bus.Emit(f.b, events.CmdForceUpdate, events.ForceCommand{Scale: 2})

	avatar, ok := f.entities.Get(entity.IDPlayer)
	require.True(t, ok)
	ctrl := avatar.(*entity.Avatar).Control()
	require.Equal(t, mathx.V(0, 0, 1), ctrl.Move)
	require.Equal(t, 1.5, ctrl.Yaw)
	require.Equal(t, 2.0, ctrl.ImpulseScale)

	// negative force scales are rejected
	bus.Emit(f.b, events.CmdForceUpdate, events.ForceCommand{Scale: -1})
	require.Equal(t, 2.0, ctrl.ImpulseScale)
}

func TestNoTargetsMeansNoMarker(t *testing.T) {
	cfg := testConfig()
	cfg.Scan.Targets = nil
	f := newFixture(t, cfg)
	f.startPhysics(t)

	bus.Emit(f.b, events.CmdStartGame, struct{}{})
	require.Equal(t, events.ModeNormal, f.coord.Mode())
	_, ok := f.entities.Get(entity.IDScanTarget)
	require.False(t, ok)
}
