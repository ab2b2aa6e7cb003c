package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdant-games/gecko/internal/core/mathx"
)

func TestTriggerFiresInsideThreshold(t *testing.T) {
	tr := trigger{threshold: 3, cooldown: 1}

	fired, dist := tr.check(0.016, mathx.V(0, 0, 0), mathx.V(0, 0, 2.9))
	require.True(t, fired)
	require.InDelta(t, 2.9, dist, 1e-9)
}

func TestTriggerBoundaryDistanceDoesNotFire(t *testing.T) {
	tr := trigger{threshold: 3, cooldown: 1}

	fired, _ := tr.check(0.016, mathx.V(0, 0, 0), mathx.V(0, 0, 3))
	require.False(t, fired)
}

func TestTriggerFiresOncePerApproach(t *testing.T) {
	tr := trigger{threshold: 3, cooldown: 1}
	in := mathx.V(0, 0, 1)

	fired, _ := tr.check(0.016, mathx.Vec3{}, in)
	require.True(t, fired)
	for i := 0; i < 10; i++ {
		fired, _ = tr.check(0.016, mathx.Vec3{}, in)
		require.False(t, fired)
	}
}

func TestTriggerCooldownSuppressesQuickReentry(t *testing.T) {
	tr := trigger{threshold: 3, cooldown: 1}
	in := mathx.V(0, 0, 1)
	out := mathx.V(0, 0, 10)

	fired, _ := tr.check(0.016, mathx.Vec3{}, in)
	require.True(t, fired)

	// leave and bounce straight back while the cooldown still runs
	fired, _ = tr.check(0.016, mathx.Vec3{}, out)
	require.False(t, fired)
	fired, _ = tr.check(0.016, mathx.Vec3{}, in)
	require.False(t, fired)

	// stay outside long enough for the cooldown to drain
	fired, _ = tr.check(2, mathx.Vec3{}, out)
	require.False(t, fired)
	fired, _ = tr.check(0.016, mathx.Vec3{}, in)
	require.True(t, fired)
}

func TestTriggerZeroThresholdNeverFires(t *testing.T) {
	tr := trigger{}
	fired, _ := tr.check(0.016, mathx.Vec3{}, mathx.Vec3{})
	require.False(t, fired)
}

func TestTriggerResetClearsStaleState(t *testing.T) {
	tr := trigger{threshold: 3, cooldown: 10}
	in := mathx.V(0, 0, 1)

	fired, _ := tr.check(0.016, mathx.Vec3{}, in)
	require.True(t, fired)

	tr.reset()
	fired, _ = tr.check(0.016, mathx.Vec3{}, in)
	require.True(t, fired)
}
