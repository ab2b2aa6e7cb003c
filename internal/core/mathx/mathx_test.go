package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVecBasics(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, -2, 0)

	require.Equal(t, V(5, 0, 3), a.Add(b))
	require.Equal(t, V(-3, 4, 3), a.Sub(b))
	require.Equal(t, V(2, 4, 6), a.Scale(2))
	require.Equal(t, 0.0, a.Dot(b))
	require.InDelta(t, 5.0, V(3, 4, 0).Length(), 1e-12)
	require.InDelta(t, 5.0, Distance(V(1, 0, 0), V(4, 4, 0)), 1e-12)
}

func TestNormalized(t *testing.T) {
	n := V(0, 0, 8).Normalized()
	require.Equal(t, V(0, 0, 1), n)
	require.Equal(t, Vec3{}, Vec3{}.Normalized())
}

func TestLerp(t *testing.T) {
	a, b := V(0, 0, 0), V(10, -10, 4)
	require.Equal(t, a, Lerp(a, b, 0))
	require.Equal(t, b, Lerp(a, b, 1))
	require.Equal(t, V(5, -5, 2), Lerp(a, b, 0.5))
}

func TestRotateY(t *testing.T) {
	got := V(0, 0, 1).RotateY(math.Pi / 2)
	require.InDelta(t, 1, got.X, 1e-12)
	require.InDelta(t, 0, got.Y, 1e-12)
	require.InDelta(t, 0, got.Z, 1e-12)

	// a full turn is the identity
	got = V(3, 1, -2).RotateY(2 * math.Pi)
	require.InDelta(t, 3, got.X, 1e-12)
	require.InDelta(t, -2, got.Z, 1e-12)
}

func TestQuatYawRoundTrip(t *testing.T) {
	for _, yaw := range []float64{0, 0.3, -1.2, math.Pi / 2, 3} {
		require.InDelta(t, yaw, QuatFromYaw(yaw).Yaw(), 1e-12)
	}
	require.Equal(t, 0.0, QuatIdentity.Yaw())
}

func TestNLerpEndpoints(t *testing.T) {
	a := QuatFromYaw(0)
	b := QuatFromYaw(1)

	require.InDelta(t, 0, NLerp(a, b, 0).Yaw(), 1e-12)
	require.InDelta(t, 1, NLerp(a, b, 1).Yaw(), 1e-12)

	mid := NLerp(a, b, 0.5).Yaw()
	require.InDelta(t, 0.5, mid, 1e-3)
}

func TestNLerpTakesShortPath(t *testing.T) {
	a := QuatFromYaw(0.1)
	// the antipodal representation of a nearby orientation
	b := QuatFromYaw(0.2)
	b = Quat{-b.X, -b.Y, -b.Z, -b.W}

	got := NLerp(a, b, 0.5).Yaw()
	require.InDelta(t, 0.15, got, 1e-3)
}
