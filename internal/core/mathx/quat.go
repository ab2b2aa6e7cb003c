package mathx

import "math"

// Quat is a unit quaternion representing an orientation.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity is the no-rotation orientation.
var QuatIdentity = Quat{W: 1}

// QuatFromYaw builds a rotation of yaw radians around the vertical axis.
func QuatFromYaw(yaw float64) Quat {
	half := yaw / 2
	return Quat{Y: math.Sin(half), W: math.Cos(half)}
}

// Yaw extracts the rotation around the vertical axis.
func (q Quat) Yaw() float64 {
	return math.Atan2(2*(q.W*q.Y+q.X*q.Z), 1-2*(q.Y*q.Y+q.X*q.X))
}

// NLerp interpolates between two orientations and renormalizes. Good enough
// for camera smoothing over small per-frame deltas.
func NLerp(a, b Quat, t float64) Quat {
	// take the short way around
	if a.X*b.X+a.Y*b.Y+a.Z*b.Z+a.W*b.W < 0 {
		b = Quat{-b.X, -b.Y, -b.Z, -b.W}
	}
	out := Quat{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
		W: a.W + (b.W-a.W)*t,
	}
	l := math.Sqrt(out.X*out.X + out.Y*out.Y + out.Z*out.Z + out.W*out.W)
	if l == 0 {
		return QuatIdentity
	}
	return Quat{out.X / l, out.Y / l, out.Z / l, out.W / l}
}
