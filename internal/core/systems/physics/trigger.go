package physics

import "github.com/verdant-games/gecko/internal/core/mathx"

// trigger is the proximity/collision-trigger state between two tracked
// bodies. It fires exactly once per approach: entering the threshold arms
// the active flag, leaving it clears it, and a cooldown of simulated time
// absorbs jitter right at the boundary.
type trigger struct {
	threshold    float64
	cooldown     float64
	active       bool
	cooldownLeft float64
}

// check advances the cooldown by dt and evaluates the distance between a and
// b. It reports whether the trigger fired this frame.
func (t *trigger) check(dt float64, a, b mathx.Vec3) (bool, float64) {
	if t.threshold <= 0 {
		return false, 0
	}
	if t.cooldownLeft > 0 {
		t.cooldownLeft -= dt
		if t.cooldownLeft < 0 {
			t.cooldownLeft = 0
		}
	}

	dist := mathx.Distance(a, b)
	if dist >= t.threshold {
		t.active = false
		return false, dist
	}
	if t.active || t.cooldownLeft > 0 {
		return false, dist
	}

	t.active = true
	t.cooldownLeft = t.cooldown
	return true, dist
}

// reset clears all trigger state, for when the observed target teleports.
func (t *trigger) reset() {
	t.active = false
	t.cooldownLeft = 0
}
