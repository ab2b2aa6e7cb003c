// Package systems holds the per-frame simulation systems and the contract
// they share. A system consumes entity state each frame and owns the
// resources it creates for entities; the coordinator drives systems in a
// fixed order.
package systems

// System is the common surface of a frame-driven system.
type System interface {
	// Update advances the system by dt seconds. Implementations must be
	// safe to call before their backing engine is ready.
	Update(dt float64)

	// Dispose releases every entity resource the system owns. Further
	// Update calls after Dispose are no-ops.
	Dispose()
}
