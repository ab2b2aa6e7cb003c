package bus

// Bus is an in-process, typed publish/subscribe hub.
//
// Key characteristics:
// - Typed fan-out: handlers subscribe through a Topic[T], so the payload type
//   of every event name is fixed at the topic's declaration site.
// - Synchronous delivery: Emit invokes handler callbacks in the caller
//   goroutine, in registration order.
// - Idempotent registration: registering the identical callback for the same
//   topic twice stores it once; an Emit fires it once.
// - Re-entrant Emit: emitting from within a handler is legal. Each dispatch
//   pass runs against the handler set snapshotted when it started; handlers
//   added or removed mid-pass do not affect the current pass.
// - Failure isolation: a handler panic is recovered and logged; remaining
//   handlers in the pass still run.
//
// Subscribe/Emit/Off are package-level generic functions because Go methods
// cannot introduce type parameters.

// Subscription represents a registered handler bound to one event name.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// EventName returns the event name this subscription listens to.
	EventName() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel()
}
