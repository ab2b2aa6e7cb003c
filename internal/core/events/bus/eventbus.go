package bus

import (
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/verdant-games/gecko/internal/core/observability/log"
	"github.com/verdant-games/gecko/pkg/generic"
)

// handler is one registered callback for one event name.
type handler struct {
	id     string
	key    uintptr // identity of the caller's original callback
	invoke func(payload any)
	once   bool
	active bool
}

// entry holds the handlers of a single event name. The slice preserves
// registration order; the map enforces idempotent registration.
type entry struct {
	ordered []*handler
	byKey   map[uintptr]*handler
}

func (e *entry) remove(h *handler) {
	delete(e.byKey, h.key)
	for i, cur := range e.ordered {
		if cur == h {
			e.ordered = append(e.ordered[:i], e.ordered[i+1:]...)
			break
		}
	}
	h.active = false
}

// Bus is the in-memory implementation described in interfaces.go.
type Bus struct {
	mu        sync.RWMutex
	lg        log.Log
	entries   map[string]*entry
	snapshots *generic.SlicePool[*handler]
	destroyed bool
}

// New creates a Bus logging through lg. A nil lg falls back to the
// package-wide logger.
func New(lg log.Log) *Bus {
	if lg == nil {
		lg = log.Provide()
	}
	return &Bus{
		lg:        lg,
		entries:   make(map[string]*entry),
		snapshots: generic.NewSlicePool[*handler](16),
	}
}

// Emit synchronously delivers payload to every handler currently registered
// for the topic, in registration order.
func Emit[T any](b *Bus, t Topic[T], payload T) {
	b.emit(t.name, payload)
}

// On registers fn for the topic. Registering the identical callback again is
// a no-op returning the existing subscription.
func On[T any](b *Bus, t Topic[T], fn func(T)) Subscription {
	return b.subscribe(t.name, callbackKey(fn), wrap(fn), false)
}

// Once registers fn for a single delivery. The handler is de-registered
// before it is invoked, so re-emitting the same topic from inside the
// callback cannot re-enter it.
func Once[T any](b *Bus, t Topic[T], fn func(T)) Subscription {
	return b.subscribe(t.name, callbackKey(fn), wrap(fn), true)
}

// Off removes fn from the topic. No-op if fn was never registered.
func Off[T any](b *Bus, t Topic[T], fn func(T)) {
	b.unsubscribe(t.name, callbackKey(fn))
}

// Clear removes every handler of one event name.
func (b *Bus) Clear(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, name)
}

// Destroy removes all handlers and marks the bus unusable. Further Emit and
// subscribe calls become no-ops. Used only at session teardown.
func (b *Bus) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]*entry)
	b.destroyed = true
}

// HandlerCount reports the number of handlers registered for an event name.
func (b *Bus) HandlerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e, ok := b.entries[name]; ok {
		return len(e.ordered)
	}
	return 0
}

func wrap[T any](fn func(T)) func(any) {
	return func(payload any) { fn(payload.(T)) }
}

// callbackKey derives a stable identity for a callback reference. Two
// registrations of the same declared function, method or stored closure
// share a key. Closures instantiated from the same literal also share one,
// so callers registering per-instance handlers use distinct methods.
func callbackKey[T any](fn func(T)) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

func (b *Bus) subscribe(name string, key uintptr, invoke func(any), once bool) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		b.lg.Warn("subscribe on destroyed bus ignored", log.String("event", name))
		return &subscription{bus: b, name: name}
	}

	e := b.entries[name]
	if e == nil {
		e = &entry{byKey: make(map[uintptr]*handler)}
		b.entries[name] = e
	}
	if existing, ok := e.byKey[key]; ok {
		return &subscription{bus: b, name: name, h: existing}
	}

	h := &handler{
		id:     uuid.NewString(),
		key:    key,
		invoke: invoke,
		once:   once,
		active: true,
	}
	e.ordered = append(e.ordered, h)
	e.byKey[key] = h
	return &subscription{bus: b, name: name, h: h}
}

func (b *Bus) unsubscribe(name string, key uintptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[name]; ok {
		if h, ok := e.byKey[key]; ok {
			e.remove(h)
		}
	}
}

func (b *Bus) emit(name string, payload any) {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	e := b.entries[name]
	if e == nil || len(e.ordered) == 0 {
		b.mu.Unlock()
		return
	}

	snap := b.snapshots.Get()
	snap = append(snap, e.ordered...)
	// one-shot handlers leave the registry before any callback runs, so a
	// callback that re-emits the same event cannot re-enter itself
	for _, h := range snap {
		if h.once {
			e.remove(h)
		}
	}
	b.mu.Unlock()

	for _, h := range snap {
		b.safeInvoke(name, h, payload)
	}
	b.snapshots.Put(snap)
}

// safeInvoke isolates handler failures so one bad callback cannot stop
// delivery to the rest of the pass.
func (b *Bus) safeInvoke(name string, h *handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.lg.Error("event handler panicked",
				log.String("event", name),
				log.String("subscription", h.id),
				log.Any("panic", r),
			)
		}
	}()
	h.invoke(payload)
}

// subscription implements Subscription.
type subscription struct {
	bus  *Bus
	name string
	h    *handler // nil when issued by a destroyed bus
}

func (s *subscription) ID() string {
	if s.h == nil {
		return ""
	}
	return s.h.id
}

func (s *subscription) EventName() string { return s.name }

func (s *subscription) IsActive() bool {
	if s.h == nil {
		return false
	}
	s.bus.mu.RLock()
	defer s.bus.mu.RUnlock()
	return s.h.active
}

func (s *subscription) Cancel() {
	if s.h == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if e, ok := s.bus.entries[s.name]; ok {
		if cur, ok := e.byKey[s.h.key]; ok && cur == s.h {
			e.remove(s.h)
		}
	}
}
