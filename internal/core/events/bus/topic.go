package bus

import (
	"fmt"
	"reflect"
	"sync"
)

// Topic binds an event name to its payload type. All topics must be declared
// with NewTopic at package init time; the bus refuses two declarations of the
// same name so every event name has exactly one payload shape.
type Topic[T any] struct {
	name string
}

// Name returns the event name this topic routes on.
func (t Topic[T]) Name() string { return t.name }

var (
	topicMu  sync.Mutex
	topicReg = make(map[string]reflect.Type)
)

// NewTopic declares a topic. It panics on a duplicate name because topic
// declarations form a closed registry and a collision is a programming
// defect, not a runtime condition.
func NewTopic[T any](name string) Topic[T] {
	payload := reflect.TypeOf((*T)(nil)).Elem()

	topicMu.Lock()
	defer topicMu.Unlock()
	if prev, ok := topicReg[name]; ok {
		panic(fmt.Sprintf("bus: topic %q declared twice (payloads %s and %s)", name, prev, payload))
	}
	topicReg[name] = payload
	return Topic[T]{name: name}
}
