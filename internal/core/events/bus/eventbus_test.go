package bus

import (
	"testing"

	"github.com/verdant-games/gecko/internal/core/observability/log"
)

var (
	tPing  = NewTopic[int]("bustest.ping")
	tNote  = NewTopic[string]("bustest.note")
	tOnce  = NewTopic[int]("bustest.once")
	tChain = NewTopic[int]("bustest.chain")
	tBoom  = NewTopic[int]("bustest.boom")
)

func TestEmitDeliversInRegistrationOrder(t *testing.T) {
	b := New(log.Nop())
	var order []int

	On(b, tPing, func(int) { order = append(order, 1) })
	On(b, tPing, func(int) { order = append(order, 2) })
	On(b, tPing, func(int) { order = append(order, 3) })

	Emit(b, tPing, 0)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("delivery order wrong: %v", order)
	}
}

func TestEmitWithoutHandlersIsNoop(t *testing.T) {
	b := New(log.Nop())
	Emit(b, tNote, "nobody home")
}

func TestDuplicateRegistrationIsIdempotent(t *testing.T) {
	b := New(log.Nop())
	count := 0
	fn := func(int) { count++ }

	sub1 := On(b, tPing, fn)
	sub2 := On(b, tPing, fn)

	if got := b.HandlerCount(tPing.Name()); got != 1 {
		t.Fatalf("handler count = %d, want 1", got)
	}
	if sub1.ID() != sub2.ID() {
		t.Fatalf("duplicate registration issued a new subscription")
	}

	Emit(b, tPing, 0)
	if count != 1 {
		t.Fatalf("handler invoked %d times, want 1", count)
	}
}

func TestOnceDeliversExactlyOnce(t *testing.T) {
	b := New(log.Nop())
	count := 0
	Once(b, tOnce, func(int) { count++ })

	Emit(b, tOnce, 1)
	Emit(b, tOnce, 2)
	if count != 1 {
		t.Fatalf("once handler invoked %d times, want 1", count)
	}
	if got := b.HandlerCount(tOnce.Name()); got != 0 {
		t.Fatalf("once handler still registered, count = %d", got)
	}
}

func TestOnceReEmitFromHandlerDoesNotReenter(t *testing.T) {
	b := New(log.Nop())
	count := 0
	Once(b, tChain, func(int) {
		count++
		// the handler is already de-registered at this point
		Emit(b, tChain, 99)
	})

	Emit(b, tChain, 1)
	if count != 1 {
		t.Fatalf("once handler re-entered itself, count = %d", count)
	}
}

func TestMidEmitRegistrationIsDeferredToNextEmit(t *testing.T) {
	b := New(log.Nop())
	lateCalls := 0
	late := func(int) { lateCalls++ }

	On(b, tPing, func(int) { On(b, tPing, late) })

	Emit(b, tPing, 0)
	if lateCalls != 0 {
		t.Fatalf("handler registered mid-emit ran in the same pass")
	}
	Emit(b, tPing, 0)
	if lateCalls != 1 {
		t.Fatalf("late handler invoked %d times after second emit, want 1", lateCalls)
	}
}

func TestOffRemovesHandler(t *testing.T) {
	b := New(log.Nop())
	count := 0
	fn := func(string) { count++ }

	On(b, tNote, fn)
	Off(b, tNote, fn)
	// removing it again is a no-op
	Off(b, tNote, fn)

	Emit(b, tNote, "x")
	if count != 0 {
		t.Fatalf("removed handler still invoked")
	}
}

func TestSubscriptionCancel(t *testing.T) {
	b := New(log.Nop())
	count := 0
	sub := On(b, tPing, func(int) { count++ })

	if !sub.IsActive() {
		t.Fatal("fresh subscription not active")
	}
	sub.Cancel()
	if sub.IsActive() {
		t.Fatal("canceled subscription still active")
	}

	Emit(b, tPing, 0)
	if count != 0 {
		t.Fatalf("canceled handler invoked")
	}
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	b := New(log.Nop())
	reached := false

	On(b, tBoom, func(int) { panic("bad handler") })
	On(b, tBoom, func(int) { reached = true })

	Emit(b, tBoom, 0)
	if !reached {
		t.Fatal("handler after panicking one was not invoked")
	}
}

func TestClearRemovesAllHandlersOfOneEvent(t *testing.T) {
	b := New(log.Nop())
	count := 0
	On(b, tPing, func(int) { count++ })
	On(b, tNote, func(string) { count++ })

	b.Clear(tPing.Name())
	Emit(b, tPing, 0)
	Emit(b, tNote, "still here")
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestDestroyedBusIgnoresEverything(t *testing.T) {
	b := New(log.Nop())
	count := 0
	On(b, tPing, func(int) { count++ })

	b.Destroy()
	Emit(b, tPing, 0)
	if count != 0 {
		t.Fatal("destroyed bus delivered an event")
	}

	sub := On(b, tPing, func(int) { count++ })
	if sub.IsActive() {
		t.Fatal("destroyed bus issued an active subscription")
	}
	if got := b.HandlerCount(tPing.Name()); got != 0 {
		t.Fatalf("destroyed bus holds %d handlers", got)
	}
}

func TestDuplicateTopicNamePanics(t *testing.T) {
	NewTopic[int]("bustest.dup")
	defer func() {
		if recover() == nil {
			t.Fatal("second declaration of a topic name did not panic")
		}
	}()
	NewTopic[string]("bustest.dup")
}
