package game

import (
	"sync/atomic"
	"time"
)

// Scheduler is the frame ticker: one recurring callback at the display
// interval. It performs no game logic itself; the coordinator installs a
// fixed physics-then-render sequence as the tick.
type Scheduler struct {
	interval time.Duration
	tick     func(dt float64)
	running  atomic.Bool
	stopped  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(interval time.Duration, tick func(dt float64)) *Scheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Scheduler{
		interval: interval,
		tick:     tick,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins ticking. Repeat calls and calls after Stop are no-ops.
func (s *Scheduler) Start() {
	if s.stopped.Load() {
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	go s.run()
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			if s.stopped.Load() {
				return
			}
			dt := now.Sub(last).Seconds()
			last = now
			s.tick(dt)
		}
	}
}

// Stop halts ticking permanently and waits for a tick in flight to finish.
// No further callback runs once it returns; safe to call whether or not
// Start ever ran, and more than once. Must not be called from inside the
// tick callback.
func (s *Scheduler) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stop)
	}
	if s.running.Load() {
		<-s.done
	}
}

// Running reports whether the scheduler is actively ticking.
func (s *Scheduler) Running() bool {
	return s.running.Load() && !s.stopped.Load()
}
