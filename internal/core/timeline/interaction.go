package timeline

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The wall-clock implementation is
// time.AfterFunc; tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WallScheduler schedules on the real clock.
func WallScheduler() Scheduler { return wallScheduler{} }

// InteractionTracker holds the "recently interacted" flag. Every Touch
// cancels the pending decay timer and schedules a fresh one; the flag clears
// only when a full window passes without another Touch.
type InteractionTracker struct {
	mu         sync.Mutex
	scheduler  Scheduler
	window     time.Duration
	timer      Timer
	generation uint64
	active     bool
	closed     bool
	onDecay    func()
}

// NewInteractionTracker creates a tracker with the given decay window.
func NewInteractionTracker(window time.Duration, scheduler Scheduler) *InteractionTracker {
	if scheduler == nil {
		scheduler = WallScheduler()
	}
	return &InteractionTracker{
		scheduler: scheduler,
		window:    window,
	}
}

// OnDecay registers a callback run (outside the tracker lock) when the flag
// clears.
func (t *InteractionTracker) OnDecay(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDecay = f
}

// Touch marks an interaction and restarts the decay window.
func (t *InteractionTracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.active = true
	t.generation++
	gen := t.generation
	t.timer = t.scheduler.AfterFunc(t.window, func() {
		t.expire(gen)
	})
}

func (t *InteractionTracker) expire(gen uint64) {
	t.mu.Lock()
	// A timer that lost the race with Stop must not clear a newer window.
	if t.closed || gen != t.generation {
		t.mu.Unlock()
		return
	}
	t.active = false
	t.timer = nil
	cb := t.onDecay
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Active reports whether an interaction happened within the window.
func (t *InteractionTracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Window returns the decay window.
func (t *InteractionTracker) Window() time.Duration {
	return t.window
}

// Close cancels any pending timer. The tracker ignores Touch afterwards.
func (t *InteractionTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.closed = true
	t.active = false
	t.generation++
}
