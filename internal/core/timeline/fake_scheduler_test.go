package timeline

import (
	"sort"
	"sync"
	"time"
)

// manualScheduler fires callbacks only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	due     time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, due: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and runs due callbacks in due order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.due <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].due < due[j].due })
	for _, t := range due {
		t.f()
	}
}

// Pending counts timers that are neither stopped nor fired.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Scheduled counts every timer ever created.
func (s *manualScheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
