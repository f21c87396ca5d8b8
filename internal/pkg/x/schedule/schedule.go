// Package schedule runs one-shot delayed tasks with cancellation. Unlike a
// bare time.AfterFunc, every pending timer is tracked so that Close can
// stop the whole set during shutdown instead of leaking callbacks that
// fire into a torn-down process.
package schedule

import (
	"sync"
	"time"
)

// Scheduler tracks pending one-shot tasks. The zero value is not usable;
// call New.
type Scheduler struct {
	mu     sync.Mutex
	closed bool
	nextID uint64
	timers map[uint64]*time.Timer
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{
		timers: make(map[uint64]*time.Timer),
	}
}

// After schedules fn to run once after d. The task runs on its own
// goroutine. The returned cancel function stops the task if it has not
// fired yet; calling it after the task ran is a no-op. After a Close, new
// tasks are dropped and the returned cancel does nothing.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextID
	s.nextID++

	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		closed := s.closed
		s.mu.Unlock()

		if !closed {
			fn()
		}
	})
	s.timers[id] = timer

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if t, ok := s.timers[id]; ok {
			t.Stop()
			delete(s.timers, id)
		}
	}
}

// Pending reports how many tasks have been scheduled but not yet fired or
// canceled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every pending task and rejects new ones. Tasks whose timer
// already fired but whose callback has not started yet will observe the
// closed flag and return without running.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
