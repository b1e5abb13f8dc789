package scheduler

import (
	"sync"
	"time"
)

// Slot owns exactly one timer. Arming it replaces whatever was armed before,
// so a loop selecting on C never sees a stale fire.
type Slot struct {
	mu    sync.Mutex
	timer *time.Timer
	due   time.Time
	armed bool
	now   func() time.Time
}

func NewSlot() *Slot {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	return &Slot{timer: timer, now: time.Now}
}

// Arm schedules the next fire after delay. Negative delays fire immediately.
func (s *Slot) Arm(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Reset(delay)
	s.due = s.now().Add(delay)
	s.armed = true
}

// Stop cancels the armed timer, if any.
func (s *Slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Stop()
	s.armed = false
	s.due = time.Time{}
}

// C fires once per Arm. The channel is stable for the lifetime of the slot.
func (s *Slot) C() <-chan time.Time {
	return s.timer.C
}

// Due reports when the slot is going to fire.
func (s *Slot) Due() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due, s.armed
}

// Fired marks the slot as consumed after a receive on C.
func (s *Slot) Fired() {
	s.mu.Lock()
	s.armed = false
	s.mu.Unlock()
}
