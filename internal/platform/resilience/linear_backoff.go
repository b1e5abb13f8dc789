package resilience

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var _ backoff.BackOff = (*LinearBackOff)(nil)

// LinearBackOff grows by Step on every NextBackOff call until it reaches Max.
// Reset returns it to zero. It is safe for concurrent use.
type LinearBackOff struct {
	Step time.Duration
	Max  time.Duration

	mu      sync.Mutex
	current time.Duration
}

func NewLinearBackOff(step, max time.Duration) *LinearBackOff {
	return &LinearBackOff{Step: step, Max: max}
}

func (b *LinearBackOff) NextBackOff() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Max <= 0 || b.current < b.Max {
		b.current += b.Step
	}
	if b.Max > 0 && b.current > b.Max {
		b.current = b.Max
	}
	return b.current
}

func (b *LinearBackOff) Reset() {
	b.mu.Lock()
	b.current = 0
	b.mu.Unlock()
}

// Current returns the last value handed out without advancing.
func (b *LinearBackOff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
