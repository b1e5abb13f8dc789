package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/preference"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type staticDevice string

func (d staticDevice) DeviceID(context.Context) (string, error) {
	return string(d), nil
}

type staticPreferences struct {
	prefs preference.Preferences
	err   error
}

func (p staticPreferences) Get(context.Context) (preference.Preferences, error) {
	return p.prefs, p.err
}

func (p staticPreferences) PredictorSpeed(context.Context) (string, error) {
	return p.prefs.Predictor.Speed, p.err
}

func followingPreferences() staticPreferences {
	prefs := preference.Default()
	prefs.Competitions = []string{"Premier League"}
	return staticPreferences{prefs: prefs}
}
