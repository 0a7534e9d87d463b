// Package clock abstracts time behind ports.Clock. The dashboard
// derives everything from a session-fixed anchor, so tests need a clock
// they can pin and move explicitly.
package clock

import (
	"sync"
	"time"
)

// Real reads the wall clock.
type Real struct{}

// Now returns the current wall-clock time.
func (Real) Now() time.Time { return time.Now() }

// Fake is a manually driven clock pinned at an instant.
type Fake struct {
	mu sync.RWMutex
	at time.Time
}

// NewFake creates a fake clock pinned at t.
func NewFake(t time.Time) *Fake {
	return &Fake{at: t}
}

// Now returns the pinned instant.
func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.at
}

// Set pins the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.at = t
}

// Advance moves the pinned instant forward by d. Useful for walking a
// session anchor across a day or month boundary.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.at = f.at.Add(d)
}
