// Package clock provides the monotonic time sources the keyer runs on.
package clock

import "time"

// Monotonic reads the process monotonic clock.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a clock whose epoch is now.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (m *Monotonic) Now() time.Duration {
	return time.Since(m.start)
}

// Sleep blocks for d.
func (m *Monotonic) Sleep(d time.Duration) {
	time.Sleep(d)
}
