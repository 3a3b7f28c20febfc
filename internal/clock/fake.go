package clock

import "time"

// Fake is a deterministic clock for tests. Every Now call advances time by
// Step, so busy-wait loops terminate without real delays. Peek reads the
// time without advancing it and is what scripted fakes should use.
// Not safe for concurrent use.
type Fake struct {
	now  time.Duration
	Step time.Duration

	// Sleeps records every Sleep duration.
	Sleeps []time.Duration
}

// NewFake creates a fake clock starting at start.
func NewFake(start, step time.Duration) *Fake {
	return &Fake{now: start, Step: step}
}

// Now returns the current time, then advances it by Step.
func (f *Fake) Now() time.Duration {
	t := f.now
	f.now += f.Step
	return t
}

// Peek returns the current time without advancing.
func (f *Fake) Peek() time.Duration {
	return f.now
}

// Sleep advances time by d.
func (f *Fake) Sleep(d time.Duration) {
	f.Sleeps = append(f.Sleeps, d)
	if d > 0 {
		f.now += d
	}
}

// Advance moves time forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.now += d
}
