package gpio

import "time"

// Segment is one step of a scripted paddle sequence. The contact states
// hold until the clock reaches Until.
type Segment struct {
	Until time.Duration
	Left  bool // true = closed
	Right bool // true = closed
}

// FakePaddles is a test double that returns paddle states scripted against
// a clock rather than against call count, because the keyer's timing loop
// reads the paddles an unpredictable number of times.
type FakePaddles struct {
	// Script is consulted in order; the first segment whose Until is after
	// the current time wins. Past the end of the script both paddles read open.
	Script []Segment

	now func() time.Duration

	// Reads counts Read calls.
	Reads int

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakePaddles creates FakePaddles reading time from now.
func NewFakePaddles(now func() time.Duration, script ...Segment) *FakePaddles {
	return &FakePaddles{Script: script, now: now}
}

// Read returns the scripted contact states for the current time.
func (f *FakePaddles) Read() (bool, bool, error) {
	f.Reads++
	if f.ReadError != nil {
		return false, false, f.ReadError
	}
	t := f.now()
	for _, s := range f.Script {
		if t < s.Until {
			return s.Left, s.Right, nil
		}
	}
	return false, false, nil
}

// Close marks the reader as closed.
func (f *FakePaddles) Close() error {
	f.Closed = true
	return nil
}

// Transition is a recorded level change on a FakeLine.
type Transition struct {
	At   time.Duration
	High bool
}

// Pulse is one completed high period.
type Pulse struct {
	Start time.Duration
	End   time.Duration
}

// Length returns the pulse duration.
func (p Pulse) Length() time.Duration {
	return p.End - p.Start
}

// FakeLine records level changes with timestamps.
type FakeLine struct {
	now func() time.Duration

	// High is the current level.
	High bool

	// Transitions holds every level change in order. Writes that do not
	// change the level are counted in Writes but not recorded here.
	Transitions []Transition
	Writes      int

	// SetError, if set, will be returned by Set()
	SetError error

	Closed bool
}

// NewFakeLine creates a FakeLine that starts low.
func NewFakeLine(now func() time.Duration) *FakeLine {
	return &FakeLine{now: now}
}

// Set records the level.
func (f *FakeLine) Set(high bool) error {
	f.Writes++
	if f.SetError != nil {
		return f.SetError
	}
	if high == f.High {
		return nil
	}
	f.High = high
	f.Transitions = append(f.Transitions, Transition{At: f.now(), High: high})
	return nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.Closed = true
	return nil
}

// Rises returns the times the line went high.
func (f *FakeLine) Rises() []time.Duration {
	var out []time.Duration
	for _, tr := range f.Transitions {
		if tr.High {
			out = append(out, tr.At)
		}
	}
	return out
}

// Falls returns the times the line went low.
func (f *FakeLine) Falls() []time.Duration {
	var out []time.Duration
	for _, tr := range f.Transitions {
		if !tr.High {
			out = append(out, tr.At)
		}
	}
	return out
}

// Pulses returns every completed high period. A pulse still high at the end
// is not included.
func (f *FakeLine) Pulses() []Pulse {
	var out []Pulse
	var start time.Duration
	inPulse := false
	for _, tr := range f.Transitions {
		switch {
		case tr.High && !inPulse:
			start = tr.At
			inPulse = true
		case !tr.High && inPulse:
			out = append(out, Pulse{Start: start, End: tr.At})
			inPulse = false
		}
	}
	return out
}

// FakeTone records sidetone activity.
type FakeTone struct {
	// Starts holds the pitch of every Start call.
	Starts []int
	Stops  int

	Playing bool
	Hz      int

	// StartError, if set, will be returned by Start()
	StartError error

	Closed bool
}

// NewFakeTone creates a silent FakeTone.
func NewFakeTone() *FakeTone {
	return &FakeTone{}
}

// Start records the pitch and marks the tone playing.
func (f *FakeTone) Start(hz int) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.Starts = append(f.Starts, hz)
	f.Playing = true
	f.Hz = hz
	return nil
}

// Stop marks the tone silent.
func (f *FakeTone) Stop() error {
	f.Stops++
	f.Playing = false
	return nil
}

// Close marks the tone as closed.
func (f *FakeTone) Close() error {
	f.Closed = true
	return nil
}
