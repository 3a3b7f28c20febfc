package keyer

import "time"

// Paddles reads the two paddle contacts.
type Paddles interface {
	// Read returns the logical contact states (true = closed) of the left
	// and right levers. Active-low inversion is done by the implementation.
	Read() (left, right bool, err error)
}

// Line is a single digital output such as a key or PTT line.
type Line interface {
	Set(high bool) error
}

// Sidetone is the local monitor oscillator.
type Sidetone interface {
	Start(hz int) error
	Stop() error
}

// Clock is a monotonic time source. Now is measured from an arbitrary
// epoch; only differences between readings are meaningful.
type Clock interface {
	Now() time.Duration
	Sleep(d time.Duration)
}

// Transmitter is one selectable key/PTT line pair. PTT may be nil for rigs
// that switch on the key line alone.
type Transmitter struct {
	Key Line
	PTT Line
}

// Hardware bundles everything the keyer drives or reads.
type Hardware struct {
	Paddles      Paddles
	Transmitters []Transmitter
	// DitLine and DahLine are optional per-element outputs.
	DitLine  Line
	DahLine  Line
	Sidetone Sidetone
	Clock    Clock
}
