// Package gpio provides paddle inputs, key/PTT outputs and a sidetone
// oscillator over GPIO with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Reader reads the paddle contacts.
type Reader interface {
	// Read returns the logical contact states of the left and right levers.
	// The raw GPIO values are inverted: contacts pull the pin low, so
	// raw 0 = logical closed.
	// Returns (leftClosed, rightClosed, error).
	Read() (bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a single output line.
type Output interface {
	Set(high bool) error
	Close() error
}

// Tone is a square-wave oscillator on an output line.
type Tone interface {
	Start(hz int) error
	Stop() error
	Close() error
}

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// Default pin offsets (BCM numbering).
const (
	DefaultPinLeft     = 5  // left paddle lever
	DefaultPinRight    = 6  // right paddle lever
	DefaultPinKey      = 17 // TX 1 key line
	DefaultPinPTT      = 27 // TX 1 PTT line
	DefaultPinSidetone = 18 // sidetone square wave
)
