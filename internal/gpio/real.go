//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealPaddles reads paddle contacts from actual hardware using the Linux
// GPIO character device.
type RealPaddles struct {
	chip     *gpiocdev.Chip
	leftPin  *gpiocdev.Line
	rightPin *gpiocdev.Line
}

// NewRealPaddles requests both paddle lines as inputs with pull-ups. The
// paddle contacts short the pins to ground.
func NewRealPaddles(chipName string, pinLeft, pinRight int) (*RealPaddles, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	leftLine, err := chip.RequestLine(pinLeft, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request left paddle pin %d: %w", pinLeft, err)
	}

	rightLine, err := chip.RequestLine(pinRight, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		leftLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request right paddle pin %d: %w", pinRight, err)
	}

	return &RealPaddles{
		chip:     chip,
		leftPin:  leftLine,
		rightPin: rightLine,
	}, nil
}

// Read returns the logical contact states.
// Inverts raw GPIO: raw 0 (pulled low by the contact) = closed.
func (r *RealPaddles) Read() (bool, bool, error) {
	leftRaw, err := r.leftPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read left paddle pin: %w", err)
	}

	rightRaw, err := r.rightPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read right paddle pin: %w", err)
	}

	return leftRaw == 0, rightRaw == 0, nil
}

// Close releases GPIO resources.
func (r *RealPaddles) Close() error {
	var errs []error

	if r.leftPin != nil {
		if err := r.leftPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close left pin: %w", err))
		}
	}
	if r.rightPin != nil {
		if err := r.rightPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close right pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealLine is an output line such as a key or PTT line.
type RealLine struct {
	line *gpiocdev.Line
	pin  int
}

// NewRealLine requests pin as an output, initially low.
func NewRealLine(chipName string, pin int) (*RealLine, error) {
	line, err := gpiocdev.RequestLine(chipName, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealLine{line: line, pin: pin}, nil
}

// Set drives the line.
func (l *RealLine) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set pin %d: %w", l.pin, err)
	}
	return nil
}

// Close drives the line low and releases it. A released key or PTT line
// must never be left asserted.
func (l *RealLine) Close() error {
	var errs []error
	if err := l.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("lower pin %d: %w", l.pin, err))
	}
	if err := l.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", l.pin, err))
	}
	if err := l.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", l.pin, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealTone generates the sidetone as a software square wave on an output
// line driving a piezo or audio amplifier.
type RealTone struct {
	line *gpiocdev.Line

	mu   sync.Mutex
	hz   int
	stop chan struct{}
	done chan struct{}
}

// NewRealTone requests pin as the sidetone output.
func NewRealTone(chipName string, pin int) (*RealTone, error) {
	line, err := gpiocdev.RequestLine(chipName, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request sidetone pin %d: %w", pin, err)
	}
	return &RealTone{line: line}, nil
}

// Start begins a tone at hz, replacing any tone already playing.
func (t *RealTone) Start(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("sidetone: invalid pitch %d", hz)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil && t.hz == hz {
		return nil
	}
	t.halt()
	t.hz = hz
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(hz, t.stop, t.done)
	return nil
}

func (t *RealTone) run(hz int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Second / time.Duration(2*hz))
	defer ticker.Stop()

	v := 0
	for {
		select {
		case <-stop:
			t.line.SetValue(0)
			return
		case <-ticker.C:
			v ^= 1
			t.line.SetValue(v)
		}
	}
}

// halt stops the running oscillator. Caller holds mu.
func (t *RealTone) halt() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop = nil
	t.done = nil
}

// Stop silences the tone.
func (t *RealTone) Stop() error {
	t.mu.Lock()
	t.halt()
	t.mu.Unlock()
	return nil
}

// Close silences the tone and releases the line.
func (t *RealTone) Close() error {
	t.Stop()
	if err := t.line.Close(); err != nil {
		return fmt.Errorf("close sidetone pin: %w", err)
	}
	return nil
}
