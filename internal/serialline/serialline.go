// Package serialline keys a transmitter through the modem-control signals
// of a serial port. RTS and DTR are the usual rig-interface wiring: one
// signal for the key, the other for PTT.
package serialline

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// Signal is a modem-control output.
type Signal string

const (
	RTS Signal = "rts"
	DTR Signal = "dtr"
)

// ParseSignal accepts "rts" or "dtr" in any case.
func ParseSignal(s string) (Signal, error) {
	switch Signal(strings.ToLower(strings.TrimSpace(s))) {
	case RTS:
		return RTS, nil
	case DTR:
		return DTR, nil
	}
	return "", fmt.Errorf("unknown serial signal %q (want rts or dtr)", s)
}

// modemPort is the part of serial.Port we drive.
type modemPort interface {
	SetRTS(bool) error
	SetDTR(bool) error
	Close() error
}

// openPort is replaced in tests.
var openPort = func(name string) (modemPort, error) {
	return serial.Open(name, &serial.Mode{
		BaudRate: 9600,
		// Both signals start low so nothing keys while the port opens.
		InitialStatusBits: &serial.ModemOutputBits{RTS: false, DTR: false},
	})
}

// Port is an open serial device shared by the lines using its signals.
// Not safe for concurrent use.
type Port struct {
	name  string
	port  modemPort
	lines map[Signal]*Line
}

// Open opens the named serial device with both signals low.
func Open(name string) (*Port, error) {
	p, err := openPort(name)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return &Port{name: name, port: p, lines: make(map[Signal]*Line)}, nil
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.name
}

// Line returns the output line for sig. Asking twice for the same signal
// returns the same line.
func (p *Port) Line(sig Signal) (*Line, error) {
	if sig != RTS && sig != DTR {
		return nil, fmt.Errorf("unknown serial signal %q", sig)
	}
	if l, ok := p.lines[sig]; ok {
		return l, nil
	}
	l := &Line{port: p, signal: sig}
	p.lines[sig] = l
	return l, nil
}

// Close lowers every line and closes the device.
func (p *Port) Close() error {
	var errs []error
	for _, l := range p.lines {
		if err := l.Set(false); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.port.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close serial %s: %w", p.name, err))
	}
	return errors.Join(errs...)
}

// Line is one modem-control signal used as a keyer output.
type Line struct {
	port   *Port
	signal Signal
	high   bool
}

// Set asserts or clears the signal.
func (l *Line) Set(high bool) error {
	var err error
	switch l.signal {
	case RTS:
		err = l.port.port.SetRTS(high)
	case DTR:
		err = l.port.port.SetDTR(high)
	}
	if err != nil {
		return fmt.Errorf("set %s on %s: %w", l.signal, l.port.name, err)
	}
	l.high = high
	return nil
}

// High reports the last successfully written state.
func (l *Line) High() bool {
	return l.high
}

// Signal returns which modem-control output this line drives.
func (l *Line) Signal() Signal {
	return l.signal
}

// Close lowers the line. The device stays open until Port.Close.
func (l *Line) Close() error {
	return l.Set(false)
}
