//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealPaddles is not available on non-Linux platforms.
type RealPaddles struct{}

// NewRealPaddles returns an error on non-Linux platforms.
func NewRealPaddles(chipName string, pinLeft, pinRight int) (*RealPaddles, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealPaddles) Read() (bool, bool, error) {
	return false, false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealPaddles) Close() error {
	return nil
}

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// NewRealLine returns an error on non-Linux platforms.
func NewRealLine(chipName string, pin int) (*RealLine, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (l *RealLine) Set(high bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (l *RealLine) Close() error {
	return nil
}

// RealTone is not available on non-Linux platforms.
type RealTone struct{}

// NewRealTone returns an error on non-Linux platforms.
func NewRealTone(chipName string, pin int) (*RealTone, error) {
	return nil, errUnsupported
}

// Start is not implemented on non-Linux platforms.
func (t *RealTone) Start(hz int) error {
	return errors.New("gpio: not supported")
}

// Stop is not implemented on non-Linux platforms.
func (t *RealTone) Stop() error {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (t *RealTone) Close() error {
	return nil
}
