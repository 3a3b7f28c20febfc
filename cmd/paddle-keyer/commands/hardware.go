package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/sweeney/paddle-keyer/internal/config"
	"github.com/sweeney/paddle-keyer/internal/gpio"
	"github.com/sweeney/paddle-keyer/internal/keyer"
	"github.com/sweeney/paddle-keyer/internal/serialline"
)

type serialPort interface {
	Line(sig serialline.Signal) (*serialline.Line, error)
	Close() error
}

// Hardware openers. Tests replace them with fakes.
var (
	openPaddles = func(chip string, left, right int) (gpio.Reader, error) {
		p, err := gpio.NewRealPaddles(chip, left, right)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	openLine = func(chip string, pin int) (gpio.Output, error) {
		l, err := gpio.NewRealLine(chip, pin)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	openTone = func(chip string, pin int) (gpio.Tone, error) {
		t, err := gpio.NewRealTone(chip, pin)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	openSerial = func(name string) (serialPort, error) {
		p, err := serialline.Open(name)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
)

// station is the keyer hardware opened from a board file.
type station struct {
	hw      keyer.Hardware
	closers []io.Closer
	ports   map[string]serialPort
}

// openStation opens every line the board describes. On error anything
// already opened is closed again.
func openStation(b *config.Board, clk keyer.Clock) (*station, error) {
	s := &station{
		hw:    keyer.Hardware{Clock: clk},
		ports: make(map[string]serialPort),
	}
	if err := s.open(b); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *station) open(b *config.Board) error {
	paddles, err := openPaddles(b.Chip, b.Paddles.Left, b.Paddles.Right)
	if err != nil {
		return fmt.Errorf("open paddles: %w", err)
	}
	s.closers = append(s.closers, paddles)
	s.hw.Paddles = paddles

	if b.Sidetone != nil {
		tone, err := openTone(b.Chip, b.Sidetone.Pin)
		if err != nil {
			return fmt.Errorf("open sidetone: %w", err)
		}
		s.closers = append(s.closers, tone)
		s.hw.Sidetone = tone
	}

	for i, tx := range b.Transmitters {
		key, err := s.line(b.Chip, tx.Key)
		if err != nil {
			return fmt.Errorf("open transmitter %d key: %w", i+1, err)
		}
		ptt, err := s.line(b.Chip, tx.PTT)
		if err != nil {
			return fmt.Errorf("open transmitter %d ptt: %w", i+1, err)
		}
		s.hw.Transmitters = append(s.hw.Transmitters, keyer.Transmitter{Key: key, PTT: ptt})
	}

	if b.DitLine != nil {
		if s.hw.DitLine, err = s.line(b.Chip, *b.DitLine); err != nil {
			return fmt.Errorf("open dit line: %w", err)
		}
	}
	if b.DahLine != nil {
		if s.hw.DahLine, err = s.line(b.Chip, *b.DahLine); err != nil {
			return fmt.Errorf("open dah line: %w", err)
		}
	}
	return nil
}

// line opens one output. Serial lines on the same device share one port.
func (s *station) line(chip string, lc config.LineConfig) (keyer.Line, error) {
	if !lc.IsSerial() {
		if lc.GPIO == nil {
			return nil, fmt.Errorf("no gpio or serial line")
		}
		l, err := openLine(chip, *lc.GPIO)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, l)
		return l, nil
	}

	sig, err := serialline.ParseSignal(lc.Signal)
	if err != nil {
		return nil, err
	}
	port, ok := s.ports[lc.Serial]
	if !ok {
		if port, err = openSerial(lc.Serial); err != nil {
			return nil, err
		}
		s.ports[lc.Serial] = port
		s.closers = append(s.closers, port)
	}
	l, err := port.Line(sig)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Close releases everything in reverse order of opening.
func (s *station) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// describeTransmitters lists each key/PTT pair for display, e.g.
// "key=gpio17 ptt=gpio27".
func describeTransmitters(b *config.Board) []string {
	out := make([]string, len(b.Transmitters))
	for i, tx := range b.Transmitters {
		out[i] = fmt.Sprintf("key=%s ptt=%s", tx.Key, tx.PTT)
	}
	return out
}
