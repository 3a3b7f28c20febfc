// Package config loads the board description: which GPIO chip and pins
// the paddles, sidetone and transmitters are wired to, and the fixed
// keyer timing for this board.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/paddle-keyer/internal/gpio"
	"github.com/sweeney/paddle-keyer/internal/keyer"
	"github.com/sweeney/paddle-keyer/internal/serialline"
)

// Board is the top-level board.yml.
type Board struct {
	Version      string          `yaml:"version"`
	Chip         string          `yaml:"chip"`
	Paddles      PaddlesConfig   `yaml:"paddles"`
	Sidetone     *SidetoneConfig `yaml:"sidetone,omitempty"` // nil = no sidetone
	Transmitters []Transmitter   `yaml:"transmitters"`
	DitLine      *LineConfig     `yaml:"dit_line,omitempty"`
	DahLine      *LineConfig     `yaml:"dah_line,omitempty"`
	Timing       TimingConfig    `yaml:"timing"`
}

// PaddlesConfig holds the paddle input offsets on Chip.
type PaddlesConfig struct {
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
}

// SidetoneConfig is the GPIO line carrying the square-wave sidetone.
type SidetoneConfig struct {
	Pin int `yaml:"pin"`
}

// Transmitter is one key/PTT pair.
type Transmitter struct {
	Key LineConfig `yaml:"key"`
	PTT LineConfig `yaml:"ptt"`
}

// LineConfig is an output line: either a GPIO offset or a serial
// modem-control signal.
type LineConfig struct {
	GPIO   *int   `yaml:"gpio,omitempty"`
	Serial string `yaml:"serial,omitempty"` // device path
	Signal string `yaml:"signal,omitempty"` // rts or dtr
}

// IsSerial reports whether the line is a serial signal.
func (l LineConfig) IsSerial() bool {
	return l.Serial != ""
}

func (l LineConfig) String() string {
	if l.IsSerial() {
		return l.Serial + ":" + l.Signal
	}
	if l.GPIO != nil {
		return fmt.Sprintf("gpio%d", *l.GPIO)
	}
	return "none"
}

// TimingConfig is keyer.Timing in board-file units.
type TimingConfig struct {
	PTTLeadMs        int     `yaml:"ptt_lead_ms"`
	PTTTailMs        int     `yaml:"ptt_tail_ms"`
	FirstExtensionMs int     `yaml:"first_extension_ms"`
	HangUnits        float64 `yaml:"hang_units"`
	CompensationMs   float64 `yaml:"compensation_ms"`
	WPMLow           int     `yaml:"wpm_low"`
	WPMHigh          int     `yaml:"wpm_high"`
	SidetoneLow      int     `yaml:"sidetone_low"`
	SidetoneHigh     int     `yaml:"sidetone_high"`
}

// Default returns the stock single-transmitter board.
func Default() *Board {
	t := keyer.DefaultTiming()
	return &Board{
		Version: "1.0",
		Chip:    gpio.DefaultChip,
		Paddles: PaddlesConfig{Left: gpio.DefaultPinLeft, Right: gpio.DefaultPinRight},
		Sidetone: &SidetoneConfig{
			Pin: gpio.DefaultPinSidetone,
		},
		Transmitters: []Transmitter{{
			Key: GPIOLine(gpio.DefaultPinKey),
			PTT: GPIOLine(gpio.DefaultPinPTT),
		}},
		Timing: TimingConfig{
			PTTLeadMs:        int(t.PTTLead / time.Millisecond),
			PTTTailMs:        int(t.PTTTail / time.Millisecond),
			FirstExtensionMs: int(t.FirstExtension / time.Millisecond),
			HangUnits:        t.HangUnits,
			CompensationMs:   t.CompensationMs,
			WPMLow:           t.WPMLow,
			WPMHigh:          t.WPMHigh,
			SidetoneLow:      t.SidetoneLow,
			SidetoneHigh:     t.SidetoneHigh,
		},
	}
}

// GPIOLine is a LineConfig on a GPIO offset.
func GPIOLine(pin int) LineConfig {
	return LineConfig{GPIO: &pin}
}

// Load reads and validates a board file. Fields missing from the file
// keep their Default values.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}

	b := Default()
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}
	return b, nil
}

// Validate checks pin assignments, line definitions and timing bounds.
func (b *Board) Validate() error {
	if b.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", b.Version)
	}
	if b.Chip == "" {
		return fmt.Errorf("chip is required")
	}
	if len(b.Transmitters) == 0 {
		return fmt.Errorf("no transmitters defined")
	}

	pins := make(map[int]string)
	claim := func(pin int, who string) error {
		if pin < 0 {
			return fmt.Errorf("%s: negative gpio offset %d", who, pin)
		}
		if other, ok := pins[pin]; ok {
			return fmt.Errorf("gpio %d used by both %s and %s", pin, other, who)
		}
		pins[pin] = who
		return nil
	}

	if err := claim(b.Paddles.Left, "paddles.left"); err != nil {
		return err
	}
	if err := claim(b.Paddles.Right, "paddles.right"); err != nil {
		return err
	}
	if b.Sidetone != nil {
		if err := claim(b.Sidetone.Pin, "sidetone"); err != nil {
			return err
		}
	}

	signals := make(map[string]string)
	check := func(l LineConfig, who string) error {
		if err := l.validate(who); err != nil {
			return err
		}
		if l.IsSerial() {
			id := l.String()
			if other, ok := signals[id]; ok {
				return fmt.Errorf("%s used by both %s and %s", id, other, who)
			}
			signals[id] = who
			return nil
		}
		return claim(*l.GPIO, who)
	}

	for i, tx := range b.Transmitters {
		if err := check(tx.Key, fmt.Sprintf("transmitters[%d].key", i)); err != nil {
			return err
		}
		if err := check(tx.PTT, fmt.Sprintf("transmitters[%d].ptt", i)); err != nil {
			return err
		}
	}
	if b.DitLine != nil {
		if err := check(*b.DitLine, "dit_line"); err != nil {
			return err
		}
	}
	if b.DahLine != nil {
		if err := check(*b.DahLine, "dah_line"); err != nil {
			return err
		}
	}

	return b.Timing.validate()
}

func (l LineConfig) validate(who string) error {
	switch {
	case l.GPIO != nil && l.IsSerial():
		return fmt.Errorf("%s: set either gpio or serial, not both", who)
	case l.GPIO == nil && !l.IsSerial():
		return fmt.Errorf("%s: gpio or serial is required", who)
	case l.IsSerial():
		if _, err := serialline.ParseSignal(l.Signal); err != nil {
			return fmt.Errorf("%s: %w", who, err)
		}
	case l.Signal != "":
		return fmt.Errorf("%s: signal only applies to serial lines", who)
	}
	return nil
}

func (t TimingConfig) validate() error {
	if t.PTTLeadMs < 0 || t.PTTTailMs < 0 || t.FirstExtensionMs < 0 {
		return fmt.Errorf("timing: ptt_lead_ms, ptt_tail_ms and first_extension_ms must be >= 0")
	}
	if t.HangUnits <= 0 {
		return fmt.Errorf("timing.hang_units must be > 0, got %v", t.HangUnits)
	}
	if t.WPMLow < 1 || t.WPMHigh-t.WPMLow < 2 {
		return fmt.Errorf("timing: need 1 <= wpm_low and wpm_low+1 < wpm_high, got %d..%d", t.WPMLow, t.WPMHigh)
	}
	if t.SidetoneLow < 1 || t.SidetoneHigh-t.SidetoneLow < 2 {
		return fmt.Errorf("timing: need 1 <= sidetone_low and sidetone_low+1 < sidetone_high, got %d..%d", t.SidetoneLow, t.SidetoneHigh)
	}
	return nil
}

// KeyerTiming converts the board timing into keyer units.
func (b *Board) KeyerTiming() keyer.Timing {
	t := b.Timing
	return keyer.Timing{
		PTTLead:        time.Duration(t.PTTLeadMs) * time.Millisecond,
		PTTTail:        time.Duration(t.PTTTailMs) * time.Millisecond,
		FirstExtension: time.Duration(t.FirstExtensionMs) * time.Millisecond,
		HangUnits:      t.HangUnits,
		CompensationMs: t.CompensationMs,
		WPMLow:         t.WPMLow,
		WPMHigh:        t.WPMHigh,
		SidetoneLow:    t.SidetoneLow,
		SidetoneHigh:   t.SidetoneHigh,
	}
}
