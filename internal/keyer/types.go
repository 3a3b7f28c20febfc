// Package keyer contains the CW keyer state machine: paddle latching,
// ultimatic closure arbitration, per-mode element dispatch, element timing,
// key/PTT sequencing and the PTT tail.
//
// This package has NO direct hardware, network or file access. Paddles,
// output lines, the sidetone oscillator and time are all injected, so the
// whole keyer runs against fakes in tests.
package keyer

import (
	"strings"
	"time"
)

// Mode is the keying discipline.
type Mode int

const (
	ModeStraight Mode = iota
	ModeBug
	ModeIambicA
	ModeIambicB
	ModeUltimatic

	modeCount
)

var modeNames = [...]string{"STRAIGHT", "BUG", "IAMBIC_A", "IAMBIC_B", "ULTIMATIC"}

func (m Mode) String() string {
	if !m.Valid() {
		return "UNKNOWN"
	}
	return modeNames[m]
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}

// Next returns the mode that follows m in the cycle order.
func (m Mode) Next() Mode {
	if !m.Valid() {
		return ModeStraight
	}
	return (m + 1) % modeCount
}

// ParseMode accepts names like "iambic_b", "IAMBIC-B" or "ultimatic".
func ParseMode(s string) (Mode, bool) {
	i, ok := lookupName(s, modeNames[:])
	return Mode(i), ok
}

// lookupName finds s in names, ignoring case, surrounding space and the
// choice of '-' or '_'. It returns 0 when nothing matches.
func lookupName(s string, names []string) (int, bool) {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, name := range names {
		if name == s {
			return i, true
		}
	}
	return 0, false
}

// UltimaticPriority selects how ULTIMATIC resolves a squeeze.
// It is only consulted when the mode is ModeUltimatic.
type UltimaticPriority int

const (
	// UltimaticNormal: the paddle closed last wins.
	UltimaticNormal UltimaticPriority = iota
	UltimaticDitPriority
	UltimaticDahPriority
)

func (p UltimaticPriority) String() string {
	switch p {
	case UltimaticNormal:
		return "NORMAL"
	case UltimaticDitPriority:
		return "DIT_PRIORITY"
	case UltimaticDahPriority:
		return "DAH_PRIORITY"
	}
	return "UNKNOWN"
}

func (p UltimaticPriority) valid() bool {
	return p >= UltimaticNormal && p <= UltimaticDahPriority
}

// ParseUltimaticPriority accepts "normal", "dit_priority" or "dah_priority".
func ParseUltimaticPriority(s string) (UltimaticPriority, bool) {
	i, ok := lookupName(s, []string{"NORMAL", "DIT_PRIORITY", "DAH_PRIORITY"})
	return UltimaticPriority(i), ok
}

// Polarity maps the physical levers to dit and dah.
type Polarity int

const (
	// PolarityNormal: left lever = dit, right lever = dah.
	PolarityNormal Polarity = iota
	PolarityReversed
)

func (p Polarity) String() string {
	if p == PolarityReversed {
		return "REVERSED"
	}
	return "NORMAL"
}

// ParsePolarity accepts "normal" or "reversed".
func ParsePolarity(s string) (Polarity, bool) {
	i, ok := lookupName(s, []string{"NORMAL", "REVERSED"})
	return Polarity(i), ok
}

// SidetoneMode controls the local monitor tone.
type SidetoneMode int

const (
	SidetoneOff SidetoneMode = iota
	SidetoneOn
	SidetonePaddleOnly
)

func (s SidetoneMode) String() string {
	switch s {
	case SidetoneOff:
		return "OFF"
	case SidetoneOn:
		return "ON"
	case SidetonePaddleOnly:
		return "PADDLE_ONLY"
	}
	return "UNKNOWN"
}

// ParseSidetoneMode accepts "off", "on" or "paddle_only".
func ParseSidetoneMode(s string) (SidetoneMode, bool) {
	i, ok := lookupName(s, []string{"OFF", "ON", "PADDLE_ONLY"})
	return SidetoneMode(i), ok
}

// PADDLE_ONLY sounds exactly like ON: automatic sending is keyed through
// the same path as the paddles.
func (s SidetoneMode) sounds() bool {
	return s == SidetoneOn || s == SidetonePaddleOnly
}

// Element is the element currently being sent.
type Element int

const (
	ElementNone Element = iota
	ElementDit
	ElementDah
)

func (e Element) String() string {
	switch e {
	case ElementDit:
		return "DIT"
	case ElementDah:
		return "DAH"
	}
	return "NONE"
}

// Origin records where the most recent element came from. It decides
// which PTT tail rule applies.
type Origin int

const (
	OriginManual Origin = iota
	OriginAutomatic
)

func (o Origin) String() string {
	if o == OriginAutomatic {
		return "AUTOMATIC"
	}
	return "MANUAL"
}

// Settings is the operator-adjustable configuration. It is what the
// persistence collaborator saves and restores.
type Settings struct {
	WPM               int
	Mode              Mode
	UltimaticPriority UltimaticPriority
	Polarity          Polarity
	SidetoneMode      SidetoneMode
	SidetoneHz        int
	DahRatio          int // hundredths; 300 = 3.0
	Weighting         int // 50 = symmetric
	WordSpace         int // in dit units
	Autospace         bool
	TX                int // 1-based transmitter index
}

// DefaultSettings returns the power-on settings.
func DefaultSettings() Settings {
	return Settings{
		WPM:          26,
		Mode:         ModeIambicB,
		Polarity:     PolarityNormal,
		SidetoneMode: SidetoneOn,
		SidetoneHz:   600,
		DahRatio:     300,
		Weighting:    50,
		WordSpace:    7,
		TX:           1,
	}
}

// Timing holds the fixed board tuning values. Unlike Settings these are
// not operator-adjustable at runtime.
type Timing struct {
	// PTTLead is how long PTT must be up before the first key-down.
	PTTLead time.Duration
	// PTTTail is the fixed PTT hang after automatic sending.
	PTTTail time.Duration
	// FirstExtension lengthens the very first mark of a transmission.
	FirstExtension time.Duration
	// HangUnits scales the word space into the manual-sending PTT hang.
	HangUnits float64
	// CompensationMs lengthens each mark and shortens the following space.
	CompensationMs float64

	// WPM and sidetone bounds are exclusive.
	WPMLow       int
	WPMHigh      int
	SidetoneLow  int
	SidetoneHigh int
}

// DefaultTiming returns the stock board tuning.
func DefaultTiming() Timing {
	return Timing{
		PTTLead:      10 * time.Millisecond,
		PTTTail:      10 * time.Millisecond,
		HangUnits:    1.0,
		WPMLow:       5,
		WPMHigh:      60,
		SidetoneLow:  299,
		SidetoneHigh: 2001,
	}
}

// Faults counts hardware errors the keyer absorbed.
type Faults struct {
	PaddleReads int
	LineWrites  int
	Sidetone    int
}

// Total returns the sum of all fault counters.
func (f Faults) Total() int {
	return f.PaddleReads + f.LineWrites + f.Sidetone
}

// Snapshot is a read-only view of the keyer for display.
type Snapshot struct {
	Settings   Settings
	Dirty      bool
	KeyDown    bool
	PTTActive  bool
	ManualPTT  bool
	TXEnabled  bool
	Sending    Element
	LastOrigin Origin
	Closure    ClosureState
	Faults     Faults
}
