package keyer

import "time"

// Keyer is the single keyer aggregate. It is not safe for concurrent use:
// the host owns one instance and calls Tick from one goroutine.
type Keyer struct {
	hw     Hardware
	timing Timing

	settings Settings
	dirty    bool

	// Pending-element latches: "touched since last serviced".
	ditBuffer bool
	dahBuffer bool
	closure   ClosureState

	keyDown    bool
	sending    Element
	lastOrigin Origin
	squeeze    bool
	txEnabled  bool

	pttActive bool
	pttTime   time.Duration
	manualPTT bool

	faults Faults
}

// New creates a keyer over the given hardware. Call Initialize before the
// first Tick.
func New(hw Hardware, timing Timing) *Keyer {
	k := &Keyer{
		hw:     hw,
		timing: timing,
	}
	k.reset()
	return k
}

func (k *Keyer) reset() {
	k.settings = DefaultSettings()
	k.settings.WPM = clamp(k.settings.WPM, k.timing.WPMLow+1, k.timing.WPMHigh-1)
	k.settings.SidetoneHz = clamp(k.settings.SidetoneHz, k.timing.SidetoneLow+1, k.timing.SidetoneHigh-1)
	k.dirty = false
	k.ditBuffer, k.dahBuffer = false, false
	k.closure = NoClosure
	k.keyDown = false
	k.sending = ElementNone
	k.lastOrigin = OriginManual
	k.squeeze = false
	k.txEnabled = true
	k.pttActive = false
	k.manualPTT = false
}

// Initialize drives every output low and loads the power-on settings.
func (k *Keyer) Initialize() {
	k.reset()
	for _, tx := range k.hw.Transmitters {
		k.write(tx.Key, false)
		k.write(tx.PTT, false)
	}
	k.write(k.hw.DitLine, false)
	k.write(k.hw.DahLine, false)
	k.toneStop()
	k.pttTime = k.now()
}

// Tick runs one pass of the keyer: sample paddles, arbitrate, dispatch
// elements and service the PTT tail. Dispatching a timed element blocks
// until the element and its trailing space are complete.
func (k *Keyer) Tick() {
	k.sample()
	k.service()
	k.checkPTTTail()
}

// sample is the paddle monitor. It only ever sets latches; the sequencer
// and the arbiter clear them.
func (k *Keyer) sample() {
	dit, dah := k.readPaddles()
	if dit {
		k.ditBuffer = true
		k.manualPTT = false
	}
	if dah {
		k.dahBuffer = true
		k.manualPTT = false
	}
	if k.settings.Mode == ModeUltimatic {
		k.arbitrate()
	}
}

func (k *Keyer) arbitrate() {
	var clearDit, clearDah bool
	if k.settings.UltimaticPriority == UltimaticNormal {
		k.closure, clearDit, clearDah = nextClosure(k.closure, k.ditBuffer, k.dahBuffer)
	} else {
		clearDit, clearDah = priorityClear(k.settings.UltimaticPriority, k.ditBuffer, k.dahBuffer)
	}
	if clearDit {
		k.ditBuffer = false
	}
	if clearDah {
		k.dahBuffer = false
	}
}

// readPaddles returns the dit and dah contact states after polarity
// mapping. A failed read counts as both open.
func (k *Keyer) readPaddles() (dit, dah bool) {
	if k.hw.Paddles == nil {
		return false, false
	}
	left, right, err := k.hw.Paddles.Read()
	if err != nil {
		k.faults.PaddleReads++
		return false, false
	}
	if k.settings.Polarity == PolarityReversed {
		return right, left
	}
	return left, right
}

func (k *Keyer) now() time.Duration {
	if k.hw.Clock == nil {
		return 0
	}
	return k.hw.Clock.Now()
}

func (k *Keyer) sleep(d time.Duration) {
	if d > 0 && k.hw.Clock != nil {
		k.hw.Clock.Sleep(d)
	}
}

func (k *Keyer) write(l Line, high bool) {
	if l == nil {
		return
	}
	if err := l.Set(high); err != nil {
		k.faults.LineWrites++
	}
}

func (k *Keyer) toneStart(hz int) {
	if k.hw.Sidetone == nil {
		return
	}
	if err := k.hw.Sidetone.Start(hz); err != nil {
		k.faults.Sidetone++
	}
}

func (k *Keyer) toneStop() {
	if k.hw.Sidetone == nil {
		return
	}
	if err := k.hw.Sidetone.Stop(); err != nil {
		k.faults.Sidetone++
	}
}

// transmitter returns the selected key/PTT pair, or the zero value when no
// transmitters are wired.
func (k *Keyer) transmitter() Transmitter {
	i := k.settings.TX - 1
	if i < 0 || i >= len(k.hw.Transmitters) {
		return Transmitter{}
	}
	return k.hw.Transmitters[i]
}

// unitDuration is one dit length at wpm (PARIS: 1200 ms / wpm).
func unitDuration(wpm int) time.Duration {
	if wpm <= 0 {
		return 0
	}
	return 1200 * time.Millisecond / time.Duration(wpm)
}

// Snapshot returns a read-only copy of the keyer state.
func (k *Keyer) Snapshot() Snapshot {
	return Snapshot{
		Settings:   k.settings,
		Dirty:      k.dirty,
		KeyDown:    k.keyDown,
		PTTActive:  k.pttActive,
		ManualPTT:  k.manualPTT,
		TXEnabled:  k.txEnabled,
		Sending:    k.sending,
		LastOrigin: k.lastOrigin,
		Closure:    k.closure,
		Faults:     k.faults,
	}
}

// Settings returns a copy of the current settings.
func (k *Keyer) Settings() Settings {
	return k.settings
}

// Timing returns the fixed board tuning.
func (k *Keyer) Timing() Timing {
	return k.timing
}

// ConfigDirty reports whether the settings changed since the last
// ClearDirty. The persistence collaborator polls it.
func (k *Keyer) ConfigDirty() bool {
	return k.dirty
}

// ClearDirty is called by the persistence collaborator after saving.
func (k *Keyer) ClearDirty() {
	k.dirty = false
}

// Faults returns the absorbed hardware error counts.
func (k *Keyer) Faults() Faults {
	return k.faults
}

func clamp(v, lo, hi int) int {
	if lo > hi {
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
