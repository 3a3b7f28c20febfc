package keyer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/paddle-keyer/internal/clock"
	"github.com/sweeney/paddle-keyer/internal/gpio"
)

const (
	step = 100 * time.Microsecond
	tol  = time.Millisecond
	ms   = time.Millisecond
)

// rig wires a keyer to fakes. The clock advances one step per read, so a
// 60 ms element costs about 600 loop iterations.
type rig struct {
	clk     *clock.Fake
	paddles *gpio.FakePaddles
	key     *gpio.FakeLine
	ptt     *gpio.FakeLine
	ditLine *gpio.FakeLine
	dahLine *gpio.FakeLine
	tone    *gpio.FakeTone
	k       *Keyer
}

func newRig(t *testing.T, timing Timing, mode Mode, script ...gpio.Segment) *rig {
	t.Helper()
	clk := clock.NewFake(0, step)
	r := &rig{
		clk:     clk,
		paddles: gpio.NewFakePaddles(clk.Peek, script...),
		key:     gpio.NewFakeLine(clk.Peek),
		ptt:     gpio.NewFakeLine(clk.Peek),
		ditLine: gpio.NewFakeLine(clk.Peek),
		dahLine: gpio.NewFakeLine(clk.Peek),
		tone:    gpio.NewFakeTone(),
	}
	r.k = New(Hardware{
		Paddles:      r.paddles,
		Transmitters: []Transmitter{{Key: r.key, PTT: r.ptt}},
		DitLine:      r.ditLine,
		DahLine:      r.dahLine,
		Sidetone:     r.tone,
		Clock:        clk,
	}, timing)
	r.k.Initialize()
	require.True(t, r.k.SetSpeed(20))
	require.True(t, r.k.SetMode(mode))
	r.k.ClearDirty()
	return r
}

// runUntil ticks the keyer until the clock reaches until. Idle ticks do
// not read the clock, so time is advanced one step per tick as well.
func (r *rig) runUntil(until time.Duration) {
	for r.clk.Peek() < until {
		r.k.Tick()
		r.clk.Advance(step)
	}
}

func assertNear(t *testing.T, want, got time.Duration, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, float64(want), float64(got), float64(tol), msgAndArgs...)
}

func pulseLengths(pulses []gpio.Pulse) []time.Duration {
	out := make([]time.Duration, len(pulses))
	for i, p := range pulses {
		out[i] = p.Length()
	}
	return out
}

// assertPTTCoversKey checks that PTT rose before every key-down and did not
// fall while the key was down.
func assertPTTCoversKey(t *testing.T, r *rig) {
	t.Helper()
	for _, p := range r.key.Pulses() {
		up := false
		for _, tr := range r.ptt.Transitions {
			if tr.At > p.Start {
				if tr.At <= p.End && !tr.High {
					t.Errorf("PTT fell at %v during key-down %v-%v", tr.At, p.Start, p.End)
				}
				continue
			}
			up = tr.High
		}
		if !up {
			t.Errorf("PTT not active at key-down %v", p.Start)
		}
	}
}
