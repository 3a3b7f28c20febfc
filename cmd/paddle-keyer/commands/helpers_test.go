package commands

import (
	"os"
	"testing"
	"time"

	"github.com/sweeney/paddle-keyer/internal/clock"
	"github.com/sweeney/paddle-keyer/internal/gpio"
	"github.com/sweeney/paddle-keyer/internal/keyer"
	"github.com/sweeney/paddle-keyer/internal/mqtt"
	"github.com/sweeney/paddle-keyer/internal/status"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from the loop goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// testKeyer is a keyer on fake hardware at the default settings.
type testKeyer struct {
	clk     *clock.Fake
	paddles *gpio.FakePaddles
	key     *gpio.FakeLine
	ptt     *gpio.FakeLine
	tone    *gpio.FakeTone
	k       *keyer.Keyer
}

func newTestKeyer(script ...gpio.Segment) *testKeyer {
	clk := clock.NewFake(0, 100*time.Microsecond)
	tk := &testKeyer{
		clk:     clk,
		paddles: gpio.NewFakePaddles(clk.Peek, script...),
		key:     gpio.NewFakeLine(clk.Peek),
		ptt:     gpio.NewFakeLine(clk.Peek),
		tone:    gpio.NewFakeTone(),
	}
	tk.k = keyer.New(keyer.Hardware{
		Paddles:      tk.paddles,
		Transmitters: []keyer.Transmitter{{Key: tk.key, PTT: tk.ptt}},
		Sidetone:     tk.tone,
		Clock:        clk,
	}, keyer.DefaultTiming())
	tk.k.Initialize()
	return tk
}

// loopHarness runs a loop on its own goroutine and feeds it over
// unbuffered channels, so every tick or command is fully handled before
// the next one is accepted.
type loopHarness struct {
	l        *loop
	tick     chan time.Time
	commands chan mqtt.Command
	sig      chan os.Signal
	errCh    chan error
}

// newTestLoop builds a loop over tk whose wall clock advances step per read.
func newTestLoop(tk *testKeyer, pub mqtt.Publisher, tracker *status.Tracker, heartbeat, step time.Duration) *loop {
	l := &loop{
		k:         tk.k,
		publisher: pub,
		tracker:   tracker,
		heartbeat: heartbeat,
		now:       fakeClock(epoch, step),
	}
	if cs, ok := pub.(mqtt.ConnectionStatus); ok {
		l.mqttStatus = cs
	}
	return l
}

func startLoop(t *testing.T, l *loop) *loopHarness {
	t.Helper()
	h := &loopHarness{
		l:        l,
		tick:     make(chan time.Time),
		commands: make(chan mqtt.Command),
		sig:      make(chan os.Signal, 1),
		errCh:    make(chan error, 1),
	}
	l.tick = h.tick
	l.commands = h.commands
	l.sig = h.sig
	go func() {
		h.errCh <- l.run()
	}()
	return h
}

func (h *loopHarness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.tick <- time.Time{}
	}
}

func (h *loopHarness) command(c mqtt.Command) {
	h.commands <- c
}

func (h *loopHarness) stop(s os.Signal) error {
	h.sig <- s
	return <-h.errCh
}

func boolPtr(b bool) *bool { return &b }
