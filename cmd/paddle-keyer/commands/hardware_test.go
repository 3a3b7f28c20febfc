package commands

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/paddle-keyer/internal/clock"
	"github.com/sweeney/paddle-keyer/internal/config"
	"github.com/sweeney/paddle-keyer/internal/gpio"
	"github.com/sweeney/paddle-keyer/internal/keyer"
)

// fakeHardware replaces the real openers for the duration of a test and
// records what was opened.
type fakeHardware struct {
	clk     *clock.Fake
	paddles *gpio.FakePaddles
	tone    *gpio.FakeTone
	lines   map[int]*gpio.FakeLine
	serials []string

	lineErr   map[int]error
	serialErr error
}

func withFakeHardware(t *testing.T) *fakeHardware {
	t.Helper()
	fh := &fakeHardware{
		clk:       clock.NewFake(0, time.Millisecond),
		lines:     make(map[int]*gpio.FakeLine),
		lineErr:   make(map[int]error),
		serialErr: errors.New("no such device"),
	}

	prevPaddles, prevLine, prevTone, prevSerial := openPaddles, openLine, openTone, openSerial
	t.Cleanup(func() {
		openPaddles, openLine, openTone, openSerial = prevPaddles, prevLine, prevTone, prevSerial
	})

	openPaddles = func(chip string, left, right int) (gpio.Reader, error) {
		fh.paddles = gpio.NewFakePaddles(fh.clk.Peek)
		return fh.paddles, nil
	}
	openLine = func(chip string, pin int) (gpio.Output, error) {
		if err := fh.lineErr[pin]; err != nil {
			return nil, err
		}
		l := gpio.NewFakeLine(fh.clk.Peek)
		fh.lines[pin] = l
		return l, nil
	}
	openTone = func(chip string, pin int) (gpio.Tone, error) {
		fh.tone = gpio.NewFakeTone()
		return fh.tone, nil
	}
	openSerial = func(name string) (serialPort, error) {
		fh.serials = append(fh.serials, name)
		return nil, fh.serialErr
	}
	return fh
}

func TestOpenStationDefaultBoard(t *testing.T) {
	fh := withFakeHardware(t)

	st, err := openStation(config.Default(), fh.clk)
	if err != nil {
		t.Fatalf("openStation: %v", err)
	}

	hw := st.hw
	if hw.Paddles != keyer.Paddles(fh.paddles) {
		t.Error("paddles not wired")
	}
	if hw.Sidetone != keyer.Sidetone(fh.tone) {
		t.Error("sidetone not wired")
	}
	if len(hw.Transmitters) != 1 {
		t.Fatalf("transmitters: got %d, want 1", len(hw.Transmitters))
	}
	if hw.Transmitters[0].Key != keyer.Line(fh.lines[gpio.DefaultPinKey]) {
		t.Error("key line not on the default key pin")
	}
	if hw.Transmitters[0].PTT != keyer.Line(fh.lines[gpio.DefaultPinPTT]) {
		t.Error("ptt line not on the default ptt pin")
	}
	if hw.DitLine != nil || hw.DahLine != nil {
		t.Error("expected no aux lines on the stock board")
	}
	if hw.Clock != keyer.Clock(fh.clk) {
		t.Error("clock not wired")
	}

	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fh.paddles.Closed || !fh.tone.Closed {
		t.Error("expected paddles and sidetone closed")
	}
	for pin, l := range fh.lines {
		if !l.Closed {
			t.Errorf("gpio %d not closed", pin)
		}
	}
}

func TestOpenStationWithoutSidetone(t *testing.T) {
	fh := withFakeHardware(t)
	b := config.Default()
	b.Sidetone = nil

	st, err := openStation(b, fh.clk)
	if err != nil {
		t.Fatalf("openStation: %v", err)
	}
	defer st.Close()

	if st.hw.Sidetone != nil {
		t.Errorf("expected nil sidetone, got %T", st.hw.Sidetone)
	}
	if fh.tone != nil {
		t.Error("sidetone opened without a sidetone pin")
	}
}

func TestOpenStationAuxLines(t *testing.T) {
	fh := withFakeHardware(t)
	b := config.Default()
	dit, dah := config.GPIOLine(22), config.GPIOLine(23)
	b.DitLine, b.DahLine = &dit, &dah

	st, err := openStation(b, fh.clk)
	if err != nil {
		t.Fatalf("openStation: %v", err)
	}
	defer st.Close()

	if st.hw.DitLine != keyer.Line(fh.lines[22]) {
		t.Error("dit line not wired")
	}
	if st.hw.DahLine != keyer.Line(fh.lines[23]) {
		t.Error("dah line not wired")
	}
}

func TestOpenStationLineErrorClosesOpened(t *testing.T) {
	fh := withFakeHardware(t)
	fh.lineErr[gpio.DefaultPinPTT] = errors.New("line busy")

	st, err := openStation(config.Default(), fh.clk)
	if err == nil {
		st.Close()
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "transmitter 1 ptt") || !strings.Contains(err.Error(), "line busy") {
		t.Errorf("unexpected error: %v", err)
	}
	if !fh.paddles.Closed {
		t.Error("paddles left open after failure")
	}
	if !fh.tone.Closed {
		t.Error("sidetone left open after failure")
	}
	if !fh.lines[gpio.DefaultPinKey].Closed {
		t.Error("key line left open after failure")
	}
}

func TestOpenStationSerialError(t *testing.T) {
	fh := withFakeHardware(t)
	b := config.Default()
	b.Transmitters[0].Key = config.LineConfig{Serial: "/dev/ttyUSB0", Signal: "rts"}

	_, err := openStation(b, fh.clk)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "transmitter 1 key") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(fh.serials) != 1 || fh.serials[0] != "/dev/ttyUSB0" {
		t.Errorf("serial opens: got %v", fh.serials)
	}
	if !fh.paddles.Closed {
		t.Error("paddles left open after failure")
	}
}

func TestDescribeTransmitters(t *testing.T) {
	b := config.Default()
	b.Transmitters = append(b.Transmitters, config.Transmitter{
		Key: config.LineConfig{Serial: "/dev/ttyUSB0", Signal: "dtr"},
		PTT: config.LineConfig{Serial: "/dev/ttyUSB0", Signal: "rts"},
	})

	got := describeTransmitters(b)
	want := []string{
		"key=gpio17 ptt=gpio27",
		"key=/dev/ttyUSB0:dtr ptt=/dev/ttyUSB0:rts",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transmitter %d: got %q, want %q", i+1, got[i], want[i])
		}
	}
}
