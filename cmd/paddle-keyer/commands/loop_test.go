package commands

import (
	"errors"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/paddle-keyer/internal/keyer"
	"github.com/sweeney/paddle-keyer/internal/mqtt"
	"github.com/sweeney/paddle-keyer/internal/status"
)

// flakyPublisher fails the first n settings publishes.
type flakyPublisher struct {
	*mqtt.FakePublisher
	failures int
	attempts int
}

func (f *flakyPublisher) PublishSettings(s keyer.Settings) error {
	f.attempts++
	if f.attempts <= f.failures {
		return errors.New("broker unavailable")
	}
	return f.FakePublisher.PublishSettings(s)
}

func TestLoopShutdownEvent(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	h := startLoop(t, newTestLoop(tk, pub, nil, 0, 100*time.Millisecond))

	h.ticks(3)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	ev := pub.SystemEvents[0]
	if ev.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", ev.Event)
	}
	if ev.Reason != "SIGTERM" {
		t.Errorf("expected reason SIGTERM, got %q", ev.Reason)
	}
	if !ev.Retained {
		t.Error("expected SHUTDOWN to be retained")
	}
	if len(pub.Settings) != 0 {
		t.Errorf("expected no settings publish for clean settings, got %d", len(pub.Settings))
	}

	// BoopBeep: low then high.
	want := []int{400, 1500}
	if len(tk.tone.Starts) != 2 || tk.tone.Starts[0] != want[0] || tk.tone.Starts[1] != want[1] {
		t.Errorf("shutdown tones: got %v, want %v", tk.tone.Starts, want)
	}
	if tk.tone.Playing {
		t.Error("sidetone still playing after shutdown")
	}
}

func TestLoopShutdownPayload(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(epoch, status.Config{})
	h := startLoop(t, newTestLoop(tk, pub, tracker, 0, 100*time.Millisecond))

	if err := h.stop(syscall.SIGINT); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if len(pub.SystemPayloads) != 1 {
		t.Fatalf("expected 1 system payload, got %d", len(pub.SystemPayloads))
	}
	payload := string(pub.SystemPayloads[0])
	for _, want := range []string{`"event":"SHUTDOWN"`, `"reason":"SIGINT"`, `"wpm":26`} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %s: %s", want, payload)
		}
	}
}

func TestLoopSavesDirtySettings(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	h := startLoop(t, newTestLoop(tk, pub, nil, 0, 100*time.Millisecond))

	h.command(mqtt.Command{Op: mqtt.OpSpeed, Delta: 2})
	h.ticks(3)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if len(pub.Settings) != 1 {
		t.Fatalf("expected 1 settings publish, got %d", len(pub.Settings))
	}
	if pub.Settings[0].WPM != 28 {
		t.Errorf("saved wpm: got %d, want 28", pub.Settings[0].WPM)
	}
	if tk.k.ConfigDirty() {
		t.Error("expected dirty flag cleared after save")
	}
	if h.l.counts.SettingsSaves != 1 {
		t.Errorf("SettingsSaves: got %d, want 1", h.l.counts.SettingsSaves)
	}
	if h.l.counts.Commands != 1 {
		t.Errorf("Commands: got %d, want 1", h.l.counts.Commands)
	}
}

func TestLoopShutdownSavesPendingSettings(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	h := startLoop(t, newTestLoop(tk, pub, nil, 0, 100*time.Millisecond))

	// No tick between the change and the signal.
	h.command(mqtt.Command{Op: mqtt.OpPitch, Delta: 100})
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if len(pub.Settings) != 1 {
		t.Fatalf("expected settings saved on shutdown, got %d publishes", len(pub.Settings))
	}
	if pub.Settings[0].SidetoneHz != 700 {
		t.Errorf("saved pitch: got %d, want 700", pub.Settings[0].SidetoneHz)
	}
}

func TestLoopSaveRetryBackoff(t *testing.T) {
	tk := newTestKeyer()
	pub := &flakyPublisher{FakePublisher: mqtt.NewFakePublisher(), failures: 1}
	h := startLoop(t, newTestLoop(tk, pub, nil, 0, 100*time.Millisecond))

	h.command(mqtt.Command{Op: mqtt.OpSpeed, Delta: 1})
	// Tick 1 (t=100ms) fails; ticks 2-10 are inside the retry window;
	// tick 11 (t=1.1s) retries.
	h.ticks(11)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if pub.attempts != 2 {
		t.Errorf("publish attempts: got %d, want 2", pub.attempts)
	}
	if len(pub.Settings) != 1 {
		t.Errorf("expected 1 successful save, got %d", len(pub.Settings))
	}
}

func TestLoopPublishErrorsDoNotStop(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	pub.PublishSettingsError = errors.New("broker unavailable")
	pub.PublishSystemError = errors.New("broker unavailable")
	h := startLoop(t, newTestLoop(tk, pub, nil, 15*time.Minute, 5*time.Minute))

	h.command(mqtt.Command{Op: mqtt.OpSpeed, Delta: 2})
	h.ticks(5)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if !tk.k.ConfigDirty() {
		t.Error("expected settings to stay dirty after failed saves")
	}
	if tk.k.Settings().WPM != 28 {
		t.Errorf("wpm: got %d, want 28", tk.k.Settings().WPM)
	}
}

func TestLoopRejectedCommand(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	h := startLoop(t, newTestLoop(tk, pub, nil, 0, 100*time.Millisecond))

	h.command(mqtt.Command{Op: mqtt.OpWPM, Value: 99})
	h.ticks(2)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if h.l.counts.Rejected != 1 || h.l.counts.Commands != 0 {
		t.Errorf("counts: got %+v, want 1 rejected and 0 applied", h.l.counts)
	}
	if len(pub.Settings) != 0 {
		t.Errorf("expected no save for a rejected command, got %d", len(pub.Settings))
	}
}

func TestLoopHeartbeat(t *testing.T) {
	// Clock calls: start=t0, ticks at +5m, +10m, +15m, +20m. The 15m heartbeat
	// fires on the third tick and is not due again by the fourth.
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(epoch, status.Config{})
	h := startLoop(t, newTestLoop(tk, pub, tracker, 15*time.Minute, 5*time.Minute))

	h.ticks(4)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	names := pub.SystemEventNames()
	if len(names) != 2 || names[0] != "HEARTBEAT" || names[1] != "SHUTDOWN" {
		t.Fatalf("system events: got %v, want [HEARTBEAT SHUTDOWN]", names)
	}
	hb := pub.SystemEvents[0]
	if hb.Retained {
		t.Error("expected heartbeat not retained")
	}
	if !hb.Timestamp.Equal(epoch.Add(15 * time.Minute)) {
		t.Errorf("heartbeat timestamp: got %v", hb.Timestamp)
	}
	if !strings.Contains(string(pub.SystemPayloads[0]), `"event":"HEARTBEAT"`) {
		t.Errorf("heartbeat payload missing event: %s", pub.SystemPayloads[0])
	}
}

func TestLoopHeartbeatDisabled(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	h := startLoop(t, newTestLoop(tk, pub, nil, 0, 5*time.Minute))

	h.ticks(10)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	names := pub.SystemEventNames()
	if len(names) != 1 || names[0] != "SHUTDOWN" {
		t.Errorf("system events: got %v, want [SHUTDOWN]", names)
	}
}

func TestLoopUpdatesTracker(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	pub.Connected = true
	tracker := status.NewTracker(epoch, status.Config{})
	h := startLoop(t, newTestLoop(tk, pub, tracker, 0, 100*time.Millisecond))

	h.command(mqtt.Command{Op: mqtt.OpMode, Mode: "ultimatic"})
	h.ticks(1)
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	snap := tracker.Snapshot()
	if snap.Keyer.Settings.Mode != keyer.ModeUltimatic {
		t.Errorf("tracker mode: got %v, want ULTIMATIC", snap.Keyer.Settings.Mode)
	}
	if snap.Counts.Commands != 1 {
		t.Errorf("tracker commands: got %d, want 1", snap.Counts.Commands)
	}
	if snap.Counts.SettingsSaves != 1 {
		t.Errorf("tracker saves: got %d, want 1", snap.Counts.SettingsSaves)
	}
	if !snap.MQTTConnected {
		t.Error("expected tracker to report MQTT connected")
	}
}

func TestLoopRefreshInterval(t *testing.T) {
	tk := newTestKeyer()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(epoch, status.Config{})
	l := newTestLoop(tk, pub, tracker, 0, 100*time.Millisecond)
	l.statusInterval = time.Hour
	h := startLoop(t, l)

	// A paddle fault between refreshes is not visible until shutdown.
	tk.paddles.ReadError = errors.New("gpio fault")
	h.ticks(3)
	mid := tracker.Snapshot().Keyer.Faults.PaddleReads
	if err := h.stop(syscall.SIGTERM); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if mid != 0 {
		t.Errorf("tracker refreshed inside the interval: paddle faults %d", mid)
	}
	if got := tracker.Snapshot().Keyer.Faults.PaddleReads; got == 0 {
		t.Error("expected shutdown refresh to report paddle faults")
	}
}

func TestStatusEvent(t *testing.T) {
	tests := []struct {
		event    string
		retained bool
	}{
		{"STARTUP", true},
		{"SHUTDOWN", true},
		{"HEARTBEAT", false},
	}
	for _, tt := range tests {
		ev := statusEvent(nil, epoch, tt.event, "")
		if ev.Retained != tt.retained {
			t.Errorf("%s retained: got %v, want %v", tt.event, ev.Retained, tt.retained)
		}
		if ev.RawPayload != nil {
			t.Errorf("%s: expected no raw payload without a tracker", tt.event)
		}
	}

	tracker := status.NewTracker(epoch, status.Config{Broker: "tcp://broker:1883"})
	ev := statusEvent(tracker, epoch, "STARTUP", "")
	if !strings.Contains(string(ev.RawPayload), `"event":"STARTUP"`) {
		t.Errorf("startup payload missing event: %s", ev.RawPayload)
	}
}
