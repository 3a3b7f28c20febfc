package commands

import (
	"log"
	"os"
	"time"

	"github.com/sweeney/paddle-keyer/internal/keyer"
	"github.com/sweeney/paddle-keyer/internal/mqtt"
	"github.com/sweeney/paddle-keyer/internal/status"
)

const (
	// saveRetry is how long a failed settings publish waits before the
	// next attempt.
	saveRetry = time.Second

	faultLogInterval = time.Second
)

// loop is the daemon's single owner of the keyer. Everything that touches
// the keyer runs on the goroutine that calls run.
type loop struct {
	k          *keyer.Keyer
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // may be nil
	tracker    *status.Tracker       // may be nil

	heartbeat      time.Duration // 0 disables
	statusInterval time.Duration // 0 refreshes every tick
	now            func() time.Time

	tick     <-chan time.Time
	commands <-chan mqtt.Command
	sig      <-chan os.Signal

	start         time.Time
	counts        status.Counts
	lastHeartbeat time.Time
	lastStatus    time.Time
	saveAfter     time.Time
	faults        keyer.Faults
	lastFaultLog  time.Time
}

func (l *loop) run() error {
	l.start = l.now()
	l.lastHeartbeat = l.start
	l.lastStatus = l.start

	for {
		select {
		case s := <-l.sig:
			l.shutdown(s)
			return nil

		case c := <-l.commands:
			l.apply(c)

		case <-l.tick:
			l.step(l.now())
		}
	}
}

func (l *loop) step(t time.Time) {
	l.k.Tick()
	l.saveSettings(t)
	l.checkFaults(t)

	if l.statusInterval <= 0 || t.Sub(l.lastStatus) >= l.statusInterval {
		l.lastStatus = t
		l.refresh()
	}

	if l.heartbeat > 0 && t.Sub(l.lastHeartbeat) >= l.heartbeat {
		l.lastHeartbeat = t
		l.sendHeartbeat(t)
	}
}

func (l *loop) apply(c mqtt.Command) {
	sent, ok := applyCommand(l.k, c)
	l.counts.CharsSent += sent
	if !ok {
		l.counts.Rejected++
		log.Printf("command rejected: %s", c)
	} else {
		l.counts.Commands++
		log.Printf("command: %s", c)
	}
	l.refresh()
}

// saveSettings publishes the settings when the keyer marked them dirty.
func (l *loop) saveSettings(t time.Time) {
	if !l.k.ConfigDirty() || t.Before(l.saveAfter) {
		return
	}
	s := l.k.Settings()
	if err := l.publisher.PublishSettings(s); err != nil {
		log.Printf("settings publish error: %v", err)
		l.saveAfter = t.Add(saveRetry)
		return
	}
	l.k.ClearDirty()
	l.counts.SettingsSaves++
	log.Printf("saved settings: wpm=%d mode=%s sidetone=%dHz", s.WPM, s.Mode, s.SidetoneHz)
}

func (l *loop) checkFaults(t time.Time) {
	f := l.k.Faults()
	if f == l.faults || t.Sub(l.lastFaultLog) < faultLogInterval {
		return
	}
	l.faults = f
	l.lastFaultLog = t
	log.Printf("hardware faults: paddle_reads=%d line_writes=%d sidetone=%d",
		f.PaddleReads, f.LineWrites, f.Sidetone)
}

// refresh copies the keyer state into the tracker for HTTP readers.
func (l *loop) refresh() {
	if l.tracker == nil {
		return
	}
	l.tracker.Update(l.k.Snapshot(), l.counts)
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *loop) sendHeartbeat(t time.Time) {
	s := l.k.Settings()
	log.Printf("heartbeat: uptime=%v wpm=%d mode=%s commands=%d chars=%d",
		t.Sub(l.start).Round(time.Second), s.WPM, s.Mode, l.counts.Commands, l.counts.CharsSent)

	if l.tracker != nil {
		l.refresh()
		// Refresh network info for heartbeat
		if net := readNetworkInfo(); net != nil {
			l.tracker.SetNetwork(net)
		}
	}
	if err := l.publisher.PublishSystem(statusEvent(l.tracker, t, "HEARTBEAT", "")); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

// shutdown lifts the key, saves pending settings and announces the exit.
func (l *loop) shutdown(s os.Signal) {
	log.Printf("received %v, shutting down", s)
	t := l.now()

	l.k.Release()
	l.saveAfter = time.Time{}
	l.saveSettings(t)
	l.refresh()

	name := signalName(s)
	if err := l.publisher.PublishSystem(statusEvent(l.tracker, t, "SHUTDOWN", name)); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
	l.k.BoopBeep()
}

// statusEvent builds a lifecycle event carrying the tracker snapshot.
// Heartbeats are not retained; STARTUP and SHUTDOWN are.
func statusEvent(tracker *status.Tracker, t time.Time, event, reason string) mqtt.SystemEvent {
	ev := mqtt.SystemEvent{
		Timestamp: t,
		Event:     event,
		Reason:    reason,
		Retained:  event != "HEARTBEAT",
	}
	if tracker != nil {
		ev.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}
	return ev
}
