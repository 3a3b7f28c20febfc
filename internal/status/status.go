// Package status provides a thread-safe status tracker for the paddle-keyer
// daemon. The run loop writes to it; HTTP handlers and MQTT heartbeats read
// from it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/paddle-keyer/internal/keyer"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickUs       int64
	HeartbeatMs  int64
	StatusMs     int64
	Broker       string
	HTTPAddr     string
	Board        string   // board file path, empty for defaults
	Transmitters []string // one description per key/PTT pair
}

// Counts are daemon-level activity counters.
type Counts struct {
	Commands      int // commands applied
	Rejected      int // commands the keyer refused
	SettingsSaves int // settings published
	CharsSent     int // characters sent by send commands
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Keyer         keyer.Snapshot
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Keyer:     keyer.Snapshot{Settings: keyer.DefaultSettings(), TXEnabled: true},
			Config:    cfg,
		},
	}
}

// Update stores the keyer state and counters. Called from the run loop.
func (t *Tracker) Update(ks keyer.Snapshot, counts Counts) {
	t.mu.Lock()
	t.snap.Keyer = ks
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
