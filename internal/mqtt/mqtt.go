// Package mqtt connects the keyer to a broker. The retained settings topic
// is the keyer's persistent store, the system topic carries lifecycle
// events, and the command topic lets a panel or script adjust the keyer.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/paddle-keyer/internal/keyer"
)

// Topics.
const (
	TopicSettings = "paddle-keyer/settings"
	TopicSystem   = "paddle-keyer/system"
	TopicCommand  = "paddle-keyer/command"
)

// Publisher publishes keyer state to MQTT.
type Publisher interface {
	// PublishSettings stores the operator settings as the retained
	// settings message. Returns error if publishing fails (should not
	// crash the process).
	PublishSettings(s keyer.Settings) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers inbound commands.
type CommandSource interface {
	Commands() <-chan Command
}

// SettingsStore loads the persisted settings.
type SettingsStore interface {
	// LoadSettings waits up to timeout for the retained settings. ok is
	// false when nothing was stored.
	LoadSettings(timeout time.Duration) (s keyer.Settings, ok bool, err error)
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SettingsPayload is the retained settings message.
type SettingsPayload struct {
	Settings SettingsInner `json:"settings"`
}

// SettingsInner holds keyer.Settings with enums spelled out.
type SettingsInner struct {
	Timestamp         string `json:"timestamp,omitempty"`
	WPM               int    `json:"wpm"`
	Mode              string `json:"mode"`
	UltimaticPriority string `json:"ultimatic_priority"`
	Polarity          string `json:"polarity"`
	Sidetone          string `json:"sidetone"`
	SidetoneHz        int    `json:"sidetone_hz"`
	DahRatio          int    `json:"dah_ratio"`
	Weighting         int    `json:"weighting"`
	WordSpace         int    `json:"word_space"`
	Autospace         bool   `json:"autospace"`
	TX                int    `json:"tx"`
}

// FormatSettingsPayload creates the JSON payload for the settings topic.
func FormatSettingsPayload(s keyer.Settings, ts time.Time) ([]byte, error) {
	inner := SettingsInner{
		WPM:               s.WPM,
		Mode:              s.Mode.String(),
		UltimaticPriority: s.UltimaticPriority.String(),
		Polarity:          s.Polarity.String(),
		Sidetone:          s.SidetoneMode.String(),
		SidetoneHz:        s.SidetoneHz,
		DahRatio:          s.DahRatio,
		Weighting:         s.Weighting,
		WordSpace:         s.WordSpace,
		Autospace:         s.Autospace,
		TX:                s.TX,
	}
	if !ts.IsZero() {
		inner.Timestamp = ts.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SettingsPayload{Settings: inner})
}

// ParseSettingsPayload decodes a settings message. Missing fields take
// their power-on defaults; the keyer validates the numbers on Restore.
func ParseSettingsPayload(data []byte) (keyer.Settings, error) {
	def := keyer.DefaultSettings()
	p := SettingsPayload{Settings: SettingsInner{
		WPM:               def.WPM,
		Mode:              def.Mode.String(),
		UltimaticPriority: def.UltimaticPriority.String(),
		Polarity:          def.Polarity.String(),
		Sidetone:          def.SidetoneMode.String(),
		SidetoneHz:        def.SidetoneHz,
		DahRatio:          def.DahRatio,
		Weighting:         def.Weighting,
		WordSpace:         def.WordSpace,
		Autospace:         def.Autospace,
		TX:                def.TX,
	}}
	if err := json.Unmarshal(data, &p); err != nil {
		return keyer.Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	in := p.Settings
	mode, ok := keyer.ParseMode(in.Mode)
	if !ok {
		return keyer.Settings{}, fmt.Errorf("decode settings: unknown mode %q", in.Mode)
	}
	prio, ok := keyer.ParseUltimaticPriority(in.UltimaticPriority)
	if !ok {
		return keyer.Settings{}, fmt.Errorf("decode settings: unknown ultimatic_priority %q", in.UltimaticPriority)
	}
	pol, ok := keyer.ParsePolarity(in.Polarity)
	if !ok {
		return keyer.Settings{}, fmt.Errorf("decode settings: unknown polarity %q", in.Polarity)
	}
	tone, ok := keyer.ParseSidetoneMode(in.Sidetone)
	if !ok {
		return keyer.Settings{}, fmt.Errorf("decode settings: unknown sidetone %q", in.Sidetone)
	}

	return keyer.Settings{
		WPM:               in.WPM,
		Mode:              mode,
		UltimaticPriority: prio,
		Polarity:          pol,
		SidetoneMode:      tone,
		SidetoneHz:        in.SidetoneHz,
		DahRatio:          in.DahRatio,
		Weighting:         in.Weighting,
		WordSpace:         in.WordSpace,
		Autospace:         in.Autospace,
		TX:                in.TX,
	}, nil
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
