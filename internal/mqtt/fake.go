package mqtt

import (
	"time"

	"github.com/sweeney/paddle-keyer/internal/keyer"
)

// FakePublisher records published messages for test assertions. It also
// serves as the settings store and command source.
type FakePublisher struct {
	// Settings contains every settings snapshot that was published.
	Settings []keyer.Settings

	// SettingsPayloads contains the JSON payloads for the settings topic.
	SettingsPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishSettingsError, if set, will be returned by PublishSettings.
	PublishSettingsError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Stored is what LoadSettings returns; nil means nothing retained.
	Stored *keyer.Settings

	// LoadError, if set, will be returned by LoadSettings.
	LoadError error

	// CommandCh feeds Commands.
	CommandCh chan Command

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{CommandCh: make(chan Command, commandCapacity)}
}

// PublishSettings records the settings and stores them like a retained
// message would be.
func (f *FakePublisher) PublishSettings(s keyer.Settings) error {
	if f.PublishSettingsError != nil {
		return f.PublishSettingsError
	}

	f.Settings = append(f.Settings, s)
	stored := s
	f.Stored = &stored

	payload, err := FormatSettingsPayload(s, time.Time{})
	if err != nil {
		return err
	}
	f.SettingsPayloads = append(f.SettingsPayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// LoadSettings returns Stored.
func (f *FakePublisher) LoadSettings(time.Duration) (keyer.Settings, bool, error) {
	if f.LoadError != nil {
		return keyer.Settings{}, false, f.LoadError
	}
	if f.Stored == nil {
		return keyer.Settings{}, false, nil
	}
	return *f.Stored, true, nil
}

// Commands returns CommandCh.
func (f *FakePublisher) Commands() <-chan Command {
	return f.CommandCh
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// SystemEventNames returns the Event field of every system event, in order.
func (f *FakePublisher) SystemEventNames() []string {
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// Reset clears recorded messages and injected errors.
func (f *FakePublisher) Reset() {
	f.Settings = nil
	f.SettingsPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishSettingsError = nil
	f.PublishSystemError = nil
	f.LoadError = nil
	f.Connected = false
}
