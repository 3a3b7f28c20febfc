package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Keyer         KeyerJSON    `json:"keyer"`
	Faults        FaultsJSON   `json:"faults"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// KeyerJSON is the keyer settings and live state.
type KeyerJSON struct {
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
	TXEnabled         bool   `json:"tx_enabled"`
	KeyDown           bool   `json:"key_down"`
	PTT               bool   `json:"ptt"`
	ManualPTT         bool   `json:"manual_ptt"`
	LastOrigin        string `json:"last_origin"`
	Unsaved           bool   `json:"unsaved"`
}

// FaultsJSON reports absorbed hardware errors.
type FaultsJSON struct {
	PaddleReads int `json:"paddle_reads"`
	LineWrites  int `json:"line_writes"`
	Sidetone    int `json:"sidetone"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of daemon counters.
type CountsJSON struct {
	Commands      int `json:"commands"`
	Rejected      int `json:"rejected"`
	SettingsSaves int `json:"settings_saves"`
	CharsSent     int `json:"chars_sent"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickUs       int64    `json:"tick_us"`
	HeartbeatMs  int64    `json:"heartbeat_ms"`
	StatusMs     int64    `json:"status_ms"`
	Broker       string   `json:"broker"`
	HTTPAddr     string   `json:"http_addr"`
	Board        string   `json:"board,omitempty"`
	Transmitters []string `json:"transmitters"`
}

func buildInner(snap Snapshot) StatusInner {
	k := snap.Keyer
	s := k.Settings

	txs := snap.Config.Transmitters
	if txs == nil {
		txs = []string{}
	}

	return StatusInner{
		Keyer: KeyerJSON{
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
			TXEnabled:         k.TXEnabled,
			KeyDown:           k.KeyDown,
			PTT:               k.PTTActive,
			ManualPTT:         k.ManualPTT,
			LastOrigin:        k.LastOrigin.String(),
			Unsaved:           k.Dirty,
		},
		Faults: FaultsJSON{
			PaddleReads: k.Faults.PaddleReads,
			LineWrites:  k.Faults.LineWrites,
			Sidetone:    k.Faults.Sidetone,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Commands:      snap.Counts.Commands,
			Rejected:      snap.Counts.Rejected,
			SettingsSaves: snap.Counts.SettingsSaves,
			CharsSent:     snap.Counts.CharsSent,
		},
		Config: ConfigJSON{
			TickUs:       snap.Config.TickUs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			StatusMs:     snap.Config.StatusMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			Board:        snap.Config.Board,
			Transmitters: txs,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
