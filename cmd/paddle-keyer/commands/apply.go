package commands

import (
	"github.com/sweeney/paddle-keyer/internal/keyer"
	"github.com/sweeney/paddle-keyer/internal/mqtt"
)

// applyCommand runs one inbound command against the keyer. sent is the
// number of characters consumed by a send command; ok is false when the
// keyer refused the command.
func applyCommand(k *keyer.Keyer, c mqtt.Command) (sent int, ok bool) {
	switch c.Op {
	case mqtt.OpSpeed:
		return 0, k.AdjustSpeed(c.Delta)
	case mqtt.OpWPM:
		return 0, k.SetSpeed(c.Value)
	case mqtt.OpPitch:
		return 0, k.AdjustSidetonePitch(c.Delta)
	case mqtt.OpMode:
		m, found := keyer.ParseMode(c.Mode)
		if !found {
			return 0, false
		}
		before := k.Settings().Mode
		if !k.SetMode(m) {
			return 0, false
		}
		if m != before {
			k.Beep()
		}
		return 0, true
	case mqtt.OpSend:
		sent = k.Send(c.Text)
		return sent, sent > 0
	case mqtt.OpPTT:
		if c.On == nil {
			return 0, false
		}
		k.ManualPTT(*c.On)
		return 0, true
	case mqtt.OpTX:
		if c.On == nil {
			return 0, false
		}
		k.SetTXEnabled(*c.On)
		return 0, true
	}
	return 0, false
}
