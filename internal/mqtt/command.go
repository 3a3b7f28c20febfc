package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sweeney/paddle-keyer/internal/keyer"
)

// Command operations.
const (
	OpSpeed = "speed" // relative WPM change
	OpWPM   = "wpm"   // absolute WPM
	OpPitch = "pitch" // relative sidetone change
	OpMode  = "mode"
	OpSend  = "send"
	OpPTT   = "ptt"
	OpTX    = "tx"
)

// Command is one inbound request, e.g. {"op":"speed","delta":2}.
type Command struct {
	Op    string `json:"op"`
	Delta int    `json:"delta,omitempty"`
	Value int    `json:"value,omitempty"`
	Mode  string `json:"mode,omitempty"`
	Text  string `json:"text,omitempty"`
	On    *bool  `json:"on,omitempty"`
}

// ParseCommand decodes and checks a command message.
func ParseCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	c.Op = strings.ToLower(strings.TrimSpace(c.Op))

	switch c.Op {
	case OpSpeed, OpPitch:
		if c.Delta == 0 {
			return Command{}, fmt.Errorf("command %s: delta is required", c.Op)
		}
	case OpWPM:
		if c.Value <= 0 {
			return Command{}, fmt.Errorf("command %s: value must be > 0", c.Op)
		}
	case OpMode:
		if _, ok := keyer.ParseMode(c.Mode); !ok {
			return Command{}, fmt.Errorf("command %s: unknown mode %q", c.Op, c.Mode)
		}
	case OpSend:
		if c.Text == "" {
			return Command{}, fmt.Errorf("command %s: text is required", c.Op)
		}
	case OpPTT, OpTX:
		if c.On == nil {
			return Command{}, fmt.Errorf("command %s: on is required", c.Op)
		}
	case "":
		return Command{}, fmt.Errorf("command: op is required")
	default:
		return Command{}, fmt.Errorf("command: unknown op %q", c.Op)
	}
	return c, nil
}

func (c Command) String() string {
	switch c.Op {
	case OpSpeed, OpPitch:
		return fmt.Sprintf("%s %+d", c.Op, c.Delta)
	case OpWPM:
		return fmt.Sprintf("%s %d", c.Op, c.Value)
	case OpMode:
		return c.Op + " " + c.Mode
	case OpSend:
		return fmt.Sprintf("%s %q", c.Op, c.Text)
	case OpPTT, OpTX:
		if c.On != nil && *c.On {
			return c.Op + " on"
		}
		return c.Op + " off"
	}
	return c.Op
}
