package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sweeney/paddle-keyer/internal/keyer"
)

const (
	outboxCapacity  = 64
	commandCapacity = 16
	publishTimeout  = 5 * time.Second
)

// RealPublisher talks to an actual MQTT broker. It connects in the
// background and queues messages until the broker is reachable.
type RealPublisher struct {
	client paho.Client

	mu        sync.Mutex
	outbox    *outbox
	connected chan struct{} // closed on first connect
	everUp    bool

	commands chan Command
	now      func() time.Time
}

// NewRealPublisher starts connecting to broker and returns immediately.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{
		outbox:    newOutbox(outboxCapacity),
		connected: make(chan struct{}),
		commands:  make(chan Command, commandCapacity),
		now:       time.Now,
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: p.now(),
		Event:     "OFFLINE",
		Reason:    "LWT",
	})
	if err != nil {
		log.Printf("mqtt: format will: %v", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("paddle-keyer-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	reconnect := p.everUp
	if !p.everUp {
		p.everUp = true
		close(p.connected)
	}
	queued := p.outbox.drain()
	p.mu.Unlock()

	log.Printf("mqtt: connected (queued=%d)", len(queued))

	token := c.Subscribe(TopicCommand, 1, p.handleCommand)
	if !token.WaitTimeout(publishTimeout) {
		log.Printf("mqtt: subscribe %s: timeout", TopicCommand)
	} else if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe %s: %v", TopicCommand, err)
	}

	for _, msg := range queued {
		if err := p.send(msg); err != nil {
			log.Printf("mqtt: replay to %s: %v", msg.topic, err)
		}
	}

	if reconnect {
		err := p.PublishSystem(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		if err != nil {
			log.Printf("mqtt: publish reconnected: %v", err)
		}
	}
}

func (p *RealPublisher) handleCommand(_ paho.Client, m paho.Message) {
	cmd, err := ParseCommand(m.Payload())
	if err != nil {
		log.Printf("mqtt: ignoring command: %v", err)
		return
	}
	select {
	case p.commands <- cmd:
	default:
		log.Printf("mqtt: command queue full, dropping %s", cmd)
	}
}

// Commands delivers parsed commands from the command topic.
func (p *RealPublisher) Commands() <-chan Command {
	return p.commands
}

// PublishSettings stores s as the retained settings message.
func (p *RealPublisher) PublishSettings(s keyer.Settings) error {
	payload, err := FormatSettingsPayload(s, p.now())
	if err != nil {
		return fmt.Errorf("format settings payload: %w", err)
	}
	return p.publish(queuedMsg{topic: TopicSettings, payload: payload, qos: 1, retained: true})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once): lifecycle events should arrive
	return p.publish(queuedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// publish sends msg now or queues it. The connection check and the push
// happen under mu so onConnect cannot drain in between.
func (p *RealPublisher) publish(msg queuedMsg) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.outbox.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.send(msg)
}

func (p *RealPublisher) send(msg queuedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// LoadSettings waits for the broker, then reads the retained settings.
func (p *RealPublisher) LoadSettings(timeout time.Duration) (keyer.Settings, bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case <-p.connected:
	case <-deadline.C:
		return keyer.Settings{}, false, fmt.Errorf("load settings: broker not connected after %v", timeout)
	}

	got := make(chan []byte, 1)
	token := p.client.Subscribe(TopicSettings, 1, func(_ paho.Client, m paho.Message) {
		select {
		case got <- m.Payload():
		default:
		}
	})
	if !token.WaitTimeout(timeout) {
		return keyer.Settings{}, false, fmt.Errorf("load settings: subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return keyer.Settings{}, false, fmt.Errorf("load settings: subscribe: %w", err)
	}
	defer p.client.Unsubscribe(TopicSettings)

	select {
	case data := <-got:
		s, err := ParseSettingsPayload(data)
		if err != nil {
			return keyer.Settings{}, false, fmt.Errorf("load settings: %w", err)
		}
		return s, true, nil
	case <-deadline.C:
		// Nothing retained yet.
		return keyer.Settings{}, false, nil
	}
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Queued returns how many messages are waiting for the broker.
func (p *RealPublisher) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
