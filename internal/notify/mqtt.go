// Package notify fans anomaly alerts out to external subscribers.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"failureguard/internal/logger"
	"failureguard/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	DefaultTopic     = "failureguard/alerts"
	DefaultClientID  = "failureguard-pipeline"
	DefaultQueueSize = 256

	publishTimeout = 5 * time.Second
	drainTimeout   = 3 * time.Second
	disconnectWait = 250 // ms
)

var (
	ErrQueueFull = errors.New("alert queue full")
	ErrClosed    = errors.New("notifier closed")
)

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	Broker    string // e.g. tcp://localhost:1883
	ClientID  string
	Username  string
	Password  string
	Topic     string
	QueueSize int // pending alerts kept while the broker is slow or away
}

// Publisher is the subset of the paho client the notifier needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTNotifier publishes each alert as JSON to <topic>/<machine_id>.
// Notify only enqueues; a single goroutine owns the broker round trips.
type MQTTNotifier struct {
	client Publisher
	topic  string
	ack    time.Duration // per-publish wait for the broker
	log    *logger.Logger

	mu     sync.RWMutex // guards closed against concurrent Notify/Close
	closed bool
	queue  chan models.AlertEvent
	done   chan struct{}
}

// NewMQTTNotifier connects to the broker and starts the publish loop.
func NewMQTTNotifier(cfg MQTTConfig, log *logger.Logger) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(publishTimeout)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, token.Error())
	}
	return newMQTTNotifier(client, cfg.Topic, cfg.QueueSize, log), nil
}

func newMQTTNotifier(client Publisher, topic string, queueSize int, log *logger.Logger) *MQTTNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = logger.Nop()
	}
	n := &MQTTNotifier{
		client: client,
		topic:  strings.TrimRight(topic, "/"),
		ack:    publishTimeout,
		log:    log,
		queue:  make(chan models.AlertEvent, queueSize),
		done:   make(chan struct{}),
	}
	go n.loop()
	return n
}

// Notify queues the alert for publishing. It never waits on the broker:
// when the queue is full the alert is dropped with ErrQueueFull.
func (n *MQTTNotifier) Notify(e models.AlertEvent) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrClosed
	}
	select {
	case n.queue <- e:
		return nil
	default:
		return fmt.Errorf("%w: dropping alert %s for %s", ErrQueueFull, e.EventID, e.MachineID)
	}
}

func (n *MQTTNotifier) loop() {
	defer close(n.done)
	for e := range n.queue {
		if err := n.publish(e); err != nil {
			n.log.Warnw("mqtt_publish_failed", "err", err, "machine_id", e.MachineID, "event_id", e.EventID)
		}
	}
}

// publish sends one alert with QoS 1 and waits for the broker ack.
func (n *MQTTNotifier) publish(e models.AlertEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	topic := n.topic + "/" + e.MachineID
	token := n.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(n.ack) {
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close stops accepting alerts, gives the queue a short time to drain and
// disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	select {
	case <-n.done:
	case <-time.After(drainTimeout):
		n.log.Warnw("mqtt_drain_timeout", "pending", len(n.queue))
	}
	n.client.Disconnect(disconnectWait)
}
