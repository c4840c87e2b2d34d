package device

import (
	"encoding/json"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/jypelle/longpress/internal/srv/config"
	"github.com/jypelle/longpress/internal/srv/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sync/atomic"
	"time"
)

const notifierQueueSize = 16

// Broker connection pacing. Variables so that tests can shorten them.
var (
	mqttConnectTimeout       = 10 * time.Second
	mqttConnectRetryInterval = 5 * time.Second
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Close() error
}

// MqttPublisher publishes to an MQTT broker.
type MqttPublisher struct {
	client paho.Client
}

// NewMqttPublisher connects to the broker. On failure the client is
// disconnected, which also ends its connect retry loop.
func NewMqttPublisher(param config.MqttParam) (*MqttPublisher, error) {
	clientId := param.ClientId
	if clientId == "" {
		clientId = "longpress"
	}
	opts := paho.NewClientOptions().
		AddBroker(param.Broker).
		SetClientID(clientId).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(mqttConnectRetryInterval)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		client.Disconnect(0)
		return nil, errors.Errorf("connection to %s timed out", param.Broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, errors.Wrapf(err, "connect to broker %s", param.Broker)
	}
	return &MqttPublisher{client: client}, nil
}

func (p *MqttPublisher) Publish(topic string, payload []byte) error {
	// QoS 0, not retained
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return errors.New("publish timeout")
	}
	return errors.Wrap(token.Error(), "publish")
}

func (p *MqttPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

type pressPayload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	HeldMs    int64  `json:"held_ms"`
	Segment   uint64 `json:"segment"`
}

func FormatPayload(ev event.PressEvent) ([]byte, error) {
	return json.Marshal(pressPayload{
		Event:     ev.PressEventType.String(),
		Timestamp: ev.Timestamp.UTC().Format(time.RFC3339Nano),
		HeldMs:    ev.Held.Milliseconds(),
		Segment:   ev.Segment,
	})
}

// Notifier publishes press events from its own goroutine so that callers,
// including the edge handler, never wait on the network.
type Notifier struct {
	publisher Publisher
	topic     string
	queue     chan event.PressEvent
	dropped   atomic.Int64

	askDone chan bool
	done    chan bool
}

func NewNotifier(publisher Publisher, topic string) *Notifier {
	return &Notifier{
		publisher: publisher,
		topic:     topic,
		queue:     make(chan event.PressEvent, notifierQueueSize),
		askDone:   make(chan bool),
		done:      make(chan bool),
	}
}

func (n *Notifier) Start() {
	logrus.Infof("Start notifier device (topic: %s)", n.topic)
	go func() {
		defer close(n.done)
		for {
			select {
			case ev := <-n.queue:
				n.publish(ev)
			case <-n.askDone:
				// Flush what is already queued
				for {
					select {
					case ev := <-n.queue:
						n.publish(ev)
					default:
						return
					}
				}
			}
		}
	}()
}

// Notify queues ev. It returns false, dropping the event, when the queue is
// full.
func (n *Notifier) Notify(ev event.PressEvent) bool {
	select {
	case n.queue <- ev:
		return true
	default:
		n.dropped.Add(1)
		return false
	}
}

func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

func (n *Notifier) Stop() {
	logrus.Infof("Stop notifier device")
	close(n.askDone)
	<-n.done
	if err := n.publisher.Close(); err != nil {
		logrus.Warnf("Unable to close publisher: %v", err)
	}
}

func (n *Notifier) publish(ev event.PressEvent) {
	payload, err := FormatPayload(ev)
	if err != nil {
		logrus.Warnf("Unable to format %s event: %v", ev.PressEventType, err)
		return
	}
	if err := n.publisher.Publish(n.topic, payload); err != nil {
		logrus.Warnf("Unable to publish %s event: %v", ev.PressEventType, err)
	}
}
