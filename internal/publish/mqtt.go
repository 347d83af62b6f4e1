package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"picam-cli/pkg/models"
)

const (
	DefaultTopic   = "picam/status"
	publishTimeout = 5 * time.Second
)

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// StatusMessage is the retained payload published on every status change.
type StatusMessage struct {
	Status   models.CameraStatus `json:"status"`
	Previous models.CameraStatus `json:"previous,omitempty"`
	Time     time.Time           `json:"time"`
}

// publisher is the part of mqtt.Client the status publisher needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// StatusPublisher mirrors camera status transitions to an MQTT topic.
type StatusPublisher struct {
	client publisher
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

// Connect dials the broker and returns a publisher for cfg.Topic.
func Connect(cfg MQTTConfig, logger *zap.Logger) (*StatusPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "mqtt"))

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if cfg.ClientID != "" {
		opts.SetClientID(cfg.ClientID)
	}
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(c mqtt.Client) {
		logger.Info("MQTT connected", zap.String("broker", cfg.Broker))
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	return newStatusPublisher(client, cfg.Topic, logger), nil
}

func newStatusPublisher(client publisher, topic string, logger *zap.Logger) *StatusPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &StatusPublisher{client: client, topic: topic, logger: logger, now: time.Now}
}

// PublishStatus has the signature of camera.PollerConfig.OnStatusChange.
// Publish errors are logged; they never reach the poll loop.
func (p *StatusPublisher) PublishStatus(prev, next models.CameraStatus) {
	payload, err := json.Marshal(StatusMessage{Status: next, Previous: prev, Time: p.now().UTC()})
	if err != nil {
		p.logger.Error("status not encoded", zap.Error(err))
		return
	}

	token := p.client.Publish(p.topic, 1, true, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.logger.Warn("status publish timed out", zap.String("topic", p.topic))
			return
		}
		if err := token.Error(); err != nil {
			p.logger.Warn("status publish failed", zap.String("topic", p.topic), zap.Error(err))
		}
	}()
}

func (p *StatusPublisher) Close() {
	p.client.Disconnect(250)
}
