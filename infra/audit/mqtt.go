package audit

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/cheetahx/dispatch/core/logger"
)

// MQTTConfig configures the broker connection for audit publishing.
type MQTTConfig struct {
	Broker      string `koanf:"broker"`
	ClientID    string `koanf:"client_id"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	TopicPrefix string `koanf:"topic_prefix"`
	QoS         byte   `koanf:"qos"`
}

// MQTTAppender publishes audit events to the ops broker, one topic per
// event type under the configured prefix.
type MQTTAppender struct {
	client mqtt.Client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewMQTTAppender connects to the broker.
func NewMQTTAppender(cfg MQTTConfig, log logger.Logger) (*MQTTAppender, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "dispatch/audit"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connecting to mqtt broker: %w", err)
	}
	return &MQTTAppender{client: client, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// Append publishes the event.
func (m *MQTTAppender) Append(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	topic := m.prefix + "/" + ev.Type
	tok := m.client.Publish(topic, m.qos, false, payload)
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (m *MQTTAppender) Close() error {
	m.client.Disconnect(250)
	return nil
}
