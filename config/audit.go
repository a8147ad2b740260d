package config

import (
	"fmt"

	infraaudit "github.com/cheetahx/dispatch/infra/audit"
)

// AuditConfig defines settings for audit event storage.
type AuditConfig struct {
	// Backend selects the event store type: "jsonl" or "sqlite".
	Backend string `koanf:"backend"`
	// Path is the file location of the event store.
	Path string `koanf:"path"`
	// MQTTEnabled additionally publishes events to the ops broker.
	MQTTEnabled bool `koanf:"mqtt_enabled"`
	// MQTT configures the broker connection when MQTTEnabled is set.
	MQTT infraaudit.MQTTConfig `koanf:"mqtt"`
}

// SetDefaults applies sane defaults.
func (c *AuditConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "dispatch_audit.jsonl"
	}
}

// Validate checks mandatory fields.
func (c AuditConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("audit: unknown backend %s", c.Backend)
	}
	if c.MQTTEnabled && c.MQTT.Broker == "" {
		return fmt.Errorf("audit: mqtt broker is required")
	}
	return nil
}
