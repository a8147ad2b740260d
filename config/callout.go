package config

import (
	"fmt"

	"github.com/cheetahx/dispatch/core/voice"
	infracallout "github.com/cheetahx/dispatch/infra/callout"
)

// MockCalloutConfig tunes the simulated call agent.
type MockCalloutConfig struct {
	AcceptanceRate float64 `koanf:"acceptance_rate"`
	Seed           int64   `koanf:"seed"`
}

// CalloutConfig selects how driver calls are placed.
type CalloutConfig struct {
	// Mode selects the agent: "local", "remote" or "mock".
	Mode string `koanf:"mode"`
	// Remote configures the external voice API when Mode is "remote".
	Remote infracallout.RemoteConfig `koanf:"remote"`
	// Mock tunes the simulated agent when Mode is "mock".
	Mock MockCalloutConfig `koanf:"mock"`
	// Voice tunes the local call session.
	Voice voice.Config `koanf:"voice"`
}

// SetDefaults applies sane defaults.
func (c *CalloutConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "mock"
	}
}

// Validate checks mandatory fields.
func (c CalloutConfig) Validate() error {
	switch c.Mode {
	case "local", "mock":
		return nil
	case "remote":
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("callout: base_url is required in remote mode")
		}
		return nil
	default:
		return fmt.Errorf("callout: unknown mode %s", c.Mode)
	}
}
