package config

import (
	"fmt"

	infrarouting "github.com/cheetahx/dispatch/infra/routing"
)

// RoutingConfig selects the route service backend.
type RoutingConfig struct {
	// Mode selects the backend: "googlemaps" or "mock".
	Mode string `koanf:"mode"`
	// GoogleMaps configures the Distance Matrix client when Mode is "googlemaps".
	GoogleMaps infrarouting.GoogleMapsConfig `koanf:"googlemaps"`
	// MockSpeedKmh is the straight-line speed assumed by the mock backend.
	MockSpeedKmh float64 `koanf:"mock_speed_kmh"`
}

// SetDefaults applies sane defaults.
func (c *RoutingConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "mock"
	}
}

// Validate checks mandatory fields.
func (c RoutingConfig) Validate() error {
	switch c.Mode {
	case "mock":
		return nil
	case "googlemaps":
		if c.GoogleMaps.APIKey == "" {
			return fmt.Errorf("routing: api_key is required in googlemaps mode")
		}
		return nil
	default:
		return fmt.Errorf("routing: unknown mode %s", c.Mode)
	}
}
