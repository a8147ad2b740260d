package config

import (
	"fmt"

	infradirectory "github.com/cheetahx/dispatch/infra/directory"
)

// DirectoryConfig selects the driver directory backend.
type DirectoryConfig struct {
	// Mode selects the backend: "http" or "static".
	Mode string `koanf:"mode"`
	// HTTP configures the fleet API client when Mode is "http".
	HTTP infradirectory.HTTPConfig `koanf:"http"`
}

// SetDefaults applies sane defaults.
func (c *DirectoryConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "static"
	}
}

// Validate checks mandatory fields.
func (c DirectoryConfig) Validate() error {
	switch c.Mode {
	case "static":
		return nil
	case "http":
		if c.HTTP.BaseURL == "" {
			return fmt.Errorf("directory: base_url is required in http mode")
		}
		return nil
	default:
		return fmt.Errorf("directory: unknown mode %s", c.Mode)
	}
}
