package config

// AppConfig holds the settings of the service itself.
type AppConfig struct {
	// ListenAddr is the bind address of the order intake API.
	ListenAddr string `koanf:"listen_addr"`
	// APIToken protects the intake endpoint when non-empty.
	APIToken string `koanf:"api_token"`
}

// SetDefaults applies sane defaults.
func (c *AppConfig) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
}
