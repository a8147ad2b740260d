// Package config loads the service configuration from a YAML or JSON file
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cheetahx/dispatch/infra/transcribe"
)

type Config struct {
	App        AppConfig         `koanf:"app"`
	Directory  DirectoryConfig   `koanf:"directory"`
	Routing    RoutingConfig     `koanf:"routing"`
	Transcribe transcribe.Config `koanf:"transcribe"`
	Callout    CalloutConfig     `koanf:"callout"`
	Audit      AuditConfig       `koanf:"audit"`
	Metrics    MetricsConfig     `koanf:"metrics"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CHEETAH_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cheetah_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	cfg.App.SetDefaults()
	cfg.Directory.SetDefaults()
	cfg.Routing.SetDefaults()
	cfg.Callout.SetDefaults()
	cfg.Audit.SetDefaults()
	if err := cfg.Directory.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Routing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Callout.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Audit.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
