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

	"github.com/hydrosched/hydrosched/core/metrics"
	"github.com/hydrosched/hydrosched/core/solver"
	"github.com/hydrosched/hydrosched/infra/mqtt"
)

// Config is the service configuration.
type Config struct {
	MQTT    mqtt.Config     `json:"mqtt"`
	Metrics metrics.Config  `json:"metrics"`
	Solver  solver.Settings `json:"solver"`
}

// Load reads the configuration file and applies HS_*-prefixed environment
// overrides, with "__" separating nested keys.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	// The callback rewrites "__" to "." so the "." delimiter splits the
	// result into the nested path and merges over the file values.
	if err := k.Load(env.Provider("HS_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "hs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}
