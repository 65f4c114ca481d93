package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/voltbus/curtaild/core/curtail"
	"github.com/voltbus/curtaild/core/metrics"
	"github.com/voltbus/curtaild/infra/hub"
	"github.com/voltbus/curtaild/infra/mqtt"
)

// LoopConfig controls how often the control loop polls and recalculates.
type LoopConfig struct {
	PollIntervalSeconds   int `json:"poll_interval_seconds"`
	RecalcIntervalSeconds int `json:"recalc_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *LoopConfig) SetDefaults() {
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 300
	}
	if c.RecalcIntervalSeconds <= 0 {
		c.RecalcIntervalSeconds = 900
	}
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level"`
	// Verbose forces debug level and logs full retrieved records.
	Verbose bool `json:"verbose"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Verbose {
		c.Level = "debug"
	}
}

type Config struct {
	Hub         hub.Config     `json:"hub"`
	Curtailment curtail.Config `json:"curtailment"`
	Loop        LoopConfig     `json:"loop"`
	Metrics     metrics.Config `json:"metrics"`
	MQTT        mqtt.Config    `json:"mqtt"`
	Logging     LoggingConfig  `json:"logging"`
}

// Load reads the configuration file and applies CURTAIL_* environment
// overrides ("__" maps to a section separator, e.g.
// CURTAIL_HUB__API_TOKEN overrides hub.api_token). Missing or malformed
// required values are fatal: the loop must not start without them.
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
	if err := k.Load(env.Provider("CURTAIL_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "curtail_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}

	cfg.Hub.SetDefaults()
	cfg.Loop.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Curtailment.PollInterval = time.Duration(cfg.Loop.PollIntervalSeconds) * time.Second
	cfg.Curtailment.RecalcInterval = time.Duration(cfg.Loop.RecalcIntervalSeconds) * time.Second
	cfg.Curtailment.SetDefaults()

	if err := cfg.Hub.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Curtailment.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
