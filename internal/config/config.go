package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the transaction core. Values come from the
// YAML file, then environment variables override (EXC_ prefix), then Validate
// rejects anything unusable.
type Config struct {
	Sequencer struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"sequencer"`

	Output struct {
		Workers   int `yaml:"workers"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"output"`

	Dedup struct {
		TTLHours     int `yaml:"ttl_hours"`
		SweepMinutes int `yaml:"sweep_minutes"`
	} `yaml:"dedup"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Sequencer.Capacity = 65536
	cfg.Output.Workers = 4
	cfg.Output.QueueSize = 8192
	cfg.Dedup.TTLHours = 48
	cfg.Dedup.SweepMinutes = 10
	cfg.Store.Path = "exchangecore.db"
	cfg.NATS.Enabled = false
	cfg.NATS.URL = "nats://127.0.0.1:4222"
	cfg.Metrics.Addr = ":9102"
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads the YAML file at path (empty path keeps defaults), applies
// environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Sequencer.Capacity <= 0 {
		return fmt.Errorf("sequencer capacity must be positive, got %d", c.Sequencer.Capacity)
	}
	if c.Output.Workers <= 0 {
		return fmt.Errorf("output workers must be positive, got %d", c.Output.Workers)
	}
	if c.Output.QueueSize <= 0 {
		return fmt.Errorf("output queue size must be positive, got %d", c.Output.QueueSize)
	}
	if c.Dedup.TTLHours <= 0 {
		return fmt.Errorf("dedup TTL must be positive, got %d", c.Dedup.TTLHours)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats URL is required when nats is enabled")
	}
	return nil
}

// overrideWithEnv applies EXC_-prefixed environment variables over the file
// values. Environment wins.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("EXC_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("EXC_NATS_URL"); v != "" {
		cfg.NATS.URL = v
		cfg.NATS.Enabled = true
	}
	if v := os.Getenv("EXC_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("EXC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EXC_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("EXC_SEQUENCER_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sequencer.Capacity = n
		}
	}
	if v := os.Getenv("EXC_OUTPUT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Output.Workers = n
		}
	}
}
