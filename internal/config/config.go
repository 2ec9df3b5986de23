package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL string `yaml:"ttl"`
	} `yaml:"questions"`
	Game struct {
		RoundTimeout         string `yaml:"roundTimeout"`
		SweepInterval        string `yaml:"sweepInterval"`
		RecomputeInterval    string `yaml:"recomputeInterval"`
		SeenCapacity         int    `yaml:"seenCapacity"`
		SentenceSeenCapacity int    `yaml:"sentenceSeenCapacity"`
	} `yaml:"game"`
}

// Defaults for the game section when the config leaves them unset.
const (
	DefaultRoundTimeout      = 30 * time.Minute
	DefaultSweepInterval     = 5 * time.Minute
	DefaultRecomputeInterval = 24 * time.Hour
	DefaultSeenCapacity      = 10
)

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// SeenCapacity returns the configured exclusion-window size or the default.
func (c Config) SeenCapacity() int {
	if c.Game.SeenCapacity > 0 {
		return c.Game.SeenCapacity
	}
	return DefaultSeenCapacity
}
