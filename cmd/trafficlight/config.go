package main

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidCycles = errors.New("cycles must not be negative")

// Config holds the demo settings. Environment variables provide defaults,
// command line flags override them.
type Config struct {
	GreenHold  time.Duration `env:"TRAFFICLIGHT_GREEN" envDefault:"3s"`
	YellowHold time.Duration `env:"TRAFFICLIGHT_YELLOW" envDefault:"1s"`
	RedHold    time.Duration `env:"TRAFFICLIGHT_RED" envDefault:"2s"`
	Cycles     int           `env:"TRAFFICLIGHT_CYCLES" envDefault:"1"`
	LogLevel   string        `env:"TRAFFICLIGHT_LOG_LEVEL" envDefault:"warn"`
}

// LoadConfig reads the configuration from the environment
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot
func (c Config) Validate() error {
	if c.Cycles < 0 {
		return ErrInvalidCycles
	}
	return nil
}
