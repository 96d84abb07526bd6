package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/zeebo/errs"
	"gopkg.in/yaml.v3"
)

// Config controls the demo.
type Config struct {
	Duration  time.Duration `yaml:"duration"`  // how long to run
	Interval  time.Duration `yaml:"interval"`  // pause between actions of a worker
	Selectors int           `yaml:"selectors"` // number of selecting goroutines
	IDs       uint32        `yaml:"ids"`       // server ids are drawn from [0, ids)
	Target    int           `yaml:"target"`    // the adder slows down above this many servers, the remover below
	LogLevel  string        `yaml:"logLevel"`  // debug | info | warn | error
}

// loadConfig reads a Config from the yaml file at path. An empty path
// returns the defaults.
func loadConfig(path string) (cfg Config, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errs.Wrap(err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errs.New("parse %s: %v", path, err)
		}
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Duration == 0 {
		c.Duration = 10 * time.Second
	}
	if c.Interval == 0 {
		c.Interval = 100 * time.Millisecond
	}
	if c.Selectors == 0 {
		c.Selectors = 5
	}
	if c.IDs == 0 {
		c.IDs = 10
	}
	if c.Target == 0 {
		c.Target = 5
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// Validate reports problems with the config.
func (c Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return errs.New("duration must be positive")
	case c.Interval <= 0:
		return errs.New("interval must be positive")
	case c.Selectors < 0:
		return errs.New("selectors must not be negative")
	case c.IDs == 0:
		return errs.New("ids must be positive")
	}
	_, err := c.level()
	return err
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errs.New("invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}
