// Package config loads and saves run configurations for the CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/taylor/internal/taylor"
)

const (
	DefaultOrder  = 20
	DefaultAbsTol = 1e-20
	DefaultTMax   = 10.0
)

type Config struct {
	Problem   string    `yaml:"problem"`
	Order     int       `yaml:"order"`
	AbsTol    float64   `yaml:"abstol"`
	T0        float64   `yaml:"t0"`
	TMax      float64   `yaml:"tmax"`
	InitState []float64 `yaml:"init_state"`
	MaxSteps  int       `yaml:"max_steps"`
	ParseEqs  bool      `yaml:"parse_eqs"`
	Dense     bool      `yaml:"dense"`
	MaxSplits int       `yaml:"max_splits"`
	// Jacobian selects the stability-matrix source for Lyapunov runs:
	// "user" for the registered hand-written routine, "ad" for jet
	// transport.
	Jacobian string `yaml:"jacobian"`
}

func DefaultConfig() *Config {
	opts := taylor.DefaultOptions()
	return &Config{
		Problem:   "pendulum",
		Order:     DefaultOrder,
		AbsTol:    DefaultAbsTol,
		TMax:      DefaultTMax,
		MaxSteps:  opts.MaxSteps,
		ParseEqs:  opts.ParseEqs,
		Dense:     opts.Dense,
		MaxSplits: opts.MaxSplits,
		Jacobian:  "ad",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Order < 2 {
		return fmt.Errorf("order must be at least 2, got %d", c.Order)
	}
	if c.AbsTol <= 0 {
		return fmt.Errorf("abstol must be positive, got %g", c.AbsTol)
	}
	if c.Jacobian != "user" && c.Jacobian != "ad" {
		return fmt.Errorf("jacobian must be \"user\" or \"ad\", got %q", c.Jacobian)
	}
	return nil
}

// Options converts the configuration into run options.
func (c *Config) Options() taylor.Options {
	return taylor.Options{
		MaxSteps:  c.MaxSteps,
		ParseEqs:  c.ParseEqs,
		Dense:     c.Dense,
		MaxSplits: c.MaxSplits,
	}
}
