package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config mirrors the YAML configuration file accepted by --config. Flags
// given on the command line take precedence over file values.
type config struct {
	// Engine selects the covariance backend: "reference" or "simd".
	Engine string `yaml:"engine"`
	// Nugget is a fixed diagonal regularization; negative means adaptive.
	Nugget float64 `yaml:"nugget"`
	// Start is the initial hyperparameter vector; empty means zeros.
	Start []float64 `yaml:"start"`
	// Restarts is the number of perturbed optimization restarts.
	Restarts int `yaml:"restarts"`
	// Seed makes restart perturbations reproducible.
	Seed int64 `yaml:"seed"`
}

func defaultConfig() config {
	return config{
		Engine:   "reference",
		Nugget:   -1,
		Restarts: 2,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Engine != "reference" && cfg.Engine != "simd" {
		return cfg, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
	return cfg, nil
}
