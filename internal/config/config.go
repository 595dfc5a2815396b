// Package config holds the environment context and topology options the
// composer runs with, plus a YAML file loader for them.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRegion applies when the environment omits a region.
	DefaultRegion = "us-east-1"

	// PlaceholderAccount substitutes for an absent account when synthesizing
	// concrete identifiers. Twelve digits, so identifiers keep their shape.
	PlaceholderAccount = "000000000000"

	DefaultOutputDir = "cdk.out"
	DefaultCodePath  = "../target/quicklink-1.0.0-aws.jar"

	// Canonical gateway throttling. Always passed into the gateway
	// descriptor explicitly; the descriptor layer has no defaults.
	DefaultRateLimit  = 50
	DefaultBurstLimit = 100
)

// Environment is the account/region context synthesis resolves concrete
// identifiers against. Both fields are optional on input.
type Environment struct {
	Account string
	Region  string
}

// Normalize fills the fixed fallbacks for absent fields.
func (e Environment) Normalize() Environment {
	if e.Region == "" {
		e.Region = DefaultRegion
	}
	if e.Account == "" {
		e.Account = PlaceholderAccount
	}
	return e
}

// Throttle carries the gateway request-throttling numbers.
type Throttle struct {
	RateLimit  int `yaml:"rate_limit"`
	BurstLimit int `yaml:"burst_limit"`
}

// Config is the file-backed configuration surface.
type Config struct {
	Account        string   `yaml:"account"`
	Region         string   `yaml:"region"`
	AnalyticsQueue *bool    `yaml:"analytics_queue"` // nil means enabled
	CodePath       string   `yaml:"code_path"`
	OutputDir      string   `yaml:"output_dir"`
	Throttle       Throttle `yaml:"throttle"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Region:    DefaultRegion,
		CodePath:  DefaultCodePath,
		OutputDir: DefaultOutputDir,
		Throttle:  Throttle{RateLimit: DefaultRateLimit, BurstLimit: DefaultBurstLimit},
	}
}

// Load reads a YAML config file. A missing file yields the defaults; fields
// absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.CodePath == "" {
		cfg.CodePath = DefaultCodePath
	}
	if cfg.Throttle.RateLimit == 0 {
		cfg.Throttle.RateLimit = DefaultRateLimit
	}
	if cfg.Throttle.BurstLimit == 0 {
		cfg.Throttle.BurstLimit = DefaultBurstLimit
	}
	return cfg, nil
}

// QueueEnabled reports whether the analytics queue variant is active.
func (c *Config) QueueEnabled() bool {
	return c.AnalyticsQueue == nil || *c.AnalyticsQueue
}
