package info

import (
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// Config controls engine resources and optional reporting
type Config struct {
	Concurrency     int  `yaml:"concurrency,omitempty" validate:"gte=0"`     // parallel class files/artifacts, 0 means GOMAXPROCS
	CacheSize       int  `yaml:"cacheSize,omitempty" validate:"gte=0"`       // artifact listings kept across runs, 0 disables cache
	ReportAmbiguous bool `yaml:"reportAmbiguous,omitempty"`                  // surface used classes with multiple owners
	MaxMajorVersion int  `yaml:"maxMajorVersion,omitempty" validate:"gte=0"` // newest class file format accepted, 0 means default
}

// DefaultConfig returns default engine configuration
func DefaultConfig() *Config {
	return &Config{
		Concurrency:     runtime.GOMAXPROCS(-1),
		CacheSize:       512,
		ReportAmbiguous: true,
	}
}

// Workers returns effective concurrency
func (c *Config) Workers() int {
	if c == nil || c.Concurrency <= 0 {
		return runtime.GOMAXPROCS(-1)
	}
	return c.Concurrency
}

// Validate checks config constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var validate = validator.New()
