package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator is implemented by configs that check cross-field constraints
// after parsing.
type Validator interface {
	Validate() error
}

// Load parses environment variables into cfg using its `env` tags. When cfg
// implements Validator, Validate runs after a successful parse.
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	return LoadWithPrefix(cfg, "")
}

// LoadWithPrefix is Load with every variable name prefixed, e.g. "MARKETPLACE_".
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}
