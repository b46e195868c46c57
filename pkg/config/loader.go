// Package config provides environment-based configuration loading.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment. cfg must be a pointer to a
// struct whose fields carry `env` tags; untagged fields are left untouched.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8010"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//
// A set-but-empty variable falls back to its envDefault, so defaulted fields
// are never loaded as empty strings.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
