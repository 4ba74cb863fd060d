package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ParseEnv loads configuration from environment variables. A .env file in the
// working directory is merged in first; variables already present in the
// environment win.
func ParseEnv(target any) error {
	// A missing .env file is the normal case, not an error.
	_ = godotenv.Load()

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
