// Package config provides configuration for the hirez command line client
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/alexbotov/hirez/pkg/hirez"
)

// Config holds all configuration for the CLI
type Config struct {
	API   APIConfig
	Redis RedisConfig
}

// APIConfig holds the Hi-Rez API client settings
type APIConfig struct {
	// Platform selects a well-known endpoint; BaseURL overrides it.
	Platform   string        `env:"HIREZ_PLATFORM" envDefault:"smite-pc"`
	BaseURL    string        `env:"HIREZ_BASE_URL"`
	DevID      string        `env:"SMITE_DEV_ID"`
	AuthKey    string        `env:"SMITE_AUTH_KEY"`
	Timeout    time.Duration `env:"HIREZ_TIMEOUT" envDefault:"30s"`
	Delay      time.Duration `env:"HIREZ_DELAY" envDefault:"100ms"`
	SessionTTL time.Duration `env:"HIREZ_SESSION_TTL" envDefault:"15m"`
}

// RedisConfig holds the optional shared session store settings. Leaving
// Addr empty keeps sessions in process memory.
type RedisConfig struct {
	Addr     string `env:"HIREZ_REDIS_ADDR"`
	Password string `env:"HIREZ_REDIS_PASSWORD"`
	DB       int    `env:"HIREZ_REDIS_DB" envDefault:"0"`
}

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// ResolveBaseURL maps the platform selector to an endpoint.
func (c *APIConfig) ResolveBaseURL() (string, error) {
	if c.BaseURL != "" {
		return c.BaseURL, nil
	}
	switch c.Platform {
	case "smite-pc":
		return hirez.SmitePCURL, nil
	case "smite-xbox":
		return hirez.SmiteXboxURL, nil
	case "smite-ps4":
		return hirez.SmitePS4URL, nil
	case "paladins-pc":
		return hirez.PaladinsPCURL, nil
	case "paladins-xbox":
		return hirez.PaladinsXboxURL, nil
	case "paladins-ps4":
		return hirez.PaladinsPS4URL, nil
	default:
		return "", fmt.Errorf("config: unknown platform %q", c.Platform)
	}
}
