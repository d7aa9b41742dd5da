// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"MINIPRESS_DB_PATH" envDefault:"./data/minipress.db"`
	ServerHost string `env:"MINIPRESS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MINIPRESS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"MINIPRESS_ENV" envDefault:"development"`
	LogLevel   string `env:"MINIPRESS_LOG_LEVEL" envDefault:"info"`

	// Event log retention, in days. Older events are pruned by the
	// maintenance scheduler. Zero disables pruning.
	EventRetentionDays int `env:"MINIPRESS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"MINIPRESS_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
