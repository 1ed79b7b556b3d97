// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (store, cart, checkout) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/carta/pkg/query"
)

// # State Backends

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the Carta API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StateBackend selects where the configuration snapshot is persisted.
	StateBackend string `env:"STATE_BACKEND" envDefault:"redis"`

	// Relational Database (PostgreSQL), only needed for the postgres backend.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis). Also carries carts and the cross-replica channel.
	RedisURL string `env:"REDIS_URL"`

	// Admin panel access
	SessionSecret     string        `env:"SESSION_SECRET,required,notEmpty"`
	AdminUsername     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH,required,notEmpty"`
	AdminTokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`

	// Storefront behaviour
	NotificationCap int           `env:"NOTIFICATION_CAP" envDefault:"100"`
	CartTTL         time.Duration `env:"CART_TTL"         envDefault:"72h"`
	CheckoutDelay   time.Duration `env:"CHECKOUT_DELAY"   envDefault:"0s"`

	// Order handoff. Orders are only logged when RabbitMQURL is empty.
	RabbitMQURL     string `env:"RABBITMQ_URL"`
	OrderQueue      string `env:"ORDER_QUEUE"        envDefault:"carta.orders"`
	ChannelPoolSize int    `env:"CHANNEL_POOL_SIZE"  envDefault:"4"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// check verifies cross-field requirements that struct tags cannot express.
func (c *Config) check() error {
	switch c.StateBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required for the %q state backend", c.StateBackend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %q state backend", c.StateBackend)
		}
	default:
		return fmt.Errorf("config: unknown STATE_BACKEND %q", c.StateBackend)
	}

	if c.NotificationCap < 1 {
		return fmt.Errorf("config: NOTIFICATION_CAP must be positive, got %d", c.NotificationCap)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins lists the extra CORS origins accepted outside development.
func (c *Config) AllowedOrigins() []string {
	return query.Split(c.ExtraOrigins)
}
