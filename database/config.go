package database

import (
	"time"

	"github.com/kbukum/linguacast/validation"
)

// Config configures the SQLite history database.
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// DSN is a SQLite data source such as
	// "file:linguacast.db?_busy_timeout=5000".
	DSN string `yaml:"dsn" mapstructure:"dsn" validate:"required"`

	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime" validate:"gte=0"`
	MaxRetries      int           `yaml:"max_retries" mapstructure:"max_retries"`

	// Migrate applies the embedded history schema on Start.
	Migrate bool `yaml:"migrate" mapstructure:"migrate"`

	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold" validate:"gte=0"`
	LogLevel           string        `yaml:"log_level" mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

// ApplyDefaults fills unset fields. SQLite allows one writer, so the pool
// stays small.
func (c *Config) ApplyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 2
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.SlowQueryThreshold == 0 {
		c.SlowQueryThreshold = 200 * time.Millisecond
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks an enabled config.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.Validate(c)
}
