package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/resilience"
)

// DB is the gorm handle the SQL history repository writes through.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	once   sync.Once
	err    error
}

// Open connects to the SQLite database at cfg.DSN. Failed attempts are
// retried with backoff, up to cfg.MaxRetries in total.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	gcfg := &gorm.Config{
		Logger:                 newGormLogger(log, cfg.SlowQueryThreshold, parseLogLevel(cfg.LogLevel)),
		SkipDefaultTransaction: true,
	}

	policy := resilience.RetryConfig{
		MaxAttempts:    cfg.MaxRetries,
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			log.Warn("database connect failed, retrying", logger.Fields(
				"attempt", attempt, logger.FieldError, err.Error(), "backoff", wait.String()))
		},
	}
	gdb, err := resilience.Retry(ctx, policy, func() (*gorm.DB, error) {
		return connect(ctx, cfg, gcfg)
	})
	if err != nil {
		return nil, fmt.Errorf("database connect after %d attempts: %w", cfg.MaxRetries, err)
	}
	log.Info("database connected", logger.Fields("max_open_conns", cfg.MaxOpenConns))
	return &DB{GormDB: gdb, log: log}, nil
}

func connect(ctx context.Context, cfg Config, gcfg *gorm.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(cfg.DSN), gcfg)
	if err != nil {
		return nil, err
	}
	pool, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return gdb, nil
}

func (d *DB) PingContext(ctx context.Context) error {
	pool, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// WithContext starts a gorm session bound to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// Close closes the pool once; later calls return the same result.
func (d *DB) Close() error {
	d.once.Do(func() {
		pool, err := d.GormDB.DB()
		if err != nil {
			d.err = err
			return
		}
		d.log.Info("closing database connection")
		d.err = pool.Close()
	})
	return d.err
}
