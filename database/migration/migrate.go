// Package migration applies versioned SQL files to the sqlite database
// with golang-migrate. Files are named VERSION_name.up.sql and
// VERSION_name.down.sql and live in a directory of any fs.FS.
package migration

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// Source locates migration files.
type Source struct {
	FS  fs.FS
	Dir string
}

// Status is the schema state after an operation. Version is 0 when no
// migration has been applied.
type Status struct {
	Version uint
	Dirty   bool
}

func (s Status) String() string {
	return fmt.Sprintf("version %d (dirty=%t)", s.Version, s.Dirty)
}

// Apply runs every pending up migration.
func Apply(db *gorm.DB, src Source) (Status, error) {
	return run(db, src, "apply", func(m *migrate.Migrate) error { return m.Up() })
}

// Rollback reverts the last steps migrations.
func Rollback(db *gorm.DB, src Source, steps int) (Status, error) {
	if steps <= 0 {
		return Status{}, fmt.Errorf("rollback: steps must be positive, got %d", steps)
	}
	return run(db, src, "rollback", func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

// Current reports the schema state without changing it.
func Current(db *gorm.DB, src Source) (Status, error) {
	return run(db, src, "status", func(*migrate.Migrate) error { return nil })
}

func run(db *gorm.DB, src Source, op string, fn func(*migrate.Migrate) error) (Status, error) {
	m, err := open(db, src)
	if err != nil {
		return Status{}, err
	}
	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("%s: %w", op, err)
	}
	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("%s: read version: %w", op, err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// open never hands the migrator to a caller; closing it would close the
// pool gorm shares.
func open(db *gorm.DB, src Source) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("migration: sql handle: %w", err)
	}
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration: sqlite driver: %w", err)
	}
	files, err := iofs.New(src.FS, src.Dir)
	if err != nil {
		return nil, fmt.Errorf("migration: read %s: %w", src.Dir, err)
	}
	m, err := migrate.NewWithInstance("iofs", files, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("migration: %w", err)
	}
	return m, nil
}
