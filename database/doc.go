// Package database provides a GORM-backed SQLite connection with pooling,
// health checks, transactions and file-based migrations.
//
// The history repository is the only consumer. It owns its schema as
// embedded SQL files applied through migration.Apply:
//
//	comp := database.NewComponent(cfg, log).WithMigrations(history.Migrations, "migrations")
//	registry.Register(comp)
//	...
//	repo := history.NewSQLRepository(comp.DB())
//
// The component respects the Enabled flag. When disabled, Start returns
// immediately and Health reports unhealthy with a "disabled" message.
package database
