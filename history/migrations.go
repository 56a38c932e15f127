package history

import "embed"

// Migrations holds the SQLite schema applied by database.Component.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"
