package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration commands understood by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// RunMigrations applies all embedded migrations. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, MigrateUp)
}

// Migrate runs a goose command against the embedded migrations.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	switch command {
	case "", MigrateUp:
		return goose.UpContext(ctx, database, "migrations")
	case MigrateDown:
		return goose.DownContext(ctx, database, "migrations")
	case MigrateStatus:
		return goose.StatusContext(ctx, database, "migrations")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}
