package repositories

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

type MigrateDirection string

const (
	MigrateUp     MigrateDirection = "up"
	MigrateDown   MigrateDirection = "down"
	MigrateStatus MigrateDirection = "status"
)

// Migrate applies the embedded goose migrations through the pool.
func (db *DB) Migrate(ctx context.Context, direction MigrateDirection) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetLogger(logging.Logger)
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	var err error
	switch direction {
	case MigrateUp:
		err = goose.UpContext(ctx, sqlDB, "migrations")
	case MigrateDown:
		err = goose.DownContext(ctx, sqlDB, "migrations")
	case MigrateStatus:
		err = goose.StatusContext(ctx, sqlDB, "migrations")
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations %s: %w", direction, err)
	}
	return nil
}
