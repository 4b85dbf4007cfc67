package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/repositories"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the PostgreSQL schema",
		Long:      "Apply (up), roll back one step (down) or list (status) the embedded schema migrations.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(repositories.MigrateUp), string(repositories.MigrateDown), string(repositories.MigrateStatus)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("database.url is required")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := repositories.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			direction := repositories.MigrateDirection(args[0])
			if err := db.Migrate(ctx, direction); err != nil {
				return fmt.Errorf("migrate %s: %w", direction, err)
			}
			logging.Logger.Infof("Event ID: MIGRATE_DONE, Description: Migration %s finished", direction)
			return nil
		},
	}
}
