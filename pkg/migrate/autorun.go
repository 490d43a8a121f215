package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

// MaybeRunDev applies the bundled migrations at startup when running in dev
// with auto-migrate enabled. SQLite runs are skipped since the SQL is
// Postgres-specific.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	flags := cfg.FeatureFlags
	if !cfg.App.IsDev() || !flags.AutoMigrate {
		return nil
	}
	if flags.UseSQLite {
		logg.Warn(ctx, "migrate.autorun.skipped_sqlite")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	runner, err := NewRunner(sqlDB, Bundled())
	if err != nil {
		return err
	}
	applied, err := runner.Run(ctx, "up")
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "applied", len(applied)), "migrate.autorun.done")
	return nil
}
