package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/angelmondragon/accounts-backend/pkg/db"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on startup when the app runs in dev
// mode with auto-migrate enabled, or always for the sqlite driver.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	driver := cfg.Store.DriverName()
	if driver != config.StoreDriverSQLite && (!cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": driver})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, driver, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
