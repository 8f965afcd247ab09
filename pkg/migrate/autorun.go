package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/angelmondragon/storefront-checkout/pkg/db"
	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. SQLite databases are created from the gorm models since
// the goose files target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "sqlite": cfg.DB.UseSQLite}
	ctx = logg.WithFields(ctx, meta)

	if cfg.DB.UseSQLite {
		logg.Info(ctx, "running gorm automigrate (sqlite dev)")
		if err := AutoMigrateModels(client); err != nil {
			return err
		}
		logg.Info(ctx, "gorm automigrate completed")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates the checkout tables straight from the gorm models.
func AutoMigrateModels(client *db.Client) error {
	if client == nil || client.DB() == nil {
		return fmt.Errorf("db client is required")
	}
	if err := client.DB().AutoMigrate(
		&models.Voucher{},
		&models.UserAddress{},
		&models.PaymentMethod{},
		&models.PaymentTransaction{},
	); err != nil {
		return fmt.Errorf("gorm automigrate: %w", err)
	}
	return nil
}
