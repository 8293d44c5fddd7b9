package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/shared"
)

// SetupConfig writes a config file from the embedded template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Edit the [database] section to choose a driver and DSN\n")
	r.writePlain("2. Run 'localdb setup database' to create the schema\n")
	return nil
}

// SetupDatabase connects to the configured database and ensures the schema exists.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "driver", r.config.Database.Driver)

	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrConnection, err)
	}

	r.logger.Info("setup complete", "dialect", store.Dialect(), "session", store.ID())
	r.writePlain("✓ Database ready (%s, tables: %v)\n", store.Dialect(), shared.Tables)
	return nil
}
