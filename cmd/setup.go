package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if loaded, err := shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			} else {
				config = loaded
			}
		}
	}
	if config == nil {
		config = shared.DefaultConfig()
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)

	lock, err := shared.AcquireLock(config.Database.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	db, err := shared.OpenStore(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, len(versions))
	if config.OMDb.APIKey == "" {
		r.writePlainln("Next steps:")
		r.writePlain("1. Get a key at https://www.omdbapi.com/apikey.aspx\n")
		r.writePlain("2. Set omdb.api_key in %s or export %s\n", configPath, shared.APIKeyEnv)
	}
	return nil
}
