package main

import (
	"fmt"

	"github.com/zulandar/retromgr/internal/config"
	"github.com/zulandar/retromgr/internal/db"
	"github.com/zulandar/retromgr/internal/logging"
	"gorm.io/gorm"
)

// loadConfig reads the config file, applies the --profile override and
// configures logging from the result.
func loadConfig(opts *globalOpts) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.profile != "" {
		if err := cfg.ApplyProfile(opts.profile); err != nil {
			return nil, err
		}
	}
	logging.Configure(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg, nil
}

// connectFromConfig loads the config and opens the migrated database.
func connectFromConfig(opts *globalOpts) (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, gormDB, nil
}
