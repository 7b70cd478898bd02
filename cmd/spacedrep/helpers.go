package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/spacedrep/internal/bootstrap"
	"github.com/at-ishikawa/spacedrep/internal/config"
	"github.com/at-ishikawa/spacedrep/internal/database"
	"github.com/at-ishikawa/spacedrep/internal/learning"
	"github.com/at-ishikawa/spacedrep/internal/review"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openDatabase connects to the configured database and registers its Close
// with app.
func openDatabase(ctx context.Context, app *bootstrap.App, cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Storage.Driver == "yaml" {
		return nil, fmt.Errorf("storage driver %q has no database", cfg.Storage.Driver)
	}
	db, err := database.Connect(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Connect() > %w", err)
	}
	app.AddCloser("database", db)
	return db, nil
}

func openRepository(ctx context.Context, app *bootstrap.App, cfg *config.Config) (learning.Repository, error) {
	if cfg.Storage.Driver == "yaml" {
		return learning.NewYAMLRepository(cfg.Storage.CardsDirectory), nil
	}
	db, err := openDatabase(ctx, app, cfg)
	if err != nil {
		return nil, err
	}
	return learning.NewDBRepository(db), nil
}

type commandEnv struct {
	cfg     *config.Config
	repo    learning.Repository
	service *review.Service
}

// runWithService loads the configuration, opens the repository and runs fn
// through a bootstrap.App so the storage is released on every exit path.
// A non-empty strategy overrides the configured one.
func runWithService(ctx context.Context, strategy scheduler.Strategy, fn func(ctx context.Context, env commandEnv) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strategy != "" {
		cfg.Scheduler.Strategy = string(strategy)
	}
	s, err := cfg.Scheduler.NewScheduler()
	if err != nil {
		return fmt.Errorf("cfg.Scheduler.NewScheduler() > %w", err)
	}

	app := bootstrap.New()
	return app.Run(ctx, func(ctx context.Context) error {
		repo, err := openRepository(ctx, app, cfg)
		if err != nil {
			return err
		}
		return fn(ctx, commandEnv{
			cfg:     cfg,
			repo:    repo,
			service: review.NewService(s, repo),
		})
	})
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
