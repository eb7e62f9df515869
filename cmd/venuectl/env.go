package main

import (
	"context"
	"time"

	"venue-staff/internal/config"
	"venue-staff/internal/database"
	dbpostgres "venue-staff/internal/database/postgres"
	"venue-staff/internal/logging"

	"go.uber.org/zap"
)

// env is what every subcommand needs: config, a logger and an open database.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	db     database.DB
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.App.Environment)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	_ = e.logger.Sync()
}
