// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package client

import (
	"context"
	"errors"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/service"
	"github.com/fitsync/fitsync/internal/workers"
	"github.com/fitsync/fitsync/models"
)

// App ties the service layer and the background workers into one process.
type App struct {
	services *service.ClientServices
	workers  *workers.Workers
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, workers *workers.Workers, logger *logger.Logger) (*App, error) {
	if services == nil {
		return nil, errors.New("client services are required")
	}
	if workers == nil {
		return nil, errors.New("workers are required")
	}

	return &App{
		services: services,
		workers:  workers,
		logger:   logger,
	}, nil
}

// Run performs an initial sync pass, starts the background workers, and
// blocks until ctx is cancelled. A failed initial sync is a warning, not a
// startup failure: the periodic job and the connectivity-restore trigger
// will catch up.
func (a *App) Run(ctx context.Context) error {
	ctx = a.logger.WithContext(ctx)

	result, err := a.services.SyncManager.SyncAll(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Str("func", "App.Run").Msg("initial sync failed")
	} else if result.Status == models.SyncCompleted {
		a.logger.Info().
			Str("func", "App.Run").
			Int("pushed", result.Pushed).
			Int("pulled", result.Pulled).
			Msg("initial sync finished")
	}

	a.workers.Start(ctx)
	defer a.workers.Stop()

	<-ctx.Done()

	a.logger.Info().Str("func", "App.Run").Msg("shutting down")
	return nil
}
