package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/workers"
	"github.com/MKhiriev/go-money-keeper/models"
)

// App is a fully wired sync client.
type App struct {
	storages *store.ClientStorages
	services *service.ClientServices
	logger   *logger.Logger
}

// NewApp opens the local store, builds the remote adapter and the client
// services. The caller owns the returned App and must Close it.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	remote, err := adapter.NewHTTPRemoteAdapter(cfg.Adapter, cfg.App, logger)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	return &App{
		storages: storages,
		services: service.NewClientServices(storages.RecordStore, remote, cfg, logger),
		logger:   logger,
	}, nil
}

// Services exposes the client service layer to one-shot commands.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Run starts the orchestrator and the signal listener and blocks until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	orchestrator := a.services.Orchestrator

	orchestrator.OnSyncComplete(func(result models.SyncResult) {
		totals := result.Totals()
		a.logger.Info().
			Int("pushed", totals.Pushed).
			Int("pulled", totals.Pulled).
			Int("synced", totals.Synced).
			Int("conflicts", totals.Conflicts).
			Int("errors", totals.Errors).
			Int("quarantined", len(result.Quarantined)).
			Int("flushed", result.Flushed).
			Msg("sync cycle completed")
	})
	orchestrator.OnSyncError(func(err error) {
		a.logger.Warn().Err(err).Str("state", string(orchestrator.State())).Msg("sync cycle failed")
	})
	orchestrator.OnConflictsChanged(func(conflicts []models.ConflictRecord) {
		a.logger.Info().Int("unresolved", len(conflicts)).Msg("conflicts changed")
	})

	a.logger.Info().Msg("sync client started")
	err := workers.NewWorkers(orchestrator, newSignalTrigger(orchestrator, a.logger)).Run(ctx)
	a.logger.Info().Msg("sync client stopped")
	return err
}

// Close releases the local store.
func (a *App) Close() error {
	return a.storages.Close()
}
