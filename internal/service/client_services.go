package service

import (
	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
)

// ClientServices is the sync client's service layer. All services share one
// lock manager so local edits and pushes see the same lock registry.
type ClientServices struct {
	Locks            *SyncLockManager
	RecordService    ClientRecordService
	ConflictResolver ConflictResolver
	Orchestrator     SyncOrchestrator
}

func NewClientServices(localStore store.LocalRecordStore, remote adapter.RemoteAdapter, cfg *config.ClientConfig, logger *logger.Logger) *ClientServices {
	locks := NewSyncLockManager()

	push := newPushEngine(localStore, remote, locks, pushConfig{
		BatchSize:   cfg.Workers.PushBatchSize,
		Timeout:     cfg.Adapter.RequestTimeout,
		MaxAttempts: cfg.Workers.MaxRecordAttempts,
	})
	pull := newPullEngine(localStore, remote, locks, cfg.Workers.PullPageSize)
	pull.quarantined = push.isQuarantined

	orchestrator := newSyncOrchestrator(localStore, locks, push, pull, orchestratorConfig{
		Interval:          cfg.Workers.SyncInterval,
		RetryInitialDelay: cfg.Workers.RetryInitialDelay,
		RetryMaxDelay:     cfg.Workers.RetryMaxDelay,
	}, logger)

	return &ClientServices{
		Locks:            locks,
		RecordService:    NewClientRecordService(localStore, locks, utils.NewUUIDGenerator(), orchestrator, logger),
		ConflictResolver: NewConflictResolver(localStore, orchestrator, logger),
		Orchestrator:     orchestrator,
	}
}
