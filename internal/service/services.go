package service

import (
	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
)

type Services struct {
	AppInfoService AppInfoService
	AuthService    AuthService
	SyncService    SyncService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		AppInfoService: appInfoService,
		AuthService:    NewAuthService(cfg.App, logger),
		SyncService:    NewSyncValidationService().Wrap(NewSyncService(storages.RecordRepository, logger)),
	}, nil
}
