package service

import (
	"context"
	"slices"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

type appInfoService struct {
	info models.ServerInfo

	logger *logger.Logger
}

func NewAppInfoService(cfg config.App, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		info: models.ServerInfo{
			Version:         cfg.Version,
			Tables:          slices.Clone(models.SyncTables),
			MaxBatchRecords: validators.MaxBatchRecords,
			MaxPageLimit:    validators.MaxPageLimit,
		},
		logger: logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.info.Version
}

// GetServerInfo returns a copy; callers may modify it.
func (s *appInfoService) GetServerInfo(ctx context.Context) models.ServerInfo {
	info := s.info
	info.Tables = slices.Clone(s.info.Tables)
	return info
}
