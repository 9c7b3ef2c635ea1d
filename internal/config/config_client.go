package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// Token is the bearer token presented to the remote store.
	Token string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base address of the remote store.
	HTTPAddress string
	// RequestTimeout bounds every outbound request.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite database file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains sync engine settings.
type ClientWorkers struct {
	SyncInterval      time.Duration
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
	PushBatchSize     int
	PullPageSize      int
	MaxRecordAttempts int
}

// ClientLog contains client log sink settings.
type ClientLog struct {
	File  string
	Level string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Log     ClientLog
}

// GetClientConfig builds and validates the sync client configuration.
//
// Sources are merged as defaults, environment, overrides (typically the
// values of the CLI's persistent flags) and finally the JSON file referenced
// by any of them. Only fields relevant to the client are kept.
func GetClientConfig(overrides *StructuredConfig) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults().
		withEnv().
		withOverrides(overrides).
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			Token: cfg.App.Token,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:      cfg.Workers.SyncInterval,
			RetryInitialDelay: cfg.Workers.RetryInitialDelay,
			RetryMaxDelay:     cfg.Workers.RetryMaxDelay,
			PushBatchSize:     cfg.Workers.PushBatchSize,
			PullPageSize:      cfg.Workers.PullPageSize,
			MaxRecordAttempts: cfg.Workers.MaxRecordAttempts,
		},
		Log: ClientLog{
			File:  cfg.Log.File,
			Level: cfg.Log.Level,
		},
	}
}
