// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks invariants shared by server and client: numeric tuning
// values must not be negative.
func (cfg *StructuredConfig) validate() error {
	w := cfg.Workers
	if w.SyncInterval < 0 || w.RetryInitialDelay < 0 || w.RetryMaxDelay < 0 ||
		w.PushBatchSize < 0 || w.PullPageSize < 0 || w.MaxRecordAttempts < 0 {
		return ErrInvalidWorkerConfigs
	}
	if w.RetryMaxDelay > 0 && w.RetryInitialDelay > w.RetryMaxDelay {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

// validateServer checks the settings the remote store cannot start without.
func (cfg *StructuredConfig) validateServer() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	w := cfg.Workers
	if w.SyncInterval <= 0 || w.RetryInitialDelay <= 0 || w.RetryMaxDelay <= 0 ||
		w.PushBatchSize <= 0 || w.PullPageSize <= 0 || w.MaxRecordAttempts <= 0 {
		return ErrInvalidWorkerConfigs
	}
	if w.PushBatchSize > MaxPushBatchSize || w.PullPageSize > MaxPullPageSize {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
