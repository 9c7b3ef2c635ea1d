// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport between the sync client and the
// remote store.
//
// The primary abstraction is [RemoteAdapter], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrUnauthorized] for 401, [ErrNetwork] for timeouts and 5xx).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter is the batch RPC surface of the remote store.
type RemoteAdapter interface {
	// SetToken stores the bearer token attached to every subsequent request.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Push submits one batch of records of a single table and returns the
	// per-record outcome. A transport failure is returned as an error and
	// says nothing about individual records.
	Push(ctx context.Context, req models.PushRequest) (models.TableBatchResult, error)

	// Pull returns the page of changes after req.Cursor.
	Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error)

	// Fetch returns the current server copies of the listed records. Records
	// the server does not know are omitted.
	Fetch(ctx context.Context, req models.FetchRequest) ([]models.SyncableRecord, error)
}
