package service

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SyncService is the remote store's side of the sync protocol. Every call is
// scoped to one user.
type SyncService interface {
	// Push applies a batch of records with the optimistic version rule and
	// reports the outcome of each one. Per-record failures land in the
	// result, not in the returned error.
	Push(ctx context.Context, userID int64, req models.PushRequest) (models.TableBatchResult, error)

	// Pull returns the user's changes of one table after req.Cursor.
	Pull(ctx context.Context, userID int64, req models.PullRequest) (models.PullResponse, error)

	// Fetch returns the current copies of the requested records. Unknown ids
	// are left out.
	Fetch(ctx context.Context, userID int64, req models.FetchRequest) ([]models.SyncableRecord, error)
}

// AppInfoService exposes build and protocol metadata of the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetServerInfo(ctx context.Context) models.ServerInfo
}

type AuthService interface {
	CreateToken(ctx context.Context, userID int64) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SyncServiceWrapper defines middleware composition for SyncService.
// Implementations wrap an existing SyncService to add behavior such as
// request validation.
type SyncServiceWrapper interface {
	Wrap(SyncService) SyncService // returns a decorated SyncService applying additional behavior
}
