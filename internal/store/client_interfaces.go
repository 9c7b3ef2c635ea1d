package store

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalRecordStore is the client's local database as seen by the sync engine.
type LocalRecordStore interface {
	// GetPending returns the records of table waiting to be pushed. Records in
	// conflict are never returned.
	GetPending(ctx context.Context, table models.TableName) ([]models.SyncableRecord, error)
	// Get returns one record or [ErrRecordNotFound].
	Get(ctx context.Context, table models.TableName, id string) (models.SyncableRecord, error)
	Exists(ctx context.Context, table models.TableName, id string) (bool, error)
	List(ctx context.Context, table models.TableName, includeDeleted bool) ([]models.SyncableRecord, error)
	// Upsert writes the record as given, including its status and version.
	Upsert(ctx context.Context, record models.SyncableRecord) error
	MarkStatus(ctx context.Context, table models.TableName, id string, status models.SyncStatus) error
	// MarkSynced records a successful push of the content identified by hash.
	// The record becomes synced at version only while it is still pending with
	// that hash. A record edited since the push keeps its pending status, takes
	// the newer of the two versions and [ErrRecordChanged] is returned.
	MarkSynced(ctx context.Context, table models.TableName, id, hash string, version int64) error
	// MarkConflict moves a pending record still holding hash to the conflict
	// status, or returns [ErrRecordChanged].
	MarkConflict(ctx context.Context, table models.TableName, id, hash string) error
	HardDelete(ctx context.Context, table models.TableName, id string) error

	GetCursor(ctx context.Context, table models.TableName) (string, error)
	SetCursor(ctx context.Context, table models.TableName, cursor string) error

	SaveConflict(ctx context.Context, conflict models.ConflictRecord) error
	// GetConflict returns the conflict of a record or [ErrConflictNotFound].
	GetConflict(ctx context.Context, id string) (models.ConflictRecord, error)
	GetConflicts(ctx context.Context) ([]models.ConflictRecord, error)
	DeleteConflict(ctx context.Context, id string) error
}
