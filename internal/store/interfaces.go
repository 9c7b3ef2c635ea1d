package store

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RemoteRecordRepository is the server-side persistence of syncable records.
// Every method is scoped to one user.
type RemoteRecordRepository interface {
	// ApplyWrite stores rec if no copy exists yet or rec.Version is not behind
	// the stored copy. It returns the version the store assigned and whether
	// the write was accepted; accepted=false with a nil error is a version
	// conflict.
	ApplyWrite(ctx context.Context, userID int64, table models.TableName, rec models.PushRecord) (int64, bool, error)
	// ChangesSince returns up to limit records of table changed after cursor,
	// ordered by change sequence, soft-deleted rows included.
	ChangesSince(ctx context.Context, userID int64, table models.TableName, cursor string, limit int) ([]models.PulledRecord, error)
	// GetByIDs returns the current copies of the listed records. Unknown ids
	// are skipped.
	GetByIDs(ctx context.Context, userID int64, table models.TableName, ids []string) ([]models.SyncableRecord, error)
	// ErrorCode maps a write error to the code reported to clients.
	ErrorCode(err error) models.ErrorCode
}
