// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

// remoteRecordRepository is the PostgreSQL-backed implementation of
// [RemoteRecordRepository]. All tables share "sync_records"; every write
// draws a new value from the change sequence, which is what pull cursors
// point into. Writes of one user are serialized, see ApplyWrite.
type remoteRecordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRemoteRecordRepository constructs a [RemoteRecordRepository] backed by
// the provided database connection and logger.
func NewRemoteRecordRepository(db *DB, logger *logger.Logger) RemoteRecordRepository {
	logger.Debug().Msg("creating record repository")
	return &remoteRecordRepository{
		DB:     db,
		logger: logger,
	}
}

// ApplyWrite first tries a guarded UPDATE and falls back to an INSERT that
// does nothing when a row appeared in between. Neither statement touching a
// row means the stored copy is ahead of rec.
//
// Both run in a transaction holding the user's advisory lock. Writes of one
// user therefore commit in change_seq order, and a pull that has seen a
// sequence number has also seen every smaller one of that user.
func (r *remoteRecordRepository) ApplyWrite(ctx context.Context, userID int64, table models.TableName, rec models.PushRecord) (int64, bool, error) {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "remoteRecordRepository.ApplyWrite").
			Int64("user_id", userID).
			Msg("failed to begin transaction")
		return 0, false, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, lockUserChangesQuery, userID); err != nil {
		log.Err(err).
			Str("func", "remoteRecordRepository.ApplyWrite").
			Int64("user_id", userID).
			Msg("failed to lock user changes")
		return 0, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	version, accepted, err := r.applyWrite(ctx, tx, userID, table, rec)
	if err != nil || !accepted {
		return 0, false, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "remoteRecordRepository.ApplyWrite").
			Int64("user_id", userID).
			Str("id", rec.ID).
			Msg("failed to commit transaction")
		return 0, false, fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}

	return version, true, nil
}

func (r *remoteRecordRepository) applyWrite(ctx context.Context, tx *sql.Tx, userID int64, table models.TableName, rec models.PushRecord) (int64, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildApplyUpdateQuery(r.builder(), userID, table, rec)
	if err != nil {
		return 0, false, err
	}

	var version int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&version)
	if err == nil {
		return version, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).
			Str("func", "remoteRecordRepository.ApplyWrite").
			Int64("user_id", userID).
			Str("table", string(table)).
			Str("id", rec.ID).
			Msg("failed to update record")
		return 0, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	query, args, err = buildApplyInsertQuery(r.builder(), userID, table, rec)
	if err != nil {
		return 0, false, err
	}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "remoteRecordRepository.ApplyWrite").
			Int64("user_id", userID).
			Str("table", string(table)).
			Str("id", rec.ID).
			Msg("failed to insert record")
		return 0, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return version, true, nil
}

func (r *remoteRecordRepository) ChangesSince(ctx context.Context, userID int64, table models.TableName, cursor string, limit int) ([]models.PulledRecord, error) {
	query, args, err := buildChangesSinceQuery(r.builder(), userID, table, cursor, limit)
	if err != nil {
		return nil, err
	}

	records, err := r.queryRecords(ctx, "remoteRecordRepository.ChangesSince", userID, table, query, args)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *remoteRecordRepository) GetByIDs(ctx context.Context, userID int64, table models.TableName, ids []string) ([]models.SyncableRecord, error) {
	if len(ids) == 0 {
		return []models.SyncableRecord{}, nil
	}

	query, args, err := buildGetByIDsQuery(r.builder(), userID, table, ids)
	if err != nil {
		return nil, err
	}

	pulled, err := r.queryRecords(ctx, "remoteRecordRepository.GetByIDs", userID, table, query, args)
	if err != nil {
		return nil, err
	}

	records := make([]models.SyncableRecord, 0, len(pulled))
	for _, p := range pulled {
		records = append(records, p.SyncableRecord)
	}
	return records, nil
}

func (r *remoteRecordRepository) ErrorCode(err error) models.ErrorCode {
	return r.errorClassificator.Code(err)
}

func (r *remoteRecordRepository) queryRecords(ctx context.Context, fn string, userID int64, table models.TableName, query string, args []any) ([]models.PulledRecord, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", fn).
			Int64("user_id", userID).
			Str("table", string(table)).
			Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.PulledRecord, 0, 50)
	for rows.Next() {
		var (
			rec                  models.PulledRecord
			deletedAt            sql.NullTime
			createdAt, updatedAt time.Time
			payload              []byte
			seq                  int64
		)

		scanErr := rows.Scan(&rec.ID, &rec.Version, &deletedAt, &payload, &createdAt, &updatedAt, &seq)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", fn).
				Int64("user_id", userID).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		rec.Table = table
		rec.Payload = payload
		rec.CreatedAt = &createdAt
		rec.UpdatedAt = &updatedAt
		if deletedAt.Valid {
			rec.DeletedAt = &deletedAt.Time
		}
		rec.Cursor = formatCursor(seq)

		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", fn).
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}
