package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

// localRecordStore is the SQLite-backed implementation of [LocalRecordStore].
// Records of every table share the "records" table keyed by (table_name, id);
// pull cursors and unresolved conflicts live next to them so that they
// survive restarts together with the data they describe.
type localRecordStore struct {
	*DB
	logger *logger.Logger
}

// NewLocalRecordStore constructs a [LocalRecordStore] on a migrated SQLite
// database.
func NewLocalRecordStore(db *DB, logger *logger.Logger) LocalRecordStore {
	return &localRecordStore{
		DB:     db,
		logger: logger,
	}
}

func (s *localRecordStore) GetPending(ctx context.Context, table models.TableName) ([]models.SyncableRecord, error) {
	return s.selectRecords(ctx, "localRecordStore.GetPending", sq.Eq{
		"table_name":  string(table),
		"sync_status": string(models.SyncStatusPending),
	})
}

func (s *localRecordStore) List(ctx context.Context, table models.TableName, includeDeleted bool) ([]models.SyncableRecord, error) {
	where := sq.And{sq.Eq{"table_name": string(table)}}
	if !includeDeleted {
		where = append(where, sq.Eq{"deleted_at": nil})
	}
	return s.selectRecords(ctx, "localRecordStore.List", where)
}

func (s *localRecordStore) Get(ctx context.Context, table models.TableName, id string) (models.SyncableRecord, error) {
	records, err := s.selectRecords(ctx, "localRecordStore.Get", sq.Eq{"table_name": string(table), "id": id})
	if err != nil {
		return models.SyncableRecord{}, err
	}
	if len(records) == 0 {
		return models.SyncableRecord{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, table, id)
	}
	return records[0], nil
}

func (s *localRecordStore) Exists(ctx context.Context, table models.TableName, id string) (bool, error) {
	_, err := s.Get(ctx, table, id)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Upsert recomputes the record hash before writing.
func (s *localRecordStore) Upsert(ctx context.Context, record models.SyncableRecord) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpsertLocalRecordQuery(s.builder(), record, utils.RecordHash(record.Payload, record.DeletedAt))
	if err != nil {
		return err
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "localRecordStore.Upsert").
			Str("table", string(record.Table)).
			Str("id", record.ID).
			Msg("failed to upsert record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *localRecordStore) MarkStatus(ctx context.Context, table models.TableName, id string, status models.SyncStatus) error {
	return s.updateRecord(ctx, "localRecordStore.MarkStatus", table, id, map[string]any{
		"sync_status": string(status),
	})
}

func (s *localRecordStore) MarkSynced(ctx context.Context, table models.TableName, id, hash string, version int64) error {
	affected, err := s.updateRecordIf(ctx, "localRecordStore.MarkSynced", table, id, sq.Eq{"hash": hash}, map[string]any{
		"version":     version,
		"sync_status": string(models.SyncStatusSynced),
	})
	if err != nil || affected > 0 {
		return err
	}

	// Edited after the push was read: the edit builds on what the server now
	// holds, so it inherits the assigned version and stays pending.
	affected, err = s.updateRecordIf(ctx, "localRecordStore.MarkSynced", table, id, nil, map[string]any{
		"version": sq.Expr("MAX(version, ?)", version),
	})
	if err != nil {
		return err
	}
	return s.changedOrMissing(ctx, table, id, affected)
}

func (s *localRecordStore) MarkConflict(ctx context.Context, table models.TableName, id, hash string) error {
	affected, err := s.updateRecordIf(ctx, "localRecordStore.MarkConflict", table, id, sq.Eq{"hash": hash}, map[string]any{
		"sync_status": string(models.SyncStatusConflict),
	})
	if err != nil || affected > 0 {
		return err
	}
	return s.changedOrMissing(ctx, table, id, 0)
}

func (s *localRecordStore) HardDelete(ctx context.Context, table models.TableName, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := s.builder().Delete(recordsTable).
		Where(sq.Eq{"table_name": string(table), "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "localRecordStore.HardDelete").Str("id", id).Msg("failed to delete record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// GetCursor returns "" for a table that was never pulled.
func (s *localRecordStore) GetCursor(ctx context.Context, table models.TableName) (string, error) {
	query, args, err := s.builder().Select("pull_cursor").
		From(syncMetaTable).
		Where(sq.Eq{"table_name": string(table)}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var cursor string
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localRecordStore.GetCursor").Str("table", string(table)).Msg("failed to read cursor")
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return cursor, nil
}

func (s *localRecordStore) SetCursor(ctx context.Context, table models.TableName, cursor string) error {
	query, args, err := buildSetCursorQuery(s.builder(), table, cursor)
	if err != nil {
		return err
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localRecordStore.SetCursor").Str("table", string(table)).Msg("failed to save cursor")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *localRecordStore) SaveConflict(ctx context.Context, conflict models.ConflictRecord) error {
	localData, err := encodeRecordColumn(conflict.LocalData)
	if err != nil {
		return err
	}
	serverData, err := encodeRecordColumn(conflict.ServerData)
	if err != nil {
		return err
	}

	query, args, err := buildSaveConflictQuery(s.builder(), conflict, localData, serverData)
	if err != nil {
		return err
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localRecordStore.SaveConflict").Str("id", conflict.ID).Msg("failed to save conflict")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *localRecordStore) GetConflict(ctx context.Context, id string) (models.ConflictRecord, error) {
	conflicts, err := s.selectConflicts(ctx, sq.Eq{"id": id})
	if err != nil {
		return models.ConflictRecord{}, err
	}
	if len(conflicts) == 0 {
		return models.ConflictRecord{}, fmt.Errorf("%w: %s", ErrConflictNotFound, id)
	}
	return conflicts[0], nil
}

func (s *localRecordStore) GetConflicts(ctx context.Context) ([]models.ConflictRecord, error) {
	return s.selectConflicts(ctx, nil)
}

func (s *localRecordStore) DeleteConflict(ctx context.Context, id string) error {
	query, args, err := s.builder().Delete(conflictsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localRecordStore.DeleteConflict").Str("id", id).Msg("failed to delete conflict")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *localRecordStore) selectRecords(ctx context.Context, fn string, where sq.Sqlizer) ([]models.SyncableRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectLocalRecordsQuery(s.builder(), where)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to create query")
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.SyncableRecord, 0, 16)
	for rows.Next() {
		rec, scanErr := scanLocalRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", fn).Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", fn).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

func (s *localRecordStore) updateRecord(ctx context.Context, fn string, table models.TableName, id string, set map[string]any) error {
	query, args, err := buildUpdateLocalRecordQuery(s.builder(), table, id, nil, set)
	if err != nil {
		return err
	}

	affected, err := s.execUpdate(ctx, fn, table, id, query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, table, id)
	}
	return nil
}

// updateRecordIf updates a pending record that also matches cond and reports
// how many rows changed.
func (s *localRecordStore) updateRecordIf(ctx context.Context, fn string, table models.TableName, id string, cond sq.Sqlizer, set map[string]any) (int64, error) {
	where := sq.And{sq.Eq{"sync_status": string(models.SyncStatusPending)}}
	if cond != nil {
		where = append(where, cond)
	}

	query, args, err := buildUpdateLocalRecordQuery(s.builder(), table, id, where, set)
	if err != nil {
		return 0, err
	}
	return s.execUpdate(ctx, fn, table, id, query, args)
}

func (s *localRecordStore) execUpdate(ctx context.Context, fn string, table models.TableName, id, query string, args []any) (int64, error) {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Str("table", string(table)).Str("id", id).Msg("failed to update record")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return affected, nil
}

// changedOrMissing turns a guarded update into [ErrRecordChanged], or into
// [ErrRecordNotFound] when the record is gone.
func (s *localRecordStore) changedOrMissing(ctx context.Context, table models.TableName, id string, affected int64) error {
	if affected == 0 {
		exists, err := s.Exists(ctx, table, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, table, id)
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrRecordChanged, table, id)
}

func (s *localRecordStore) selectConflicts(ctx context.Context, where sq.Sqlizer) ([]models.ConflictRecord, error) {
	log := logger.FromContext(ctx)

	builder := s.builder().Select(conflictColumns...).From(conflictsTable).OrderBy("detected_at", "id")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "localRecordStore.selectConflicts").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	conflicts := make([]models.ConflictRecord, 0)
	for rows.Next() {
		var (
			c                     models.ConflictRecord
			table, reason         string
			localData, serverData sql.NullString
		)
		if err = rows.Scan(&c.ID, &table, &localData, &serverData, &c.LocalVersion,
			&c.ServerVersion, &c.DetectedAt, &reason, &c.Message); err != nil {
			log.Err(err).Str("func", "localRecordStore.selectConflicts").Msg("failed to scan conflict row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		c.TableName = models.TableName(table)
		c.Reason = models.ConflictReason(reason)

		if c.LocalData, err = decodeRecordColumn(localData); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if c.ServerData, err = decodeRecordColumn(serverData); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		conflicts = append(conflicts, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return conflicts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocalRecord(row rowScanner) (models.SyncableRecord, error) {
	var (
		rec                             models.SyncableRecord
		table, status, payload          string
		deletedAt, createdAt, updatedAt sql.NullString
	)

	err := row.Scan(&table, &rec.ID, &rec.Version, &deletedAt, &status, &payload, &createdAt, &updatedAt, &rec.Hash)
	if err != nil {
		return models.SyncableRecord{}, err
	}

	rec.Table = models.TableName(table)
	rec.SyncStatus = models.SyncStatus(status)
	rec.Payload = json.RawMessage(payload)

	if rec.DeletedAt, err = parseTime(deletedAt); err != nil {
		return models.SyncableRecord{}, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.SyncableRecord{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.SyncableRecord{}, err
	}
	return rec, nil
}

// encodeRecordColumn stores one side of a conflict as JSON. SyncStatus and
// Hash are not part of the JSON form.
func encodeRecordColumn(rec *models.SyncableRecord) (any, error) {
	if rec == nil {
		return nil, nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}
	return string(data), nil
}

func decodeRecordColumn(s sql.NullString) (*models.SyncableRecord, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var rec models.SyncableRecord
	if err := json.Unmarshal([]byte(s.String), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
