// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-money-keeper/models"
)

const (
	recordsTable   = "records"
	syncMetaTable  = "sync_meta"
	conflictsTable = "sync_conflicts"
)

var localRecordColumns = []string{
	"table_name", "id", "version", "deleted_at", "sync_status",
	"payload", "created_at", "updated_at", "hash",
}

var conflictColumns = []string{
	"id", "table_name", "local_data", "server_data", "local_version",
	"server_version", "detected_at", "reason", "message",
}

const upsertLocalRecordSuffix = `ON CONFLICT (table_name, id) DO UPDATE SET
	version = excluded.version,
	deleted_at = excluded.deleted_at,
	sync_status = excluded.sync_status,
	payload = excluded.payload,
	created_at = COALESCE(records.created_at, excluded.created_at),
	updated_at = excluded.updated_at,
	hash = excluded.hash`

func buildSelectLocalRecordsQuery(b sq.StatementBuilderType, where sq.Sqlizer) (string, []any, error) {
	query, args, err := b.Select(localRecordColumns...).
		From(recordsTable).
		Where(where).
		OrderBy("id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildUpsertLocalRecordQuery(b sq.StatementBuilderType, rec models.SyncableRecord, hash string) (string, []any, error) {
	query, args, err := b.Insert(recordsTable).
		Columns(localRecordColumns...).
		Values(
			string(rec.Table),
			rec.ID,
			rec.Version,
			formatTime(rec.DeletedAt),
			string(rec.SyncStatus),
			string(rec.Payload),
			formatTime(rec.CreatedAt),
			formatTime(rec.UpdatedAt),
			hash,
		).
		Suffix(upsertLocalRecordSuffix).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildUpdateLocalRecordQuery(b sq.StatementBuilderType, table models.TableName, id string, cond sq.Sqlizer, set map[string]any) (string, []any, error) {
	builder := b.Update(recordsTable).
		SetMap(set).
		Where(sq.Eq{"table_name": string(table), "id": id})
	if cond != nil {
		builder = builder.Where(cond)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSetCursorQuery(b sq.StatementBuilderType, table models.TableName, cursor string) (string, []any, error) {
	query, args, err := b.Insert(syncMetaTable).
		Columns("table_name", "pull_cursor").
		Values(string(table), cursor).
		Suffix("ON CONFLICT (table_name) DO UPDATE SET pull_cursor = excluded.pull_cursor").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSaveConflictQuery(b sq.StatementBuilderType, c models.ConflictRecord, localData, serverData any) (string, []any, error) {
	query, args, err := b.Insert(conflictsTable).
		Columns(conflictColumns...).
		Values(
			c.ID,
			string(c.TableName),
			localData,
			serverData,
			c.LocalVersion,
			c.ServerVersion,
			c.DetectedAt,
			string(c.Reason),
			c.Message,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
	table_name = excluded.table_name,
	local_data = excluded.local_data,
	server_data = excluded.server_data,
	local_version = excluded.local_version,
	server_version = excluded.server_version,
	detected_at = excluded.detected_at,
	reason = excluded.reason,
	message = excluded.message`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// Timestamps are stored as RFC 3339 text in UTC.
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
