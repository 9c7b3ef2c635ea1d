package store

import (
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-money-keeper/models"
)

const syncRecordsTable = "sync_records"

var remoteRecordColumns = []string{
	"id", "version", "deleted_at", "payload", "created_at", "updated_at", "change_seq",
}

// lockUserChangesQuery takes the transaction-scoped advisory lock of a user.
// Without it two writes could draw sequence numbers 10 and 11 and commit 11
// first, letting a pull move its cursor past 10 before 10 is visible.
const lockUserChangesQuery = `SELECT pg_advisory_xact_lock($1)`

// buildApplyUpdateQuery updates the stored copy only when it is not ahead of
// the submitted version. The new version never goes backwards and always
// moves past the stored one.
func buildApplyUpdateQuery(b sq.StatementBuilderType, userID int64, table models.TableName, rec models.PushRecord) (string, []any, error) {
	query, args, err := b.Update(syncRecordsTable).
		Set("version", sq.Expr("GREATEST(version + 1, ?)", rec.Version)).
		Set("deleted_at", rec.DeletedAt).
		Set("payload", string(rec.Payload)).
		Set("updated_at", sq.Expr("NOW()")).
		Set("change_seq", sq.Expr("nextval('sync_change_seq')")).
		Where(sq.Eq{"user_id": userID, "table_name": string(table), "id": rec.ID}).
		Where(sq.LtOrEq{"version": rec.Version}).
		Suffix("RETURNING version").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildApplyInsertQuery(b sq.StatementBuilderType, userID int64, table models.TableName, rec models.PushRecord) (string, []any, error) {
	query, args, err := b.Insert(syncRecordsTable).
		Columns("user_id", "table_name", "id", "version", "deleted_at", "payload").
		Values(userID, string(table), rec.ID, max(rec.Version, 1), rec.DeletedAt, string(rec.Payload)).
		Suffix("ON CONFLICT (user_id, table_name, id) DO NOTHING RETURNING version").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildChangesSinceQuery(b sq.StatementBuilderType, userID int64, table models.TableName, cursor string, limit int) (string, []any, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return "", nil, err
	}

	builder := b.Select(remoteRecordColumns...).
		From(syncRecordsTable).
		Where(sq.Eq{"user_id": userID, "table_name": string(table)}).
		Where(sq.Gt{"change_seq": after}).
		OrderBy("change_seq")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildGetByIDsQuery(b sq.StatementBuilderType, userID int64, table models.TableName, ids []string) (string, []any, error) {
	query, args, err := b.Select(remoteRecordColumns...).
		From(syncRecordsTable).
		Where(sq.Eq{"user_id": userID, "table_name": string(table), "id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// parseCursor reads a cursor issued by [formatCursor]. The empty cursor
// starts from the beginning.
func parseCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	seq, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	return seq, nil
}

func formatCursor(seq int64) string {
	return strconv.FormatInt(seq, 10)
}
