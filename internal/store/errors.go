package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a record addressed by table and id
	// does not exist in the local store.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrConflictNotFound is returned when no unresolved conflict exists for
	// the requested record id.
	ErrConflictNotFound = errors.New("conflict was not found")

	// ErrRecordChanged is returned when a status transition finds the local
	// record no longer holds the content the transition was decided on.
	ErrRecordChanged = errors.New("record changed since it was read")

	// ErrInvalidCursor is returned when a pull cursor is not a change
	// sequence number issued by the remote store.
	ErrInvalidCursor = errors.New("invalid pull cursor")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrBeginningTransaction is returned when a database transaction cannot
	// be started.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommittingTransaction is returned when a database transaction cannot
	// be committed.
	ErrCommittingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan record row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan record rows")

	// ErrEncodingRecord is returned when a record or conflict cannot be
	// serialized into its column representation.
	ErrEncodingRecord = errors.New("failed to encode record")
)
