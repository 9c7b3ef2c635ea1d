package models

import (
	"encoding/json"
	"time"
)

// ConflictReason tells why a record was moved to [SyncStatusConflict].
type ConflictReason string

const (
	// ConflictReasonVersion means the server holds a newer version.
	ConflictReasonVersion ConflictReason = "version_conflict"
	// ConflictReasonRejected means the server refused the record for a reason
	// that retrying cannot fix (constraint violation, malformed payload).
	ConflictReasonRejected ConflictReason = "rejected"
)

// ConflictRecord describes one unresolved conflict.
type ConflictRecord struct {
	ID            string          `json:"id"`
	TableName     TableName       `json:"table_name"`
	LocalData     *SyncableRecord `json:"local_data"`
	ServerData    *SyncableRecord `json:"server_data,omitempty"`
	LocalVersion  int64           `json:"local_version"`
	ServerVersion int64           `json:"server_version"`
	// DetectedAt is informational only (ISO-8601).
	DetectedAt string         `json:"detected_at"`
	Reason     ConflictReason `json:"reason"`
	Message    string         `json:"message,omitempty"`
}

// BufferedUpdate is a local mutation captured while its record was locked.
type BufferedUpdate struct {
	ID         string         `json:"id"`
	TableName  TableName      `json:"table_name"`
	UpdateData map[string]any `json:"update_data,omitempty"`
	// Delete marks a buffered soft delete. It survives later buffered field
	// updates for the same id.
	Delete    bool      `json:"delete,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorCode is the structured category the remote store attaches to each
// entry of TableBatchResult.ErrorMap.
type ErrorCode string

const (
	ErrorCodeConstraintViolation ErrorCode = "constraint_violation"
	ErrorCodeInvalidPayload      ErrorCode = "invalid_payload"
	ErrorCodeTransient           ErrorCode = "transient"
	ErrorCodeUnknown             ErrorCode = "unknown"
)

// PushRecord is one (id, version, payload) tuple of a batch upsert.
type PushRecord struct {
	ID        string          `json:"id"`
	Version   int64           `json:"version"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// PushRequest is the body of a per-table batch upsert.
type PushRequest struct {
	Table   TableName    `json:"table"`
	Records []PushRecord `json:"records"`
}

// TableBatchResult is the per-record outcome of a batch upsert.
//
// SyncedIDs, ConflictIDs and ErrorMap are the whole contract; ErrorCodes and
// Versions are optional refinements a client must tolerate being absent.
type TableBatchResult struct {
	SyncedIDs   []string             `json:"synced_ids"`
	ConflictIDs []string             `json:"conflict_ids"`
	ErrorMap    map[string]string    `json:"error_map"`
	ErrorCodes  map[string]ErrorCode `json:"error_codes,omitempty"`
	Versions    map[string]int64     `json:"versions,omitempty"`
}

// NewTableBatchResult returns a result with non-nil collections.
func NewTableBatchResult() TableBatchResult {
	return TableBatchResult{
		SyncedIDs:   make([]string, 0),
		ConflictIDs: make([]string, 0),
		ErrorMap:    make(map[string]string),
		ErrorCodes:  make(map[string]ErrorCode),
		Versions:    make(map[string]int64),
	}
}

// PullRequest asks for the changes of one table after Cursor.
type PullRequest struct {
	Table  TableName `json:"table"`
	Cursor string    `json:"cursor"`
	Limit  int       `json:"limit"`
}

// PulledRecord is a changed record together with the cursor position right
// after it.
type PulledRecord struct {
	SyncableRecord
	Cursor string `json:"cursor"`
}

// PullResponse is one page of changes, ordered by cursor. Soft-deleted rows
// are included so deletions propagate.
type PullResponse struct {
	Records    []PulledRecord `json:"records"`
	NextCursor string         `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// FetchRequest asks for the current server copies of specific records.
type FetchRequest struct {
	Table TableName `json:"table"`
	IDs   []string  `json:"ids"`
}
