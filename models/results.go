package models

// QuarantinedRecord is a pending record held back from a push because a
// required reference is missing.
type QuarantinedRecord struct {
	ID     string    `json:"id"`
	Table  TableName `json:"table"`
	Reason string    `json:"reason"`
}

// TableSyncStats counts the outcomes of one table in one cycle.
//
// Errors counts entries of the server's error map, Conflicts counts records
// newly parked in the conflict state for any reason.
type TableSyncStats struct {
	Pushed      int `json:"pushed"`
	Synced      int `json:"synced"`
	Conflicts   int `json:"conflicts"`
	Errors      int `json:"errors"`
	Quarantined int `json:"quarantined"`
	Pulled      int `json:"pulled"`
	Held        int `json:"held"`
}

// PushResult summarizes one push phase.
type PushResult struct {
	Tables      map[TableName]*TableSyncStats `json:"tables"`
	Quarantined []QuarantinedRecord           `json:"quarantined,omitempty"`
	// Errors holds per-record error messages keyed by record id.
	Errors map[string]string `json:"errors,omitempty"`
	// Flushed counts buffered local edits replayed after the batches.
	Flushed int `json:"flushed"`
}

// PullResult summarizes one pull phase.
type PullResult struct {
	Tables map[TableName]*TableSyncStats `json:"tables"`
}

// SyncResult is delivered to completion listeners after a cycle.
type SyncResult struct {
	Tables      map[TableName]*TableSyncStats `json:"tables"`
	Quarantined []QuarantinedRecord           `json:"quarantined,omitempty"`
	Errors      map[string]string             `json:"errors,omitempty"`
	Flushed     int                           `json:"flushed"`
}

// NewTableStats returns a stats map with an entry for every syncable table.
func NewTableStats() map[TableName]*TableSyncStats {
	stats := make(map[TableName]*TableSyncStats, len(SyncTables))
	for _, table := range SyncTables {
		stats[table] = &TableSyncStats{}
	}
	return stats
}

// Totals sums the per-table counters.
func (r SyncResult) Totals() TableSyncStats {
	var total TableSyncStats
	for _, s := range r.Tables {
		total.Pushed += s.Pushed
		total.Synced += s.Synced
		total.Conflicts += s.Conflicts
		total.Errors += s.Errors
		total.Quarantined += s.Quarantined
		total.Pulled += s.Pulled
		total.Held += s.Held
	}
	return total
}
