// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-money-keeper/internal/workers"
	"github.com/MKhiriev/go-money-keeper/models"
)

// ClientRecordService performs local mutations on syncable records.
//
// Every mutation lands in the local store as pending and asks the
// orchestrator for a cycle. A mutation against a record that is part of an
// in-flight push is buffered and replayed once the push settles.
type ClientRecordService interface {
	// Create stores a new record with a client-generated id at version 1.
	// The payload must decode into the table's variant; required references
	// are checked at push time, not here.
	Create(ctx context.Context, table models.TableName, payload json.RawMessage) (models.SyncableRecord, error)

	// Update merges fields into the record's payload. The returned record is
	// the stored state; when the update was buffered it does not include the
	// new fields yet.
	Update(ctx context.Context, table models.TableName, id string, fields map[string]any) (models.SyncableRecord, error)

	// Delete soft-deletes the record. The tombstone is synced like any edit.
	Delete(ctx context.Context, table models.TableName, id string) error

	// Get returns one record, including soft-deleted ones.
	Get(ctx context.Context, table models.TableName, id string) (models.SyncableRecord, error)

	// List returns the records of a table ordered by id.
	List(ctx context.Context, table models.TableName, includeDeleted bool) ([]models.SyncableRecord, error)
}

// ConflictResolver lists and settles records parked in the conflict state.
type ConflictResolver interface {
	// GetConflicts returns every unresolved conflict, oldest first.
	GetConflicts(ctx context.Context) ([]models.ConflictRecord, error)

	// Resolve applies res to the conflict of record id, removes the conflict
	// entry and schedules a follow-up cycle.
	Resolve(ctx context.Context, id string, res models.Resolution) error
}

// SyncOrchestrator drives push, pull and buffer flush cycles.
//
// Run serves triggers, the periodic timer and the retry backoff until its
// context is cancelled. RunCycle performs one cycle synchronously and may be
// called without Run, e.g. by a one-shot CLI command.
type SyncOrchestrator interface {
	workers.Worker

	// Trigger asks for a cycle. Requests made while one is pending are
	// coalesced.
	Trigger(reason TriggerReason)

	// RunCycle runs one cycle now. It returns ErrSyncInProgress if another
	// cycle holds the engine.
	RunCycle(ctx context.Context) (models.SyncResult, error)

	// State reports what the engine is doing.
	State() SyncState

	// ResetSession drops locks, buffered edits, held pull records, failure
	// counters and backoff. Call it on logout or user switch.
	ResetSession()

	// OnSyncComplete registers a listener for successful cycles.
	OnSyncComplete(fn func(models.SyncResult))

	// OnSyncError registers a listener for failed cycles.
	OnSyncError(fn func(error))

	// OnConflictsChanged registers a listener called whenever the set of
	// unresolved conflict ids changes.
	OnConflictsChanged(fn func([]models.ConflictRecord))
}

// syncTrigger is the part of the orchestrator that local mutations and
// conflict resolutions need.
type syncTrigger interface {
	Trigger(reason TriggerReason)
}
