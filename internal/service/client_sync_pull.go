package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

const defaultPullPageSize = 500

// pullOutcome is what happened to one incoming record.
type pullOutcome int

const (
	pullApplied pullOutcome = iota
	// pullUnchanged means the local copy already matches.
	pullUnchanged
	// pullIgnored means the local copy is ahead.
	pullIgnored
	// pullHeld means the local copy has unsynced state and must not be
	// overwritten yet.
	pullHeld
	// pullSkipped means the incoming record is unusable.
	pullSkipped
)

// pullEngine applies remote changes to the local store.
type pullEngine struct {
	store    store.LocalRecordStore
	remote   adapter.RemoteAdapter
	locks    *SyncLockManager
	pageSize int
	// quarantined reports ids the push engine keeps back. May be nil.
	quarantined func(id string) bool

	mu sync.Mutex
	// held keeps incoming records that could not be applied, per table and id.
	// Only the newest copy of a record is kept.
	held map[models.TableName]map[string]models.PulledRecord
}

func newPullEngine(localStore store.LocalRecordStore, remote adapter.RemoteAdapter, locks *SyncLockManager, pageSize int) *pullEngine {
	if pageSize <= 0 {
		pageSize = defaultPullPageSize
	}

	return &pullEngine{
		store:    localStore,
		remote:   remote,
		locks:    locks,
		pageSize: pageSize,
		held:     make(map[models.TableName]map[string]models.PulledRecord),
	}
}

// Pull fetches and applies the changes of every table since its cursor.
func (e *pullEngine) Pull(ctx context.Context) (models.PullResult, error) {
	result := models.PullResult{Tables: models.NewTableStats()}

	for _, table := range models.SyncTables {
		if err := e.pullTable(ctx, table, result.Tables[table]); err != nil {
			return result, err
		}
	}

	return result, nil
}

// pullTable first retries the records held back by earlier pulls, then pages
// through the server's changes.
//
// The committed cursor only moves past records that were applied (or
// deliberately ignored). Once a record is held, the cursor stays pinned in
// front of it for the rest of the run, so after a restart the server
// redelivers it. Records after the pin are still applied; applying them a
// second time is a no-op. Quarantined records never pin the cursor: once
// fixed they are pushed, and a version conflict fetches the server copy.
func (e *pullEngine) pullTable(ctx context.Context, table models.TableName, stats *models.TableSyncStats) error {
	log := logger.FromContext(ctx)

	if err := e.retryHeld(ctx, table, stats); err != nil {
		return err
	}

	committed, err := e.store.GetCursor(ctx, table)
	if err != nil {
		return fmt.Errorf("read %s cursor: %w", table, err)
	}

	cursor := committed
	pinned := false

	for {
		resp, pullErr := e.remote.Pull(ctx, models.PullRequest{Table: table, Cursor: cursor, Limit: e.pageSize})
		if pullErr != nil {
			return fmt.Errorf("pull %s: %w", table, pullErr)
		}

		pageCursor := committed
		for _, incoming := range resp.Records {
			incoming.Table = table

			outcome, applyErr := e.apply(ctx, incoming)
			if applyErr != nil {
				return applyErr
			}

			switch outcome {
			case pullApplied:
				stats.Pulled++
			case pullHeld:
				stats.Held++
				e.hold(incoming)
				if e.quarantined != nil && e.quarantined(incoming.ID) {
					log.Debug().Str("table", string(table)).Str("id", incoming.ID).
						Msg("record held behind a quarantined local copy, cursor not pinned")
					break
				}
				if !pinned {
					log.Info().Str("table", string(table)).Str("id", incoming.ID).Str("cursor", pageCursor).
						Msg("record held, cursor pinned")
				}
				pinned = true
			case pullSkipped:
				stats.Errors++
			}

			if !pinned && incoming.Cursor != "" {
				pageCursor = incoming.Cursor
			}
		}

		next := resp.NextCursor
		if next == "" && len(resp.Records) > 0 {
			next = resp.Records[len(resp.Records)-1].Cursor
		}
		if !pinned && next != "" {
			pageCursor = next
		}

		if pageCursor != committed {
			if err = e.store.SetCursor(ctx, table, pageCursor); err != nil {
				return fmt.Errorf("save %s cursor: %w", table, err)
			}
			committed = pageCursor
		}

		if !resp.HasMore || len(resp.Records) == 0 || next == "" || next == cursor {
			return nil
		}
		cursor = next
	}
}

// retryHeld re-applies the records held back for table. Those that are still
// blocked stay held.
func (e *pullEngine) retryHeld(ctx context.Context, table models.TableName, stats *models.TableSyncStats) error {
	e.mu.Lock()
	pending := e.held[table]
	delete(e.held, table)
	e.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	records := slices.SortedFunc(maps.Values(pending), func(a, b models.PulledRecord) int {
		return compareCursors(a.Cursor, b.Cursor)
	})

	for _, rec := range records {
		outcome, err := e.apply(ctx, rec)
		if err != nil {
			e.holdAll(records)
			return err
		}
		switch outcome {
		case pullApplied:
			stats.Pulled++
		case pullHeld:
			e.hold(rec)
		}
	}

	return nil
}

// apply writes one incoming record unless the local copy must win.
func (e *pullEngine) apply(ctx context.Context, incoming models.PulledRecord) (pullOutcome, error) {
	log := logger.FromContext(ctx)
	rec := incoming.SyncableRecord

	payload, err := models.DecodePayload(rec.Table, rec.Payload)
	if err != nil {
		log.Err(err).Str("table", string(rec.Table)).Str("id", rec.ID).Msg("incoming record has an unusable payload, skipped")
		return pullSkipped, nil
	}
	if payload.Heal(rec.ID) {
		healed, encodeErr := models.EncodePayload(payload)
		if encodeErr != nil {
			return pullSkipped, nil
		}
		log.Debug().Str("table", string(rec.Table)).Str("id", rec.ID).Msg("healed legacy fields of incoming record")
		rec.Payload = healed
	}

	if e.locks.IsLocked(rec.ID) {
		return pullHeld, nil
	}

	local, err := e.store.Get(ctx, rec.Table, rec.ID)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		rec.SyncStatus = models.SyncStatusSynced
		if err = e.store.Upsert(ctx, rec); err != nil {
			return 0, fmt.Errorf("insert pulled %s/%s: %w", rec.Table, rec.ID, err)
		}
		return pullApplied, nil
	case err != nil:
		return 0, fmt.Errorf("read local %s/%s: %w", rec.Table, rec.ID, err)
	}

	if local.SyncStatus == models.SyncStatusPending || local.SyncStatus == models.SyncStatusConflict {
		return pullHeld, nil
	}
	if models.IsAhead(local.Version, rec.Version) {
		return pullIgnored, nil
	}
	if local.Version == rec.Version && local.Hash == utils.RecordHash(rec.Payload, rec.DeletedAt) {
		return pullUnchanged, nil
	}

	rec.SyncStatus = models.SyncStatusSynced
	if rec.CreatedAt == nil {
		rec.CreatedAt = local.CreatedAt
	}
	if err = e.store.Upsert(ctx, rec); err != nil {
		return 0, fmt.Errorf("update pulled %s/%s: %w", rec.Table, rec.ID, err)
	}
	return pullApplied, nil
}

func (e *pullEngine) hold(rec models.PulledRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	byID, ok := e.held[rec.Table]
	if !ok {
		byID = make(map[string]models.PulledRecord)
		e.held[rec.Table] = byID
	}
	if prev, exists := byID[rec.ID]; exists && models.IsAhead(prev.Version, rec.Version) {
		return
	}
	byID[rec.ID] = rec
}

func (e *pullEngine) holdAll(records []models.PulledRecord) {
	for _, rec := range records {
		e.hold(rec)
	}
}

// heldCount returns the number of records held across all tables.
func (e *pullEngine) heldCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, byID := range e.held {
		n += len(byID)
	}
	return n
}

func (e *pullEngine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.held = make(map[models.TableName]map[string]models.PulledRecord)
}

// compareCursors orders the decimal cursors issued by the remote store.
// Shorter strings are smaller numbers; equal lengths compare lexically.
func compareCursors(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
