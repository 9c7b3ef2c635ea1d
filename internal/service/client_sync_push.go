// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

const (
	defaultPushBatchSize     = 100
	defaultMaxRecordAttempts = 5
)

// pushConfig tunes a pushEngine.
type pushConfig struct {
	BatchSize int
	// Timeout bounds each remote call. Zero means no extra bound.
	Timeout     time.Duration
	MaxAttempts int
}

// pushEngine sends pending local records to the remote store and records the
// per-record outcome.
type pushEngine struct {
	store  store.LocalRecordStore
	remote adapter.RemoteAdapter
	locks  *SyncLockManager
	cfg    pushConfig
	now    func() time.Time

	mu sync.Mutex
	// attempts counts consecutive retryable failures per id.
	attempts map[string]int
	// warned holds the quarantined ids. Each is reported at warn level once.
	warned map[string]struct{}
}

func newPushEngine(localStore store.LocalRecordStore, remote adapter.RemoteAdapter, locks *SyncLockManager, cfg pushConfig) *pushEngine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultPushBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxRecordAttempts
	}

	return &pushEngine{
		store:    localStore,
		remote:   remote,
		locks:    locks,
		cfg:      cfg,
		now:      time.Now,
		attempts: make(map[string]int),
		warned:   make(map[string]struct{}),
	}
}

// parkedRecord is a record about to be moved to the conflict state.
type parkedRecord struct {
	id      string
	reason  models.ConflictReason
	message string
}

// Push drains the pending records of every table in SyncTables order.
//
// A transport failure stops the push and is returned; records of the failed
// batch and of every later batch stay pending. Per-record outcomes never fail
// the push.
func (e *pushEngine) Push(ctx context.Context) (models.PushResult, error) {
	result := models.PushResult{
		Tables: models.NewTableStats(),
		Errors: make(map[string]string),
	}

	for _, table := range models.SyncTables {
		if err := e.pushTable(ctx, table, &result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (e *pushEngine) pushTable(ctx context.Context, table models.TableName, result *models.PushResult) error {
	pending, err := e.store.GetPending(ctx, table)
	if err != nil {
		return fmt.Errorf("read pending %s records: %w", table, err)
	}
	if len(pending) == 0 {
		return nil
	}

	ready := make([]string, 0, len(pending))
	for _, rec := range pending {
		reason, ok, checkErr := e.validate(ctx, table, rec)
		if checkErr != nil {
			return checkErr
		}
		if !ok {
			e.quarantine(ctx, table, rec.ID, reason, result)
			continue
		}
		ready = append(ready, rec.ID)
	}

	for batch := range slices.Chunk(ready, e.cfg.BatchSize) {
		if err = e.pushBatch(ctx, table, batch, result); err != nil {
			return err
		}
	}

	return nil
}

// pushBatch locks ids, re-reads them so edits that landed before the lock
// are included, sends them and applies the outcome. Before it returns the
// buffer is replayed and the ids unlocked in one step.
func (e *pushEngine) pushBatch(ctx context.Context, table models.TableName, ids []string, result *models.PushResult) error {
	log := logger.FromContext(ctx)
	stats := result.Tables[table]

	e.locks.Lock(ids...)
	defer func() {
		result.Flushed += replayBuffered(ctx, e.store, e.locks, e.now(), ids...)
	}()

	records := make(map[string]models.SyncableRecord, len(ids))
	req := models.PushRequest{Table: table, Records: make([]models.PushRecord, 0, len(ids))}

	for _, id := range ids {
		rec, err := e.store.Get(ctx, table, id)
		if errors.Is(err, store.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s/%s before push: %w", table, id, err)
		}
		if rec.SyncStatus != models.SyncStatusPending {
			continue
		}

		reason, ok, err := e.validate(ctx, table, rec)
		if err != nil {
			return err
		}
		if !ok {
			e.quarantine(ctx, table, id, reason, result)
			continue
		}

		records[id] = rec
		req.Records = append(req.Records, models.PushRecord{
			ID:        rec.ID,
			Version:   rec.Version,
			DeletedAt: rec.DeletedAt,
			Payload:   rec.Payload,
		})
	}

	if len(req.Records) == 0 {
		return nil
	}
	stats.Pushed += len(req.Records)

	pushCtx, cancel := e.withTimeout(ctx)
	batch, err := e.remote.Push(pushCtx, req)
	cancel()
	if err != nil {
		log.Err(err).Str("table", string(table)).Int("records", len(req.Records)).Msg("push batch failed, records stay pending")
		return fmt.Errorf("push %d %s records: %w", len(req.Records), table, err)
	}

	e.applyBatchResult(ctx, table, records, batch, result)
	return nil
}

func (e *pushEngine) applyBatchResult(ctx context.Context, table models.TableName, records map[string]models.SyncableRecord, batch models.TableBatchResult, result *models.PushResult) {
	log := logger.FromContext(ctx)
	stats := result.Tables[table]
	seen := make(map[string]struct{}, len(records))

	for _, id := range batch.SyncedIDs {
		rec, ok := records[id]
		if !ok {
			continue
		}
		seen[id] = struct{}{}

		version := rec.Version + 1
		if assigned, found := batch.Versions[id]; found && assigned > 0 {
			version = assigned
		}
		if models.IsAhead(rec.Version, version) {
			version = rec.Version
		}

		err := e.store.MarkSynced(ctx, table, id, rec.Hash, version)
		switch {
		case errors.Is(err, store.ErrRecordChanged):
			log.Info().Str("table", string(table)).Str("id", id).Int64("version", version).
				Msg("record edited during push, stays pending")
		case err != nil:
			log.Err(err).Str("table", string(table)).Str("id", id).Msg("failed to mark record synced")
			result.Errors[id] = err.Error()
			continue
		default:
			stats.Synced++
		}

		if err = e.store.DeleteConflict(ctx, id); err != nil {
			log.Err(err).Str("table", string(table)).Str("id", id).Msg("failed to drop stale conflict")
		}
		e.clearAttempts(id)
	}

	var parked []parkedRecord
	for _, id := range batch.ConflictIDs {
		if _, ok := records[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		parked = append(parked, parkedRecord{id: id, reason: models.ConflictReasonVersion})
	}

	errorIDs := slices.Sorted(maps.Keys(batch.ErrorMap))
	for _, id := range errorIDs {
		if _, ok := records[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		message := batch.ErrorMap[id]
		stats.Errors++
		result.Errors[id] = message

		class := ClassifyRecordError(batch.ErrorCodes[id], message)
		if class == errorTerminal {
			parked = append(parked, parkedRecord{id: id, reason: models.ConflictReasonRejected, message: message})
			continue
		}

		attempts := e.bumpAttempts(id)
		if attempts >= e.cfg.MaxAttempts {
			log.Warn().Str("table", string(table)).Str("id", id).Int("attempts", attempts).Str("error", message).
				Msg("record keeps failing, parking it as a conflict")
			parked = append(parked, parkedRecord{
				id:      id,
				reason:  models.ConflictReasonRejected,
				message: fmt.Sprintf("%s (gave up after %d attempts)", message, attempts),
			})
			continue
		}
		log.Info().Str("table", string(table)).Str("id", id).Int("attempts", attempts).Str("error", message).
			Msg("record rejected with a retryable error, stays pending")
	}

	for id := range records {
		if _, ok := seen[id]; !ok {
			log.Warn().Str("table", string(table)).Str("id", id).Msg("record missing from batch result, stays pending")
		}
	}

	e.park(ctx, table, records, parked, result)
}

// park fetches the server copies of parked records and moves the records to
// the conflict state. When the server copies cannot be fetched, version
// conflicts stay pending for the next cycle while rejected records are
// parked without a server copy. A record edited since it was sent stays
// pending either way.
func (e *pushEngine) park(ctx context.Context, table models.TableName, records map[string]models.SyncableRecord, parked []parkedRecord, result *models.PushResult) {
	if len(parked) == 0 {
		return
	}

	log := logger.FromContext(ctx)
	stats := result.Tables[table]

	ids := make([]string, 0, len(parked))
	for _, p := range parked {
		ids = append(ids, p.id)
	}

	fetchCtx, cancel := e.withTimeout(ctx)
	serverCopies, err := e.remote.Fetch(fetchCtx, models.FetchRequest{Table: table, IDs: ids})
	cancel()
	if err != nil {
		log.Err(err).Str("table", string(table)).Strs("ids", ids).Msg("failed to fetch server copies")

		rejected := parked[:0:0]
		for _, p := range parked {
			if p.reason == models.ConflictReasonRejected {
				rejected = append(rejected, p)
				continue
			}
			result.Errors[p.id] = fmt.Sprintf("conflict detected but server copy unavailable: %v", err)
		}
		parked = rejected
	}

	byID := make(map[string]models.SyncableRecord, len(serverCopies))
	for _, rec := range serverCopies {
		byID[rec.ID] = rec
	}

	detectedAt := e.now().UTC().Format(time.RFC3339)
	for _, p := range parked {
		local := records[p.id]
		conflict := models.ConflictRecord{
			ID:           p.id,
			TableName:    table,
			LocalData:    &local,
			LocalVersion: local.Version,
			DetectedAt:   detectedAt,
			Reason:       p.reason,
			Message:      p.message,
		}
		if server, ok := byID[p.id]; ok {
			server.Table = table
			conflict.ServerData = &server
			conflict.ServerVersion = server.Version
		}

		if err = e.store.SaveConflict(ctx, conflict); err != nil {
			log.Err(err).Str("table", string(table)).Str("id", p.id).Msg("failed to save conflict")
			continue
		}
		if err = e.store.MarkConflict(ctx, table, p.id, local.Hash); err != nil {
			if errors.Is(err, store.ErrRecordChanged) {
				log.Info().Str("table", string(table)).Str("id", p.id).Msg("record edited during push, stays pending")
			} else {
				log.Err(err).Str("table", string(table)).Str("id", p.id).Msg("failed to mark record as conflict")
			}
			if dropErr := e.store.DeleteConflict(ctx, p.id); dropErr != nil {
				log.Err(dropErr).Str("table", string(table)).Str("id", p.id).Msg("failed to drop unused conflict")
			}
			continue
		}

		e.clearAttempts(p.id)
		stats.Conflicts++
		log.Warn().Str("table", string(table)).Str("id", p.id).Str("reason", string(p.reason)).
			Int64("local_version", conflict.LocalVersion).Int64("server_version", conflict.ServerVersion).
			Msg("record parked as conflict")
	}
}

// validate reports whether rec may be pushed. A false result carries the
// quarantine reason. The error is only set when the local store itself
// fails.
func (e *pushEngine) validate(ctx context.Context, table models.TableName, rec models.SyncableRecord) (string, bool, error) {
	payload, err := models.DecodePayload(table, rec.Payload)
	if err != nil {
		return err.Error(), false, nil
	}

	if missing := models.MissingRequiredRefs(payload); len(missing) > 0 {
		return fmt.Sprintf("required reference %s is null", missing[0].Column), false, nil
	}

	for _, ref := range payload.RequiredRefs() {
		exists, existsErr := e.store.Exists(ctx, ref.Table, ref.ID)
		if existsErr != nil {
			return "", false, fmt.Errorf("check reference %s of %s/%s: %w", ref.Column, table, rec.ID, existsErr)
		}
		if !exists {
			return fmt.Sprintf("%s references unknown %s record %s", ref.Column, ref.Table, ref.ID), false, nil
		}
	}

	e.mu.Lock()
	delete(e.warned, rec.ID)
	e.mu.Unlock()

	return "", true, nil
}

func (e *pushEngine) quarantine(ctx context.Context, table models.TableName, id, reason string, result *models.PushResult) {
	result.Quarantined = append(result.Quarantined, models.QuarantinedRecord{ID: id, Table: table, Reason: reason})
	result.Tables[table].Quarantined++

	e.mu.Lock()
	_, warned := e.warned[id]
	e.warned[id] = struct{}{}
	e.mu.Unlock()

	log := logger.FromContext(ctx)
	if warned {
		log.Debug().Str("table", string(table)).Str("id", id).Str("reason", reason).Msg("record still quarantined")
		return
	}
	log.Warn().Str("table", string(table)).Str("id", id).Str("reason", reason).Msg("record quarantined, not pushed")
}

// isQuarantined reports whether id failed local validation on its last push.
func (e *pushEngine) isQuarantined(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.warned[id]
	return ok
}

func (e *pushEngine) bumpAttempts(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attempts[id]++
	return e.attempts[id]
}

func (e *pushEngine) clearAttempts(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.attempts, id)
}

func (e *pushEngine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attempts = make(map[string]int)
	e.warned = make(map[string]struct{})
}

func (e *pushEngine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.Timeout)
}
