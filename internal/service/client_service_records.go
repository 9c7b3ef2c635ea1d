package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

type clientRecordService struct {
	store   store.LocalRecordStore
	locks   *SyncLockManager
	ids     utils.IDGenerator
	trigger syncTrigger
	now     func() time.Time
	logger  *logger.Logger
}

// NewClientRecordService returns a ClientRecordService backed by localStore.
// trigger may be nil, in which case mutations do not request a cycle.
func NewClientRecordService(localStore store.LocalRecordStore, locks *SyncLockManager, ids utils.IDGenerator, trigger syncTrigger, logger *logger.Logger) ClientRecordService {
	return &clientRecordService{
		store:   localStore,
		locks:   locks,
		ids:     ids,
		trigger: trigger,
		now:     time.Now,
		logger:  logger,
	}
}

func (s *clientRecordService) Create(ctx context.Context, table models.TableName, payload json.RawMessage) (models.SyncableRecord, error) {
	decoded, err := models.DecodePayload(table, payload)
	if err != nil {
		return models.SyncableRecord{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	canonical, err := models.EncodePayload(decoded)
	if err != nil {
		return models.SyncableRecord{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	now := s.now().UTC()
	rec := models.SyncableRecord{
		ID:         s.ids.Generate(),
		Table:      table,
		Version:    1,
		SyncStatus: models.SyncStatusPending,
		Payload:    canonical,
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}

	if err = s.store.Upsert(ctx, rec); err != nil {
		return models.SyncableRecord{}, fmt.Errorf("create record: %w", err)
	}

	s.logger.Debug().Str("table", string(table)).Str("id", rec.ID).Msg("record created")
	s.requestSync()
	return rec, nil
}

func (s *clientRecordService) Update(ctx context.Context, table models.TableName, id string, fields map[string]any) (models.SyncableRecord, error) {
	if len(fields) == 0 {
		return models.SyncableRecord{}, fmt.Errorf("%w: no fields to update", ErrInvalidDataProvided)
	}

	current, err := s.store.Get(ctx, table, id)
	if err != nil {
		return models.SyncableRecord{}, err
	}
	if current.IsDeleted() {
		return models.SyncableRecord{}, fmt.Errorf("%w: %s", ErrRecordDeleted, id)
	}
	// Fail fast on fields the payload cannot hold, even when the edit ends up
	// buffered.
	if _, err = models.MergePayload(table, current.Payload, fields); err != nil {
		return models.SyncableRecord{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	var updated models.SyncableRecord
	upd := models.BufferedUpdate{ID: id, TableName: table, UpdateData: fields}
	buffered, err := s.locks.ApplyOrBuffer(upd, func() error {
		var applyErr error
		updated, applyErr = applyLocalUpdate(ctx, s.store, upd, s.now())
		return applyErr
	})
	if err != nil {
		return models.SyncableRecord{}, fmt.Errorf("update record: %w", err)
	}

	if buffered {
		s.logger.Debug().Str("table", string(table)).Str("id", id).Msg("record locked by push, update buffered")
		return current, nil
	}

	s.requestSync()
	return updated, nil
}

func (s *clientRecordService) Delete(ctx context.Context, table models.TableName, id string) error {
	current, err := s.store.Get(ctx, table, id)
	if err != nil {
		return err
	}
	if current.IsDeleted() {
		return nil
	}

	upd := models.BufferedUpdate{ID: id, TableName: table, Delete: true}
	buffered, err := s.locks.ApplyOrBuffer(upd, func() error {
		_, applyErr := applyLocalUpdate(ctx, s.store, upd, s.now())
		return applyErr
	})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if buffered {
		s.logger.Debug().Str("table", string(table)).Str("id", id).Msg("record locked by push, delete buffered")
		return nil
	}

	s.requestSync()
	return nil
}

func (s *clientRecordService) Get(ctx context.Context, table models.TableName, id string) (models.SyncableRecord, error) {
	return s.store.Get(ctx, table, id)
}

func (s *clientRecordService) List(ctx context.Context, table models.TableName, includeDeleted bool) ([]models.SyncableRecord, error) {
	return s.store.List(ctx, table, includeDeleted)
}

func (s *clientRecordService) requestSync() {
	if s.trigger != nil {
		s.trigger.Trigger(TriggerLocalChange)
	}
}

// applyLocalUpdate writes upd to the local copy of its record.
//
// The record becomes pending unless it sits in conflict: conflicts are only
// left through the resolver, so the edit is kept but not queued for push.
// The version is left alone; the push decides which version to send.
func applyLocalUpdate(ctx context.Context, localStore store.LocalRecordStore, upd models.BufferedUpdate, now time.Time) (models.SyncableRecord, error) {
	rec, err := localStore.Get(ctx, upd.TableName, upd.ID)
	if err != nil {
		return models.SyncableRecord{}, err
	}

	if len(upd.UpdateData) > 0 {
		merged, mergeErr := models.MergePayload(upd.TableName, rec.Payload, upd.UpdateData)
		if mergeErr != nil {
			return models.SyncableRecord{}, mergeErr
		}
		rec.Payload = merged
	}

	now = now.UTC()
	if upd.Delete && rec.DeletedAt == nil {
		rec.DeletedAt = &now
	}
	rec.UpdatedAt = &now

	if rec.SyncStatus != models.SyncStatusConflict {
		rec.SyncStatus = models.SyncStatusPending
	}

	if err = localStore.Upsert(ctx, rec); err != nil {
		return models.SyncableRecord{}, err
	}
	return rec, nil
}

// replayBuffered applies every buffered update, unlocks ids and returns how
// many updates were applied. An update that fails for a transient reason stays
// buffered for the next flush; one that can never apply is dropped and logged.
func replayBuffered(ctx context.Context, localStore store.LocalRecordStore, locks *SyncLockManager, now time.Time, ids ...string) int {
	log := logger.FromContext(ctx)
	applied := 0

	locks.Release(func(upd models.BufferedUpdate) error {
		_, err := applyLocalUpdate(ctx, localStore, upd, now)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, store.ErrRecordNotFound):
			log.Warn().Str("table", string(upd.TableName)).Str("id", upd.ID).Msg("buffered update for a record that no longer exists, dropped")
		case errors.Is(err, models.ErrInvalidPayload):
			log.Err(err).Str("table", string(upd.TableName)).Str("id", upd.ID).Msg("buffered update no longer fits the record, dropped")
		default:
			log.Err(err).Str("table", string(upd.TableName)).Str("id", upd.ID).Msg("failed to replay buffered update, requeued")
			return err
		}
		return nil
	}, ids...)

	return applied
}
