package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

type conflictResolver struct {
	store   store.LocalRecordStore
	trigger syncTrigger
	now     func() time.Time
	logger  *logger.Logger
}

// NewConflictResolver returns a ConflictResolver over localStore. trigger may
// be nil, in which case resolutions wait for the next scheduled cycle.
func NewConflictResolver(localStore store.LocalRecordStore, trigger syncTrigger, logger *logger.Logger) ConflictResolver {
	return &conflictResolver{
		store:   localStore,
		trigger: trigger,
		now:     time.Now,
		logger:  logger,
	}
}

func (r *conflictResolver) GetConflicts(ctx context.Context) ([]models.ConflictRecord, error) {
	return r.store.GetConflicts(ctx)
}

// Resolve settles the conflict of record id.
//
//   - keep_local: the local copy gets a version above both sides and is
//     queued for push.
//   - keep_server: the server copy replaces the local one and is marked
//     synced. A conflict without a server copy removes the local record.
//   - manual_merge: res.Fields are merged into the local payload, then
//     keep_local applies.
func (r *conflictResolver) Resolve(ctx context.Context, id string, res models.Resolution) error {
	conflict, err := r.store.GetConflict(ctx, id)
	if err != nil {
		return err
	}

	switch res.Strategy {
	case models.ResolutionKeepLocal:
		err = r.keepLocal(ctx, conflict, nil)
	case models.ResolutionKeepServer:
		err = r.keepServer(ctx, conflict)
	case models.ResolutionManualMerge:
		if len(res.Fields) == 0 {
			return fmt.Errorf("%w: manual merge needs at least one field", ErrInvalidDataProvided)
		}
		err = r.keepLocal(ctx, conflict, res.Fields)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownResolution, res.Strategy)
	}
	if err != nil {
		return err
	}

	if err = r.store.DeleteConflict(ctx, id); err != nil {
		return fmt.Errorf("remove resolved conflict %s: %w", id, err)
	}

	r.logger.Info().Str("table", string(conflict.TableName)).Str("id", id).Str("strategy", string(res.Strategy)).
		Msg("conflict resolved")

	if r.trigger != nil {
		r.trigger.Trigger(TriggerFollowUp)
	}
	return nil
}

func (r *conflictResolver) keepLocal(ctx context.Context, conflict models.ConflictRecord, fields map[string]any) error {
	local, err := r.currentLocal(ctx, conflict)
	if err != nil {
		return err
	}

	if len(fields) > 0 {
		merged, mergeErr := models.MergePayload(conflict.TableName, local.Payload, fields)
		if mergeErr != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataProvided, mergeErr)
		}
		local.Payload = merged
	}

	serverVersion := conflict.ServerVersion
	if conflict.ServerData != nil && models.IsAhead(conflict.ServerData.Version, serverVersion) {
		serverVersion = conflict.ServerData.Version
	}

	now := r.now().UTC()
	local.Version = models.NextVersion(local.Version, serverVersion)
	local.SyncStatus = models.SyncStatusPending
	local.UpdatedAt = &now

	if err = r.store.Upsert(ctx, local); err != nil {
		return fmt.Errorf("keep local %s/%s: %w", conflict.TableName, conflict.ID, err)
	}
	return nil
}

func (r *conflictResolver) keepServer(ctx context.Context, conflict models.ConflictRecord) error {
	if conflict.ServerData == nil {
		if err := r.store.HardDelete(ctx, conflict.TableName, conflict.ID); err != nil {
			return fmt.Errorf("drop local %s/%s: %w", conflict.TableName, conflict.ID, err)
		}
		return nil
	}

	server := *conflict.ServerData
	server.Table = conflict.TableName
	server.SyncStatus = models.SyncStatusSynced

	// The local copy may have moved past the snapshot; never go back in
	// version.
	if local, err := r.store.Get(ctx, conflict.TableName, conflict.ID); err == nil {
		if models.IsAhead(local.Version, server.Version) {
			server.Version = local.Version
		}
		if server.CreatedAt == nil {
			server.CreatedAt = local.CreatedAt
		}
	}

	if err := r.store.Upsert(ctx, server); err != nil {
		return fmt.Errorf("keep server %s/%s: %w", conflict.TableName, conflict.ID, err)
	}
	return nil
}

// currentLocal prefers the stored record over the conflict snapshot: edits
// made while the record sat in conflict are kept.
func (r *conflictResolver) currentLocal(ctx context.Context, conflict models.ConflictRecord) (models.SyncableRecord, error) {
	local, err := r.store.Get(ctx, conflict.TableName, conflict.ID)
	if err == nil {
		return local, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) || conflict.LocalData == nil {
		return models.SyncableRecord{}, err
	}

	snapshot := *conflict.LocalData
	snapshot.Table = conflict.TableName
	return snapshot, nil
}
