package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

const defaultPullLimit = validators.DefaultPageLimit

// syncService is the concrete implementation of SyncService backed by a
// RemoteRecordRepository.
type syncService struct {
	recordRepository store.RemoteRecordRepository

	logger *logger.Logger
}

// NewSyncService constructs a SyncService over recordRepository. Request
// shape is not checked here; wrap the result with NewSyncValidationService.
func NewSyncService(recordRepository store.RemoteRecordRepository, logger *logger.Logger) SyncService {
	return &syncService{
		recordRepository: recordRepository,
		logger:           logger,
	}
}

// Push implements SyncService.
//
// Each record is checked and written on its own. A record is accepted when
// the user has no stored copy or the submitted version is not behind the
// stored one; the repository assigns the new version. Anything else is a
// conflict. Payload and constraint problems go to the error map with a
// structured code, and so do database errors, classified by the repository.
//
// ctx cancellation aborts the batch; records not reached are absent from the
// result and stay pending on the client.
func (s *syncService) Push(ctx context.Context, userID int64, req models.PushRequest) (models.TableBatchResult, error) {
	if userID <= 0 {
		return models.TableBatchResult{}, ErrValidationNoUserID
	}

	log := logger.FromContext(ctx)
	result := models.NewTableBatchResult()

	for _, rec := range req.Records {
		if err := ctx.Err(); err != nil {
			return models.TableBatchResult{}, err
		}

		if message, code, ok := checkRecordPayload(req.Table, rec); !ok {
			result.ErrorMap[rec.ID] = message
			result.ErrorCodes[rec.ID] = code
			continue
		}

		version, accepted, err := s.recordRepository.ApplyWrite(ctx, userID, req.Table, rec)
		if err != nil {
			log.Err(err).Int64("user_id", userID).Str("table", string(req.Table)).Str("id", rec.ID).Msg("failed to apply record")
			result.ErrorMap[rec.ID] = err.Error()
			result.ErrorCodes[rec.ID] = s.recordRepository.ErrorCode(err)
			continue
		}

		if !accepted {
			result.ConflictIDs = append(result.ConflictIDs, rec.ID)
			continue
		}

		result.SyncedIDs = append(result.SyncedIDs, rec.ID)
		result.Versions[rec.ID] = version
	}

	log.Debug().Int64("user_id", userID).Str("table", string(req.Table)).
		Int("synced", len(result.SyncedIDs)).Int("conflicts", len(result.ConflictIDs)).Int("errors", len(result.ErrorMap)).
		Msg("push batch applied")

	return result, nil
}

// Pull implements SyncService. One extra row is read to tell whether another
// page follows.
func (s *syncService) Pull(ctx context.Context, userID int64, req models.PullRequest) (models.PullResponse, error) {
	if userID <= 0 {
		return models.PullResponse{}, ErrValidationNoUserID
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPullLimit
	}

	records, err := s.recordRepository.ChangesSince(ctx, userID, req.Table, req.Cursor, limit+1)
	if err != nil {
		return models.PullResponse{}, fmt.Errorf("read %s changes: %w", req.Table, err)
	}

	resp := models.PullResponse{Records: records, NextCursor: req.Cursor}
	if len(records) > limit {
		resp.Records = records[:limit]
		resp.HasMore = true
	}
	if resp.Records == nil {
		resp.Records = make([]models.PulledRecord, 0)
	}
	if n := len(resp.Records); n > 0 {
		resp.NextCursor = resp.Records[n-1].Cursor
	}

	return resp, nil
}

// Fetch implements SyncService.
func (s *syncService) Fetch(ctx context.Context, userID int64, req models.FetchRequest) ([]models.SyncableRecord, error) {
	if userID <= 0 {
		return nil, ErrValidationNoUserID
	}
	if len(req.IDs) == 0 {
		return make([]models.SyncableRecord, 0), nil
	}

	records, err := s.recordRepository.GetByIDs(ctx, userID, req.Table, req.IDs)
	if err != nil {
		return nil, fmt.Errorf("read %s records: %w", req.Table, err)
	}
	if records == nil {
		records = make([]models.SyncableRecord, 0)
	}
	return records, nil
}

// checkRecordPayload applies the schema rules the remote tables enforce:
// the payload must decode into its table's variant and NOT NULL references
// must be set. The message mirrors what PostgreSQL reports for the same
// violation.
func checkRecordPayload(table models.TableName, rec models.PushRecord) (string, models.ErrorCode, bool) {
	payload, err := models.DecodePayload(table, rec.Payload)
	if err != nil {
		return err.Error(), models.ErrorCodeInvalidPayload, false
	}

	if missing := models.MissingRequiredRefs(payload); len(missing) > 0 {
		return fmt.Sprintf("null value in column %q violates not-null constraint", missing[0].Column),
			models.ErrorCodeConstraintViolation, false
	}

	return "", "", true
}
