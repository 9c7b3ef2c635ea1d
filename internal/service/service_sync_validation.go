package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

// SyncValidationService rejects malformed push, pull and fetch requests
// before they reach the wrapped SyncService.
type SyncValidationService struct {
	inner     SyncService
	validator validators.Validator
}

func NewSyncValidationService() SyncServiceWrapper {
	return &SyncValidationService{
		validator: validators.NewSyncRequestValidator(),
	}
}

func (v *SyncValidationService) Push(ctx context.Context, userID int64, req models.PushRequest) (models.TableBatchResult, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.TableBatchResult{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Push(ctx, userID, req)
}

func (v *SyncValidationService) Pull(ctx context.Context, userID int64, req models.PullRequest) (models.PullResponse, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.PullResponse{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Pull(ctx, userID, req)
}

func (v *SyncValidationService) Fetch(ctx context.Context, userID int64, req models.FetchRequest) ([]models.SyncableRecord, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Fetch(ctx, userID, req)
}

func (v *SyncValidationService) Wrap(wrapped SyncService) SyncService {
	v.inner = wrapped
	return v
}
