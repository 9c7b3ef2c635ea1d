package validators

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-money-keeper/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldTable targets the table name of a request.
	FieldTable = "table"

	// FieldRecords targets the record list of a push request.
	FieldRecords = "records"

	// FieldID targets the id of a single pushed record.
	FieldID = "id"

	// FieldVersion targets the version of a single pushed record.
	FieldVersion = "version"

	// FieldPayload targets the payload of a single pushed record.
	FieldPayload = "payload"

	// FieldCursor targets the opaque cursor of a pull request.
	FieldCursor = "cursor"

	// FieldLimit targets the page size of a pull request.
	FieldLimit = "limit"

	// FieldIDs targets the id list of a fetch request.
	FieldIDs = "ids"
)

const (
	// MaxBatchRecords bounds the number of records accepted in one push.
	MaxBatchRecords = 1000

	// MaxPageLimit bounds the page size of a pull.
	MaxPageLimit = 1000

	// DefaultPageLimit is the page size used when a pull names none.
	DefaultPageLimit = 500

	maxIDLength = 64
)

// SyncRequestValidator validates push, pull and fetch requests.
type SyncRequestValidator struct{}

func NewSyncRequestValidator() Validator {
	return &SyncRequestValidator{}
}

// Validate dispatches on the concrete request type. Both values and pointers
// are accepted.
func (v *SyncRequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.PushRequest:
		return v.validatePushRequest(ctx, value, fields...)
	case *models.PushRequest:
		return v.validatePushRequest(ctx, *value, fields...)

	case models.PushRecord:
		return v.validatePushRecord(ctx, value, fields...)
	case *models.PushRecord:
		return v.validatePushRecord(ctx, *value, fields...)

	case models.PullRequest:
		return v.validatePullRequest(ctx, value, fields...)
	case *models.PullRequest:
		return v.validatePullRequest(ctx, *value, fields...)

	case models.FetchRequest:
		return v.validateFetchRequest(ctx, value, fields...)
	case *models.FetchRequest:
		return v.validateFetchRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncRequestValidator) validatePushRequest(ctx context.Context, req models.PushRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTable, FieldRecords}
	}

	for _, f := range fields {
		switch f {
		case FieldTable:
			if !req.Table.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidTable, req.Table)
			}
		case FieldRecords:
			if len(req.Records) == 0 {
				return ErrEmptyRecords
			}
			if len(req.Records) > MaxBatchRecords {
				return fmt.Errorf("%w: %d > %d", ErrTooManyRecords, len(req.Records), MaxBatchRecords)
			}

			seen := make(map[string]struct{}, len(req.Records))
			for i, rec := range req.Records {
				if err := v.validatePushRecord(ctx, rec, FieldID, FieldVersion); err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
				if _, dup := seen[rec.ID]; dup {
					return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
				}
				seen[rec.ID] = struct{}{}
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}

	return nil
}

func (v *SyncRequestValidator) validatePushRecord(_ context.Context, rec models.PushRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldVersion, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if !isValidRecordID(rec.ID) {
				return fmt.Errorf("%w: %q", ErrInvalidRecordID, rec.ID)
			}
		case FieldVersion:
			if rec.Version < 0 {
				return fmt.Errorf("%w: %d", ErrInvalidVersion, rec.Version)
			}
		case FieldPayload:
			if len(rec.Payload) == 0 {
				return ErrEmptyPayload
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}

	return nil
}

func (v *SyncRequestValidator) validatePullRequest(_ context.Context, req models.PullRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTable, FieldCursor, FieldLimit}
	}

	for _, f := range fields {
		switch f {
		case FieldTable:
			if !req.Table.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidTable, req.Table)
			}
		case FieldCursor:
			if req.Cursor == "" {
				continue
			}
			if n, err := strconv.ParseInt(req.Cursor, 10, 64); err != nil || n < 0 {
				return fmt.Errorf("%w: %q", ErrInvalidCursor, req.Cursor)
			}
		case FieldLimit:
			if req.Limit <= 0 || req.Limit > MaxPageLimit {
				return fmt.Errorf("%w: %d", ErrInvalidPageLimit, req.Limit)
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateFetchRequest(_ context.Context, req models.FetchRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTable, FieldIDs}
	}

	for _, f := range fields {
		switch f {
		case FieldTable:
			if !req.Table.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidTable, req.Table)
			}
		case FieldIDs:
			if len(req.IDs) == 0 {
				return ErrEmptyIDs
			}
			if len(req.IDs) > MaxBatchRecords {
				return fmt.Errorf("%w: %d > %d", ErrTooManyRecords, len(req.IDs), MaxBatchRecords)
			}
			for _, id := range req.IDs {
				if !isValidRecordID(id) {
					return fmt.Errorf("%w: %q", ErrInvalidRecordID, id)
				}
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}

	return nil
}

func isValidRecordID(id string) bool {
	return strings.TrimSpace(id) != "" && len(id) <= maxIDLength
}
