package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidTable     = errors.New("invalid table")
	ErrEmptyRecords     = errors.New("records list cannot be empty")
	ErrTooManyRecords   = errors.New("too many records in one batch")
	ErrInvalidRecordID  = errors.New("invalid record id")
	ErrDuplicateID      = errors.New("duplicate record id in batch")
	ErrInvalidVersion   = errors.New("invalid version")
	ErrEmptyPayload     = errors.New("payload is required")
	ErrEmptyIDs         = errors.New("IDs list cannot be empty")
	ErrInvalidPageLimit = errors.New("invalid page limit")
	ErrInvalidCursor    = errors.New("invalid cursor")
)
