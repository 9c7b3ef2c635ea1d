package models

import "errors"

var (
	// ErrUnknownTable is returned for a table name outside SyncTables.
	ErrUnknownTable = errors.New("unknown table")
	// ErrInvalidPayload is returned when a payload does not decode into its
	// table's variant.
	ErrInvalidPayload = errors.New("invalid payload")
)
