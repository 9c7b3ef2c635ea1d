// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TableName identifies one syncable table.
type TableName string

const (
	TableAccounts     TableName = "accounts"
	TableCategories   TableName = "categories"
	TableTransactions TableName = "transactions"
	TableInboxItems   TableName = "inbox_items"
)

// SyncTables lists every syncable table in push order: tables that are
// referenced by foreign keys come before the tables that reference them.
var SyncTables = []TableName{
	TableAccounts,
	TableCategories,
	TableTransactions,
	TableInboxItems,
}

// Valid reports whether t is one of [SyncTables].
func (t TableName) Valid() bool {
	for _, table := range SyncTables {
		if t == table {
			return true
		}
	}
	return false
}

// ParseTableName converts s into a [TableName], returning
// [ErrUnknownTable] for anything outside [SyncTables].
func ParseTableName(s string) (TableName, error) {
	t := TableName(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
	}
	return t, nil
}

// SyncStatus is the local-only synchronization state of a record.
type SyncStatus string

const (
	// SyncStatusPending marks a record with local changes not yet accepted by
	// the remote store.
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSynced marks a record that matches the last known server copy.
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusConflict is terminal until the user resolves it. Records in
	// this state are never picked up by the push loop.
	SyncStatusConflict SyncStatus = "conflict"
)

// SyncableRecord is the envelope shared by every row of every syncable table.
//
// Version is the only field that orders two copies of the same record.
// CreatedAt and UpdatedAt are advisory and never take part in sync decisions.
type SyncableRecord struct {
	ID         string          `json:"id"`
	Table      TableName       `json:"table"`
	Version    int64           `json:"version"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty"`
	SyncStatus SyncStatus      `json:"-"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`

	// Hash is a local fingerprint of Payload and DeletedAt used to skip
	// no-op writes.
	Hash string `json:"-"`
}

// IsDeleted reports whether the record carries a soft-delete marker.
func (r SyncableRecord) IsDeleted() bool {
	return r.DeletedAt != nil
}

// IsAhead reports whether a copy at version a is ahead of a copy at version b.
// Every ordering and conflict decision in the sync engine goes through this
// function.
func IsAhead(a, b int64) bool {
	return a > b
}

// NextVersion returns the version a record must carry to overwrite a server
// copy at serverVersion, given that the local copy is at localVersion.
func NextVersion(localVersion, serverVersion int64) int64 {
	if IsAhead(localVersion, serverVersion) {
		return localVersion + 1
	}
	return serverVersion + 1
}
