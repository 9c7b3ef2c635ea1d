// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validPushRecord(id string) models.PushRecord {
	return models.PushRecord{
		ID:      id,
		Version: 1,
		Payload: json.RawMessage(`{"name":"Cash","currency":"USD","opening_balance":"0"}`),
	}
}

func validPushRequest() models.PushRequest {
	return models.PushRequest{
		Table:   models.TableAccounts,
		Records: []models.PushRecord{validPushRecord("acc-1"), validPushRecord("acc-2")},
	}
}

// ---------------------------------------------------------------------------
// Validate dispatch
// ---------------------------------------------------------------------------

func TestSyncRequestValidator_UnsupportedType(t *testing.T) {
	v := NewSyncRequestValidator()
	assert.ErrorIs(t, v.Validate(context.Background(), "push"), ErrUnsupportedType)
}

func TestSyncRequestValidator_AcceptsPointers(t *testing.T) {
	v := NewSyncRequestValidator()
	ctx := context.Background()

	push := validPushRequest()
	assert.NoError(t, v.Validate(ctx, &push))

	rec := validPushRecord("acc-1")
	assert.NoError(t, v.Validate(ctx, &rec))

	pull := models.PullRequest{Table: models.TableAccounts, Limit: 10}
	assert.NoError(t, v.Validate(ctx, &pull))

	fetch := models.FetchRequest{Table: models.TableAccounts, IDs: []string{"acc-1"}}
	assert.NoError(t, v.Validate(ctx, &fetch))
}

func TestSyncRequestValidator_UnknownField(t *testing.T) {
	v := NewSyncRequestValidator()
	err := v.Validate(context.Background(), validPushRequest(), "colour")
	assert.ErrorIs(t, err, ErrUnknownField)
}

// ---------------------------------------------------------------------------
// PushRequest
// ---------------------------------------------------------------------------

func TestSyncRequestValidator_PushRequest(t *testing.T) {
	tooMany := make([]models.PushRecord, MaxBatchRecords+1)
	for i := range tooMany {
		tooMany[i] = validPushRecord(fmt.Sprintf("id-%d", i))
	}

	tests := []struct {
		name    string
		mutate  func(r *models.PushRequest)
		wantErr error
	}{
		{name: "valid", mutate: func(r *models.PushRequest) {}},
		{name: "unknown table", mutate: func(r *models.PushRequest) { r.Table = "budgets" }, wantErr: ErrInvalidTable},
		{name: "no records", mutate: func(r *models.PushRequest) { r.Records = nil }, wantErr: ErrEmptyRecords},
		{name: "too many records", mutate: func(r *models.PushRequest) { r.Records = tooMany }, wantErr: ErrTooManyRecords},
		{name: "blank id", mutate: func(r *models.PushRequest) { r.Records[0].ID = "  " }, wantErr: ErrInvalidRecordID},
		{name: "id too long", mutate: func(r *models.PushRequest) { r.Records[0].ID = strings.Repeat("a", 65) }, wantErr: ErrInvalidRecordID},
		{name: "negative version", mutate: func(r *models.PushRequest) { r.Records[1].Version = -1 }, wantErr: ErrInvalidVersion},
		{name: "duplicate id", mutate: func(r *models.PushRequest) { r.Records[1].ID = "acc-1" }, wantErr: ErrDuplicateID},
		// Payload content is judged per record by the service.
		{name: "empty payload passes", mutate: func(r *models.PushRequest) { r.Records[0].Payload = nil }},
	}

	v := NewSyncRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPushRequest()
			tt.mutate(&req)

			err := v.Validate(context.Background(), req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSyncRequestValidator_PushRequest_TableOnly(t *testing.T) {
	v := NewSyncRequestValidator()
	req := models.PushRequest{Table: models.TableTransactions}

	assert.NoError(t, v.Validate(context.Background(), req, FieldTable))
	assert.ErrorIs(t, v.Validate(context.Background(), req), ErrEmptyRecords)
}

// ---------------------------------------------------------------------------
// PushRecord
// ---------------------------------------------------------------------------

func TestSyncRequestValidator_PushRecord(t *testing.T) {
	v := NewSyncRequestValidator()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, validPushRecord("acc-1")))

	noPayload := validPushRecord("acc-1")
	noPayload.Payload = nil
	assert.ErrorIs(t, v.Validate(ctx, noPayload), ErrEmptyPayload)
	assert.NoError(t, v.Validate(ctx, noPayload, FieldID, FieldVersion))

	zeroVersion := validPushRecord("acc-1")
	zeroVersion.Version = 0
	assert.NoError(t, v.Validate(ctx, zeroVersion))
}

// ---------------------------------------------------------------------------
// PullRequest
// ---------------------------------------------------------------------------

func TestSyncRequestValidator_PullRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.PullRequest
		wantErr error
	}{
		{name: "first page", req: models.PullRequest{Table: models.TableAccounts, Limit: 100}},
		{name: "with cursor", req: models.PullRequest{Table: models.TableInboxItems, Cursor: "42", Limit: MaxPageLimit}},
		{name: "unknown table", req: models.PullRequest{Table: "x", Limit: 1}, wantErr: ErrInvalidTable},
		{name: "garbage cursor", req: models.PullRequest{Table: models.TableAccounts, Cursor: "abc", Limit: 1}, wantErr: ErrInvalidCursor},
		{name: "negative cursor", req: models.PullRequest{Table: models.TableAccounts, Cursor: "-3", Limit: 1}, wantErr: ErrInvalidCursor},
		{name: "zero limit", req: models.PullRequest{Table: models.TableAccounts}, wantErr: ErrInvalidPageLimit},
		{name: "limit too big", req: models.PullRequest{Table: models.TableAccounts, Limit: MaxPageLimit + 1}, wantErr: ErrInvalidPageLimit},
	}

	v := NewSyncRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// FetchRequest
// ---------------------------------------------------------------------------

func TestSyncRequestValidator_FetchRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.FetchRequest
		wantErr error
	}{
		{name: "valid", req: models.FetchRequest{Table: models.TableCategories, IDs: []string{"a", "b"}}},
		{name: "unknown table", req: models.FetchRequest{Table: "", IDs: []string{"a"}}, wantErr: ErrInvalidTable},
		{name: "no ids", req: models.FetchRequest{Table: models.TableCategories}, wantErr: ErrEmptyIDs},
		{name: "blank id", req: models.FetchRequest{Table: models.TableCategories, IDs: []string{"a", ""}}, wantErr: ErrInvalidRecordID},
	}

	v := NewSyncRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
