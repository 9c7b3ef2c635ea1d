package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/mock"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestSyncService(t *testing.T) (SyncService, *mock.MockRemoteRecordRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRemoteRecordRepository(ctrl)
	return NewSyncService(repo, logger.Nop()), repo
}

func pushRecord(id string, version int64, payload string) models.PushRecord {
	return models.PushRecord{ID: id, Version: version, Payload: json.RawMessage(payload)}
}

// ─────────────────────────────────────────────
// Push
// ─────────────────────────────────────────────

func TestSyncService_Push_SortsOutcomes(t *testing.T) {
	svc, repo := newTestSyncService(t)
	ctx := context.Background()

	req := models.PushRequest{Table: models.TableTransactions, Records: []models.PushRecord{
		pushRecord("ok", 3, transactionJSON("acc", "1")),
		pushRecord("stale", 1, transactionJSON("acc", "1")),
		pushRecord("null-account", 1, transactionJSON("", "1")),
		pushRecord("garbage", 1, `{"amount":`),
		pushRecord("db-error", 1, transactionJSON("acc", "1")),
	}}

	dbErr := errors.New("deadlock detected")
	repo.EXPECT().ApplyWrite(gomock.Any(), int64(7), models.TableTransactions, req.Records[0]).Return(int64(3), true, nil)
	repo.EXPECT().ApplyWrite(gomock.Any(), int64(7), models.TableTransactions, req.Records[1]).Return(int64(4), false, nil)
	repo.EXPECT().ApplyWrite(gomock.Any(), int64(7), models.TableTransactions, req.Records[4]).Return(int64(0), false, dbErr)
	repo.EXPECT().ErrorCode(dbErr).Return(models.ErrorCodeTransient)

	result, err := svc.Push(ctx, 7, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok"}, result.SyncedIDs)
	assert.Equal(t, int64(3), result.Versions["ok"])
	assert.Equal(t, []string{"stale"}, result.ConflictIDs)

	assert.Equal(t, `null value in column "account_id" violates not-null constraint`, result.ErrorMap["null-account"])
	assert.Equal(t, models.ErrorCodeConstraintViolation, result.ErrorCodes["null-account"])
	assert.Equal(t, models.ErrorCodeInvalidPayload, result.ErrorCodes["garbage"])
	assert.Equal(t, "deadlock detected", result.ErrorMap["db-error"])
	assert.Equal(t, models.ErrorCodeTransient, result.ErrorCodes["db-error"])
}

func TestSyncService_Push_NoUser(t *testing.T) {
	svc, _ := newTestSyncService(t)

	_, err := svc.Push(context.Background(), 0, models.PushRequest{Table: models.TableAccounts})

	assert.ErrorIs(t, err, ErrValidationNoUserID)
}

func TestSyncService_Push_CancelledContext(t *testing.T) {
	svc, _ := newTestSyncService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Push(ctx, 7, models.PushRequest{Table: models.TableAccounts, Records: []models.PushRecord{
		pushRecord("a", 1, accountJSON("Cash")),
	}})

	assert.ErrorIs(t, err, context.Canceled)
}

// ─────────────────────────────────────────────
// Pull
// ─────────────────────────────────────────────

func TestSyncService_Pull_Pages(t *testing.T) {
	svc, repo := newTestSyncService(t)

	rows := []models.PulledRecord{
		{SyncableRecord: models.SyncableRecord{ID: "a"}, Cursor: "11"},
		{SyncableRecord: models.SyncableRecord{ID: "b"}, Cursor: "12"},
		{SyncableRecord: models.SyncableRecord{ID: "c"}, Cursor: "15"},
	}
	repo.EXPECT().ChangesSince(gomock.Any(), int64(7), models.TableAccounts, "10", 3).Return(rows, nil)

	resp, err := svc.Pull(context.Background(), 7, models.PullRequest{Table: models.TableAccounts, Cursor: "10", Limit: 2})
	require.NoError(t, err)

	assert.True(t, resp.HasMore)
	assert.Len(t, resp.Records, 2)
	assert.Equal(t, "12", resp.NextCursor)
}

func TestSyncService_Pull_EmptyKeepsCursor(t *testing.T) {
	svc, repo := newTestSyncService(t)
	repo.EXPECT().ChangesSince(gomock.Any(), int64(7), models.TableAccounts, "42", defaultPullLimit+1).Return(nil, nil)

	resp, err := svc.Pull(context.Background(), 7, models.PullRequest{Table: models.TableAccounts, Cursor: "42"})
	require.NoError(t, err)

	assert.False(t, resp.HasMore)
	assert.NotNil(t, resp.Records)
	assert.Empty(t, resp.Records)
	assert.Equal(t, "42", resp.NextCursor)
}

// ─────────────────────────────────────────────
// Fetch
// ─────────────────────────────────────────────

func TestSyncService_Fetch(t *testing.T) {
	svc, repo := newTestSyncService(t)
	repo.EXPECT().GetByIDs(gomock.Any(), int64(7), models.TableAccounts, []string{"a", "b"}).
		Return([]models.SyncableRecord{{ID: "a", Version: 2}}, nil)

	records, err := svc.Fetch(context.Background(), 7, models.FetchRequest{Table: models.TableAccounts, IDs: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].Version)

	empty, err := svc.Fetch(context.Background(), 7, models.FetchRequest{Table: models.TableAccounts})
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

// ─────────────────────────────────────────────
// SyncValidationService
// ─────────────────────────────────────────────

func TestSyncValidationService_RejectsBeforeInner(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mock.NewMockSyncService(ctrl)
	svc := NewSyncValidationService().Wrap(inner)
	ctx := context.Background()

	_, err := svc.Push(ctx, 7, models.PushRequest{Table: models.TableAccounts})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.ErrorIs(t, err, validators.ErrEmptyRecords)

	_, err = svc.Pull(ctx, 7, models.PullRequest{Table: "budgets", Limit: 10})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.ErrorIs(t, err, validators.ErrInvalidTable)

	_, err = svc.Fetch(ctx, 7, models.FetchRequest{Table: models.TableAccounts})
	assert.ErrorIs(t, err, validators.ErrEmptyIDs)
}

func TestSyncValidationService_PassesValidRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mock.NewMockSyncService(ctrl)
	svc := NewSyncValidationService().Wrap(inner)
	ctx := context.Background()

	push := models.PushRequest{Table: models.TableAccounts, Records: []models.PushRecord{pushRecord("a", 1, accountJSON("Cash"))}}
	pull := models.PullRequest{Table: models.TableAccounts, Cursor: "5", Limit: 100}
	fetch := models.FetchRequest{Table: models.TableAccounts, IDs: []string{"a"}}

	inner.EXPECT().Push(ctx, int64(7), push).Return(models.NewTableBatchResult(), nil)
	inner.EXPECT().Pull(ctx, int64(7), pull).Return(models.PullResponse{}, nil)
	inner.EXPECT().Fetch(ctx, int64(7), fetch).Return(nil, nil)

	_, err := svc.Push(ctx, 7, push)
	require.NoError(t, err)
	_, err = svc.Pull(ctx, 7, pull)
	require.NoError(t, err)
	_, err = svc.Fetch(ctx, 7, fetch)
	require.NoError(t, err)
}
