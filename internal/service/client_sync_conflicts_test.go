package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedConflict(t *testing.T, localStore store.LocalRecordStore, localVersion, serverVersion int64, withServer bool) models.ConflictRecord {
	t.Helper()
	ctx := context.Background()

	local := models.SyncableRecord{
		ID: "acc-1", Table: models.TableAccounts, Version: localVersion, SyncStatus: models.SyncStatusConflict,
		Payload: json.RawMessage(accountJSON("Local")),
	}
	require.NoError(t, localStore.Upsert(ctx, local))

	conflict := models.ConflictRecord{
		ID:            local.ID,
		TableName:     models.TableAccounts,
		LocalData:     &local,
		LocalVersion:  localVersion,
		ServerVersion: serverVersion,
		DetectedAt:    "2026-01-01T00:00:00Z",
		Reason:        models.ConflictReasonVersion,
	}
	if withServer {
		conflict.ServerData = &models.SyncableRecord{
			ID: local.ID, Table: models.TableAccounts, Version: serverVersion,
			Payload: json.RawMessage(accountJSON("Server")),
		}
	}
	require.NoError(t, localStore.SaveConflict(ctx, conflict))
	return conflict
}

func newTestResolver(t *testing.T) (ConflictResolver, store.LocalRecordStore, *recordingTrigger) {
	t.Helper()
	localStore := newTestLocalStore(t)
	trigger := &recordingTrigger{}
	return NewConflictResolver(localStore, trigger, logger.Nop()), localStore, trigger
}

// ── strategies ───────────────────────────────────────────────────────────────

func TestConflictResolver_KeepLocal(t *testing.T) {
	ctx := context.Background()
	resolver, localStore, trigger := newTestResolver(t)
	seedConflict(t, localStore, 2, 5, true)

	require.NoError(t, resolver.Resolve(ctx, "acc-1", models.KeepLocal()))

	rec, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), rec.Version)
	assert.Equal(t, models.SyncStatusPending, rec.SyncStatus)
	assert.Equal(t, "Local", payloadField(t, rec.Payload, "name"))

	_, err = localStore.GetConflict(ctx, "acc-1")
	assert.ErrorIs(t, err, store.ErrConflictNotFound)
	assert.Equal(t, []TriggerReason{TriggerFollowUp}, trigger.reasons)
}

func TestConflictResolver_KeepLocalWhenLocalIsAhead(t *testing.T) {
	ctx := context.Background()
	resolver, localStore, _ := newTestResolver(t)
	seedConflict(t, localStore, 9, 5, true)

	require.NoError(t, resolver.Resolve(ctx, "acc-1", models.KeepLocal()))

	rec, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Version)
}

func TestConflictResolver_KeepLocalUsesEditsMadeDuringConflict(t *testing.T) {
	ctx := context.Background()
	resolver, localStore, _ := newTestResolver(t)
	seedConflict(t, localStore, 2, 3, true)

	edited, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	require.NoError(t, err)
	edited.Payload = json.RawMessage(accountJSON("Edited later"))
	require.NoError(t, localStore.Upsert(ctx, edited))

	require.NoError(t, resolver.Resolve(ctx, "acc-1", models.KeepLocal()))

	rec, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Edited later", payloadField(t, rec.Payload, "name"))
}

func TestConflictResolver_KeepServer(t *testing.T) {
	ctx := context.Background()
	resolver, localStore, _ := newTestResolver(t)
	seedConflict(t, localStore, 2, 5, true)

	require.NoError(t, resolver.Resolve(ctx, "acc-1", models.KeepServer()))

	rec, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Version)
	assert.Equal(t, models.SyncStatusSynced, rec.SyncStatus)
	assert.Equal(t, "Server", payloadField(t, rec.Payload, "name"))
}

func TestConflictResolver_KeepServerNeverLowersVersion(t *testing.T) {
	ctx := context.Background()
	resolver, localStore, _ := newTestResolver(t)
	seedConflict(t, localStore, 7, 5, true)

	require.NoError(t, resolver.Resolve(ctx, "acc-1", models.KeepServer()))

	rec, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.Version)
	assert.Equal(t, "Server", payloadField(t, rec.Payload, "name"))
}

func TestConflictResolver_KeepServerWithoutServerCopyDropsRecord(t *testing.T) {
	ctx := context.Background()
	resolver, localStore, _ := newTestResolver(t)
	seedConflict(t, localStore, 1, 0, false)

	require.NoError(t, resolver.Resolve(ctx, "acc-1", models.KeepServer()))

	_, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestConflictResolver_ManualMerge(t *testing.T) {
	ctx := context.Background()
	resolver, localStore, _ := newTestResolver(t)
	seedConflict(t, localStore, 2, 4, true)

	require.NoError(t, resolver.Resolve(ctx, "acc-1", models.ManualMerge(map[string]any{"name": "Merged", "archived": true})))

	rec, err := localStore.Get(ctx, models.TableAccounts, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Version)
	assert.Equal(t, models.SyncStatusPending, rec.SyncStatus)
	assert.Equal(t, "Merged", payloadField(t, rec.Payload, "name"))
	assert.Equal(t, true, payloadField(t, rec.Payload, "archived"))
	assert.Equal(t, "EUR", payloadField(t, rec.Payload, "currency"))
}

// ── failures ─────────────────────────────────────────────────────────────────

func TestConflictResolver_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		resolution models.Resolution
		wantErr    error
	}{
		{name: "unknown strategy", resolution: models.Resolution{Strategy: "flip_a_coin"}, wantErr: ErrUnknownResolution},
		{name: "merge without fields", resolution: models.ManualMerge(nil), wantErr: ErrInvalidDataProvided},
		{name: "merge with bad field", resolution: models.ManualMerge(map[string]any{"opening_balance": "lots"}), wantErr: ErrInvalidDataProvided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, localStore, trigger := newTestResolver(t)
			seedConflict(t, localStore, 2, 4, true)

			err := resolver.Resolve(ctx, "acc-1", tt.resolution)

			require.ErrorIs(t, err, tt.wantErr)
			_, getErr := localStore.GetConflict(ctx, "acc-1")
			assert.NoError(t, getErr, "conflict must survive a failed resolution")
			assert.Empty(t, trigger.reasons)
		})
	}
}

func TestConflictResolver_UnknownConflict(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	err := resolver.Resolve(context.Background(), "nope", models.KeepLocal())

	assert.ErrorIs(t, err, store.ErrConflictNotFound)
}
