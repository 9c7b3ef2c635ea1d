package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainTriggers(o *syncOrchestrator) {
	for {
		select {
		case <-o.triggers:
		default:
			return
		}
	}
}

// ── RunCycle ─────────────────────────────────────────────────────────────────

func TestOrchestrator_RunCycleWhileBusySchedulesFollowUp(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	drainTriggers(d.orch)

	d.orch.cycle.Lock()
	_, err := d.orch.RunCycle(context.Background())
	d.orch.cycle.Unlock()

	require.ErrorIs(t, err, ErrSyncInProgress)
	select {
	case reason := <-d.orch.triggers:
		assert.Equal(t, TriggerFollowUp, reason)
	default:
		t.Fatal("no follow-up cycle was scheduled")
	}
}

func TestOrchestrator_TransportFailureBacksOff(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	acc := d.create(t, models.TableAccounts, accountJSON("Cash"))

	var reported atomic.Int32
	d.orch.OnSyncError(func(error) { reported.Add(1) })

	d.remote.setPushErr(fmt.Errorf("%w: connection refused", adapter.ErrNetwork))
	_, err := d.orch.RunCycle(context.Background())

	require.ErrorIs(t, err, adapter.ErrNetwork)
	assert.Equal(t, SyncStateBackoff, d.orch.State())
	assert.Positive(t, d.orch.currentRetryDelay())
	assert.Equal(t, int32(1), reported.Load())
	assert.Equal(t, models.SyncStatusPending, d.get(t, models.TableAccounts, acc.ID).SyncStatus)

	first := d.orch.currentRetryDelay()
	_, err = d.orch.RunCycle(context.Background())
	require.Error(t, err)
	assert.GreaterOrEqual(t, d.orch.currentRetryDelay(), first)

	d.remote.setPushErr(nil)
	d.sync(t)
	assert.Equal(t, SyncStateIdle, d.orch.State())
	assert.Zero(t, d.orch.currentRetryDelay())
	assert.Equal(t, models.SyncStatusSynced, d.get(t, models.TableAccounts, acc.ID).SyncStatus)
}

func TestOrchestrator_UnauthorizedSuspendsTimer(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	d.create(t, models.TableAccounts, accountJSON("Cash"))

	d.remote.setPushErr(adapter.ErrUnauthorized)
	_, err := d.orch.RunCycle(context.Background())
	require.ErrorIs(t, err, adapter.ErrUnauthorized)

	assert.Equal(t, SyncStateIdle, d.orch.State())
	assert.True(t, d.orch.isSuspended())
	assert.Zero(t, d.orch.currentRetryDelay())

	drainTriggers(d.orch)
	d.orch.Trigger(TriggerTimer)
	assert.Empty(t, d.orch.triggers)

	d.orch.Trigger(TriggerManual)
	assert.False(t, d.orch.isSuspended())
	assert.Equal(t, TriggerManual, <-d.orch.triggers)
}

func TestOrchestrator_TriggersCoalesce(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	drainTriggers(d.orch)

	d.orch.Trigger(TriggerLocalChange)
	d.orch.Trigger(TriggerLocalChange)
	d.orch.Trigger(TriggerTimer)

	assert.Len(t, d.orch.triggers, 1)
}

func TestOrchestrator_ReportsCompletion(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	d.create(t, models.TableAccounts, accountJSON("Cash"))

	var got models.SyncResult
	d.orch.OnSyncComplete(func(r models.SyncResult) { got = r })

	d.sync(t)

	assert.Equal(t, 1, got.Tables[models.TableAccounts].Pushed)
	assert.Equal(t, 1, got.Tables[models.TableAccounts].Synced)
}

func TestOrchestrator_PullFailureStillReplaysBuffer(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	acc := d.create(t, models.TableAccounts, accountJSON("Cash"))
	d.sync(t)

	d.locks.BufferUpdate(acc.ID, models.TableAccounts, map[string]any{"name": "buffered"})
	d.remote.pullErr = adapter.ErrNetwork

	result, err := d.orch.RunCycle(context.Background())
	require.ErrorIs(t, err, adapter.ErrNetwork)
	assert.Equal(t, 1, result.Flushed)
	assert.Equal(t, "buffered", payloadField(t, d.get(t, models.TableAccounts, acc.ID).Payload, "name"))
}

// ── conflict listeners ───────────────────────────────────────────────────────

func TestOrchestrator_ConflictListenersFireOnChangeOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepository()
	phone, laptop := newTestDevice(t, repo), newTestDevice(t, repo)

	var calls [][]models.ConflictRecord
	laptop.orch.OnConflictsChanged(func(c []models.ConflictRecord) { calls = append(calls, c) })

	acc := phone.create(t, models.TableAccounts, accountJSON("Cash"))
	phone.sync(t)
	laptop.sync(t)
	assert.Empty(t, calls)

	_, err := phone.records.Update(ctx, models.TableAccounts, acc.ID, map[string]any{"name": "Wallet"})
	require.NoError(t, err)
	phone.sync(t)
	_, err = laptop.records.Update(ctx, models.TableAccounts, acc.ID, map[string]any{"name": "Pocket"})
	require.NoError(t, err)

	laptop.sync(t)
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 1)
	assert.Equal(t, acc.ID, calls[0][0].ID)

	laptop.sync(t)
	assert.Len(t, calls, 1, "same conflict set is not reported twice")

	require.NoError(t, laptop.resolver.Resolve(ctx, acc.ID, models.KeepServer()))
	laptop.sync(t)
	require.Len(t, calls, 2)
	assert.Empty(t, calls[1])
}

// ── Run ──────────────────────────────────────────────────────────────────────

func TestOrchestrator_RunSyncsOnStartAndStopsOnCancel(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	acc := d.create(t, models.TableAccounts, accountJSON("Cash"))

	done := make(chan models.SyncResult, 8)
	d.orch.OnSyncComplete(func(r models.SyncResult) { done <- r })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.orch.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no cycle ran")
	}
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, models.SyncStatusSynced, d.get(t, models.TableAccounts, acc.ID).SyncStatus)
}

func TestOrchestrator_RunRetriesAfterFailure(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	d.create(t, models.TableAccounts, accountJSON("Cash"))
	d.remote.setPushErr(adapter.ErrNetwork)

	failures := make(chan error, 16)
	succeeded := make(chan struct{}, 1)
	d.orch.OnSyncError(func(err error) {
		select {
		case failures <- err:
		default:
		}
	})
	d.orch.OnSyncComplete(func(models.SyncResult) {
		select {
		case succeeded <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.orch.Run(ctx) }()

	// a second failure arrives without any external trigger
	for range 2 {
		select {
		case err := <-failures:
			assert.True(t, errors.Is(err, adapter.ErrNetwork))
		case <-time.After(5 * time.Second):
			t.Fatal("cycle was not retried")
		}
	}

	d.remote.setPushErr(nil)
	select {
	case <-succeeded:
	case <-time.After(5 * time.Second):
		t.Fatal("retry never succeeded")
	}
}

// ── ResetSession ─────────────────────────────────────────────────────────────

func TestOrchestrator_ResetSessionClearsEngineState(t *testing.T) {
	d := newTestDevice(t, newMemRepository())
	d.remote.setPushErr(adapter.ErrUnauthorized)
	d.create(t, models.TableAccounts, accountJSON("Cash"))
	_, _ = d.orch.RunCycle(context.Background())
	require.True(t, d.orch.isSuspended())

	d.locks.Lock("a")
	d.locks.BufferUpdate("a", models.TableAccounts, map[string]any{"name": "x"})
	d.push.bumpAttempts("a")
	d.pull.hold(models.PulledRecord{SyncableRecord: models.SyncableRecord{ID: "b", Table: models.TableAccounts}})
	d.orch.Trigger(TriggerLocalChange)

	d.orch.ResetSession()

	assert.Zero(t, d.locks.LockedCount())
	assert.Zero(t, d.locks.BufferedCount())
	assert.Zero(t, d.pull.heldCount())
	assert.Equal(t, 1, d.push.bumpAttempts("a"))
	assert.False(t, d.orch.isSuspended())
	assert.Equal(t, SyncStateIdle, d.orch.State())
	assert.Empty(t, d.orch.triggers)
}
