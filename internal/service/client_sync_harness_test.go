package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/stretchr/testify/require"
)

const testUserID int64 = 7

// ── in-memory remote repository ──────────────────────────────────────────────

type memRow struct {
	rec models.SyncableRecord
	seq int64
}

// memRepository follows the same write rule as the PostgreSQL repository:
// accept when there is no row or the submitted version is not behind, and
// store GREATEST(stored+1, submitted).
type memRepository struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]map[models.TableName]map[string]*memRow

	// failWrite, when set, can reject a write with a database error.
	failWrite func(table models.TableName, rec models.PushRecord) error
	errorCode models.ErrorCode
}

func newMemRepository() *memRepository {
	return &memRepository{
		rows:      make(map[int64]map[models.TableName]map[string]*memRow),
		errorCode: models.ErrorCodeUnknown,
	}
}

func (r *memRepository) table(userID int64, table models.TableName) map[string]*memRow {
	byTable, ok := r.rows[userID]
	if !ok {
		byTable = make(map[models.TableName]map[string]*memRow)
		r.rows[userID] = byTable
	}
	byID, ok := byTable[table]
	if !ok {
		byID = make(map[string]*memRow)
		byTable[table] = byID
	}
	return byID
}

func (r *memRepository) ApplyWrite(_ context.Context, userID int64, table models.TableName, rec models.PushRecord) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWrite != nil {
		if err := r.failWrite(table, rec); err != nil {
			return 0, false, err
		}
	}

	rows := r.table(userID, table)
	version := max(rec.Version, 1)
	if row, ok := rows[rec.ID]; ok {
		if models.IsAhead(row.rec.Version, rec.Version) {
			return row.rec.Version, false, nil
		}
		version = max(row.rec.Version+1, rec.Version)
	}

	r.seq++
	rows[rec.ID] = &memRow{
		seq: r.seq,
		rec: models.SyncableRecord{
			ID:        rec.ID,
			Table:     table,
			Version:   version,
			DeletedAt: rec.DeletedAt,
			Payload:   slices.Clone(rec.Payload),
		},
	}
	return version, true, nil
}

func (r *memRepository) ChangesSince(_ context.Context, userID int64, table models.TableName, cursor string, limit int) ([]models.PulledRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	after := int64(0)
	if cursor != "" {
		var err error
		if after, err = strconv.ParseInt(cursor, 10, 64); err != nil {
			return nil, err
		}
	}

	var changed []*memRow
	for _, row := range r.table(userID, table) {
		if row.seq > after {
			changed = append(changed, row)
		}
	}
	slices.SortFunc(changed, func(a, b *memRow) int { return int(a.seq - b.seq) })
	if len(changed) > limit {
		changed = changed[:limit]
	}

	out := make([]models.PulledRecord, 0, len(changed))
	for _, row := range changed {
		out = append(out, models.PulledRecord{SyncableRecord: row.rec, Cursor: strconv.FormatInt(row.seq, 10)})
	}
	return out, nil
}

func (r *memRepository) GetByIDs(_ context.Context, userID int64, table models.TableName, ids []string) ([]models.SyncableRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.table(userID, table)
	var out []models.SyncableRecord
	for _, id := range ids {
		if row, ok := rows[id]; ok {
			out = append(out, row.rec)
		}
	}
	return out, nil
}

func (r *memRepository) ErrorCode(error) models.ErrorCode {
	return r.errorCode
}

// get returns the stored server copy or fails the test.
func (r *memRepository) get(t *testing.T, table models.TableName, id string) models.SyncableRecord {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.table(testUserID, table)[id]
	require.True(t, ok, "server has no %s/%s", table, id)
	return row.rec
}

func (r *memRepository) has(table models.TableName, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.table(testUserID, table)[id]
	return ok
}

// ── loopback adapter ─────────────────────────────────────────────────────────

// loopbackAdapter serves RemoteAdapter calls straight from a SyncService.
type loopbackAdapter struct {
	svc    SyncService
	userID int64

	mu         sync.Mutex
	token      string
	pushErr    error
	fetchErr   error
	pullErr    error
	beforePush func(req models.PushRequest)
	batchSizes []int
}

func newLoopbackAdapter(svc SyncService) *loopbackAdapter {
	return &loopbackAdapter{svc: svc, userID: testUserID}
}

func (a *loopbackAdapter) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

func (a *loopbackAdapter) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *loopbackAdapter) Push(ctx context.Context, req models.PushRequest) (models.TableBatchResult, error) {
	a.mu.Lock()
	pushErr, hook := a.pushErr, a.beforePush
	a.batchSizes = append(a.batchSizes, len(req.Records))
	a.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if pushErr != nil {
		return models.TableBatchResult{}, pushErr
	}
	return a.svc.Push(ctx, a.userID, req)
}

func (a *loopbackAdapter) Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error) {
	a.mu.Lock()
	pullErr := a.pullErr
	a.mu.Unlock()

	if pullErr != nil {
		return models.PullResponse{}, pullErr
	}
	return a.svc.Pull(ctx, a.userID, req)
}

func (a *loopbackAdapter) Fetch(ctx context.Context, req models.FetchRequest) ([]models.SyncableRecord, error) {
	a.mu.Lock()
	fetchErr := a.fetchErr
	a.mu.Unlock()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return a.svc.Fetch(ctx, a.userID, req)
}

func (a *loopbackAdapter) setPushErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pushErr = err
}

func (a *loopbackAdapter) setFetchErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetchErr = err
}

func (a *loopbackAdapter) setBeforePush(fn func(req models.PushRequest)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.beforePush = fn
}

func (a *loopbackAdapter) pushedBatchSizes() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.batchSizes)
}

// ── devices ──────────────────────────────────────────────────────────────────

// testDevice is one client: its own local database and engines, sharing a
// remote store with other devices.
type testDevice struct {
	store    store.LocalRecordStore
	locks    *SyncLockManager
	push     *pushEngine
	pull     *pullEngine
	orch     *syncOrchestrator
	records  ClientRecordService
	resolver ConflictResolver
	remote   *loopbackAdapter
}

type deviceOption func(*pushConfig, *int)

func withBatchSize(n int) deviceOption {
	return func(cfg *pushConfig, _ *int) { cfg.BatchSize = n }
}

func withMaxAttempts(n int) deviceOption {
	return func(cfg *pushConfig, _ *int) { cfg.MaxAttempts = n }
}

func withPageSize(n int) deviceOption {
	return func(_ *pushConfig, pageSize *int) { *pageSize = n }
}

func newTestLocalStore(t *testing.T) store.LocalRecordStore {
	t.Helper()

	db, err := store.NewConnectSQLite(context.Background(), config.ClientDB{DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	return store.NewLocalRecordStore(db, logger.Nop())
}

func newTestDevice(t *testing.T, repo store.RemoteRecordRepository, opts ...deviceOption) *testDevice {
	t.Helper()

	cfg := pushConfig{BatchSize: 50, MaxAttempts: 3}
	pageSize := 100
	for _, opt := range opts {
		opt(&cfg, &pageSize)
	}

	localStore := newTestLocalStore(t)
	remote := newLoopbackAdapter(NewSyncValidationService().Wrap(NewSyncService(repo, logger.Nop())))
	locks := NewSyncLockManager()
	push := newPushEngine(localStore, remote, locks, cfg)
	pull := newPullEngine(localStore, remote, locks, pageSize)
	pull.quarantined = push.isQuarantined
	orch := newSyncOrchestrator(localStore, locks, push, pull, orchestratorConfig{
		Interval:          time.Hour,
		RetryInitialDelay: time.Millisecond,
		RetryMaxDelay:     10 * time.Millisecond,
	}, logger.Nop())

	return &testDevice{
		store:    localStore,
		locks:    locks,
		push:     push,
		pull:     pull,
		orch:     orch,
		records:  NewClientRecordService(localStore, locks, utils.NewUUIDGenerator(), orch, logger.Nop()),
		resolver: NewConflictResolver(localStore, orch, logger.Nop()),
		remote:   remote,
	}
}

// sync runs one full cycle and fails the test on error.
func (d *testDevice) sync(t *testing.T) models.SyncResult {
	t.Helper()
	result, err := d.orch.RunCycle(context.Background())
	require.NoError(t, err)
	return result
}

func (d *testDevice) create(t *testing.T, table models.TableName, payload string) models.SyncableRecord {
	t.Helper()
	rec, err := d.records.Create(context.Background(), table, json.RawMessage(payload))
	require.NoError(t, err)
	return rec
}

func (d *testDevice) get(t *testing.T, table models.TableName, id string) models.SyncableRecord {
	t.Helper()
	rec, err := d.store.Get(context.Background(), table, id)
	require.NoError(t, err)
	return rec
}

// ── payloads ─────────────────────────────────────────────────────────────────

func accountJSON(name string) string {
	return fmt.Sprintf(`{"name":%q,"currency":"EUR","opening_balance":"0"}`, name)
}

func transactionJSON(accountID, amount string) string {
	account := "null"
	if accountID != "" {
		account = strconv.Quote(accountID)
	}
	return fmt.Sprintf(`{"account_id":%s,"group_id":"g-1","amount":%q,"currency":"EUR","occurred_on":"2026-03-01"}`, account, amount)
}

func payloadField(t *testing.T, raw json.RawMessage, key string) any {
	t.Helper()
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	return fields[key]
}
