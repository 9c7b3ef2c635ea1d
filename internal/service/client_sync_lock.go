// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"maps"
	"sync"
	"time"

	"github.com/MKhiriev/go-money-keeper/models"
)

// SyncLockManager tracks the record ids that are part of an in-flight push
// and holds the local mutations attempted against them until they unlock.
//
// All state is in memory and scoped to one session: call Reset on logout or
// user switch so buffered edits never leak into another account.
type SyncLockManager struct {
	mu     sync.Mutex
	locked map[string]struct{}
	buffer map[string]models.BufferedUpdate
	// order keeps flush order stable: first buffered, first replayed.
	order []string

	now func() time.Time
}

func NewSyncLockManager() *SyncLockManager {
	return &SyncLockManager{
		locked: make(map[string]struct{}),
		buffer: make(map[string]models.BufferedUpdate),
		now:    time.Now,
	}
}

// Lock marks ids as being pushed.
func (m *SyncLockManager) Lock(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		m.locked[id] = struct{}{}
	}
}

// Unlock releases ids. Unknown ids are ignored.
func (m *SyncLockManager) Unlock(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.locked, id)
	}
}

func (m *SyncLockManager) IsLocked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.locked[id]
	return ok
}

// LockedCount returns the number of locked ids.
func (m *SyncLockManager) LockedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.locked)
}

// BufferUpdate stores data as the pending mutation of id, replacing any
// update buffered before it. It does not look at the lock state.
//
// A buffered delete for the same id is kept: a field edit never revives a
// record the user already deleted.
func (m *SyncLockManager) BufferUpdate(id string, table models.TableName, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bufferLocked(models.BufferedUpdate{ID: id, TableName: table, UpdateData: maps.Clone(data)}, false)
}

// BufferDelete buffers a soft delete of id.
func (m *SyncLockManager) BufferDelete(id string, table models.TableName) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bufferLocked(models.BufferedUpdate{ID: id, TableName: table, Delete: true}, false)
}

// ApplyOrBuffer runs apply if id is not locked, holding the registry for the
// duration so a push cannot lock id halfway through the write. If id is
// locked, upd is buffered instead and apply is not called.
//
// Unlike BufferUpdate, the fields of upd are merged over whatever is already
// buffered for id, so every edit made during one push survives the replay.
func (m *SyncLockManager) ApplyOrBuffer(upd models.BufferedUpdate, apply func() error) (buffered bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, locked := m.locked[upd.ID]; locked {
		m.bufferLocked(upd, true)
		return true, nil
	}

	return false, apply()
}

// FlushBuffer returns every buffered update in the order they were first
// buffered and clears the buffer.
func (m *SyncLockManager) FlushBuffer() []models.BufferedUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.order) == 0 {
		return nil
	}

	out := make([]models.BufferedUpdate, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.buffer[id])
	}

	m.buffer = make(map[string]models.BufferedUpdate)
	m.order = nil
	return out
}

// BufferedCount returns the number of buffered updates.
func (m *SyncLockManager) BufferedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.buffer)
}

// ClearLocks releases every lock but keeps the buffer.
func (m *SyncLockManager) ClearLocks() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.locked = make(map[string]struct{})
}

// Reset drops all locks and buffered updates.
func (m *SyncLockManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.locked = make(map[string]struct{})
	m.buffer = make(map[string]models.BufferedUpdate)
	m.order = nil
}

// Release replays the buffer through apply and then unlocks ids, all under
// one hold of the registry. A write that arrives meanwhile waits and lands on
// top of the replayed state. Updates apply fails on stay buffered in their
// original order.
func (m *SyncLockManager) Release(apply func(models.BufferedUpdate) error, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, buffer := m.order, m.buffer
	m.order, m.buffer = nil, make(map[string]models.BufferedUpdate)

	for _, id := range order {
		upd := buffer[id]
		if err := apply(upd); err != nil {
			m.buffer[id] = upd
			m.order = append(m.order, id)
		}
	}

	for _, id := range ids {
		delete(m.locked, id)
	}
}

// bufferLocked must be called with mu held.
func (m *SyncLockManager) bufferLocked(upd models.BufferedUpdate, merge bool) {
	upd.Timestamp = m.now().UTC()

	prev, exists := m.buffer[upd.ID]
	if !exists {
		m.order = append(m.order, upd.ID)
	}

	if exists {
		upd.Delete = upd.Delete || prev.Delete
		if merge && len(prev.UpdateData) > 0 {
			merged := maps.Clone(prev.UpdateData)
			maps.Copy(merged, upd.UpdateData)
			upd.UpdateData = merged
		}
		if upd.Delete && len(upd.UpdateData) == 0 {
			upd.UpdateData = nil
		}
	}

	m.buffer[upd.ID] = upd
}
