// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/sethvargo/go-retry"
)

// SyncState is the coarse state of the sync engine.
type SyncState string

const (
	SyncStateIdle    SyncState = "idle"
	SyncStateSyncing SyncState = "syncing"
	// SyncStateBackoff means the last cycle failed and a retry is scheduled.
	SyncStateBackoff SyncState = "backoff"
)

// TriggerReason tells why a cycle was requested.
type TriggerReason string

const (
	TriggerManual TriggerReason = "manual"
	TriggerTimer  TriggerReason = "timer"
	// TriggerResume is sent on app resume or network reconnect.
	TriggerResume      TriggerReason = "resume"
	TriggerLocalChange TriggerReason = "local_change"
	TriggerFollowUp    TriggerReason = "follow_up"
	TriggerRetry       TriggerReason = "retry"
)

const (
	defaultSyncInterval      = 5 * time.Minute
	defaultRetryInitialDelay = 2 * time.Second
	defaultRetryMaxDelay     = 5 * time.Minute
)

// orchestratorConfig tunes the cycle scheduling of a syncOrchestrator.
type orchestratorConfig struct {
	Interval          time.Duration
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
}

type syncOrchestrator struct {
	store store.LocalRecordStore
	locks *SyncLockManager
	push  *pushEngine
	pull  *pullEngine
	cfg   orchestratorConfig
	log   *logger.Logger
	now   func() time.Time

	// cycle is held for the duration of one cycle.
	cycle sync.Mutex
	// triggers coalesces cycle requests.
	triggers chan TriggerReason

	mu             sync.Mutex
	state          SyncState
	backoff        retry.Backoff
	retryDelay     time.Duration
	suspended      bool
	conflictsPrint string
	onComplete     []func(models.SyncResult)
	onError        []func(error)
	onConflicts    []func([]models.ConflictRecord)
}

func newSyncOrchestrator(localStore store.LocalRecordStore, locks *SyncLockManager, push *pushEngine, pull *pullEngine, cfg orchestratorConfig, log *logger.Logger) *syncOrchestrator {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSyncInterval
	}
	if cfg.RetryInitialDelay <= 0 {
		cfg.RetryInitialDelay = defaultRetryInitialDelay
	}
	if cfg.RetryMaxDelay < cfg.RetryInitialDelay {
		cfg.RetryMaxDelay = max(defaultRetryMaxDelay, cfg.RetryInitialDelay)
	}

	o := &syncOrchestrator{
		store:    localStore,
		locks:    locks,
		push:     push,
		pull:     pull,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		triggers: make(chan TriggerReason, 1),
		state:    SyncStateIdle,
	}
	o.backoff = o.newBackoff()
	return o
}

func (o *syncOrchestrator) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(o.cfg.RetryMaxDelay, retry.NewExponential(o.cfg.RetryInitialDelay))
}

// Trigger implements SyncOrchestrator. A manual trigger lifts the suspension
// caused by an authentication failure; timer triggers are dropped while it
// lasts.
func (o *syncOrchestrator) Trigger(reason TriggerReason) {
	o.mu.Lock()
	if reason == TriggerManual {
		o.suspended = false
	}
	suspended := o.suspended
	o.mu.Unlock()

	if suspended && reason == TriggerTimer {
		return
	}

	select {
	case o.triggers <- reason:
	default:
	}
}

// RunCycle implements SyncOrchestrator.
func (o *syncOrchestrator) RunCycle(ctx context.Context) (models.SyncResult, error) {
	if !o.cycle.TryLock() {
		o.Trigger(TriggerFollowUp)
		return models.SyncResult{}, ErrSyncInProgress
	}
	defer o.cycle.Unlock()

	o.setState(SyncStateSyncing)
	started := o.now()

	result, err := o.runCycle(ctx)
	if err != nil {
		o.fail(ctx, err)
		return result, err
	}

	o.succeed(result)
	totals := result.Totals()
	o.log.Info().
		Int("pushed", totals.Pushed).Int("synced", totals.Synced).Int("conflicts", totals.Conflicts).
		Int("errors", totals.Errors).Int("quarantined", totals.Quarantined).Int("pulled", totals.Pulled).
		Int("held", totals.Held).Int("flushed", result.Flushed).Dur("took", o.now().Sub(started)).
		Msg("sync cycle finished")
	return result, nil
}

// runCycle is push, then pull, then a final buffer flush. Conflict listeners
// are notified whatever the outcome.
func (o *syncOrchestrator) runCycle(ctx context.Context) (models.SyncResult, error) {
	ctx = o.log.WithContext(ctx)
	result := models.SyncResult{Tables: models.NewTableStats()}
	defer o.notifyConflicts(ctx)

	pushed, pushErr := o.push.Push(ctx)
	mergePushResult(&result, pushed)
	if pushErr != nil {
		result.Flushed += replayBuffered(ctx, o.store, o.locks, o.now())
		return result, fmt.Errorf("push: %w", pushErr)
	}

	pulled, pullErr := o.pull.Pull(ctx)
	mergePullResult(&result, pulled)

	result.Flushed += replayBuffered(ctx, o.store, o.locks, o.now())

	if pullErr != nil {
		return result, fmt.Errorf("pull: %w", pullErr)
	}
	return result, nil
}

func (o *syncOrchestrator) succeed(result models.SyncResult) {
	o.mu.Lock()
	o.state = SyncStateIdle
	o.backoff = o.newBackoff()
	o.retryDelay = 0
	listeners := append([]func(models.SyncResult){}, o.onComplete...)
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}
}

// fail reports err and decides on a retry. Authentication failures suspend
// timer cycles instead of retrying; cancellation ends the engine quietly.
func (o *syncOrchestrator) fail(ctx context.Context, err error) {
	o.mu.Lock()
	switch {
	case ctx.Err() != nil:
		o.state = SyncStateIdle
		o.mu.Unlock()
		return
	case errors.Is(err, adapter.ErrUnauthorized):
		o.state = SyncStateIdle
		o.suspended = true
		o.retryDelay = 0
	default:
		delay, _ := o.backoff.Next()
		o.state = SyncStateBackoff
		o.retryDelay = delay
	}
	delay := o.retryDelay
	listeners := append([]func(error){}, o.onError...)
	o.mu.Unlock()

	if delay > 0 {
		o.log.Err(err).Dur("retry_in", delay).Msg("sync cycle failed")
	} else {
		o.log.Err(err).Msg("sync cycle failed, waiting for a manual sync")
	}

	for _, fn := range listeners {
		fn(err)
	}
}

func (o *syncOrchestrator) notifyConflicts(ctx context.Context) {
	conflicts, err := o.store.GetConflicts(ctx)
	if err != nil {
		o.log.Err(err).Msg("failed to read conflicts")
		return
	}

	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	fingerprint := utils.FingerprintIDs(ids)

	o.mu.Lock()
	changed := fingerprint != o.conflictsPrint
	o.conflictsPrint = fingerprint
	listeners := append([]func([]models.ConflictRecord){}, o.onConflicts...)
	o.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(conflicts)
	}
}

// Run implements workers.Worker. It runs a cycle right away, then serves
// triggers, the periodic timer and the retry timer until ctx is cancelled.
func (o *syncOrchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	retryTimer := time.NewTimer(time.Hour)
	retryTimer.Stop()
	defer retryTimer.Stop()

	o.Trigger(TriggerResume)

	for {
		var reason TriggerReason
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if o.State() == SyncStateBackoff || o.isSuspended() {
				continue
			}
			reason = TriggerTimer
		case reason = <-o.triggers:
		case <-retryTimer.C:
			reason = TriggerRetry
		}

		o.log.Debug().Str("reason", string(reason)).Msg("sync cycle triggered")
		if _, err := o.RunCycle(ctx); errors.Is(err, ErrSyncInProgress) {
			// Another caller holds the engine; its follow-up is queued.
			o.cycle.Lock()
			o.cycle.Unlock()
			continue
		}

		retryTimer.Stop()
		if delay := o.currentRetryDelay(); delay > 0 {
			retryTimer.Reset(delay)
		}
	}
}

func (o *syncOrchestrator) State() SyncState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// ResetSession implements SyncOrchestrator. It is meant to be called between
// cycles.
func (o *syncOrchestrator) ResetSession() {
	o.locks.Reset()
	o.push.reset()
	o.pull.reset()

	o.mu.Lock()
	o.state = SyncStateIdle
	o.backoff = o.newBackoff()
	o.retryDelay = 0
	o.suspended = false
	o.conflictsPrint = ""
	o.mu.Unlock()

	select {
	case <-o.triggers:
	default:
	}
}

func (o *syncOrchestrator) OnSyncComplete(fn func(models.SyncResult)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onComplete = append(o.onComplete, fn)
}

func (o *syncOrchestrator) OnSyncError(fn func(error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onError = append(o.onError, fn)
}

func (o *syncOrchestrator) OnConflictsChanged(fn func([]models.ConflictRecord)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onConflicts = append(o.onConflicts, fn)
}

func (o *syncOrchestrator) setState(state SyncState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = state
}

func (o *syncOrchestrator) isSuspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

func (o *syncOrchestrator) currentRetryDelay() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != SyncStateBackoff {
		return 0
	}
	return o.retryDelay
}

func mergePushResult(dst *models.SyncResult, src models.PushResult) {
	for table, stats := range src.Tables {
		s := dst.Tables[table]
		if s == nil {
			continue
		}
		s.Pushed += stats.Pushed
		s.Synced += stats.Synced
		s.Conflicts += stats.Conflicts
		s.Errors += stats.Errors
		s.Quarantined += stats.Quarantined
	}
	dst.Quarantined = append(dst.Quarantined, src.Quarantined...)
	if len(src.Errors) > 0 {
		if dst.Errors == nil {
			dst.Errors = make(map[string]string, len(src.Errors))
		}
		for id, msg := range src.Errors {
			dst.Errors[id] = msg
		}
	}
	dst.Flushed += src.Flushed
}

func mergePullResult(dst *models.SyncResult, src models.PullResult) {
	for table, stats := range src.Tables {
		s := dst.Tables[table]
		if s == nil {
			continue
		}
		s.Pulled += stats.Pulled
		s.Held += stats.Held
		s.Errors += stats.Errors
	}
}
