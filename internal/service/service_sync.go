// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fitsync/fitsync/internal/adapter"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/store"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/models"
)

type syncManager struct {
	entities store.LocalEntityRepository
	queue    store.QueueRepository
	metadata store.MetadataRepository
	queueSvc QueueService
	remote   adapter.RemoteAdapter
	monitor  *netmon.Monitor
	clock    utils.Clock

	userID         string
	strategy       models.ConflictStrategy
	autoSync       bool
	requestTimeout time.Duration

	logger *logger.Logger

	mu        sync.Mutex
	isSyncing bool
}

func NewSyncManager(
	storages *store.ClientStorages,
	queueSvc QueueService,
	remote adapter.RemoteAdapter,
	monitor *netmon.Monitor,
	clock utils.Clock,
	cfg *config.ClientConfig,
	logger *logger.Logger,
) SyncManager {
	return &syncManager{
		entities:       storages.EntityRepository,
		queue:          storages.QueueRepository,
		metadata:       storages.MetadataRepository,
		queueSvc:       queueSvc,
		remote:         remote,
		monitor:        monitor,
		clock:          clock,
		userID:         cfg.App.UserID,
		strategy:       cfg.Sync.ConflictStrategy,
		autoSync:       cfg.Workers.AutoSync,
		requestTimeout: cfg.Adapter.RequestTimeout,
		logger:         logger,
	}
}

func (s *syncManager) SyncAll(ctx context.Context) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return models.SyncResult{Status: models.SyncAlreadyRunning}, nil
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	if s.userID == "" {
		return models.SyncResult{Status: models.SyncNoUser}, nil
	}
	if !s.monitor.Online() {
		return models.SyncResult{Status: models.SyncOffline}, nil
	}

	lastSync, err := s.metadata.LastSync(ctx)
	if err != nil {
		log.Warn().Str("func", "syncManager.SyncAll").Err(err).Msg("could not read last sync time, pulling full list")
		lastSync = nil
	}

	result := models.SyncResult{Status: models.SyncCompleted}

	// phase 1: replay queued offline mutations, oldest first
	drain, err := s.queueSvc.ProcessQueue(ctx)
	if err != nil {
		result.Errors = append(result.Errors, models.SyncError{Operation: "drain_queue", Message: err.Error()})
	}
	result.Pushed += drain.Processed

	// phase 2: push entities the queue does not cover (edits demoted to
	// pending by earlier conflict resolutions, recovered error entities)
	pending, err := s.entities.GetByStatus(ctx, s.userID, models.StatusPending)
	if err != nil {
		result.Errors = append(result.Errors, models.SyncError{Operation: "load_pending", Message: err.Error()})
	}
	for _, entity := range pending {
		if pushErr := s.pushState(ctx, entity); pushErr != nil {
			result.Errors = append(result.Errors, models.SyncError{
				EntityID:  entity.ID,
				Operation: "push",
				Message:   pushErr.Error(),
			})
			continue
		}
		result.Pushed++
	}

	// phase 3: pull remote changes and reconcile
	remoteEntities, pullErr := s.pullSince(ctx, lastSync)
	if pullErr != nil {
		result.Errors = append(result.Errors, models.SyncError{Operation: "pull", Message: pullErr.Error()})
		// without a complete pull the baseline must not advance, or the
		// missed remote edits would be skipped forever
		return result, nil
	}

	for _, remote := range remoteEntities {
		s.applyRemote(ctx, remote, lastSync, &result)
	}

	if err = s.metadata.SetLastSync(ctx, s.clock.Now().UTC()); err != nil {
		result.Errors = append(result.Errors, models.SyncError{Operation: "record_sync_time", Message: err.Error()})
	}

	log.Info().
		Str("func", "syncManager.SyncAll").
		Int("pushed", result.Pushed).
		Int("pulled", result.Pulled).
		Int("conflicts", result.Conflicts).
		Int("errors", len(result.Errors)).
		Msg("sync cycle finished")

	return result, nil
}

// ForceSyncNow is the user-initiated entry point. The re-entrancy guard in
// SyncAll keeps a manual trigger from overlapping a timer cycle.
func (s *syncManager) ForceSyncNow(ctx context.Context) (models.SyncResult, error) {
	return s.SyncAll(ctx)
}

func (s *syncManager) GetSyncStatus(ctx context.Context) models.SyncStatusReport {
	report := models.SyncStatusReport{
		AutoSync: s.autoSync,
		IsOnline: s.monitor.Online(),
	}

	s.mu.Lock()
	report.IsSyncing = s.isSyncing
	s.mu.Unlock()

	// every read below degrades to the zero value on failure; status
	// reporting never errors out
	if t, err := s.metadata.LastSync(ctx); err == nil {
		report.LastSync = t
	}
	if n, err := s.entities.CountByStatus(ctx, s.userID, models.StatusPending); err == nil {
		report.PendingCount = n
	}
	if n, err := s.entities.CountByStatus(ctx, s.userID, models.StatusError); err == nil {
		report.ErrorCount = n
	}
	if n, err := s.queue.CountByStatus(ctx, models.QueuePending); err == nil {
		report.QueuedCount = n
	}
	if n, err := s.queue.CountByStatus(ctx, models.QueueFailed); err == nil {
		report.FailedCount = n
	}

	return report
}

func (s *syncManager) RetryFailed(ctx context.Context) (models.SyncResult, error) {
	failed, err := s.queue.GetByStatus(ctx, models.QueueFailed)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("load failed queue items: %w", err)
	}
	for _, item := range failed {
		item.Status = models.QueuePending
		item.RetryCount = 0
		item.Error = ""
		if err = s.queue.Update(ctx, item); err != nil {
			return models.SyncResult{}, fmt.Errorf("requeue item %d: %w", item.ID, err)
		}
	}

	errored, err := s.entities.GetByStatus(ctx, s.userID, models.StatusError)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("load error entities: %w", err)
	}
	for _, entity := range errored {
		if err = s.entities.SetSyncStatus(ctx, entity.ID, models.StatusPending); err != nil {
			return models.SyncResult{}, fmt.Errorf("requeue entity %s: %w", entity.ID, err)
		}
	}

	return s.SyncAll(ctx)
}

func (s *syncManager) ClearFailed(ctx context.Context) (int64, error) {
	return s.queueSvc.ClearFailed(ctx)
}

// pullSince fetches the remote change set under the per-call deadline.
func (s *syncManager) pullSince(ctx context.Context, lastSync *time.Time) ([]models.Entity, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	return s.remote.List(callCtx, lastSync)
}

// pushState sends one dirty entity to the server: locally-tagged ids go as
// creates followed by the id remap, server ids as updates with re-creation
// as the not-found fallback. A failed push demotes the entity to error so
// GetSyncStatus counts it and RetryFailed can revive it.
func (s *syncManager) pushState(ctx context.Context, entity models.Entity) error {
	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	if utils.IsLocalID(entity.ID) {
		created, err := s.remote.Create(callCtx, entity)
		if err != nil {
			s.markPushError(ctx, entity.ID)
			return fmt.Errorf("push create %s: %w", entity.ID, err)
		}
		if created.ID != entity.ID {
			if err = s.entities.RemapID(ctx, entity.ID, created.ID); err != nil {
				return fmt.Errorf("remap %s to %s: %w", entity.ID, created.ID, err)
			}
		}
		if err = s.entities.SetSyncStatus(ctx, created.ID, models.StatusSynced); err != nil {
			return fmt.Errorf("mark %s synced: %w", created.ID, err)
		}
		return nil
	}

	_, err := s.remote.Update(callCtx, entity)
	if errors.Is(err, adapter.ErrNotFound) {
		created, createErr := s.remote.Create(callCtx, entity)
		if createErr != nil {
			s.markPushError(ctx, entity.ID)
			return fmt.Errorf("recreate %s: %w", entity.ID, createErr)
		}
		if created.ID != entity.ID {
			if remapErr := s.entities.RemapID(ctx, entity.ID, created.ID); remapErr != nil {
				return fmt.Errorf("remap %s to %s: %w", entity.ID, created.ID, remapErr)
			}
			entity.ID = created.ID
		}
	} else if err != nil {
		s.markPushError(ctx, entity.ID)
		return fmt.Errorf("push update %s: %w", entity.ID, err)
	}

	if err = s.entities.SetSyncStatus(ctx, entity.ID, models.StatusSynced); err != nil {
		return fmt.Errorf("mark %s synced: %w", entity.ID, err)
	}

	return nil
}

// markPushError is best effort: the sync result already records the failure,
// the status change just makes it visible to reporting and retry.
func (s *syncManager) markPushError(ctx context.Context, id string) {
	_ = s.entities.SetSyncStatus(ctx, id, models.StatusError)
}

// applyRemote reconciles one pulled entity against local state.
func (s *syncManager) applyRemote(ctx context.Context, remote models.Entity, lastSync *time.Time, result *models.SyncResult) {
	log := logger.FromContext(ctx)

	local, err := s.entities.GetWithRelations(ctx, remote.ID)
	if errors.Is(err, store.ErrEntityNotFound) {
		remote.SyncStatus = models.StatusSynced
		if err = s.entities.UpsertFromRemote(ctx, remote); err != nil {
			result.Errors = append(result.Errors, models.SyncError{EntityID: remote.ID, Operation: "pull", Message: err.Error()})
			return
		}
		result.Pulled++
		return
	}
	if err != nil {
		result.Errors = append(result.Errors, models.SyncError{EntityID: remote.ID, Operation: "pull", Message: err.Error()})
		return
	}

	// the push phase ran before the pull, so a still dirty local copy here
	// means the push failed or a new edit landed mid-sync; never silently
	// overwrite it without conflict handling
	if local.SyncStatus == models.StatusSynced {
		if !remote.UpdatedAt.After(local.UpdatedAt) {
			return
		}
		remote.SyncStatus = models.StatusSynced
		if err = s.entities.UpsertFromRemote(ctx, remote); err != nil {
			result.Errors = append(result.Errors, models.SyncError{EntityID: remote.ID, Operation: "pull", Message: err.Error()})
			return
		}
		result.Pulled++
		return
	}

	check := DetectConflict(local, remote, lastSync)
	if !check.InConflict {
		// the local copy holds unpushed edits and the remote copy never left
		// the baseline; the edit pushes on the next phase or cycle. A
		// remote-is-newer refresh only ever applies to synced locals, handled
		// above.
		return
	}

	result.Conflicts++
	log.Info().
		Str("func", "syncManager.applyRemote").
		Str("id", remote.ID).
		Str("strategy", string(s.strategy)).
		Int("diverged_fields", len(check.Fields)).
		Msg("conflict detected")

	resolution, err := ResolveConflict(local, remote, s.strategy)
	if err != nil {
		result.Errors = append(result.Errors, models.SyncError{EntityID: remote.ID, Operation: "resolve_conflict", Message: err.Error()})
		return
	}

	if resolution.RequiresManual {
		// leave the local copy untouched and surface the standoff; the
		// entity stays pending until a human picks a side
		result.Errors = append(result.Errors, models.SyncError{
			EntityID:  remote.ID,
			Operation: "resolve_conflict",
			Message:   ErrManualResolution.Error(),
		})
		return
	}

	switch resolution.Winner {
	case models.WinnerRemote:
		winner := resolution.Entity
		winner.SyncStatus = models.StatusSynced
		if err = s.entities.UpsertFromRemote(ctx, winner); err != nil {
			result.Errors = append(result.Errors, models.SyncError{EntityID: remote.ID, Operation: "apply_resolution", Message: err.Error()})
			return
		}
		result.Pulled++

	case models.WinnerLocal:
		if err = s.pushState(ctx, local); err != nil {
			result.Errors = append(result.Errors, models.SyncError{EntityID: local.ID, Operation: "push", Message: err.Error()})
			return
		}
		result.Pushed++

	case models.WinnerMerged:
		merged := resolution.Entity
		merged.SyncStatus = models.StatusPending
		if err = s.entities.UpsertFromRemote(ctx, merged); err != nil {
			result.Errors = append(result.Errors, models.SyncError{EntityID: merged.ID, Operation: "apply_resolution", Message: err.Error()})
			return
		}
		if err = s.pushState(ctx, merged); err != nil {
			result.Errors = append(result.Errors, models.SyncError{EntityID: merged.ID, Operation: "push", Message: err.Error()})
			return
		}
		result.Pushed++
		result.Pulled++
	}
}
