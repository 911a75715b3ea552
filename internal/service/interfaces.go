// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package service

import (
	"context"
	"time"

	"github.com/fitsync/fitsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// EntityService is the application-facing API for workouts and rest days.
// Every mutation lands locally first and is propagated to the backend in the
// same call when possible; when the push cannot happen the mutation is placed
// on the durable operation queue instead. Callers never wait on the network
// for their local write to be visible.
type EntityService interface {
	// Create stores a new entity locally, then tries to push it. The
	// returned entity carries the server-assigned id when the push
	// succeeded, or a locally-tagged id when the create was queued.
	Create(ctx context.Context, entity models.Entity) (models.Entity, error)

	// Update replaces the entity under id locally, then tries to push the
	// change. An entity still carrying a locally-tagged id is never pushed
	// as an update; the queued create covers it.
	Update(ctx context.Context, id string, entity models.Entity) (models.Entity, error)

	// Delete removes the entity locally, then tries to delete it remotely.
	// Deleting an entity the server never saw needs no remote call at all.
	Delete(ctx context.Context, id string) error

	// Get loads one entity tree from local storage.
	Get(ctx context.Context, id string) (models.Entity, error)

	// GetAll loads every entity owned by the configured user from local
	// storage, oldest-first.
	GetAll(ctx context.Context) ([]models.Entity, error)
}

// TemplateService manages workout templates. Templates are push-only: they
// propagate to the backend through the queue but are never pulled back or
// conflict-resolved.
type TemplateService interface {
	// Save stores a template locally and pushes it (create or update
	// depending on the id), queueing the push when it cannot run.
	Save(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error)

	// Delete removes a template locally and remotely.
	Delete(ctx context.Context, id string) error

	// Get loads one template from local storage.
	Get(ctx context.Context, id string) (models.WorkoutTemplate, error)

	// GetAll loads every template owned by the configured user.
	GetAll(ctx context.Context) ([]models.WorkoutTemplate, error)
}

// QueueService drains the durable operation queue against the backend.
type QueueService interface {
	// Add serialises payload and appends an operation to the queue.
	Add(ctx context.Context, op models.QueueOperation, payload any, userID string) (models.QueueItem, error)

	// ProcessQueue replays pending operations oldest-first. At most one
	// drain runs at a time; a concurrent call reports AlreadyProcessing and
	// returns immediately. An offline device skips the drain entirely. A
	// transient failure stops the pass to preserve operation order and
	// schedules a backoff retry.
	ProcessQueue(ctx context.Context) (models.QueueDrainResult, error)

	// GetPending returns a snapshot of operations awaiting replay.
	GetPending(ctx context.Context) ([]models.QueueItem, error)

	// GetFailed returns operations that exhausted their retry budget.
	GetFailed(ctx context.Context) ([]models.QueueItem, error)

	// RetryOperation resets a failed operation's retry budget and drains
	// the queue immediately.
	RetryOperation(ctx context.Context, id int64) error

	// ClearFailed discards every failed operation and reports how many were
	// removed.
	ClearFailed(ctx context.Context) (int64, error)
}

// SyncManager orchestrates full bidirectional synchronisation.
type SyncManager interface {
	// SyncAll runs one full cycle: drain the queue, push dirty local
	// entities, pull remote changes, resolve conflicts, and record the
	// completion time. Re-entrant calls are rejected via the result status,
	// not an error; offline and missing-user conditions likewise.
	SyncAll(ctx context.Context) (models.SyncResult, error)

	// ForceSyncNow triggers an immediate full cycle on user request. It
	// funnels into SyncAll and relies on its re-entrancy guard, so a cycle
	// already in flight short-circuits instead of overlapping.
	ForceSyncNow(ctx context.Context) (models.SyncResult, error)

	// GetSyncStatus reports engine state for display. It degrades to a zero
	// report when storage reads fail; it never returns an error.
	GetSyncStatus(ctx context.Context) models.SyncStatusReport

	// RetryFailed requeues every failed operation and error entity, then
	// runs a full sync.
	RetryFailed(ctx context.Context) (models.SyncResult, error)

	// ClearFailed discards failed queue operations without retrying them.
	ClearFailed(ctx context.Context) (int64, error)
}

// SyncJob runs SyncAll in the background: on a fixed interval and on
// connectivity restore.
type SyncJob interface {
	// Start launches the background goroutine. It syncs every interval,
	// defaulting to 5 minutes if interval is zero or negative, and
	// immediately on an offline-to-online transition. Any previously
	// running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}
