package store

import (
	"context"
	"time"

	"github.com/fitsync/fitsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// LocalEntityRepository is the on-device repository for workouts and rest
// days with their child rows. Every multi-row write is transactional: either
// the full workout/exercise/set tree lands or nothing does.
type LocalEntityRepository interface {
	// GetAllWithRelations loads every entity owned by userID with exercises,
	// sets, and activities attached, ordered oldest-first by creation time.
	GetAllWithRelations(ctx context.Context, userID string) ([]models.Entity, error)

	// GetWithRelations loads a single entity tree by id. Returns
	// ErrEntityNotFound if no row exists.
	GetWithRelations(ctx context.Context, id string) (models.Entity, error)

	// GetByStatus loads entity trees owned by userID in the given sync
	// state, ordered oldest-first by creation time.
	GetByStatus(ctx context.Context, userID string, status models.SyncStatus) ([]models.Entity, error)

	// CountByStatus counts entities owned by userID in the given sync state.
	CountByStatus(ctx context.Context, userID string, status models.SyncStatus) (int, error)

	// AddWithRelations persists a new entity tree. A missing id is replaced
	// by a locally-tagged one, missing child ids are minted, timestamps are
	// stamped, and sync status defaults to pending (or local when the entity
	// has no user). Returns the stored entity.
	AddWithRelations(ctx context.Context, entity models.Entity) (models.Entity, error)

	// UpdateWithRelations replaces the entity tree under id. UpdatedAt is
	// always refreshed; a previously synced entity is demoted to pending,
	// which is the signal that there is work to push. Returns the stored
	// entity.
	UpdateWithRelations(ctx context.Context, id string, entity models.Entity) (models.Entity, error)

	// UpsertFromRemote inserts or overwrites the full entity tree exactly as
	// given, preserving remote timestamps and the caller-set sync status.
	// Used by the pull path.
	UpsertFromRemote(ctx context.Context, entity models.Entity) error

	// DeleteWithRelations removes the entity and every descendant row,
	// children before parent. No orphans survive.
	DeleteWithRelations(ctx context.Context, id string) error

	// RemapID atomically rewrites a locally-minted entity id to the
	// server-assigned one across the entity row and every foreign-key column
	// referencing it.
	RemapID(ctx context.Context, oldID, newID string) error

	// SetSyncStatus updates the sync state of a single entity.
	SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error
}

// LocalTemplateRepository stores workout templates. Templates are flat
// documents (exercise list serialized in place), so the contract is plain
// CRUD.
type LocalTemplateRepository interface {
	// Save inserts or overwrites a template. A missing id is replaced by a
	// locally-tagged one and timestamps are stamped.
	Save(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error)

	// Get loads one template by id. Returns ErrTemplateNotFound if absent.
	Get(ctx context.Context, id string) (models.WorkoutTemplate, error)

	// GetAll loads every template owned by userID, oldest-first.
	GetAll(ctx context.Context, userID string) ([]models.WorkoutTemplate, error)

	// Delete removes a template row.
	Delete(ctx context.Context, id string) error

	// RemapID rewrites a locally-minted template id to the server-assigned
	// one.
	RemapID(ctx context.Context, oldID, newID string) error

	// SetSyncStatus updates the sync state of a single template.
	SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error
}

// QueueRepository is the durable operation queue backing offline mutations.
type QueueRepository interface {
	// Add appends item with pending status and returns the stored row
	// including its assigned id.
	Add(ctx context.Context, item models.QueueItem) (models.QueueItem, error)

	// Get loads one item by id. Returns ErrQueueItemNotFound if absent.
	Get(ctx context.Context, id int64) (models.QueueItem, error)

	// GetByStatus returns a snapshot of items in the given state, oldest
	// first.
	GetByStatus(ctx context.Context, status models.QueueStatus) ([]models.QueueItem, error)

	// CountByStatus counts items in the given state.
	CountByStatus(ctx context.Context, status models.QueueStatus) (int, error)

	// Update persists item's mutable fields (status, retry count, error).
	Update(ctx context.Context, item models.QueueItem) error

	// Delete removes a consumed item. Successful operations are deleted, not
	// archived.
	Delete(ctx context.Context, id int64) error

	// DeleteByStatus removes every item in the given state and returns the
	// count removed.
	DeleteByStatus(ctx context.Context, status models.QueueStatus) (int64, error)
}

// MetadataRepository is the singleton key-value table for sync bookkeeping.
type MetadataRepository interface {
	// Get returns the value stored under key, or ErrMetadataNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// LastSync returns the recorded completion time of the last full sync,
	// or nil if none has been recorded yet.
	LastSync(ctx context.Context) (*time.Time, error)

	// SetLastSync records t as the last full sync completion time.
	SetLastSync(ctx context.Context, t time.Time) error
}
