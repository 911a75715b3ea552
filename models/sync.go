package models

import "time"

// SyncOutcome is the top-level result class of a SyncAll call.
type SyncOutcome string

const (
	// SyncCompleted means the full push/pull pass ran; per-entity failures,
	// if any, are listed in SyncResult.Errors.
	SyncCompleted SyncOutcome = "completed"

	// SyncAlreadyRunning means another sync held the re-entrancy guard and
	// this call was dropped.
	SyncAlreadyRunning SyncOutcome = "already_syncing"

	// SyncOffline means the device was offline and no remote call was made.
	SyncOffline SyncOutcome = "offline"

	// SyncNoUser means no authenticated user id was supplied.
	SyncNoUser SyncOutcome = "no_user"
)

// SyncError records a single per-entity failure accumulated during a sync
// pass. One bad record never aborts the pass.
type SyncError struct {
	EntityID  string `json:"entity_id"`
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// SyncResult summarises one SyncAll pass.
type SyncResult struct {
	Status SyncOutcome `json:"status"`

	// Pushed counts entities successfully created or updated remotely.
	Pushed int `json:"pushed"`

	// Pulled counts remote entities inserted or refreshed locally.
	Pulled int `json:"pulled"`

	// Conflicts counts entities that required conflict resolution.
	Conflicts int `json:"conflicts"`

	Errors []SyncError `json:"errors,omitempty"`
}

// SyncStatusReport is the read-only aggregation polled by UI collaborators.
// Readers always receive a value; any underlying read failure degrades to the
// zero report rather than an error.
type SyncStatusReport struct {
	// LastSync is the completion time of the last full sync, nil before the
	// first one.
	LastSync *time.Time `json:"last_sync,omitempty"`

	IsSyncing bool `json:"is_syncing"`

	// PendingCount is the number of entities with StatusPending.
	PendingCount int `json:"pending_count"`

	// ErrorCount is the number of entities with StatusError.
	ErrorCount int `json:"error_count"`

	// QueuedCount and FailedCount are operation-queue depths.
	QueuedCount int `json:"queued_count"`
	FailedCount int `json:"failed_count"`

	AutoSync bool `json:"auto_sync"`

	IsOnline bool `json:"is_online"`
}
