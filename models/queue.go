package models

import (
	"encoding/json"
	"time"
)

// QueueOperation identifies the remote mutation a queue item replays.
type QueueOperation string

const (
	OpCreateWorkout  QueueOperation = "create_workout"
	OpUpdateWorkout  QueueOperation = "update_workout"
	OpDeleteWorkout  QueueOperation = "delete_workout"
	OpCreateTemplate QueueOperation = "create_template"
	OpUpdateTemplate QueueOperation = "update_template"
	OpDeleteTemplate QueueOperation = "delete_template"
)

// QueueStatus is the lifecycle state of a queued operation. Successful items
// are deleted outright, so only two states exist.
type QueueStatus string

const (
	// QueuePending marks an item awaiting replay.
	QueuePending QueueStatus = "pending"

	// QueueFailed marks an item that exhausted its retry budget. It is never
	// retried automatically again.
	QueueFailed QueueStatus = "failed"
)

// QueueItem is one durable mutation that could not be applied remotely at the
// time it was made. Items replay oldest-first.
type QueueItem struct {
	ID int64 `json:"id"`

	Operation QueueOperation `json:"operation"`

	// Data is the serialized entity or template payload. Delete operations
	// carry a DeletePayload instead of the full record.
	Data json.RawMessage `json:"data"`

	Timestamp time.Time `json:"timestamp"`

	Status QueueStatus `json:"status"`

	RetryCount int `json:"retry_count"`

	// Error is the last failure message, empty while the item has not failed.
	Error string `json:"error"`

	UserID string `json:"user_id"`
}

// DeletePayload is the queue payload for delete operations; only the target
// id needs to survive offline.
type DeletePayload struct {
	ID string `json:"id"`
}

// QueueDrainResult reports the outcome of one ProcessQueue pass.
type QueueDrainResult struct {
	// AlreadyProcessing is true when a drain was already in flight and this
	// call was a no-op.
	AlreadyProcessing bool `json:"already_processing"`

	// Offline is true when no drain was attempted because the device was
	// offline.
	Offline bool `json:"offline"`

	// Processed counts items replayed successfully and removed.
	Processed int `json:"processed"`

	// Failed counts items that failed during this pass, whether or not they
	// reached the terminal failed state.
	Failed int `json:"failed"`
}
