package models

import "time"

// WorkoutTemplate is a reusable workout blueprint. Templates are device-owned
// documents: they push through the operation queue but are never pulled or
// conflict-resolved.
type WorkoutTemplate struct {
	ID string `json:"id"`

	UserID string `json:"user_id"`

	Name string `json:"name"`

	// Exercises is the ordered exercise list the template stamps onto new
	// workouts. Sets carry target reps/weight, not performed values.
	Exercises []Exercise `json:"exercises,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	UpdatedAt time.Time `json:"updated_at"`

	SyncStatus SyncStatus `json:"sync_status"`
}
