// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package models

import "time"

// EntityType tags the two kinds of tracked entries that share the sync
// pipeline. Every site that branches on the type must handle both values
// explicitly.
type EntityType string

const (
	// EntityWorkout is a training session with exercises and sets.
	EntityWorkout EntityType = "workout"

	// EntityRestDay is a recovery entry with a quality score and a list of
	// light activities.
	EntityRestDay EntityType = "rest_day"
)

// SyncStatus describes where an entity stands relative to the remote replica.
//
// Allowed transitions:
//
//	local/pending → synced   (push confirmed)
//	synced        → pending  (local edit)
//	pending       → error    (push failed)
//	error         → pending  (retry)
type SyncStatus string

const (
	// StatusLocal marks an entity created without an authenticated user.
	// It is never pushed.
	StatusLocal SyncStatus = "local"

	// StatusPending marks an entity created or edited locally and not yet
	// confirmed by the remote.
	StatusPending SyncStatus = "pending"

	// StatusSynced marks an entity confirmed identical to the remote copy as
	// of the last sync.
	StatusSynced SyncStatus = "synced"

	// StatusError marks an entity whose last push attempt failed.
	StatusError SyncStatus = "error"
)

// Entity is a workout or a rest day. The Type tag decides which of the
// type-specific field groups is meaningful; the shared fields apply to both.
type Entity struct {
	// ID is either a locally-minted id (prefixed, assigned at offline
	// creation) or a server-assigned id once the entity has been pushed.
	ID string `json:"id"`

	// UserID is the owning user's server-side identifier. Empty for
	// StatusLocal entities created before authentication.
	UserID string `json:"user_id"`

	Type EntityType `json:"type"`

	Name string `json:"name"`

	// Date is the calendar day the workout or rest day belongs to.
	Date time.Time `json:"date"`

	// Duration is the session length in minutes.
	Duration int `json:"duration"`

	Notes string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is authoritative for ordering during conflict detection.
	// Whichever side mutates the entity must stamp it.
	UpdatedAt time.Time `json:"updated_at"`

	SyncStatus SyncStatus `json:"sync_status"`

	// Exercises is the ordered exercise list. Meaningful only when Type is
	// EntityWorkout.
	Exercises []Exercise `json:"exercises,omitempty"`

	// RecoveryQuality is a 1–5 self-assessment. Meaningful only when Type is
	// EntityRestDay.
	RecoveryQuality int `json:"recovery_quality,omitempty"`

	// Activities lists recovery activities in order. Meaningful only when
	// Type is EntityRestDay.
	Activities []string `json:"activities,omitempty"`
}

// Exercise is one movement inside a workout, owning an ordered list of sets.
type Exercise struct {
	ID string `json:"id"`

	// WorkoutID references the owning Entity. Rewritten together with the
	// entity id when a locally-minted workout is first pushed.
	WorkoutID string `json:"workout_id"`

	Name string `json:"name"`

	// OrderIndex fixes the exercise position within the workout. Storage may
	// return rows in any order, so position is explicit rather than
	// insertion-derived.
	OrderIndex int `json:"order_index"`

	Sets []Set `json:"sets,omitempty"`
}

// Set is a single set of an exercise.
type Set struct {
	ID string `json:"id"`

	// ExerciseID references the owning Exercise.
	ExerciseID string `json:"exercise_id"`

	// OrderIndex fixes the set position within the exercise.
	OrderIndex int `json:"order_index"`

	Reps int `json:"reps"`

	// Weight is the load in kilograms.
	Weight float64 `json:"weight"`

	// Duration is the set length in seconds, set for cardio work only.
	Duration *int `json:"duration,omitempty"`

	Completed bool `json:"completed"`
}

// IsWorkout reports whether the entity carries workout-specific fields.
func (e *Entity) IsWorkout() bool {
	return e.Type == EntityWorkout
}

// IsRestDay reports whether the entity carries rest-day-specific fields.
func (e *Entity) IsRestDay() bool {
	return e.Type == EntityRestDay
}

// Clone returns a deep copy of the entity, including exercises, sets, and
// activities. Conflict resolution mutates copies, never its inputs.
func (e Entity) Clone() Entity {
	out := e

	if e.Exercises != nil {
		out.Exercises = make([]Exercise, len(e.Exercises))
		for i, ex := range e.Exercises {
			cp := ex
			if ex.Sets != nil {
				cp.Sets = make([]Set, len(ex.Sets))
				for j, s := range ex.Sets {
					sc := s
					if s.Duration != nil {
						d := *s.Duration
						sc.Duration = &d
					}
					cp.Sets[j] = sc
				}
			}
			out.Exercises[i] = cp
		}
	}

	if e.Activities != nil {
		out.Activities = append([]string(nil), e.Activities...)
	}

	return out
}

// TotalVolume sums weight×reps over every set of the workout. Used as the
// deciding metric when merging divergent sets.
func (e *Entity) TotalVolume() float64 {
	var total float64
	for _, ex := range e.Exercises {
		for _, s := range ex.Sets {
			total += s.Weight * float64(s.Reps)
		}
	}
	return total
}
