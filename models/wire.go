// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package models

import (
	"sort"
	"time"
)

// EntityRow is the wire shape of an entity: the flat parent row plus nested
// child rows, the way the hosted backend stores and returns them. SyncStatus
// is client-side bookkeeping and never crosses the wire.
type EntityRow struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Type            string        `json:"type"`
	Name            string        `json:"name"`
	Date            time.Time     `json:"date"`
	DurationMinutes int           `json:"duration_minutes"`
	Notes           string        `json:"notes"`
	RecoveryQuality *int          `json:"recovery_quality,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Exercises       []ExerciseRow `json:"exercises,omitempty"`
	Activities      []ActivityRow `json:"rest_day_activities,omitempty"`
}

// ExerciseRow is the wire shape of one exercise row with its nested sets.
type ExerciseRow struct {
	ID         string   `json:"id"`
	WorkoutID  string   `json:"workout_id"`
	Name       string   `json:"name"`
	OrderIndex int      `json:"order_index"`
	Sets       []SetRow `json:"sets,omitempty"`
}

// SetRow is the wire shape of one set row.
type SetRow struct {
	ID              string  `json:"id"`
	ExerciseID      string  `json:"exercise_id"`
	OrderIndex      int     `json:"order_index"`
	Reps            int     `json:"reps"`
	WeightKg        float64 `json:"weight_kg"`
	DurationSeconds *int    `json:"duration_seconds,omitempty"`
	Completed       bool    `json:"completed"`
}

// ActivityRow is the wire shape of one rest-day activity row.
type ActivityRow struct {
	EntityID   string `json:"entity_id"`
	Activity   string `json:"activity"`
	OrderIndex int    `json:"order_index"`
}

// TemplateRow is the wire shape of a workout template.
type TemplateRow struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Exercises []ExerciseRow `json:"exercises,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ToWire converts an entity to its wire shape. Order indexes are written
// explicitly from slice position so the mapping is stable regardless of how
// the entity was assembled.
func ToWire(e Entity) EntityRow {
	row := EntityRow{
		ID:              e.ID,
		UserID:          e.UserID,
		Type:            string(e.Type),
		Name:            e.Name,
		Date:            e.Date,
		DurationMinutes: e.Duration,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}

	if e.Type == EntityRestDay {
		q := e.RecoveryQuality
		row.RecoveryQuality = &q
		for i, a := range e.Activities {
			row.Activities = append(row.Activities, ActivityRow{
				EntityID:   e.ID,
				Activity:   a,
				OrderIndex: i,
			})
		}
		return row
	}

	for i, ex := range e.Exercises {
		exRow := ExerciseRow{
			ID:         ex.ID,
			WorkoutID:  e.ID,
			Name:       ex.Name,
			OrderIndex: i,
		}
		for j, s := range ex.Sets {
			setRow := SetRow{
				ID:         s.ID,
				ExerciseID: ex.ID,
				OrderIndex: j,
				Reps:       s.Reps,
				WeightKg:   s.Weight,
				Completed:  s.Completed,
			}
			if s.Duration != nil {
				d := *s.Duration
				setRow.DurationSeconds = &d
			}
			exRow.Sets = append(exRow.Sets, setRow)
		}
		row.Exercises = append(row.Exercises, exRow)
	}

	return row
}

// FromWire converts a wire row back into an entity, re-sorting children by
// their explicit order index. SyncStatus is left empty for the caller to set.
func FromWire(row EntityRow) Entity {
	e := Entity{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      EntityType(row.Type),
		Name:      row.Name,
		Date:      row.Date,
		Duration:  row.DurationMinutes,
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if e.Type == EntityRestDay {
		if row.RecoveryQuality != nil {
			e.RecoveryQuality = *row.RecoveryQuality
		}
		acts := append([]ActivityRow(nil), row.Activities...)
		sort.SliceStable(acts, func(i, j int) bool { return acts[i].OrderIndex < acts[j].OrderIndex })
		for _, a := range acts {
			e.Activities = append(e.Activities, a.Activity)
		}
		return e
	}

	exRows := append([]ExerciseRow(nil), row.Exercises...)
	sort.SliceStable(exRows, func(i, j int) bool { return exRows[i].OrderIndex < exRows[j].OrderIndex })
	for _, exRow := range exRows {
		ex := Exercise{
			ID:         exRow.ID,
			WorkoutID:  row.ID,
			Name:       exRow.Name,
			OrderIndex: exRow.OrderIndex,
		}
		setRows := append([]SetRow(nil), exRow.Sets...)
		sort.SliceStable(setRows, func(i, j int) bool { return setRows[i].OrderIndex < setRows[j].OrderIndex })
		for _, sr := range setRows {
			s := Set{
				ID:         sr.ID,
				ExerciseID: exRow.ID,
				OrderIndex: sr.OrderIndex,
				Reps:       sr.Reps,
				Weight:     sr.WeightKg,
				Completed:  sr.Completed,
			}
			if sr.DurationSeconds != nil {
				d := *sr.DurationSeconds
				s.Duration = &d
			}
			ex.Sets = append(ex.Sets, s)
		}
		e.Exercises = append(e.Exercises, ex)
	}

	return e
}

// TemplateToWire converts a template to its wire shape.
func TemplateToWire(t WorkoutTemplate) TemplateRow {
	row := TemplateRow{
		ID:        t.ID,
		UserID:    t.UserID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for i, ex := range t.Exercises {
		exRow := ExerciseRow{ID: ex.ID, WorkoutID: t.ID, Name: ex.Name, OrderIndex: i}
		for j, s := range ex.Sets {
			sr := SetRow{ID: s.ID, ExerciseID: ex.ID, OrderIndex: j, Reps: s.Reps, WeightKg: s.Weight, Completed: s.Completed}
			if s.Duration != nil {
				d := *s.Duration
				sr.DurationSeconds = &d
			}
			exRow.Sets = append(exRow.Sets, sr)
		}
		row.Exercises = append(row.Exercises, exRow)
	}
	return row
}

// TemplateFromWire converts a template wire row back, re-sorting children by
// order index. SyncStatus is left empty for the caller to set.
func TemplateFromWire(row TemplateRow) WorkoutTemplate {
	t := WorkoutTemplate{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	carrier := FromWire(EntityRow{ID: row.ID, Type: string(EntityWorkout), Exercises: row.Exercises})
	t.Exercises = carrier.Exercises
	return t
}
