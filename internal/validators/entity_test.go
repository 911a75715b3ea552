// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package validators

import (
	"context"
	"testing"
	"time"

	"github.com/fitsync/fitsync/models"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validWorkout() models.Entity {
	return models.Entity{
		ID:       "srv-1",
		UserID:   "user-1",
		Type:     models.EntityWorkout,
		Name:     "Push Day",
		Date:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Duration: 60,
		Exercises: []models.Exercise{
			{Name: "Bench Press", Sets: []models.Set{{Reps: 5, Weight: 80}}},
		},
	}
}

func validRestDay() models.Entity {
	return models.Entity{
		ID:              "srv-2",
		UserID:          "user-1",
		Type:            models.EntityRestDay,
		Name:            "Recovery",
		Date:            time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		RecoveryQuality: 4,
		Activities:      []string{"yoga"},
	}
}

// ---------------------------------------------------------------------------
// TestValidate_Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		err := v.Validate(ctx, "a string")
		require.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("entity value and pointer", func(t *testing.T) {
		e := validWorkout()
		require.NoError(t, v.Validate(ctx, e))
		require.NoError(t, v.Validate(ctx, &e))
	})

	t.Run("template value and pointer", func(t *testing.T) {
		tpl := models.WorkoutTemplate{Name: "5x5"}
		require.NoError(t, v.Validate(ctx, tpl))
		require.NoError(t, v.Validate(ctx, &tpl))
	})
}

// ---------------------------------------------------------------------------
// TestValidate_Entity
// ---------------------------------------------------------------------------

func TestValidate_Entity(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(e *models.Entity)
		wantErr error
	}{
		{"valid workout", func(e *models.Entity) {}, nil},
		{"unknown type", func(e *models.Entity) { e.Type = "nap" }, ErrInvalidEntityType},
		{"empty name", func(e *models.Entity) { e.Name = "" }, ErrEmptyName},
		{"zero date", func(e *models.Entity) { e.Date = time.Time{} }, ErrMissingDate},
		{"negative duration", func(e *models.Entity) { e.Duration = -1 }, ErrNegativeDuration},
		{"workout with activities", func(e *models.Entity) { e.Activities = []string{"yoga"} }, ErrActivitiesOnWorkout},
		{"unnamed exercise", func(e *models.Entity) { e.Exercises[0].Name = "" }, ErrEmptyExerciseName},
		{"negative reps", func(e *models.Entity) { e.Exercises[0].Sets[0].Reps = -1 }, ErrNegativeReps},
		{"negative weight", func(e *models.Entity) { e.Exercises[0].Sets[0].Weight = -5 }, ErrNegativeWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validWorkout()
			tt.mutate(&e)

			err := v.Validate(ctx, e)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_RestDay(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(e *models.Entity)
		wantErr error
	}{
		{"valid rest day", func(e *models.Entity) {}, nil},
		{"quality too low", func(e *models.Entity) { e.RecoveryQuality = 0 }, ErrInvalidRecoveryQuality},
		{"quality too high", func(e *models.Entity) { e.RecoveryQuality = 6 }, ErrInvalidRecoveryQuality},
		{"rest day with exercises", func(e *models.Entity) {
			e.Exercises = []models.Exercise{{Name: "Squat"}}
		}, ErrExercisesOnRestDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validRestDay()
			tt.mutate(&e)

			err := v.Validate(ctx, e)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidate_FieldScoping
// ---------------------------------------------------------------------------

func TestValidate_FieldScoping(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()

	e := validWorkout()
	e.Name = ""

	// only the date is checked, so the empty name passes
	require.NoError(t, v.Validate(ctx, e, FieldDate))
	require.ErrorIs(t, v.Validate(ctx, e, FieldName), ErrEmptyName)
	require.ErrorIs(t, v.Validate(ctx, e, "nonsense"), ErrUnknownField)
}

// ---------------------------------------------------------------------------
// TestValidate_Template
// ---------------------------------------------------------------------------

func TestValidate_Template(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()

	t.Run("empty name", func(t *testing.T) {
		err := v.Validate(ctx, models.WorkoutTemplate{})
		require.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("bad target set", func(t *testing.T) {
		tpl := models.WorkoutTemplate{
			Name:      "5x5",
			Exercises: []models.Exercise{{Name: "Squat", Sets: []models.Set{{Reps: -5}}}},
		}
		err := v.Validate(ctx, tpl)
		require.ErrorIs(t, err, ErrNegativeReps)
	})
}
