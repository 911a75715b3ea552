package validators

import (
	"context"
	"fmt"

	"github.com/fitsync/fitsync/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldType targets the workout/rest-day type tag.
	FieldType = "type"

	// FieldName targets the entity or template display name.
	FieldName = "name"

	// FieldDate targets the calendar day the entry belongs to.
	FieldDate = "date"

	// FieldDuration targets the session length in minutes.
	FieldDuration = "duration"

	// FieldRecoveryQuality targets the 1-5 rest-day self-assessment.
	FieldRecoveryQuality = "recovery_quality"

	// FieldExercises targets the exercise list with its sets.
	FieldExercises = "exercises"
)

var allowedEntityTypes = []models.EntityType{
	models.EntityWorkout,
	models.EntityRestDay,
}

type EntityValidator struct {
}

func NewEntityValidator() Validator {
	return &EntityValidator{}
}

// Validate dispatches validation based on the dynamic type of obj. Both
// value and pointer forms of each supported model are accepted.
//
// Supported types:
//   - models.Entity / *models.Entity
//   - models.WorkoutTemplate / *models.WorkoutTemplate
//
// Returns ErrUnsupportedType if obj does not match any known model.
func (v *EntityValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Entity:
		return v.validateEntity(ctx, value, fields...)
	case *models.Entity:
		return v.validateEntity(ctx, *value, fields...)

	case models.WorkoutTemplate:
		return v.validateTemplate(ctx, value, fields...)
	case *models.WorkoutTemplate:
		return v.validateTemplate(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func isValidEntityType(t models.EntityType) bool {
	for _, allowed := range allowedEntityTypes {
		if t == allowed {
			return true
		}
	}
	return false
}

// validateEntity validates a single workout or rest day.
//
// Default validated fields (when none specified):
// Type, Name, Date, Duration, RecoveryQuality, Exercises.
func (v *EntityValidator) validateEntity(ctx context.Context, entity models.Entity, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldType, FieldName, FieldDate, FieldDuration, FieldRecoveryQuality, FieldExercises}
	}

	for _, f := range fields {
		switch f {
		case FieldType:
			if !isValidEntityType(entity.Type) {
				return ErrInvalidEntityType
			}
		case FieldName:
			if entity.Name == "" {
				return ErrEmptyName
			}
		case FieldDate:
			if entity.Date.IsZero() {
				return ErrMissingDate
			}
		case FieldDuration:
			if entity.Duration < 0 {
				return ErrNegativeDuration
			}
		case FieldRecoveryQuality:
			if entity.IsRestDay() && (entity.RecoveryQuality < 1 || entity.RecoveryQuality > 5) {
				return ErrInvalidRecoveryQuality
			}
		case FieldExercises:
			if entity.IsRestDay() && len(entity.Exercises) > 0 {
				return ErrExercisesOnRestDay
			}
			if entity.IsWorkout() && len(entity.Activities) > 0 {
				return ErrActivitiesOnWorkout
			}
			if err := v.validateExercises(entity.Exercises); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateTemplate validates a workout template. Templates have no date and
// no rest-day fields, so only the name and the exercise list are checked.
func (v *EntityValidator) validateTemplate(ctx context.Context, tpl models.WorkoutTemplate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldName, FieldExercises}
	}

	for _, f := range fields {
		switch f {
		case FieldName:
			if tpl.Name == "" {
				return ErrEmptyName
			}
		case FieldExercises:
			if err := v.validateExercises(tpl.Exercises); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *EntityValidator) validateExercises(exercises []models.Exercise) error {
	for i, ex := range exercises {
		if ex.Name == "" {
			return fmt.Errorf("exercise at index %d: %w", i, ErrEmptyExerciseName)
		}
		for j, set := range ex.Sets {
			if set.Reps < 0 {
				return fmt.Errorf("exercise %q set %d: %w", ex.Name, j, ErrNegativeReps)
			}
			if set.Weight < 0 {
				return fmt.Errorf("exercise %q set %d: %w", ex.Name, j, ErrNegativeWeight)
			}
		}
	}

	return nil
}
