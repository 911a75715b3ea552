package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidEntityType      = errors.New("invalid entity type")
	ErrEmptyName              = errors.New("name is required")
	ErrMissingDate            = errors.New("date is required")
	ErrNegativeDuration       = errors.New("duration cannot be negative")
	ErrInvalidRecoveryQuality = errors.New("recovery quality must be between 1 and 5")
	ErrExercisesOnRestDay     = errors.New("a rest day cannot carry exercises")
	ErrActivitiesOnWorkout    = errors.New("a workout cannot carry recovery activities")
	ErrEmptyExerciseName      = errors.New("exercise name is required")
	ErrNegativeReps           = errors.New("reps cannot be negative")
	ErrNegativeWeight         = errors.New("weight cannot be negative")
)
