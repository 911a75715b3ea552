// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity_Clone_IsIndependent(t *testing.T) {
	seconds := 90
	original := Entity{
		ID:   "srv-1",
		Type: EntityWorkout,
		Name: "Push Day",
		Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Exercises: []Exercise{
			{
				ID:   "ex-1",
				Name: "Bench Press",
				Sets: []Set{
					{ID: "set-1", Reps: 5, Weight: 80, Duration: &seconds},
				},
			},
		},
		Activities: []string{"stretching"},
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Name = "Pull Day"
	clone.Exercises[0].Name = "Row"
	clone.Exercises[0].Sets[0].Reps = 8
	*clone.Exercises[0].Sets[0].Duration = 30
	clone.Activities[0] = "sauna"

	assert.Equal(t, "Push Day", original.Name)
	assert.Equal(t, "Bench Press", original.Exercises[0].Name)
	assert.Equal(t, 5, original.Exercises[0].Sets[0].Reps)
	assert.Equal(t, 90, *original.Exercises[0].Sets[0].Duration)
	assert.Equal(t, "stretching", original.Activities[0])
}

func TestEntity_Clone_PreservesNilSlices(t *testing.T) {
	clone := Entity{ID: "srv-1", Type: EntityWorkout}.Clone()

	assert.Nil(t, clone.Exercises)
	assert.Nil(t, clone.Activities)
}

func TestEntity_TotalVolume(t *testing.T) {
	e := Entity{
		Type: EntityWorkout,
		Exercises: []Exercise{
			{Sets: []Set{{Reps: 5, Weight: 100}, {Reps: 5, Weight: 100}}},
			{Sets: []Set{{Reps: 10, Weight: 20}}},
		},
	}

	assert.InDelta(t, 1200.0, e.TotalVolume(), 1e-9)
	assert.Zero(t, (&Entity{Type: EntityRestDay}).TotalVolume())
}

func TestEntity_TypePredicates(t *testing.T) {
	workout := Entity{Type: EntityWorkout}
	rest := Entity{Type: EntityRestDay}

	assert.True(t, workout.IsWorkout())
	assert.False(t, workout.IsRestDay())
	assert.True(t, rest.IsRestDay())
	assert.False(t, rest.IsWorkout())
}
