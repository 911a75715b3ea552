// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fitsync/fitsync/models"
)

// DetectConflict compares the local and remote copies of one entity against
// the last sync baseline. A conflict exists only when BOTH sides changed
// since the last known-common state; a single-sided change is ordinary sync
// traffic and the changed side simply wins.
//
// The local side diverges through its sync status, not its timestamp: a
// pending or error entity holds unpushed edits no matter how old its
// updatedAt is (a push that failed cycles ago must still not be clobbered).
// The remote side diverges when its updatedAt passed the baseline. A nil
// lastSync (never synced) falls back to the zero time, so any stamped remote
// update counts as diverged.
func DetectConflict(local, remote models.Entity, lastSync *time.Time) models.ConflictCheck {
	baseline := time.Time{}
	if lastSync != nil {
		baseline = *lastSync
	}

	localDiverged := local.SyncStatus == models.StatusPending || local.SyncStatus == models.StatusError
	remoteDiverged := remote.UpdatedAt.After(baseline)

	if !localDiverged || !remoteDiverged {
		return models.ConflictCheck{}
	}
	if local.UpdatedAt.Equal(remote.UpdatedAt) && len(diffFields(local, remote)) == 0 {
		// both stamped at the same instant with identical content: the
		// copies converged on their own
		return models.ConflictCheck{}
	}

	return models.ConflictCheck{
		InConflict: true,
		Fields:     diffFields(local, remote),
	}
}

// ResolveConflict picks the surviving copy according to strategy. The inputs
// are never mutated; the returned Resolution carries deep copies.
//
// StrategyManual never picks: the resolution comes back with RequiresManual
// set and both copies attached for the caller to surface.
func ResolveConflict(local, remote models.Entity, strategy models.ConflictStrategy) (models.Resolution, error) {
	lc := local.Clone()
	rc := remote.Clone()

	switch strategy {
	case models.StrategyLocalWins:
		return models.Resolution{Entity: local.Clone(), Winner: models.WinnerLocal, Remote: &rc}, nil

	case models.StrategyRemoteWins:
		return models.Resolution{Entity: remote.Clone(), Winner: models.WinnerRemote, Local: &lc}, nil

	case models.StrategyLastWriteWins:
		// ties go to the remote copy: the server timestamp is the shared
		// reference other devices already observed
		if local.UpdatedAt.After(remote.UpdatedAt) {
			return models.Resolution{Entity: local.Clone(), Winner: models.WinnerLocal, Remote: &rc}, nil
		}
		return models.Resolution{Entity: remote.Clone(), Winner: models.WinnerRemote, Local: &lc}, nil

	case models.StrategyMerge:
		// both inputs lost something; keep both for the audit copy
		return models.Resolution{
			Entity: mergeEntities(local, remote),
			Winner: models.WinnerMerged,
			Local:  &lc,
			Remote: &rc,
		}, nil

	case models.StrategyManual:
		return models.Resolution{
			Winner:         models.WinnerNone,
			RequiresManual: true,
			Local:          &lc,
			Remote:         &rc,
		}, nil

	default:
		return models.Resolution{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// mergeEntities builds a combined copy: scalar fields come from the side
// updated later, exercises merge by name, and divergent sets resolve per
// index preferring completed work, then the heavier volume.
func mergeEntities(local, remote models.Entity) models.Entity {
	newer, older := local, remote
	if remote.UpdatedAt.After(local.UpdatedAt) {
		newer, older = remote, local
	}

	merged := newer.Clone()

	if merged.IsWorkout() {
		merged.Exercises = mergeExercises(newer.Exercises, older.Exercises)
	}
	if merged.IsRestDay() {
		merged.Activities = mergeActivities(newer.Activities, older.Activities)
	}

	return merged
}

// mergeExercises unions two exercise lists by exercise name. The newer
// side's ordering leads; exercises only the older side knows are appended in
// their own order.
func mergeExercises(newer, older []models.Exercise) []models.Exercise {
	byName := make(map[string]models.Exercise, len(older))
	for _, ex := range older {
		byName[ex.Name] = ex
	}

	var merged []models.Exercise
	for _, ex := range newer {
		cp := ex
		if other, ok := byName[ex.Name]; ok {
			cp.Sets = mergeSets(ex.Sets, other.Sets)
			delete(byName, ex.Name)
		}
		merged = append(merged, cp)
	}

	for _, ex := range older {
		if _, pending := byName[ex.Name]; pending {
			merged = append(merged, ex)
		}
	}

	for i := range merged {
		merged[i].OrderIndex = i
	}

	return merged
}

// mergeSets resolves two set lists position by position. At each index the
// completed set beats the incomplete one; between two completed (or two
// incomplete) sets the higher weight times reps volume survives. The longer
// list's tail carries over untouched.
func mergeSets(a, b []models.Set) []models.Set {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var merged []models.Set
	for i := 0; i < n; i++ {
		switch {
		case i >= len(a):
			merged = append(merged, b[i])
		case i >= len(b):
			merged = append(merged, a[i])
		default:
			merged = append(merged, pickSet(a[i], b[i]))
		}
	}

	for i := range merged {
		merged[i].OrderIndex = i
	}

	return merged
}

func pickSet(x, y models.Set) models.Set {
	if x.Completed != y.Completed {
		if x.Completed {
			return x
		}
		return y
	}
	if y.Weight*float64(y.Reps) > x.Weight*float64(x.Reps) {
		return y
	}
	return x
}

// mergeActivities unions the activity lists, the newer side's order first,
// dropping duplicates.
func mergeActivities(newer, older []string) []string {
	seen := make(map[string]bool, len(newer))
	var merged []string

	for _, a := range newer {
		if !seen[a] {
			seen[a] = true
			merged = append(merged, a)
		}
	}
	for _, a := range older {
		if !seen[a] {
			seen[a] = true
			merged = append(merged, a)
		}
	}

	return merged
}

func diffFields(local, remote models.Entity) []models.FieldDiff {
	var diffs []models.FieldDiff

	add := func(field, lv, rv string) {
		if lv != rv {
			diffs = append(diffs, models.FieldDiff{Field: field, Local: lv, Remote: rv})
		}
	}

	add("type", string(local.Type), string(remote.Type))
	add("name", local.Name, remote.Name)
	add("date", local.Date.UTC().Format(time.RFC3339), remote.Date.UTC().Format(time.RFC3339))
	add("duration", strconv.Itoa(local.Duration), strconv.Itoa(remote.Duration))
	add("notes", local.Notes, remote.Notes)

	if local.IsRestDay() || remote.IsRestDay() {
		add("recovery_quality", strconv.Itoa(local.RecoveryQuality), strconv.Itoa(remote.RecoveryQuality))
		add("activities", fmt.Sprintf("%v", local.Activities), fmt.Sprintf("%v", remote.Activities))
	}
	if local.IsWorkout() || remote.IsWorkout() {
		add("exercises", summarizeExercises(local.Exercises), summarizeExercises(remote.Exercises))
	}

	return diffs
}

func summarizeExercises(exercises []models.Exercise) string {
	total := 0
	for _, ex := range exercises {
		total += len(ex.Sets)
	}
	return fmt.Sprintf("%d exercises, %d sets", len(exercises), total)
}
