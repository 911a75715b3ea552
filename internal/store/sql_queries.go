// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/fitsync/fitsync/models"
)

const (
	insertEntity = `
		INSERT INTO entities (
			id,
			user_id,
			type,
			name,
			date,
			duration_minutes,
			notes,
			recovery_quality,
			created_at,
			updated_at,
			sync_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	updateEntity = `
		UPDATE entities SET
			user_id          = ?,
			type             = ?,
			name             = ?,
			date             = ?,
			duration_minutes = ?,
			notes            = ?,
			recovery_quality = ?,
			updated_at       = ?,
			sync_status      = ?
		WHERE id = ?;`

	getEntityByID = `
		SELECT
			id,
			user_id,
			type,
			name,
			date,
			duration_minutes,
			notes,
			recovery_quality,
			created_at,
			updated_at,
			sync_status
		FROM entities
		WHERE id = ?;`

	getEntityState = `
		SELECT sync_status, created_at FROM entities WHERE id = ?;`

	setEntityStatus = `
		UPDATE entities SET sync_status = ? WHERE id = ?;`

	deleteEntityByID = `
		DELETE FROM entities WHERE id = ?;`

	insertExercise = `
		INSERT INTO exercises (id, workout_id, name, order_index)
		VALUES (?, ?, ?, ?);`

	getExercisesByEntity = `
		SELECT id, workout_id, name, order_index
		FROM exercises
		WHERE workout_id = ?
		ORDER BY order_index;`

	deleteExercisesByEntity = `
		DELETE FROM exercises WHERE workout_id = ?;`

	insertSet = `
		INSERT INTO sets (
			id,
			exercise_id,
			order_index,
			reps,
			weight_kg,
			duration_seconds,
			completed
		) VALUES (?, ?, ?, ?, ?, ?, ?);`

	getSetsByExercise = `
		SELECT id, exercise_id, order_index, reps, weight_kg, duration_seconds, completed
		FROM sets
		WHERE exercise_id = ?
		ORDER BY order_index;`

	deleteSetsByEntity = `
		DELETE FROM sets
		WHERE exercise_id IN (SELECT id FROM exercises WHERE workout_id = ?);`

	insertActivity = `
		INSERT INTO rest_day_activities (entity_id, activity, order_index)
		VALUES (?, ?, ?);`

	getActivitiesByEntity = `
		SELECT activity
		FROM rest_day_activities
		WHERE entity_id = ?
		ORDER BY order_index;`

	deleteActivitiesByEntity = `
		DELETE FROM rest_day_activities WHERE entity_id = ?;`

	remapEntityID = `
		UPDATE entities SET id = ? WHERE id = ?;`

	remapExerciseWorkoutID = `
		UPDATE exercises SET workout_id = ? WHERE workout_id = ?;`

	remapActivityEntityID = `
		UPDATE rest_day_activities SET entity_id = ? WHERE entity_id = ?;`

	insertQueueItem = `
		INSERT INTO sync_queue (operation, data, timestamp, status, retry_count, error, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?);`

	getQueueItemByID = `
		SELECT id, operation, data, timestamp, status, retry_count, error, user_id
		FROM sync_queue
		WHERE id = ?;`

	updateQueueItem = `
		UPDATE sync_queue SET
			status      = ?,
			retry_count = ?,
			error       = ?
		WHERE id = ?;`

	deleteQueueItemByID = `
		DELETE FROM sync_queue WHERE id = ?;`

	upsertTemplate = `
		INSERT INTO templates (id, user_id, name, exercises, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id     = excluded.user_id,
			name        = excluded.name,
			exercises   = excluded.exercises,
			updated_at  = excluded.updated_at,
			sync_status = excluded.sync_status;`

	getTemplateByID = `
		SELECT id, user_id, name, exercises, created_at, updated_at, sync_status
		FROM templates
		WHERE id = ?;`

	getAllTemplates = `
		SELECT id, user_id, name, exercises, created_at, updated_at, sync_status
		FROM templates
		WHERE user_id = ?
		ORDER BY created_at;`

	deleteTemplateByID = `
		DELETE FROM templates WHERE id = ?;`

	remapTemplateID = `
		UPDATE templates SET id = ? WHERE id = ?;`

	setTemplateStatus = `
		UPDATE templates SET sync_status = ? WHERE id = ?;`

	upsertMetadata = `
		INSERT INTO metadata (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	getMetadata = `
		SELECT value FROM metadata WHERE key = ?;`
)

// entityColumns is the canonical column order shared by the static queries
// above and the dynamic builders below. Scan call sites rely on it.
var entityColumns = []string{
	"id",
	"user_id",
	"type",
	"name",
	"date",
	"duration_minutes",
	"notes",
	"recovery_quality",
	"created_at",
	"updated_at",
	"sync_status",
}

// buildSelectEntities assembles the filtered entity listing. Status filters
// vary per call site, so this one is built dynamically instead of living in
// the const block.
func buildSelectEntities(userID string, statuses ...models.SyncStatus) (string, []any, error) {
	b := sq.Select(entityColumns...).
		From("entities").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC")

	if len(statuses) > 0 {
		b = b.Where(sq.Eq{"sync_status": statuses})
	}

	return b.ToSql()
}

func buildCountEntities(userID string, status models.SyncStatus) (string, []any, error) {
	return sq.Select("COUNT(*)").
		From("entities").
		Where(sq.Eq{"user_id": userID, "sync_status": status}).
		ToSql()
}

func buildSelectQueue(status models.QueueStatus) (string, []any, error) {
	return sq.Select("id", "operation", "data", "timestamp", "status", "retry_count", "error", "user_id").
		From("sync_queue").
		Where(sq.Eq{"status": status}).
		OrderBy("timestamp ASC", "id ASC").
		ToSql()
}

func buildCountQueue(status models.QueueStatus) (string, []any, error) {
	return sq.Select("COUNT(*)").
		From("sync_queue").
		Where(sq.Eq{"status": status}).
		ToSql()
}

func buildDeleteQueue(status models.QueueStatus) (string, []any, error) {
	return sq.Delete("sync_queue").
		Where(sq.Eq{"status": status}).
		ToSql()
}
