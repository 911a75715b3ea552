// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/models"
)

type localEntityRepository struct {
	*DB
	logger *logger.Logger
	ids    *utils.UUIDGenerator
}

func NewLocalEntityRepository(db *DB, logger *logger.Logger, ids *utils.UUIDGenerator) LocalEntityRepository {
	return &localEntityRepository{
		DB:     db,
		logger: logger,
		ids:    ids,
	}
}

func (l *localEntityRepository) GetAllWithRelations(ctx context.Context, userID string) ([]models.Entity, error) {
	return l.selectEntities(ctx, "localEntityRepository.GetAllWithRelations", userID)
}

func (l *localEntityRepository) GetByStatus(ctx context.Context, userID string, status models.SyncStatus) ([]models.Entity, error) {
	return l.selectEntities(ctx, "localEntityRepository.GetByStatus", userID, status)
}

func (l *localEntityRepository) selectEntities(ctx context.Context, caller string, userID string, statuses ...models.SyncStatus) ([]models.Entity, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectEntities(userID, statuses...)
	if err != nil {
		log.Err(err).Str("func", caller).Msg("failed to build entity select query")
		return nil, fmt.Errorf("failed to build entity select query: %w", err)
	}

	rows, err := l.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", caller).
			Str("user_id", userID).
			Msg("failed to execute query for entities")
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []models.Entity

	for rows.Next() {
		entity, scanErr := scanEntity(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", caller).
				Str("user_id", userID).
				Msg("failed to scan entity row")
			return nil, fmt.Errorf("failed to scan entity row: %w", scanErr)
		}
		entities = append(entities, entity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", caller).
			Str("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating entity rows: %w", rowsErr)
	}

	for i := range entities {
		if err = l.loadRelations(ctx, &entities[i]); err != nil {
			return nil, err
		}
	}

	return entities, nil
}

func (l *localEntityRepository) GetWithRelations(ctx context.Context, id string) (models.Entity, error) {
	log := logger.FromContext(ctx)

	row := l.DB.QueryRowContext(ctx, getEntityByID, id)

	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entity{}, ErrEntityNotFound
		}
		log.Err(err).
			Str("func", "localEntityRepository.GetWithRelations").
			Str("id", id).
			Msg("failed to scan entity row")
		return models.Entity{}, fmt.Errorf("failed to scan entity row: %w", err)
	}

	if err = l.loadRelations(ctx, &entity); err != nil {
		return models.Entity{}, err
	}

	return entity, nil
}

func (l *localEntityRepository) CountByStatus(ctx context.Context, userID string, status models.SyncStatus) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountEntities(userID, status)
	if err != nil {
		log.Err(err).Str("func", "localEntityRepository.CountByStatus").Msg("failed to build entity count query")
		return 0, fmt.Errorf("failed to build entity count query: %w", err)
	}

	var count int
	if err = l.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.CountByStatus").
			Str("user_id", userID).
			Str("sync_status", string(status)).
			Msg("failed to count entities")
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}

	return count, nil
}

func (l *localEntityRepository) AddWithRelations(ctx context.Context, entity models.Entity) (models.Entity, error) {
	log := logger.FromContext(ctx)

	entity = entity.Clone()

	now := time.Now().UTC()
	if entity.ID == "" {
		entity.ID = l.ids.NewLocalID()
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	if entity.UpdatedAt.IsZero() {
		entity.UpdatedAt = now
	}
	if entity.SyncStatus == "" {
		if entity.UserID == "" {
			entity.SyncStatus = models.StatusLocal
		} else {
			entity.SyncStatus = models.StatusPending
		}
	}
	l.normalizeChildren(&entity)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "localEntityRepository.AddWithRelations").Msg("failed to begin transaction")
		return models.Entity{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err = insertEntityTree(ctx, tx, entity); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.AddWithRelations").
			Str("id", entity.ID).
			Msg("failed to insert entity tree")
		return models.Entity{}, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "localEntityRepository.AddWithRelations").Msg("failed to commit transaction")
		return models.Entity{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entity, nil
}

func (l *localEntityRepository) UpdateWithRelations(ctx context.Context, id string, entity models.Entity) (models.Entity, error) {
	log := logger.FromContext(ctx)

	entity = entity.Clone()
	entity.ID = id
	entity.UpdatedAt = time.Now().UTC()
	l.normalizeChildren(&entity)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "localEntityRepository.UpdateWithRelations").Msg("failed to begin transaction")
		return models.Entity{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current models.SyncStatus
	var createdAt time.Time
	if err = tx.QueryRowContext(ctx, getEntityState, id).Scan(&current, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entity{}, ErrEntityNotFound
		}
		log.Err(err).
			Str("func", "localEntityRepository.UpdateWithRelations").
			Str("id", id).
			Msg("failed to read current entity state")
		return models.Entity{}, fmt.Errorf("failed to read current entity state: %w", err)
	}

	entity.CreatedAt = createdAt

	// A local edit dirties a synced entity; a failed entity becomes
	// retryable again. Local and pending stay as they are.
	switch current {
	case models.StatusSynced, models.StatusError:
		entity.SyncStatus = models.StatusPending
	default:
		entity.SyncStatus = current
	}

	_, err = tx.ExecContext(ctx, updateEntity,
		entity.UserID,
		entity.Type,
		entity.Name,
		entity.Date,
		entity.Duration,
		entity.Notes,
		entity.RecoveryQuality,
		entity.UpdatedAt,
		entity.SyncStatus,
		id,
	)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.UpdateWithRelations").
			Str("id", id).
			Msg("failed to execute update for entity")
		return models.Entity{}, fmt.Errorf("failed to update entity (id=%s): %w", id, err)
	}

	if err = deleteEntityChildren(ctx, tx, id); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.UpdateWithRelations").
			Str("id", id).
			Msg("failed to delete child rows before reinsert")
		return models.Entity{}, err
	}

	if err = insertEntityChildren(ctx, tx, entity); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.UpdateWithRelations").
			Str("id", id).
			Msg("failed to reinsert child rows")
		return models.Entity{}, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "localEntityRepository.UpdateWithRelations").Msg("failed to commit transaction")
		return models.Entity{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entity, nil
}

func (l *localEntityRepository) UpsertFromRemote(ctx context.Context, entity models.Entity) error {
	log := logger.FromContext(ctx)

	entity = entity.Clone()
	l.normalizeChildren(&entity)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "localEntityRepository.UpsertFromRemote").Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err = deleteEntityChildren(ctx, tx, entity.ID); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.UpsertFromRemote").
			Str("id", entity.ID).
			Msg("failed to delete child rows before upsert")
		return err
	}

	if _, err = tx.ExecContext(ctx, deleteEntityByID, entity.ID); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.UpsertFromRemote").
			Str("id", entity.ID).
			Msg("failed to delete entity row before upsert")
		return fmt.Errorf("failed to delete entity (id=%s): %w", entity.ID, err)
	}

	if err = insertEntityTree(ctx, tx, entity); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.UpsertFromRemote").
			Str("id", entity.ID).
			Msg("failed to insert entity tree")
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "localEntityRepository.UpsertFromRemote").Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (l *localEntityRepository) DeleteWithRelations(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "localEntityRepository.DeleteWithRelations").Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err = deleteEntityChildren(ctx, tx, id); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.DeleteWithRelations").
			Str("id", id).
			Msg("failed to delete child rows")
		return err
	}

	if _, err = tx.ExecContext(ctx, deleteEntityByID, id); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.DeleteWithRelations").
			Str("id", id).
			Msg("failed to delete entity row")
		return fmt.Errorf("failed to delete entity (id=%s): %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "localEntityRepository.DeleteWithRelations").Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (l *localEntityRepository) RemapID(ctx context.Context, oldID, newID string) error {
	log := logger.FromContext(ctx)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "localEntityRepository.RemapID").Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, remapEntityID, newID, oldID)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.RemapID").
			Str("old_id", oldID).
			Str("new_id", newID).
			Msg("failed to remap entity id")
		return fmt.Errorf("failed to remap entity id (old=%s): %w", oldID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.RemapID").
			Str("old_id", oldID).
			Msg("failed to get rows affected after remap")
		return fmt.Errorf("failed to get rows affected (old=%s): %w", oldID, err)
	}
	if rowsAffected == 0 {
		log.Warn().
			Str("func", "localEntityRepository.RemapID").
			Str("old_id", oldID).
			Msg("no rows affected during remap: entity not found")
		return ErrEntityNotFound
	}

	// Child tables reference the entity id directly, so every referencing
	// column follows in the same transaction.
	for _, query := range []string{remapExerciseWorkoutID, remapActivityEntityID} {
		if _, err = tx.ExecContext(ctx, query, newID, oldID); err != nil {
			log.Err(err).
				Str("func", "localEntityRepository.RemapID").
				Str("old_id", oldID).
				Str("new_id", newID).
				Msg("failed to remap child reference")
			return fmt.Errorf("failed to remap child reference (old=%s): %w", oldID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "localEntityRepository.RemapID").Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (l *localEntityRepository) SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error {
	log := logger.FromContext(ctx)

	result, err := l.DB.ExecContext(ctx, setEntityStatus, status, id)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.SetSyncStatus").
			Str("id", id).
			Str("sync_status", string(status)).
			Msg("failed to update sync status")
		return fmt.Errorf("failed to update sync status (id=%s): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.SetSyncStatus").
			Str("id", id).
			Msg("failed to get rows affected after status update")
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrEntityNotFound
	}

	return nil
}

// normalizeChildren mints missing child ids and rewrites parent references
// and order indexes from slice position, so storage order is always explicit.
func (l *localEntityRepository) normalizeChildren(entity *models.Entity) {
	for i := range entity.Exercises {
		ex := &entity.Exercises[i]
		if ex.ID == "" {
			ex.ID = l.ids.Generate()
		}
		ex.WorkoutID = entity.ID
		ex.OrderIndex = i
		for j := range ex.Sets {
			set := &ex.Sets[j]
			if set.ID == "" {
				set.ID = l.ids.Generate()
			}
			set.ExerciseID = ex.ID
			set.OrderIndex = j
		}
	}
}

func (l *localEntityRepository) loadRelations(ctx context.Context, entity *models.Entity) error {
	log := logger.FromContext(ctx)

	switch entity.Type {
	case models.EntityWorkout:
		exercises, err := l.loadExercises(ctx, entity.ID)
		if err != nil {
			log.Err(err).
				Str("func", "localEntityRepository.loadRelations").
				Str("id", entity.ID).
				Msg("failed to load exercises")
			return err
		}
		entity.Exercises = exercises
	case models.EntityRestDay:
		activities, err := l.loadActivities(ctx, entity.ID)
		if err != nil {
			log.Err(err).
				Str("func", "localEntityRepository.loadRelations").
				Str("id", entity.ID).
				Msg("failed to load activities")
			return err
		}
		entity.Activities = activities
	}

	return nil
}

func (l *localEntityRepository) loadExercises(ctx context.Context, entityID string) ([]models.Exercise, error) {
	rows, err := l.DB.QueryContext(ctx, getExercisesByEntity, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise

	for rows.Next() {
		var ex models.Exercise
		if scanErr := rows.Scan(&ex.ID, &ex.WorkoutID, &ex.Name, &ex.OrderIndex); scanErr != nil {
			return nil, fmt.Errorf("failed to scan exercise row: %w", scanErr)
		}
		exercises = append(exercises, ex)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating exercise rows: %w", rowsErr)
	}

	for i := range exercises {
		sets, setsErr := l.loadSets(ctx, exercises[i].ID)
		if setsErr != nil {
			return nil, setsErr
		}
		exercises[i].Sets = sets
	}

	return exercises, nil
}

func (l *localEntityRepository) loadSets(ctx context.Context, exerciseID string) ([]models.Set, error) {
	rows, err := l.DB.QueryContext(ctx, getSetsByExercise, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sets: %w", err)
	}
	defer rows.Close()

	var sets []models.Set

	for rows.Next() {
		var set models.Set
		var duration sql.NullInt64

		scanErr := rows.Scan(
			&set.ID,
			&set.ExerciseID,
			&set.OrderIndex,
			&set.Reps,
			&set.Weight,
			&duration,
			&set.Completed,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan set row: %w", scanErr)
		}
		if duration.Valid {
			d := int(duration.Int64)
			set.Duration = &d
		}

		sets = append(sets, set)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating set rows: %w", rowsErr)
	}

	return sets, nil
}

func (l *localEntityRepository) loadActivities(ctx context.Context, entityID string) ([]string, error) {
	rows, err := l.DB.QueryContext(ctx, getActivitiesByEntity, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []string

	for rows.Next() {
		var activity string
		if scanErr := rows.Scan(&activity); scanErr != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", scanErr)
		}
		activities = append(activities, activity)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", rowsErr)
	}

	return activities, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (models.Entity, error) {
	var entity models.Entity

	err := row.Scan(
		&entity.ID,
		&entity.UserID,
		&entity.Type,
		&entity.Name,
		&entity.Date,
		&entity.Duration,
		&entity.Notes,
		&entity.RecoveryQuality,
		&entity.CreatedAt,
		&entity.UpdatedAt,
		&entity.SyncStatus,
	)
	if err != nil {
		return models.Entity{}, err
	}

	return entity, nil
}

func insertEntityTree(ctx context.Context, tx *sql.Tx, entity models.Entity) error {
	_, err := tx.ExecContext(ctx, insertEntity,
		entity.ID,
		entity.UserID,
		entity.Type,
		entity.Name,
		entity.Date,
		entity.Duration,
		entity.Notes,
		entity.RecoveryQuality,
		entity.CreatedAt,
		entity.UpdatedAt,
		entity.SyncStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entity (id=%s): %w", entity.ID, err)
	}

	return insertEntityChildren(ctx, tx, entity)
}

func insertEntityChildren(ctx context.Context, tx *sql.Tx, entity models.Entity) error {
	for _, ex := range entity.Exercises {
		if _, err := tx.ExecContext(ctx, insertExercise, ex.ID, ex.WorkoutID, ex.Name, ex.OrderIndex); err != nil {
			return fmt.Errorf("failed to insert exercise (id=%s): %w", ex.ID, err)
		}

		for _, set := range ex.Sets {
			var duration sql.NullInt64
			if set.Duration != nil {
				duration = sql.NullInt64{Int64: int64(*set.Duration), Valid: true}
			}

			_, err := tx.ExecContext(ctx, insertSet,
				set.ID,
				set.ExerciseID,
				set.OrderIndex,
				set.Reps,
				set.Weight,
				duration,
				set.Completed,
			)
			if err != nil {
				return fmt.Errorf("failed to insert set (id=%s): %w", set.ID, err)
			}
		}
	}

	for i, activity := range entity.Activities {
		if _, err := tx.ExecContext(ctx, insertActivity, entity.ID, activity, i); err != nil {
			return fmt.Errorf("failed to insert activity (entity_id=%s): %w", entity.ID, err)
		}
	}

	return nil
}

// deleteEntityChildren removes child rows bottom-up: sets before their
// exercises, so no query ever sees a half-removed tree.
func deleteEntityChildren(ctx context.Context, tx *sql.Tx, entityID string) error {
	for _, query := range []string{deleteSetsByEntity, deleteExercisesByEntity, deleteActivitiesByEntity} {
		if _, err := tx.ExecContext(ctx, query, entityID); err != nil {
			return fmt.Errorf("failed to delete child rows (entity_id=%s): %w", entityID, err)
		}
	}

	return nil
}
