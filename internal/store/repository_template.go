package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/models"
)

// Templates are flat documents: the exercise list is serialized as JSON in a
// single column rather than joined child tables, since templates are never
// merged field-by-field.
type localTemplateRepository struct {
	*DB
	logger *logger.Logger
	ids    *utils.UUIDGenerator
}

func NewLocalTemplateRepository(db *DB, logger *logger.Logger, ids *utils.UUIDGenerator) LocalTemplateRepository {
	return &localTemplateRepository{
		DB:     db,
		logger: logger,
		ids:    ids,
	}
}

func (l *localTemplateRepository) Save(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	if tpl.ID == "" {
		tpl.ID = l.ids.NewLocalID()
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now
	if tpl.SyncStatus == "" {
		if tpl.UserID == "" {
			tpl.SyncStatus = models.StatusLocal
		} else {
			tpl.SyncStatus = models.StatusPending
		}
	}

	exercises, err := json.Marshal(tpl.Exercises)
	if err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.Save").
			Str("id", tpl.ID).
			Msg("failed to encode template exercises")
		return models.WorkoutTemplate{}, fmt.Errorf("failed to encode template exercises: %w", err)
	}

	_, err = l.DB.ExecContext(ctx, upsertTemplate,
		tpl.ID,
		tpl.UserID,
		tpl.Name,
		string(exercises),
		tpl.CreatedAt,
		tpl.UpdatedAt,
		tpl.SyncStatus,
	)
	if err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.Save").
			Str("id", tpl.ID).
			Msg("failed to upsert template")
		return models.WorkoutTemplate{}, fmt.Errorf("failed to upsert template (id=%s): %w", tpl.ID, err)
	}

	return tpl, nil
}

func (l *localTemplateRepository) Get(ctx context.Context, id string) (models.WorkoutTemplate, error) {
	log := logger.FromContext(ctx)

	row := l.DB.QueryRowContext(ctx, getTemplateByID, id)

	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.WorkoutTemplate{}, ErrTemplateNotFound
		}
		log.Err(err).
			Str("func", "localTemplateRepository.Get").
			Str("id", id).
			Msg("failed to scan template row")
		return models.WorkoutTemplate{}, fmt.Errorf("failed to scan template row: %w", err)
	}

	return tpl, nil
}

func (l *localTemplateRepository) GetAll(ctx context.Context, userID string) ([]models.WorkoutTemplate, error) {
	log := logger.FromContext(ctx)

	rows, err := l.DB.QueryContext(ctx, getAllTemplates, userID)
	if err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.GetAll").
			Str("user_id", userID).
			Msg("failed to execute query for templates")
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []models.WorkoutTemplate

	for rows.Next() {
		tpl, scanErr := scanTemplate(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localTemplateRepository.GetAll").
				Str("user_id", userID).
				Msg("failed to scan template row")
			return nil, fmt.Errorf("failed to scan template row: %w", scanErr)
		}
		templates = append(templates, tpl)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localTemplateRepository.GetAll").
			Str("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating template rows: %w", rowsErr)
	}

	return templates, nil
}

func (l *localTemplateRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, deleteTemplateByID, id); err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.Delete").
			Str("id", id).
			Msg("failed to delete template")
		return fmt.Errorf("failed to delete template (id=%s): %w", id, err)
	}

	return nil
}

func (l *localTemplateRepository) RemapID(ctx context.Context, oldID, newID string) error {
	log := logger.FromContext(ctx)

	result, err := l.DB.ExecContext(ctx, remapTemplateID, newID, oldID)
	if err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.RemapID").
			Str("old_id", oldID).
			Str("new_id", newID).
			Msg("failed to remap template id")
		return fmt.Errorf("failed to remap template id (old=%s): %w", oldID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.RemapID").
			Str("old_id", oldID).
			Msg("failed to get rows affected after remap")
		return fmt.Errorf("failed to get rows affected (old=%s): %w", oldID, err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

func (l *localTemplateRepository) SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error {
	log := logger.FromContext(ctx)

	result, err := l.DB.ExecContext(ctx, setTemplateStatus, status, id)
	if err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.SetSyncStatus").
			Str("id", id).
			Str("sync_status", string(status)).
			Msg("failed to update template sync status")
		return fmt.Errorf("failed to update template sync status (id=%s): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "localTemplateRepository.SetSyncStatus").
			Str("id", id).
			Msg("failed to get rows affected after status update")
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

func scanTemplate(row rowScanner) (models.WorkoutTemplate, error) {
	var tpl models.WorkoutTemplate
	var exercises string

	err := row.Scan(
		&tpl.ID,
		&tpl.UserID,
		&tpl.Name,
		&exercises,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
		&tpl.SyncStatus,
	)
	if err != nil {
		return models.WorkoutTemplate{}, err
	}

	if exercises != "" {
		if err = json.Unmarshal([]byte(exercises), &tpl.Exercises); err != nil {
			return models.WorkoutTemplate{}, fmt.Errorf("failed to decode template exercises: %w", err)
		}
	}

	return tpl, nil
}
