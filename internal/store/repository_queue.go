package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/models"
)

type queueRepository struct {
	*DB
	logger *logger.Logger
}

func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueRepository) Add(ctx context.Context, item models.QueueItem) (models.QueueItem, error) {
	log := logger.FromContext(ctx)

	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}
	if item.Status == "" {
		item.Status = models.QueuePending
	}

	result, err := q.DB.ExecContext(ctx, insertQueueItem,
		item.Operation,
		string(item.Data),
		item.Timestamp,
		item.Status,
		item.RetryCount,
		item.Error,
		item.UserID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Add").
			Str("operation", string(item.Operation)).
			Msg("failed to insert queue item")
		return models.QueueItem{}, fmt.Errorf("failed to insert queue item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Add").
			Str("operation", string(item.Operation)).
			Msg("failed to get inserted queue item id")
		return models.QueueItem{}, fmt.Errorf("failed to get inserted queue item id: %w", err)
	}
	item.ID = id

	return item, nil
}

func (q *queueRepository) Get(ctx context.Context, id int64) (models.QueueItem, error) {
	log := logger.FromContext(ctx)

	row := q.DB.QueryRowContext(ctx, getQueueItemByID, id)

	item, err := scanQueueItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueItem{}, ErrQueueItemNotFound
		}
		log.Err(err).
			Str("func", "queueRepository.Get").
			Int64("id", id).
			Msg("failed to scan queue item row")
		return models.QueueItem{}, fmt.Errorf("failed to scan queue item row: %w", err)
	}

	return item, nil
}

func (q *queueRepository) GetByStatus(ctx context.Context, status models.QueueStatus) ([]models.QueueItem, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectQueue(status)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.GetByStatus").Msg("failed to build queue select query")
		return nil, fmt.Errorf("failed to build queue select query: %w", err)
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.GetByStatus").
			Str("status", string(status)).
			Msg("failed to execute query for queue items")
		return nil, fmt.Errorf("failed to query queue items: %w", err)
	}
	defer rows.Close()

	var items []models.QueueItem

	for rows.Next() {
		item, scanErr := scanQueueItem(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "queueRepository.GetByStatus").
				Str("status", string(status)).
				Msg("failed to scan queue item row")
			return nil, fmt.Errorf("failed to scan queue item row: %w", scanErr)
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "queueRepository.GetByStatus").
			Str("status", string(status)).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating queue item rows: %w", rowsErr)
	}

	return items, nil
}

func (q *queueRepository) CountByStatus(ctx context.Context, status models.QueueStatus) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountQueue(status)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.CountByStatus").Msg("failed to build queue count query")
		return 0, fmt.Errorf("failed to build queue count query: %w", err)
	}

	var count int
	if err = q.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "queueRepository.CountByStatus").
			Str("status", string(status)).
			Msg("failed to count queue items")
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}

	return count, nil
}

func (q *queueRepository) Update(ctx context.Context, item models.QueueItem) error {
	log := logger.FromContext(ctx)

	result, err := q.DB.ExecContext(ctx, updateQueueItem,
		item.Status,
		item.RetryCount,
		item.Error,
		item.ID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Int64("id", item.ID).
			Msg("failed to update queue item")
		return fmt.Errorf("failed to update queue item (id=%d): %w", item.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Int64("id", item.ID).
			Msg("failed to get rows affected after queue item update")
		return fmt.Errorf("failed to get rows affected (id=%d): %w", item.ID, err)
	}
	if rowsAffected == 0 {
		return ErrQueueItemNotFound
	}

	return nil
}

func (q *queueRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if _, err := q.DB.ExecContext(ctx, deleteQueueItemByID, id); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Delete").
			Int64("id", id).
			Msg("failed to delete queue item")
		return fmt.Errorf("failed to delete queue item (id=%d): %w", id, err)
	}

	return nil
}

func (q *queueRepository) DeleteByStatus(ctx context.Context, status models.QueueStatus) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteQueue(status)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.DeleteByStatus").Msg("failed to build queue delete query")
		return 0, fmt.Errorf("failed to build queue delete query: %w", err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.DeleteByStatus").
			Str("status", string(status)).
			Msg("failed to delete queue items")
		return 0, fmt.Errorf("failed to delete queue items: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.DeleteByStatus").
			Str("status", string(status)).
			Msg("failed to get rows affected after queue delete")
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

func scanQueueItem(row rowScanner) (models.QueueItem, error) {
	var item models.QueueItem
	var data string

	err := row.Scan(
		&item.ID,
		&item.Operation,
		&data,
		&item.Timestamp,
		&item.Status,
		&item.RetryCount,
		&item.Error,
		&item.UserID,
	)
	if err != nil {
		return models.QueueItem{}, err
	}
	item.Data = []byte(data)

	return item, nil
}
