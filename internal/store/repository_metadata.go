package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
)

// metaKeyLastSync stores the completion time of the last full sync as an
// RFC3339Nano string.
const metaKeyLastSync = "last_sync"

type metadataRepository struct {
	*DB
	logger *logger.Logger
}

func NewMetadataRepository(db *DB, logger *logger.Logger) MetadataRepository {
	return &metadataRepository{
		DB:     db,
		logger: logger,
	}
}

func (m *metadataRepository) Get(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx)

	var value string
	err := m.DB.QueryRowContext(ctx, getMetadata, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMetadataNotFound
		}
		log.Err(err).
			Str("func", "metadataRepository.Get").
			Str("key", key).
			Msg("failed to read metadata value")
		return "", fmt.Errorf("failed to read metadata (key=%s): %w", key, err)
	}

	return value, nil
}

func (m *metadataRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	if _, err := m.DB.ExecContext(ctx, upsertMetadata, key, value); err != nil {
		log.Err(err).
			Str("func", "metadataRepository.Set").
			Str("key", key).
			Msg("failed to upsert metadata value")
		return fmt.Errorf("failed to upsert metadata (key=%s): %w", key, err)
	}

	return nil
}

func (m *metadataRepository) LastSync(ctx context.Context) (*time.Time, error) {
	log := logger.FromContext(ctx)

	value, err := m.Get(ctx, metaKeyLastSync)
	if err != nil {
		if errors.Is(err, ErrMetadataNotFound) {
			// never synced yet
			return nil, nil
		}
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		log.Err(err).
			Str("func", "metadataRepository.LastSync").
			Str("value", value).
			Msg("failed to parse stored last sync time")
		return nil, fmt.Errorf("failed to parse last sync time: %w", err)
	}

	return &t, nil
}

func (m *metadataRepository) SetLastSync(ctx context.Context, t time.Time) error {
	return m.Set(ctx, metaKeyLastSync, t.UTC().Format(time.RFC3339Nano))
}
