package store

import (
	"context"
	"fmt"

	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/utils"
)

// ClientStorages groups all on-device repositories into a single value that
// can be passed around the service layer.
type ClientStorages struct {
	// EntityRepository stores workouts and rest days with their child rows.
	EntityRepository LocalEntityRepository

	// TemplateRepository stores workout templates.
	TemplateRepository LocalTemplateRepository

	// QueueRepository is the durable operation queue.
	QueueRepository QueueRepository

	// MetadataRepository holds sync bookkeeping such as the last sync time.
	MetadataRepository MetadataRepository
}

// NewClientStorages initialises the local storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [ClientStorages] value wired to fresh
//     repositories sharing the connection.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	ids := utils.NewUUIDGenerator()

	return &ClientStorages{
		EntityRepository:   NewLocalEntityRepository(db, logger, ids),
		TemplateRepository: NewLocalTemplateRepository(db, logger, ids),
		QueueRepository:    NewQueueRepository(db, logger),
		MetadataRepository: NewMetadataRepository(db, logger),
	}, nil
}
