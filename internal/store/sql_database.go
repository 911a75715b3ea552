package store

import (
	"database/sql"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/migrations"
)

type DB struct {
	*sql.DB
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
