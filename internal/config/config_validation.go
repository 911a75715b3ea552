// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package config

import (
	"strings"

	"github.com/fitsync/fitsync/models"
)

// validate checks that the merged [StructuredConfig] satisfies the
// application invariants before it is turned into a [ClientConfig].
//
// Structural validation lives on ClientConfig; the structured form only
// rejects values that no view could repair.
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.ConflictStrategy != "" && !models.ValidStrategy(models.ConflictStrategy(cfg.Sync.ConflictStrategy)) {
		return ErrInvalidSyncConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.Address == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval == 0 || cfg.Workers.ProbeInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	if !models.ValidStrategy(cfg.Sync.ConflictStrategy) {
		return ErrInvalidSyncConfigs
	}

	return nil
}
