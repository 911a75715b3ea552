// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the fitsync
// client. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: the API token and user id the
	// sync agent acts on behalf of.
	App App `envPrefix:"APP_"`

	// Adapter holds the remote backend address and request timeout.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local SQLite database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds background job settings (sync interval, connectivity
	// probe interval).
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds synchronization policy settings such as the conflict
	// resolution strategy.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level settings for the headless sync agent.
type App struct {
	// APIToken is the bearer token attached to every remote request.
	// Env: APP_API_TOKEN
	APIToken string `env:"API_TOKEN"`

	// UserID is the server-side id of the authenticated user. When empty,
	// the agent stays in local-only mode and never pushes.
	// Env: APP_USER_ID
	UserID string `env:"USER_ID"`
}

// Adapter holds network settings used by the remote data-access layer.
type Adapter struct {
	// Address is the HTTP endpoint of the hosted backend
	// (e.g. "https://api.example.com").
	// Env: ADAPTER_ADDRESS
	Address string `env:"ADDRESS"`

	// RequestTimeout bounds every single remote call so a hung request
	// cannot wedge a sync pass (e.g. "45s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups local storage backend settings.
type Storage struct {
	// DB holds the local database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the embedded SQLite database.
type DB struct {
	// DSN is the SQLite file path used for the on-device replica.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Workers contains background worker settings.
type Workers struct {
	// SyncInterval defines how often the auto-sync job runs (e.g. "5m").
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval defines how often the network monitor probes the
	// backend (e.g. "30s").
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// DisableAutoSync turns the periodic sync job off; sync then runs only
	// on explicit ForceSyncNow calls and network-restore triggers.
	// Env: WORKERS_DISABLE_AUTO_SYNC
	DisableAutoSync bool `env:"DISABLE_AUTO_SYNC"`
}

// Sync contains synchronization policy settings.
type Sync struct {
	// ConflictStrategy selects how divergent edits are reconciled:
	// last_write_wins, local_wins, remote_wins, merge, or manual.
	// Env: SYNC_CONFLICT_STRATEGY
	ConflictStrategy string `env:"CONFLICT_STRATEGY"`
}

// GetStructuredConfig assembles the merged configuration from flags,
// environment variables, and the optional JSON file, in that precedence
// order (earlier sources win under mergo's no-override merge).
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags().
		withEnv().
		withJSON().
		build()
}
