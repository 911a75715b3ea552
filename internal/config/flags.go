package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote backend address (e.g. https://api.example.com)
//	-d local database path (SQLite file)
//	-c/-config json file path with configs
//	-api-token bearer token for remote calls
//	-user-id authenticated user id
//	-request-timeout per-request timeout (e.g., "45s")
//	-sync-interval auto-sync period (e.g., "5m")
//	-probe-interval connectivity probe period (e.g., "30s")
//	-strategy conflict resolution strategy
//	-no-auto-sync disable the periodic sync job
func ParseFlags() *StructuredConfig {
	var backendAddress string
	var databaseDSN string
	var jsonConfigPath string
	var apiToken string
	var userID string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var probeInterval time.Duration
	var strategy string
	var noAutoSync bool

	flag.StringVar(&backendAddress, "a", "", "Remote backend address")
	flag.StringVar(&databaseDSN, "d", "", "Local database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&apiToken, "api-token", "", "API bearer token")
	flag.StringVar(&userID, "user-id", "", "Authenticated user id")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 45s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Auto-sync interval (e.g., 5m)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 30s)")
	flag.StringVar(&strategy, "strategy", "", "Conflict strategy (last_write_wins, local_wins, remote_wins, merge, manual)")
	flag.BoolVar(&noAutoSync, "no-auto-sync", false, "Disable the periodic sync job")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			APIToken: apiToken,
			UserID:   userID,
		},
		Adapter: Adapter{
			Address:        backendAddress,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Workers: Workers{
			SyncInterval:    syncInterval,
			ProbeInterval:   probeInterval,
			DisableAutoSync: noAutoSync,
		},
		Sync: Sync{
			ConflictStrategy: strategy,
		},
		JSONFilePath: jsonConfigPath,
	}
}
