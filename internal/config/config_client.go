package config

import (
	"fmt"
	"time"

	"github.com/fitsync/fitsync/models"
)

// Defaults applied by GetClientConfig when a value is absent from every
// configuration source.
const (
	DefaultRequestTimeout = 45 * time.Second
	DefaultSyncInterval   = 5 * time.Minute
	DefaultProbeInterval  = 30 * time.Second
)

// ClientApp holds application-level settings for the sync agent.
type ClientApp struct {
	// APIToken is the bearer token for remote calls.
	APIToken string
	// UserID is the authenticated user's server-side id.
	UserID string
}

// ClientAdapter holds network settings used by the remote adapter.
type ClientAdapter struct {
	// Address is the backend HTTP endpoint.
	Address string
	// RequestTimeout bounds each outbound request.
	RequestTimeout time.Duration
}

// ClientStorage groups local storage settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientDB contains the local SQLite connection settings.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientWorkers contains background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the auto-sync job runs.
	SyncInterval time.Duration
	// ProbeInterval defines how often connectivity is probed.
	ProbeInterval time.Duration
	// AutoSync reports whether the periodic sync job is enabled.
	AutoSync bool
}

// ClientSync contains synchronization policy settings.
type ClientSync struct {
	// ConflictStrategy is the validated strategy for divergent edits.
	ConflictStrategy models.ConflictStrategy
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level settings.
	App ClientApp
	// Adapter contains transport address and timeout.
	Adapter ClientAdapter
	// Storage contains local storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
	// Sync contains synchronization policy settings.
	Sync ClientSync
}

// GetClientConfig builds and validates the client config view from the
// merged structured configuration, applying defaults for absent values.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			APIToken: cfg.App.APIToken,
			UserID:   cfg.App.UserID,
		},
		Adapter: ClientAdapter{
			Address:        cfg.Adapter.Address,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:  cfg.Workers.SyncInterval,
			ProbeInterval: cfg.Workers.ProbeInterval,
			AutoSync:      !cfg.Workers.DisableAutoSync,
		},
		Sync: ClientSync{
			ConflictStrategy: models.ConflictStrategy(cfg.Sync.ConflictStrategy),
		},
	}

	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.SyncInterval == 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if cfg.Workers.ProbeInterval == 0 {
		cfg.Workers.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Sync.ConflictStrategy == "" {
		cfg.Sync.ConflictStrategy = models.StrategyLastWriteWins
	}
}
