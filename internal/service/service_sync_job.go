package service

import (
	"context"
	"sync"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/netmon"
)

const defaultSyncInterval = 5 * time.Minute

type syncJob struct {
	manager SyncManager
	monitor *netmon.Monitor
	logger  *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob returns the background job that runs SyncAll on a fixed
// interval and immediately after connectivity is restored.
func NewSyncJob(manager SyncManager, monitor *netmon.Monitor, logger *logger.Logger) SyncJob {
	return &syncJob{
		manager: manager,
		monitor: monitor,
		logger:  logger,
	}
}

func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()

	jobCtx, cancel := context.WithCancel(j.logger.WithContext(ctx))
	j.cancel = cancel

	changes, unsubscribe := j.monitor.Subscribe()

	j.wg.Add(1)
	go j.run(jobCtx, interval, changes, unsubscribe)

	j.logger.Info().
		Str("func", "syncJob.Start").
		Dur("interval", interval).
		Msg("auto sync job started")
}

func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	j.wg.Wait()

	j.logger.Info().Str("func", "syncJob.Stop").Msg("auto sync job stopped")
}

func (j *syncJob) run(ctx context.Context, interval time.Duration, changes <-chan bool, unsubscribe func()) {
	defer j.wg.Done()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.syncOnce(ctx, "interval")
		case online, ok := <-changes:
			if !ok {
				return
			}
			if online {
				// coming back online is the moment offline edits can
				// finally drain; do not wait out the ticker
				j.syncOnce(ctx, "connectivity_restored")
			}
		}
	}
}

func (j *syncJob) syncOnce(ctx context.Context, trigger string) {
	log := logger.FromContext(ctx)

	result, err := j.manager.SyncAll(ctx)
	if err != nil {
		log.Err(err).Str("func", "syncJob.syncOnce").Str("trigger", trigger).Msg("sync failed")
		return
	}

	log.Debug().
		Str("func", "syncJob.syncOnce").
		Str("trigger", trigger).
		Str("status", string(result.Status)).
		Int("pushed", result.Pushed).
		Int("pulled", result.Pulled).
		Msg("sync pass done")
}
