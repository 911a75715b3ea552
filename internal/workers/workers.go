package workers

import (
	"context"
	"sync"

	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/service"
)

// Workers runs a set of background loops and stops them together.
type Workers struct {
	workers []Worker
	logger  *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New assembles the client's background workers from the configuration: the
// connectivity prober always runs, the periodic sync job only when auto-sync
// is enabled.
func New(monitor *netmon.Monitor, job service.SyncJob, cfg config.ClientWorkers, logger *logger.Logger) *Workers {
	ws := []Worker{&probeWorker{monitor: monitor}}
	if cfg.AutoSync {
		ws = append(ws, &syncWorker{job: job, cfg: cfg})
	}

	return &Workers{workers: ws, logger: logger}
}

// Start launches every worker in its own goroutine. Calling Start on an
// already started aggregate is a no-op.
func (w *Workers) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(w.logger.WithContext(ctx))
	w.cancel = cancel

	for _, worker := range w.workers {
		w.wg.Add(1)
		go func(worker Worker) {
			defer w.wg.Done()
			worker.Run(runCtx)
		}(worker)
	}

	w.logger.Info().
		Str("func", "Workers.Start").
		Int("count", len(w.workers)).
		Msg("background workers started")
}

// Stop cancels every worker and blocks until all of them have returned.
func (w *Workers) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	w.wg.Wait()

	w.logger.Info().Str("func", "Workers.Stop").Msg("background workers stopped")
}

// probeWorker runs the connectivity probe loop.
type probeWorker struct {
	monitor *netmon.Monitor
}

func (p *probeWorker) Run(ctx context.Context) {
	p.monitor.Start(ctx)
}

// syncWorker keeps the periodic sync job alive for the lifetime of ctx.
type syncWorker struct {
	job service.SyncJob
	cfg config.ClientWorkers
}

func (s *syncWorker) Run(ctx context.Context) {
	s.job.Start(ctx, s.cfg.SyncInterval)
	<-ctx.Done()
	s.job.Stop()
}
