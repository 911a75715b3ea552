package service

import (
	"context"
	"testing"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/mock"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/models"
	"go.uber.org/mock/gomock"
)

func newTestSyncJob(t *testing.T, ctrl *gomock.Controller) (SyncJob, *mock.MockSyncManager, *netmon.Monitor, chan struct{}) {
	t.Helper()

	manager := mock.NewMockSyncManager(ctrl)
	monitor := netmon.NewMonitor(&stubProber{}, time.Minute, logger.Nop())
	job := NewSyncJob(manager, monitor, logger.Nop())

	synced := make(chan struct{}, 8)
	manager.EXPECT().SyncAll(gomock.Any()).DoAndReturn(
		func(context.Context) (models.SyncResult, error) {
			select {
			case synced <- struct{}{}:
			default:
			}
			return models.SyncResult{Status: models.SyncCompleted}, nil
		}).AnyTimes()

	return job, manager, monitor, synced
}

func waitForSync(t *testing.T, synced <-chan struct{}) {
	t.Helper()
	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatal("no sync pass ran in time")
	}
}

func TestSyncJob_SyncsOnInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, _, _, synced := newTestSyncJob(t, ctrl)

	job.Start(context.Background(), 20*time.Millisecond)
	defer job.Stop()

	waitForSync(t, synced)
}

func TestSyncJob_SyncsOnConnectivityRestore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, _, monitor, synced := newTestSyncJob(t, ctrl)

	// interval far beyond the test window: only the restore can trigger
	job.Start(context.Background(), time.Hour)
	defer job.Stop()

	monitor.SetOnline(false)
	monitor.SetOnline(true)

	waitForSync(t, synced)
}

func TestSyncJob_StopTerminatesAndIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, _, _, _ := newTestSyncJob(t, ctrl)

	job.Start(context.Background(), 10*time.Millisecond)
	job.Stop()
	job.Stop()
}

func TestSyncJob_RestartReplacesRunningJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, _, _, synced := newTestSyncJob(t, ctrl)

	job.Start(context.Background(), time.Hour)
	job.Start(context.Background(), 20*time.Millisecond)
	defer job.Stop()

	waitForSync(t, synced)
}
