// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fitsync/fitsync/internal/adapter"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/mock"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/store"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubProber struct{ err error }

func (p *stubProber) Ping(context.Context) error { return p.err }

type stubTimer struct{ stopped bool }

func (t *stubTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// stubClock hands out a fixed now and captures the scheduled retry instead
// of arming a real timer.
type stubClock struct {
	now        time.Time
	afterDelay time.Duration
	afterFn    func()
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) AfterFunc(d time.Duration, f func()) utils.Timer {
	c.afterDelay = d
	c.afterFn = f
	return &stubTimer{}
}

func newTestQueueSvc(t *testing.T, ctrl *gomock.Controller) (
	*queueService,
	*mock.MockQueueRepository,
	*mock.MockLocalEntityRepository,
	*mock.MockLocalTemplateRepository,
	*mock.MockRemoteAdapter,
	*netmon.Monitor,
	*stubClock,
) {
	t.Helper()

	queueRepo := mock.NewMockQueueRepository(ctrl)
	entityRepo := mock.NewMockLocalEntityRepository(ctrl)
	templateRepo := mock.NewMockLocalTemplateRepository(ctrl)
	remote := mock.NewMockRemoteAdapter(ctrl)
	monitor := netmon.NewMonitor(&stubProber{}, time.Minute, logger.Nop())
	clock := &stubClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	storages := &store.ClientStorages{
		EntityRepository:   entityRepo,
		TemplateRepository: templateRepo,
		QueueRepository:    queueRepo,
	}

	svc := NewQueueService(storages, remote, monitor, clock, logger.Nop()).(*queueService)

	return svc, queueRepo, entityRepo, templateRepo, remote, monitor, clock
}

func entityPayload(id string) json.RawMessage {
	data, _ := json.Marshal(models.Entity{ID: id})
	return data
}

// ── Add ──────────────────────────────────────────────────────────────────────

func TestQueueService_Add_SerializesPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, _, _, _, _, clock := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	queueRepo.EXPECT().Add(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, item models.QueueItem) (models.QueueItem, error) {
			assert.Equal(t, models.OpDeleteWorkout, item.Operation)
			assert.Equal(t, models.QueuePending, item.Status)
			assert.Equal(t, clock.now, item.Timestamp)
			assert.Equal(t, "user-1", item.UserID)
			assert.JSONEq(t, `{"id":"srv-1"}`, string(item.Data))
			item.ID = 7
			return item, nil
		})

	item, err := svc.Add(ctx, models.OpDeleteWorkout, models.DeletePayload{ID: "srv-1"}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)
}

// ── ProcessQueue ─────────────────────────────────────────────────────────────

func TestQueueService_ProcessQueue_Offline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, _, _, monitor, _ := newTestQueueSvc(t, ctrl)
	monitor.SetOnline(false)

	result, err := svc.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Offline)
	assert.Zero(t, result.Processed)
}

func TestQueueService_ProcessQueue_CreateRemapsAndDequeues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, remote, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	local := models.Entity{ID: "local-abc", UserID: "user-1", Type: models.EntityWorkout, Name: "Push Day"}
	item := models.QueueItem{ID: 1, Operation: models.OpCreateWorkout, Data: entityPayload("local-abc"), Status: models.QueuePending}

	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "local-abc").Return(local, nil)
	remote.EXPECT().Create(ctx, local).Return(models.Entity{ID: "srv-42"}, nil)
	entityRepo.EXPECT().RemapID(ctx, "local-abc", "srv-42").Return(nil)
	entityRepo.EXPECT().SetSyncStatus(ctx, "srv-42", models.StatusSynced).Return(nil)
	queueRepo.EXPECT().Delete(ctx, int64(1)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Failed)
}

func TestQueueService_ProcessQueue_StaleSnapshotDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, _, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	// the row behind the snapshot is gone: deleted locally before the drain
	item := models.QueueItem{ID: 3, Operation: models.OpCreateWorkout, Data: entityPayload("local-gone")}
	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "local-gone").Return(models.Entity{}, store.ErrEntityNotFound)
	queueRepo.EXPECT().Delete(ctx, int64(3)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestQueueService_ProcessQueue_UpdateOnLocalIDSkipsPush(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, _, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	// the queued create still covers the full current state; an update for a
	// locally-tagged id is a no-op
	item := models.QueueItem{ID: 4, Operation: models.OpUpdateWorkout, Data: entityPayload("local-abc")}
	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "local-abc").Return(models.Entity{ID: "local-abc"}, nil)
	queueRepo.EXPECT().Delete(ctx, int64(4)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestQueueService_ProcessQueue_DeleteOfUnpushedEntitySkipsRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, _, _, _, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	data, _ := json.Marshal(models.DeletePayload{ID: "local-abc"})
	item := models.QueueItem{ID: 5, Operation: models.OpDeleteWorkout, Data: data}
	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	queueRepo.EXPECT().Delete(ctx, int64(5)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestQueueService_ProcessQueue_TransientFailureStopsPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, remote, _, clock := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	first := models.QueueItem{ID: 1, Operation: models.OpCreateWorkout, Data: entityPayload("local-a"), Status: models.QueuePending}
	second := models.QueueItem{ID: 2, Operation: models.OpCreateWorkout, Data: entityPayload("local-b"), Status: models.QueuePending}

	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{first, second}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "local-a").Return(models.Entity{ID: "local-a"}, nil)
	remote.EXPECT().Create(ctx, gomock.Any()).Return(models.Entity{}, adapter.ErrInternalServerError)
	queueRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, item models.QueueItem) error {
			assert.Equal(t, int64(1), item.ID)
			assert.Equal(t, models.QueuePending, item.Status, "transient failures stay pending")
			assert.Equal(t, 1, item.RetryCount)
			assert.NotEmpty(t, item.Error)
			return nil
		})
	// item 2 is never touched: replays are ordered

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1*time.Second, clock.afterDelay, "first retry backs off one second")
	assert.NotNil(t, clock.afterFn)
}

func TestQueueService_ProcessQueue_BackoffGrowsWithRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, remote, _, clock := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	item := models.QueueItem{ID: 1, Operation: models.OpCreateWorkout, Data: entityPayload("local-a"), RetryCount: 2}
	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "local-a").Return(models.Entity{ID: "local-a"}, nil)
	remote.EXPECT().Create(ctx, gomock.Any()).Return(models.Entity{}, adapter.ErrBadGateway)
	queueRepo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	_, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, clock.afterDelay, "third attempt backs off five seconds")
}

func TestQueueService_ProcessQueue_PermanentFailureParksItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, remote, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	bad := models.QueueItem{ID: 1, Operation: models.OpCreateWorkout, Data: entityPayload("local-a")}
	data, _ := json.Marshal(models.DeletePayload{ID: "srv-9"})
	next := models.QueueItem{ID: 2, Operation: models.OpDeleteWorkout, Data: data}

	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{bad, next}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "local-a").Return(models.Entity{ID: "local-a"}, nil)
	remote.EXPECT().Create(ctx, gomock.Any()).Return(models.Entity{}, adapter.ErrUnprocessable)
	queueRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, item models.QueueItem) error {
			assert.Equal(t, models.QueueFailed, item.Status)
			return nil
		})
	entityRepo.EXPECT().SetSyncStatus(ctx, "local-a", models.StatusError).Return(nil)

	// a parked item does not block the rest of the queue
	remote.EXPECT().Delete(ctx, "srv-9").Return(nil)
	queueRepo.EXPECT().Delete(ctx, int64(2)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
}

func TestQueueService_ProcessQueue_RetryBudgetExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, remote, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	item := models.QueueItem{ID: 1, Operation: models.OpCreateWorkout, Data: entityPayload("local-a"), RetryCount: maxQueueRetries - 1}
	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "local-a").Return(models.Entity{ID: "local-a"}, nil)
	remote.EXPECT().Create(ctx, gomock.Any()).Return(models.Entity{}, adapter.ErrInternalServerError)
	queueRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, updated models.QueueItem) error {
			assert.Equal(t, models.QueueFailed, updated.Status)
			assert.Equal(t, maxQueueRetries, updated.RetryCount)
			return nil
		})
	entityRepo.EXPECT().SetSyncStatus(ctx, "local-a", models.StatusError).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
}

func TestQueueService_ProcessQueue_UpdateFallsBackToCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, entityRepo, _, remote, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	fresh := models.Entity{ID: "srv-1", Name: "Push Day"}
	item := models.QueueItem{ID: 1, Operation: models.OpUpdateWorkout, Data: entityPayload("srv-1")}

	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	entityRepo.EXPECT().GetWithRelations(ctx, "srv-1").Return(fresh, nil)
	// server lost the entity between syncs; the update re-creates it
	remote.EXPECT().Update(ctx, fresh).Return(models.Entity{}, adapter.ErrNotFound)
	remote.EXPECT().Create(ctx, fresh).Return(models.Entity{ID: "srv-2"}, nil)
	entityRepo.EXPECT().RemapID(ctx, "srv-1", "srv-2").Return(nil)
	entityRepo.EXPECT().SetSyncStatus(ctx, "srv-2", models.StatusSynced).Return(nil)
	queueRepo.EXPECT().Delete(ctx, int64(1)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestQueueService_ProcessQueue_TemplateCreateRemaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, _, templateRepo, remote, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	tpl := models.WorkoutTemplate{ID: "local-tpl", Name: "5x5"}
	data, _ := json.Marshal(tpl)
	item := models.QueueItem{ID: 1, Operation: models.OpCreateTemplate, Data: data}

	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return([]models.QueueItem{item}, nil)
	templateRepo.EXPECT().Get(ctx, "local-tpl").Return(tpl, nil)
	remote.EXPECT().CreateTemplate(ctx, tpl).Return(models.WorkoutTemplate{ID: "srv-tpl"}, nil)
	templateRepo.EXPECT().RemapID(ctx, "local-tpl", "srv-tpl").Return(nil)
	templateRepo.EXPECT().SetSyncStatus(ctx, "srv-tpl", models.StatusSynced).Return(nil)
	queueRepo.EXPECT().Delete(ctx, int64(1)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestQueueService_ProcessQueue_TemplateDeleteReplays(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, _, _, remote, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	pushed, _ := json.Marshal(models.DeletePayload{ID: "srv-tpl"})
	gone, _ := json.Marshal(models.DeletePayload{ID: "srv-gone"})
	unpushed, _ := json.Marshal(models.DeletePayload{ID: "local-tpl"})
	items := []models.QueueItem{
		{ID: 6, Operation: models.OpDeleteTemplate, Data: pushed},
		{ID: 7, Operation: models.OpDeleteTemplate, Data: gone},
		{ID: 8, Operation: models.OpDeleteTemplate, Data: unpushed},
	}

	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return(items, nil)
	remote.EXPECT().DeleteTemplate(ctx, "srv-tpl").Return(nil)
	// already gone on the server: the delete still counts as done
	remote.EXPECT().DeleteTemplate(ctx, "srv-gone").Return(adapter.ErrNotFound)
	// the locally-tagged id never reached the server; no remote call
	queueRepo.EXPECT().Delete(ctx, int64(6)).Return(nil)
	queueRepo.EXPECT().Delete(ctx, int64(7)).Return(nil)
	queueRepo.EXPECT().Delete(ctx, int64(8)).Return(nil)

	result, err := svc.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Zero(t, result.Failed)
}

// ── RetryOperation / ClearFailed ─────────────────────────────────────────────

func TestQueueService_RetryOperation_ResetsAndDrains(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, _, _, _, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	failed := models.QueueItem{ID: 9, Operation: models.OpDeleteWorkout, Status: models.QueueFailed, RetryCount: 5, Error: "gone"}
	queueRepo.EXPECT().Get(ctx, int64(9)).Return(failed, nil)
	queueRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, item models.QueueItem) error {
			assert.Equal(t, models.QueuePending, item.Status)
			assert.Zero(t, item.RetryCount)
			assert.Empty(t, item.Error)
			return nil
		})
	queueRepo.EXPECT().GetByStatus(ctx, models.QueuePending).Return(nil, nil)

	require.NoError(t, svc.RetryOperation(ctx, 9))
}

func TestQueueService_ClearFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, queueRepo, _, _, _, _, _ := newTestQueueSvc(t, ctrl)
	ctx := context.Background()

	queueRepo.EXPECT().DeleteByStatus(ctx, models.QueueFailed).Return(int64(3), nil)

	deleted, err := svc.ClearFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
