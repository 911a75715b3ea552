// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/mock"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/store"
	"github.com/fitsync/fitsync/internal/validators"
	"github.com/fitsync/fitsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// workoutInput builds an entity that passes validation; the tests care about
// the sync flow, not the field rules.
func workoutInput(name string) models.Entity {
	return models.Entity{
		Type: models.EntityWorkout,
		Name: name,
		Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestEntitySvc(t *testing.T, ctrl *gomock.Controller) (
	*entityService,
	*mock.MockLocalEntityRepository,
	*mock.MockQueueService,
	*mock.MockRemoteAdapter,
	*netmon.Monitor,
) {
	t.Helper()

	entityRepo := mock.NewMockLocalEntityRepository(ctrl)
	queueSvc := mock.NewMockQueueService(ctrl)
	remote := mock.NewMockRemoteAdapter(ctrl)
	monitor := netmon.NewMonitor(&stubProber{}, time.Minute, logger.Nop())

	storages := &store.ClientStorages{EntityRepository: entityRepo}
	svc := NewEntityService(storages, queueSvc, remote, monitor, validators.NewEntityValidator(), "user-1", logger.Nop()).(*entityService)

	return svc, entityRepo, queueSvc, remote, monitor
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestEntityService_Create_OnlinePushesAndRemaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, _, remote, _ := newTestEntitySvc(t, ctrl)
	ctx := context.Background()

	input := workoutInput("Push Day")
	stored := models.Entity{ID: "local-abc", UserID: "user-1", Type: models.EntityWorkout, Name: "Push Day", SyncStatus: models.StatusPending}

	entityRepo.EXPECT().AddWithRelations(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, e models.Entity) (models.Entity, error) {
			assert.Equal(t, "user-1", e.UserID, "owner is filled from configuration")
			return stored, nil
		})
	remote.EXPECT().Create(ctx, stored).Return(models.Entity{ID: "srv-1", Name: "Push Day"}, nil)
	entityRepo.EXPECT().RemapID(ctx, "local-abc", "srv-1").Return(nil)
	entityRepo.EXPECT().SetSyncStatus(ctx, "srv-1", models.StatusSynced).Return(nil)

	created, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "srv-1", created.ID, "caller sees the server-assigned id")
	assert.Equal(t, models.StatusSynced, created.SyncStatus)
}

func TestEntityService_Create_OfflineQueues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, queueSvc, _, monitor := newTestEntitySvc(t, ctrl)
	ctx := context.Background()
	monitor.SetOnline(false)

	stored := models.Entity{ID: "local-abc", UserID: "user-1", SyncStatus: models.StatusPending}
	entityRepo.EXPECT().AddWithRelations(ctx, gomock.Any()).Return(stored, nil)
	queueSvc.EXPECT().Add(ctx, models.OpCreateWorkout, stored, "user-1").Return(models.QueueItem{ID: 1}, nil)

	created, err := svc.Create(ctx, workoutInput("Push Day"))
	require.NoError(t, err)
	assert.Equal(t, "local-abc", created.ID, "offline creates keep the locally-minted id")
	assert.Equal(t, models.StatusPending, created.SyncStatus)
}

func TestEntityService_Create_PushFailureFallsBackToQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, queueSvc, remote, _ := newTestEntitySvc(t, ctrl)
	ctx := context.Background()

	stored := models.Entity{ID: "local-abc", UserID: "user-1", SyncStatus: models.StatusPending}
	entityRepo.EXPECT().AddWithRelations(ctx, gomock.Any()).Return(stored, nil)
	remote.EXPECT().Create(ctx, stored).Return(models.Entity{}, errors.New("connection reset"))
	queueSvc.EXPECT().Add(ctx, models.OpCreateWorkout, stored, "user-1").Return(models.QueueItem{ID: 1}, nil)

	created, err := svc.Create(ctx, workoutInput("Push Day"))
	require.NoError(t, err, "a failed push is not a failed create")
	assert.Equal(t, "local-abc", created.ID)
}

func TestEntityService_Create_WithoutUserStaysLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, _, _, _ := newTestEntitySvc(t, ctrl)
	svc.userID = ""
	ctx := context.Background()

	stored := models.Entity{ID: "local-abc", SyncStatus: models.StatusLocal}
	entityRepo.EXPECT().AddWithRelations(ctx, gomock.Any()).Return(stored, nil)
	// no push, no queue item

	created, err := svc.Create(ctx, workoutInput("Push Day"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusLocal, created.SyncStatus)
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestEntityService_Update_OnlinePushes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, _, remote, _ := newTestEntitySvc(t, ctrl)
	ctx := context.Background()

	stored := models.Entity{ID: "srv-1", UserID: "user-1", Name: "Renamed", SyncStatus: models.StatusPending}
	entityRepo.EXPECT().UpdateWithRelations(ctx, "srv-1", gomock.Any()).Return(stored, nil)
	remote.EXPECT().Update(ctx, stored).Return(stored, nil)
	entityRepo.EXPECT().SetSyncStatus(ctx, "srv-1", models.StatusSynced).Return(nil)

	updated, err := svc.Update(ctx, "srv-1", workoutInput("Renamed"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, updated.SyncStatus)
}

func TestEntityService_Update_LocalIDNeverPushedAsUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, _, _, _ := newTestEntitySvc(t, ctrl)
	ctx := context.Background()

	// the queued create will push the state just written; no update call,
	// no extra queue item
	stored := models.Entity{ID: "local-abc", UserID: "user-1", Name: "Renamed", SyncStatus: models.StatusPending}
	entityRepo.EXPECT().UpdateWithRelations(ctx, "local-abc", gomock.Any()).Return(stored, nil)

	updated, err := svc.Update(ctx, "local-abc", workoutInput("Renamed"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.SyncStatus)
}

func TestEntityService_Update_OfflineQueues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, queueSvc, _, monitor := newTestEntitySvc(t, ctrl)
	ctx := context.Background()
	monitor.SetOnline(false)

	stored := models.Entity{ID: "srv-1", UserID: "user-1", SyncStatus: models.StatusPending}
	entityRepo.EXPECT().UpdateWithRelations(ctx, "srv-1", gomock.Any()).Return(stored, nil)
	queueSvc.EXPECT().Add(ctx, models.OpUpdateWorkout, stored, "user-1").Return(models.QueueItem{ID: 2}, nil)

	updated, err := svc.Update(ctx, "srv-1", workoutInput("Renamed"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.SyncStatus)
}

func TestEntityService_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, _, _, _ := newTestEntitySvc(t, ctrl)
	ctx := context.Background()

	entityRepo.EXPECT().UpdateWithRelations(ctx, "missing", gomock.Any()).Return(models.Entity{}, store.ErrEntityNotFound)

	_, err := svc.Update(ctx, "missing", workoutInput("Renamed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrEntityNotFound)
}

// ── Delete ───────────────────────────────────────────────────────────────────

func TestEntityService_Delete_OnlineDeletesRemotely(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, _, remote, _ := newTestEntitySvc(t, ctrl)
	ctx := context.Background()

	existing := models.Entity{ID: "srv-1", UserID: "user-1", SyncStatus: models.StatusSynced}
	entityRepo.EXPECT().GetWithRelations(ctx, "srv-1").Return(existing, nil)
	entityRepo.EXPECT().DeleteWithRelations(ctx, "srv-1").Return(nil)
	remote.EXPECT().Delete(ctx, "srv-1").Return(nil)

	require.NoError(t, svc.Delete(ctx, "srv-1"))
}

func TestEntityService_Delete_UnpushedEntityNeedsNoRemoteCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, _, _, _ := newTestEntitySvc(t, ctrl)
	ctx := context.Background()

	existing := models.Entity{ID: "local-abc", UserID: "user-1", SyncStatus: models.StatusPending}
	entityRepo.EXPECT().GetWithRelations(ctx, "local-abc").Return(existing, nil)
	entityRepo.EXPECT().DeleteWithRelations(ctx, "local-abc").Return(nil)

	require.NoError(t, svc.Delete(ctx, "local-abc"))
}

func TestEntityService_Delete_OfflineQueues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, entityRepo, queueSvc, _, monitor := newTestEntitySvc(t, ctrl)
	ctx := context.Background()
	monitor.SetOnline(false)

	existing := models.Entity{ID: "srv-1", UserID: "user-1", SyncStatus: models.StatusSynced}
	entityRepo.EXPECT().GetWithRelations(ctx, "srv-1").Return(existing, nil)
	entityRepo.EXPECT().DeleteWithRelations(ctx, "srv-1").Return(nil)
	queueSvc.EXPECT().Add(ctx, models.OpDeleteWorkout, models.DeletePayload{ID: "srv-1"}, "user-1").Return(models.QueueItem{ID: 3}, nil)

	require.NoError(t, svc.Delete(ctx, "srv-1"))
}

// ── Template save ────────────────────────────────────────────────────────────

func TestTemplateService_Save_OnlineCreateRemaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	templateRepo := mock.NewMockLocalTemplateRepository(ctrl)
	queueSvc := mock.NewMockQueueService(ctrl)
	remote := mock.NewMockRemoteAdapter(ctrl)
	monitor := netmon.NewMonitor(&stubProber{}, time.Minute, logger.Nop())

	storages := &store.ClientStorages{TemplateRepository: templateRepo}
	svc := NewTemplateService(storages, queueSvc, remote, monitor, validators.NewEntityValidator(), "user-1", logger.Nop())
	ctx := context.Background()

	stored := models.WorkoutTemplate{ID: "local-tpl", UserID: "user-1", Name: "5x5", SyncStatus: models.StatusPending}
	templateRepo.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error) {
			assert.Equal(t, models.StatusPending, tpl.SyncStatus)
			return stored, nil
		})
	remote.EXPECT().CreateTemplate(ctx, stored).Return(models.WorkoutTemplate{ID: "srv-tpl", Name: "5x5"}, nil)
	templateRepo.EXPECT().RemapID(ctx, "local-tpl", "srv-tpl").Return(nil)
	templateRepo.EXPECT().SetSyncStatus(ctx, "srv-tpl", models.StatusSynced).Return(nil)

	saved, err := svc.Save(ctx, models.WorkoutTemplate{Name: "5x5"})
	require.NoError(t, err)
	assert.Equal(t, "srv-tpl", saved.ID)
	assert.Equal(t, models.StatusSynced, saved.SyncStatus)
}

func TestTemplateService_Save_OfflineQueuesCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	templateRepo := mock.NewMockLocalTemplateRepository(ctrl)
	queueSvc := mock.NewMockQueueService(ctrl)
	remote := mock.NewMockRemoteAdapter(ctrl)
	monitor := netmon.NewMonitor(&stubProber{}, time.Minute, logger.Nop())
	monitor.SetOnline(false)

	storages := &store.ClientStorages{TemplateRepository: templateRepo}
	svc := NewTemplateService(storages, queueSvc, remote, monitor, validators.NewEntityValidator(), "user-1", logger.Nop())
	ctx := context.Background()

	stored := models.WorkoutTemplate{ID: "local-tpl", UserID: "user-1", Name: "5x5", SyncStatus: models.StatusPending}
	templateRepo.EXPECT().Save(ctx, gomock.Any()).Return(stored, nil)
	queueSvc.EXPECT().Add(ctx, models.OpCreateTemplate, stored, "user-1").Return(models.QueueItem{ID: 4}, nil)

	saved, err := svc.Save(ctx, models.WorkoutTemplate{Name: "5x5"})
	require.NoError(t, err)
	assert.Equal(t, "local-tpl", saved.ID)
}
