package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitsync/fitsync/internal/adapter"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/store"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/internal/validators"
	"github.com/fitsync/fitsync/models"
)

type templateService struct {
	templates store.LocalTemplateRepository
	queueSvc  QueueService
	remote    adapter.RemoteAdapter
	monitor   *netmon.Monitor
	validator validators.Validator
	userID    string
	logger    *logger.Logger
}

func NewTemplateService(
	storages *store.ClientStorages,
	queueSvc QueueService,
	remote adapter.RemoteAdapter,
	monitor *netmon.Monitor,
	validator validators.Validator,
	userID string,
	logger *logger.Logger,
) TemplateService {
	return &templateService{
		templates: storages.TemplateRepository,
		queueSvc:  queueSvc,
		remote:    remote,
		monitor:   monitor,
		validator: validator,
		userID:    userID,
		logger:    logger,
	}
}

func (s *templateService) Save(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error) {
	log := logger.FromContext(ctx)

	if tpl.UserID == "" {
		tpl.UserID = s.userID
	}

	if err := s.validator.Validate(ctx, tpl); err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("validate template: %w", err)
	}
	// an authenticated save is always dirty until the push confirms
	if tpl.UserID == "" {
		tpl.SyncStatus = models.StatusLocal
	} else {
		tpl.SyncStatus = models.StatusPending
	}

	isNew := tpl.ID == "" || utils.IsLocalID(tpl.ID)

	stored, err := s.templates.Save(ctx, tpl)
	if err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("store template locally: %w", err)
	}

	if stored.SyncStatus == models.StatusLocal {
		return stored, nil
	}

	op := models.OpUpdateTemplate
	if isNew {
		op = models.OpCreateTemplate
	}

	if s.monitor.Online() {
		pushed, pushErr := s.pushDirect(ctx, stored, isNew)
		if pushErr == nil {
			return pushed, nil
		}

		log.Warn().
			Str("func", "templateService.Save").
			Str("id", stored.ID).
			Err(pushErr).
			Msg("direct push failed, queueing template save")
	}

	if _, err = s.queueSvc.Add(ctx, op, stored, stored.UserID); err != nil {
		return models.WorkoutTemplate{}, err
	}

	return stored, nil
}

func (s *templateService) pushDirect(ctx context.Context, tpl models.WorkoutTemplate, isNew bool) (models.WorkoutTemplate, error) {
	if isNew {
		created, err := s.remote.CreateTemplate(ctx, tpl)
		if err != nil {
			return models.WorkoutTemplate{}, err
		}
		if created.ID != tpl.ID {
			if err = s.templates.RemapID(ctx, tpl.ID, created.ID); err != nil {
				return models.WorkoutTemplate{}, fmt.Errorf("remap template %s to %s: %w", tpl.ID, created.ID, err)
			}
		}
		if err = s.templates.SetSyncStatus(ctx, created.ID, models.StatusSynced); err != nil {
			return models.WorkoutTemplate{}, fmt.Errorf("mark template %s synced: %w", created.ID, err)
		}
		created.SyncStatus = models.StatusSynced
		return created, nil
	}

	if _, err := s.remote.UpdateTemplate(ctx, tpl); err != nil {
		return models.WorkoutTemplate{}, err
	}
	if err := s.templates.SetSyncStatus(ctx, tpl.ID, models.StatusSynced); err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("mark template %s synced: %w", tpl.ID, err)
	}
	tpl.SyncStatus = models.StatusSynced
	return tpl, nil
}

func (s *templateService) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	existing, err := s.templates.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load template %s: %w", id, err)
	}

	if err = s.templates.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete template locally: %w", err)
	}

	if existing.SyncStatus == models.StatusLocal || utils.IsLocalID(id) {
		return nil
	}

	if s.monitor.Online() {
		pushErr := s.remote.DeleteTemplate(ctx, id)
		if pushErr == nil || errors.Is(pushErr, adapter.ErrNotFound) {
			return nil
		}

		log.Warn().
			Str("func", "templateService.Delete").
			Str("id", id).
			Err(pushErr).
			Msg("direct push failed, queueing template delete")
	}

	if _, err = s.queueSvc.Add(ctx, models.OpDeleteTemplate, models.DeletePayload{ID: id}, existing.UserID); err != nil {
		return err
	}

	return nil
}

func (s *templateService) Get(ctx context.Context, id string) (models.WorkoutTemplate, error) {
	return s.templates.Get(ctx, id)
}

func (s *templateService) GetAll(ctx context.Context) ([]models.WorkoutTemplate, error) {
	return s.templates.GetAll(ctx, s.userID)
}
