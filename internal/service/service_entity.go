// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

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

type entityService struct {
	entities  store.LocalEntityRepository
	queueSvc  QueueService
	remote    adapter.RemoteAdapter
	monitor   *netmon.Monitor
	validator validators.Validator
	userID    string
	logger    *logger.Logger
}

func NewEntityService(
	storages *store.ClientStorages,
	queueSvc QueueService,
	remote adapter.RemoteAdapter,
	monitor *netmon.Monitor,
	validator validators.Validator,
	userID string,
	logger *logger.Logger,
) EntityService {
	return &entityService{
		entities:  storages.EntityRepository,
		queueSvc:  queueSvc,
		remote:    remote,
		monitor:   monitor,
		validator: validator,
		userID:    userID,
		logger:    logger,
	}
}

func (s *entityService) Create(ctx context.Context, entity models.Entity) (models.Entity, error) {
	log := logger.FromContext(ctx)

	if entity.UserID == "" {
		entity.UserID = s.userID
	}

	if err := s.validator.Validate(ctx, entity); err != nil {
		return models.Entity{}, fmt.Errorf("validate entity: %w", err)
	}

	stored, err := s.entities.AddWithRelations(ctx, entity)
	if err != nil {
		return models.Entity{}, fmt.Errorf("store entity locally: %w", err)
	}

	if stored.SyncStatus == models.StatusLocal {
		// no authenticated user: the entity lives on this device only
		return stored, nil
	}

	if s.monitor.Online() {
		created, pushErr := s.remote.Create(ctx, stored)
		if pushErr == nil {
			if created.ID != stored.ID {
				if err = s.entities.RemapID(ctx, stored.ID, created.ID); err != nil {
					return models.Entity{}, fmt.Errorf("remap %s to %s: %w", stored.ID, created.ID, err)
				}
			}
			if err = s.entities.SetSyncStatus(ctx, created.ID, models.StatusSynced); err != nil {
				return models.Entity{}, fmt.Errorf("mark %s synced: %w", created.ID, err)
			}
			created.SyncStatus = models.StatusSynced
			return created, nil
		}

		log.Warn().
			Str("func", "entityService.Create").
			Str("id", stored.ID).
			Err(pushErr).
			Msg("direct push failed, queueing create")
	}

	if _, err = s.queueSvc.Add(ctx, models.OpCreateWorkout, stored, stored.UserID); err != nil {
		return models.Entity{}, err
	}

	return stored, nil
}

func (s *entityService) Update(ctx context.Context, id string, entity models.Entity) (models.Entity, error) {
	log := logger.FromContext(ctx)

	if entity.UserID == "" {
		entity.UserID = s.userID
	}

	if err := s.validator.Validate(ctx, entity); err != nil {
		return models.Entity{}, fmt.Errorf("validate entity: %w", err)
	}

	stored, err := s.entities.UpdateWithRelations(ctx, id, entity)
	if err != nil {
		return models.Entity{}, fmt.Errorf("update entity locally: %w", err)
	}

	if stored.SyncStatus == models.StatusLocal {
		return stored, nil
	}

	if utils.IsLocalID(id) {
		// the create for this entity is still queued and will push the
		// state just written; an update push with a local id is never sent
		return stored, nil
	}

	if s.monitor.Online() {
		_, pushErr := s.remote.Update(ctx, stored)
		if pushErr == nil {
			if err = s.entities.SetSyncStatus(ctx, id, models.StatusSynced); err != nil {
				return models.Entity{}, fmt.Errorf("mark %s synced: %w", id, err)
			}
			stored.SyncStatus = models.StatusSynced
			return stored, nil
		}

		log.Warn().
			Str("func", "entityService.Update").
			Str("id", id).
			Err(pushErr).
			Msg("direct push failed, queueing update")
	}

	if _, err = s.queueSvc.Add(ctx, models.OpUpdateWorkout, stored, stored.UserID); err != nil {
		return models.Entity{}, err
	}

	return stored, nil
}

func (s *entityService) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	existing, err := s.entities.GetWithRelations(ctx, id)
	if err != nil {
		return fmt.Errorf("load entity %s: %w", id, err)
	}

	if err = s.entities.DeleteWithRelations(ctx, id); err != nil {
		return fmt.Errorf("delete entity locally: %w", err)
	}

	if existing.SyncStatus == models.StatusLocal || utils.IsLocalID(id) {
		// the server never saw it; a still-queued create will find the row
		// gone and drop itself
		return nil
	}

	if s.monitor.Online() {
		pushErr := s.remote.Delete(ctx, id)
		if pushErr == nil || errors.Is(pushErr, adapter.ErrNotFound) {
			return nil
		}

		log.Warn().
			Str("func", "entityService.Delete").
			Str("id", id).
			Err(pushErr).
			Msg("direct push failed, queueing delete")
	}

	if _, err = s.queueSvc.Add(ctx, models.OpDeleteWorkout, models.DeletePayload{ID: id}, existing.UserID); err != nil {
		return err
	}

	return nil
}

func (s *entityService) Get(ctx context.Context, id string) (models.Entity, error) {
	return s.entities.GetWithRelations(ctx, id)
}

func (s *entityService) GetAll(ctx context.Context) ([]models.Entity, error) {
	return s.entities.GetAllWithRelations(ctx, s.userID)
}
