// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fitsync/fitsync/internal/adapter"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/store"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/models"
)

// maxQueueRetries bounds automatic replays per item; after that the item is
// parked as failed and only an explicit retry revives it.
const maxQueueRetries = 5

// retryBackoff is the delay before the next drain pass after a transient
// failure, indexed by the failing item's retry count and clamped at the last
// entry.
var retryBackoff = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

var (
	errUnknownOperation = errors.New("unknown queue operation")
	errBadPayload       = errors.New("malformed queue payload")
)

type queueService struct {
	queue     store.QueueRepository
	entities  store.LocalEntityRepository
	templates store.LocalTemplateRepository
	remote    adapter.RemoteAdapter
	monitor   *netmon.Monitor
	clock     utils.Clock
	logger    *logger.Logger

	mu           sync.Mutex
	isProcessing bool
	retryTimer   utils.Timer
}

func NewQueueService(
	storages *store.ClientStorages,
	remote adapter.RemoteAdapter,
	monitor *netmon.Monitor,
	clock utils.Clock,
	logger *logger.Logger,
) QueueService {
	return &queueService{
		queue:     storages.QueueRepository,
		entities:  storages.EntityRepository,
		templates: storages.TemplateRepository,
		remote:    remote,
		monitor:   monitor,
		clock:     clock,
		logger:    logger,
	}
}

func (s *queueService) Add(ctx context.Context, op models.QueueOperation, payload any, userID string) (models.QueueItem, error) {
	log := logger.FromContext(ctx)

	data, err := json.Marshal(payload)
	if err != nil {
		log.Err(err).
			Str("func", "queueService.Add").
			Str("operation", string(op)).
			Msg("failed to encode queue payload")
		return models.QueueItem{}, fmt.Errorf("encode queue payload: %w", err)
	}

	item, err := s.queue.Add(ctx, models.QueueItem{
		Operation: op,
		Data:      data,
		Timestamp: s.clock.Now().UTC(),
		Status:    models.QueuePending,
		UserID:    userID,
	})
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("enqueue %s: %w", op, err)
	}

	log.Debug().
		Str("func", "queueService.Add").
		Str("operation", string(op)).
		Int64("id", item.ID).
		Msg("operation queued")

	return item, nil
}

func (s *queueService) ProcessQueue(ctx context.Context) (models.QueueDrainResult, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		return models.QueueDrainResult{AlreadyProcessing: true}, nil
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	if !s.monitor.Online() {
		return models.QueueDrainResult{Offline: true}, nil
	}

	items, err := s.queue.GetByStatus(ctx, models.QueuePending)
	if err != nil {
		return models.QueueDrainResult{}, fmt.Errorf("load pending queue: %w", err)
	}

	var result models.QueueDrainResult

	for _, item := range items {
		procErr := s.processItem(ctx, item)
		if procErr == nil {
			// the remap inside processItem already ran, so deleting the
			// consumed item last means a crash can only leave a duplicate
			// replay, never a lost one
			if delErr := s.queue.Delete(ctx, item.ID); delErr != nil {
				return result, fmt.Errorf("dequeue item %d: %w", item.ID, delErr)
			}
			result.Processed++
			continue
		}

		result.Failed++
		item.RetryCount++
		item.Error = procErr.Error()

		if s.isTerminal(procErr, item.RetryCount) {
			item.Status = models.QueueFailed
			if updErr := s.queue.Update(ctx, item); updErr != nil {
				return result, fmt.Errorf("park failed item %d: %w", item.ID, updErr)
			}
			s.markTargetError(ctx, item)
			log.Warn().
				Str("func", "queueService.ProcessQueue").
				Int64("id", item.ID).
				Str("operation", string(item.Operation)).
				Str("error", item.Error).
				Msg("queue item exhausted retries")
			continue
		}

		if updErr := s.queue.Update(ctx, item); updErr != nil {
			return result, fmt.Errorf("record retry for item %d: %w", item.ID, updErr)
		}

		// replays are ordered, so a transient failure stops the pass; the
		// rest of the queue waits for the backoff retry
		s.scheduleRetry(item.RetryCount)
		log.Debug().
			Str("func", "queueService.ProcessQueue").
			Int64("id", item.ID).
			Int("retry_count", item.RetryCount).
			Msg("transient failure, drain pass stopped")
		break
	}

	return result, nil
}

func (s *queueService) GetPending(ctx context.Context) ([]models.QueueItem, error) {
	return s.queue.GetByStatus(ctx, models.QueuePending)
}

func (s *queueService) GetFailed(ctx context.Context) ([]models.QueueItem, error) {
	return s.queue.GetByStatus(ctx, models.QueueFailed)
}

func (s *queueService) RetryOperation(ctx context.Context, id int64) error {
	item, err := s.queue.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load queue item %d: %w", id, err)
	}

	item.Status = models.QueuePending
	item.RetryCount = 0
	item.Error = ""
	if err = s.queue.Update(ctx, item); err != nil {
		return fmt.Errorf("requeue item %d: %w", id, err)
	}

	if _, err = s.ProcessQueue(ctx); err != nil {
		return err
	}

	return nil
}

func (s *queueService) ClearFailed(ctx context.Context) (int64, error) {
	deleted, err := s.queue.DeleteByStatus(ctx, models.QueueFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed queue items: %w", err)
	}

	return deleted, nil
}

func (s *queueService) processItem(ctx context.Context, item models.QueueItem) error {
	switch item.Operation {
	case models.OpCreateWorkout:
		return s.pushEntityCreate(ctx, item)
	case models.OpUpdateWorkout:
		return s.pushEntityUpdate(ctx, item)
	case models.OpDeleteWorkout:
		return s.pushEntityDelete(ctx, item)
	case models.OpCreateTemplate:
		return s.pushTemplateCreate(ctx, item)
	case models.OpUpdateTemplate:
		return s.pushTemplateUpdate(ctx, item)
	case models.OpDeleteTemplate:
		return s.pushTemplateDelete(ctx, item)
	default:
		return fmt.Errorf("%w: %q", errUnknownOperation, item.Operation)
	}
}

func (s *queueService) pushEntityCreate(ctx context.Context, item models.QueueItem) error {
	id, err := payloadID(item.Data)
	if err != nil {
		return err
	}

	// always push the latest local state, not the snapshot captured at
	// enqueue time: later edits before the drain are folded into the create
	fresh, err := s.entities.GetWithRelations(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		// deleted before it ever reached the server
		return nil
	}
	if err != nil {
		return fmt.Errorf("load entity %s: %w", id, err)
	}

	if !utils.IsLocalID(fresh.ID) {
		// a previous pass already remapped it; push the state as an update
		return s.pushEntityState(ctx, fresh)
	}

	created, err := s.remote.Create(ctx, fresh)
	if err != nil {
		return fmt.Errorf("push create %s: %w", fresh.ID, err)
	}

	if created.ID != fresh.ID {
		if err = s.entities.RemapID(ctx, fresh.ID, created.ID); err != nil {
			return fmt.Errorf("remap %s to %s: %w", fresh.ID, created.ID, err)
		}
	}
	if err = s.entities.SetSyncStatus(ctx, created.ID, models.StatusSynced); err != nil {
		return fmt.Errorf("mark %s synced: %w", created.ID, err)
	}

	return nil
}

func (s *queueService) pushEntityUpdate(ctx context.Context, item models.QueueItem) error {
	id, err := payloadID(item.Data)
	if err != nil {
		return err
	}

	fresh, err := s.entities.GetWithRelations(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		// either deleted locally (the delete op follows in the queue) or
		// remapped by the create that preceded this item; both make the
		// snapshot obsolete
		return nil
	}
	if err != nil {
		return fmt.Errorf("load entity %s: %w", id, err)
	}

	if utils.IsLocalID(fresh.ID) {
		// never push a locally-tagged id as an update; the queued create
		// pushes the full current state
		return nil
	}

	return s.pushEntityState(ctx, fresh)
}

// pushEntityState sends a server-known entity as an update, falling back to
// re-creation when the server no longer has it.
func (s *queueService) pushEntityState(ctx context.Context, entity models.Entity) error {
	_, err := s.remote.Update(ctx, entity)
	if errors.Is(err, adapter.ErrNotFound) {
		created, createErr := s.remote.Create(ctx, entity)
		if createErr != nil {
			return fmt.Errorf("recreate %s: %w", entity.ID, createErr)
		}
		if created.ID != entity.ID {
			if remapErr := s.entities.RemapID(ctx, entity.ID, created.ID); remapErr != nil {
				return fmt.Errorf("remap %s to %s: %w", entity.ID, created.ID, remapErr)
			}
			entity.ID = created.ID
		}
	} else if err != nil {
		return fmt.Errorf("push update %s: %w", entity.ID, err)
	}

	if err = s.entities.SetSyncStatus(ctx, entity.ID, models.StatusSynced); err != nil {
		return fmt.Errorf("mark %s synced: %w", entity.ID, err)
	}

	return nil
}

func (s *queueService) pushEntityDelete(ctx context.Context, item models.QueueItem) error {
	var payload models.DeletePayload
	if err := json.Unmarshal(item.Data, &payload); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}

	if utils.IsLocalID(payload.ID) {
		// the server never saw this entity
		return nil
	}

	err := s.remote.Delete(ctx, payload.ID)
	if errors.Is(err, adapter.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push delete %s: %w", payload.ID, err)
	}

	return nil
}

func (s *queueService) pushTemplateCreate(ctx context.Context, item models.QueueItem) error {
	id, err := payloadID(item.Data)
	if err != nil {
		return err
	}

	fresh, err := s.templates.Get(ctx, id)
	if errors.Is(err, store.ErrTemplateNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load template %s: %w", id, err)
	}

	if !utils.IsLocalID(fresh.ID) {
		return s.pushTemplateState(ctx, fresh)
	}

	created, err := s.remote.CreateTemplate(ctx, fresh)
	if err != nil {
		return fmt.Errorf("push create template %s: %w", fresh.ID, err)
	}

	if created.ID != fresh.ID {
		if err = s.templates.RemapID(ctx, fresh.ID, created.ID); err != nil {
			return fmt.Errorf("remap template %s to %s: %w", fresh.ID, created.ID, err)
		}
	}
	if err = s.templates.SetSyncStatus(ctx, created.ID, models.StatusSynced); err != nil {
		return fmt.Errorf("mark template %s synced: %w", created.ID, err)
	}

	return nil
}

func (s *queueService) pushTemplateUpdate(ctx context.Context, item models.QueueItem) error {
	id, err := payloadID(item.Data)
	if err != nil {
		return err
	}

	fresh, err := s.templates.Get(ctx, id)
	if errors.Is(err, store.ErrTemplateNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load template %s: %w", id, err)
	}

	if utils.IsLocalID(fresh.ID) {
		return nil
	}

	return s.pushTemplateState(ctx, fresh)
}

func (s *queueService) pushTemplateState(ctx context.Context, tpl models.WorkoutTemplate) error {
	_, err := s.remote.UpdateTemplate(ctx, tpl)
	if errors.Is(err, adapter.ErrNotFound) {
		created, createErr := s.remote.CreateTemplate(ctx, tpl)
		if createErr != nil {
			return fmt.Errorf("recreate template %s: %w", tpl.ID, createErr)
		}
		if created.ID != tpl.ID {
			if remapErr := s.templates.RemapID(ctx, tpl.ID, created.ID); remapErr != nil {
				return fmt.Errorf("remap template %s to %s: %w", tpl.ID, created.ID, remapErr)
			}
			tpl.ID = created.ID
		}
	} else if err != nil {
		return fmt.Errorf("push update template %s: %w", tpl.ID, err)
	}

	if err = s.templates.SetSyncStatus(ctx, tpl.ID, models.StatusSynced); err != nil {
		return fmt.Errorf("mark template %s synced: %w", tpl.ID, err)
	}

	return nil
}

func (s *queueService) pushTemplateDelete(ctx context.Context, item models.QueueItem) error {
	var payload models.DeletePayload
	if err := json.Unmarshal(item.Data, &payload); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}

	if utils.IsLocalID(payload.ID) {
		// the server never saw this template
		return nil
	}

	err := s.remote.DeleteTemplate(ctx, payload.ID)
	if errors.Is(err, adapter.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push delete template %s: %w", payload.ID, err)
	}

	return nil
}

func (s *queueService) isTerminal(err error, retryCount int) bool {
	if adapter.IsPermanent(err) ||
		errors.Is(err, adapter.ErrUnauthorized) ||
		errors.Is(err, errUnknownOperation) ||
		errors.Is(err, errBadPayload) {
		return true
	}

	return retryCount >= maxQueueRetries
}

// markTargetError demotes the record behind a terminally failed item so its
// state is visible outside the queue. Best effort: the queue row already
// carries the error.
func (s *queueService) markTargetError(ctx context.Context, item models.QueueItem) {
	id, err := payloadID(item.Data)
	if err != nil {
		return
	}

	switch item.Operation {
	case models.OpCreateWorkout, models.OpUpdateWorkout:
		_ = s.entities.SetSyncStatus(ctx, id, models.StatusError)
	case models.OpCreateTemplate, models.OpUpdateTemplate:
		_ = s.templates.SetSyncStatus(ctx, id, models.StatusError)
	}
}

// scheduleRetry arms a single backoff timer for the next drain pass. An
// already armed timer stays as is, so overlapping failures cannot stack
// drains.
func (s *queueService) scheduleRetry(retryCount int) {
	idx := retryCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(retryBackoff) {
		idx = len(retryBackoff) - 1
	}
	delay := retryBackoff[idx]

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retryTimer != nil {
		return
	}

	s.retryTimer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		s.retryTimer = nil
		s.mu.Unlock()

		if !s.monitor.Online() {
			// the connectivity-restore sync will drain instead
			return
		}

		ctx := s.logger.WithContext(context.Background())
		if _, err := s.ProcessQueue(ctx); err != nil {
			s.logger.Err(err).
				Str("func", "queueService.scheduleRetry").
				Msg("scheduled drain failed")
		}
	})
}

// payloadID extracts the target record id from any queue payload shape;
// entities, templates, and delete payloads all serialise it as "id".
func payloadID(data []byte) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if probe.ID == "" {
		return "", fmt.Errorf("%w: missing id", errBadPayload)
	}
	return probe.ID, nil
}
