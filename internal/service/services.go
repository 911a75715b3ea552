package service

import (
	"github.com/fitsync/fitsync/internal/adapter"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/store"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/internal/validators"
)

// ClientServices bundles every service the client wires together.
type ClientServices struct {
	EntityService   EntityService
	TemplateService TemplateService
	QueueService    QueueService
	SyncManager     SyncManager
	SyncJob         SyncJob
}

// NewClientServices wires the service layer on top of the storages, the
// remote adapter and the network monitor.
func NewClientServices(
	storages *store.ClientStorages,
	remote adapter.RemoteAdapter,
	monitor *netmon.Monitor,
	cfg *config.ClientConfig,
	clock utils.Clock,
	logger *logger.Logger,
) *ClientServices {
	queueSvc := NewQueueService(storages, remote, monitor, clock, logger)
	syncManager := NewSyncManager(storages, queueSvc, remote, monitor, clock, cfg, logger)
	validator := validators.NewEntityValidator()

	return &ClientServices{
		EntityService:   NewEntityService(storages, queueSvc, remote, monitor, validator, cfg.App.UserID, logger),
		TemplateService: NewTemplateService(storages, queueSvc, remote, monitor, validator, cfg.App.UserID, logger),
		QueueService:    queueSvc,
		SyncManager:     syncManager,
		SyncJob:         NewSyncJob(syncManager, monitor, logger),
	}
}
