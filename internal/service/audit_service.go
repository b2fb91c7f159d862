package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	"github.com/kotoba-labs/kotoba-api/pkg/config"
	"github.com/kotoba-labs/kotoba-api/pkg/jobs"
)

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditRecorder is the narrow dependency other services take; recording never
// blocks the request path and never fails it.
type auditRecorder interface {
	Record(log *models.AuditLog)
}

// AuditService persists audit rows asynchronously through a worker queue.
type AuditService struct {
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAuditService constructs the async audit writer.
func NewAuditService(store auditStore, cfg config.AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := jobs.New[*models.AuditLog]("audit", func(ctx context.Context, log *models.AuditLog) error {
		return store.CreateAuditLog(ctx, log)
	}, jobs.Config{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return &AuditService{queue: queue, logger: logger}
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit row. Failures are logged, never surfaced.
func (s *AuditService) Record(log *models.AuditLog) {
	if log == nil {
		return
	}
	if err := s.queue.Enqueue(log); err != nil {
		s.logger.Warn("failed to enqueue audit log", zap.String("action", log.Action), zap.Error(err))
	}
}
