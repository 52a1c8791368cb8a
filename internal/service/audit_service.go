package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/models"
	"github.com/noah-isme/ais-api/pkg/jobs"
)

type auditLogWriter interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// AuditTrailService writes audit records off the request path through an
// in-memory worker queue. A full buffer drops the record rather than stalling
// the request.
type AuditTrailService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// AuditTrailConfig sizes the background writer.
type AuditTrailConfig struct {
	Workers    int
	BufferSize int
}

// NewAuditTrailService builds the service around the given repository.
func NewAuditTrailService(repo auditLogWriter, cfg AuditTrailConfig, logger *zap.Logger) *AuditTrailService {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return fmt.Errorf("unexpected audit payload type %T", job.Payload)
		}
		return repo.Insert(ctx, entry)
	}

	queue := jobs.NewQueue("audit-trail", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})

	return &AuditTrailService{queue: queue, logger: logger}
}

// Start launches the background writers.
func (s *AuditTrailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditTrailService) Stop() {
	s.queue.Stop()
}

// Record enqueues one audit entry.
func (s *AuditTrailService) Record(entry models.AuditLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.queue.TryEnqueue(jobs.Job{
		ID:      entry.ID,
		Type:    entry.Action,
		Payload: &entry,
	}); err != nil {
		s.logger.Warn("dropping audit record", zap.String("action", entry.Action), zap.Error(err))
	}
}
