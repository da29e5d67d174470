package shipment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/exportdesk/exportdesk/internal/observability"
	"github.com/exportdesk/exportdesk/internal/shared"
)

// Service is the load/save boundary of the editor. Loads are deduped
// with singleflight and served from the Redis cache when possible;
// saves write through the repository and refresh the cache.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	cache   *Cache
	audit   *shared.AuditLogger
	metrics *observability.Metrics
	group   singleflight.Group
}

// NewService wires the service. cache, audit and metrics may be nil.
func NewService(logger *slog.Logger, repo Repository, cache *Cache, audit *shared.AuditLogger, metrics *observability.Metrics) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, audit: audit, metrics: metrics}
}

// Load fetches the compliance/financial record for a job. A job with
// no stored record yields the default aggregate, not an error.
// Concurrent loads of the same job collapse into one repository call.
func (s *Service) Load(ctx context.Context, jobID string) (*Shipment, error) {
	if jobID == "" {
		return nil, errors.New("shipment: load requires a job id")
	}

	if snap, ok := s.cache.Get(ctx, jobID); ok {
		return snap, nil
	}

	v, err, _ := s.group.Do(jobID, func() (any, error) {
		snap, err := s.repo.Load(ctx, jobID)
		if errors.Is(err, shared.ErrNotFound) {
			return NewShipment(jobID), nil
		}
		if err != nil {
			return nil, fmt.Errorf("shipment: load: %w", err)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	snap := v.(*Shipment)
	if err := s.cache.Set(ctx, snap); err != nil {
		s.warn("snapshot cache set", slog.String("job_id", jobID), slog.Any("error", err))
	}
	return snap, nil
}

// Save upserts the full snapshot. The call is idempotent from the
// editor's point of view; replays carry the same aggregate.
func (s *Service) Save(ctx context.Context, snapshot *Shipment) error {
	err := s.repo.Save(ctx, snapshot)
	s.metrics.ObserveSave(err)
	if err != nil {
		// A failed write leaves the store's state uncertain; drop the
		// cached copy so the next load reads it fresh.
		if cerr := s.cache.Invalidate(ctx, snapshot.JobID); cerr != nil {
			s.warn("snapshot cache invalidate", slog.String("job_id", snapshot.JobID), slog.Any("error", cerr))
		}
		return fmt.Errorf("shipment: save: %w", err)
	}

	if err := s.cache.Set(ctx, snapshot); err != nil {
		s.warn("snapshot cache refresh", slog.String("job_id", snapshot.JobID), slog.Any("error", err))
	}

	if s.audit != nil {
		auditErr := s.audit.Record(ctx, shared.AuditLog{
			Actor:    "editor",
			Action:   "shipment.snapshot.save",
			Entity:   "shipment",
			EntityID: snapshot.JobID,
			Meta: map[string]any{
				"products":         len(snapshot.Products),
				"ar_rows":          len(snapshot.ARInvoices.Rows),
				"ap_rows":          len(snapshot.APInvoices.Rows),
				"payment_requests": len(snapshot.PaymentRequests.Rows),
			},
			At: time.Now().UTC(),
		})
		if auditErr != nil {
			s.warn("audit save", slog.String("job_id", snapshot.JobID), slog.Any("error", auditErr))
		}
	}
	return nil
}

func (s *Service) warn(msg string, attrs ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, attrs...)
	}
}
