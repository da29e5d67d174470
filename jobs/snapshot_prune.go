package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RevisionPruner is the slice of the snapshot repository the prune job
// needs.
type RevisionPruner interface {
	PruneRevisions(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NewRevisionPruneHandler returns the Asynq handler deleting snapshot
// revisions older than the payload retention.
func NewRevisionPruneHandler(pruner RevisionPruner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RevisionPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Retention <= 0 {
			return asynq.SkipRetry
		}
		deleted, err := pruner.PruneRevisions(ctx, payload.Retention)
		if err != nil {
			logger.Error("revision prune failed", slog.Any("error", err))
			return err
		}
		logger.Info("revision prune complete", slog.Int64("deleted", deleted))
		return nil
	}
}

// NewAuditSweepHandler returns the Asynq handler deleting audit rows
// older than the payload retention.
func NewAuditSweepHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditSweepPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Retention <= 0 {
			return asynq.SkipRetry
		}
		cutoff := time.Now().Add(-payload.Retention)
		tag, err := pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
		if err != nil {
			logger.Error("audit sweep failed", slog.Any("error", err))
			return err
		}
		logger.Info("audit sweep complete", slog.Int64("deleted", tag.RowsAffected()))
		return nil
	}
}
