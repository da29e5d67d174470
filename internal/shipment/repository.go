package shipment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exportdesk/exportdesk/internal/platform/db"
	"github.com/exportdesk/exportdesk/internal/shared"
)

// Repository loads and stores shipment snapshots.
type Repository interface {
	Load(ctx context.Context, jobID string) (*Shipment, error)
	Save(ctx context.Context, snapshot *Shipment) error
	PruneRevisions(ctx context.Context, olderThan time.Duration) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL-backed snapshot store. The
// aggregate is stored whole as JSONB; the editor never issues partial
// patches, so row-level schema buys nothing here.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Load(ctx context.Context, jobID string) (*Shipment, error) {
	const query = `SELECT snapshot, updated_at FROM shipment_snapshots WHERE job_id = $1`

	var raw []byte
	var updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, jobID).Scan(&raw, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("shipment: load %s: %w", jobID, err)
	}

	var snap Shipment
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("shipment: decode snapshot %s: %w", jobID, err)
	}
	snap.JobID = jobID
	snap.UpdatedAt = updatedAt
	return &snap, nil
}

func (r *repository) Save(ctx context.Context, snapshot *Shipment) error {
	if snapshot == nil || snapshot.JobID == "" {
		return errors.New("shipment: save requires a job id")
	}
	snapshot.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("shipment: encode snapshot %s: %w", snapshot.JobID, err)
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const upsert = `
			INSERT INTO shipment_snapshots (job_id, snapshot, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (job_id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`
		if _, err := tx.Exec(ctx, upsert, snapshot.JobID, raw, snapshot.UpdatedAt); err != nil {
			return fmt.Errorf("shipment: upsert %s: %w", snapshot.JobID, err)
		}

		const revision = `
			INSERT INTO shipment_snapshot_revisions (job_id, snapshot, saved_at)
			VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, revision, snapshot.JobID, raw, snapshot.UpdatedAt); err != nil {
			return fmt.Errorf("shipment: record revision %s: %w", snapshot.JobID, err)
		}
		return nil
	})
}

func (r *repository) PruneRevisions(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	tag, err := r.pool.Exec(ctx, `DELETE FROM shipment_snapshot_revisions WHERE saved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("shipment: prune revisions: %w", err)
	}
	return tag.RowsAffected(), nil
}
