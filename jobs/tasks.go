// Package jobs holds the Asynq task definitions and the background
// worker for maintenance that must not run inside the editor's request
// path: pruning snapshot revision history and sweeping stale audit rows.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRevisionPrune deletes snapshot revisions past retention.
	TaskRevisionPrune = "snapshot:prune_revisions"
	// TaskAuditSweep deletes audit rows past retention.
	TaskAuditSweep = "audit:sweep"
)

// RevisionPrunePayload carries the retention window for a prune run.
type RevisionPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewRevisionPruneTask constructs the prune task.
func NewRevisionPruneTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(RevisionPrunePayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRevisionPrune, data), nil
}

// AuditSweepPayload carries the retention window for an audit sweep.
type AuditSweepPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditSweepTask constructs the audit sweep task.
func NewAuditSweepTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(AuditSweepPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditSweep, data), nil
}
