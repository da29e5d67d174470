package shipment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/exportdesk/exportdesk/internal/observability"
)

// ManagerConfig tunes the session registry.
type ManagerConfig struct {
	// AutosaveDelay is the per-tab debounce window.
	AutosaveDelay time.Duration
	// IdleTTL evicts sessions untouched for this long. Zero disables
	// the janitor.
	IdleTTL time.Duration
	// SweepInterval is how often the janitor looks for idle sessions.
	SweepInterval time.Duration
}

// Manager owns the open editing sessions, one per job. Reopening a job
// returns the existing session so two browser tabs share one aggregate
// instead of clobbering each other's saves.
type Manager struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
	cfg     ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager builds the registry and starts the idle janitor.
func NewManager(logger *slog.Logger, service *Service, metrics *observability.Metrics, cfg ManagerConfig) *Manager {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	m := &Manager{
		logger:   logger,
		service:  service,
		metrics:  metrics,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	if cfg.IdleTTL > 0 {
		go m.janitor()
	}
	return m
}

// Open returns the session for a job, loading the aggregate and
// creating the session on first use.
func (m *Manager) Open(ctx context.Context, jobID string) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[jobID]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	snap, err := m.service.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A concurrent Open may have won the race while we were loading.
	if sess, ok := m.sessions[jobID]; ok {
		return sess, nil
	}
	sess := newSession(m.logger, snap, m.service, m.metrics, m.cfg.AutosaveDelay)
	m.sessions[jobID] = sess
	m.metrics.SessionOpened()
	if m.logger != nil {
		m.logger.Info("editing session opened", slog.String("job_id", jobID), slog.String("session_id", sess.ID.String()))
	}
	return sess, nil
}

// Get returns an already-open session without creating one.
func (m *Manager) Get(jobID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[jobID]
	return sess, ok
}

// Close flushes nothing and discards the session, cancelling any
// pending autosave. The explicit Save endpoint is the flush path;
// closing mirrors the user abandoning the editor.
func (m *Manager) Close(jobID string) {
	m.mu.Lock()
	sess, ok := m.sessions[jobID]
	delete(m.sessions, jobID)
	m.mu.Unlock()
	if ok {
		sess.Close()
		if m.logger != nil {
			m.logger.Info("editing session closed", slog.String("job_id", jobID))
		}
	}
}

// Shutdown closes every session and stops the janitor.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		sessions = append(sessions, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}

func (m *Manager) janitor() {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.cfg.IdleTTL)
	m.mu.Lock()
	var expired []*Session
	for id, sess := range m.sessions {
		if sess.IdleSince().Before(cutoff) {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, sess := range expired {
		sess.Close()
		if m.logger != nil {
			m.logger.Info("idle editing session evicted", slog.String("job_id", sess.JobID))
		}
	}
}
