// Package autosave debounces bursts of field edits into a single
// persistence call per editing burst. Each controller tab owns one
// Saver instance; sibling savers never coordinate.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is the debounce window between the last edit and the
// coalesced save.
const DefaultDelay = 1300 * time.Millisecond

// SaveFunc persists one full snapshot. Failures are logged by the
// Saver and not retried; the next edit re-arms the timer and is the
// de facto retry.
type SaveFunc func(ctx context.Context, snapshot any) error

// SnapshotFunc returns the current snapshot at save time, so the
// coalesced save always carries the latest state, not the state as of
// the edit that armed the timer.
type SnapshotFunc func() any

// Saver is a single-shot, re-armable debounce timer bound to one
// editor tab. It is safe for concurrent use; Close releases the timer
// so an abandoned tab cannot fire a stray save.
type Saver struct {
	logger   *slog.Logger
	save     SaveFunc
	snapshot SnapshotFunc
	delay    time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// New constructs a Saver. A non-positive delay falls back to
// DefaultDelay.
func New(logger *slog.Logger, delay time.Duration, snapshot SnapshotFunc, save SaveFunc) *Saver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Saver{logger: logger, save: save, snapshot: snapshot, delay: delay}
}

// Schedule arms the debounce timer, cancelling any pending one, so a
// burst of edits collapses into a single save of whatever snapshot is
// current when the window expires.
func (s *Saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// FlushNow saves immediately and cancels any pending timer, backing
// the explicit Save button. The pending timer is dropped first so a
// duplicate save cannot trail the manual one.
func (s *Saver) FlushNow(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil
	}
	return s.doSave(ctx)
}

// Cancel drops any pending timer without saving or closing. Used when
// another saver's immediate flush already persisted the state this
// timer was going to write.
func (s *Saver) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Close cancels any pending save and marks the saver unusable. It is
// called when the owning tab or session goes away.
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.closed = true
}

// Pending reports whether a save is currently scheduled.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Saver) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = s.doSave(ctx)
}

func (s *Saver) doSave(ctx context.Context) error {
	err := s.save(ctx, s.snapshot())
	if err != nil && s.logger != nil {
		// Best effort: the in-memory snapshot stays authoritative and
		// the next edit schedules the retry.
		s.logger.Warn("autosave failed", slog.Any("error", err))
	}
	return err
}
