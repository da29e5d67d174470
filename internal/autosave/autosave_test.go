package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu        sync.Mutex
	calls     int
	snapshots []any
	err       error
}

func (c *captureSink) save(_ context.Context, snapshot any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.snapshots = append(c.snapshots, snapshot)
	return c.err
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *captureSink) last() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshots) == 0 {
		return nil
	}
	return c.snapshots[len(c.snapshots)-1]
}

type editorState struct {
	mu    sync.Mutex
	value string
}

func (e *editorState) set(v string) {
	e.mu.Lock()
	e.value = v
	e.mu.Unlock()
}

func (e *editorState) snapshot() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func TestScheduleCoalescesBurstIntoOneSave(t *testing.T) {
	sink := &captureSink{}
	state := &editorState{}
	s := New(nil, 40*time.Millisecond, state.snapshot, sink.save)
	defer s.Close()

	for _, v := range []string{"1", "12", "125", "1250"} {
		state.set(v)
		s.Schedule()
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "1250", sink.last(), "save must carry the snapshot at expiry, not at schedule time")

	// No trailing second save.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, sink.count())
}

func TestSeparateBurstsSaveSeparately(t *testing.T) {
	sink := &captureSink{}
	state := &editorState{}
	s := New(nil, 20*time.Millisecond, state.snapshot, sink.save)
	defer s.Close()

	state.set("a")
	s.Schedule()
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 2*time.Millisecond)

	state.set("b")
	s.Schedule()
	require.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "b", sink.last())
}

func TestFlushNowBypassesTimerAndCancelsPending(t *testing.T) {
	sink := &captureSink{}
	state := &editorState{}
	s := New(nil, 50*time.Millisecond, state.snapshot, sink.save)
	defer s.Close()

	state.set("typed")
	s.Schedule()
	require.True(t, s.Pending())

	require.NoError(t, s.FlushNow(context.Background()))
	assert.Equal(t, 1, sink.count())
	assert.False(t, s.Pending())

	// The cancelled timer must not produce a duplicate save.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, sink.count())
}

func TestCloseCancelsPendingSave(t *testing.T) {
	sink := &captureSink{}
	state := &editorState{}
	s := New(nil, 30*time.Millisecond, state.snapshot, sink.save)

	s.Schedule()
	s.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, sink.count())

	// A closed saver ignores further scheduling.
	s.Schedule()
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, sink.count())
}

func TestCancelDropsPendingTimerButKeepsSaverUsable(t *testing.T) {
	sink := &captureSink{}
	state := &editorState{}
	s := New(nil, 20*time.Millisecond, state.snapshot, sink.save)
	defer s.Close()

	state.set("dropped")
	s.Schedule()
	s.Cancel()
	assert.False(t, s.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, sink.count())

	// Unlike Close, Cancel leaves the saver armed for the next edit.
	state.set("kept")
	s.Schedule()
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "kept", sink.last())
}

func TestFailedSaveIsNotRetried(t *testing.T) {
	sink := &captureSink{err: errors.New("backend down")}
	state := &editorState{}
	s := New(nil, 15*time.Millisecond, state.snapshot, sink.save)
	defer s.Close()

	s.Schedule()
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 2*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, sink.count(), "no automatic retry after failure")

	// The next edit is the de facto retry.
	s.Schedule()
	require.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 2*time.Millisecond)
}

func TestFlushNowReturnsSaveError(t *testing.T) {
	sink := &captureSink{err: errors.New("backend down")}
	state := &editorState{}
	s := New(nil, time.Minute, state.snapshot, sink.save)
	defer s.Close()

	err := s.FlushNow(context.Background())
	assert.Error(t, err)
}
