package shipment

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/exportdesk/internal/shared"
)

// mockRepository keeps snapshots in memory and counts calls. loadDelay
// is set before any goroutine starts and holds the load open so
// concurrent callers overlap.
type mockRepository struct {
	mu        sync.Mutex
	snapshots map[string]*Shipment
	saves     []*Shipment
	loadErr   error
	saveErr   error
	loadCalls int
	loadDelay time.Duration
}

func newMockRepository() *mockRepository {
	return &mockRepository{snapshots: make(map[string]*Shipment)}
}

func (m *mockRepository) Load(_ context.Context, jobID string) (*Shipment, error) {
	if m.loadDelay > 0 {
		time.Sleep(m.loadDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	snap, ok := m.snapshots[jobID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneShipment(snap), nil
}

func (m *mockRepository) Save(_ context.Context, snapshot *Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	stored := cloneShipment(snapshot)
	m.snapshots[snapshot.JobID] = stored
	m.saves = append(m.saves, stored)
	return nil
}

func (m *mockRepository) PruneRevisions(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

func (m *mockRepository) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

func (m *mockRepository) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *mockRepository) lastSave() *Shipment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}

// cloneShipment round-trips through JSON, matching what the real
// repository stores.
func cloneShipment(in *Shipment) *Shipment {
	raw, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	var out Shipment
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

func newTestService(repo Repository) *Service {
	return NewService(nil, repo, nil, nil, nil)
}

func TestLoadMissingJobYieldsDefaultShipment(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	snap, err := svc.Load(context.Background(), "EXP-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, "EXP-2026-0001", snap.JobID)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, 1, snap.Products[0].SerialNumber)
	assert.Empty(t, snap.ARInvoices.Rows)
	assert.Empty(t, snap.APInvoices.Rows)
	assert.Empty(t, snap.PaymentRequests.Rows)
}

func TestLoadReturnsStoredSnapshot(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	stored := NewShipment("EXP-2026-0002")
	stored.Products[0].Description = "granite slabs"
	require.NoError(t, repo.Save(context.Background(), stored))

	snap, err := svc.Load(context.Background(), "EXP-2026-0002")
	require.NoError(t, err)
	assert.Equal(t, "granite slabs", snap.Products[0].Description)
}

func TestLoadRequiresJobID(t *testing.T) {
	svc := newTestService(newMockRepository())
	_, err := svc.Load(context.Background(), "")
	assert.Error(t, err)
}

func TestLoadPropagatesRepositoryFailure(t *testing.T) {
	repo := newMockRepository()
	repo.loadErr = errors.New("pg down")
	svc := newTestService(repo)

	_, err := svc.Load(context.Background(), "EXP-2026-0003")
	assert.Error(t, err)
}

func TestSaveFullSnapshotIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	snap := NewShipment("EXP-2026-0004")
	snap.Products[0].EximCode = "19 - DRAWBACK"

	require.NoError(t, svc.Save(context.Background(), snap))
	require.NoError(t, svc.Save(context.Background(), snap))

	assert.Equal(t, 2, repo.saveCount())
	reloaded, err := svc.Load(context.Background(), "EXP-2026-0004")
	require.NoError(t, err)
	assert.Equal(t, "19 - DRAWBACK", reloaded.Products[0].EximCode)
}

func TestSaveFailureSurfacesError(t *testing.T) {
	repo := newMockRepository()
	repo.saveErr = errors.New("pg down")
	svc := newTestService(repo)

	err := svc.Save(context.Background(), NewShipment("EXP-2026-0005"))
	assert.Error(t, err)
}

func TestLoadServesCachedSnapshotWithoutRepository(t *testing.T) {
	repo := newMockRepository()
	cache, _ := newTestCache(t, time.Minute)
	svc := NewService(nil, repo, cache, nil, nil)
	ctx := context.Background()

	stored := NewShipment("EXP-2026-0006")
	stored.Products[0].Description = "cotton yarn"
	require.NoError(t, repo.Save(ctx, stored))

	first, err := svc.Load(ctx, "EXP-2026-0006")
	require.NoError(t, err)
	require.Equal(t, 1, repo.loadCount())

	second, err := svc.Load(ctx, "EXP-2026-0006")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.loadCount(), "second load must be served from cache")
	assert.Equal(t, first.Products[0].Description, second.Products[0].Description)
}

func TestSaveRefreshesCachedSnapshot(t *testing.T) {
	repo := newMockRepository()
	cache, _ := newTestCache(t, time.Minute)
	svc := NewService(nil, repo, cache, nil, nil)
	ctx := context.Background()

	snap := NewShipment("EXP-2026-0007")
	snap.Products[0].Description = "granite slabs"
	require.NoError(t, svc.Save(ctx, snap))

	got, err := svc.Load(ctx, "EXP-2026-0007")
	require.NoError(t, err)
	assert.Equal(t, "granite slabs", got.Products[0].Description)
	assert.Zero(t, repo.loadCount(), "a saved snapshot must be readable without a repository round trip")
}

func TestFailedSaveDropsCachedSnapshot(t *testing.T) {
	repo := newMockRepository()
	cache, _ := newTestCache(t, time.Minute)
	svc := NewService(nil, repo, cache, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, NewShipment("EXP-2026-0008")))

	repo.saveErr = errors.New("write timeout")
	require.Error(t, svc.Save(ctx, NewShipment("EXP-2026-0008")))
	repo.saveErr = nil

	_, err := svc.Load(ctx, "EXP-2026-0008")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.loadCount(), "cache entry must not outlive an uncertain write")
}

func TestConcurrentLoadsCollapseIntoOneRepositoryCall(t *testing.T) {
	repo := newMockRepository()
	repo.loadDelay = 30 * time.Millisecond
	svc := newTestService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := svc.Load(context.Background(), "EXP-2026-0009")
			assert.NoError(t, err)
			assert.Equal(t, "EXP-2026-0009", snap.JobID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repo.loadCount())
}
