package shipment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recently loaded snapshots in Redis so reopening a job
// editor does not hit PostgreSQL. Entries are refreshed on every save,
// which keeps the cached copy no staler than the debounce window.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client. A nil client disables caching; every
// method degrades to a miss.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(jobID string) string {
	return fmt.Sprintf("exportdesk:shipment:%s", jobID)
}

// Get returns the cached snapshot, or (nil, false) on any miss or
// decode failure. Cache trouble never surfaces as a load error.
func (c *Cache) Get(ctx context.Context, jobID string) (*Shipment, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(jobID)).Bytes()
	if err != nil {
		return nil, false
	}
	var snap Shipment
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// Set stores the snapshot under the job key.
func (c *Cache) Set(ctx context.Context, snapshot *Shipment) error {
	if c == nil || c.client == nil || snapshot == nil {
		return nil
	}
	if snapshot.JobID == "" {
		return errors.New("shipment: cache requires a job id")
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(snapshot.JobID), raw, c.ttl).Err()
}

// Invalidate drops the cached snapshot for a job.
func (c *Cache) Invalidate(ctx context.Context, jobID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey(jobID)).Err()
}
