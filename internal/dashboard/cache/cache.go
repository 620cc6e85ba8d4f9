// Package cache keeps the latest dashboard snapshot in Redis so repeated
// dashboard loads do not recompute aggregates on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"sitewatch/internal/dashboard"
	platformRedis "sitewatch/internal/platform/redis"
	"sitewatch/pkg/platform/sentinel"
)

const snapshotKeyPrefix = "sitewatch:dashboard:snapshot"

// snapshotKey separates cached snapshots per reporting window so a 1h view
// never serves a reader asking for 24h.
func snapshotKey(window time.Duration) string {
	return fmt.Sprintf("%s:%s", snapshotKeyPrefix, window)
}

type SnapshotCache struct {
	client *platformRedis.Client
	ttl    time.Duration
}

// New returns a cache over the given client. A nil client yields a nil
// cache, which every method treats as a miss.
func New(client *platformRedis.Client, ttl time.Duration) *SnapshotCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for the window, or sentinel.ErrNotFound
// on a miss.
func (c *SnapshotCache) Get(ctx context.Context, window time.Duration) (dashboard.Snapshot, error) {
	if c == nil {
		return dashboard.Snapshot{}, sentinel.ErrNotFound
	}
	raw, err := c.client.Get(ctx, snapshotKey(window)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return dashboard.Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return dashboard.Snapshot{}, fmt.Errorf("read cached snapshot: %w", err)
	}
	var snap dashboard.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return dashboard.Snapshot{}, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, nil
}

// Put stores the snapshot for the window with the configured TTL. Best
// effort.
func (c *SnapshotCache) Put(ctx context.Context, window time.Duration, snap dashboard.Snapshot) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(window), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for the window.
func (c *SnapshotCache) Invalidate(ctx context.Context, window time.Duration) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, snapshotKey(window)).Err()
}
