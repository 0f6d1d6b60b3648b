// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// snapshot.go provides a Valkey-backed cache for public directory responses.
// When a public endpoint assembles a category tree or service listing, the
// resulting JSON is stored in Valkey so subsequent requests skip the DB
// queries and tree assembly entirely. Every admin mutation clears the whole
// cache and bumps a sequence counter that readers use to order snapshots.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// snapshotKeyPrefix is the Valkey key prefix for cached responses.
	snapshotKeyPrefix = "dir:"

	// seqKey holds the monotonic directory version counter.
	seqKey = "dir-seq"

	// DefaultSnapshotTTL is how long a cached response stays valid.
	DefaultSnapshotTTL = 5 * time.Minute
)

// SnapshotCache manages cached directory responses in Valkey.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a new snapshot cache backed by the given Valkey client.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get retrieves a cached response for a key. Returns false on miss.
func (sc *SnapshotCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := sc.client.Get(ctx, snapshotKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("snapshot cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("snapshot cache hit", "key", key)
	return val, true
}

// Set stores a marshaled response for a key with the configured TTL.
func (sc *SnapshotCache) Set(ctx context.Context, key string, body []byte) {
	if err := sc.client.Set(ctx, snapshotKeyPrefix+key, body, sc.ttl).Err(); err != nil {
		slog.Warn("snapshot cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached responses and bumps the directory
// sequence so stale snapshots can be detected. Any mutation can reshape the
// tree, so a full clear is the only safe invalidation.
func (sc *SnapshotCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := sc.client.Scan(ctx, cursor, snapshotKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("snapshot cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("snapshot cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if _, err := sc.client.Incr(ctx, seqKey).Result(); err != nil {
		slog.Warn("snapshot sequence bump error", "error", err)
	}
	if deleted > 0 {
		slog.Info("snapshot cache cleared", "deleted", deleted)
	}
}

// Seq returns the current directory sequence number. The counter only moves
// forward, so a reader holding a higher number than a snapshot's knows that
// snapshot is stale. Returns 0 before any mutation has occurred.
func (sc *SnapshotCache) Seq(ctx context.Context) (uint64, error) {
	val, err := sc.client.Get(ctx, seqKey).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}
