// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"dir:*", "submit:*", seqKey} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, "")
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	// Verify connection.
	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestSnapshotCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewSnapshotCache(client, 1*time.Minute)

	ctx := context.Background()

	// Miss.
	data, ok := sc.Get(ctx, "tree-full")
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	// Set.
	body := []byte(`{"categories":[]}`)
	sc.Set(ctx, "tree-full", body)

	// Hit.
	data, ok = sc.Get(ctx, "tree-full")
	if !ok {
		t.Error("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}
}

func TestSnapshotCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewSnapshotCache(client, 1*time.Minute)

	ctx := context.Background()

	sc.Set(ctx, "tree-a", []byte("a"))
	sc.Set(ctx, "tree-b", []byte("b"))
	sc.Set(ctx, "tree-c", []byte("c"))

	seqBefore, err := sc.Seq(ctx)
	if err != nil {
		t.Fatalf("Seq before: %v", err)
	}

	sc.InvalidateAll(ctx)

	for _, key := range []string{"tree-a", "tree-b", "tree-c"} {
		_, ok := sc.Get(ctx, key)
		if ok {
			t.Errorf("expected miss for %q after InvalidateAll", key)
		}
	}

	seqAfter, err := sc.Seq(ctx)
	if err != nil {
		t.Fatalf("Seq after: %v", err)
	}
	if seqAfter <= seqBefore {
		t.Errorf("sequence did not advance: before=%d after=%d", seqBefore, seqAfter)
	}
}

func TestSnapshotCacheDefaultTTL(t *testing.T) {
	client := testValkeyClient(t)

	// TTL = 0 should use default.
	sc := NewSnapshotCache(client, 0)
	if sc.ttl != DefaultSnapshotTTL {
		t.Errorf("expected DefaultSnapshotTTL (%v), got %v", DefaultSnapshotTTL, sc.ttl)
	}
}

func TestFingerprintNormalization(t *testing.T) {
	a := Fingerprint("Student@Example.EDU", "  Room Booking ", "https://example.edu")
	b := Fingerprint("student@example.edu", "Room Booking", "https://example.edu")
	if a != b {
		t.Error("expected identical fingerprints after normalization")
	}

	c := Fingerprint("student@example.edu", "Different Title", "https://example.edu")
	if a == c {
		t.Error("expected different fingerprints for different titles")
	}
}

func TestSubmissionDedupeClaim(t *testing.T) {
	client := testValkeyClient(t)
	d := NewSubmissionDedupe(client, 1*time.Minute)

	ctx := context.Background()
	fp := Fingerprint("dedupe@example.edu", "Test Claim", "")

	first, err := d.Claim(ctx, fp)
	if err != nil {
		t.Fatalf("first Claim: %v", err)
	}
	if !first {
		t.Error("expected first claim to succeed")
	}

	second, err := d.Claim(ctx, fp)
	if err != nil {
		t.Fatalf("second Claim: %v", err)
	}
	if second {
		t.Error("expected second claim to be rejected as duplicate")
	}
}
