// dedupe.go suppresses duplicate public submissions. Each submission is
// reduced to a fingerprint and claimed in Valkey with SET NX, so the first
// writer wins and repeats within the window are rejected without touching
// the database.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupeKeyPrefix = "submit:"

	// DefaultDedupeWindow is how long a submission fingerprint blocks repeats.
	DefaultDedupeWindow = 24 * time.Hour
)

// SubmissionDedupe tracks recently seen submission fingerprints in Valkey.
type SubmissionDedupe struct {
	client *redis.Client
	window time.Duration
}

// NewSubmissionDedupe creates a new dedupe tracker with the given window.
func NewSubmissionDedupe(client *redis.Client, window time.Duration) *SubmissionDedupe {
	if window == 0 {
		window = DefaultDedupeWindow
	}
	return &SubmissionDedupe{client: client, window: window}
}

// Fingerprint derives a stable hash from the fields that identify a
// submission. Case and surrounding whitespace are ignored.
func Fingerprint(email, title, href string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	sum := sha256.Sum256([]byte(norm(email) + "\x00" + norm(title) + "\x00" + norm(href)))
	return hex.EncodeToString(sum[:])
}

// Claim attempts to register a fingerprint. Returns true if this is the
// first sighting within the window, false if it is a duplicate.
func (d *SubmissionDedupe) Claim(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupeKeyPrefix+fingerprint, 1, d.window).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
