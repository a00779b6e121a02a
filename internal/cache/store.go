// Package cache provides the get/set-with-TTL key-value contract used by
// the terminology enrichment tier, with in-memory, Redis, and Postgres
// implementations. Expiry is checked lazily on read; no backend is required
// to evict proactively.
package cache

import (
	"context"
	"time"
)

// Store is a shared key-value cache with per-entry TTL. Get returns
// ok=false for absent or expired keys. Implementations must treat a
// backend failure as a miss-shaped error, never as a panic.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Len reports the number of live (unexpired) entries.
	Len(ctx context.Context) (int64, error)
	// Purge removes every entry.
	Purge(ctx context.Context) error
}
