// Package cache provides the TTL key-value store shared by the resolver
// and the enrichment stage. Entries are advisory: a missing, stale or
// unreachable cache must only ever force recomputation, never fail a
// request.
package cache

import (
	"context"
	"time"
)

const (
	// TracklistKeyPrefix namespaces cached resolver results.
	TracklistKeyPrefix = "tracklist:"
	// YouTubeKeyPrefix namespaces cached video lookups.
	YouTubeKeyPrefix = "youtube:"

	// TracklistTTL bounds how long a resolved tracklist is reused.
	TracklistTTL = 24 * time.Hour
	// YouTubeTTL bounds video lookups, including confirmed misses.
	YouTubeTTL = 7 * 24 * time.Hour
)

// Cache is a minimal TTL store. Implementations report a missing key as
// ("", false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
