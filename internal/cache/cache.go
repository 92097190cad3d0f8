// Package cache stores fetched catalog pages keyed by URL so that the
// listing and detail pages of a search are only downloaded once per TTL.
package cache

import "strings"

// EvictCallback is called with the key of an entry removed for capacity.
// Providers relying on server-side expiry (redis) never call it.
type EvictCallback func(key string)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the cached page body and true, or nil and false on a miss.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous entry.
	Set(key string, value []byte)

	// Len returns the number of live entries.
	Len() int

	// Close releases connections held by the provider.
	Close() error
}

// PageKey normalises a page URL into a cache key.
func PageKey(url string) string {
	return "page:" + strings.TrimRight(strings.TrimSpace(url), "/")
}
