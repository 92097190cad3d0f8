package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
	Register("none", newNopCache)
}

// memoryCache keeps pages in an expirable LRU for the lifetime of the process.
type memoryCache struct {
	pages *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	var onEvict func(string, []byte)
	if cfg.OnEvict != nil {
		onEvict = func(key string, _ []byte) { cfg.OnEvict(key) }
	}
	return &memoryCache{pages: lru.NewLRU[string, []byte](cfg.Size, onEvict, cfg.TTL)}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) { return m.pages.Get(key) }

func (m *memoryCache) Set(key string, value []byte) { m.pages.Add(key, value) }

func (m *memoryCache) Len() int { return m.pages.Len() }

func (m *memoryCache) Close() error { return nil }

// nopCache disables page caching.
type nopCache struct{}

func newNopCache(ProviderConfig) (Cache, error) { return nopCache{}, nil }

func (nopCache) Get(string) ([]byte, bool) { return nil, false }
func (nopCache) Set(string, []byte)        {}
func (nopCache) Len() int                  { return 0 }
func (nopCache) Close() error              { return nil }
