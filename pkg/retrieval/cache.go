package retrieval

import "sync"

// Cache stores embeddings keyed by a digest of their input text. The gateway
// never writes fallback vectors into it, only provider results.
//
// Implementations must be safe for concurrent use. Last-writer-wins is
// acceptable since embeddings are deterministic for a given input.
type Cache interface {
	Get(key string) ([]float32, bool)
	Set(key string, embedding []float32)
}

// MemoryCache is a process-local embedding cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string][]float32),
	}
}

// Get returns the cached embedding for key, if present.
func (c *MemoryCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	embedding, ok := c.entries[key]
	return embedding, ok
}

// Set stores an embedding under key, replacing any previous value.
func (c *MemoryCache) Set(key string, embedding []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = embedding
}

// Len reports the number of cached embeddings.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
