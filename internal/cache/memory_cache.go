package cache

import (
	"context"
	"sync"
	"time"

	"promptbattle/internal/model"
)

const (
	memoryCacheTTL = 3 * time.Minute
	memoryCacheMax = 100
)

type memoryEntry struct {
	eval     model.Evaluation
	storedAt time.Time
}

// memoryEvalCache is the in-process fallback used when Redis isn't
// configured. Bounded: once full, the oldest entry is dropped.
type memoryEvalCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	order   []string
}

// NewMemoryEvalCache creates an in-memory evaluation cache.
func NewMemoryEvalCache() EvalCache {
	return &memoryEvalCache{
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryEvalCache) Get(_ context.Context, key string) (*model.Evaluation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > memoryCacheTTL {
		delete(c.entries, key)
		return nil, false
	}
	eval := entry.eval
	return &eval, true
}

func (c *memoryEvalCache) Set(_ context.Context, key string, eval *model.Evaluation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= memoryCacheMax {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = memoryEntry{eval: *eval, storedAt: time.Now()}
}
