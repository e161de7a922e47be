// Package cache holds the TTL cache for search results. Repeated
// queries against an unchanged project are served from memory; any
// reindex or delete invalidates the project's entries at once.
package cache

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/codescope/backend/internal/index"
)

const (
	numCounters = 1e6
	maxCost     = 1e7
	bufferItems = 64
)

// QueryCache caches search results per project. Invalidation bumps a
// per-project generation that is folded into every key, so stale
// entries simply stop being reachable and age out.
type QueryCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

func New(ttl time.Duration) (*QueryCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("creating query cache: %w", err)
	}
	return &QueryCache{
		cache:       cache,
		ttl:         ttl,
		generations: make(map[string]uint64),
	}, nil
}

// Key builds a cache key for one query against one project. The key
// embeds the project's current generation.
func (c *QueryCache) Key(projectID, operation string, parts ...string) string {
	c.mu.Lock()
	gen := c.generations[projectID]
	c.mu.Unlock()

	return projectID + "\x00" + strconv.FormatUint(gen, 10) + "\x00" +
		operation + "\x00" + strings.Join(parts, "\x00")
}

func (c *QueryCache) Get(key string) ([]index.Result, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	results, ok := value.([]index.Result)
	if !ok {
		return nil, false
	}
	return results, true
}

func (c *QueryCache) Set(key string, results []index.Result) {
	c.cache.SetWithTTL(key, results, estimateCost(results), c.ttl)
}

// Invalidate drops all cached results for a project.
func (c *QueryCache) Invalidate(projectID string) {
	c.mu.Lock()
	c.generations[projectID]++
	c.mu.Unlock()
}

// Wait blocks until buffered writes have been applied.
func (c *QueryCache) Wait() {
	c.cache.Wait()
}

func (c *QueryCache) Close() {
	c.cache.Close()
}

func estimateCost(results []index.Result) int64 {
	cost := int64(64)
	for _, r := range results {
		cost += int64(len(r.ID) + len(r.Name) + len(r.Path) + len(r.Doc) + 128)
	}
	return cost
}
