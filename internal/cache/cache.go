package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JustJay7/court-fetcher/internal/fetcher"
)

// Cache holds recent fetch results so repeated searches skip the court portal.
type Cache interface {
	Get(key string) (*fetcher.CaseResult, bool)
	Set(key string, value *fetcher.CaseResult)
	Stats() CacheStats
}

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

type LRUCache struct {
	cache   *cache.Cache
	mu      sync.Mutex
	stats   CacheStats
	maxSize int
}

// NewCache returns a cache holding at most maxSize results for ttl each.
func NewCache(maxSize int, ttl time.Duration) Cache {
	return &LRUCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
	}
}

func (c *LRUCache) Get(key string) (*fetcher.CaseResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if result, ok := data.(*fetcher.CaseResult); ok {
			c.stats.Hits++
			return result, true
		}
	}

	c.stats.Misses++
	return nil, false
}

func (c *LRUCache) Set(key string, value *fetcher.CaseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, value, cache.DefaultExpiration)
}

func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.cache.ItemCount()
	return stats
}

// removeOldest evicts the entry closest to expiry, which is the one set
// longest ago since all entries share one TTL.
func (c *LRUCache) removeOldest() {
	items := c.cache.Items()
	if len(items) == 0 {
		return
	}

	var oldestKey string
	var oldestExpiration int64

	for key, item := range items {
		if oldestKey == "" || item.Expiration < oldestExpiration {
			oldestKey = key
			oldestExpiration = item.Expiration
		}
	}

	c.cache.Delete(oldestKey)
}

// GenerateCacheKey builds the key for one case at one court.
func GenerateCacheKey(court string, q fetcher.CaseQuery) string {
	return fmt.Sprintf("case:%s:%s:%s:%d",
		court, strings.ToUpper(strings.TrimSpace(q.CaseType)), strings.TrimSpace(q.CaseNumber), q.Year)
}
