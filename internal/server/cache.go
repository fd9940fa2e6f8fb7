package server

import (
	"fmt"

	"github.com/coocood/freecache"
	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/metrics"
)

const megabyte = 1024 * 1024

// whiteboardCache keeps rendered whiteboard JSON per (user, block, week,
// day). A nil cache stores nothing.
type whiteboardCache struct {
	cache   *freecache.Cache
	ttl     int
	metrics *metrics.Manager
}

func newWhiteboardCache(sizeMB, ttlSeconds int) *whiteboardCache {
	if sizeMB <= 0 {
		return nil
	}
	return &whiteboardCache{
		cache: freecache.NewCache(sizeMB * megabyte),
		ttl:   ttlSeconds,
	}
}

func whiteboardKey(userID int, blockID uuid.UUID, week, day int) []byte {
	return []byte(fmt.Sprintf("wb::%d::%s::%d::%d", userID, blockID, week, day))
}

func (c *whiteboardCache) get(key []byte) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.cache.Get(key)
	if err != nil {
		if c.metrics != nil {
			c.metrics.CounterCacheMisses.Inc()
		}
		return nil, false
	}
	if c.metrics != nil {
		c.metrics.CounterCacheHits.Inc()
	}
	return val, true
}

func (c *whiteboardCache) set(key, val []byte) {
	if c == nil {
		return
	}
	// Entries larger than the cache segment are simply not cached.
	_ = c.cache.Set(key, val, c.ttl)
}

// invalidate drops every rendering of a block. day -1 is the whole week.
func (c *whiteboardCache) invalidate(userID int, blockID uuid.UUID, weeks, days int) {
	if c == nil {
		return
	}
	for week := 1; week <= weeks; week++ {
		for day := -1; day < days; day++ {
			c.cache.Del(whiteboardKey(userID, blockID, week, day))
		}
	}
}

func (c *whiteboardCache) clear() {
	if c == nil {
		return
	}
	c.cache.Clear()
}
