package service

import (
	"container/list"
	"sync"

	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/topology"
)

// ============================================================
// Topology Cache
// ============================================================

const defaultCacheCapacity = 64

type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

type cacheEntry struct {
	key  string
	topo models.Topology
}

// TopologyCache хранит разрешенные топологии по версии набора стен (LRU).
// Топология пересчитывается только при изменении стен.
type TopologyCache struct {
	mu       sync.Mutex
	capacity int
	resolver *topology.Resolver
	order    *list.List
	entries  map[string]*list.Element
	hits     uint64
	misses   uint64
}

func NewTopologyCache(capacity int, resolver *topology.Resolver) *TopologyCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &TopologyCache{
		capacity: capacity,
		resolver: resolver,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Resolve возвращает топологию из кэша или строит ее.
func (c *TopologyCache) Resolve(walls []models.Wall) models.Topology {
	key := topology.Fingerprint(walls)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		topo := el.Value.(*cacheEntry).topo
		c.mu.Unlock()
		return topo
	}
	c.misses++
	c.mu.Unlock()

	topo := c.resolver.Resolve(walls)

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).topo
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, topo: topo})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return topo
}

func (c *TopologyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

func (c *TopologyCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: c.order.Len(), Hits: c.hits, Misses: c.misses}
}
