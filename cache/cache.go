package cache

import "fmt"

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Addr is the decoded address.
	Addr Address
	// Evicted is true if the miss displaced a resident block.
	Evicted bool
	// EvictedTag is the tag of the displaced block (if Evicted is true).
	EvictedTag uint64
}

// Statistics holds cache hit and miss counters.
type Statistics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64

	// SetHits and SetMisses are indexed by set.
	SetHits   []uint64
	SetMisses []uint64
}

// Accesses returns the number of accesses counted.
func (s Statistics) Accesses() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns hits per access, or zero before the first access.
func (s Statistics) HitRate() float64 {
	if s.Accesses() == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Accesses())
}

func newStatistics(numSets int) Statistics {
	return Statistics{
		SetHits:   make([]uint64, numSets),
		SetMisses: make([]uint64, numSets),
	}
}

func (s *Statistics) recordHit(set uint64) {
	s.Hits++
	s.SetHits[set]++
}

func (s *Statistics) recordMiss(set uint64) {
	s.Misses++
	s.SetMisses[set]++
}

func (s Statistics) clone() Statistics {
	return Statistics{
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
		SetHits:   append([]uint64(nil), s.SetHits...),
		SetMisses: append([]uint64(nil), s.SetMisses...),
	}
}

func (s *Statistics) reset() {
	s.Hits = 0
	s.Misses = 0
	s.Evictions = 0
	clear(s.SetHits)
	clear(s.SetMisses)
}

// Cache is a set-associative cache that allocates on miss and evicts the
// least recently used block of a full set. It is not safe for concurrent use.
type Cache struct {
	geometry Geometry
	sets     []lruSet
	stats    Statistics
}

// New creates a cache of cacheSize bytes split into blocks of blockSize
// bytes, associativity ways per set.
func New(cacheSize, associativity, blockSize int) (*Cache, error) {
	g, err := NewGeometry(cacheSize, associativity, blockSize)
	if err != nil {
		return nil, err
	}

	return newCache(g), nil
}

// NewWithGeometry creates a cache from a geometry, validating it first.
func NewWithGeometry(g Geometry) (*Cache, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	return newCache(g), nil
}

// NewFromConfig creates a cache from a configuration.
func NewFromConfig(config Config) (*Cache, error) {
	return New(config.Size, config.Associativity, config.BlockSize)
}

func newCache(g Geometry) *Cache {
	sets := make([]lruSet, g.NumSets)
	for i := range sets {
		sets[i] = newLRUSet(g.Associativity)
	}

	return &Cache{
		geometry: g,
		sets:     sets,
		stats:    newStatistics(g.NumSets),
	}
}

// Geometry returns the cache geometry.
func (c *Cache) Geometry() Geometry {
	return c.geometry
}

// Access looks addr up in its set. A hit refreshes the block's recency; a
// miss inserts the block as most recently used, evicting the least recently
// used block if the set is full.
func (c *Cache) Access(addr uint64) AccessResult {
	a := c.geometry.Decode(addr)
	set := &c.sets[a.SetIndex]

	if i, ok := set.lookup(a.Tag); ok {
		c.stats.recordHit(a.SetIndex)
		set.touch(i)

		return AccessResult{Hit: true, Addr: a}
	}

	c.stats.recordMiss(a.SetIndex)

	result := AccessResult{Addr: a}
	result.EvictedTag, result.Evicted = set.insert(a.Tag)
	if result.Evicted {
		c.stats.Evictions++
	}

	return result
}

// HitCount returns the total number of hits.
func (c *Cache) HitCount() uint64 {
	return c.stats.Hits
}

// MissCount returns the total number of misses.
func (c *Cache) MissCount() uint64 {
	return c.stats.Misses
}

// PerSetHitCounts returns a copy of the hit counters, indexed by set.
func (c *Cache) PerSetHitCounts() []uint64 {
	return append([]uint64(nil), c.stats.SetHits...)
}

// PerSetMissCounts returns a copy of the miss counters, indexed by set.
func (c *Cache) PerSetMissCounts() []uint64 {
	return append([]uint64(nil), c.stats.SetMisses...)
}

// Stats returns a copy of the cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats.clone()
}

// Resident lists the tags in a set from most to least recently used.
func (c *Cache) Resident(setIndex int) []uint64 {
	c.checkSet(setIndex)
	return c.sets[setIndex].tags()
}

// Len returns the number of blocks resident in a set.
func (c *Cache) Len(setIndex int) int {
	c.checkSet(setIndex)
	return c.sets[setIndex].used
}

// ResetStats clears cache statistics and keeps the resident blocks.
func (c *Cache) ResetStats() {
	c.stats.reset()
}

// Reset empties every set and clears the statistics.
func (c *Cache) Reset() {
	for i := range c.sets {
		c.sets[i].reset()
	}
	c.stats.reset()
}

func (c *Cache) checkSet(setIndex int) {
	if setIndex < 0 || setIndex >= len(c.sets) {
		panic(fmt.Sprintf("set index %d out of range [0, %d)",
			setIndex, len(c.sets)))
	}
}
