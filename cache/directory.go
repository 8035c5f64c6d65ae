package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// DirectoryCache implements Model on top of the Akita cache directory and its
// LRU victim finder. It keeps no data, only tags and recency, and serves as
// an independent reference for Cache.
type DirectoryCache struct {
	geometry Geometry

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// NewDirectoryCache creates a directory-backed cache with the same
// validation as New.
func NewDirectoryCache(cacheSize, associativity, blockSize int) (*DirectoryCache, error) {
	g, err := NewGeometry(cacheSize, associativity, blockSize)
	if err != nil {
		return nil, err
	}

	return newDirectoryCache(g, akitacache.NewLRUVictimFinder()), nil
}

func newDirectoryCache(g Geometry, finder akitacache.VictimFinder) *DirectoryCache {
	return &DirectoryCache{
		geometry: g,
		directory: akitacache.NewDirectory(
			g.NumSets,
			g.Associativity,
			g.BlockSize,
			finder,
		),
		stats: newStatistics(g.NumSets),
	}
}

// Geometry returns the cache geometry.
func (d *DirectoryCache) Geometry() Geometry {
	return d.geometry
}

// Access performs one lookup. Block tags in the directory hold the
// block-aligned address, so the set the directory picks is the one Decode
// picks.
func (d *DirectoryCache) Access(addr uint64) AccessResult {
	a := d.geometry.Decode(addr)
	blockAddr := d.geometry.BlockAddr(addr)

	block := d.directory.Lookup(0, blockAddr) // PID=0, single address space
	if block != nil && block.IsValid {
		d.stats.recordHit(a.SetIndex)
		d.directory.Visit(block) // Update LRU

		return AccessResult{Hit: true, Addr: a}
	}

	d.stats.recordMiss(a.SetIndex)
	result := AccessResult{Addr: a}

	victim := d.directory.FindVictim(blockAddr)
	if victim == nil {
		// Miss without allocation.
		return result
	}

	if victim.IsValid {
		d.stats.Evictions++
		result.Evicted = true
		result.EvictedTag = d.geometry.Decode(victim.Tag).Tag
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	d.directory.Visit(victim)

	return result
}

// Stats returns a copy of the cache statistics.
func (d *DirectoryCache) Stats() Statistics {
	return d.stats.clone()
}

// Resident lists the valid tags of a set, most recently used first.
func (d *DirectoryCache) Resident(setIndex int) []uint64 {
	queue := d.directory.GetSets()[setIndex].LRUQueue

	tags := make([]uint64, 0, len(queue))
	for i := len(queue) - 1; i >= 0; i-- {
		if queue[i].IsValid {
			tags = append(tags, d.geometry.Decode(queue[i].Tag).Tag)
		}
	}

	return tags
}

// Reset invalidates all blocks and clears statistics.
func (d *DirectoryCache) Reset() {
	d.directory.Reset()
	d.stats.reset()
}
