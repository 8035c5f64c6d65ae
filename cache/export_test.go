package cache

import akitacache "github.com/sarchlab/akita/v4/mem/cache"

// NewDirectoryCacheWithFinder exposes the victim finder hook to tests.
func NewDirectoryCacheWithFinder(g Geometry, finder akitacache.VictimFinder) *DirectoryCache {
	return newDirectoryCache(g, finder)
}
