package cache

import "fmt"

// Model is a cache that classifies addresses as hits or misses.
type Model interface {
	// Access processes one address and updates recency and statistics.
	Access(addr uint64) AccessResult
	// Geometry returns the shape of the cache.
	Geometry() Geometry
	// Stats returns a snapshot of the statistics.
	Stats() Statistics
	// Resident lists the tags held by a set, most recently used first.
	Resident(setIndex int) []uint64
}

// ModelKind selects a Model implementation.
type ModelKind string

const (
	// ModelLRU is Cache.
	ModelLRU ModelKind = "lru"
	// ModelAkita is DirectoryCache.
	ModelAkita ModelKind = "akita"
)

// NewModel creates a model of the given kind. An empty kind means ModelLRU.
func NewModel(kind ModelKind, config Config) (Model, error) {
	var (
		m   Model
		err error
	)

	switch kind {
	case ModelLRU, "":
		m, err = NewFromConfig(config)
	case ModelAkita:
		m, err = NewDirectoryCache(config.Size, config.Associativity, config.BlockSize)
	default:
		err = fmt.Errorf("unknown cache model %q", kind)
	}

	if err != nil {
		return nil, err
	}

	return m, nil
}
