// Package cache models a single-level set-associative cache with LRU
// replacement, counting hits and misses globally and per set.
package cache

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrInvalidGeometry is returned when a cache size, associativity and block
// size cannot be sliced into tag, set index and offset bits.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// Geometry describes the shape of a cache and the address split it implies.
type Geometry struct {
	// CacheSize in bytes
	CacheSize int
	// Associativity (number of ways per set)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int

	// NumSets is CacheSize / (Associativity * BlockSize).
	NumSets int
	// SetIndexBits is log2(NumSets).
	SetIndexBits uint
	// OffsetBits is log2(BlockSize).
	OffsetBits uint
}

// Address is an address split into its cache fields.
type Address struct {
	Tag      uint64
	SetIndex uint64
	Offset   uint64
}

// NewGeometry derives the set count and field widths for a cache. It fails
// with ErrInvalidGeometry if any dimension is not positive, the block size or
// set count is not a power of two, or the cache does not hold a whole number
// of sets.
func NewGeometry(cacheSize, associativity, blockSize int) (Geometry, error) {
	if cacheSize <= 0 || associativity <= 0 || blockSize <= 0 {
		return Geometry{}, fmt.Errorf(
			"%w: size=%d associativity=%d block=%d must all be positive",
			ErrInvalidGeometry, cacheSize, associativity, blockSize)
	}

	if !isPowerOfTwo(blockSize) {
		return Geometry{}, fmt.Errorf(
			"%w: block size %d is not a power of two",
			ErrInvalidGeometry, blockSize)
	}

	if associativity > math.MaxInt/blockSize {
		return Geometry{}, fmt.Errorf(
			"%w: set size %d x %d overflows",
			ErrInvalidGeometry, associativity, blockSize)
	}

	setSize := associativity * blockSize
	if cacheSize%setSize != 0 {
		return Geometry{}, fmt.Errorf(
			"%w: cache size %d is not a multiple of set size %d",
			ErrInvalidGeometry, cacheSize, setSize)
	}

	numSets := cacheSize / setSize
	if !isPowerOfTwo(numSets) {
		return Geometry{}, fmt.Errorf(
			"%w: set count %d is not a power of two",
			ErrInvalidGeometry, numSets)
	}

	return Geometry{
		CacheSize:     cacheSize,
		Associativity: associativity,
		BlockSize:     blockSize,
		NumSets:       numSets,
		SetIndexBits:  uint(bits.TrailingZeros(uint(numSets))),
		OffsetBits:    uint(bits.TrailingZeros(uint(blockSize))),
	}, nil
}

// SetSize returns the number of bytes covered by one set.
func (g Geometry) SetSize() int {
	return g.Associativity * g.BlockSize
}

// Validate checks that a geometry, possibly built by hand, is consistent.
func (g Geometry) Validate() error {
	want, err := NewGeometry(g.CacheSize, g.Associativity, g.BlockSize)
	if err != nil {
		return err
	}

	if want != g {
		return fmt.Errorf("%w: derived fields do not match %d/%d/%d",
			ErrInvalidGeometry, g.CacheSize, g.Associativity, g.BlockSize)
	}

	return nil
}

// Decode splits addr into tag, set index and block offset. The geometry must
// be valid; use the package-level Decode for unchecked geometries.
func (g Geometry) Decode(addr uint64) Address {
	return Address{
		Tag:      addr >> (g.OffsetBits + g.SetIndexBits),
		SetIndex: (addr >> g.OffsetBits) & uint64(g.NumSets-1),
		Offset:   addr & uint64(g.BlockSize-1),
	}
}

// Compose rebuilds the address that Decode split into a.
func (g Geometry) Compose(a Address) uint64 {
	return a.Tag<<(g.OffsetBits+g.SetIndexBits) |
		a.SetIndex<<g.OffsetBits |
		a.Offset
}

// BlockAddr clears the offset bits of addr.
func (g Geometry) BlockAddr(addr uint64) uint64 {
	return addr &^ uint64(g.BlockSize-1)
}

// Decode validates g before splitting addr.
func Decode(g Geometry, addr uint64) (Address, error) {
	if err := g.Validate(); err != nil {
		return Address{}, err
	}

	return g.Decode(addr), nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
