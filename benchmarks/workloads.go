package benchmarks

import (
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// GetWorkloads returns the standard set of workloads. Each one targets a
// specific cache characteristic and scales with the geometry it runs on.
func GetWorkloads() []Benchmark {
	return []Benchmark{
		sequentialStream(),
		workingSetFits(),
		lruThrash(),
		hotBlock(),
		subBlockReuse(),
		generatedFixture(),
	}
}

// GetCoreWorkloads returns the workloads with analytic hit counts.
func GetCoreWorkloads() []Benchmark {
	return []Benchmark{
		sequentialStream(),
		workingSetFits(),
		lruThrash(),
		hotBlock(),
	}
}

func capacityBlocks(g cache.Geometry) int {
	return g.NumSets * g.Associativity
}

// setStride is the distance between consecutive tags of one set.
func setStride(g cache.Geometry) uint64 {
	return uint64(g.NumSets) * uint64(g.BlockSize)
}

// 1. Sequential Stream - every block touched once, all compulsory misses
func sequentialStream() Benchmark {
	return Benchmark{
		Name:        "sequential_stream",
		Description: "4x capacity of consecutive blocks, each touched once - compulsory misses only",
		Trace: func(g cache.Geometry) []uint64 {
			n := 4 * capacityBlocks(g)
			addrs := make([]uint64, n)
			for i := range addrs {
				addrs[i] = uint64(i) * uint64(g.BlockSize)
			}
			return addrs
		},
		ExpectedHits: func(g cache.Geometry) uint64 {
			return 0
		},
	}
}

// 2. Working Set Fits - a loop over exactly the cache capacity
func workingSetFits() Benchmark {
	const passes = 4
	return Benchmark{
		Name:        "working_set_fits",
		Description: "4 passes over a working set equal to capacity - misses only on the first pass",
		Trace: func(g cache.Geometry) []uint64 {
			n := capacityBlocks(g)
			addrs := make([]uint64, 0, passes*n)
			for range passes {
				for i := range n {
					addrs = append(addrs, uint64(i)*uint64(g.BlockSize))
				}
			}
			return addrs
		},
		ExpectedHits: func(g cache.Geometry) uint64 {
			return uint64((passes - 1) * capacityBlocks(g))
		},
	}
}

// 3. LRU Thrash - one more tag than ways, cycled through one set
func lruThrash() Benchmark {
	const passes = 8
	return Benchmark{
		Name:        "lru_thrash",
		Description: "associativity+1 tags cycled through set 0 - LRU always evicts the next tag needed",
		Trace: func(g cache.Geometry) []uint64 {
			stride := setStride(g)
			addrs := make([]uint64, 0, passes*(g.Associativity+1))
			for range passes {
				for t := range g.Associativity + 1 {
					addrs = append(addrs, uint64(t)*stride)
				}
			}
			return addrs
		},
		ExpectedHits: func(g cache.Geometry) uint64 {
			return 0
		},
	}
}

// 4. Hot Block - one block re-touched between streaming blocks in its set
func hotBlock() Benchmark {
	const rounds = 64
	return Benchmark{
		Name:        "hot_block",
		Description: "a hot block alternated with fresh blocks in the same set - hits refresh recency",
		Trace: func(g cache.Geometry) []uint64 {
			stride := setStride(g)
			addrs := make([]uint64, 0, 2*rounds)
			for r := range rounds {
				addrs = append(addrs, 0, uint64(r+1)*stride)
			}
			return addrs
		},
		ExpectedHits: func(g cache.Geometry) uint64 {
			if g.Associativity < 2 {
				return 0
			}
			return rounds - 1
		},
	}
}

// 5. Sub-Block Reuse - 8-byte words walked within each block
func subBlockReuse() Benchmark {
	return Benchmark{
		Name:        "sub_block_reuse",
		Description: "8-byte words walked through capacity blocks - spatial locality within a line",
		Trace: func(g cache.Geometry) []uint64 {
			step := wordStep(g)
			n := capacityBlocks(g)
			addrs := make([]uint64, 0, n*g.BlockSize/step)
			for i := range n {
				base := uint64(i) * uint64(g.BlockSize)
				for off := 0; off < g.BlockSize; off += step {
					addrs = append(addrs, base+uint64(off))
				}
			}
			return addrs
		},
		ExpectedHits: func(g cache.Geometry) uint64 {
			perBlock := g.BlockSize / wordStep(g)
			return uint64(capacityBlocks(g) * (perBlock - 1))
		},
	}
}

func wordStep(g cache.Geometry) int {
	if g.BlockSize < 8 {
		return 1
	}
	return 8
}

// 6. Generated Fixture - the synthetic repeat/stride trace
func generatedFixture() Benchmark {
	return Benchmark{
		Name:        "generated_fixture",
		Description: "100 random bases, each revisited 10 times with 10 strided blocks",
		Trace: func(g cache.Geometry) []uint64 {
			addrs, err := trace.NewGenerator(trace.DefaultGeneratorConfig()).Generate()
			if err != nil {
				panic(err)
			}
			return addrs
		},
	}
}
