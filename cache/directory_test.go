package cache_test

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// noVictimFinder never offers a block for replacement.
type noVictimFinder struct{}

func (noVictimFinder) FindVictim(*akitacache.Set) *akitacache.Block {
	return nil
}

var _ = Describe("DirectoryCache", func() {
	var d *cache.DirectoryCache

	BeforeEach(func() {
		var err error
		d, err = cache.NewDirectoryCache(1024, 2, 64)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject invalid geometries", func() {
		_, err := cache.NewDirectoryCache(1024, 2, 63)
		Expect(err).To(MatchError(cache.ErrInvalidGeometry))
	})

	It("should evict the least recently used block", func() {
		Expect(d.Access(0x000).Hit).To(BeFalse())
		Expect(d.Access(0x200).Hit).To(BeFalse())
		Expect(d.Access(0x000).Hit).To(BeTrue())

		result := d.Access(0x400)
		Expect(result.Evicted).To(BeTrue())
		Expect(result.EvictedTag).To(Equal(uint64(1)))
		Expect(d.Resident(0)).To(Equal([]uint64{2, 0}))

		stats := d.Stats()
		Expect(stats.Hits).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(3)))
		Expect(stats.SetMisses[0]).To(Equal(uint64(3)))
	})

	It("should count a miss without allocating when no victim is found", func() {
		g, err := cache.NewGeometry(1024, 2, 64)
		Expect(err).NotTo(HaveOccurred())
		nd := cache.NewDirectoryCacheWithFinder(g, noVictimFinder{})

		Expect(nd.Access(0x000).Hit).To(BeFalse())
		r := nd.Access(0x000)
		Expect(r.Hit).To(BeFalse())
		Expect(r.Evicted).To(BeFalse())

		stats := nd.Stats()
		Expect(stats.Misses).To(Equal(uint64(2)))
		Expect(stats.Evictions).To(BeZero())
		Expect(nd.Resident(0)).To(BeEmpty())
	})

	It("should reset", func() {
		d.Access(0x000)
		d.Reset()
		Expect(d.Stats().Accesses()).To(BeZero())
		Expect(d.Resident(0)).To(BeEmpty())
	})

	DescribeTable("should agree with Cache on generated traces",
		func(size, assoc, block int, gen trace.GeneratorConfig) {
			lru, err := cache.New(size, assoc, block)
			Expect(err).NotTo(HaveOccurred())
			ref, err := cache.NewDirectoryCache(size, assoc, block)
			Expect(err).NotTo(HaveOccurred())

			addrs, err := trace.NewGenerator(gen).Generate()
			Expect(err).NotTo(HaveOccurred())

			for _, addr := range addrs {
				Expect(lru.Access(addr)).To(Equal(ref.Access(addr)))
			}

			Expect(lru.Stats()).To(Equal(ref.Stats()))
			for set := range lru.Geometry().NumSets {
				Expect(lru.Resident(set)).To(Equal(ref.Resident(set)))
			}
		},
		Entry("small 2-way", 1024, 2, 64,
			trace.GeneratorConfig{UniqueAddresses: 20, RepeatCount: 4, Stride: 64, AddressBits: 14, Seed: 1}),
		Entry("direct mapped", 2048, 1, 32,
			trace.GeneratorConfig{UniqueAddresses: 30, RepeatCount: 3, Stride: 32, AddressBits: 16, Seed: 2}),
		Entry("fully associative", 512, 8, 64,
			trace.GeneratorConfig{UniqueAddresses: 10, RepeatCount: 5, Stride: 64, AddressBits: 12, Seed: 3}),
		Entry("default generator on 32KB 4-way", 32*1024, 4, 64,
			trace.DefaultGeneratorConfig()),
	)
})
