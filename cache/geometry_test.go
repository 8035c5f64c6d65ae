package cache_test

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

var _ = Describe("Geometry", func() {
	It("should derive set count and field widths", func() {
		g, err := cache.NewGeometry(1024, 2, 64)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.SetSize()).To(Equal(128))
		Expect(g.NumSets).To(Equal(8))
		Expect(g.OffsetBits).To(Equal(uint(6)))
		Expect(g.SetIndexBits).To(Equal(uint(3)))
	})

	It("should allow a single set", func() {
		// Fully associative: 4 ways of 64B in 256B
		g, err := cache.NewGeometry(256, 4, 64)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumSets).To(Equal(1))
		Expect(g.SetIndexBits).To(Equal(uint(0)))
		Expect(g.Decode(0xFFFF_FFC0).SetIndex).To(Equal(uint64(0)))
	})

	DescribeTable("should reject invalid geometries",
		func(size, assoc, block int) {
			_, err := cache.NewGeometry(size, assoc, block)
			Expect(err).To(MatchError(cache.ErrInvalidGeometry))
		},
		Entry("non power of two block", 1024, 2, 63),
		Entry("zero block", 1024, 2, 0),
		Entry("zero associativity", 1024, 0, 64),
		Entry("negative size", -1024, 2, 64),
		Entry("zero size", 0, 2, 64),
		Entry("partial set", 1000, 2, 64),
		Entry("non power of two sets", 3*128, 2, 64),
		Entry("set larger than cache", 64, 2, 64),
	)

	Describe("Decode", func() {
		var g cache.Geometry

		BeforeEach(func() {
			var err error
			g, err = cache.NewGeometry(1024, 2, 64)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should split an address into tag, set and offset", func() {
			// 0b1_011_000101: tag 1, set 3, offset 5
			a := g.Decode(0x2C5)
			Expect(a.Tag).To(Equal(uint64(1)))
			Expect(a.SetIndex).To(Equal(uint64(3)))
			Expect(a.Offset).To(Equal(uint64(5)))
		})

		It("should map consecutive blocks to consecutive sets", func() {
			Expect(g.Decode(0x000).SetIndex).To(Equal(uint64(0)))
			Expect(g.Decode(0x040).SetIndex).To(Equal(uint64(1)))
			Expect(g.Decode(0x1C0).SetIndex).To(Equal(uint64(7)))
			Expect(g.Decode(0x200).SetIndex).To(Equal(uint64(0)))
			Expect(g.Decode(0x200).Tag).To(Equal(uint64(1)))
		})

		It("should shift the top bit logically", func() {
			a := g.Decode(1 << 63)
			Expect(a.Tag).To(Equal(uint64(1) << (63 - 9)))
			Expect(a.SetIndex).To(Equal(uint64(0)))
		})

		It("should fail for a hand-built geometry", func() {
			_, err := cache.Decode(cache.Geometry{BlockSize: 64, Associativity: 1}, 0x40)
			Expect(err).To(MatchError(cache.ErrInvalidGeometry))

			bad := g
			bad.NumSets = 6
			_, err = cache.Decode(bad, 0x40)
			Expect(err).To(MatchError(cache.ErrInvalidGeometry))
		})

		It("should decode through a validated geometry", func() {
			a, err := cache.Decode(g, 0x2C5)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(g.Decode(0x2C5)))
		})
	})

	DescribeTable("should round-trip random addresses",
		func(size, assoc, block int) {
			g, err := cache.NewGeometry(size, assoc, block)
			Expect(err).NotTo(HaveOccurred())

			rng := rand.New(rand.NewPCG(1, uint64(size)))
			for range 1000 {
				addr := rng.Uint64()
				a := g.Decode(addr)
				Expect(a.SetIndex).To(BeNumerically("<", g.NumSets))
				Expect(a.Offset).To(BeNumerically("<", g.BlockSize))
				Expect(g.Compose(a)).To(Equal(addr))
				Expect(g.BlockAddr(addr)).To(Equal(addr - a.Offset))
			}
		},
		Entry("1KB 2-way 64B", 1024, 2, 64),
		Entry("direct mapped", 4096, 1, 16),
		Entry("fully associative", 4096, 64, 64),
		Entry("one byte blocks", 256, 4, 1),
		Entry("L1D", 128*1024, 8, 64),
		Entry("L1I", 192*1024, 6, 64),
	)
})
