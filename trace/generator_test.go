package trace_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/trace"
)

var _ = Describe("Generator", func() {
	config := trace.GeneratorConfig{
		UniqueAddresses: 4,
		RepeatCount:     3,
		Stride:          64,
		AddressBits:     20,
		Seed:            42,
	}

	It("should emit strided runs for each base on every pass", func() {
		addrs, err := trace.NewGenerator(config).Generate()
		Expect(err).NotTo(HaveOccurred())
		Expect(addrs).To(HaveLen(config.Len()))
		Expect(addrs).To(HaveLen(3 * 4 * 3))

		pass := addrs[:12]
		for i := range 3 {
			Expect(addrs[i*12 : (i+1)*12]).To(Equal(pass))
		}

		for b := range 4 {
			base := pass[b*3]
			Expect(base & 0xF).To(BeZero())
			Expect(base).To(BeNumerically("<", 1<<20))
			Expect(pass[b*3+1]).To(Equal(base + 64))
			Expect(pass[b*3+2]).To(Equal(base + 128))
		}
	})

	It("should be reproducible for a seed", func() {
		a, err := trace.NewGenerator(config).Generate()
		Expect(err).NotTo(HaveOccurred())
		b, err := trace.NewGenerator(config).Generate()
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))

		other := config
		other.Seed = 43
		c, err := trace.NewGenerator(other).Generate()
		Expect(err).NotTo(HaveOccurred())
		Expect(c).NotTo(Equal(a))
	})

	It("should support full-width bases", func() {
		wide := config
		wide.AddressBits = 64
		addrs, err := trace.NewGenerator(wide).Generate()
		Expect(err).NotTo(HaveOccurred())
		Expect(addrs).To(HaveLen(wide.Len()))
	})

	DescribeTable("should reject invalid configurations",
		func(mutate func(*trace.GeneratorConfig)) {
			bad := config
			mutate(&bad)
			_, err := trace.NewGenerator(bad).Generate()
			Expect(err).To(HaveOccurred())
		},
		Entry("no bases", func(c *trace.GeneratorConfig) { c.UniqueAddresses = 0 }),
		Entry("no repeats", func(c *trace.GeneratorConfig) { c.RepeatCount = 0 }),
		Entry("too few bits", func(c *trace.GeneratorConfig) { c.AddressBits = 3 }),
		Entry("too many bits", func(c *trace.GeneratorConfig) { c.AddressBits = 65 }),
		Entry("too many addresses", func(c *trace.GeneratorConfig) {
			c.UniqueAddresses = 1_000_000_000
			c.RepeatCount = 100_000
		}),
		Entry("repeat count overflowing its square", func(c *trace.GeneratorConfig) {
			c.RepeatCount = 1 << 40
		}),
	)

	It("should accept a trace of exactly the maximum length", func() {
		limit := config
		limit.RepeatCount = 1 << 14
		limit.UniqueAddresses = 1
		Expect(limit.Validate()).To(Succeed())
		Expect(limit.Len()).To(Equal(trace.MaxTraceLength))

		limit.UniqueAddresses = 2
		Expect(limit.Validate()).To(MatchError(ContainSubstring("exceeds")))
	})

	It("should default to the classic fixture shape", func() {
		d := trace.DefaultGeneratorConfig()
		Expect(d.Len()).To(Equal(10 * 100 * 10))
		Expect(d.Stride).To(Equal(uint64(64)))
	})
})
