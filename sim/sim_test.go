package sim_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

// failingSource returns addresses until it runs out, then a read error.
type failingSource struct {
	addrs []uint64
}

func (s *failingSource) Next() (uint64, error) {
	if len(s.addrs) == 0 {
		return 0, errors.New("disk on fire")
	}
	addr := s.addrs[0]
	s.addrs = s.addrs[1:]
	return addr, nil
}

// cancelingSource cancels its context after n addresses.
type cancelingSource struct {
	n      int
	cancel context.CancelFunc
}

func (s *cancelingSource) Next() (uint64, error) {
	s.n--
	if s.n == 0 {
		s.cancel()
	}
	return 0, nil
}

var _ = Describe("Run", func() {
	var (
		c   *cache.Cache
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		c, err = cache.New(1024, 2, 64)
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	It("should replay a trace in order", func() {
		result, err := sim.Run(ctx, c, trace.Slice([]uint64{0x000, 0x200, 0x000}))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Accesses).To(Equal(uint64(3)))
		Expect(result.Skipped).To(BeZero())
		Expect(c.HitCount()).To(Equal(uint64(1)))
		Expect(c.MissCount()).To(Equal(uint64(2)))
	})

	It("should abort on a malformed line by default", func() {
		src := trace.NewReader(strings.NewReader("0\nnope\n64\n"))
		result, err := sim.Run(ctx, c, src)
		Expect(err).To(MatchError(trace.ErrMalformedInput))
		Expect(result.Accesses).To(Equal(uint64(1)))
		Expect(c.Stats().Accesses()).To(Equal(uint64(1)))
	})

	It("should skip and count malformed lines when asked", func() {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

		src := trace.NewReader(strings.NewReader("0\nnope\n0\nzz\n"))
		result, err := sim.Run(ctx, c, src,
			sim.WithMalformedPolicy(sim.SkipMalformed),
			sim.WithLogger(logger),
			sim.WithProgressEvery(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Accesses).To(Equal(uint64(2)))
		Expect(result.Skipped).To(Equal(uint64(2)))
		Expect(c.HitCount()).To(Equal(uint64(1)))

		Expect(logs.String()).To(ContainSubstring("skipping trace line"))
		Expect(logs.String()).To(ContainSubstring("replay progress"))
		Expect(logs.String()).To(ContainSubstring("replay finished"))
	})

	It("should skip an over-long line when asked", func() {
		long := strings.Repeat("7", trace.MaxLineLength+10)
		src := trace.NewReader(strings.NewReader("0\n" + long + "\n0\n"))

		result, err := sim.Run(ctx, c, src, sim.WithMalformedPolicy(sim.SkipMalformed))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Accesses).To(Equal(uint64(2)))
		Expect(result.Skipped).To(Equal(uint64(1)))
		Expect(c.HitCount()).To(Equal(uint64(1)))
	})

	It("should always abort on read errors", func() {
		_, err := sim.Run(ctx, c, &failingSource{addrs: []uint64{1, 2}},
			sim.WithMalformedPolicy(sim.SkipMalformed))
		Expect(err).To(MatchError(ContainSubstring("disk on fire")))
		Expect(c.Stats().Accesses()).To(Equal(uint64(2)))
	})

	It("should stop between accesses when canceled", func() {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		result, err := sim.Run(ctx, c, &cancelingSource{n: 5, cancel: cancel})
		Expect(err).To(MatchError(context.Canceled))
		Expect(result.Accesses).To(Equal(uint64(5)))
		Expect(c.Stats().Accesses()).To(Equal(uint64(5)))
	})

	It("should drive the reference model too", func() {
		d, err := cache.NewDirectoryCache(1024, 2, 64)
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.Run(ctx, d, trace.Slice([]uint64{0x000, 0x200, 0x400, 0x000}))
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Stats().Misses).To(Equal(uint64(4)))
	})
})
