package trace

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
)

// GeneratorConfig controls the shape of a synthetic trace.
type GeneratorConfig struct {
	// UniqueAddresses is the number of random base addresses.
	UniqueAddresses int `json:"unique_addresses"`
	// RepeatCount is both the number of passes over the bases and the
	// number of strided addresses emitted per base per pass.
	RepeatCount int `json:"repeat_count"`
	// Stride is added between the addresses emitted for one base.
	Stride uint64 `json:"stride"`
	// AddressBits bounds the random bases to [0, 2^AddressBits).
	AddressBits uint `json:"address_bits"`
	// Seed makes the trace reproducible.
	Seed uint64 `json:"seed"`
}

// DefaultGeneratorConfig returns 100 bases, 10 repeats, a 64-byte stride and
// 26-bit bases.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		UniqueAddresses: 100,
		RepeatCount:     10,
		Stride:          64,
		AddressBits:     26,
		Seed:            1,
	}
}

// MaxTraceLength bounds the number of addresses a Generator produces.
const MaxTraceLength = 1 << 28

// Len returns the number of addresses the configuration produces.
func (c GeneratorConfig) Len() int {
	return c.RepeatCount * c.UniqueAddresses * c.RepeatCount
}

// Validate checks the configuration.
func (c GeneratorConfig) Validate() error {
	if c.UniqueAddresses <= 0 {
		return fmt.Errorf("unique_addresses must be > 0")
	}
	if c.RepeatCount <= 0 {
		return fmt.Errorf("repeat_count must be > 0")
	}
	if c.AddressBits < 4 || c.AddressBits > 64 {
		return fmt.Errorf("address_bits must be in [4, 64]")
	}
	if c.RepeatCount > MaxTraceLength/c.RepeatCount ||
		c.UniqueAddresses > MaxTraceLength/(c.RepeatCount*c.RepeatCount) {
		return fmt.Errorf("trace of %d unique addresses repeated %d times exceeds %d accesses",
			c.UniqueAddresses, c.RepeatCount, MaxTraceLength)
	}
	return nil
}

// Generator synthesizes traces with a controllable mix of hits and misses:
// each random base is revisited on every pass, and each visit touches
// RepeatCount consecutive strided blocks.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a Generator.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// Config returns the generator configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// Generate returns the whole trace.
func (g *Generator) Generate() ([]uint64, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}

	bases := g.bases()
	addrs := make([]uint64, 0, g.config.Len())
	for range g.config.RepeatCount {
		for _, base := range bases {
			addr := base
			for range g.config.RepeatCount {
				addrs = append(addrs, addr)
				addr += g.config.Stride
			}
		}
	}

	return addrs, nil
}

// bases draws 16-byte aligned random addresses.
func (g *Generator) bases() []uint64 {
	rng := rand.New(rand.NewPCG(g.config.Seed, g.config.Seed^0x9E3779B97F4A7C15))

	var limit uint64
	if g.config.AddressBits < 64 {
		limit = uint64(1) << g.config.AddressBits
	}

	bases := make([]uint64, g.config.UniqueAddresses)
	for i := range bases {
		var r uint64
		if limit == 0 {
			r = rng.Uint64()
		} else {
			r = rng.Uint64N(limit)
		}
		bases[i] = r &^ 0xF
	}

	return bases
}

// WriteTo writes the trace as 8-digit upper-case hex lines.
func (g *Generator) WriteTo(w io.Writer) (int64, error) {
	addrs, err := g.Generate()
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	var n int64
	for _, addr := range addrs {
		written, err := fmt.Fprintf(bw, "%08X\n", addr)
		n += int64(written)
		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}
