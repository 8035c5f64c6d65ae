// Package benchmarks provides reference workloads for comparing cache
// configurations and checking the models against known hit counts.
package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

// BenchmarkResult holds the results for a single workload run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	Accesses  uint64  `json:"accesses"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`

	// ExpectedHits is the analytic hit count, if the workload has one.
	ExpectedHits *uint64 `json:"expected_hits,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Matches reports whether the hit count equals the analytic one. Workloads
// without an analytic count always match.
func (r BenchmarkResult) Matches() bool {
	return r.ExpectedHits == nil || *r.ExpectedHits == r.Hits
}

// Benchmark defines a single workload.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Trace builds the address sequence for a geometry.
	Trace func(g cache.Geometry) []uint64

	// ExpectedHits, if set, gives the LRU hit count for a geometry.
	ExpectedHits func(g cache.Geometry) uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Cache is the configuration every workload runs against.
	Cache cache.Config

	// Model selects the cache implementation.
	Model cache.ModelKind

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Cache:  cache.DefaultL1DConfig(),
		Model:  cache.ModelLRU,
		Output: os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Model == "" {
		config.Model = cache.ModelLRU
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks, each on a fresh cache, and returns results.
func (h *Harness) RunAll(ctx context.Context) ([]BenchmarkResult, error) {
	g, err := h.config.Cache.Geometry()
	if err != nil {
		return nil, err
	}

	results := make([]BenchmarkResult, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(ctx, g, bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(
	ctx context.Context,
	g cache.Geometry,
	bench Benchmark,
) (BenchmarkResult, error) {
	model, err := cache.NewModel(h.config.Model, h.config.Cache)
	if err != nil {
		return BenchmarkResult{}, err
	}

	run, err := sim.Run(ctx, model, trace.Slice(bench.Trace(g)))
	if err != nil {
		return BenchmarkResult{}, err
	}

	stats := model.Stats()
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
		Accesses:    run.Accesses,
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		HitRate:     stats.HitRate(),
		WallTime:    run.Duration,
	}

	if bench.ExpectedHits != nil {
		expected := bench.ExpectedHits(g)
		result.ExpectedHits = &expected
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	c := h.config.Cache
	_, _ = fmt.Fprintln(h.config.Output, "=== Cache Benchmark Results ===")
	_, _ = fmt.Fprintf(h.config.Output, "Cache: %d bytes, %d-way, %dB blocks (%s model)\n",
		c.Size, c.Associativity, c.BlockSize, h.config.Model)
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Accesses:  %d\n", r.Accesses)
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:      %d\n", r.Hits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:    %d\n", r.Misses)
		_, _ = fmt.Fprintf(h.config.Output, "  Evictions: %d\n", r.Evictions)
		_, _ = fmt.Fprintf(h.config.Output, "  Hit Rate:  %.1f%%\n", 100*r.HitRate)
		if r.ExpectedHits != nil {
			status := "ok"
			if !r.Matches() {
				status = "MISMATCH"
			}
			_, _ = fmt.Fprintf(h.config.Output, "  Expected:  %d hits (%s)\n", *r.ExpectedHits, status)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,accesses,hits,misses,evictions,hit_rate,matches")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%.4f,%t\n",
			r.Name,
			r.Accesses,
			r.Hits,
			r.Misses,
			r.Evictions,
			r.HitRate,
			r.Matches(),
		)
	}
}

// WriteJSON writes results as a JSON array.
func (h *Harness) WriteJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
