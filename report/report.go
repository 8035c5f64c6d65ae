// Package report presents the statistics of a simulation run.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/sim"
)

// SetReport holds the counters of one set.
type SetReport struct {
	Index  int    `json:"index"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Report is a snapshot of a model's statistics after a run.
type Report struct {
	RunID  string       `json:"run_id"`
	Config cache.Config `json:"config"`

	NumSets   int     `json:"num_sets"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`

	Run  sim.Result  `json:"run"`
	Sets []SetReport `json:"sets"`
}

// New snapshots model into a Report with a fresh run ID.
func New(model cache.Model, run sim.Result) Report {
	g := model.Geometry()
	stats := model.Stats()

	r := Report{
		RunID: xid.New().String(),
		Config: cache.Config{
			Size:          g.CacheSize,
			Associativity: g.Associativity,
			BlockSize:     g.BlockSize,
		},
		NumSets:   g.NumSets,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		HitRate:   stats.HitRate(),
		Run:       run,
		Sets:      make([]SetReport, g.NumSets),
	}

	for i := range r.Sets {
		r.Sets[i] = SetReport{
			Index:  i,
			Hits:   stats.SetHits[i],
			Misses: stats.SetMisses[i],
		}
	}

	return r
}

// WriteText prints the overall statistics followed by one line per set.
func (r Report) WriteText(w io.Writer) error {
	p := &printer{w: w}

	p.printf("Cache Size: %s\n", formatSize(r.Config.Size))
	p.printf("Associativity: %d\n", r.Config.Associativity)
	p.printf("Block Size: %d bytes\n", r.Config.BlockSize)
	p.printf("Number of Sets: %d\n", r.NumSets)
	p.printf("Total Hits: %d\n", r.Hits)
	p.printf("Total Misses: %d\n", r.Misses)
	if r.Run.Skipped > 0 {
		p.printf("Skipped Lines: %d\n", r.Run.Skipped)
	}

	p.printf("\nSet-wise Hits and Misses:\n")
	for _, s := range r.Sets {
		p.printf("Set %d: Hits=%d, Misses=%d\n", s.Index, s.Hits, s.Misses)
	}

	return p.err
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return nil
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func formatSize(bytes int) string {
	switch {
	case bytes >= 1<<20 && bytes%(1<<20) == 0:
		return fmt.Sprintf("%dMB", bytes>>20)
	case bytes >= 1<<10 && bytes%(1<<10) == 0:
		return fmt.Sprintf("%dKB", bytes>>10)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
