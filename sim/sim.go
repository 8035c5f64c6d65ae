// Package sim replays address traces through a cache model.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// MalformedPolicy decides what a run does with an unparsable trace line.
type MalformedPolicy int

const (
	// AbortOnMalformed stops the run at the first malformed line.
	AbortOnMalformed MalformedPolicy = iota
	// SkipMalformed counts malformed lines and continues.
	SkipMalformed
)

// Result summarizes a replay.
type Result struct {
	// Accesses is the number of addresses fed to the model.
	Accesses uint64 `json:"accesses"`
	// Skipped is the number of malformed lines passed over.
	Skipped uint64 `json:"skipped"`
	// Duration is the wall time of the replay.
	Duration time.Duration `json:"duration_ns"`
}

type options struct {
	policy        MalformedPolicy
	logger        *slog.Logger
	progressEvery uint64
}

// Option configures Run.
type Option func(*options)

// WithMalformedPolicy sets how malformed trace lines are handled.
func WithMalformedPolicy(p MalformedPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the logger for progress and skipped lines.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProgressEvery logs progress every n accesses. Zero disables it.
func WithProgressEvery(n uint64) Option {
	return func(o *options) {
		o.progressEvery = n
	}
}

// Run feeds every address of src to model in order. Cancellation of ctx is
// observed between accesses; the model is left in the state reached by the
// last completed access. Statistics accumulate in the model itself.
func Run(
	ctx context.Context,
	model cache.Model,
	src trace.Source,
	opts ...Option,
) (Result, error) {
	o := options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var result Result
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return finish(result, start), fmt.Errorf("replay interrupted after %d accesses: %w",
				result.Accesses, err)
		}

		addr, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if o.policy == SkipMalformed && errors.Is(err, trace.ErrMalformedInput) {
				result.Skipped++
				o.logger.Debug("skipping trace line", "error", err)
				continue
			}
			return finish(result, start), fmt.Errorf("replay aborted after %d accesses: %w",
				result.Accesses, err)
		}

		model.Access(addr)
		result.Accesses++

		if o.progressEvery > 0 && result.Accesses%o.progressEvery == 0 {
			stats := model.Stats()
			o.logger.Debug("replay progress",
				"accesses", result.Accesses,
				"hits", stats.Hits,
				"misses", stats.Misses)
		}
	}

	result = finish(result, start)
	o.logger.Debug("replay finished",
		"accesses", result.Accesses,
		"skipped", result.Skipped,
		"duration", result.Duration)

	return result, nil
}

func finish(result Result, start time.Time) Result {
	result.Duration = time.Since(start)
	return result
}
