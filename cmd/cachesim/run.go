package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/report/metrics"
	"github.com/sarchlab/cachesim/report/record"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

type runOptions struct {
	cache         cacheFlags
	format        string
	skipMalformed bool
	jsonOut       bool
	metricsFile   string
	recordPath    string
	progressEvery uint64
	timeout       time.Duration
	profile       profiler
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [<cacheSizeKB> <associativity> <blockSize>] <trace>",
		Short: "Replay a trace file through the cache.",
		Long: `Replay a trace file, one address per line, through the cache ` +
			`and print hit/miss statistics. The cache is given either by the ` +
			`three positional numbers (size in KB, ways, block size in bytes) ` +
			`or by --config or --preset, in which case only the trace path ` +
			`is expected.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.cache.set() {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(4)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, args)
		},
	}

	opts.cache.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", "auto",
		"Trace line format: auto, hex or dec")
	cmd.Flags().BoolVar(&opts.skipMalformed, "skip-malformed", false,
		"Skip and count malformed trace lines instead of aborting")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false,
		"Print the report as JSON")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "",
		"Write Prometheus textfile metrics to this path")
	cmd.Flags().StringVar(&opts.recordPath, "record", "",
		"Append the run to this SQLite database")
	cmd.Flags().Uint64Var(&opts.progressEvery, "progress-every", 1_000_000,
		"Log progress every N accesses with -v (0 disables)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0,
		"Abort the replay after this duration (0 means no limit)")
	cmd.Flags().StringVar(&opts.profile.cpuPath, "cpuprofile", "",
		"Write a CPU profile to this path")
	cmd.Flags().StringVar(&opts.profile.memPath, "memprofile", "",
		"Write a heap profile to this path after the replay")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *runOptions, args []string) error {
	config, err := resolveRunConfig(opts, args)
	if err != nil {
		return err
	}
	tracePath := args[len(args)-1]

	model, err := cache.NewModel(cache.ModelKind(opts.cache.model), config)
	if err != nil {
		return err
	}

	format, err := trace.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	src, err := trace.Open(tracePath, trace.WithFormat(format))
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	logger := newLogger(cmd)
	logger.Debug("starting replay",
		"trace", tracePath,
		"size", config.Size,
		"associativity", config.Associativity,
		"block_size", config.BlockSize,
		"model", opts.cache.model)

	policy := sim.AbortOnMalformed
	if opts.skipMalformed {
		policy = sim.SkipMalformed
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	if err := opts.profile.start(); err != nil {
		return err
	}

	result, err := sim.Run(ctx, model, src,
		sim.WithMalformedPolicy(policy),
		sim.WithLogger(logger),
		sim.WithProgressEvery(opts.progressEvery))
	if perr := opts.profile.stop(); err == nil {
		err = perr
	}
	if err != nil {
		return err
	}

	rep := report.New(model, result)
	if opts.jsonOut {
		err = rep.WriteJSON(cmd.OutOrStdout())
	} else {
		err = rep.WriteText(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile, model); err != nil {
			return err
		}
		logger.Debug("wrote metrics", "path", opts.metricsFile)
	}

	if opts.recordPath != "" {
		if err := recordRun(opts.recordPath, rep); err != nil {
			return err
		}
		logger.Debug("recorded run", "path", opts.recordPath, "run_id", rep.RunID)
	}

	return nil
}

// resolveRunConfig reads the geometry from flags or the positional
// arguments. The positional cache size is in KB.
func resolveRunConfig(opts *runOptions, args []string) (cache.Config, error) {
	if opts.cache.set() {
		return opts.cache.load(cache.Config{})
	}

	var nums [3]int
	names := [3]string{"cache size", "associativity", "block size"}
	for i := range nums {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return cache.Config{}, fmt.Errorf("invalid %s %q: %w", names[i], args[i], err)
		}
		nums[i] = n
	}

	config := cache.Config{
		Size:          nums[0] * 1024,
		Associativity: nums[1],
		BlockSize:     nums[2],
	}

	return config, config.Validate()
}

func recordRun(path string, rep report.Report) error {
	rec, err := record.Open(path)
	if err != nil {
		return err
	}

	if err := rec.Write(rep); err != nil {
		_ = rec.Close()
		return err
	}

	return rec.Close()
}
