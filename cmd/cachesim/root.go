package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
)

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// from leaking between invocations.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cachesim",
		Short: "Set-associative LRU cache simulator.",
		Long: `CacheSim replays a trace of memory addresses through a ` +
			`set-associative cache with LRU replacement and reports how many ` +
			`accesses hit or miss, overall and per set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	root.AddCommand(
		newRunCmd(),
		newGenCmd(),
		newConfigCmd(),
		newBenchCmd(),
	)

	return root
}

// newLogger logs to the command's stderr, at debug level with -v.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
		&slog.HandlerOptions{Level: level}))
}

// cacheFlags selects a cache configuration from a file or a preset.
type cacheFlags struct {
	configPath string
	preset     string
	model      string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "",
		"Path to cache configuration file (JSON or YAML)")
	cmd.Flags().StringVar(&f.preset, "preset", "",
		"Cache preset: l1i, l1d or l2")
	cmd.Flags().StringVar(&f.model, "model", string(cache.ModelLRU),
		"Cache model: lru or akita")
	cmd.MarkFlagsMutuallyExclusive("config", "preset")
}

// set reports whether a configuration source was given.
func (f *cacheFlags) set() bool {
	return f.configPath != "" || f.preset != ""
}

// load returns the selected configuration, or fallback if none was given.
func (f *cacheFlags) load(fallback cache.Config) (cache.Config, error) {
	switch {
	case f.configPath != "":
		return cache.LoadConfig(f.configPath)
	case f.preset != "":
		return cache.Preset(f.preset)
	default:
		return fallback, fallback.Validate()
	}
}
