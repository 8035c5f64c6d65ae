package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/benchmarks"
	"github.com/sarchlab/cachesim/cache"
)

func newBenchCmd() *cobra.Command {
	var (
		flags   cacheFlags
		csvOut  bool
		jsonOut bool
		core    bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the reference workloads.",
		Long: `Run the reference workloads against a cache (l1d by default) ` +
			`and print hits, misses and, where known, the analytic hit count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.load(cache.DefaultL1DConfig())
			if err != nil {
				return err
			}

			harness := benchmarks.NewHarness(benchmarks.HarnessConfig{
				Cache:  config,
				Model:  cache.ModelKind(flags.model),
				Output: cmd.OutOrStdout(),
			})
			if core {
				harness.AddBenchmarks(benchmarks.GetCoreWorkloads())
			} else {
				harness.AddBenchmarks(benchmarks.GetWorkloads())
			}

			results, err := harness.RunAll(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case jsonOut:
				return harness.WriteJSON(results)
			case csvOut:
				harness.PrintCSV(results)
			default:
				harness.PrintResults(results)
			}

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&csvOut, "csv", false, "Print results as CSV")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&core, "core", false, "Only run workloads with analytic hit counts")
	cmd.MarkFlagsMutuallyExclusive("csv", "json")

	return cmd
}
