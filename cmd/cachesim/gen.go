package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/trace"
)

func newGenCmd() *cobra.Command {
	config := trace.DefaultGeneratorConfig()

	cmd := &cobra.Command{
		Use:   "gen [file]",
		Short: "Write a synthetic trace.",
		Long: `Write a synthetic trace of hex addresses. Random 16-byte aligned ` +
			`bases are revisited on every pass, and each visit emits a run of ` +
			`strided addresses, so the mix of hits and misses is controlled by ` +
			`--unique, --repeat and --stride. Writes to stdout without a file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}

			if len(args) == 0 {
				return writeTrace(cmd, cmd.OutOrStdout(), config)
			}

			return writeTraceFile(cmd, args[0], config)
		},
	}

	cmd.Flags().IntVar(&config.UniqueAddresses, "unique", config.UniqueAddresses,
		"Number of random base addresses")
	cmd.Flags().IntVar(&config.RepeatCount, "repeat", config.RepeatCount,
		"Passes over the bases, and strided addresses per base")
	cmd.Flags().Uint64Var(&config.Stride, "stride", config.Stride,
		"Distance between strided addresses in bytes")
	cmd.Flags().UintVar(&config.AddressBits, "bits", config.AddressBits,
		"Width of the random bases in bits")
	cmd.Flags().Uint64Var(&config.Seed, "seed", config.Seed,
		"Random seed")

	return cmd
}

func writeTraceFile(cmd *cobra.Command, path string, config trace.GeneratorConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	if err := writeTrace(cmd, f, config); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}

	return nil
}

func writeTrace(cmd *cobra.Command, w io.Writer, config trace.GeneratorConfig) error {
	n, err := trace.NewGenerator(config).WriteTo(w)
	if err != nil {
		return err
	}

	newLogger(cmd).Debug("wrote trace",
		"addresses", config.Len(),
		"bytes", n)

	return nil
}
