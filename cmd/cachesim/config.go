package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
)

func newConfigCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "config [" + strings.Join(cache.PresetNames(), "|") + "]",
		Short: "Print or save a cache preset.",
		Long: `Print a cache preset as JSON (l1d by default) together with ` +
			`its derived set count, or save it with --out for editing and ` +
			`later use with run --config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "l1d"
			if len(args) == 1 {
				name = args[0]
			}

			config, err := cache.Preset(name)
			if err != nil {
				return err
			}

			if out != "" {
				return config.SaveConfig(out)
			}

			g, err := config.Geometry()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				cache.Config
				NumSets      int  `json:"num_sets"`
				SetIndexBits uint `json:"set_index_bits"`
				OffsetBits   uint `json:"offset_bits"`
			}{config, g.NumSets, g.SetIndexBits, g.OffsetBits})
		},
	}

	cmd.Flags().StringVar(&out, "out", "",
		"Save the preset to this file (YAML for .yaml/.yml, JSON otherwise)")

	return cmd
}
