package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctx/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show whether a project is initialized and its index statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(args)
		if err != nil {
			return err
		}

		report, err := core.Status(cmd.Context(), root)
		if err != nil {
			return err
		}

		if !report.Initialized {
			fmt.Printf("%s: not initialized (run `ctx init`)\n", root)
			return nil
		}

		fmt.Printf("%s\n", root)
		fmt.Printf("  schema version:   %s\n", report.SchemaVersion)
		if report.Embedder != nil {
			fmt.Printf("  embedder:         %s/%s (%d dims)\n", report.Embedder.Provider, report.Embedder.Model, report.Embedder.Dimensions)
		}
		fmt.Printf("  files:            %s\n", formatNumber(report.Stats.FileCount))
		fmt.Printf("  chunks:           %s\n", formatNumber(report.Stats.ChunkCount))
		fmt.Printf("  vectors:          %s\n", formatNumber(report.Stats.VectorCount))
		fmt.Printf("  last indexed:     %s\n", report.Stats.LastIndexed)
		for lang, n := range report.Stats.FilesByLanguage {
			fmt.Printf("    %-12s %s\n", lang, formatNumber(n))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
