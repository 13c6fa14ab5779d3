package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctx/internal/core"
)

var traceFormat string

var traceCmd = &cobra.Command{
	Use:   "trace <from> <to>",
	Short: "Find the shortest dependency chain between two symbols",
	Long: `trace resolves from and to as exact symbol names and walks the
project's "imports" edges to find the shortest connecting chain, using the
same in-memory adjacency cache as dependency-strategy queries.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(nil)
		if err != nil {
			return err
		}

		results, err := core.DependencyPath(cmd.Context(), root, args[0], args[1])
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Printf("no dependency path found from %q to %q\n", args[0], args[1])
			return nil
		}
		return printResults(results, traceFormat)
	},
}

func init() {
	traceCmd.Flags().StringVar(&traceFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(traceCmd)
}
