package cli

import (
	"github.com/spf13/cobra"

	"github.com/ctxengine/ctx/internal/core"
	"github.com/ctxengine/ctx/internal/indexpipeline"
)

var initNoVectors bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a project and run the first full index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(args)
		if err != nil {
			return err
		}
		debugf("init: root=%s skipEmbedding=%v", root, initNoVectors)

		bar := newEmbeddingProgressBar(isVerbose())
		opts := indexpipeline.Options{SkipEmbedding: initNoVectors}
		if !initNoVectors {
			opts.Progress = bar.report
		}

		stats, err := core.Init(cmd.Context(), root, opts)
		if err != nil {
			return err
		}
		printStats(stats)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initNoVectors, "no-vectors", false, "skip embedding; index text/symbol/path search only")
	rootCmd.AddCommand(initCmd)
}
