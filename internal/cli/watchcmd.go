package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctx/internal/core"
	"github.com/ctxengine/ctx/internal/indexpipeline"
	"github.com/ctxengine/ctx/internal/watch"
)

var (
	watchInitFirst bool
	watchDebounce  int
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a project for file changes and incrementally reindex",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(args)
		if err != nil {
			return err
		}

		if watchInitFirst {
			stats, err := core.Init(cmd.Context(), root, indexpipeline.Options{})
			if err != nil {
				return err
			}
			printStats(stats)
		}

		cfg, err := core.ReadConfig(root)
		if err != nil {
			return err
		}
		if watchDebounce > 0 {
			cfg.Watch.DebounceMs = watchDebounce
		}

		w, err := watch.New(root, cfg, func(ctx context.Context) (*indexpipeline.Stats, error) {
			return core.IncrementalIndex(ctx, root, indexpipeline.Options{})
		})
		if err != nil {
			return wrapWatcherErr(err)
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		fmt.Printf("watching %s (debounce %dms); press Ctrl-C to stop\n", root, cfg.Watch.DebounceMs)
		w.Start(ctx)
		<-ctx.Done()
		w.Stop()
		return nil
	},
}

func wrapWatcherErr(err error) error {
	return &core.Error{Kind: core.KindWatcherFailed, Err: err}
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitFirst, "init", false, "run a full index before starting the watch loop")
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 0, "override the configured debounce in milliseconds")
	rootCmd.AddCommand(watchCmd)
}
