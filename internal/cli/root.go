// Package cli implements the ctx command-line surface: init, query, ask,
// watch, status, and config, built on cobra and viper per the teacher's
// scaffold.
package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ctxengine/ctx/internal/core"
)

var verbose bool

// rootCmd is the base `ctx` command.
var rootCmd = &cobra.Command{
	Use:   "ctx",
	Short: "Incremental code-context indexing and hybrid search",
	Long: `ctx builds and queries a local, incrementally-updated code-context index:
discovery, parsing, chunking, embedding, and a SQLite-backed store combining
vector, full-text, symbol, path, and dependency search, fused by reciprocal
rank fusion and re-ranked before being returned.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, translating any returned error into the
// exit code and message described in §7/§6 of the specification.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a typed core.Error to exit code 1 (expected) and
// anything else to 2 (unexpected).
func exitCodeFor(err error) int {
	var ce *core.Error
	if errors.As(err, &ce) || errors.Is(err, core.ErrNotInitialized) {
		return 1
	}
	return 2
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug diagnostics")
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintln(os.Stderr, "warning: bind verbose flag:", err)
	}
	viper.SetEnvPrefix("ctx")
	viper.AutomaticEnv()

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		debugf("request %s: %s %v", uuid.NewString(), cmd.Name(), args)
	}
}

func initLogging() {
	log.SetFlags(0)
}

func isVerbose() bool {
	return verbose || viper.GetBool("verbose") || os.Getenv("CTX_DEBUG") != ""
}

// debugf logs a debug-level diagnostic on stderr when verbose mode (flag or
// CTX_DEBUG) is on; it is silent otherwise.
func debugf(format string, args ...any) {
	if isVerbose() {
		log.Printf("[debug] "+format, args...)
	}
}
