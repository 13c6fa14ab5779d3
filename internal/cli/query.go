package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctx/internal/core"
	"github.com/ctxengine/ctx/internal/search"
)

var (
	queryLimit      int
	queryStrategy   string
	queryLanguage   string
	queryFormat     string
	queryNoVectors  bool
)

var queryCmd = &cobra.Command{
	Use:   "query <q>",
	Short: "Run a hybrid search query against the project index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(nil)
		if err != nil {
			return err
		}
		q := args[0]

		strategies := splitStrategies(queryStrategy)
		opts := core.QueryOptions{
			Limit:      queryLimit,
			Strategies: strategies,
			Language:   queryLanguage,
		}
		if queryNoVectors {
			base := strategies
			if len(strategies) == 0 {
				cfg, err := core.ReadConfig(root)
				if err != nil {
					return err
				}
				base = cfg.Search.Strategies
				opts.DisableClassifier = true
			}
			opts.Strategies = removeStrategy(base, "vector")
			if len(opts.Strategies) == 0 {
				return fmt.Errorf("--no-vectors leaves no search strategy to run")
			}
		}

		debugf("query: root=%s strategies=%v limit=%d", root, opts.Strategies, opts.Limit)

		results, err := core.Query(cmd.Context(), root, q, opts)
		if err != nil {
			return err
		}
		return printResults(results, queryFormat)
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum results (0 uses the project default)")
	queryCmd.Flags().StringVar(&queryStrategy, "strategy", "", "comma-separated strategy list (vector,fts,ast,path,dependency)")
	queryCmd.Flags().StringVar(&queryLanguage, "language", "", "restrict results to one language")
	queryCmd.Flags().StringVar(&queryFormat, "format", "text", "output format: text or json")
	queryCmd.Flags().BoolVar(&queryNoVectors, "no-vectors", false, "exclude the vector strategy, even from classifier auto-selection")
	rootCmd.AddCommand(queryCmd)
}

func splitStrategies(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func removeStrategy(strategies []string, name string) []string {
	if len(strategies) == 0 {
		return strategies
	}
	out := make([]string, 0, len(strategies))
	for _, s := range strategies {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}

func printResults(results []search.Result, format string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, r := range results {
		name := ""
		if r.Name != nil {
			name = *r.Name
		}
		fmt.Printf("%2d. [%.3f] %s:%d-%d  %s %s\n", i+1, r.Score, r.FilePath, r.LineStart, r.LineEnd, r.Type, name)
		fmt.Printf("    %s\n", firstLine(r.Text))
	}
	return nil
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}
