package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctx/internal/core"
)

var (
	askLimit     int
	askProvider  string
	askFormat    string
	askNoExplain bool
)

var askCmd = &cobra.Command{
	Use:   "ask <q>",
	Short: "Ask a natural-language question and retrieve the most relevant context",
	Long: `ask runs the project's query pipeline with natural-language classification
weighting. Explanation synthesis over the retrieved context requires an
external LLM adapter (configured via "ctx config set llm.provider ..." and
wired in by the embedding caller); without one, ask prints retrieval results
only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootPath(nil)
		if err != nil {
			return err
		}
		q := args[0]

		cfg, err := core.ReadConfig(root)
		if err != nil {
			return err
		}

		results, err := core.NaturalLanguageQuery(cmd.Context(), root, q, core.NLOptions{Limit: askLimit})
		if err != nil {
			return err
		}

		provider := cfg.LLM.Provider
		if askProvider != "" {
			provider = askProvider
		}
		if !askNoExplain && provider == "null" {
			fmt.Println("(no LLM provider configured; showing retrieval results only)")
		}
		return printResults(results, askFormat)
	},
}

func init() {
	askCmd.Flags().IntVar(&askLimit, "limit", 0, "maximum results (0 uses the project default)")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "override the configured LLM provider for this call")
	askCmd.Flags().StringVar(&askFormat, "format", "text", "output format: text or json")
	askCmd.Flags().BoolVar(&askNoExplain, "no-explain", false, "suppress the no-LLM-configured notice")
	rootCmd.AddCommand(askCmd)
}
