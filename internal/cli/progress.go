package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ctxengine/ctx/internal/indexpipeline"
)

// embeddingProgressBar reports embedding progress during `ctx init`,
// matching the teacher's CLIProgressReporter styling.
type embeddingProgressBar struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

func newEmbeddingProgressBar(quiet bool) *embeddingProgressBar {
	return &embeddingProgressBar{quiet: quiet}
}

func (p *embeddingProgressBar) report(done, total int) {
	if p.quiet {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Generating embeddings"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("chunks/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() { fmt.Println() }),
		)
	}
	p.bar.Set(done)
}

// printStats renders an indexpipeline.Stats summary, matching the teacher's
// OnComplete formatting.
func printStats(stats *indexpipeline.Stats) {
	fmt.Println()
	fmt.Printf("✓ Indexing complete: %s chunks in %.1fs\n",
		formatNumber(stats.ChunksCreated), stats.Duration.Seconds())
	fmt.Printf("  Files discovered: %s (added %s, modified %s, deleted %s, unchanged %s)\n",
		formatNumber(stats.FilesDiscovered), formatNumber(stats.FilesAdded),
		formatNumber(stats.FilesModified), formatNumber(stats.FilesDeleted), formatNumber(stats.FilesUnchanged))
	if stats.VectorsCreated > 0 {
		fmt.Printf("  Vectors created:  %s\n", formatNumber(stats.VectorsCreated))
	}
}

// formatNumber adds thousands separators.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
