package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server statistics",
	Long: `Show the running server's in-memory statistics: request timings, catalog
fetches, model and speech calls, token usage and reply counters.

Examples:
  assistant stats
  assistant stats --server https://assistant.barracksmedia.com`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	stats, err := apiClient().Stats(ctx)
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}
	printServerStats(cmd.OutOrStdout(), stats)
	return nil
}

// printServerStats displays server runtime statistics.
func printServerStats(w io.Writer, stats *metrics.Snapshot) {
	fmt.Fprintln(w, theme.headingStyle().Render("Server Statistics (in-memory, since restart)"))
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", stats.UptimeSeconds)

	sections := []struct {
		name string
		op   *metrics.OperationSnapshot
	}{
		{"Requests", stats.Request},
		{"Catalog Fetch", stats.CatalogFetch},
		{"LLM Generate", stats.Generate},
		{"Speech Synthesis", stats.Synthesize},
	}
	for _, s := range sections {
		if s.op == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", theme.headingStyle().Render(s.name))
		printOpStats(w, s.op)
		printTokenStats(w, s.op)
		if s.op.TotalCharacters != nil {
			fmt.Fprintf(w, "  Characters: %d total\n", *s.op.TotalCharacters)
		}
	}

	if len(stats.Counters) > 0 {
		fmt.Fprintf(w, "\n%s:\n", theme.headingStyle().Render("Counters"))
		for _, name := range slices.Sorted(maps.Keys(stats.Counters)) {
			fmt.Fprintf(w, "  %-22s %d\n", name, stats.Counters[name])
		}
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(w io.Writer, op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Fprintf(w, "  Tokens In:  %d total", *op.TotalInputTokens)
	if op.AvgInputTokens != nil {
		fmt.Fprintf(w, ", avg %.0f", *op.AvgInputTokens)
	}
	if op.MinInputTokens != nil && op.MaxInputTokens != nil {
		fmt.Fprintf(w, ", min %d, max %d", *op.MinInputTokens, *op.MaxInputTokens)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Tokens Out: %d total", *op.TotalOutputTokens)
	if op.AvgOutputTokens != nil {
		fmt.Fprintf(w, ", avg %.0f", *op.AvgOutputTokens)
	}
	if op.MinOutputTokens != nil && op.MaxOutputTokens != nil {
		fmt.Fprintf(w, ", min %d, max %d", *op.MinOutputTokens, *op.MaxOutputTokens)
	}
	fmt.Fprintln(w)
}
