package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/barracksmedia/site-assistant/internal/assistant"
	"github.com/barracksmedia/site-assistant/internal/catalog"
	"github.com/barracksmedia/site-assistant/internal/config"
	"github.com/barracksmedia/site-assistant/internal/llm"
	"github.com/barracksmedia/site-assistant/internal/scoring"
	"github.com/spf13/cobra"
)

var (
	matchCatalog   string
	matchGenerate  bool
	matchKnowledge bool
)

var matchCmd = &cobra.Command{
	Use:   "match <message>",
	Short: "Dry-run intent detection, ranking and the reply locally",
	Long: `Run the matching pipeline for a message without the server and without
speech synthesis: detect the intent, rank services and episodes from a catalog
file and print the deterministic fallback reply.

With --generate the configured LLM provider writes the reply instead, using
the same dodge checks as the server.

Examples:
  assistant match "I love stories about veterans coming home"
  assistant match "how much does editing cost" --knowledge
  assistant match "any episodes about writing a book?" --generate
  assistant match "hi" --catalog ./my-catalog.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchCatalog, "catalog", "c", "", "catalog file (default $CATALOG_FILE)")
	matchCmd.Flags().BoolVarP(&matchGenerate, "generate", "g", false, "call the configured LLM provider")
	matchCmd.Flags().BoolVarP(&matchKnowledge, "knowledge", "k", false, "print the knowledge block sent to the model")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	path := matchCatalog
	if path == "" {
		path = cfg.CatalogFile
	}
	file, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	var gen assistant.Generator
	if matchGenerate {
		if !cfg.GenerationConfigured() {
			return fmt.Errorf("text generation not configured for provider %q", cfg.LLMProvider)
		}
		model, err := llm.NewModel(ctx, cfg, nil)
		if err != nil {
			return err
		}
		gen = model
	}

	a := newLocalAssistant(cfg, &catalog.Static{ServiceRecords: file.Services, EpisodeRecords: file.Episodes}, gen)
	plan := a.Plan(ctx, args[0])
	reply := a.Generate(ctx, plan)

	printPlan(cmd.OutOrStdout(), plan, reply, matchKnowledge)
	return nil
}

// newLocalAssistant builds an assistant without speech synthesis.
func newLocalAssistant(cfg config.Config, src catalog.Source, gen assistant.Generator) *assistant.Assistant {
	return assistant.New(assistant.Options{
		Source:    src,
		Generator: gen,
		Scorer: scoring.NewScorer(scoring.Weights{
			Text:  cfg.TextWeight,
			Tag:   cfg.TagWeight,
			Title: cfg.TitleWeight,
			Show:  cfg.ShowWeight,
		}, cfg.ServiceCandidates, cfg.EpisodeCandidates),
		Recommendations:   cfg.Recommendations,
		GenerationTimeout: cfg.LLMTimeout,
		Logger:            cliLogger(),
	})
}

func printPlan(w io.Writer, p assistant.Plan, r assistant.Reply, showKnowledge bool) {
	fmt.Fprintf(w, "%s %s\n", theme.headingStyle().Render("Intent:"), p.Intent)
	fmt.Fprintf(w, "%s %v\n", theme.headingStyle().Render("Tokens:"), p.Tokens)
	fmt.Fprintf(w, "%s %d services, %d episodes\n\n",
		theme.headingStyle().Render("Catalog:"), p.ServicesLoaded, p.EpisodesLoaded)

	fmt.Fprintln(w, theme.headingStyle().Render("Service candidates"))
	if len(p.Services) == 0 {
		fmt.Fprintln(w, theme.hintStyle().Render("  none"))
	}
	for _, c := range p.Services {
		fmt.Fprintf(w, "  %3d  %s\n", c.Score, c.Entry.Name)
	}

	fmt.Fprintln(w, theme.headingStyle().Render("Episode candidates"))
	if len(p.Episodes) == 0 {
		fmt.Fprintln(w, theme.hintStyle().Render("  none"))
	}
	for _, c := range p.Episodes {
		fmt.Fprintf(w, "  %3d  %s: %s\n", c.Score, c.Entry.Show, c.Entry.Title)
	}

	if showKnowledge {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.headingStyle().Render("Knowledge"))
		fmt.Fprintln(w, p.Knowledge)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", theme.headingStyle().Render("Reply"), theme.hintStyle().Render("("+r.Status.String()+")"))
	fmt.Fprintln(w, theme.answerStyle().Render(r.Text))
}
