// Package knowledge compiles the bounded, voice-safe context block handed to
// the text generation model.
package knowledge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/barracksmedia/site-assistant/internal/intent"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/barracksmedia/site-assistant/internal/sanitize"
)

// Budgets for each entry in the compiled block.
const (
	EpisodeDescriptionBudget = 260
	ServiceDescriptionBudget = 200
	MaxEpisodeTags           = 10
	MaxServiceFeatures       = 4
)

// Placeholders make absence explicit so the model can tell "nothing matched"
// from "section left out".
const (
	NoServicesLine = "- (no services matched)"
	NoEpisodesLine = "- (no episodes matched)"
)

// Build renders the intent and the ranked candidates. Only human-facing
// names, titles, descriptions and tags are included; booking paths and
// episode links never are.
func Build(in intent.Intent, services []models.Service, episodes []models.Episode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "INTENT: %s\n\n", in)

	b.WriteString("MATCHING SERVICES:\n")
	if len(services) == 0 {
		b.WriteString(NoServicesLine + "\n")
	}
	for _, s := range services {
		b.WriteString(serviceLine(s))
		b.WriteByte('\n')
	}

	b.WriteString("\nMATCHING EPISODES:\n")
	if len(episodes) == 0 {
		b.WriteString(NoEpisodesLine + "\n")
	}
	for _, e := range episodes {
		b.WriteString(episodeLine(e))
		b.WriteByte('\n')
	}

	return sanitize.Text(b.String())
}

func serviceLine(s models.Service) string {
	line := "- " + s.Name
	if s.Description != "" {
		line += ": " + Truncate(s.Description, ServiceDescriptionBudget)
	}
	if len(s.Features) > 0 {
		features := s.Features
		if len(features) > MaxServiceFeatures {
			features = features[:MaxServiceFeatures]
		}
		line += "\n  Features: " + strings.Join(features, "; ")
	}
	return line
}

func episodeLine(e models.Episode) string {
	line := fmt.Sprintf("- %s, \"%s\"", e.Show, e.Title)
	if e.Description != "" {
		line += ": " + Truncate(oneLine(e.Description), EpisodeDescriptionBudget)
	}
	if len(e.Tags) > 0 {
		tags := e.Tags
		if len(tags) > MaxEpisodeTags {
			tags = tags[:MaxEpisodeTags]
		}
		line += "\n  Tags: " + strings.Join(tags, ", ")
	}
	return line
}

// Truncate shortens s to at most max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

// Episode descriptions are often pasted video descriptions with many lines.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
