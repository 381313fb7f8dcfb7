package assistant

import (
	"fmt"
	"strings"

	"github.com/barracksmedia/site-assistant/internal/intent"
	"github.com/barracksmedia/site-assistant/internal/knowledge"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/barracksmedia/site-assistant/internal/sanitize"
	"github.com/barracksmedia/site-assistant/internal/scoring"
)

// reasonBudget bounds the description excerpt quoted for the top pick.
const reasonBudget = 140

// GenericPrompt is the answer when nothing in the catalog matched.
const GenericPrompt = "I can help you pick the right service, find a podcast episode worth your time, or get you booked. What are you trying to accomplish today?"

// Fallback builds the deterministic answer from ranked candidates: the top
// entry with a short reason, then up to two alternates by name only. It never
// calls anything external and always returns non-empty, voice-safe text.
//
// Podcast questions lead with episodes, service questions with services; a
// general question leads with whichever catalog produced the stronger match.
func Fallback(in intent.Intent, services []scoring.Candidate[models.Service], episodes []scoring.Candidate[models.Episode]) string {
	var text string
	switch {
	case len(services) == 0 && len(episodes) == 0:
		text = GenericPrompt
	case len(episodes) == 0:
		text = serviceFallback(scoring.Entries(services))
	case len(services) == 0:
		text = episodeFallback(scoring.Entries(episodes))
	case in == intent.Podcast:
		text = episodeFallback(scoring.Entries(episodes))
	case in == intent.Service:
		text = serviceFallback(scoring.Entries(services))
	case episodes[0].Score > services[0].Score:
		text = episodeFallback(scoring.Entries(episodes))
	default:
		text = serviceFallback(scoring.Entries(services))
	}
	return sanitize.Text(text)
}

func episodeFallback(eps []models.Episode) string {
	top := eps[0]
	var b strings.Builder
	fmt.Fprintf(&b, "My top pick for you is %s from %s", quoteTitle(top.Title), top.Show)
	if reason := reasonFrom(top.Description); reason != "" {
		fmt.Fprintf(&b, ": %s", reason)
	} else {
		b.WriteByte('.')
	}

	if alts := eps[1:min(len(eps), 3)]; len(alts) > 0 {
		names := make([]string, len(alts))
		for i, e := range alts {
			names[i] = fmt.Sprintf("%s from %s", quoteTitle(e.Title), e.Show)
		}
		fmt.Fprintf(&b, " If you want alternates, try %s.", strings.Join(names, " or "))
	}
	return b.String()
}

func serviceFallback(svcs []models.Service) string {
	top := svcs[0]
	var b strings.Builder
	fmt.Fprintf(&b, "The best fit for that is our %s", top.Name)
	if reason := reasonFrom(top.Description); reason != "" {
		fmt.Fprintf(&b, ": %s", reason)
	} else {
		b.WriteByte('.')
	}

	if alts := svcs[1:min(len(svcs), 3)]; len(alts) > 0 {
		names := make([]string, len(alts))
		for i, s := range alts {
			names[i] = s.Name
		}
		fmt.Fprintf(&b, " You might also look at %s.", strings.Join(names, " or "))
	}
	b.WriteString(" Want help getting started?")
	return b.String()
}

// reasonFrom shortens a description into a one-line reason ending in
// terminal punctuation. Empty descriptions give an empty reason.
func reasonFrom(desc string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	if desc == "" {
		return ""
	}
	reason := knowledge.Truncate(desc, reasonBudget)
	if !strings.HasSuffix(reason, "…") && !strings.ContainsAny(reason[len(reason)-1:], ".!?") {
		reason += "."
	}
	return reason
}

func quoteTitle(title string) string {
	return "“" + title + "”"
}
