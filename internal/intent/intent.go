// Package intent classifies a visitor message as a service inquiry, a podcast
// inquiry or general conversation.
package intent

import (
	"strings"

	"github.com/barracksmedia/site-assistant/internal/textproc"
)

// Intent is the classified purpose of a message.
type Intent string

const (
	Service Intent = "service"
	Podcast Intent = "podcast"
	General Intent = "general"
)

func (i Intent) String() string { return string(i) }

// Signal words are matched as whole normalized words; entries with a space
// are matched as phrases.
var (
	serviceSignals = []string{
		"price", "prices", "pricing", "cost", "costs", "quote", "how much",
		"book", "booking", "schedule", "appointment", "consultation",
		"package", "packages", "plan", "plans", "hire", "service", "services",
		"website", "web design", "site", "seo", "landing page",
		"edit", "editing", "editor", "hosting", "production", "produce",
		"launch", "clips", "reels", "checkout", "buy",
	}
	podcastSignals = []string{
		"podcast", "podcasts", "episode", "episodes", "show", "shows",
		"listen", "listening", "recommend", "recommendation", "suggest",
		"stories", "story", "interview", "interviews", "network",
	}
	// Hard commercial words decide ties in favour of service so money
	// questions are never redirected into podcast chat.
	commercialSignals = []string{"price", "prices", "pricing", "cost", "costs", "quote", "how much"}
)

// Detect classifies message.
func Detect(message string) Intent {
	padded := " " + textproc.Normalize(message) + " "

	hasService := containsAny(padded, serviceSignals)
	hasPodcast := containsAny(padded, podcastSignals)

	switch {
	case hasService && hasPodcast:
		if containsAny(padded, commercialSignals) {
			return Service
		}
		return Podcast
	case hasService:
		return Service
	case hasPodcast:
		return Podcast
	default:
		return General
	}
}

// containsAny expects padded to be a normalized message wrapped in single
// spaces so word boundaries can be matched with plain substring search.
func containsAny(padded string, signals []string) bool {
	for _, s := range signals {
		if strings.Contains(padded, " "+s+" ") {
			return true
		}
	}
	return false
}
