package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/barracksmedia/site-assistant/internal/llm"
)

// Status records how a reply was produced.
type Status string

// Reply statuses. Every fallback_* status carries the deterministic text.
const (
	StatusGenerated Status = "generated"
	StatusNoAPIKey  Status = "fallback_no_api_key"
	StatusError     Status = "fallback_error"
	StatusEmpty     Status = "fallback_empty"
	StatusDodge     Status = "fallback_dodge"
)

func (s Status) String() string { return string(s) }

// IsFallback reports whether the deterministic answer was used.
func (s Status) IsFallback() bool { return s != StatusGenerated }

// Reply is the outcome of the generation step. It never carries an error:
// every failure has already been turned into a fallback.
type Reply struct {
	Text   string
	Status Status
}

// Generate asks the model for a reply to the planned request, making at most
// one attempt. Missing configuration, failures, empty output and dodges
// with known candidates all resolve to Fallback.
func (a *Assistant) Generate(ctx context.Context, p Plan) Reply {
	log := a.logger.With("request_id", RequestID(ctx), "intent", p.Intent.String())

	if a.generator == nil {
		return a.fallback(p, StatusNoAPIKey)
	}

	genCtx, cancel := context.WithTimeout(ctx, a.genTimeout)
	defer cancel()

	text, err := a.generator.GenerateWithSystem(genCtx, buildSystemPrompt(p.Knowledge), p.Message)
	if err != nil {
		if errors.Is(err, llm.ErrFatalAPI) {
			log.Error("text generation unavailable, using fallback", "error", err)
		} else {
			log.Warn("text generation failed, using fallback", "error", err)
		}
		return a.fallback(p, StatusError)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Warn("text generation returned nothing, using fallback")
		return a.fallback(p, StatusEmpty)
	}

	if p.HasCandidates() && IsDodge(text) && !mentionsAny(text, candidateNames(p)) {
		log.Warn("model dodged known candidates, using fallback", "reply", text)
		return a.fallback(p, StatusDodge)
	}

	return Reply{Text: text, Status: StatusGenerated}
}

func (a *Assistant) fallback(p Plan, status Status) Reply {
	return Reply{Text: Fallback(p.Intent, p.Services, p.Episodes), Status: status}
}

func candidateNames(p Plan) []string {
	names := make([]string, 0, len(p.Services)+len(p.Episodes))
	for _, c := range p.Services {
		names = append(names, c.Entry.Name)
	}
	for _, c := range p.Episodes {
		names = append(names, c.Entry.Title)
	}
	return names
}
