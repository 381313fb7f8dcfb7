// Package assistant answers a visitor's message with a spoken reply and
// episode recommendations. It classifies intent, ranks both catalogs,
// compiles the knowledge block, asks the model for a reply and falls back to
// a deterministic answer whenever the model is unavailable or unhelpful.
package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/barracksmedia/site-assistant/internal/catalog"
	"github.com/barracksmedia/site-assistant/internal/intent"
	"github.com/barracksmedia/site-assistant/internal/knowledge"
	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/barracksmedia/site-assistant/internal/sanitize"
	"github.com/barracksmedia/site-assistant/internal/scoring"
	"github.com/barracksmedia/site-assistant/internal/speech"
	"github.com/barracksmedia/site-assistant/internal/textproc"
)

// ErrSynthesis wraps every speech synthesis failure. Unlike generation
// failures it is not recovered: a reply without audio is an error.
var ErrSynthesis = errors.New("speech synthesis failed")

// Generator produces a reply from a system prompt and the visitor's message.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Defaults for Options.
const (
	DefaultRecommendations   = 3
	DefaultGenerationTimeout = 10 * time.Second
	DefaultSynthesisTimeout  = 15 * time.Second
)

// Options configures an Assistant.
type Options struct {
	Source catalog.Source
	// Generator may be nil when no provider is configured.
	Generator   Generator
	Synthesizer speech.Synthesizer
	Scorer      *scoring.Scorer

	Recommendations   int
	GenerationTimeout time.Duration
	SynthesisTimeout  time.Duration
	Debug             bool

	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Assistant runs the request pipeline. It is safe for concurrent use; each
// call works on its own catalog snapshot.
type Assistant struct {
	source          catalog.Source
	generator       Generator
	tts             speech.Synthesizer
	scorer          *scoring.Scorer
	recommendations int
	genTimeout      time.Duration
	ttsTimeout      time.Duration
	debug           bool
	metrics         *metrics.Collector
	logger          *slog.Logger
}

// New creates an Assistant.
func New(opts Options) *Assistant {
	a := &Assistant{
		source:          opts.Source,
		generator:       opts.Generator,
		tts:             opts.Synthesizer,
		scorer:          opts.Scorer,
		recommendations: opts.Recommendations,
		genTimeout:      opts.GenerationTimeout,
		ttsTimeout:      opts.SynthesisTimeout,
		debug:           opts.Debug,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
	}
	if a.scorer == nil {
		a.scorer = scoring.NewScorer(scoring.DefaultWeights(), 0, 0)
	}
	if a.recommendations <= 0 {
		a.recommendations = DefaultRecommendations
	}
	if a.genTimeout <= 0 {
		a.genTimeout = DefaultGenerationTimeout
	}
	if a.ttsTimeout <= 0 {
		a.ttsTimeout = DefaultSynthesisTimeout
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Plan is everything decided before the model is called.
type Plan struct {
	Message        string
	Intent         intent.Intent
	Tokens         []string
	ServicesLoaded int
	EpisodesLoaded int
	Services       []scoring.Candidate[models.Service]
	Episodes       []scoring.Candidate[models.Episode]
	Knowledge      string
}

// HasCandidates reports whether anything in either catalog matched.
func (p Plan) HasCandidates() bool {
	return len(p.Services) > 0 || len(p.Episodes) > 0
}

// Plan classifies message, fetches and ranks the catalogs and compiles the
// knowledge block. Catalog failures are logged and treated as empty.
func (a *Assistant) Plan(ctx context.Context, message string) Plan {
	p := Plan{
		Message: message,
		Intent:  intent.Detect(message),
		Tokens:  textproc.Tokenize(message),
	}

	start := time.Now()
	snap := catalog.Fetch(ctx, a.source)
	a.metrics.RecordTiming(metrics.OpCatalogFetch, time.Since(start), errors.Join(snap.Services.Err, snap.Episodes.Err))
	log := a.logger.With("request_id", RequestID(ctx))
	if !snap.Services.OK() {
		a.metrics.Increment(metrics.CounterCatalogErrors)
		log.Warn("service catalog unavailable, continuing without it", "error", snap.Services.Err)
	}
	if !snap.Episodes.OK() {
		a.metrics.Increment(metrics.CounterCatalogErrors)
		log.Warn("episode catalog unavailable, continuing without it", "error", snap.Episodes.Err)
	}

	p.ServicesLoaded = len(snap.Services.Items)
	p.EpisodesLoaded = len(snap.Episodes.Items)
	p.Services = a.scorer.Services(snap.Services.Items, p.Tokens)
	// Pricing and booking questions stay on services.
	if p.Intent != intent.Service {
		p.Episodes = a.scorer.Episodes(snap.Episodes.Items, p.Tokens)
	}

	p.Knowledge = knowledge.Build(p.Intent, scoring.Entries(p.Services), scoring.Entries(p.Episodes))
	return p
}

// Respond runs the whole pipeline for an already validated message.
func (a *Assistant) Respond(ctx context.Context, message string) (*models.AssistantResponse, error) {
	plan := a.Plan(ctx, message)
	reply := a.Generate(ctx, plan)
	text := sanitize.Text(reply.Text)

	if a.tts == nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, speech.ErrNotConfigured)
	}
	ttsCtx, cancel := context.WithTimeout(ctx, a.ttsTimeout)
	defer cancel()
	audio, err := a.tts.Synthesize(ttsCtx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	resp := &models.AssistantResponse{
		OK:              true,
		Text:            text,
		Recommendations: recommend(plan.Episodes, a.recommendations),
		AudioBase64:     base64.StdEncoding.EncodeToString(audio.Data),
		Mime:            audio.Mime,
	}
	if resp.Mime == "" {
		resp.Mime = speech.MimeMPEG
	}
	a.metrics.Increment(reply.Status.String())

	if a.debug {
		resp.Debug = diagnostics(ctx, plan, reply)
	}
	return resp, nil
}

// recommend keeps the first n episode candidates in rank order.
func recommend(eps []scoring.Candidate[models.Episode], n int) []models.Recommendation {
	recs := make([]models.Recommendation, 0, min(n, len(eps)))
	for _, c := range eps[:min(n, len(eps))] {
		recs = append(recs, models.NewRecommendation(c.Entry))
	}
	return recs
}

func diagnostics(ctx context.Context, p Plan, r Reply) *models.Diagnostics {
	d := &models.Diagnostics{
		Intent:            p.Intent.String(),
		ServicesLoaded:    p.ServicesLoaded,
		EpisodesLoaded:    p.EpisodesLoaded,
		ServiceCandidates: len(p.Services),
		CandidatesFound:   len(p.Episodes),
		TopServices:       make([]string, 0, len(p.Services)),
		TopEpisodes:       make([]string, 0, len(p.Episodes)),
		Status:            r.Status.String(),
		RequestID:         RequestID(ctx),
	}
	for _, c := range p.Services {
		d.TopServices = append(d.TopServices, c.Entry.Name)
	}
	for _, c := range p.Episodes {
		d.TopEpisodes = append(d.TopEpisodes, c.Entry.Show+": "+c.Entry.Title)
	}
	return d
}
