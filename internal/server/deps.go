package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/barracksmedia/site-assistant/internal/assistant"
	"github.com/barracksmedia/site-assistant/internal/catalog"
	"github.com/barracksmedia/site-assistant/internal/config"
	"github.com/barracksmedia/site-assistant/internal/db"
	"github.com/barracksmedia/site-assistant/internal/governor"
	"github.com/barracksmedia/site-assistant/internal/llm"
	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/barracksmedia/site-assistant/internal/scoring"
	"github.com/barracksmedia/site-assistant/internal/speech"
)

// Dependencies holds everything the server needs, built from configuration.
type Dependencies struct {
	Assistant *assistant.Assistant
	Governor  *governor.Governor
	Metrics   *metrics.Collector
	DB        *db.Client
}

// NewDependencies wires the catalog source, generation model, synthesizer
// and rate-limit store selected by cfg. SurrealDB is only connected when the
// catalog or the rate-limit store lives there.
func NewDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Dependencies, error) {
	mc := metrics.NewCollector()
	deps := &Dependencies{Metrics: mc}

	if cfg.CatalogSource == config.SourceSurrealDB || cfg.RateLimitStore == config.StoreSurrealDB {
		client, err := db.NewClient(ctx, DBConfig(cfg), logger)
		if err != nil {
			return nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		deps.DB = client
	}

	var source catalog.Source
	switch cfg.CatalogSource {
	case config.SourceSurrealDB:
		source = deps.DB
	case config.SourceFile:
		source = catalog.NewFileSource(cfg.CatalogFile)
	default:
		deps.Close(ctx)
		return nil, fmt.Errorf("unsupported catalog source: %s", cfg.CatalogSource)
	}

	var store governor.Store
	switch cfg.RateLimitStore {
	case config.StoreSurrealDB:
		store = db.NewRateLimitStore(deps.DB)
	case config.StoreMemory:
		store = governor.NewMemoryStore()
	default:
		deps.Close(ctx)
		return nil, fmt.Errorf("unsupported rate limit store: %s", cfg.RateLimitStore)
	}

	// A nil generator makes the assistant answer from the fallback.
	var gen assistant.Generator
	if cfg.GenerationConfigured() {
		model, err := llm.NewModel(ctx, cfg, mc)
		if err != nil {
			deps.Close(ctx)
			return nil, err
		}
		gen = model
		logger.Info("text generation enabled", "provider", cfg.LLMProvider, "model", model.Model())
	} else {
		logger.Warn("text generation not configured, answers use the deterministic fallback", "provider", cfg.LLMProvider)
	}

	tts := speech.NewElevenLabs(speech.Options{
		APIKey:     cfg.ElevenLabsAPIKey,
		VoiceID:    cfg.ElevenLabsVoiceID,
		MaxChars:   cfg.TTSMaxChars,
		RatePerSec: cfg.TTSRatePerSec,
		Burst:      cfg.TTSBurst,
		Metrics:    mc,
	})
	if !tts.Configured() {
		logger.Warn("speech synthesis not configured, requests will fail until ELEVENLABS_API_KEY and ELEVENLABS_VOICE_ID are set")
	}

	deps.Assistant = assistant.New(assistant.Options{
		Source:      source,
		Generator:   gen,
		Synthesizer: tts,
		Scorer: scoring.NewScorer(scoring.Weights{
			Text:  cfg.TextWeight,
			Tag:   cfg.TagWeight,
			Title: cfg.TitleWeight,
			Show:  cfg.ShowWeight,
		}, cfg.ServiceCandidates, cfg.EpisodeCandidates),
		Recommendations:   cfg.Recommendations,
		GenerationTimeout: cfg.LLMTimeout,
		SynthesisTimeout:  cfg.TTSTimeout,
		Debug:             cfg.Debug,
		Metrics:           mc,
		Logger:            logger,
	})
	deps.Governor = governor.New(store, cfg.RateLimitMax, cfg.RateLimitWindow, governor.WithLogger(logger))

	return deps, nil
}

// DBConfig extracts the SurrealDB connection settings.
func DBConfig(cfg config.Config) db.Config {
	return db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}
}

// Close releases the database connection, if any.
func (d *Dependencies) Close(ctx context.Context) error {
	if d.DB != nil {
		return d.DB.Close(ctx)
	}
	return nil
}
