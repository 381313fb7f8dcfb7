package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ASSISTANT_PORT", "LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "LLM_MODEL",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "TTS_MAX_CHARS", "CATALOG_SOURCE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, 350, cfg.LLMMaxTokens)
	assert.Equal(t, 10*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 15*time.Second, cfg.TTSTimeout)
	assert.Equal(t, 900, cfg.TTSMaxChars)
	assert.Equal(t, 12, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5*time.Minute, cfg.RateLimitPurge)
	assert.Equal(t, SourceFile, cfg.CatalogSource)
	assert.Equal(t, 4, cfg.ServiceCandidates)
	assert.Equal(t, 8, cfg.EpisodeCandidates)
	assert.False(t, cfg.GenerationConfigured(), "openai without key must be unconfigured")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("RATE_LIMIT_MAX", "15")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("ASSISTANT_DEBUG", "true")
	t.Setenv("SCORE_TAG_WEIGHT", "not-a-number")

	cfg := Load()

	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.True(t, cfg.GenerationConfigured())
	assert.Equal(t, 15, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2, cfg.TagWeight, "invalid values fall back to defaults")
}

func TestGenerationConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"openai missing model", Config{LLMProvider: ProviderOpenAI, OpenAIAPIKey: "k"}, false},
		{"openai complete", Config{LLMProvider: ProviderOpenAI, OpenAIAPIKey: "k", LLMModel: "m"}, true},
		{"anthropic missing key", Config{LLMProvider: ProviderAnthropic, LLMModel: "m"}, false},
		{"anthropic with key", Config{LLMProvider: ProviderAnthropic, AnthropicAPIKey: "k"}, true},
		{"ollama", Config{LLMProvider: ProviderOllama}, true},
		{"bedrock", Config{LLMProvider: ProviderBedrock}, true},
		{"unknown", Config{LLMProvider: "parrot"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.GenerationConfigured())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("loud"))
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("catalog loaded", "services", 4)

	assert.Contains(t, stderr.String(), "catalog loaded")
	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, file.String(), `"services":4`)
}
