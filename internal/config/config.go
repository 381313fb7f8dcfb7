package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM provider names accepted in LLM_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderBedrock   = "bedrock"
)

// Catalog and rate-limit backends.
const (
	SourceFile      = "file"
	SourceSurrealDB = "surrealdb"
	StoreMemory     = "memory"
	StoreSurrealDB  = "surrealdb"
)

// Config holds all configuration values.
type Config struct {
	// HTTP
	Port  string
	Debug bool

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Catalog
	CatalogSource string
	CatalogFile   string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Text generation
	LLMProvider     string
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	LLMMaxTokens    int
	LLMTimeout      time.Duration

	// Speech synthesis
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	TTSTimeout        time.Duration
	TTSMaxChars       int
	TTSRatePerSec     float64
	TTSBurst          int

	// Governor
	RateLimitMax    int
	RateLimitWindow time.Duration
	RateLimitStore  string
	RateLimitPurge  time.Duration

	// Scoring
	TextWeight        int
	TagWeight         int
	TitleWeight       int
	ShowWeight        int
	ServiceCandidates int
	EpisodeCandidates int
	Recommendations   int
}

// Load reads configuration from environment variables.
func Load() Config {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI))

	return Config{
		Port:  getEnv("ASSISTANT_PORT", "8787"),
		Debug: getBool("ASSISTANT_DEBUG", false),

		LogFile:  getEnv("ASSISTANT_LOG_FILE", "/tmp/site-assistant.log"),
		LogLevel: parseLogLevel(getEnv("ASSISTANT_LOG_LEVEL", "INFO")),

		CatalogSource: strings.ToLower(getEnv("CATALOG_SOURCE", SourceFile)),
		CatalogFile:   getEnv("CATALOG_FILE", "configs/catalog.yaml"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "barracks"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "site"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     provider,
		LLMModel:        getEnv("LLM_MODEL", defaultModel(provider)),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		LLMMaxTokens:    getInt("LLM_MAX_TOKENS", 350),
		LLMTimeout:      getDuration("LLM_TIMEOUT", 10*time.Second),

		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		TTSTimeout:        getDuration("TTS_TIMEOUT", 15*time.Second),
		TTSMaxChars:       getInt("TTS_MAX_CHARS", 900),
		TTSRatePerSec:     getFloat("TTS_RATE_PER_SEC", 5),
		TTSBurst:          getInt("TTS_BURST", 10),

		RateLimitMax:    getInt("RATE_LIMIT_MAX", 12),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		RateLimitStore:  strings.ToLower(getEnv("RATE_LIMIT_STORE", StoreMemory)),
		RateLimitPurge:  getDuration("RATE_LIMIT_PURGE_INTERVAL", 5*time.Minute),

		TextWeight:        getInt("SCORE_TEXT_WEIGHT", 3),
		TagWeight:         getInt("SCORE_TAG_WEIGHT", 2),
		TitleWeight:       getInt("SCORE_TITLE_WEIGHT", 2),
		ShowWeight:        getInt("SCORE_SHOW_WEIGHT", 1),
		ServiceCandidates: getInt("SERVICE_CANDIDATES", 4),
		EpisodeCandidates: getInt("EPISODE_CANDIDATES", 8),
		Recommendations:   getInt("RECOMMENDATIONS", 3),
	}
}

// GenerationConfigured reports whether the selected text generation provider
// has the credentials it needs. When false the assistant answers from the
// deterministic fallback without calling any model.
func (c Config) GenerationConfigured() bool {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != "" && c.LLMModel != ""
	case ProviderAnthropic:
		return c.AnthropicAPIKey != ""
	case ProviderOllama, ProviderBedrock:
		return true
	default:
		return false
	}
}

// OPENAI_MODEL is honoured for the openai provider so existing deployments
// keep working.
func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_MODEL")
	case ProviderAnthropic:
		return "claude-3-5-haiku-20241022"
	case ProviderOllama:
		return "llama3.1"
	case ProviderBedrock:
		return "anthropic.claude-3-haiku-20240307-v1:0"
	default:
		return ""
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

func getFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 {
		return defaultVal
	}
	return f
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
