// Package llm wraps langchaingo chat models for reply generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/barracksmedia/site-assistant/internal/config"
	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrFatalAPI marks provider errors that will not go away on their own:
// bad credentials, exhausted quota, billing problems.
var ErrFatalAPI = errors.New("fatal LLM API error")

// ErrEmptyResponse is returned when the provider answers with no choices.
var ErrEmptyResponse = errors.New("no response choices")

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	maxTokens int
	metrics   *metrics.Collector
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config, mc *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		// Credentials and region come from the standard AWS chain.
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		model, err = bedrock.New(
			bedrock.WithModel(cfg.LLMModel),
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return New(model, cfg.LLMModel, cfg.LLMMaxTokens, mc), nil
}

// New wraps an existing langchaingo model. maxTokens <= 0 leaves the
// provider default in place.
func New(model llms.Model, name string, maxTokens int, mc *metrics.Collector) *Model {
	return &Model{llm: model, modelName: name, maxTokens: maxTokens, metrics: mc}
}

// GenerateWithSystem sends one system and one user message and returns the
// first choice. Output is capped at the configured token budget.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	var opts []llms.CallOption
	if m.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(m.maxTokens))
	}

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		m.metrics.RecordTiming(metrics.OpGenerate, time.Since(start), err)
		return "", fmt.Errorf("generate with system: %w", wrapFatalError(err))
	}

	if len(response.Choices) == 0 {
		m.metrics.RecordTiming(metrics.OpGenerate, time.Since(start), ErrEmptyResponse)
		return "", ErrEmptyResponse
	}

	choice := response.Choices[0]
	in, out := tokenUsage(choice.GenerationInfo)
	m.metrics.RecordLLMUsage(metrics.OpGenerate, time.Since(start), in, out)

	return choice.Content, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Providers report usage under different keys.
var (
	inputTokenKeys  = []string{"PromptTokens", "InputTokens", "input_tokens", "prompt_tokens"}
	outputTokenKeys = []string{"CompletionTokens", "OutputTokens", "output_tokens", "completion_tokens"}
)

func tokenUsage(info map[string]any) (input, output int64) {
	return firstInt(info, inputTokenKeys), firstInt(info, outputTokenKeys)
}

func firstInt(info map[string]any, keys []string) int64 {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}

var fatalMarkers = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func wrapFatalError(err error) error {
	if !isFatalAPIError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFatalAPI, err)
}
