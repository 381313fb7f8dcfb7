package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeLLM struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	return f.resp, f.err
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGenerateWithSystem(t *testing.T) {
	fake := &fakeLLM{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:        "Try Editing Services.",
		GenerationInfo: map[string]any{"PromptTokens": 420, "CompletionTokens": 37},
	}}}}
	mc := metrics.NewCollector()
	m := New(fake, "gpt-test", 350, mc)

	got, err := m.GenerateWithSystem(context.Background(), "be brief", "editing prices?")
	require.NoError(t, err)
	assert.Equal(t, "Try Editing Services.", got)
	assert.Equal(t, "gpt-test", m.Model())

	require.Len(t, fake.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, fake.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.messages[1].Role)
	assert.Equal(t, 350, fake.opts.MaxTokens)

	snap := mc.Snapshot().Generate
	require.NotNil(t, snap)
	assert.Equal(t, int64(420), *snap.TotalInputTokens)
	assert.Equal(t, int64(37), *snap.TotalOutputTokens)
}

func TestGenerateWithSystemErrors(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		m := New(&fakeLLM{resp: &llms.ContentResponse{}}, "m", 0, nil)
		_, err := m.GenerateWithSystem(context.Background(), "s", "u")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("fatal provider error", func(t *testing.T) {
		m := New(&fakeLLM{err: errors.New("HTTP 401: invalid api key")}, "m", 0, nil)
		_, err := m.GenerateWithSystem(context.Background(), "s", "u")
		assert.ErrorIs(t, err, ErrFatalAPI)
	})

	t.Run("transient error", func(t *testing.T) {
		m := New(&fakeLLM{err: context.DeadlineExceeded}, "m", 0, nil)
		_, err := m.GenerateWithSystem(context.Background(), "s", "u")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, ErrFatalAPI)
	})
}

func TestTokenUsage(t *testing.T) {
	tests := []struct {
		name    string
		info    map[string]any
		in, out int64
	}{
		{"openai", map[string]any{"PromptTokens": 10, "CompletionTokens": 5}, 10, 5},
		{"anthropic", map[string]any{"InputTokens": 12, "OutputTokens": 7}, 12, 7},
		{"bedrock", map[string]any{"input_tokens": int32(3), "output_tokens": int64(4)}, 3, 4},
		{"float", map[string]any{"prompt_tokens": 9.0}, 9, 0},
		{"missing", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := tokenUsage(tt.info)
			assert.Equal(t, tt.in, in)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestIsFatalAPIError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection reset"), false},
		{"credit balance", errors.New("insufficient credit balance"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"quota exceeded", errors.New("quota exceeded for model"), true},
		{"billing issue", errors.New("billing account inactive"), true},
		{"invalid api key", errors.New("invalid api key"), true},
		{"authentication failed", errors.New("authentication failed"), true},
		{"unauthorized", errors.New("unauthorized request"), true},
		{"401 status", errors.New("HTTP 401: not allowed"), true},
		{"403 status", errors.New("HTTP 403: forbidden"), true},
		{"wrapped error", fmt.Errorf("generate: %w", errors.New("credit balance too low")), true},
		{"404 not fatal", errors.New("HTTP 404: not found"), false},
		{"timeout not fatal", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isFatalAPIError(tt.err)
			if got != tt.fatal {
				t.Errorf("isFatalAPIError(%v) = %v, want %v", tt.err, got, tt.fatal)
			}
		})
	}
}

func TestWrapFatalError(t *testing.T) {
	t.Run("wraps fatal error", func(t *testing.T) {
		err := errors.New("invalid api key provided")
		wrapped := wrapFatalError(err)
		if !errors.Is(wrapped, ErrFatalAPI) {
			t.Errorf("expected wrapped error to match ErrFatalAPI")
		}
		if !errors.Is(wrapped, err) {
			t.Errorf("expected original error to stay in the chain")
		}
	})

	t.Run("passes through non-fatal error", func(t *testing.T) {
		err := errors.New("network timeout")
		result := wrapFatalError(err)
		if errors.Is(result, ErrFatalAPI) {
			t.Errorf("non-fatal error should not be wrapped with ErrFatalAPI")
		}
		if result != err {
			t.Errorf("expected original error returned, got %v", result)
		}
	})

	t.Run("nil error", func(t *testing.T) {
		if result := wrapFatalError(nil); result != nil {
			t.Errorf("expected nil, got %v", result)
		}
	})
}
