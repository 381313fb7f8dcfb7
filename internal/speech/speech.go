// Package speech turns reply text into audio through ElevenLabs.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/barracksmedia/site-assistant/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the ElevenLabs text-to-speech endpoint; the voice id
	// is appended as a path segment.
	DefaultBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

	// DefaultModelID is the ElevenLabs model used for synthesis.
	DefaultModelID = "eleven_multilingual_v2"

	// OutputFormat is requested on every call; it matches MimeMPEG.
	OutputFormat = "mp3_44100_128"

	// MimeMPEG is the MIME type of every clip this package returns.
	MimeMPEG = "audio/mpeg"

	// DefaultMaxChars bounds the text sent per request.
	DefaultMaxChars = 900

	// maxErrorLen bounds provider error text surfaced to callers.
	maxErrorLen = 300
)

// ErrNotConfigured is returned when the API key or voice id is missing.
var ErrNotConfigured = errors.New("speech synthesis not configured")

// Audio is a synthesized clip.
type Audio struct {
	Data []byte
	Mime string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// VoiceSettings are the ElevenLabs tuning knobs. The defaults lean natural
// and conversational: lower stability, high similarity, moderate style.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the storyteller voice tuning.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.35,
		SimilarityBoost: 0.9,
		Style:           0.35,
		UseSpeakerBoost: true,
	}
}

// Options configures an ElevenLabs client. Zero values select defaults.
type Options struct {
	APIKey     string
	VoiceID    string
	BaseURL    string
	ModelID    string
	MaxChars   int
	Voice      *VoiceSettings
	RatePerSec float64
	Burst      int
	HTTPClient *http.Client
	Metrics    *metrics.Collector
}

// ElevenLabsClient implements Synthesizer.
type ElevenLabsClient struct {
	apiKey   string
	voiceID  string
	baseURL  string
	modelID  string
	maxChars int
	voice    VoiceSettings
	limiter  *rate.Limiter
	client   *http.Client
	metrics  *metrics.Collector
}

// Compile-time check that ElevenLabsClient implements Synthesizer.
var _ Synthesizer = (*ElevenLabsClient)(nil)

// NewElevenLabs builds a client. Missing credentials are reported by
// Synthesize, not here, so a server can start and answer health checks.
func NewElevenLabs(opts Options) *ElevenLabsClient {
	c := &ElevenLabsClient{
		apiKey:   opts.APIKey,
		voiceID:  opts.VoiceID,
		baseURL:  opts.BaseURL,
		modelID:  opts.ModelID,
		maxChars: opts.MaxChars,
		voice:    DefaultVoiceSettings(),
		client:   opts.HTTPClient,
		metrics:  opts.Metrics,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.modelID == "" {
		c.modelID = DefaultModelID
	}
	if c.maxChars <= 0 {
		c.maxChars = DefaultMaxChars
	}
	if opts.Voice != nil {
		c.voice = *opts.Voice
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return c
}

// Configured reports whether both credentials are present.
func (c *ElevenLabsClient) Configured() bool {
	return c.apiKey != "" && c.voiceID != ""
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize caps text at the character budget and returns MP3 audio.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) (Audio, error) {
	if c.apiKey == "" {
		return Audio{}, fmt.Errorf("%w: missing ELEVENLABS_API_KEY", ErrNotConfigured)
	}
	if c.voiceID == "" {
		return Audio{}, fmt.Errorf("%w: missing ELEVENLABS_VOICE_ID", ErrNotConfigured)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Audio{}, fmt.Errorf("wait for synthesis slot: %w", err)
		}
	}

	text = Cap(text, c.maxChars)
	start := time.Now()
	audio, err := c.synthesize(ctx, text)
	c.metrics.RecordSynthesis(time.Since(start), int64(utf8.RuneCountInString(text)), err)
	return audio, err
}

func (c *ElevenLabsClient) synthesize(ctx context.Context, text string) (Audio, error) {
	jsonBody, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       c.modelID,
		VoiceSettings: c.voice,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/" + url.PathEscape(c.voiceID) + "?output_format=" + OutputFormat
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return Audio{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", MimeMPEG)
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorLen))
		msg := fmt.Sprintf("ElevenLabs error: %d %s", resp.StatusCode, body)
		return Audio{}, errors.New(clipError(msg))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, fmt.Errorf("read audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, errors.New("ElevenLabs returned no audio")
	}
	return Audio{Data: data, Mime: MimeMPEG}, nil
}

// Cap shortens text to at most maxChars runes, marking the cut with "…".
func Cap(text string, maxChars int) string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "…"
}

// clipError bounds msg to maxErrorLen bytes without splitting a rune.
func clipError(msg string) string {
	if len(msg) > maxErrorLen {
		n := maxErrorLen
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	return strings.ToValidUTF8(msg, "")
}
