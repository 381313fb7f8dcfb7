package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--no-color"))
	t.Cleanup(func() {
		serverURL = ""
		askOutputFile = ""
		askJSON = false
		askWebSocket = false
		matchCatalog = ""
		matchKnowledge = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMatchCommand(t *testing.T) {
	t.Setenv("CATALOG_FILE", "../../configs/catalog.yaml")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name     string
		message  string
		contains []string
	}{
		{
			name:    "podcast interest",
			message: "I love stories about veterans coming home",
			contains: []string{
				"Intent: podcast",
				"The Forgotten Oath: Life After Service",
				"My top pick for you is",
				"(fallback_no_api_key)",
			},
		},
		{
			name:     "service question",
			message:  "how much does podcast editing cost",
			contains: []string{"Intent: service", "Editing Services", "The best fit for that is our"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "match", tt.message)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestMatchCommandKnowledge(t *testing.T) {
	t.Setenv("CATALOG_FILE", "../../configs/catalog.yaml")

	out, err := run(t, "match", "any episodes about writing a book?", "--knowledge")
	require.NoError(t, err)
	assert.Contains(t, out, "Knowledge")
	assert.Contains(t, out, "From Draft to Published")
}

func TestMatchCommandMissingCatalog(t *testing.T) {
	_, err := run(t, "match", "hello", "--catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAskCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.AssistantResponse{
			OK:   true,
			Text: "My top pick for you is “Life After Service” from The Forgotten Oath.",
			Recommendations: []models.Recommendation{
				{Show: "The Forgotten Oath", Title: "Life After Service", URL: "/podcasts/the-forgotten-oath"},
			},
			AudioBase64: "bXAz",
			Mime:        "audio/mpeg",
		})
	}))
	defer ts.Close()

	audioPath := filepath.Join(t.TempDir(), "answer.mp3")
	out, err := run(t, "ask", "veterans", "--server", ts.URL, "-o", audioPath)
	require.NoError(t, err)
	assert.Contains(t, out, "> veterans")
	assert.Contains(t, out, "Recommended episodes")
	assert.Contains(t, out, "/podcasts/the-forgotten-oath")

	audio, err := os.ReadFile(audioPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), audio)
}

func TestAskCommandServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Rate limit hit. Try again in a minute."})
	}))
	defer ts.Close()

	out, err := run(t, "ask", "hello", "--server", ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit hit")
	assert.Contains(t, out, "Rate limited")
}

func TestPrintServerStats(t *testing.T) {
	mc := metrics.NewCollector()
	mc.RecordTiming(metrics.OpRequest, 0, nil)
	mc.RecordLLMUsage(metrics.OpGenerate, 0, 120, 40)
	mc.Increment(metrics.CounterRateLimited)

	var out bytes.Buffer
	snap := mc.Snapshot()
	printServerStats(&out, &snap)
	assert.Contains(t, out.String(), "Requests")
	assert.Contains(t, out.String(), "Tokens In:  120 total")
	assert.Contains(t, out.String(), "rate_limited")
	assert.NotContains(t, out.String(), "Speech Synthesis")
}
