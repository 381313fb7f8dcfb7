package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Intent
	}{
		{"greeting", "hi there!", General},
		{"empty", "", General},
		{"booking", "Can I book a call?", Service},
		{"web design", "I need a new website", Service},
		{"podcast only", "Recommend a podcast for my commute", Podcast},
		{"stories", "I love stories about veterans coming home", Podcast},
		{"both without money words", "I want podcast production help", Podcast},
		{"how much beats podcast", "how much does podcast editing cost", Service},
		{"quote beats episode", "Can I get a quote to edit my episode?", Service},
		{"price beats show", "What's the price to launch a show?", Service},
		{"word boundary", "bookkeeping tips", General},
		{"punctuation around signal", "Pricing??", Service},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.message))
		})
	}
}

func TestDetectCommercialTieBreak(t *testing.T) {
	commercial := []string{"price", "cost", "quote", "how much"}
	podcast := []string{"podcast", "episode", "show", "recommend"}

	for _, c := range commercial {
		for _, p := range podcast {
			msg := "tell me about the " + p + " and the " + c
			assert.Equal(t, Service, Detect(msg), "message %q", msg)
		}
	}
}
