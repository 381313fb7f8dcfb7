package knowledge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/barracksmedia/site-assistant/internal/intent"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildEmptyPlaceholders(t *testing.T) {
	got := Build(intent.General, nil, nil)

	assert.True(t, strings.HasPrefix(got, "INTENT: general"))
	assert.Contains(t, got, "MATCHING SERVICES:\n"+NoServicesLine)
	assert.Contains(t, got, "MATCHING EPISODES:\n"+NoEpisodesLine)
}

func TestBuildServiceIntent(t *testing.T) {
	services := []models.Service{{
		Name:        "Editing Services",
		Description: "Creators who want their audio and video to sound pro.",
		Features:    []string{"Cleaner audio", "Tighter pacing", "Broadcast exports", "Short cutdowns", "Extra"},
		BookingPath: "/onboarding/editing",
	}}

	got := Build(intent.Service, services, nil)

	assert.Contains(t, got, "INTENT: service")
	assert.Contains(t, got, "- Editing Services: Creators who want")
	assert.Contains(t, got, "Features: Cleaner audio; Tighter pacing; Broadcast exports; Short cutdowns")
	assert.NotContains(t, got, "Extra")
	assert.NotContains(t, got, "/onboarding")
	assert.Contains(t, got, NoEpisodesLine)
}

func TestBuildEpisodes(t *testing.T) {
	long := strings.Repeat("Veterans talk about purpose after service. ", 20)
	tags := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10", "a11"}
	episodes := []models.Episode{{
		Title:       "Coming Home",
		Show:        "The Forgotten Oath",
		Description: long + " Watch https://youtube.com/watch?v=xyz",
		Tags:        tags,
		PagePath:    "/podcasts/the-forgotten-oath/ep-3",
		YouTubeURL:  "https://youtube.com/watch?v=xyz",
	}}

	got := Build(intent.Podcast, nil, episodes)

	assert.Contains(t, got, `- The Forgotten Oath, "Coming Home": Veterans talk`)
	assert.Contains(t, got, "…")
	assert.True(t, strings.HasSuffix(got, "Tags: a1, a2, a3, a4, a5, a6, a7, a8, a9, a10"))
	assert.NotContains(t, got, "a11")
	assert.NotContains(t, got, "http")
	assert.NotContains(t, got, "/podcasts")
	assert.Contains(t, got, NoServicesLine)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "…", Truncate("abcdefgh", 1))

	out := Truncate(strings.Repeat("é", 300), EpisodeDescriptionBudget)
	assert.Equal(t, EpisodeDescriptionBudget, utf8.RuneCountInString(out))
}
