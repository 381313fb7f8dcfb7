package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "hello", "hello"},
		{"uppercase", "Web Design", "web-design"},
		{"underscores", "web_design", "web-design"},
		{"special chars stripped", "After the Uniform!", "after-the-uniform"},
		{"numbers preserved", "Episode 12", "episode-12"},
		{"empty string", "", ""},
		{"only special chars", "!@#$%", ""},
		{"unicode stripped", "café stories", "caf-stories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.in)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecordIDString(t *testing.T) {
	id, err := RecordIDString(surrealmodels.NewRecordID("service", "editing"))
	require.NoError(t, err)
	assert.Equal(t, "editing", id)

	_, err = RecordIDString(surrealmodels.NewRecordID("service", 42))
	assert.Error(t, err)
}

func TestServiceRecordDefaults(t *testing.T) {
	rec := ServiceRecord{
		Name:        "  Editing Services ",
		Description: "Cleaner audio.",
		Features:    []string{"Tighter pacing", " ", ""},
	}

	svc, ok := rec.ToService()
	require.True(t, ok)
	assert.Equal(t, "Editing Services", svc.Name)
	assert.Equal(t, "editing-services", svc.Slug)
	assert.Equal(t, "editing-services", svc.ID)
	assert.Equal(t, []string{"Tighter pacing"}, svc.Features)
	assert.Equal(t, "Get Started", svc.CTALabel)
	assert.Equal(t, 10, svc.SortOrder)
	assert.Empty(t, svc.BookingPath)
}

func TestServiceRecordRejected(t *testing.T) {
	inactive := false
	_, ok := ServiceRecord{Name: "Hosting", Active: &inactive}.ToService()
	assert.False(t, ok, "inactive services are dropped")

	_, ok = ServiceRecord{Name: "   "}.ToService()
	assert.False(t, ok, "nameless services are dropped")
}

func TestEpisodeRecordDefaults(t *testing.T) {
	page := "/podcasts/the-forgotten-oath/ep-3"
	rec := EpisodeRecord{
		Title:       "Coming Home",
		Description: "A veteran's return.",
		Tags:        []string{"veterans", "healing"},
		PagePath:    &page,
	}

	ep, ok := rec.ToEpisode()
	require.True(t, ok)
	assert.Equal(t, DefaultShowTitle, ep.Show)
	assert.Equal(t, 100, ep.SortOrder)
	assert.Equal(t, page, ep.Link())
	assert.Nil(t, ep.PublishedAt)

	_, ok = EpisodeRecord{Description: "no title"}.ToEpisode()
	assert.False(t, ok)
}

func TestEpisodeLinkFallsBackToYouTube(t *testing.T) {
	ep := Episode{YouTubeURL: "https://youtube.com/watch?v=abc"}
	assert.Equal(t, "https://youtube.com/watch?v=abc", ep.Link())
	assert.Empty(t, Episode{}.Link())
}

func TestNewRecommendation(t *testing.T) {
	rec := NewRecommendation(Episode{Show: "The Forgotten Oath", Title: "Coming Home"})
	assert.Equal(t, "The Forgotten Oath", rec.Show)
	assert.NotNil(t, rec.Tags, "tags serialize as [] not null")
}
