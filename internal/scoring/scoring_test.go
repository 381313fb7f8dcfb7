package scoring

import (
	"testing"

	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/barracksmedia/site-assistant/internal/textproc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEpisodes() []models.Episode {
	return []models.Episode{
		{
			Title:       "Building a Brand From Nothing",
			Show:        "Built From Scratch",
			Description: "Entrepreneurship stories about building businesses and hard lessons.",
			Tags:        []string{"entrepreneurship", "business"},
		},
		{
			Title:       "Coming Home",
			Show:        "The Forgotten Oath",
			Description: "Stories about life after service, identity and purpose.",
			Tags:        []string{"veterans", "healing"},
		},
		{
			Title:       "Writing Through It",
			Show:        "Authors After Action",
			Description: "Authors on writing, publishing and their creative process.",
			Tags:        []string{"authors", "writing"},
		},
		{
			Title:       "Home Again",
			Show:        "Spirits and Stories",
			Description: "Veterans share what coming home felt like.",
		},
	}
}

func titles(eps []models.Episode) []string {
	out := make([]string, len(eps))
	for i, e := range eps {
		out[i] = e.Title
	}
	return out
}

func TestScoreWeights(t *testing.T) {
	w := DefaultWeights()
	f := Fields{Title: "Coming Home", Show: "The Forgotten Oath", Body: "life after service", Tags: []string{"veterans"}}

	assert.Equal(t, 0, Score(f, nil, w))
	assert.Equal(t, 3+2, Score(f, []string{"veterans"}, w), "text + tag")
	assert.Equal(t, 3+2, Score(f, []string{"home"}, w), "text + title")
	assert.Equal(t, 3+1, Score(f, []string{"oath"}, w), "text + show")
	assert.Equal(t, 3, Score(f, []string{"service"}, w), "body only")
	assert.Equal(t, 0, Score(f, []string{"pricing"}, w))
}

func TestScoreDoesNotMutateEntry(t *testing.T) {
	ep := testEpisodes()[1]
	before := ep
	beforeTags := append([]string(nil), ep.Tags...)

	Score(EpisodeFields(ep), []string{"veterans", "healing"}, DefaultWeights())

	assert.Equal(t, before.Title, ep.Title)
	assert.Equal(t, beforeTags, ep.Tags)
}

func TestScoreMonotonicInTags(t *testing.T) {
	tokens := textproc.Tokenize("stories about veterans healing after service")
	base := Fields{Title: "Coming Home", Body: "stories of return"}
	w := DefaultWeights()

	prev := Score(base, tokens, w)
	for _, tag := range []string{"veterans", "unrelated", "healing", "service"} {
		base.Tags = append(base.Tags, tag)
		got := Score(base, tokens, w)
		assert.GreaterOrEqual(t, got, prev, "adding tag %q", tag)
		prev = got
	}
}

func TestRankEmptyTokens(t *testing.T) {
	assert.Empty(t, Rank(testEpisodes(), nil, EpisodeFields, DefaultWeights()))
	assert.Empty(t, PickTop(testEpisodes(), "hi, can you help?", 8, EpisodeFields, DefaultWeights()))
}

func TestRankExcludesZeroScores(t *testing.T) {
	ranked := Rank(testEpisodes(), []string{"writing"}, EpisodeFields, DefaultWeights())
	require.Len(t, ranked, 1)
	assert.Equal(t, "Writing Through It", ranked[0].Entry.Title)
}

func TestRankStableOnTies(t *testing.T) {
	catalog := []models.Episode{
		{Title: "First", Description: "marathon training"},
		{Title: "Second", Description: "marathon recovery"},
		{Title: "Third", Description: "nothing relevant"},
		{Title: "Fourth", Description: "marathon nutrition"},
	}

	got := titles(PickTop(catalog, "marathon", 10, EpisodeFields, DefaultWeights()))
	if diff := cmp.Diff([]string{"First", "Second", "Fourth"}, got); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestTaggedEpisodeRanksFirst(t *testing.T) {
	got := PickTop(testEpisodes(), "I love stories about veterans coming home", 8, EpisodeFields, DefaultWeights())
	require.NotEmpty(t, got)
	assert.Equal(t, "Coming Home", got[0].Title)
	assert.Contains(t, titles(got), "Home Again")
}

func TestTopLimit(t *testing.T) {
	catalog := make([]models.Episode, 12)
	for i := range catalog {
		catalog[i] = models.Episode{Title: "Ep", Description: "podcasting tips"}
	}

	s := NewScorer(DefaultWeights(), 0, 0)
	assert.Len(t, s.Episodes(catalog, []string{"podcasting"}), 8)

	s = NewScorer(DefaultWeights(), 2, 3)
	assert.Len(t, s.Episodes(catalog, []string{"podcasting"}), 3)
}

func TestServiceScoring(t *testing.T) {
	services := []models.Service{
		{Name: "Web Design", Description: "Clean, modern websites.", Features: []string{"Basic SEO foundations"}},
		{Name: "Editing Services", Description: "Pro audio and video.", Features: []string{"Tighter pacing"}, Keywords: []string{"podcast", "editing"}},
		{Name: "Hosting Services", Description: "Reliable hosting."},
	}

	s := NewScorer(DefaultWeights(), 4, 8)
	got := s.Services(services, textproc.Tokenize("how much does podcast editing cost"))
	require.NotEmpty(t, got)
	assert.Equal(t, "Editing Services", got[0].Entry.Name)
	assert.Equal(t, 3+2+2+3+2, got[0].Score, "podcast: text+tag, editing: text+tag+title")
}
