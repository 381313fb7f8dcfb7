// Package scoring ranks catalog entries against a tokenized visitor message.
//
// An entry's score is the sum of independent weighted signals per query
// token: a hit anywhere in its searchable text, a hit inside its curated tags,
// and hits inside its title or show name. Entries scoring zero are never
// candidates, and an empty token list produces no candidates at all so that
// greetings do not trigger recommendations.
package scoring

import (
	"sort"
	"strings"

	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/barracksmedia/site-assistant/internal/textproc"
)

// Weights are tunable product defaults, not contracts.
type Weights struct {
	Text  int // token found anywhere in the searchable text
	Tag   int // token found within a tag
	Title int // token found within the title or service name
	Show  int // token found within the show name
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{Text: 3, Tag: 2, Title: 2, Show: 1}
}

// Fields is the scoring view of a catalog entry.
type Fields struct {
	Title string
	Show  string
	Body  string
	Tags  []string
}

// Candidate is a catalog entry that scored above zero.
type Candidate[T any] struct {
	Entry T
	Score int
}

// Score computes the relevance of f for tokens. It never modifies f.
func Score(f Fields, tokens []string, w Weights) int {
	if len(tokens) == 0 {
		return 0
	}

	parts := make([]string, 0, 3+len(f.Tags))
	parts = append(parts, f.Title, f.Show, f.Body)
	parts = append(parts, f.Tags...)
	searchable := textproc.Normalize(strings.Join(parts, " "))

	title := textproc.Normalize(f.Title)
	show := textproc.Normalize(f.Show)
	tags := make([]string, len(f.Tags))
	for i, t := range f.Tags {
		tags[i] = textproc.Normalize(t)
	}

	score := 0
	for _, tok := range tokens {
		if strings.Contains(searchable, tok) {
			score += w.Text
		}
		if anyContains(tags, tok) {
			score += w.Tag
		}
		if title != "" && strings.Contains(title, tok) {
			score += w.Title
		}
		if show != "" && strings.Contains(show, tok) {
			score += w.Show
		}
	}
	return score
}

// Rank scores every entry and returns those above zero ordered by descending
// score. Ties keep catalog order.
func Rank[T any](catalog []T, tokens []string, fields func(T) Fields, w Weights) []Candidate[T] {
	if len(tokens) == 0 {
		return nil
	}

	ranked := make([]Candidate[T], 0, len(catalog))
	for _, entry := range catalog {
		if s := Score(fields(entry), tokens, w); s > 0 {
			ranked = append(ranked, Candidate[T]{Entry: entry, Score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Top ranks catalog and keeps at most n candidates.
func Top[T any](catalog []T, tokens []string, n int, fields func(T) Fields, w Weights) []Candidate[T] {
	ranked := Rank(catalog, tokens, fields, w)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PickTop tokenizes message and returns the n best entries of catalog.
func PickTop[T any](catalog []T, message string, n int, fields func(T) Fields, w Weights) []T {
	return Entries(Top(catalog, textproc.Tokenize(message), n, fields, w))
}

// Entries unwraps candidates, preserving order.
func Entries[T any](cands []Candidate[T]) []T {
	out := make([]T, len(cands))
	for i, c := range cands {
		out[i] = c.Entry
	}
	return out
}

// ServiceFields is the scoring view of a service. Keywords act as tags.
func ServiceFields(s models.Service) Fields {
	return Fields{
		Title: s.Name,
		Body:  s.Description + " " + strings.Join(s.Features, " "),
		Tags:  s.Keywords,
	}
}

// EpisodeFields is the scoring view of an episode.
func EpisodeFields(e models.Episode) Fields {
	return Fields{
		Title: e.Title,
		Show:  e.Show,
		Body:  e.Description,
		Tags:  e.Tags,
	}
}

// Scorer binds weights and candidate limits for the two catalogs.
type Scorer struct {
	weights      Weights
	serviceLimit int
	episodeLimit int
}

// NewScorer creates a scorer. Non-positive limits fall back to 4 services
// and 8 episodes.
func NewScorer(w Weights, serviceLimit, episodeLimit int) *Scorer {
	if serviceLimit <= 0 {
		serviceLimit = 4
	}
	if episodeLimit <= 0 {
		episodeLimit = 8
	}
	return &Scorer{weights: w, serviceLimit: serviceLimit, episodeLimit: episodeLimit}
}

// Services returns the top service candidates.
func (s *Scorer) Services(catalog []models.Service, tokens []string) []Candidate[models.Service] {
	return Top(catalog, tokens, s.serviceLimit, ServiceFields, s.weights)
}

// Episodes returns the top episode candidates.
func (s *Scorer) Episodes(catalog []models.Episode, tokens []string) []Candidate[models.Episode] {
	return Top(catalog, tokens, s.episodeLimit, EpisodeFields, s.weights)
}

func anyContains(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
