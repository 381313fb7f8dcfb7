package models

import (
	"strings"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// DefaultShowTitle is used for episodes whose show reference is missing.
const DefaultShowTitle = "Barracks Media"

// ServiceRecord is the wire shape of a service in the content store or a
// catalog file. Optional fields are pointers so absence can be told apart
// from a zero value.
type ServiceRecord struct {
	ID          *surrealmodels.RecordID `json:"id,omitempty" yaml:"-"`
	Name        string                  `json:"title" yaml:"name"`
	Slug        string                  `json:"slug,omitempty" yaml:"slug,omitempty"`
	Description string                  `json:"short_description" yaml:"description"`
	Features    []string                `json:"features,omitempty" yaml:"features,omitempty"`
	Keywords    []string                `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	BookingPath *string                 `json:"success_path,omitempty" yaml:"booking_path,omitempty"`
	CTALabel    *string                 `json:"cta_label,omitempty" yaml:"cta_label,omitempty"`
	Active      *bool                   `json:"active,omitempty" yaml:"active,omitempty"`
	SortOrder   *int                    `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

// Service is a validated, immutable service catalog entry.
type Service struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Features    []string
	Keywords    []string
	// BookingPath is an on-site route. It is never placed in spoken text.
	BookingPath string
	CTALabel    string
	SortOrder   int
}

// EpisodeRecord is the wire shape of a podcast episode.
type EpisodeRecord struct {
	ID          *surrealmodels.RecordID `json:"id,omitempty" yaml:"-"`
	Title       string                  `json:"title" yaml:"title"`
	ShowTitle   *string                 `json:"show_title,omitempty" yaml:"show,omitempty"`
	Description string                  `json:"description" yaml:"description"`
	Tags        []string                `json:"tags,omitempty" yaml:"tags,omitempty"`
	PublishedAt *time.Time              `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	YouTubeURL  *string                 `json:"youtube_url,omitempty" yaml:"youtube_url,omitempty"`
	PagePath    *string                 `json:"page_path,omitempty" yaml:"page_path,omitempty"`
	Active      *bool                   `json:"active,omitempty" yaml:"active,omitempty"`
	SortOrder   *int                    `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

// Episode is a validated, immutable episode catalog entry.
type Episode struct {
	ID          string
	Title       string
	Show        string
	Description string
	Tags        []string
	PublishedAt *time.Time
	// External links are for UI use only.
	YouTubeURL string
	PagePath   string
	SortOrder  int
}

// Link returns the URL a visitor should open for the episode, preferring the
// on-site page. Empty when neither is set.
func (e Episode) Link() string {
	if e.PagePath != "" {
		return e.PagePath
	}
	return e.YouTubeURL
}

// ToService validates the record and applies defaults.
// ok is false for inactive records and records without a name.
func (r ServiceRecord) ToService() (svc Service, ok bool) {
	if r.Active != nil && !*r.Active {
		return Service{}, false
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Service{}, false
	}

	slug := strings.TrimSpace(r.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	svc = Service{
		ID:          slug,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(r.Description),
		Features:    cleanList(r.Features),
		Keywords:    cleanList(r.Keywords),
		BookingPath: deref(r.BookingPath, ""),
		CTALabel:    deref(r.CTALabel, "Get Started"),
		SortOrder:   derefInt(r.SortOrder, 10),
	}
	if r.ID != nil {
		if id, err := RecordIDString(*r.ID); err == nil {
			svc.ID = id
		}
	}
	return svc, true
}

// ToEpisode validates the record and applies defaults.
// ok is false for inactive records and records without a title.
func (r EpisodeRecord) ToEpisode() (ep Episode, ok bool) {
	if r.Active != nil && !*r.Active {
		return Episode{}, false
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return Episode{}, false
	}

	show := strings.TrimSpace(deref(r.ShowTitle, ""))
	if show == "" {
		show = DefaultShowTitle
	}

	ep = Episode{
		ID:          Slugify(show + " " + title),
		Title:       title,
		Show:        show,
		Description: strings.TrimSpace(r.Description),
		Tags:        cleanList(r.Tags),
		PublishedAt: r.PublishedAt,
		YouTubeURL:  strings.TrimSpace(deref(r.YouTubeURL, "")),
		PagePath:    strings.TrimSpace(deref(r.PagePath, "")),
		SortOrder:   derefInt(r.SortOrder, 100),
	}
	if r.ID != nil {
		if id, err := RecordIDString(*r.ID); err == nil {
			ep.ID = id
		}
	}
	return ep, true
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func deref(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func derefInt(n *int, def int) int {
	if n == nil {
		return def
	}
	return *n
}
