package models

import "time"

// Recommendation is an episode suggestion rendered by the site widget.
// URL is for tapping, never for reading aloud.
type Recommendation struct {
	Show        string     `json:"show"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// NewRecommendation builds the UI payload for an episode.
func NewRecommendation(ep Episode) Recommendation {
	tags := ep.Tags
	if tags == nil {
		tags = []string{}
	}
	return Recommendation{
		Show:        ep.Show,
		Title:       ep.Title,
		URL:         ep.Link(),
		Tags:        tags,
		PublishedAt: ep.PublishedAt,
	}
}

// AssistantResponse is the single externally observable artifact of a request.
type AssistantResponse struct {
	OK              bool             `json:"ok"`
	Text            string           `json:"text"`
	Recommendations []Recommendation `json:"recommendations"`
	AudioBase64     string           `json:"audioBase64"`
	Mime            string           `json:"mime"`
	Debug           *Diagnostics     `json:"debug,omitempty"`
}

// Diagnostics are attached to responses only in debug mode.
type Diagnostics struct {
	Intent            string   `json:"intent"`
	ServicesLoaded    int      `json:"servicesLoaded"`
	EpisodesLoaded    int      `json:"episodesLoaded"`
	ServiceCandidates int      `json:"serviceCandidates"`
	CandidatesFound   int      `json:"candidatesFound"`
	TopServices       []string `json:"topServices"`
	TopEpisodes       []string `json:"topEpisodes"`
	Status            string   `json:"status"`
	RequestID         string   `json:"requestId,omitempty"`
}

// ErrorResponse is returned with non-2xx statuses.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Request is the inbound payload. Message is a pointer so a missing field can
// be told apart from an empty one.
type Request struct {
	Message *string `json:"message"`
}
