package db

import (
	"context"
	"fmt"
	"time"

	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CatalogCounts reports how many active records each catalog table holds.
type CatalogCounts struct {
	Services int `json:"services"`
	Episodes int `json:"episodes"`
}

// rateLimitRow is the rate_limit record returned by QueryIncrementRateLimit.
type rateLimitRow struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"reset_at"`
}

// QueryServices returns active services ordered by sort_order, then title.
func (c *Client) QueryServices(ctx context.Context) ([]models.ServiceRecord, error) {
	results, err := surrealdb.Query[[]models.ServiceRecord](ctx, c.db, `
		SELECT id, title, slug, short_description, features, keywords,
			success_path, cta_label, active, sort_order
		FROM service
		WHERE active = true
		ORDER BY sort_order ASC, title ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.ServiceRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryEpisodes returns up to limit active episodes, newest first within a
// sort_order bucket. The show title is resolved through the record link.
func (c *Client) QueryEpisodes(ctx context.Context, limit int) ([]models.EpisodeRecord, error) {
	results, err := surrealdb.Query[[]models.EpisodeRecord](ctx, c.db, `
		SELECT id, title, show.title AS show_title, description, tags,
			published_at, youtube_url, page_path, active, sort_order
		FROM episode
		WHERE active = true
		ORDER BY sort_order ASC, published_at DESC
		LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.EpisodeRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryGetService retrieves a service by slug.
// Returns ErrNotFound if no active service has that slug.
func (c *Client) QueryGetService(ctx context.Context, slug string) (*models.ServiceRecord, error) {
	results, err := surrealdb.Query[[]models.ServiceRecord](ctx, c.db, `
		SELECT * FROM service WHERE slug = $slug AND active = true LIMIT 1
	`, map[string]any{"slug": slug})
	if err != nil {
		return nil, fmt.Errorf("get service: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("service %q: %w", slug, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryUpsertService creates or replaces a service keyed by its slug.
func (c *Client) QueryUpsertService(ctx context.Context, svc models.Service) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("service", $slug) SET
			title = $title,
			slug = $slug,
			short_description = $description,
			features = $features,
			keywords = $keywords,
			success_path = $booking_path,
			cta_label = $cta_label,
			active = true,
			sort_order = $sort_order
	`, map[string]any{
		"slug":         svc.Slug,
		"title":        svc.Name,
		"description":  svc.Description,
		"features":     nonNil(svc.Features),
		"keywords":     nonNil(svc.Keywords),
		"booking_path": optional(svc.BookingPath),
		"cta_label":    optional(svc.CTALabel),
		"sort_order":   svc.SortOrder,
	})
	if err != nil {
		return fmt.Errorf("upsert service %q: %w", svc.Slug, wrapQueryError(err))
	}
	return nil
}

// QueryUpsertEpisode creates or replaces an episode and the show it belongs to.
func (c *Client) QueryUpsertEpisode(ctx context.Context, ep models.Episode) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("show", $show_id) SET title = $show;
		UPSERT type::record("episode", $id) SET
			title = $title,
			show = type::record("show", $show_id),
			description = $description,
			tags = $tags,
			published_at = $published_at,
			youtube_url = $youtube_url,
			page_path = $page_path,
			active = true,
			sort_order = $sort_order;
	`, map[string]any{
		"id":           ep.ID,
		"show_id":      models.Slugify(ep.Show),
		"show":         ep.Show,
		"title":        ep.Title,
		"description":  ep.Description,
		"tags":         nonNil(ep.Tags),
		"published_at": ep.PublishedAt,
		"youtube_url":  optional(ep.YouTubeURL),
		"page_path":    optional(ep.PagePath),
		"sort_order":   ep.SortOrder,
	})
	if err != nil {
		return fmt.Errorf("upsert episode %q: %w", ep.ID, wrapQueryError(err))
	}
	return nil
}

// QueryCatalogCounts counts active services and episodes.
func (c *Client) QueryCatalogCounts(ctx context.Context) (CatalogCounts, error) {
	results, err := surrealdb.Query[CatalogCounts](ctx, c.db, `
		RETURN {
			services: count(SELECT id FROM service WHERE active = true),
			episodes: count(SELECT id FROM episode WHERE active = true)
		}
	`, nil)
	if err != nil {
		return CatalogCounts{}, fmt.Errorf("catalog counts: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return CatalogCounts{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryIncrementRateLimit bumps the fixed-window counter for key in a single
// UPSERT so concurrent requests across instances cannot undercount. A window
// that has elapsed restarts at 1 with a fresh reset time.
func (c *Client) QueryIncrementRateLimit(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	// SET clauses run in order: count reads the old reset_at before it moves.
	results, err := surrealdb.Query[[]rateLimitRow](ctx, c.db, `
		UPSERT type::record("rate_limit", $key) SET
			count = IF reset_at != NONE AND $now <= reset_at THEN count + 1 ELSE 1 END,
			reset_at = IF reset_at != NONE AND $now <= reset_at THEN reset_at ELSE $now + $window END
		RETURN count, reset_at
	`, map[string]any{
		"key":    key,
		"now":    now.UnixMilli(),
		"window": window.Milliseconds(),
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("increment rate limit: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, time.Time{}, fmt.Errorf("increment rate limit: no result returned")
	}
	row := (*results)[0].Result[0]
	return row.Count, time.UnixMilli(row.ResetAt), nil
}

// QueryPurgeRateLimits deletes windows that ended before now.
func (c *Client) QueryPurgeRateLimits(ctx context.Context, now time.Time) (int, error) {
	results, err := surrealdb.Query[[]rateLimitRow](ctx, c.db, `
		DELETE rate_limit WHERE reset_at < $now RETURN BEFORE
	`, map[string]any{"now": now.UnixMilli()})
	if err != nil {
		return 0, fmt.Errorf("purge rate limits: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// optional maps "" to NONE for option<string> fields.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
