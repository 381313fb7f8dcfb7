package db

import (
	"context"
	"errors"
	"time"

	"github.com/barracksmedia/site-assistant/internal/models"
)

// DefaultEpisodeLimit bounds how many episodes a catalog fetch returns.
const DefaultEpisodeLimit = 60

// Services implements catalog.Source.
func (c *Client) Services(ctx context.Context) ([]models.ServiceRecord, error) {
	return c.QueryServices(ctx)
}

// Episodes implements catalog.Source.
func (c *Client) Episodes(ctx context.Context) ([]models.EpisodeRecord, error) {
	return c.QueryEpisodes(ctx, DefaultEpisodeLimit)
}

// RateLimitStore keeps governor windows in SurrealDB so every server
// instance shares one counter per client.
type RateLimitStore struct {
	client *Client
}

// NewRateLimitStore returns a governor store backed by client.
func NewRateLimitStore(client *Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// Increment implements governor.Store. A transaction conflict is retried once.
func (s *RateLimitStore) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	count, resetAt, err := s.client.QueryIncrementRateLimit(ctx, key, window, now)
	if errors.Is(err, ErrTransactionConflict) {
		count, resetAt, err = s.client.QueryIncrementRateLimit(ctx, key, window, now)
	}
	return count, resetAt, err
}

// Purge drops expired windows.
func (s *RateLimitStore) Purge(ctx context.Context, now time.Time) (int, error) {
	return s.client.QueryPurgeRateLimits(ctx, now)
}

// Seed writes every valid catalog entry. Invalid or inactive records are
// skipped and counted.
func (c *Client) Seed(ctx context.Context, services []models.ServiceRecord, episodes []models.EpisodeRecord) (seeded, skipped int, err error) {
	for _, rec := range services {
		svc, ok := rec.ToService()
		if !ok {
			skipped++
			continue
		}
		if err := c.QueryUpsertService(ctx, svc); err != nil {
			return seeded, skipped, err
		}
		seeded++
	}
	for _, rec := range episodes {
		ep, ok := rec.ToEpisode()
		if !ok {
			skipped++
			continue
		}
		if err := c.QueryUpsertEpisode(ctx, ep); err != nil {
			return seeded, skipped, err
		}
		seeded++
	}
	c.logger.Info("catalog seeded", "seeded", seeded, "skipped", skipped)
	return seeded, skipped, nil
}
