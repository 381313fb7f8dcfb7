// Package catalog is the boundary between the assistant and the content
// store. Records are fetched fresh for every request, validated once here,
// and handed on as immutable models.
package catalog

import (
	"context"
	"time"

	"github.com/barracksmedia/site-assistant/internal/models"
	"golang.org/x/sync/errgroup"
)

// Source returns raw catalog records in display order.
type Source interface {
	Services(ctx context.Context) ([]models.ServiceRecord, error)
	Episodes(ctx context.Context) ([]models.EpisodeRecord, error)
}

// Result carries either fetched items or the error that prevented the fetch.
// Callers decide whether to degrade or fail.
type Result[T any] struct {
	Items    []T
	Err      error
	Duration time.Duration
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Snapshot is one request's view of both catalogs.
type Snapshot struct {
	Services Result[models.Service]
	Episodes Result[models.Episode]
}

// Fetch loads services and episodes concurrently. It always waits for both
// fetches; a failure in one does not cancel the other.
func Fetch(ctx context.Context, src Source) Snapshot {
	var snap Snapshot
	var g errgroup.Group

	g.Go(func() error {
		start := time.Now()
		recs, err := src.Services(ctx)
		snap.Services = Result[models.Service]{
			Items:    ValidateServices(recs),
			Err:      err,
			Duration: time.Since(start),
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		recs, err := src.Episodes(ctx)
		snap.Episodes = Result[models.Episode]{
			Items:    ValidateEpisodes(recs),
			Err:      err,
			Duration: time.Since(start),
		}
		return nil
	})

	_ = g.Wait()
	return snap
}

// ValidateServices converts records, dropping inactive and malformed ones.
func ValidateServices(recs []models.ServiceRecord) []models.Service {
	out := make([]models.Service, 0, len(recs))
	for _, r := range recs {
		if svc, ok := r.ToService(); ok {
			out = append(out, svc)
		}
	}
	return out
}

// ValidateEpisodes converts records, dropping inactive and malformed ones.
func ValidateEpisodes(recs []models.EpisodeRecord) []models.Episode {
	out := make([]models.Episode, 0, len(recs))
	for _, r := range recs {
		if ep, ok := r.ToEpisode(); ok {
			out = append(out, ep)
		}
	}
	return out
}
