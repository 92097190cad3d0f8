package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/metrics"
	"github.com/Belphemur/SubMatch/internal/models"
	"github.com/Belphemur/SubMatch/internal/sources"
)

// SourceFailure records why one source contributed no results.
type SourceFailure struct {
	Source string
	Err    error
}

// SearchOutcome is the union of every source's results plus the sources that failed.
type SearchOutcome struct {
	Results  []*models.SearchResult
	Failures []SourceFailure
}

// CoordinatorOptions tunes a SearchCoordinator.
type CoordinatorOptions struct {
	// SourceTimeout bounds each source search. Zero disables the timeout.
	SourceTimeout   time.Duration
	PageConcurrency int
}

// SearchCoordinator queries every source concurrently for one media request.
type SearchCoordinator struct {
	adapters []sources.Adapter
	fetcher  sources.DocumentFetcher
	opts     CoordinatorOptions
	logger   zerolog.Logger
}

// NewSearchCoordinator creates a coordinator over adapters. Adapter order
// decides which of two equally scored results comes first.
func NewSearchCoordinator(adapters []sources.Adapter, fetcher sources.DocumentFetcher, opts CoordinatorOptions, logger zerolog.Logger) *SearchCoordinator {
	return &SearchCoordinator{
		adapters: adapters,
		fetcher:  fetcher,
		opts:     opts,
		logger:   logger,
	}
}

type sourceSlot struct {
	results []*models.SearchResult
	err     error
}

// Search runs every adapter and waits for all of them. A source without
// results is not a failure. When every source fails, the returned error is
// an *apperrors.ErrAggregate holding each source error in adapter order.
func (c *SearchCoordinator) Search(ctx context.Context, req *models.MediaRequest) (*SearchOutcome, error) {
	outcome := &SearchOutcome{}
	if len(c.adapters) == 0 {
		return outcome, apperrors.NewRequestError("", "source", req.FileName)
	}

	c.logger.Info().Object("request", req).Int("sources", len(c.adapters)).Msg("Searching subtitles")

	slots := make([]sourceSlot, len(c.adapters))
	var wg sync.WaitGroup
	for i, adapter := range c.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots[i].results, slots[i].err = c.searchSource(ctx, adapter, req)
		}()
	}
	wg.Wait()

	var errs []error
	for i, slot := range slots {
		name := c.adapters[i].Name()
		switch {
		case slot.err == nil:
			outcome.Results = append(outcome.Results, slot.results...)
		case errors.Is(slot.err, &apperrors.ErrNoResults{}):
			// empty, but successful
		default:
			c.logger.Warn().Err(slot.err).Str("source", name).Msg("Source search failed")
			outcome.Failures = append(outcome.Failures, SourceFailure{Source: name, Err: slot.err})
			errs = append(errs, slot.err)
		}
	}

	if len(errs) == len(c.adapters) {
		return outcome, &apperrors.ErrAggregate{Errors: errs}
	}

	c.logger.Info().
		Int("results", len(outcome.Results)).
		Int("failedSources", len(outcome.Failures)).
		Msg("Search completed")
	return outcome, nil
}

func (c *SearchCoordinator) searchSource(ctx context.Context, adapter sources.Adapter, req *models.MediaRequest) ([]*models.SearchResult, error) {
	name := adapter.Name()
	opts := sources.Options{PageConcurrency: c.opts.PageConcurrency, Logger: c.logger}

	start := time.Now()
	var (
		results []*models.SearchResult
		err     error
	)
	if c.opts.SourceTimeout > 0 {
		policy := timeout.New[[]*models.SearchResult](c.opts.SourceTimeout)
		results, err = failsafe.With[[]*models.SearchResult](policy).WithContext(ctx).GetWithExecution(func(exec failsafe.Execution[[]*models.SearchResult]) ([]*models.SearchResult, error) {
			return sources.Search(exec.Context(), adapter, c.fetcher, req, opts)
		})
	} else {
		results, err = sources.Search(ctx, adapter, c.fetcher, req, opts)
	}
	metrics.SourceSearchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.SourceSearchesTotal.WithLabelValues(name, metrics.StatusSuccess).Inc()
		metrics.SourceResultsTotal.WithLabelValues(name).Add(float64(len(results)))
	case errors.Is(err, &apperrors.ErrNoResults{}):
		metrics.SourceSearchesTotal.WithLabelValues(name, metrics.StatusNoResults).Inc()
	case errors.Is(err, timeout.ErrExceeded):
		metrics.SourceSearchesTotal.WithLabelValues(name, metrics.StatusTimeout).Inc()
	default:
		metrics.SourceSearchesTotal.WithLabelValues(name, metrics.StatusError).Inc()
	}
	return results, err
}
