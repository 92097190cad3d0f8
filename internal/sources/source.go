// Package sources holds one adapter per subtitle catalog and the state
// machine that drives a search against any of them.
package sources

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/models"
)

// Adapter turns a media request into catalog queries and parses the pages
// the catalog returns.
type Adapter interface {
	Name() string

	// BuildQuery returns the search URL for req.
	BuildQuery(req *models.MediaRequest) (string, error)

	// HasResults reports whether the search page lists at least one subtitle.
	HasResults(page *goquery.Document) bool

	// CandidatePages returns one detail page URL per listed subtitle. When the
	// catalog jumped straight to a detail page, that is pageURL itself.
	CandidatePages(pageURL string, page *goquery.Document) ([]string, error)

	// ParseCandidate builds a scored result from a detail page.
	ParseCandidate(ctx context.Context, pageURL string, page *goquery.Document, req *models.MediaRequest) (*models.SearchResult, error)
}

// DocumentFetcher fetches and parses a page.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// Options tunes a single adapter search.
type Options struct {
	// PageConcurrency bounds the detail pages fetched at once. Values below 1 mean 1.
	PageConcurrency int
	Logger          zerolog.Logger
}

// Search runs adapter for req. A search without results returns
// *apperrors.ErrNoResults; any other error means the source failed.
// Results keep the catalog's listing order.
func Search(ctx context.Context, adapter Adapter, fetcher DocumentFetcher, req *models.MediaRequest, opts Options) ([]*models.SearchResult, error) {
	logger := opts.Logger.With().Str("source", adapter.Name()).Logger()
	m := &machine{source: adapter.Name()}

	queryURL, err := adapter.BuildQuery(req)
	if err != nil {
		return nil, err
	}
	if err := m.advance(QueryBuilt); err != nil {
		return nil, err
	}

	logger.Debug().Str("url", queryURL).Msg("Querying source")
	start := time.Now()
	page, err := fetcher.FetchDocument(ctx, queryURL)
	if err != nil {
		return nil, err
	}
	if err := m.advance(ResultPageFetched); err != nil {
		return nil, err
	}

	if !adapter.HasResults(page) {
		if err := m.advance(NoResults); err != nil {
			return nil, err
		}
		logger.Info().Dur("elapsed", time.Since(start)).Msg("No subtitles found")
		return nil, &apperrors.ErrNoResults{Source: adapter.Name()}
	}

	pages, err := adapter.CandidatePages(queryURL, page)
	if err != nil {
		return nil, err
	}
	if err := m.advance(ResultsEnumerated); err != nil {
		return nil, err
	}
	logger.Debug().Int("candidates", len(pages)).Msg("Candidate pages enumerated")

	results := make([]*models.SearchResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.PageConcurrency, 1))
	for i, pageURL := range pages {
		g.Go(func() error {
			detail := page
			if pageURL != queryURL {
				fetched, err := fetcher.FetchDocument(gctx, pageURL)
				if err != nil {
					return err
				}
				detail = fetched
			}
			result, err := adapter.ParseCandidate(gctx, pageURL, detail, req)
			if err != nil {
				return err
			}
			if result.Source == "" {
				result.Source = adapter.Name()
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := m.advance(ResultsParsed); err != nil {
		return nil, err
	}

	for _, r := range results {
		logger.Debug().Object("result", r).Msg("Parsed result")
	}
	logger.Info().Int("results", len(results)).Dur("elapsed", time.Since(start)).Msg("Source search completed")
	return results, nil
}

// requireRequest checks the fields every catalog needs.
func requireRequest(source string, req *models.MediaRequest) error {
	if req.LanguageCode == "" {
		return apperrors.NewRequestError(source, "language", req.FileName)
	}
	if req.Query == "" {
		return apperrors.NewRequestError(source, "query", req.FileName)
	}
	return nil
}

// encodeQuery escapes the free-text query for use in a URL.
func encodeQuery(source, query string) (string, error) {
	if !utf8.ValidString(query) {
		return "", &apperrors.ErrQueryEncoding{Source: source, Query: query, Err: errors.New("not valid UTF-8")}
	}
	return url.QueryEscape(query), nil
}

// resolve makes href absolute against base.
func resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}
