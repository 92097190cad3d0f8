package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/models"
)

// Searcher runs one search across the configured sources.
type Searcher interface {
	Search(ctx context.Context, req *models.MediaRequest) (*SearchOutcome, error)
}

// Resolver finds and writes the best subtitle for a media file.
type Resolver struct {
	searcher    Searcher
	retriever   SubtitleRetriever
	maxAttempts int
	logger      zerolog.Logger
}

// NewResolver creates a resolver trying at most maxAttempts results, best
// first. Values below 1 mean 1.
func NewResolver(searcher Searcher, retriever SubtitleRetriever, maxAttempts int, logger zerolog.Logger) *Resolver {
	return &Resolver{
		searcher:    searcher,
		retriever:   retriever,
		maxAttempts: max(maxAttempts, 1),
		logger:      logger,
	}
}

// Search builds the request for mediaPath and returns every result, best first.
func (r *Resolver) Search(ctx context.Context, languageCode, mediaPath string) (*models.MediaRequest, *SearchOutcome, error) {
	req := models.NewMediaRequest(languageCode, mediaPath)
	outcome, err := r.searcher.Search(ctx, req)
	if err != nil {
		return req, outcome, err
	}
	for _, f := range outcome.Failures {
		r.logger.Warn().Err(f.Err).Str("source", f.Source).Msg("Source skipped")
	}
	outcome.Results = Rank(outcome.Results)
	return req, outcome, nil
}

// ResolveSubtitle searches every source for mediaPath and writes the best
// subtitle next to it. It reports whether a file was written. Finding no
// subtitle, or only archives without one, is not an error.
func (r *Resolver) ResolveSubtitle(ctx context.Context, languageCode, mediaPath string) (bool, error) {
	req, outcome, err := r.Search(ctx, languageCode, mediaPath)
	if err != nil {
		return false, err
	}
	if len(outcome.Results) == 0 {
		r.logger.Info().Object("request", req).Msg("No subtitle found")
		return false, nil
	}

	var lastErr error
	attempts := min(r.maxAttempts, len(outcome.Results))
	for _, result := range outcome.Results[:attempts] {
		written, err := r.retriever.Retrieve(ctx, req, result)
		if err == nil {
			r.logger.Info().Object("result", result).Str("path", written).Msg("Subtitle resolved")
			return true, nil
		}
		if !errors.Is(err, &apperrors.ErrArchive{}) && !errors.Is(err, &apperrors.ErrFetch{}) {
			return false, err
		}
		r.logger.Warn().Err(err).Object("result", result).Msg("Subtitle retrieval failed")
		// only a fetch failure on the final attempt fails the run
		lastErr = err
		if errors.Is(err, &apperrors.ErrArchive{}) {
			lastErr = nil
		}
	}

	if lastErr != nil {
		return false, lastErr
	}
	r.logger.Info().Int("attempts", attempts).Msg("No usable subtitle in the downloaded archives")
	return false, nil
}
