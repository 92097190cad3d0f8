package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/abadojack/whatlanggo"
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/metrics"
	"github.com/Belphemur/SubMatch/internal/models"
	"github.com/Belphemur/SubMatch/internal/parser"
	"github.com/Belphemur/SubMatch/internal/sources"
)

// Downloader streams a remote resource into w.
type Downloader interface {
	Download(ctx context.Context, resourceURL string, w io.Writer) (int64, error)
}

// SubtitleRetriever turns a search result into a subtitle file next to the media file.
type SubtitleRetriever interface {
	// Retrieve downloads result, extracts its subtitle, converts it to the
	// target encoding and writes it. It returns the written path.
	Retrieve(ctx context.Context, req *models.MediaRequest, result *models.SearchResult) (string, error)
}

type subtitleRetriever struct {
	downloader     Downloader
	targetEncoding string
	logger         zerolog.Logger
}

// NewSubtitleRetriever creates a retriever writing subtitles in targetEncoding.
func NewSubtitleRetriever(downloader Downloader, targetEncoding string, logger zerolog.Logger) (SubtitleRetriever, error) {
	target, err := parser.CanonicalEncoding(targetEncoding)
	if err != nil {
		return nil, &apperrors.ErrEncoding{To: targetEncoding, Err: err}
	}
	return &subtitleRetriever{
		downloader:     downloader,
		targetEncoding: target,
		logger:         logger,
	}, nil
}

func (r *subtitleRetriever) Retrieve(ctx context.Context, req *models.MediaRequest, result *models.SearchResult) (string, error) {
	logger := r.logger.With().Str("source", result.Source).Str("id", result.RemoteID).Logger()
	logger.Info().Str("url", result.DownloadURL).Int("score", result.Score).Msg("Downloading subtitle")

	written, err := r.retrieve(ctx, req, result, logger)
	if err != nil {
		metrics.SubtitleDownloadsTotal.WithLabelValues(metrics.StatusError).Inc()
		return "", err
	}
	metrics.SubtitleDownloadsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	return written, nil
}

func (r *subtitleRetriever) retrieve(ctx context.Context, req *models.MediaRequest, result *models.SearchResult, logger zerolog.Logger) (string, error) {
	tmp, err := os.CreateTemp("", "submatch-*.archive")
	if err != nil {
		return "", fmt.Errorf("create temporary archive: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	size, err := r.downloader.Download(ctx, result.DownloadURL, tmp)
	if err != nil {
		return "", err
	}
	logger.Debug().Int64("size", size).Str("tmp", tmp.Name()).Msg("Archive downloaded")

	entry, data, err := extractSubtitle(tmp, size, result.DownloadURL)
	if err != nil {
		return "", err
	}
	logger.Debug().Str("entry", entry).Int("size", len(data)).Msg("Subtitle extracted")

	from := parser.DetectEncoding(data)
	out := data
	switch {
	case from == "":
		logger.Warn().Str("entry", entry).Msg("Cannot detect subtitle encoding, keeping bytes unchanged")
	case from != r.targetEncoding:
		out, err = parser.Transcode(data, from, r.targetEncoding)
		if err != nil {
			return "", err
		}
		logger.Debug().Str("from", from).Str("to", r.targetEncoding).Msg("Subtitle transcoded")
	}

	if from != "" {
		r.checkLanguage(req, data, from, logger)
	}

	target := req.SubtitlePath()
	if err := parser.WriteSubtitleFile(target, out); err != nil {
		return "", err
	}
	logger.Info().Str("path", target).Msg("Subtitle written")
	return target, nil
}

// checkLanguage warns when the subtitle text does not look like the
// requested language. It never fails the retrieval.
func (r *subtitleRetriever) checkLanguage(req *models.MediaRequest, data []byte, encoding string, logger zerolog.Logger) {
	expected := sources.ISO6391(req.LanguageCode)
	if expected == "" {
		return
	}

	text := data
	if encoding != "utf-8" {
		var err error
		if text, err = parser.Transcode(data, encoding, "utf-8"); err != nil {
			return
		}
	}

	info := whatlanggo.Detect(string(text))
	if !info.IsReliable() {
		return
	}
	if detected := info.Lang.Iso6391(); detected != expected {
		logger.Warn().
			Str("expected", expected).
			Str("detected", detected).
			Float64("confidence", info.Confidence).
			Msg("Subtitle language does not match the requested language")
	}
}
