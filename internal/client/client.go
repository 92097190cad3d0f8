package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/cache"
	"github.com/Belphemur/SubMatch/internal/config"
	"github.com/Belphemur/SubMatch/internal/metrics"
	"github.com/Belphemur/SubMatch/internal/parser"
)

// defaultMaxPageSize bounds the body read for a catalog page.
const defaultMaxPageSize = 8 << 20

// Client fetches catalog pages and subtitle archives.
type Client interface {
	// Fetch returns the body of a page. Non-2xx answers are *apperrors.ErrFetch.
	Fetch(ctx context.Context, pageURL string) ([]byte, error)

	// FetchDocument fetches a page, normalises its charset to UTF-8 and parses it.
	FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error)

	// Download streams a binary resource into w, bypassing the page cache.
	Download(ctx context.Context, resourceURL string, w io.Writer) (int64, error)

	// Close releases the page cache.
	Close() error
}

type client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *hostLimiter
	pages      cache.Cache
	logger     zerolog.Logger

	maxPageSize int64
}

// NewClient builds a Client from cfg. pages may be nil to disable page caching.
func NewClient(cfg *config.Config, pages cache.Cache, logger zerolog.Logger) Client {
	timeout, invalid := config.ParseDuration(cfg.ClientTimeout, 30*time.Second)
	if invalid {
		logger.Warn().Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
	}

	// Clone DefaultTransport to keep its pooling and HTTP/2 settings
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newCompressionTransport(baseTransport),
		},
		userAgent:   userAgent,
		limiter:     newHostLimiter(cfg.RequestsPerSecond),
		pages:       pages,
		logger:      logger,
		maxPageSize: defaultMaxPageSize,
	}
}

func (c *client) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	key := cache.PageKey(pageURL)
	if c.pages != nil {
		if body, ok := c.pages.Get(key); ok {
			metrics.FetchRequestsTotal.WithLabelValues(hostOf(pageURL), metrics.StatusCached).Inc()
			c.logger.Debug().Str("url", pageURL).Msg("Page served from cache")
			return body, nil
		}
	}

	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPageSize+1))
	if err == nil && int64(len(body)) > c.maxPageSize {
		err = fmt.Errorf("page larger than %d bytes", c.maxPageSize)
	}
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(hostOf(pageURL), metrics.StatusError).Inc()
		return nil, apperrors.NewFetchError(pageURL, err)
	}
	metrics.FetchRequestsTotal.WithLabelValues(hostOf(pageURL), metrics.StatusSuccess).Inc()

	if c.pages != nil {
		c.pages.Set(key, body)
	}
	return body, nil
}

func (c *client) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := c.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	utf8Body, err := parser.NewUTF8Reader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	doc.Url, _ = url.Parse(pageURL)
	return doc, nil
}

func (c *client) Download(ctx context.Context, resourceURL string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, resourceURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(hostOf(resourceURL), metrics.StatusError).Inc()
		return n, apperrors.NewFetchError(resourceURL, err)
	}
	metrics.FetchRequestsTotal.WithLabelValues(hostOf(resourceURL), metrics.StatusSuccess).Inc()
	return n, nil
}

// get waits for the host's rate limit and performs a GET. On success the
// caller owns resp.Body.
func (c *client) get(ctx context.Context, target string) (*http.Response, error) {
	host := hostOf(target)
	if err := c.limiter.Wait(ctx, host); err != nil {
		return nil, apperrors.NewFetchError(target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperrors.NewFetchError(target, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(host, metrics.StatusError).Inc()
		return nil, apperrors.NewFetchError(target, err)
	}
	c.logger.Debug().Str("url", target).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("Fetched")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		metrics.FetchRequestsTotal.WithLabelValues(host, metrics.StatusError).Inc()
		return nil, apperrors.NewFetchStatusError(target, resp.StatusCode)
	}
	return resp, nil
}

func (c *client) Close() error {
	if c.pages == nil {
		return nil
	}
	return c.pages.Close()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
