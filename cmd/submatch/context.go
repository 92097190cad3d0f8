package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/cache"
	"github.com/Belphemur/SubMatch/internal/client"
	"github.com/Belphemur/SubMatch/internal/config"
	"github.com/Belphemur/SubMatch/internal/metrics"
	"github.com/Belphemur/SubMatch/internal/services"
	"github.com/Belphemur/SubMatch/internal/sources"
)

const pageCacheGroup = "pages"

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	logger     zerolog.Logger
	configErr  error

	sentryEnabled bool
	client        client.Client
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
		logger:      zerolog.Nop(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.LogLevel = zerolog.DebugLevel.String()
		}
		c.config = cfg
		c.logger = config.NewLogger(cfg.LogLevel, os.Stderr)

		if cfg.SentryDSN != "" {
			if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, AttachStacktrace: true}); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to initialise Sentry, continuing without error reporting")
			} else {
				c.sentryEnabled = true
			}
		}
	})
	return c.config, c.configErr
}

// httpClient builds the shared HTTP client and its page cache on first use.
func (c *commandContext) httpClient() (client.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	cfg := c.config
	ttl, invalid := config.ParseDuration(cfg.Cache.TTL, time.Hour)
	if invalid {
		c.logger.Warn().Str("ttl", cfg.Cache.TTL).Msg("Invalid cache TTL, using default 1h")
	}

	pages, err := cache.New(cfg.Cache.Type, cache.ProviderConfig{
		Size: cfg.Cache.Size,
		TTL:  ttl,
		Redis: cache.RedisOptions{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		},
		Logger: &c.logger,
		Group:  pageCacheGroup,
	})
	if err != nil {
		return nil, fmt.Errorf("page cache: %w", err)
	}

	c.client = client.NewClient(cfg, pages, c.logger)
	return c.client, nil
}

// resolver wires the configured sources, the search coordinator and the
// retrieval pipeline.
func (c *commandContext) resolver() (*services.Resolver, error) {
	cfg := c.config
	httpClient, err := c.httpClient()
	if err != nil {
		return nil, err
	}

	baseURLs := make(map[string]string, len(cfg.Sources))
	for name, sc := range cfg.Sources {
		baseURLs[name] = sc.BaseURL
	}
	adapters, err := sources.Build(cfg.Search.Sources, sources.Dependencies{
		Fetcher:  httpClient,
		Logger:   c.logger,
		BaseURLs: baseURLs,
	})
	if err != nil {
		return nil, err
	}

	sourceTimeout, invalid := config.ParseDuration(cfg.Search.SourceTimeout, 45*time.Second)
	if invalid {
		c.logger.Warn().Str("timeout", cfg.Search.SourceTimeout).Msg("Invalid source timeout, using default 45s")
	}
	coordinator := services.NewSearchCoordinator(adapters, httpClient, services.CoordinatorOptions{
		SourceTimeout:   sourceTimeout,
		PageConcurrency: cfg.Search.PageConcurrency,
	}, c.logger)

	retriever, err := services.NewSubtitleRetriever(httpClient, cfg.Retrieval.TargetEncoding, c.logger)
	if err != nil {
		return nil, err
	}

	return services.NewResolver(coordinator, retriever, cfg.Retrieval.MaxAttempts, c.logger), nil
}

// finish ends a command run: err is reported to Sentry when it is
// configured, then resources are released. err takes precedence over any
// cleanup failure.
func (c *commandContext) finish(err error) error {
	if err != nil && c.sentryEnabled {
		sentry.CaptureException(err)
	}
	closeErr := c.close()
	if err != nil {
		if closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Cleanup failed")
		}
		return err
	}
	return closeErr
}

// close releases the client and writes the metrics textfile.
func (c *commandContext) close() error {
	var errs []error
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	if c.config != nil && c.config.Metrics.Textfile != "" {
		errs = append(errs, metrics.WriteTextfile(c.config.Metrics.Textfile))
	}
	if c.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	return errors.Join(errs...)
}
