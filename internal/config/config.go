package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "SubMatch/1.0 (+https://github.com/Belphemur/SubMatch; subtitle resolver)"

// SourceConfig holds per-source overrides.
type SourceConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type Config struct {
	ProxyConnectionString string  `mapstructure:"proxy_connection_string"`
	ClientTimeout         string  `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string  `mapstructure:"user_agent"`
	RequestsPerSecond     float64 `mapstructure:"requests_per_second"`
	LogLevel              string  `mapstructure:"log_level"`
	SentryDSN             string  `mapstructure:"sentry_dsn"`
	Search                struct {
		Sources         []string `mapstructure:"sources"`        // Empty means every registered source
		SourceTimeout   string   `mapstructure:"source_timeout"` // Go duration string
		PageConcurrency int      `mapstructure:"page_concurrency"`
	} `mapstructure:"search"`
	Sources   map[string]SourceConfig `mapstructure:"sources"`
	Retrieval struct {
		TargetEncoding string `mapstructure:"target_encoding"`
		MaxAttempts    int    `mapstructure:"max_attempts"`
	} `mapstructure:"retrieval"`
	Cache struct {
		Type  string `mapstructure:"type"` // "memory", "redis" or "none"
		Size  int    `mapstructure:"size"` // Maximum number of entries in the LRU cache
		TTL   string `mapstructure:"ttl"`  // Go duration string like "1h", "24h", etc.
		Redis struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Textfile string `mapstructure:"textfile"` // Written after each run when set
	} `mapstructure:"metrics"`
}

// Load reads the configuration from configFile, or from config.yaml in the
// working directory or ./config when configFile is empty. A missing file is
// not an error: defaults and APP_* environment variables still apply.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("requests_per_second", 2.0)
	v.SetDefault("search.sources", []string{})
	v.SetDefault("search.source_timeout", "45s")
	v.SetDefault("search.page_concurrency", 4)
	v.SetDefault("retrieval.target_encoding", "windows-1252")
	v.SetDefault("retrieval.max_attempts", 3)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.redis.address", "localhost:6379")
}

// Default returns the configuration obtained with no file and no environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	config.UserAgent = DefaultUserAgent
	return &config
}

// ParseDuration parses value as a Go duration, falling back to def when the
// value is empty or invalid. The second return value reports whether value
// was invalid.
func ParseDuration(value string, def time.Duration) (time.Duration, bool) {
	if value == "" {
		return def, false
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def, true
	}
	return d, false
}

// NewLogger builds the process logger. Colour output is only enabled when out
// is a terminal. Every line carries run_id so concurrent source logs can be
// correlated with the run that produced them.
func NewLogger(level string, out io.Writer) zerolog.Logger {
	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     out,
		NoColor: noColor,
	}).With().Timestamp().Str("run_id", uuid.NewString()).Logger()

	// Parse and set log level from config
	parsedLevel := zerolog.InfoLevel
	if level != "" {
		if l, err := zerolog.ParseLevel(level); err == nil {
			parsedLevel = l
		} else {
			logger.Warn().Str("invalid_level", level).Msg("Invalid log level, using default 'info'")
		}
	}

	return logger.Level(parsedLevel)
}
