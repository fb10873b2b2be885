package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/atsfeed/internal/model"
)

// Sink types.
const (
	SinkHTTP     = "http"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkLog      = "log"
)

const (
	defaultRequestDelay = 150 * time.Millisecond
	defaultMaxRetries   = 3
	defaultBaseDelay    = 500 * time.Millisecond
	defaultMaxDelay     = 30 * time.Second
	defaultProbeTimeout = 15 * time.Second
	defaultAPITimeout   = 30 * time.Second
	defaultSinkTimeout  = 180 * time.Second
	defaultHoursBack    = 24
	defaultBatchSize    = 200
	maxBatchSize        = 500
	defaultSQLitePath   = "atsfeed.db"
	defaultCacheTTL     = 24 * time.Hour
	slackWebhookPrefix  = "https://hooks.slack.com/"
)

// Config is the root configuration for atsfeed. It is built once at startup and
// passed to every component.
type Config struct {
	Source       SourceConfig
	Sink         SinkConfig
	HTTP         HTTPConfig
	Filters      FilterConfig
	Providers    ProviderConfig
	Cache        CacheConfig
	Notification NotificationConfig
	Interval     time.Duration // default for run --every
}

// SourceConfig says where the run's companies come from. Inline companies win
// over the seed file, which wins over the remote endpoint.
type SourceConfig struct {
	SeedFile     string
	CompaniesURL string
	Companies    []model.Company
}

// SinkConfig selects and configures the delivery destination.
type SinkConfig struct {
	Type        string
	IngestURL   string
	Secret      string // shared secret for the sink and the companies endpoint
	SQLitePath  string
	DatabaseURL string
	BatchSize   int
}

// HTTPConfig controls outbound request pacing, retries and timeouts.
type HTTPConfig struct {
	RequestDelay time.Duration // minimum gap between requests to the same host
	MaxRetries   int           // total attempts per request
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	ProbeTimeout time.Duration // careers pages and detection
	APITimeout   time.Duration // provider APIs
	SinkTimeout  time.Duration // batch POSTs
	UserAgent    string
}

// FilterConfig holds the time window and keyword filters.
type FilterConfig struct {
	HoursBack     int // <= 0 disables the time window
	TitleKeywords []string
	Locations     []string
}

// Lookback returns the time window as a duration.
func (f FilterConfig) Lookback() time.Duration {
	return time.Duration(f.HoursBack) * time.Hour
}

// ProviderConfig holds per-ATS switches.
type ProviderConfig struct {
	AshbyAPI          string // "graphql" or "rest"
	GreenhouseContent bool
}

// CacheConfig configures the careers-detection cache. An empty RedisURL keeps
// the cache in memory.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// NotificationConfig controls which run-summary notifier is used.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "", "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	SeedFile     string             `yaml:"seed_file"`
	CompaniesURL string             `yaml:"companies_url"`
	Companies    []model.Company    `yaml:"companies"`
	Sink         rawSinkConfig      `yaml:"sink"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	Filters      rawFilterConfig    `yaml:"filters"`
	Providers    rawProviderConfig  `yaml:"providers"`
	Cache        rawCacheConfig     `yaml:"cache"`
	Notification NotificationConfig `yaml:"notification"`
	Interval     string             `yaml:"interval"`
}

type rawSinkConfig struct {
	Type        string `yaml:"type"`
	IngestURL   string `yaml:"ingest_url"`
	Secret      string `yaml:"secret"`
	SQLitePath  string `yaml:"sqlite_path"`
	DatabaseURL string `yaml:"database_url"`
	BatchSize   *int   `yaml:"batch_size"`
}

type rawHTTPConfig struct {
	RequestDelay string `yaml:"request_delay"`
	MaxRetries   int    `yaml:"max_retries"`
	BaseDelay    string `yaml:"base_delay"`
	MaxDelay     string `yaml:"max_delay"`
	ProbeTimeout string `yaml:"probe_timeout"`
	APITimeout   string `yaml:"api_timeout"`
	SinkTimeout  string `yaml:"sink_timeout"`
	UserAgent    string `yaml:"user_agent"`
}

type rawFilterConfig struct {
	HoursBack     *int     `yaml:"hours_back"`
	TitleKeywords []string `yaml:"title_keywords"`
	Locations     []string `yaml:"locations"`
}

type rawProviderConfig struct {
	AshbyAPI          string `yaml:"ashby_api"`
	GreenhouseContent bool   `yaml:"greenhouse_content"`
}

type rawCacheConfig struct {
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

// Option adjusts how Load validates.
type Option func(*loadOptions)

type loadOptions struct {
	sink     string
	noSource bool
}

// WithSink forces the sink type regardless of file and environment.
func WithSink(sinkType string) Option {
	return func(o *loadOptions) { o.sink = sinkType }
}

// WithoutCompanySource skips the company-source requirement, for commands that
// never read the seed list.
func WithoutCompanySource() Option {
	return func(o *loadOptions) { o.noSource = true }
}

// Load reads the optional YAML file at path (an empty path skips the file),
// applies environment overrides, validates and returns Config.
func Load(path string, opts ...Option) (*Config, error) {
	return load(path, os.LookupEnv, opts...)
}

func load(path string, lookup func(string) (string, bool), opts ...Option) (*Config, error) {
	var lo loadOptions
	for _, o := range opts {
		o(&lo)
	}

	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.Expand(string(data), func(k string) string {
			v, _ := lookup(k)
			return v
		})

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if lo.sink != "" {
		cfg.Sink.Type = lo.sink
	}

	if err := validate(cfg, lo); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	var err error
	cfg := &Config{
		Source: SourceConfig{
			SeedFile:     raw.SeedFile,
			CompaniesURL: raw.CompaniesURL,
			Companies:    raw.Companies,
		},
		Sink: SinkConfig{
			Type:        strings.ToLower(raw.Sink.Type),
			IngestURL:   raw.Sink.IngestURL,
			Secret:      raw.Sink.Secret,
			SQLitePath:  raw.Sink.SQLitePath,
			DatabaseURL: raw.Sink.DatabaseURL,
			BatchSize:   defaultBatchSize,
		},
		HTTP: HTTPConfig{
			MaxRetries: raw.HTTP.MaxRetries,
			UserAgent:  raw.HTTP.UserAgent,
		},
		Filters: FilterConfig{
			HoursBack:     defaultHoursBack,
			TitleKeywords: raw.Filters.TitleKeywords,
			Locations:     raw.Filters.Locations,
		},
		Providers: ProviderConfig{
			AshbyAPI:          strings.ToLower(raw.Providers.AshbyAPI),
			GreenhouseContent: raw.Providers.GreenhouseContent,
		},
		Cache:        CacheConfig{RedisURL: raw.Cache.RedisURL},
		Notification: raw.Notification,
	}

	if raw.Sink.BatchSize != nil {
		cfg.Sink.BatchSize = *raw.Sink.BatchSize
	}
	if raw.Filters.HoursBack != nil {
		cfg.Filters.HoursBack = *raw.Filters.HoursBack
	}
	if cfg.Sink.Type == "" {
		cfg.Sink.Type = SinkHTTP
	}
	if cfg.Sink.SQLitePath == "" {
		cfg.Sink.SQLitePath = defaultSQLitePath
	}
	if cfg.HTTP.MaxRetries == 0 {
		cfg.HTTP.MaxRetries = defaultMaxRetries
	}
	if cfg.Providers.AshbyAPI == "" {
		cfg.Providers.AshbyAPI = "graphql"
	}

	durations := []struct {
		name  string
		raw   string
		def   time.Duration
		field *time.Duration
	}{
		{"http.request_delay", raw.HTTP.RequestDelay, defaultRequestDelay, &cfg.HTTP.RequestDelay},
		{"http.base_delay", raw.HTTP.BaseDelay, defaultBaseDelay, &cfg.HTTP.BaseDelay},
		{"http.max_delay", raw.HTTP.MaxDelay, defaultMaxDelay, &cfg.HTTP.MaxDelay},
		{"http.probe_timeout", raw.HTTP.ProbeTimeout, defaultProbeTimeout, &cfg.HTTP.ProbeTimeout},
		{"http.api_timeout", raw.HTTP.APITimeout, defaultAPITimeout, &cfg.HTTP.APITimeout},
		{"http.sink_timeout", raw.HTTP.SinkTimeout, defaultSinkTimeout, &cfg.HTTP.SinkTimeout},
		{"cache.ttl", raw.Cache.TTL, defaultCacheTTL, &cfg.Cache.TTL},
		{"interval", raw.Interval, 0, &cfg.Interval},
	}
	for _, d := range durations {
		*d.field = d.def
		if d.raw == "" {
			continue
		}
		*d.field, err = time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.name, d.raw, err)
		}
	}

	return cfg, nil
}

// applyEnv overrides file values with the recognized environment variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("SEED_FILE", &cfg.Source.SeedFile)
	str("COMPANIES_URL", &cfg.Source.CompaniesURL)
	str("INGEST_JOBS_URL", &cfg.Sink.IngestURL)
	str("SCRAPER_SECRET_KEY", &cfg.Sink.Secret)
	str("SQLITE_PATH", &cfg.Sink.SQLitePath)
	str("DATABASE_URL", &cfg.Sink.DatabaseURL)
	str("REDIS_URL", &cfg.Cache.RedisURL)

	if v, ok := lookup("SINK"); ok && v != "" {
		cfg.Sink.Type = strings.ToLower(v)
	}
	if v, ok := lookup("ASHBY_API"); ok && v != "" {
		cfg.Providers.AshbyAPI = strings.ToLower(v)
	}
	if v, ok := lookup("SLACK_WEBHOOK_URL"); ok && v != "" {
		cfg.Notification.WebhookURL = v
		if cfg.Notification.Type == "" {
			cfg.Notification.Type = "slack"
		}
	}
	if v, ok := lookup("GREENHOUSE_CONTENT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse GREENHOUSE_CONTENT %q: %w", v, err)
		}
		cfg.Providers.GreenhouseContent = b
	}

	var delayMS = -1
	if err := num("REQUEST_DELAY_MS", &delayMS); err != nil {
		return err
	}
	if delayMS >= 0 {
		cfg.HTTP.RequestDelay = time.Duration(delayMS) * time.Millisecond
	}
	if err := num("MAX_RETRIES", &cfg.HTTP.MaxRetries); err != nil {
		return err
	}
	if err := num("HOURS_BACK", &cfg.Filters.HoursBack); err != nil {
		return err
	}
	if err := num("BATCH_SIZE", &cfg.Sink.BatchSize); err != nil {
		return err
	}
	return nil
}

func validate(cfg *Config, lo loadOptions) error {
	if !lo.noSource && cfg.Source.SeedFile == "" && cfg.Source.CompaniesURL == "" && len(cfg.Source.Companies) == 0 {
		return fmt.Errorf("no company source: set SEED_FILE, COMPANIES_URL or companies in the config file")
	}
	if !lo.noSource && cfg.Source.CompaniesURL != "" && cfg.Sink.Secret == "" {
		return fmt.Errorf("SCRAPER_SECRET_KEY is required when COMPANIES_URL is set")
	}

	switch cfg.Sink.Type {
	case SinkHTTP:
		if cfg.Sink.IngestURL == "" {
			return fmt.Errorf("INGEST_JOBS_URL is required when the sink is %q", SinkHTTP)
		}
		if cfg.Sink.Secret == "" {
			return fmt.Errorf("SCRAPER_SECRET_KEY is required when the sink is %q", SinkHTTP)
		}
	case SinkPostgres:
		if cfg.Sink.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when the sink is %q", SinkPostgres)
		}
	case SinkSQLite, SinkLog:
	default:
		return fmt.Errorf("unknown sink %q (want http, sqlite, postgres or log)", cfg.Sink.Type)
	}

	if cfg.Sink.BatchSize < 1 || cfg.Sink.BatchSize > maxBatchSize {
		return fmt.Errorf("batch size must be between 1 and %d, got %d", maxBatchSize, cfg.Sink.BatchSize)
	}
	if cfg.HTTP.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", cfg.HTTP.MaxRetries)
	}
	if cfg.HTTP.RequestDelay < 0 {
		return fmt.Errorf("request delay must not be negative, got %v", cfg.HTTP.RequestDelay)
	}
	if cfg.HTTP.BaseDelay <= 0 || cfg.HTTP.MaxDelay < cfg.HTTP.BaseDelay {
		return fmt.Errorf("retry delays must satisfy 0 < base_delay <= max_delay, got %v and %v", cfg.HTTP.BaseDelay, cfg.HTTP.MaxDelay)
	}
	for name, d := range map[string]time.Duration{
		"probe_timeout": cfg.HTTP.ProbeTimeout,
		"api_timeout":   cfg.HTTP.APITimeout,
		"sink_timeout":  cfg.HTTP.SinkTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("http.%s must be positive, got %v", name, d)
		}
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %v", cfg.Interval)
	}

	switch cfg.Providers.AshbyAPI {
	case "graphql", "rest":
	default:
		return fmt.Errorf("ashby api must be \"graphql\" or \"rest\", got %q", cfg.Providers.AshbyAPI)
	}

	switch cfg.Notification.Type {
	case "", "log", "none":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("unknown notification type %q", cfg.Notification.Type)
	}

	return nil
}
