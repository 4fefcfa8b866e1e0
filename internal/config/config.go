package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobscout/internal/model"
)

// EnvConfigPath names the environment variable consulted by ResolvePath.
const EnvConfigPath = "JOBSCOUT_CONFIG"

const (
	defaultConfigPath    = "config.yaml"
	defaultDatabasePath  = "jobscout.db"
	defaultSchedule      = "@every 6h"
	defaultRunRetention  = 30 * 24 * time.Hour
	defaultHTTPTimeout   = 30 * time.Second
	defaultMinDelay      = 2 * time.Second
	defaultAITimeout     = 30 * time.Second
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-1.5-flash"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// Config is the root configuration for jobscout.
type Config struct {
	Database     DatabaseConfig
	Schedule     string // cron spec, e.g. "@every 6h"
	Discovery    DiscoveryConfig
	Roles        []model.RoleInterest
	Filters      FilterConfig
	Sources      SourcesConfig
	Cache        CacheConfig
	HTTP         HTTPConfig
	Retry        RetryConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
	AI           AIConfig
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	Path   string // sqlite file
	URL    string // postgres connection string
}

// DiscoveryConfig tunes a discovery run. Zero values fall back to the
// orchestrator defaults.
type DiscoveryConfig struct {
	MaxQueriesPerRole  int
	MaxResultsPerQuery int
	MaxNewJobs         int
	DedupThreshold     float64
	NotifyFirstRun     bool
	RunRetention       time.Duration // finished runs older than this are pruned
}

// FilterConfig holds keyword and location filter settings.
type FilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
	Locations            []string `yaml:"locations"`
	ExcludeLocations     []string `yaml:"exclude_locations"`
}

// SourcesConfig lists every job source and whether it is enabled.
type SourcesConfig struct {
	Boards    BoardsConfig
	Workday   []WorkdayConfig
	Microsoft MicrosoftConfig
	Adzuna    AdzunaConfig
	RemoteOK  RemoteOKConfig
	WebSearch WebSearchConfig
	Browser   []BrowserConfig
}

// BoardsConfig groups the per-company ATS boards behind one source.
type BoardsConfig struct {
	Enabled     bool            `yaml:"enabled"`
	Concurrency int             `yaml:"concurrency" validate:"gte=0,lte=32"`
	Companies   []CompanyConfig `yaml:"companies" validate:"dive"`
}

// CompanyConfig describes a single company board.
type CompanyConfig struct {
	Name       string `yaml:"name" validate:"required"`
	ATS        string `yaml:"ats" validate:"required,oneof=greenhouse lever ashby gem"`
	BoardToken string `yaml:"board_token" validate:"required"`
	Enabled    bool   `yaml:"enabled"`
}

// WorkdayConfig is one company's Workday career site.
type WorkdayConfig struct {
	Name    string `yaml:"name" validate:"required"`
	URL     string `yaml:"url" validate:"required,url"`
	Enabled bool   `yaml:"enabled"`
}

type MicrosoftConfig struct {
	Enabled bool   `yaml:"enabled"`
	Country string `yaml:"country"`
}

type AdzunaConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppID   string `yaml:"app_id" validate:"required_if=Enabled true"`
	AppKey  string `yaml:"app_key" validate:"required_if=Enabled true"`
	Country string `yaml:"country" validate:"omitempty,len=2"`
}

type RemoteOKConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WebSearchConfig configures the Google Programmable Search source.
type WebSearchConfig struct {
	Enabled bool     `yaml:"enabled"`
	APIKey  string   `yaml:"api_key" validate:"required_if=Enabled true"`
	CX      string   `yaml:"cx" validate:"required_if=Enabled true"`
	Sites   []string `yaml:"sites"`
}

// BrowserConfig is a JavaScript-rendered search page scraped through a
// headless browser.
type BrowserConfig struct {
	Name      string
	SearchURL string
	Enabled   bool
	Headless  bool
	Timeout   time.Duration
	Selectors SelectorConfig
}

// SelectorConfig holds the CSS selectors for listing cards.
type SelectorConfig struct {
	Card        string `yaml:"card" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
}

// CacheConfig controls the source response cache.
type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
	RedisURL   string // empty keeps the cache in memory only
}

type HTTPConfig struct {
	Timeout time.Duration
}

// RetryConfig tunes the retry decorator. Zero values use its defaults.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxElapsed time.Duration
}

// RateLimitConfig controls per-source rate limiting.
type RateLimitConfig struct {
	MinDelay        time.Duration            // minimum gap between requests to the same source
	SourceOverrides map[string]time.Duration // keyed by source name
}

// MinDelayFor returns the configured delay for the given source, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(source string) time.Duration {
	if d, ok := r.SourceOverrides[source]; ok {
		return d
	}
	return r.MinDelay
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type             string `yaml:"type" validate:"omitempty,oneof=log slack notion"`
	WebhookURL       string `yaml:"webhook_url" validate:"required_if=Type slack"`
	NotionToken      string `yaml:"notion_token" validate:"required_if=Type notion"`
	NotionDatabaseID string `yaml:"notion_database_id" validate:"required_if=Type notion"`
}

// AIConfig controls the optional LLM job-description analysis.
type AIConfig struct {
	Enabled  bool
	Provider string        // "openai" or "gemini"
	BaseURL  string        // openai-compatible endpoint
	Model    string        // model identifier, e.g. "gpt-4o-mini"
	APIKey   string        // expanded from env var by Load
	Timeout  time.Duration // per-request timeout
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Database     rawDatabaseConfig  `yaml:"database"`
	Schedule     string             `yaml:"schedule"`
	Discovery    rawDiscoveryConfig `yaml:"discovery"`
	Roles        []rawRole          `yaml:"roles" validate:"dive"`
	Filters      FilterConfig       `yaml:"filters"`
	Sources      rawSourcesConfig   `yaml:"sources"`
	Cache        rawCacheConfig     `yaml:"cache"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	Retry        rawRetryConfig     `yaml:"retry"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Notification NotificationConfig `yaml:"notification"`
	AI           rawAIConfig        `yaml:"ai"`
}

type rawDatabaseConfig struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url" validate:"required_if=Driver postgres"`
}

type rawDiscoveryConfig struct {
	MaxQueriesPerRole  int     `yaml:"max_queries_per_role" validate:"gte=0,lte=100"`
	MaxResultsPerQuery int     `yaml:"max_results_per_query" validate:"gte=0,lte=200"`
	MaxNewJobs         int     `yaml:"max_new_jobs" validate:"gte=0"`
	DedupThreshold     float64 `yaml:"dedup_threshold" validate:"gte=0,lte=1"`
	NotifyFirstRun     bool    `yaml:"notify_first_run"`
	RunRetention       string  `yaml:"run_retention"`
}

type rawRole struct {
	Title    string   `yaml:"title" validate:"required"`
	Location string   `yaml:"location"`
	Remote   bool     `yaml:"remote"`
	Synonyms []string `yaml:"synonyms"`
}

type rawSourcesConfig struct {
	Boards    BoardsConfig     `yaml:"boards"`
	Workday   []WorkdayConfig  `yaml:"workday" validate:"dive"`
	Microsoft MicrosoftConfig  `yaml:"microsoft"`
	Adzuna    AdzunaConfig     `yaml:"adzuna"`
	RemoteOK  RemoteOKConfig   `yaml:"remoteok"`
	WebSearch WebSearchConfig  `yaml:"websearch"`
	Browser   []rawBrowserSite `yaml:"browser" validate:"dive"`
}

type rawBrowserSite struct {
	Name      string         `yaml:"name" validate:"required"`
	SearchURL string         `yaml:"search_url" validate:"required,url"`
	Enabled   bool           `yaml:"enabled"`
	Headless  *bool          `yaml:"headless"`
	Timeout   string         `yaml:"timeout"`
	Selectors SelectorConfig `yaml:"selectors"`
}

type rawCacheConfig struct {
	TTL        string `yaml:"ttl"`
	MaxEntries int    `yaml:"max_entries" validate:"gte=0"`
	RedisURL   string `yaml:"redis_url"`
}

type rawHTTPConfig struct {
	Timeout string `yaml:"timeout"`
}

type rawRetryConfig struct {
	MaxRetries int    `yaml:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  string `yaml:"base_delay"`
	MaxDelay   string `yaml:"max_delay"`
	MaxElapsed string `yaml:"max_elapsed"`
}

type rawRateLimitConfig struct {
	MinDelay        string            `yaml:"min_delay"`
	SourceOverrides map[string]string `yaml:"source_overrides"`
}

type rawAIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider" validate:"omitempty,oneof=openai gemini"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
}

// ResolvePath picks the config file: the flag value if set, then
// $JOBSCOUT_CONFIG, then ./config.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return defaultConfigPath
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A .env file next to the config is loaded first so ${VAR} references resolve.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := newValidator().Struct(raw); err != nil {
		return nil, formatValidationError(err)
	}

	cfg, err := raw.toConfig()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (raw rawConfig) toConfig() (*Config, error) {
	var (
		p   durationParser
		cfg = &Config{
			Schedule: raw.Schedule,
			Filters:  raw.Filters,
			Database: DatabaseConfig{
				Driver: raw.Database.Driver,
				Path:   raw.Database.Path,
				URL:    raw.Database.URL,
			},
			Discovery: DiscoveryConfig{
				MaxQueriesPerRole:  raw.Discovery.MaxQueriesPerRole,
				MaxResultsPerQuery: raw.Discovery.MaxResultsPerQuery,
				MaxNewJobs:         raw.Discovery.MaxNewJobs,
				DedupThreshold:     raw.Discovery.DedupThreshold,
				NotifyFirstRun:     raw.Discovery.NotifyFirstRun,
			},
			Notification: raw.Notification,
		}
	)

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDatabasePath
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	cfg.Discovery.RunRetention = p.parse("discovery.run_retention", raw.Discovery.RunRetention, defaultRunRetention)

	for _, r := range raw.Roles {
		cfg.Roles = append(cfg.Roles, model.RoleInterest{
			Title:    strings.TrimSpace(r.Title),
			Location: strings.TrimSpace(r.Location),
			Remote:   r.Remote,
			Synonyms: r.Synonyms,
		})
	}

	cfg.Sources = SourcesConfig{
		Boards:    raw.Sources.Boards,
		Workday:   raw.Sources.Workday,
		Microsoft: raw.Sources.Microsoft,
		Adzuna:    raw.Sources.Adzuna,
		RemoteOK:  raw.Sources.RemoteOK,
		WebSearch: raw.Sources.WebSearch,
	}
	for i, site := range raw.Sources.Browser {
		headless := true
		if site.Headless != nil {
			headless = *site.Headless
		}
		cfg.Sources.Browser = append(cfg.Sources.Browser, BrowserConfig{
			Name:      site.Name,
			SearchURL: site.SearchURL,
			Enabled:   site.Enabled,
			Headless:  headless,
			Timeout:   p.parse(fmt.Sprintf("sources.browser[%d].timeout", i), site.Timeout, 0),
			Selectors: site.Selectors,
		})
	}

	cfg.Cache = CacheConfig{
		TTL:        p.parse("cache.ttl", raw.Cache.TTL, 0),
		MaxEntries: raw.Cache.MaxEntries,
		RedisURL:   raw.Cache.RedisURL,
	}
	cfg.HTTP.Timeout = p.parse("http.timeout", raw.HTTP.Timeout, defaultHTTPTimeout)
	cfg.Retry = RetryConfig{
		MaxRetries: raw.Retry.MaxRetries,
		BaseDelay:  p.parse("retry.base_delay", raw.Retry.BaseDelay, 0),
		MaxDelay:   p.parse("retry.max_delay", raw.Retry.MaxDelay, 0),
		MaxElapsed: p.parse("retry.max_elapsed", raw.Retry.MaxElapsed, 0),
	}

	cfg.RateLimit.MinDelay = p.parse("rate_limit.min_delay", raw.RateLimit.MinDelay, defaultMinDelay)
	cfg.RateLimit.SourceOverrides = make(map[string]time.Duration, len(raw.RateLimit.SourceOverrides))
	for source, value := range raw.RateLimit.SourceOverrides {
		cfg.RateLimit.SourceOverrides[source] = p.parse(fmt.Sprintf("rate_limit.source_overrides[%q]", source), value, 0)
	}

	cfg.AI = AIConfig{
		Enabled:  raw.AI.Enabled,
		Provider: raw.AI.Provider,
		BaseURL:  raw.AI.BaseURL,
		Model:    raw.AI.Model,
		APIKey:   raw.AI.APIKey,
		Timeout:  p.parse("ai.timeout", raw.AI.Timeout, defaultAITimeout),
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Provider == "openai" && cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultOpenAIModel
		if cfg.AI.Provider == "gemini" {
			cfg.AI.Model = defaultGeminiModel
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// durationParser keeps the first parse error so toConfig reads linearly.
type durationParser struct {
	err error
}

func (p *durationParser) parse(field, value string, fallback time.Duration) time.Duration {
	if value == "" || p.err != nil {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.err = fmt.Errorf("parse %s %q: %w", field, value, err)
		return fallback
	}
	return d
}

func validate(cfg *Config) error {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("schedule %q: %w", cfg.Schedule, err)
	}
	if cfg.enabledSources() == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	if cfg.Sources.Boards.Enabled {
		enabled := 0
		for _, c := range cfg.Sources.Boards.Companies {
			if c.Enabled {
				enabled++
			}
		}
		if enabled == 0 {
			return fmt.Errorf("sources.boards is enabled but no company is enabled")
		}
	}
	if cfg.Discovery.RunRetention < time.Hour {
		return fmt.Errorf("discovery.run_retention must be at least 1h, got %v", cfg.Discovery.RunRetention)
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}

	if cfg.Notification.Type == "slack" && !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
		return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Timeout <= 0 {
			return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
		}
	}

	return nil
}

func (c *Config) enabledSources() int {
	n := 0
	for _, on := range []bool{
		c.Sources.Boards.Enabled,
		c.Sources.Microsoft.Enabled,
		c.Sources.Adzuna.Enabled,
		c.Sources.RemoteOK.Enabled,
		c.Sources.WebSearch.Enabled,
	} {
		if on {
			n++
		}
	}
	for _, w := range c.Sources.Workday {
		if w.Enabled {
			n++
		}
	}
	for _, b := range c.Sources.Browser {
		if b.Enabled {
			n++
		}
	}
	return n
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formatValidationError reports the first failing field by its YAML path.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	fe := verrs[0]
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation (%s)", field, fe.Tag(), fe.Param())
	}
}
