package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/dedup"
	"github.com/amishk599/jobscout/internal/discovery"
	"github.com/amishk599/jobscout/internal/filter"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/normalize"
	"github.com/amishk599/jobscout/internal/notifier"
	"github.com/amishk599/jobscout/internal/progress"
	"github.com/amishk599/jobscout/internal/query"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/retry"
	"github.com/amishk599/jobscout/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job discovery and resume tailoring from the terminal",
	Long:  "jobscout searches job boards for the roles you care about, ranks each posting against your skills and picks the resume fragments that fit it.",
	// Default to `start` so that `jobscout` with no args runs the daemon.
	RunE:          runStart,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	return config.Load(config.ResolvePath(path))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// appStore is the persistence surface the commands need beyond model.Store.
type appStore interface {
	model.Store
	PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (appStore, error) {
	if cfg.Driver == "postgres" {
		pg, err := store.NewPostgresStore(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	sq, err := store.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, err
	}
	return sq, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	case "notion":
		logger.Info("using notion notifier", "database_id", cfg.Notification.NotionDatabaseID)
		return notifier.NewNotionNotifier(cfg.Notification.NotionToken, cfg.Notification.NotionDatabaseID, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupAnalyzer returns the LLM analyzer with a taxonomy fallback when AI
// is enabled, and the taxonomy analyzer alone otherwise. The returned func
// releases provider resources.
func setupAnalyzer(ctx context.Context, cfg *config.Config, normalizer *normalize.Normalizer, logger *slog.Logger) (ai.JobAnalyzer, func(), error) {
	taxonomy := ai.NewTaxonomyAnalyzer(normalizer)
	if !cfg.AI.Enabled {
		return taxonomy, func() {}, nil
	}

	var (
		provider ai.LLMProvider
		cleanup  = func() {}
	)
	switch cfg.AI.Provider {
	case "gemini":
		gp, err := ai.NewGeminiProvider(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("create gemini provider: %w", err)
		}
		provider = gp
		cleanup = func() { _ = gp.Close() }
	default:
		provider = ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
	}
	logger.Debug("ai analysis enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model)

	llm := ai.NewLLMJobAnalyzer(provider, ai.JobAnalysisTemplate, logger)
	return ai.NewFallbackAnalyzer(llm, taxonomy, logger), cleanup, nil
}

func newJobFilter(cfg *config.Config) *filter.TitleAndLocationFilter {
	return filter.NewTitleAndLocationFilter(filter.Rules{
		TitleKeywords:        cfg.Filters.TitleKeywords,
		TitleExcludeKeywords: cfg.Filters.TitleExcludeKeywords,
		Locations:            cfg.Filters.Locations,
		ExcludeLocations:     cfg.Filters.ExcludeLocations,
	})
}

// sourceSet is the built list of sources plus the resources they hold.
type sourceSet struct {
	sources  []model.Source
	cache    *cache.Cache
	browsers []*adapter.BrowserSource
}

func (s *sourceSet) Close() {
	for _, b := range s.browsers {
		_ = b.Close()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

// buildSources creates every enabled source. Query sources are decorated
// cache(retry(ratelimit(source))) so cache hits skip both the limiter and
// the retry policy.
func buildSources(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (*sourceSet, error) {
	set := &sourceSet{
		cache: cache.New(ctx, cache.Options{
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
			RedisURL:   cfg.Cache.RedisURL,
		}, logger),
	}

	limiter := ratelimit.NewSourceRateLimiter(cfg.RateLimit.MinDelay).WithOverrides(cfg.RateLimit.SourceOverrides)
	logger.Debug("rate limiter configured", "min_delay", cfg.RateLimit.MinDelay.String(), "overrides", len(cfg.RateLimit.SourceOverrides))
	retryOpts := retry.Options{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
		MaxElapsed: cfg.Retry.MaxElapsed,
	}
	decorate := func(s model.Source) model.Source {
		var out model.Source = ratelimit.NewRateLimitedSource(s, limiter, "")
		out = retry.NewRetrySource(out, retryOpts, logger)
		return adapter.NewCachedSource(out, set.cache)
	}

	src := cfg.Sources
	if src.Boards.Enabled {
		var boards []adapter.Board
		for _, c := range src.Boards.Companies {
			if !c.Enabled {
				continue
			}
			board, ok := newBoard(c, httpClient)
			if !ok {
				logger.Warn("unsupported ATS, skipping", "company", c.Name, "ats", c.ATS)
				continue
			}
			boards = append(boards, board)
			logger.Debug("registered board", "company", c.Name, "ats", c.ATS)
		}
		set.sources = append(set.sources, adapter.NewBoardSource(boards, set.cache, src.Boards.Concurrency, logger))
	}
	for _, w := range src.Workday {
		if w.Enabled {
			set.sources = append(set.sources, decorate(adapter.NewWorkdaySource(w.URL, w.Name, httpClient, logger)))
		}
	}
	if src.Microsoft.Enabled {
		set.sources = append(set.sources, decorate(adapter.NewMicrosoftSource(src.Microsoft.Country, httpClient, logger)))
	}
	if src.Adzuna.Enabled {
		set.sources = append(set.sources, decorate(adapter.NewAdzunaSource(src.Adzuna.AppID, src.Adzuna.AppKey, src.Adzuna.Country, httpClient)))
	}
	if src.RemoteOK.Enabled {
		set.sources = append(set.sources, decorate(adapter.NewRemoteOKSource(httpClient)))
	}
	if src.WebSearch.Enabled {
		ws, err := adapter.NewWebSearchSource(ctx, src.WebSearch.APIKey, src.WebSearch.CX, src.WebSearch.Sites)
		if err != nil {
			set.Close()
			return nil, err
		}
		set.sources = append(set.sources, decorate(ws))
	}
	for _, b := range src.Browser {
		if !b.Enabled {
			continue
		}
		bs := adapter.NewBrowserSource(adapter.BrowserConfig{
			Name:      b.Name,
			SearchURL: b.SearchURL,
			Timeout:   b.Timeout,
			Headless:  b.Headless,
			Selectors: adapter.CardSelectors{
				Card:        b.Selectors.Card,
				Title:       b.Selectors.Title,
				Company:     b.Selectors.Company,
				Location:    b.Selectors.Location,
				Link:        b.Selectors.Link,
				Description: b.Selectors.Description,
			},
		}, logger)
		set.browsers = append(set.browsers, bs)
		set.sources = append(set.sources, adapter.NewCachedSource(ratelimit.NewRateLimitedSource(bs, limiter, ""), set.cache))
	}

	names := make([]string, 0, len(set.sources))
	for _, s := range set.sources {
		names = append(names, s.Name())
	}
	logger.Info("sources ready", "count", len(set.sources), "names", strings.Join(names, ","))
	return set, nil
}

func newBoard(c config.CompanyConfig, httpClient *http.Client) (adapter.Board, bool) {
	switch c.ATS {
	case "greenhouse":
		return adapter.NewGreenhouseBoard(c.BoardToken, c.Name, httpClient), true
	case "lever":
		return adapter.NewLeverBoard(c.BoardToken, c.Name, httpClient), true
	case "ashby":
		return adapter.NewAshbyBoard(c.BoardToken, c.Name, httpClient), true
	case "gem":
		return adapter.NewGemBoard(c.BoardToken, c.Name, httpClient), true
	default:
		return nil, false
	}
}

// synonymTable turns the configured role synonyms into the generator's
// extra table.
func synonymTable(roles []model.RoleInterest) map[string][]string {
	extra := make(map[string][]string)
	for _, r := range roles {
		if len(r.Synonyms) > 0 {
			extra[r.Title] = append(extra[r.Title], r.Synonyms...)
		}
	}
	return extra
}

// newOrchestrator wires the discovery pipeline for label ("cli",
// "scheduler", "check", "browse").
func newOrchestrator(cfg *config.Config, st model.Store, sources []model.Source, label string, logger *slog.Logger) *discovery.Orchestrator {
	return discovery.New(
		st,
		sources,
		query.NewGenerator(synonymTable(cfg.Roles)),
		normalize.New(nil),
		dedup.New(cfg.Discovery.DedupThreshold),
		discovery.Options{
			Roles:              cfg.Roles,
			MaxQueriesPerRole:  cfg.Discovery.MaxQueriesPerRole,
			MaxResultsPerQuery: cfg.Discovery.MaxResultsPerQuery,
			MaxNewJobs:         cfg.Discovery.MaxNewJobs,
			Label:              label,
			NotifyFirstRun:     cfg.Discovery.NotifyFirstRun,
		},
		logger,
	).WithFilter(newJobFilter(cfg))
}

// newTracker builds the progress tracker shared by a process.
func newTracker() *progress.Tracker {
	return progress.NewTracker(progress.DefaultMaxEntries, progress.DefaultTTL)
}
