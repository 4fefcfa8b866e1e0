package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	DefaultBrowserTimeout = 30 * time.Second
	// htmlGrace bounds the final DOM read after the search deadline passed.
	htmlGrace = 5 * time.Second
)

// CardSelectors are CSS selectors locating listing cards on a results page.
// Field selectors are evaluated relative to each card.
type CardSelectors struct {
	Card        string
	Title       string
	Company     string
	Location    string
	Link        string // element with an href; defaults to Title
	Description string
}

// BrowserConfig describes a site searched through a headless browser.
type BrowserConfig struct {
	Name      string
	SearchURL string // "{query}" is replaced with the escaped query
	Selectors CardSelectors
	Timeout   time.Duration
	Headless  bool
}

// BrowserSource scrapes a JavaScript-rendered search page. The browser
// process is started on first use and reused until Close.
type BrowserSource struct {
	cfg    BrowserConfig
	logger *slog.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
}

func NewBrowserSource(cfg BrowserConfig, logger *slog.Logger) *BrowserSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultBrowserTimeout
	}
	if cfg.Name == "" {
		cfg.Name = "browser"
	}
	return &BrowserSource{cfg: cfg, logger: logger}
}

func (s *BrowserSource) Name() string { return s.cfg.Name }

// Search loads the results page and returns whatever cards rendered before
// the per-search timeout.
func (s *BrowserSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	browserCtx, err := s.session()
	if err != nil {
		return nil, err
	}

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	// Caller cancellation closes the tab too.
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	pageURL := strings.ReplaceAll(s.cfg.SearchURL, "{query}", url.QueryEscape(query))

	waitCtx, cancel := context.WithTimeout(tabCtx, s.cfg.Timeout)
	err = chromedp.Run(waitCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(s.cfg.Selectors.Card, chromedp.ByQuery),
	)
	cancel()
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s: load %s: %w", s.cfg.Name, pageURL, err)
	}
	if err != nil {
		s.logger.Debug("browser search timed out, reading partial page", "source", s.cfg.Name, "query", query)
	}

	readCtx, cancelRead := context.WithTimeout(tabCtx, htmlGrace)
	defer cancelRead()
	var html string
	if err := chromedp.Run(readCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: read page: %w", s.cfg.Name, err)
	}

	postings, err := ParseCards(html, pageURL, s.cfg.Name, s.cfg.Selectors)
	if err != nil {
		return nil, err
	}
	return limit(postings, maxResults), nil
}

// session returns the shared browser context, starting Chrome if needed.
func (s *BrowserSource) session() (context.Context, error) {
	if s.browserCtx != nil && s.browserCtx.Err() == nil {
		return s.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%s: start browser: %w", s.cfg.Name, err)
	}
	s.browserCtx = browserCtx
	s.cancelBrowser = func() {
		cancelBrowser()
		cancelAlloc()
	}
	s.logger.Info("browser session started", "source", s.cfg.Name)
	return browserCtx, nil
}

// Close shuts the browser down. The next Search starts a new one.
func (s *BrowserSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelBrowser != nil {
		s.cancelBrowser()
		s.cancelBrowser = nil
		s.browserCtx = nil
	}
	return nil
}

// ParseCards extracts postings from a rendered results page. Cards without a
// title are skipped; relative links are resolved against pageURL.
func ParseCards(html, pageURL, source string, sel CardSelectors) ([]model.RawPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%s: parse page: %w", source, err)
	}
	base, _ := url.Parse(pageURL)
	linkSel := sel.Link
	if linkSel == "" {
		linkSel = sel.Title
	}

	var postings []model.RawPosting
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		title := fieldText(card, sel.Title)
		if title == "" {
			return
		}
		p := model.RawPosting{
			Title:       title,
			Company:     fieldText(card, sel.Company),
			Location:    fieldText(card, sel.Location),
			Description: fieldText(card, sel.Description),
			Source:      source,
		}
		link := card.Find(linkSel).First()
		if !link.Is("[href]") {
			link = link.Find("a[href]").First()
		}
		if href, ok := link.Attr("href"); ok {
			if ref, err := url.Parse(href); err == nil && base != nil {
				p.SourceURL = base.ResolveReference(ref).String()
			}
		}
		postings = append(postings, p)
	})
	return postings, nil
}

func fieldText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return collapse(card.Find(selector).First().Text())
}
