package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/model"
)

// DefaultBoardConcurrency bounds parallel board fetches.
const DefaultBoardConcurrency = 4

// Board is one company's applicant-tracking job board. Boards have no search
// endpoint, so the whole board is fetched and filtered locally.
type Board interface {
	Kind() string
	Company() string
	Fetch(ctx context.Context) ([]model.RawPosting, error)
}

// BoardSource searches a fixed set of company boards. Each board's listing is
// cached, so repeated queries within the cache TTL cost one fetch per board.
type BoardSource struct {
	boards      []Board
	cache       *cache.Cache
	concurrency int
	logger      *slog.Logger
}

// NewBoardSource creates a BoardSource. c must not be nil.
func NewBoardSource(boards []Board, c *cache.Cache, concurrency int, logger *slog.Logger) *BoardSource {
	if concurrency <= 0 {
		concurrency = DefaultBoardConcurrency
	}
	return &BoardSource{
		boards:      boards,
		cache:       c,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (s *BoardSource) Name() string { return "boards" }

// Search returns postings whose title and location contain every query
// keyword, in board order. A board that fails is logged and skipped; the
// search fails only when every board failed.
func (s *BoardSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	keywords := queryKeywords(query)
	if len(keywords) == 0 {
		return nil, nil
	}

	listings, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []model.RawPosting
	for _, postings := range listings {
		for _, p := range postings {
			if matchesAll(p.Title+" "+p.Location, keywords) {
				out = append(out, p)
			}
		}
	}
	return limit(out, maxResults), nil
}

// fetchAll returns every board's postings, indexed like s.boards.
func (s *BoardSource) fetchAll(ctx context.Context) ([][]model.RawPosting, error) {
	results := make([][]model.RawPosting, len(s.boards))

	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, b := range s.boards {
		g.Go(func() error {
			postings, err := s.fetchBoard(gctx, b)
			if err != nil {
				s.logger.Warn("board fetch failed", "kind", b.Kind(), "company", b.Company(), "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = postings
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.boards) > 0 && len(errs) == len(s.boards) {
		return nil, fmt.Errorf("all %d boards failed: %w", len(s.boards), errors.Join(errs...))
	}
	return results, nil
}

func (s *BoardSource) fetchBoard(ctx context.Context, b Board) ([]model.RawPosting, error) {
	key := cache.Key("board", b.Kind(), b.Company())
	if postings, ok := cache.GetJSON[[]model.RawPosting](ctx, s.cache, key); ok {
		return postings, nil
	}

	postings, err := b.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, postings)
	s.logger.Debug("board fetched", "kind", b.Kind(), "company", b.Company(), "count", len(postings))
	return postings, nil
}
