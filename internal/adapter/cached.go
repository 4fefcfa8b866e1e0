package adapter

import (
	"context"
	"strconv"

	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/model"
)

// CachedSource memoizes a source's successful results for the cache TTL.
type CachedSource struct {
	inner model.Source
	cache *cache.Cache
}

// NewCachedSource wraps inner with c.
func NewCachedSource(inner model.Source, c *cache.Cache) *CachedSource {
	return &CachedSource{inner: inner, cache: c}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	key := cache.Key("search", s.inner.Name(), query, strconv.Itoa(maxResults))
	if postings, ok := cache.GetJSON[[]model.RawPosting](ctx, s.cache, key); ok {
		return postings, nil
	}

	postings, err := s.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, postings)
	return postings, nil
}
