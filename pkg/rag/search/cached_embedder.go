package search

import (
	"context"

	"decision-ledger-be/internal/repository/memory"
)

// CachedEmbedder memoizes query vectors. Empty results are not cached so
// a provider outage does not stick.
type CachedEmbedder struct {
	next  QueryEmbedder
	cache *memory.EmbeddingCache
}

func NewCachedEmbedder(next QueryEmbedder, cache *memory.EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache}
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) []float32 {
	if v, ok := c.cache.Get(text); ok {
		return v
	}
	v := c.next.EmbedQuery(ctx, text)
	if len(v) > 0 {
		c.cache.Set(text, v)
	}
	return v
}
