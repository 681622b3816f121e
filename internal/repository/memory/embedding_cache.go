package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// EmbeddingCache keeps recent query vectors so repeated searches skip the
// embedding provider.
type EmbeddingCache struct {
	cache *cache.Cache
}

func NewEmbeddingCache(ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	if x, found := c.cache.Get(text); found {
		return x.([]float32), true
	}
	return nil, false
}

func (c *EmbeddingCache) Set(text string, vector []float32) {
	c.cache.Set(text, vector, cache.DefaultExpiration)
}

func (c *EmbeddingCache) Delete(text string) {
	c.cache.Delete(text)
}
