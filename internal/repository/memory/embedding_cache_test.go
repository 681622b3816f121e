package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingCache(t *testing.T) {
	c := NewEmbeddingCache(time.Minute)

	_, ok := c.Get("why postgres")
	assert.False(t, ok)

	c.Set("why postgres", []float32{0.1, 0.2})
	v, ok := c.Get("why postgres")
	assert.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, v)

	c.Delete("why postgres")
	_, ok = c.Get("why postgres")
	assert.False(t, ok)
}

func TestEmbeddingCacheExpires(t *testing.T) {
	c := NewEmbeddingCache(20 * time.Millisecond)
	c.Set("q", []float32{1})

	assert.Eventually(t, func() bool {
		_, ok := c.Get("q")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
