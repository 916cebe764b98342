// Package cached wraps any embedder with a ristretto cache keyed by text.
// Reference phrases, repeated queries, and re-stated memories embed once per
// process instead of once per call.
package cached

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// Embedder is the wrapped interface.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Config holds cache tuning parameters.
type Config struct {
	// MaxEntries bounds how many embeddings the cache holds (default 4096).
	MaxEntries int64
}

// CachedEmbedder decorates an Embedder with an in-process embedding cache.
type CachedEmbedder struct {
	inner Embedder
	cache *ristretto.Cache
	cost  int64
}

// New wraps inner with a cache. A nil config uses defaults.
func New(inner Embedder, config *Config) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner embedder is required")
	}

	maxEntries := int64(4096)
	if config != nil && config.MaxEntries > 0 {
		maxEntries = config.MaxEntries
	}

	// Cost 1 per entry; counters at 10x capacity per ristretto guidance.
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &CachedEmbedder{inner: inner, cache: cache, cost: 1}, nil
}

// Embed returns the cached vector for text, or computes and caches it.
// Errors from the inner embedder are never cached.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if hit, ok := c.cache.Get(text); ok {
		if vec, ok := hit.([]float32); ok {
			return append([]float32(nil), vec...), nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(text, append([]float32(nil), vec...), c.cost)
	return vec, nil
}

// Dimensions returns the inner embedder's vector size.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// Wait blocks until pending cache writes are visible. Intended for tests.
func (c *CachedEmbedder) Wait() {
	c.cache.Wait()
}

// Close releases cache resources.
func (c *CachedEmbedder) Close() {
	c.cache.Close()
}
