package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached wraps an Embedder with a content-addressed LRU cache, so repeated
// identical text is embedded once per run.
type Cached struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCached creates a caching layer around inner holding up to size vectors.
func NewCached(inner Embedder, size int) (*Cached, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner embedder is required")
	}
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be greater than zero")
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to init cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// cacheKey hashes the exact text content.
func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// cloneVector keeps cache entries isolated from caller mutations.
func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

// Embed returns the cached vector for text, consulting inner on a miss.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return cloneVector(vec), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneVector(vec))
	return vec, nil
}

// EmbedBatch serves what it can from the cache and forwards only unique
// misses to inner, preserving input order in the result.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	missingIdx := make(map[string][]int)
	for i, text := range texts {
		if vec, ok := c.cache.Get(cacheKey(text)); ok {
			results[i] = cloneVector(vec)
			continue
		}
		missingIdx[text] = append(missingIdx[text], i)
	}
	if len(missingIdx) == 0 {
		return results, nil
	}

	missing := make([]string, 0, len(missingIdx))
	for text := range missingIdx {
		missing = append(missing, text)
	}

	vecs, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missing))
	}

	for j, text := range missing {
		c.cache.Add(cacheKey(text), cloneVector(vecs[j]))
		for _, i := range missingIdx[text] {
			results[i] = cloneVector(vecs[j])
		}
	}
	return results, nil
}

// Dimension delegates to the wrapped embedder.
func (c *Cached) Dimension() int { return c.inner.Dimension() }

// Model delegates to the wrapped embedder.
func (c *Cached) Model() string { return c.inner.Model() }
