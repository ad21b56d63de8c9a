package embeddings

import (
	"context"
	"fmt"
	"strings"
)

// Chunked wraps an Embedder so long texts are split into overlapping chunks
// and the chunk vectors mean-pooled into one vector per text. Short texts
// pass through as a single chunk.
type Chunked struct {
	inner   Embedder
	size    int
	overlap int
}

// NewChunked creates a chunking layer around inner. size is the target chunk
// length in characters and overlap the number of characters shared between
// consecutive chunks.
func NewChunked(inner Embedder, size, overlap int) (*Chunked, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than zero")
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size)")
	}
	return &Chunked{inner: inner, size: size, overlap: overlap}, nil
}

// chunkText splits text into chunks of roughly size characters, breaking at
// the last space inside each window when one exists.
func chunkText(text string, size, overlap int) []string {
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		if end < len(text) {
			if lastSpace := strings.LastIndex(text[start:end], " "); lastSpace > 0 {
				end = start + lastSpace
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end-overlap > start {
			start = end - overlap
		} else {
			start = end
		}
	}
	return chunks
}

// Embed returns the mean-pooled vector for a single text.
func (c *Chunked) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch chunks every text, embeds all chunks through the inner embedder,
// and mean-pools each text's chunk vectors back into one vector per input.
func (c *Chunked) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type span struct{ start, count int }
	spans := make([]span, len(texts))
	var allChunks []string
	for i, text := range texts {
		chunks := chunkText(text, c.size, c.overlap)
		if len(chunks) == 0 {
			chunks = []string{text}
		}
		spans[i] = span{start: len(allChunks), count: len(chunks)}
		allChunks = append(allChunks, chunks...)
	}

	chunkVecs, err := c.inner.EmbedBatch(ctx, allChunks)
	if err != nil {
		return nil, err
	}
	if len(chunkVecs) != len(allChunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(chunkVecs), len(allChunks))
	}

	results := make([][]float32, len(texts))
	for i, sp := range spans {
		if sp.count == 1 {
			results[i] = chunkVecs[sp.start]
			continue
		}
		results[i] = Mean(chunkVecs[sp.start : sp.start+sp.count])
	}
	return results, nil
}

// Dimension delegates to the wrapped embedder.
func (c *Chunked) Dimension() int { return c.inner.Dimension() }

// Model delegates to the wrapped embedder.
func (c *Chunked) Model() string { return c.inner.Model() }
