// Package embeddings converts page text to float32 vectors via any
// OpenAI-compatible embedding server, with content-addressed caching and
// chunked mean-pooling for long texts.
package embeddings

import "context"

// Embedder converts text to vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension, or 0 if not yet detected.
	Dimension() int

	// Model returns the model name.
	Model() string
}

// Dimensions returns the expected embedding dimensions for common models.
func Dimensions(model string) int {
	switch model {
	case "all-MiniLM-L6-v2", "paraphrase-MiniLM-L3-v2":
		return 384
	case "nomic-embed-text", "all-mpnet-base-v2":
		return 768
	case "text-embedding-3-small":
		return 1536
	default:
		return 384 // default assumption
	}
}
