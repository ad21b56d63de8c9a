package embeddings

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// fakeEmbedder maps texts to fixed vectors and records the batches it sees.
type fakeEmbedder struct {
	mu      sync.Mutex
	vecs    map[string][]float32
	batches [][]string
	calls   int
}

func newFakeEmbedder(vecs map[string][]float32) *fakeEmbedder {
	return &fakeEmbedder{vecs: vecs}
}

func (f *fakeEmbedder) lookup(text string) ([]float32, error) {
	if vec, ok := f.vecs[text]; ok {
		return vec, nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.batches = append(f.batches, texts)
	f.mu.Unlock()

	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.lookup(text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (f *fakeEmbedder) Dimension() int { return 2 }

func (f *fakeEmbedder) Model() string { return "fake-model" }

func TestNewCached_Validation(t *testing.T) {
	fake := newFakeEmbedder(nil)

	if _, err := NewCached(fake, 0); err == nil {
		t.Error("NewCached() expected error for size 0")
	}
	if _, err := NewCached(nil, 10); err == nil {
		t.Error("NewCached() expected error for nil embedder")
	}
	if _, err := NewCached(fake, 10); err != nil {
		t.Errorf("NewCached() error = %v", err)
	}
}

func TestCached_EmbedUsesCache(t *testing.T) {
	fake := newFakeEmbedder(map[string][]float32{
		"hello": {1, 0},
	})
	cached, err := NewCached(fake, 10)
	if err != nil {
		t.Fatalf("NewCached() error = %v", err)
	}

	first, err := cached.Embed(t.Context(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	second, err := cached.Embed(t.Context(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if fake.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", fake.calls)
	}
	if first[0] != second[0] || first[1] != second[1] {
		t.Errorf("cached vector %v differs from original %v", second, first)
	}
}

func TestCached_ReturnedVectorIsolated(t *testing.T) {
	fake := newFakeEmbedder(map[string][]float32{
		"hello": {1, 0},
	})
	cached, err := NewCached(fake, 10)
	if err != nil {
		t.Fatalf("NewCached() error = %v", err)
	}

	first, err := cached.Embed(t.Context(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	first[0] = 99

	second, err := cached.Embed(t.Context(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if second[0] != 1 {
		t.Errorf("cache entry mutated through returned slice: got %v", second)
	}
}

func TestCached_BatchDedupesMisses(t *testing.T) {
	fake := newFakeEmbedder(map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	})
	cached, err := NewCached(fake, 10)
	if err != nil {
		t.Fatalf("NewCached() error = %v", err)
	}

	// Warm the cache with "a".
	if _, err := cached.Embed(t.Context(), "a"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	// "a" is cached, "b" appears twice but should be fetched once.
	vecs, err := cached.EmbedBatch(t.Context(), []string{"a", "b", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 || vecs[2][1] != 1 {
		t.Errorf("EmbedBatch() = %v, want [[1 0] [0 1] [0 1]]", vecs)
	}

	if fake.calls != 2 {
		t.Fatalf("inner embedder called %d times, want 2", fake.calls)
	}
	miss := fake.batches[1]
	if len(miss) != 1 || miss[0] != "b" {
		t.Errorf("miss batch = %v, want [b]", miss)
	}
}

func TestCached_BatchAllHits(t *testing.T) {
	fake := newFakeEmbedder(map[string][]float32{
		"a": {1, 0},
	})
	cached, err := NewCached(fake, 10)
	if err != nil {
		t.Fatalf("NewCached() error = %v", err)
	}

	if _, err := cached.Embed(t.Context(), "a"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	vecs, err := cached.EmbedBatch(t.Context(), []string{"a", "a"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if fake.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", fake.calls)
	}
}
