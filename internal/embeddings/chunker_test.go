package embeddings

import (
	"reflect"
	"testing"
)

func TestNewChunked_Validation(t *testing.T) {
	fake := newFakeEmbedder(nil)

	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"zero size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"valid", 512, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunked(fake, tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewChunked() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name: "short text is a single chunk",
			text: "hi", size: 10, overlap: 0,
			want: []string{"hi"},
		},
		{
			name: "exact size is a single chunk",
			text: "0123456789", size: 10, overlap: 0,
			want: []string{"0123456789"},
		},
		{
			name: "breaks at last space in window",
			text: "aaaa bbbb cccc", size: 10, overlap: 0,
			want: []string{"aaaa bbbb", "cccc"},
		},
		{
			name: "no spaces falls back to hard split with overlap",
			text: "0123456789ABCDEFGHIJ", size: 10, overlap: 3,
			want: []string{"0123456789", "789ABCDEFG", "EFGHIJ", "HIJ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunkText(tt.text, tt.size, tt.overlap)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chunkText() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunked_ShortTextPassesThrough(t *testing.T) {
	fake := newFakeEmbedder(map[string][]float32{
		"short text": {1, 0},
	})
	chunked, err := NewChunked(fake, 512, 100)
	if err != nil {
		t.Fatalf("NewChunked() error = %v", err)
	}

	vec, err := chunked.Embed(t.Context(), "short text")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if vec[0] != 1 || vec[1] != 0 {
		t.Errorf("Embed() = %v, want [1 0]", vec)
	}

	if len(fake.batches) != 1 {
		t.Fatalf("inner embedder called %d times, want 1", len(fake.batches))
	}
	if got := fake.batches[0]; len(got) != 1 || got[0] != "short text" {
		t.Errorf("inner embedder received %v, want [short text]", got)
	}
}

func TestChunked_MeanPoolsChunks(t *testing.T) {
	fake := newFakeEmbedder(map[string][]float32{
		"aaaa bbbb": {1, 0},
		"cccc":      {0, 1},
	})
	chunked, err := NewChunked(fake, 10, 0)
	if err != nil {
		t.Fatalf("NewChunked() error = %v", err)
	}

	vec, err := chunked.Embed(t.Context(), "aaaa bbbb cccc")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if vec[0] != 0.5 || vec[1] != 0.5 {
		t.Errorf("Embed() = %v, want [0.5 0.5]", vec)
	}
}

func TestChunked_BatchKeepsTextBoundaries(t *testing.T) {
	fake := newFakeEmbedder(map[string][]float32{
		"aaaa bbbb": {1, 0},
		"cccc":      {0, 1},
		"tiny":      {4, 4},
	})
	chunked, err := NewChunked(fake, 10, 0)
	if err != nil {
		t.Fatalf("NewChunked() error = %v", err)
	}

	vecs, err := chunked.EmbedBatch(t.Context(), []string{"aaaa bbbb cccc", "tiny"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if vecs[0][0] != 0.5 || vecs[0][1] != 0.5 {
		t.Errorf("first vector = %v, want [0.5 0.5]", vecs[0])
	}
	if vecs[1][0] != 4 || vecs[1][1] != 4 {
		t.Errorf("second vector = %v, want [4 4]", vecs[1])
	}

	// All three chunks go through in one inner call.
	if len(fake.batches) != 1 || len(fake.batches[0]) != 3 {
		t.Errorf("inner batches = %v, want one batch of 3 chunks", fake.batches)
	}
}
