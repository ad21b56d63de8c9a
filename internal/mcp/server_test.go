package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/siteradius/siteradius/internal/config"
	"github.com/siteradius/siteradius/internal/pipeline"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/siteradius/siteradius/pkg/models"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimension() int { return 3 }
func (stubEmbedder) Model() string  { return "stub-model" }

func newTestMCPServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	cfg := config.Defaults()
	cfg.Crawler.Delay = time.Millisecond
	cfg.Crawler.Workers = 4

	p, err := pipeline.NewWithEmbedder(cfg, stubEmbedder{}, st)
	if err != nil {
		t.Fatalf("NewWithEmbedder() error = %v", err)
	}

	s, err := NewServer(Config{Name: "siteradius", Version: "1.0.0"}, p, st)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s, st
}

func TestServer_Creation(t *testing.T) {
	s, _ := newTestMCPServer(t)
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}
}

func TestServer_CreationRequiresPipeline(t *testing.T) {
	if _, err := NewServer(Config{Name: "siteradius", Version: "1.0.0"}, nil, nil); err == nil {
		t.Error("NewServer() without pipeline should fail")
	}
}

func TestServer_AnalyzeSiteTool(t *testing.T) {
	filler := strings.Repeat("Cohesion analysis over a small fixture site for tool tests. ", 5)
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><head><title>Home</title></head><body><main><p>%s</p></main></body></html>`, filler)
	}))
	defer site.Close()

	s, _ := newTestMCPServer(t)

	result, err := s.handleAnalyzeSite(t.Context(), site.URL, 5, 1)
	if err != nil {
		t.Fatalf("handleAnalyzeSite() error = %v", err)
	}
	if result.Metadata.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", result.Metadata.PageCount)
	}
	if result.Metadata.URL != site.URL {
		t.Errorf("Metadata.URL = %q, want %q", result.Metadata.URL, site.URL)
	}
}

func TestServer_GetAnalysisTool(t *testing.T) {
	s, st := newTestMCPServer(t)

	want := &models.CohesionResult{
		FocusScore: 0.83,
		Radius:     0.17,
		Metadata: models.Metadata{
			URL:       "https://example.com",
			MaxPages:  10,
			PageCount: 4,
			Model:     "stub-model",
			Timestamp: time.Now().UTC(),
		},
	}
	id := models.GenerateAnalysisID(want.Metadata.URL, want.Metadata.MaxPages)
	if err := st.Save(t.Context(), id, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.handleGetAnalysis(t.Context(), id)
	if err != nil {
		t.Fatalf("handleGetAnalysis() error = %v", err)
	}
	if got.FocusScore != want.FocusScore {
		t.Errorf("FocusScore = %v, want %v", got.FocusScore, want.FocusScore)
	}
}

func TestServer_GetAnalysisMissing(t *testing.T) {
	s, _ := newTestMCPServer(t)

	_, err := s.handleGetAnalysis(t.Context(), "absent-id")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("handleGetAnalysis() error = %v, want ErrNotFound", err)
	}
}
