// Package pipeline chains the crawl engine and the cohesion analyzer into
// one orchestrated run and persists the result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siteradius/siteradius/internal/analyzer"
	"github.com/siteradius/siteradius/internal/config"
	"github.com/siteradius/siteradius/internal/crawler"
	"github.com/siteradius/siteradius/internal/embeddings"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/siteradius/siteradius/pkg/models"
)

// Request describes one analysis run. Zero MaxPages or MaxDepth inherit the
// configured crawler defaults.
type Request struct {
	URL      string
	MaxPages int
	MaxDepth int
}

// Progress receives coarse completion updates for UI polling. It is never
// required for correctness.
type Progress func(fraction float64, message string)

// Pipeline wires the crawler, the embedding chain, the analyzer, and the
// results store. Crawler and analyzer instances are created fresh per run so
// no state leaks between analyses.
type Pipeline struct {
	cfg      config.Config
	embedder embeddings.Embedder
	store    store.Store
}

// New creates a Pipeline with the full embedding chain: an HTTP client to
// the embedding server, wrapped in the chunked mean-pooler, wrapped in the
// content-addressed cache.
func New(cfg config.Config, st store.Store) (*Pipeline, error) {
	client, err := embeddings.NewClient(embeddings.Config{
		Endpoint:  cfg.Embeddings.Endpoint,
		Model:     cfg.Embeddings.Model,
		BatchSize: cfg.Embeddings.BatchSize,
		Timeout:   cfg.Embeddings.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}

	chunked, err := embeddings.NewChunked(client, cfg.Embeddings.ChunkSize, cfg.Embeddings.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	cached, err := embeddings.NewCached(chunked, cfg.Embeddings.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	return NewWithEmbedder(cfg, cached, st)
}

// NewWithEmbedder wires a Pipeline around an existing embedder. Tests use it
// to substitute a deterministic model.
func NewWithEmbedder(cfg config.Config, embedder embeddings.Embedder, st store.Store) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	return &Pipeline{cfg: cfg, embedder: embedder, store: st}, nil
}

// Normalize fills zero Request fields from the configured crawler defaults.
func (p *Pipeline) Normalize(req Request) Request {
	if req.MaxPages <= 0 {
		req.MaxPages = p.cfg.Crawler.MaxPages
	}
	if req.MaxDepth <= 0 {
		req.MaxDepth = p.cfg.Crawler.MaxDepth
	}
	return req
}

// AnalysisID returns the deterministic ID Run will store the result under.
func (p *Pipeline) AnalysisID(req Request) string {
	req = p.Normalize(req)
	return models.GenerateAnalysisID(req.URL, req.MaxPages)
}

// Run executes one full analysis: crawl the site, analyze the pages, stamp
// the request metadata, and save the result under its analysis ID. Progress
// milestones: 0.1 initializing, crawl mapped to [0.2, 0.6], analysis to
// [0.6, 0.9], 0.9 saving, 1.0 complete.
func (p *Pipeline) Run(ctx context.Context, req Request, progress Progress) (*models.CohesionResult, error) {
	if progress == nil {
		progress = func(float64, string) {}
	}
	req = p.Normalize(req)

	progress(0.1, "initializing analysis")

	cr := crawler.New(crawler.Config{
		MaxPages:      req.MaxPages,
		MaxDepth:      req.MaxDepth,
		Delay:         p.cfg.Crawler.Delay,
		Timeout:       p.cfg.Crawler.Timeout,
		Workers:       p.cfg.Crawler.Workers,
		UserAgent:     p.cfg.Crawler.UserAgent,
		MinTextLength: p.cfg.Crawler.MinTextLength,
		OnProgress: func(fraction float64, message string) {
			progress(0.2+0.4*fraction, message)
		},
	})

	pages, err := cr.Crawl(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}
	slog.Info("crawl finished", "url", req.URL, "pages", len(pages))

	an, err := analyzer.New(p.embedder, analyzer.Config{
		MaxTextChars: p.cfg.Analyzer.MaxTextChars,
		BatchSize:    p.cfg.Embeddings.BatchSize,
		OnProgress: func(fraction float64, message string) {
			progress(0.6+0.3*fraction, message)
		},
	})
	if err != nil {
		return nil, err
	}

	progress(0.6, "analyzing thematic cohesion")
	result, err := an.Analyze(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	// The analyzer only sees pages; the run parameters are stamped here.
	result.Metadata.URL = req.URL
	result.Metadata.MaxPages = req.MaxPages

	if p.store != nil {
		progress(0.9, "saving results")
		id := models.GenerateAnalysisID(req.URL, req.MaxPages)
		if err := p.store.Save(ctx, id, result); err != nil {
			return nil, fmt.Errorf("failed to save result: %w", err)
		}
		slog.Debug("result saved", "analysis_id", id)
	}

	progress(1.0, "analysis complete")
	return result, nil
}
