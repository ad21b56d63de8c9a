// Package analyzer turns a crawl's page records into thematic cohesion
// metrics: every page is embedded, a site centroid is derived, and per-page
// similarity to that centroid drives the focus score and its breakdowns.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/siteradius/siteradius/internal/embeddings"
	"github.com/siteradius/siteradius/pkg/models"
)

// Similarity thresholds for the page categories. They are applied
// identically in the composition and the cluster output.
const (
	centralThreshold = 0.8
	supportThreshold = 0.6
)

const histogramBins = 10

// Config holds cohesion analysis configuration.
type Config struct {
	MaxTextChars int         // text is truncated to this length before embedding
	BatchSize    int         // pages embedded per batch; never changes results
	Density      DensityFunc // info-density policy; defaults to LogisticDensity

	// OnProgress, when set, is called as embedding batches complete.
	OnProgress func(fraction float64, message string)
}

// Analyzer computes a CohesionResult from a set of page records.
type Analyzer struct {
	config   Config
	embedder embeddings.Embedder
}

// New creates an Analyzer around the given embedder.
func New(embedder embeddings.Embedder, config Config) (*Analyzer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if config.MaxTextChars <= 0 {
		config.MaxTextChars = 10000
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 32
	}
	if config.Density == nil {
		config.Density = LogisticDensity
	}
	return &Analyzer{config: config, embedder: embedder}, nil
}

// pageVector pairs a page with its unit-length embedding.
type pageVector struct {
	page models.PageRecord
	vec  []float32
}

// Analyze embeds every page, derives the site centroid, and assembles the
// full cohesion result. An empty input or one where every page fails
// embedding returns ErrNoPages. Pages that cannot be embedded are omitted
// from the metrics and counted in the metadata.
//
// The caller stamps the seed URL and page cap onto the result's metadata;
// everything else is filled here.
func (a *Analyzer) Analyze(ctx context.Context, pages []models.PageRecord) (*models.CohesionResult, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	// Crawl emission order is nondeterministic; fix it so the same page set
	// always produces the same result.
	sorted := make([]models.PageRecord, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].URL < sorted[j].URL })

	embedded, omitted, err := a.embedPages(ctx, sorted)
	if err != nil {
		return nil, err
	}
	if len(embedded) == 0 {
		return nil, fmt.Errorf("%w: all %d pages failed embedding", ErrNoPages, len(sorted))
	}

	vecs := make([][]float32, len(embedded))
	for i := range embedded {
		vecs[i] = embedded[i].vec
	}
	centroid, ok := embeddings.Normalize(embeddings.Mean(vecs))
	if !ok {
		return nil, ErrDegenerateCentroid
	}

	sims := make([]float64, len(embedded))
	var total float64
	for i := range embedded {
		sims[i] = embeddings.Cosine(embedded[i].vec, centroid)
		total += sims[i]
	}
	focus := total / float64(len(embedded))

	result := &models.CohesionResult{
		FocusScore:             focus,
		Radius:                 1 - focus,
		SimilarityDistribution: histogram(sims),
		ContentComposition:     composition(sims),
		ContentClusters:        make([]models.ContentCluster, 0, len(embedded)),
		PageMetrics:            make([]models.PageMetric, 0, len(embedded)),
		Metadata: models.Metadata{
			PageCount:    len(embedded),
			PagesOmitted: omitted,
			Model:        a.embedder.Model(),
			Timestamp:    time.Now().UTC(),
		},
	}

	for i, pv := range embedded {
		sim := sims[i]
		density := a.config.Density(len(pv.page.Text))
		result.ContentClusters = append(result.ContentClusters, models.ContentCluster{
			URL:            pv.page.URL,
			TopicAlignment: sim,
			InfoDensity:    density,
			Category:       categorize(sim),
		})
		result.PageMetrics = append(result.PageMetrics, models.PageMetric{
			URL:           pv.page.URL,
			Similarity:    sim,
			Distance:      1 - sim,
			InfoDensity:   density,
			ContentLength: len(pv.page.Text),
		})
	}

	slog.Debug("analysis complete",
		"pages", len(embedded),
		"omitted", omitted,
		"focus_score", focus,
	)
	return result, nil
}

// embedPages embeds pages in fixed-size batches and normalizes every vector
// to unit length. A failing batch is retried page by page so one pathological
// text only costs that page. Per-page accumulation is independent of the
// batch grouping, so the batch size cannot shift results.
func (a *Analyzer) embedPages(ctx context.Context, pages []models.PageRecord) ([]pageVector, int, error) {
	out := make([]pageVector, 0, len(pages))
	omitted := 0

	for start := 0; start < len(pages); start += a.config.BatchSize {
		end := min(start+a.config.BatchSize, len(pages))
		batch := pages[start:end]

		texts := make([]string, len(batch))
		for i, page := range batch {
			texts[i] = truncate(page.Text, a.config.MaxTextChars)
		}

		vecs, err := a.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			slog.Warn("batch embedding failed, retrying per page", "error", err)
			vecs = make([][]float32, len(texts))
			for i, text := range texts {
				vec, embedErr := a.embedder.Embed(ctx, text)
				if embedErr != nil {
					if ctx.Err() != nil {
						return nil, 0, ctx.Err()
					}
					slog.Warn("failed to embed page", "url", batch[i].URL, "error", embedErr)
					continue
				}
				vecs[i] = vec
			}
		}

		for i, vec := range vecs {
			normalized, ok := embeddings.Normalize(vec)
			if !ok {
				omitted++
				slog.Warn("omitting page from analysis", "url", batch[i].URL)
				continue
			}
			out = append(out, pageVector{page: batch[i], vec: normalized})
		}

		a.reportProgress(end, len(pages))
	}
	return out, omitted, nil
}

func (a *Analyzer) reportProgress(done, total int) {
	if a.config.OnProgress == nil {
		return
	}
	a.config.OnProgress(float64(done)/float64(total), fmt.Sprintf("embedded %d of %d pages", done, total))
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

// categorize buckets a similarity value into one of the three categories.
func categorize(similarity float64) string {
	switch {
	case similarity >= centralThreshold:
		return models.CategoryCentral
	case similarity >= supportThreshold:
		return models.CategorySupport
	default:
		return models.CategoryPeripheral
	}
}

// histogram partitions [0, 1] into ten equal-width bins and counts the pages
// in each. Out-of-range similarities land in the nearest edge bin.
func histogram(sims []float64) []models.SimilarityBin {
	counts := make([]int, histogramBins)
	for _, sim := range sims {
		counts[binIndex(sim)]++
	}

	bins := make([]models.SimilarityBin, histogramBins)
	for i, count := range counts {
		bins[i] = models.SimilarityBin{
			Range: fmt.Sprintf("%.1f-%.1f", float64(i)/histogramBins, float64(i+1)/histogramBins),
			Count: count,
		}
	}
	return bins
}

func binIndex(sim float64) int {
	if sim < 0 {
		return 0
	}
	idx := int(sim * histogramBins)
	if idx >= histogramBins {
		return histogramBins - 1
	}
	return idx
}

// composition counts pages per category; percentages are rounded to one
// decimal place for the wire format.
func composition(sims []float64) models.Composition {
	var central, support, peripheral int
	for _, sim := range sims {
		switch categorize(sim) {
		case models.CategoryCentral:
			central++
		case models.CategorySupport:
			support++
		default:
			peripheral++
		}
	}
	total := len(sims)
	return models.Composition{
		Central:    breakdown(central, total),
		Support:    breakdown(support, total),
		Peripheral: breakdown(peripheral, total),
	}
}

func breakdown(count, total int) models.CategoryBreakdown {
	return models.CategoryBreakdown{
		Count:      count,
		Percentage: math.Round(float64(count)/float64(total)*1000) / 10,
	}
}
