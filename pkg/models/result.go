package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Category labels pages by their similarity to the site centroid.
const (
	CategoryCentral    = "central"    // similarity >= 0.8
	CategorySupport    = "support"    // 0.6 <= similarity < 0.8
	CategoryPeripheral = "peripheral" // similarity < 0.6
)

// SimilarityBin is one bucket of the similarity histogram.
type SimilarityBin struct {
	Range string `json:"range"` // e.g. "0.7-0.8"
	Count int    `json:"count"`
}

// CategoryBreakdown holds the page count and share for one category.
type CategoryBreakdown struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // of total pages, rounded to 0.1
}

// Composition groups every analyzed page into the three similarity categories.
type Composition struct {
	Central    CategoryBreakdown `json:"central"`
	Support    CategoryBreakdown `json:"support"`
	Peripheral CategoryBreakdown `json:"peripheral"`
}

// ContentCluster is one page's coordinates for cluster visualization.
type ContentCluster struct {
	URL            string  `json:"url"`
	TopicAlignment float64 `json:"topic_alignment"` // similarity to centroid
	InfoDensity    float64 `json:"info_density"`
	Category       string  `json:"category"`
}

// PageMetric holds the per-page similarity measurements.
type PageMetric struct {
	URL           string  `json:"url"`
	Similarity    float64 `json:"similarity"`
	Distance      float64 `json:"distance"` // 1 - similarity
	InfoDensity   float64 `json:"info_density"`
	ContentLength int     `json:"content_length"`
}

// Metadata describes the analysis run itself.
type Metadata struct {
	URL          string    `json:"url"`
	PageCount    int       `json:"page_count"`
	PagesOmitted int       `json:"pages_omitted,omitempty"`
	Model        string    `json:"model"`
	MaxPages     int       `json:"max_pages"`
	Timestamp    time.Time `json:"timestamp"`
}

// CohesionResult is the complete output of one site analysis.
// It is produced once, handed off whole, and never mutated afterwards.
type CohesionResult struct {
	FocusScore             float64          `json:"focus_score"`
	Radius                 float64          `json:"radius"`
	SimilarityDistribution []SimilarityBin  `json:"similarity_distribution"`
	ContentComposition     Composition      `json:"content_composition"`
	ContentClusters        []ContentCluster `json:"content_clusters"`
	PageMetrics            []PageMetric     `json:"page_metrics"`
	Metadata               Metadata         `json:"metadata"`
}

// GenerateAnalysisID creates a deterministic ID for one (url, maxPages) run.
// The ID is a SHA-256 hash (first 16 chars) of the pair, so resubmitting the
// same request maps to the same analysis.
func GenerateAnalysisID(url string, maxPages int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s_%d", url, maxPages)))
	return hex.EncodeToString(hash[:])[:16]
}
