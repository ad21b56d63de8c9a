package analyzer

import "errors"

// Analysis failure conditions, matched by callers with errors.Is.
var (
	// ErrNoPages is returned when there is nothing to analyze: either the
	// crawl produced no usable pages or every page failed embedding. This is
	// the "insufficient data" condition, not a crash.
	ErrNoPages = errors.New("insufficient data: no pages to analyze")

	// ErrDegenerateCentroid is returned when the mean of all page vectors
	// has zero norm, so no central theme direction exists. This only happens
	// with perfectly opposing embeddings; it is surfaced explicitly rather
	// than masked with NaN metrics.
	ErrDegenerateCentroid = errors.New("degenerate centroid: page vectors cancel out to zero")
)
