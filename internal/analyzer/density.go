package analyzer

import "math"

// DensityFunc maps a page's content length in characters to an information
// density in [0, 1). The exact curve is a replaceable policy: anything
// monotonic, bounded, and deterministic works for cluster plotting.
type DensityFunc func(contentLength int) float64

const (
	densityMidpoint = 2500 // characters at which density crosses 0.5
	densityScale    = 1000
)

// LogisticDensity is the default density curve: a logistic squash of content
// length, so very short pages approach 0 and very long pages approach 1
// without ever reaching it.
func LogisticDensity(contentLength int) float64 {
	d := 1 / (1 + math.Exp(-(float64(contentLength)-densityMidpoint)/densityScale))
	if d >= 1 {
		return math.Nextafter(1, 0)
	}
	return d
}
