package embeddings

import "math"

// Norm computes the L2 norm of a vector.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of vec. The second return value is
// false when vec has zero norm and cannot be normalized.
func Normalize(vec []float32) ([]float32, bool) {
	norm := Norm(vec)
	if norm == 0 {
		return nil, false
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, true
}

// Cosine computes cosine similarity between two vectors, clamped to [-1, 1].
// Returns 0 when either vector has zero norm or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim))
}

// Mean computes the element-wise mean of a set of equal-length vectors.
// Accumulation happens in float64 so batch grouping cannot shift the result.
func Mean(vecs [][]float32) []float32 {
	if len(vecs) == 0 {
		return nil
	}
	sums := make([]float64, len(vecs[0]))
	for _, vec := range vecs {
		for i, v := range vec {
			sums[i] += float64(v)
		}
	}
	out := make([]float32, len(sums))
	for i, s := range sums {
		out[i] = float32(s / float64(len(vecs)))
	}
	return out
}
