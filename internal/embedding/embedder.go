// Package embedding holds the Vectorizer contract and similarity scoring.
// Concrete vectorizers live in subpackages.
package embedding

import (
	"math"

	"fundqa/internal/domain"
)

// Vectorizer converts free text into a fixed-width numeric vector.
type Vectorizer = domain.Vectorizer

// Similarity returns the cosine similarity of a and b clamped to [0,1].
// It returns 0 when either vector is all-zero or the lengths differ.
func Similarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if s < 0 || math.IsNaN(s) {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Normalize scales v to unit L2 length in place. Zero vectors are left as is.
func Normalize(v []float64) {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}
