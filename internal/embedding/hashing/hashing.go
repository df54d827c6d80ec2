// Package hashing implements a hashed bag-of-words vectorizer.
//
// It is a placeholder, not a semantic embedding: each whitespace token is
// scattered into one of a fixed number of buckets by a stable hash of the
// token. It is deterministic and cheap enough to run per passage at index
// build and per query at request time.
package hashing

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"fundqa/internal/embedding"
)

// DefaultDimension is the bucket count used when none is configured.
const DefaultDimension = 128

// Embedder is a fixed-width hashed term-frequency vectorizer.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder with the given bucket count.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hash" }

// Prepare is a no-op; the vector space does not depend on the corpus.
func (e *Embedder) Prepare(corpus []string) error { return nil }

// Dimension returns the bucket count.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed builds a length-normalized term-frequency histogram, sums it into
// hash buckets and L2-normalizes the result.
func (e *Embedder) Embed(text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return vec, nil
	}
	// accumulate in first-occurrence order so bucket sums are bit-stable
	freq := make(map[string]int, len(words))
	order := make([]string, 0, len(words))
	for _, w := range words {
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	total := float64(len(words))
	for _, w := range order {
		idx := xxhash.Sum64String(w) % uint64(e.dimension)
		vec[idx] += float64(freq[w]) / total
	}
	embedding.Normalize(vec)
	return vec, nil
}
