package domain

import "context"

// Chunker renders one product record into topic-tagged passages.
type Chunker interface {
	Render(record ProductRecord) []Passage
}

// Vectorizer converts text into a fixed-width numeric vector.
// Implementations may require a preparation phase over the corpus.
type Vectorizer interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// VectorCache persists vectors keyed by exact text. It only saves recomputation;
// a missing or unreadable cache is never fatal.
type VectorCache interface {
	Get(key string) ([]float64, bool)
	Put(key string, vector []float64)
	Save() error
	Close() error
}

// Generator is the text generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RecordSource supplies product records at index-build time.
type RecordSource interface {
	Records() ([]ProductRecord, error)
}
