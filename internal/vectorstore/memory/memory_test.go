package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundqa/internal/chunker"
	"fundqa/internal/domain"
	"fundqa/internal/embedding/hashing"
	"fundqa/internal/vectorcache"
)

func records() []domain.ProductRecord {
	return []domain.ProductRecord{
		{
			Name: "Fund B",
			Fields: map[string]any{
				"expense_ratio": "0.7%",
				"riskometer":    "High",
			},
		},
		{
			Name: "Fund A",
			Fields: map[string]any{
				"fund_category": "Equity",
				"exit_load":     "1%",
			},
		},
		{Name: "Empty"},
	}
}

type countingVectorizer struct {
	*hashing.Embedder
	calls int
}

func (c *countingVectorizer) Embed(text string) ([]float64, error) {
	c.calls++
	return c.Embedder.Embed(text)
}

type failingVectorizer struct{ *hashing.Embedder }

func (failingVectorizer) Embed(string) ([]float64, error) { return nil, errors.New("boom") }

func TestBuild_PassagesAndProducts(t *testing.T) {
	idx, err := Build(records(), BuildOptions{
		Chunker:    chunker.NewProductChunker(nil),
		Vectorizer: hashing.NewEmbedder(32),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []string{"Fund A", "Fund B"}, idx.Products())
	assert.Equal(t, 32, idx.Dimension())
	for _, p := range idx.Passages() {
		assert.Len(t, p.Vector, 32)
	}
}

func TestBuild_ReusesCachedVectors(t *testing.T) {
	cache := vectorcache.OpenFile(t.TempDir()+"/v.json", nil)
	v := &countingVectorizer{Embedder: hashing.NewEmbedder(16)}
	opts := BuildOptions{Chunker: chunker.NewProductChunker(nil), Vectorizer: v, Cache: cache}

	_, err := Build(records(), opts)
	require.NoError(t, err)
	first := v.calls
	assert.Equal(t, 4, first)

	_, err = Build(records(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, v.calls, "second build should hit the cache")
}

func TestBuild_DiscardsCachedVectorsOfWrongWidth(t *testing.T) {
	cache := vectorcache.OpenFile(t.TempDir()+"/v.json", nil)
	_, err := Build(records(), BuildOptions{
		Chunker: chunker.NewProductChunker(nil), Vectorizer: hashing.NewEmbedder(8), Cache: cache,
	})
	require.NoError(t, err)

	idx, err := Build(records(), BuildOptions{
		Chunker: chunker.NewProductChunker(nil), Vectorizer: hashing.NewEmbedder(16), Cache: cache,
	})
	require.NoError(t, err)
	for _, p := range idx.Passages() {
		assert.Len(t, p.Vector, 16)
	}
}

func TestBuild_EmbedErrorIsReturned(t *testing.T) {
	_, err := Build(records(), BuildOptions{
		Chunker:    chunker.NewProductChunker(nil),
		Vectorizer: failingVectorizer{hashing.NewEmbedder(8)},
	})
	assert.Error(t, err)
}

func TestBuild_NoRecords(t *testing.T) {
	idx, err := Build(nil, BuildOptions{
		Chunker: chunker.NewProductChunker(nil), Vectorizer: hashing.NewEmbedder(8),
	})
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Products())
}
