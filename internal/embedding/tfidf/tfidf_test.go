package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundqa/internal/embedding"
)

var corpus = []string{
	"Fees and Charges for Fund A: Expense Ratio - Direct Plan: 0.5% Exit Load: 1%",
	"Investment Details for Fund A: Minimum SIP Amount: 100 Lock-in Period: 3 years",
	"Risk and Performance for Fund A: Riskometer Rating: Very High Benchmark Index: NIFTY 500",
}

func TestEmbed_RequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed("expense ratio")
	assert.Error(t, err)
}

func TestPrepare_EmptyCorpus(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(nil))
}

func TestEmbed_FixedWidthAndRanking(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	require.Positive(t, e.Dimension())

	q, err := e.Embed("What is the lock-in period?")
	require.NoError(t, err)
	assert.Len(t, q, e.Dimension())

	var best int
	var bestScore float64
	for i, doc := range corpus {
		v, err := e.Embed(doc)
		require.NoError(t, err)
		assert.Len(t, v, e.Dimension())
		if s := embedding.Similarity(q, v); s > bestScore {
			best, bestScore = i, s
		}
	}
	assert.Equal(t, 1, best)
}

func TestEmbed_UnknownTermsGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	v, err := e.Embed("zzz qqq")
	require.NoError(t, err)
	assert.Equal(t, make([]float64, e.Dimension()), v)
}

func TestName_TracksVocabulary(t *testing.T) {
	a, b := NewEmbedder(), NewEmbedder()
	assert.Equal(t, "tfidf", a.Name())
	require.NoError(t, a.Prepare(corpus))
	require.NoError(t, b.Prepare(corpus[:1]))
	assert.NotEqual(t, a.Name(), b.Name())
}
