package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundqa/internal/domain"
)

func passage(product string, cat domain.Category, text string, vec ...float64) domain.Passage {
	return domain.Passage{ProductName: product, Category: cat, Text: text, Vector: vec}
}

func TestSearch_BoostsAndOrdering(t *testing.T) {
	passages := []domain.Passage{
		passage("Fund A", domain.CategoryIdentity, "Fund Name: Fund A", 0.6, 0.8),
		passage("Fund A", domain.CategoryFees, "Fees and Charges for Fund A: Expense Ratio - Direct Plan: 0.5%", 0, 1),
		passage("Fund A", domain.CategoryRiskPerformance, "Risk and Performance for Fund A: Riskometer Rating: High", 0, 1),
	}
	r := New(Options{})

	got := r.Search("What is the expense ratio?", []float64{1, 0}, passages, 3)
	require.Len(t, got, 3)

	assert.Equal(t, domain.CategoryIdentity, got[0].Passage.Category)
	assert.InDelta(t, 0.6, got[0].CombinedScore, 1e-9)

	fees := got[1]
	assert.Equal(t, domain.CategoryFees, fees.Passage.Category)
	assert.InDelta(t, 0.5, fees.KeywordBoost, 1e-9, "term + intent boost")
	assert.InDelta(t, 0.5, fees.CombinedScore, 1e-9)

	assert.Equal(t, domain.CategoryRiskPerformance, got[2].Passage.Category)
	assert.InDelta(t, 0.0, got[2].CombinedScore, 1e-9)
}

func TestSearch_CombinedScoreCapped(t *testing.T) {
	p := passage("Fund A", domain.CategoryFees, "expense ratio exit load nav aum benchmark", 1)
	got := New(Options{}).Search("expense ratio exit load nav aum benchmark", []float64{1}, []domain.Passage{p}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].CombinedScore)
	assert.Greater(t, got[0].KeywordBoost, 1.0)
}

func TestSearch_StableTiesAndTopK(t *testing.T) {
	passages := []domain.Passage{
		passage("A", domain.CategoryOther, "one", 1),
		passage("B", domain.CategoryOther, "two", 1),
		passage("C", domain.CategoryOther, "three", 1),
	}
	got := New(Options{}).Search("anything", []float64{1}, passages, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Passage.ProductName)
	assert.Equal(t, "B", got[1].Passage.ProductName)

	assert.Len(t, New(Options{}).Search("anything", []float64{1}, passages, 0), DefaultTopK)
}

func TestSearch_OnlyFirstIntentCounts(t *testing.T) {
	// "ratio" selects fees before "minimum" could select investment terms.
	passages := []domain.Passage{
		passage("A", domain.CategoryInvestmentTerms, "x", 0),
		passage("A", domain.CategoryFees, "y", 0),
	}
	got := New(Options{}).Search("minimum ratio", []float64{0}, passages, 2)
	assert.Equal(t, domain.CategoryFees, got[0].Passage.Category)
	assert.InDelta(t, 0.2, got[0].KeywordBoost, 1e-9)
	assert.Zero(t, got[1].KeywordBoost)
}

func TestFilterByProduct(t *testing.T) {
	passages := []domain.Passage{
		passage("HDFC Flexi Cap Fund", domain.CategoryFees, "a"),
		passage("HDFC ELSS Tax Saver Fund", domain.CategoryFees, "b"),
		passage("HDFC Large and Mid Cap Fund", domain.CategoryFees, "c"),
	}
	r := New(Options{})

	t.Run("substring", func(t *testing.T) {
		got := r.FilterByProduct("hdfc flexi cap", passages)
		require.Len(t, got, 1)
		assert.Equal(t, "HDFC Flexi Cap Fund", got[0].ProductName)
	})
	t.Run("fuzzy", func(t *testing.T) {
		got := r.FilterByProduct("The HDFC ELSS Saver Mutual Fund", passages)
		require.Len(t, got, 1)
		assert.Equal(t, "HDFC ELSS Tax Saver Fund", got[0].ProductName)
	})
	t.Run("fallback to all", func(t *testing.T) {
		assert.Len(t, r.FilterByProduct("Unknown Scheme", passages), 3)
	})
	t.Run("empty product", func(t *testing.T) {
		assert.Len(t, r.FilterByProduct("", passages), 3)
	})
}

func TestFuzzyMatch(t *testing.T) {
	r := New(Options{})
	assert.True(t, r.FuzzyMatch("hdfc flexi", "HDFC Flexi Cap Fund"))
	assert.False(t, r.FuzzyMatch("the fund", "HDFC Flexi Cap Fund"), "only stopwords")
	assert.False(t, r.FuzzyMatch("axis bluechip", "HDFC Flexi Cap Fund"))

	strict := New(Options{FuzzyThreshold: 1})
	assert.False(t, strict.FuzzyMatch("hdfc flexi midcap", "HDFC Flexi Cap Fund"))
}
