package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundqa/internal/domain"
	"fundqa/internal/sources"
)

func fundA() domain.ProductRecord {
	return domain.ProductRecord{
		Name: "Fund A",
		Fields: map[string]any{
			"fund_category": "Equity: Flexi Cap",
			"minimum_sip":   "₹100",
			"expense_ratio": map[string]any{
				"direct_plan":  "0.5%",
				"regular_plan": "1.1%",
				"as_on_date":   "2024-10-31",
			},
			"exit_load":              "1% if redeemed within 1 year",
			"riskometer":             "Very High",
			"nav":                    123.45,
			"tracking_error":         "0.2",
			"exit_load_alternatives": []any{"nil"},
		},
		Sources: []domain.SourceDescriptor{
			{URL: "https://groww.in/mutual-funds/fund-a", Origin: "groww"},
			{URL: "https://www.hdfcfund.com/fund-a", Origin: "amc"},
		},
	}
}

func byCategory(ps []domain.Passage) map[domain.Category]domain.Passage {
	m := make(map[domain.Category]domain.Passage, len(ps))
	for _, p := range ps {
		m[p.Category] = p
	}
	return m
}

func TestRender_OnePassagePerCategory(t *testing.T) {
	c := NewProductChunker(nil)
	ps := c.Render(fundA())
	require.Len(t, ps, 5)
	m := byCategory(ps)
	for _, cat := range domain.Categories {
		assert.Contains(t, m, cat)
	}
	for _, p := range ps {
		assert.Equal(t, "Fund A", p.ProductName)
		assert.Equal(t, "https://www.hdfcfund.com/fund-a", p.PrimarySourceURL)
		assert.Contains(t, p.SourceURLs, p.PrimarySourceURL)
	}
}

func TestRender_ExpenseRatioPlansOnSeparateLines(t *testing.T) {
	fees := byCategory(NewProductChunker(nil).Render(fundA()))[domain.CategoryFees]
	assert.Contains(t, fees.Text, "Expense Ratio - Direct Plan: 0.5%\n")
	assert.Contains(t, fees.Text, "Expense Ratio - Regular Plan: 1.1%\n")
	assert.Contains(t, fees.Text, "As on Date: 2024-10-31")
	assert.Contains(t, fees.Text, "Exit Load: 1% if redeemed within 1 year")
}

func TestRender_ExpenseRatioList(t *testing.T) {
	r := domain.ProductRecord{Name: "Fund B", Fields: map[string]any{
		"expense_ratio": []any{
			map[string]any{"plan_type": "Direct", "value": 0.7, "unit": "%", "as_on_date": "2024-01-01"},
			map[string]any{"plan_type": "Regular", "value": 1.5, "unit": "%"},
		},
	}}
	ps := NewProductChunker(nil).Render(r)
	require.Len(t, ps, 1)
	assert.Contains(t, ps[0].Text, "Expense Ratio - Direct: 0.7% (as on 2024-01-01)")
	assert.Contains(t, ps[0].Text, "Expense Ratio - Regular: 1.5%")
}

func TestRender_OtherSkipsAlternativesAndClaimed(t *testing.T) {
	other := byCategory(NewProductChunker(nil).Render(fundA()))[domain.CategoryOther]
	assert.Contains(t, other.Text, "Tracking Error: 0.2")
	assert.NotContains(t, other.Text, "Alternatives")
	assert.NotContains(t, other.Text, "Riskometer")
}

func TestRender_OmitsEmptyCategories(t *testing.T) {
	r := domain.ProductRecord{Name: "Fund C", Fields: map[string]any{"nav": "10.5"}}
	ps := NewProductChunker(nil).Render(r)
	require.Len(t, ps, 1)
	assert.Equal(t, domain.CategoryRiskPerformance, ps[0].Category)
	assert.True(t, strings.HasPrefix(ps[0].Text, "Risk and Performance for Fund C:"))
	assert.Equal(t, sources.DefaultEducationalURL, ps[0].PrimarySourceURL)
}

func TestRender_NoFieldsNoPassages(t *testing.T) {
	c := NewProductChunker(nil)
	assert.Empty(t, c.Render(domain.ProductRecord{Name: "Empty"}))
	assert.Empty(t, c.Render(domain.ProductRecord{Name: "Empty", Fields: map[string]any{}}))
}

func TestRender_Idempotent(t *testing.T) {
	c := NewProductChunker(nil)
	first := c.Render(fundA())
	second := c.Render(fundA())
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestRender_OverrideWhenNoSources(t *testing.T) {
	res := sources.NewResolver(sources.Config{Overrides: map[string][]string{
		"Fund D": {"https://www.amfiindia.com/fund-d.pdf"},
	}})
	ps := NewProductChunker(res).Render(domain.ProductRecord{Name: "Fund D", Fields: map[string]any{"exit_load": "Nil"}})
	require.Len(t, ps, 1)
	assert.Equal(t, "https://www.amfiindia.com/fund-d.pdf", ps[0].PrimarySourceURL)
}
