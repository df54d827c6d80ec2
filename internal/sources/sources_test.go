package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByDomain_Priority(t *testing.T) {
	r := NewResolver(Config{})
	urls := []string{
		"https://groww.in/mutual-funds/x",
		"https://www.amfiindia.com/x.pdf",
		"https://www.hdfcfund.com/x",
	}
	got, ok := r.ByDomain(urls)
	assert.True(t, ok)
	assert.Equal(t, "https://www.hdfcfund.com/x", got)
}

func TestByDomain_FallsBackToFirstHTTP(t *testing.T) {
	r := NewResolver(Config{})
	got, ok := r.ByDomain([]string{"ftp://nope", "https://example.com/a"})
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a", got)

	_, ok = r.ByDomain([]string{"not a url"})
	assert.False(t, ok)
}

func TestPrimary_OverrideThenDefault(t *testing.T) {
	r := NewResolver(Config{Overrides: map[string][]string{
		"Fund A": {"https://www.sebi.gov.in/fund-a"},
	}})
	assert.Equal(t, "https://www.sebi.gov.in/fund-a", r.Primary("fund a", nil))
	assert.Equal(t, DefaultEducationalURL, r.Primary("Fund B", nil))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "hdfc-large-and-mid-cap-fund", Slug("HDFC Large & Mid Cap Fund"))
	r := NewResolver(Config{FactsheetBaseURL: "https://example.com/f/"})
	assert.Equal(t, "https://example.com/f/fund-a", r.Factsheet("Fund A"))
}

func TestPrimary_AlwaysOneOfDeclared(t *testing.T) {
	r := NewResolver(Config{Overrides: map[string][]string{"x": {"https://www.sebi.gov.in/x"}}})
	assert.Equal(t, "local/doc.pdf", r.Primary("x", []string{"local/doc.pdf"}))
}
