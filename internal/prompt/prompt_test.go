package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fundqa/internal/domain"
)

func TestContext(t *testing.T) {
	got := Context([]domain.RetrievalResult{
		{Passage: domain.Passage{ProductName: "Fund A", Category: domain.CategoryFees, Text: "Fees and Charges for Fund A:\nExit Load: 1%"}},
		{Passage: domain.Passage{ProductName: "Fund A", Category: domain.CategoryIdentity, Text: "Fund Name: Fund A"}},
	})
	assert.Equal(t,
		"[Source: Fund A - fees]\nFees and Charges for Fund A:\nExit Load: 1%\n\n[Source: Fund A - identity]\nFund Name: Fund A",
		got)
}

func TestParse_RoundTrip(t *testing.T) {
	kind, q, c := Parse(Greeting("Hello"))
	assert.Equal(t, KindGreeting, kind)
	assert.Equal(t, "Hello", q)
	assert.Empty(t, c)

	kind, q, c = Parse(General("What is NAV?"))
	assert.Equal(t, KindGeneral, kind)
	assert.Equal(t, "What is NAV?", q)
	assert.Empty(t, c)

	ctx := "[Source: Fund A - fees]\nExit Load: 1%\n\n[Source: Fund A - identity]\nFund Name: Fund A"
	kind, q, c = Parse(Grounded("What is the exit load?", ctx))
	assert.Equal(t, KindGrounded, kind)
	assert.Equal(t, "What is the exit load?", q)
	assert.Equal(t, ctx, c)
}

func TestGrounded_CarriesConstraints(t *testing.T) {
	p := Grounded("q", "ctx")
	assert.Contains(t, p, "maximum of 3 sentences")
	assert.Contains(t, p, "Direct Plan and Regular Plan")
	assert.Contains(t, p, "ONLY from the context")
}
