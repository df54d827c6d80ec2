package summarizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundqa/internal/prompt"
)

const ctxBlock = "[Source: Fund A - fees]\nFees and Charges for Fund A:\n" +
	"Expense Ratio - Direct Plan: 0.5%\nExpense Ratio - Regular Plan: 1.1%\nAs on Date: 2024-01-31\nExit Load: 1%\n\n" +
	"[Source: Fund A - identity]\nFund Name: Fund A\nCategory: Equity"

func TestExtractive_PicksMatchingLinesInOrder(t *testing.T) {
	out, err := NewExtractive(3).Generate(context.Background(), prompt.Grounded("What is the expense ratio of Fund A?", ctxBlock))
	require.NoError(t, err)
	assert.Equal(t, "Expense Ratio - Direct Plan: 0.5%. Expense Ratio - Regular Plan: 1.1%.", out)
}

func TestExtractive_RespectsLineCap(t *testing.T) {
	out, err := NewExtractive(1).Generate(context.Background(), prompt.Grounded("exit load", ctxBlock))
	require.NoError(t, err)
	assert.Equal(t, "Exit Load: 1%.", out)
}

func TestExtractive_NoOverlap(t *testing.T) {
	out, err := NewExtractive(3).Generate(context.Background(), prompt.Grounded("lock-in period?", ctxBlock))
	require.NoError(t, err)
	assert.Equal(t, noMatchReply, out)
}

func TestExtractive_OtherBranches(t *testing.T) {
	g := NewExtractive(0)
	out, err := g.Generate(context.Background(), prompt.Greeting("hi"))
	require.NoError(t, err)
	assert.Equal(t, greetingReply, out)

	out, err = g.Generate(context.Background(), prompt.General("What is NAV?"))
	require.NoError(t, err)
	assert.Equal(t, generalReply, out)
}
