package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundqa/internal/domain"
)

type fakePort struct {
	product string
	topK    int
}

func (f *fakePort) Query(_ context.Context, question, product string, topK int) domain.Response {
	f.product, f.topK = product, topK
	if question == "should i buy" {
		return domain.Response{Answer: "No advice.", Rejected: true, RejectionReason: domain.RejectionOpinionated}
	}
	return domain.Response{
		Answer:     "Exit load is 1%.",
		Confidence: 0.8,
		Sources:    []domain.Source{{ProductName: "Fund A", Category: domain.CategoryFees, Similarity: 0.8}},
	}
}

func (f *fakePort) ListProducts() []string { return []string{"Fund A"} }

func send(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModel_AskAndAnswer(t *testing.T) {
	port := &fakePort{}
	m := New(port, 3)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	m, cmd := send(t, m, "exit load of fund a")
	require.NotNil(t, cmd)
	require.Len(t, m.history, 1)
	assert.True(t, m.history[0].pending)
	assert.Empty(t, m.input.Value())

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.history[0].pending)
	assert.Equal(t, 3, port.topK)
	assert.Contains(t, m.renderTranscript(), "Exit load is 1%.")
	assert.Contains(t, m.renderTranscript(), "Fund A/fees 0.800")
	assert.Equal(t, "confidence=0.800", m.status)
}

func TestModel_Rejection(t *testing.T) {
	m := New(&fakePort{}, 0)
	m, cmd := send(t, m, "should i buy")
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "Rejected: opinionated", m.status)
}

func TestModel_Commands(t *testing.T) {
	port := &fakePort{}
	m := New(port, 0)

	m, cmd := send(t, m, "/product Fund A")
	assert.Nil(t, cmd)
	assert.Equal(t, "Fund A", m.product)

	m, cmd = send(t, m, "what is the nav")
	m.Update(cmd())
	assert.Equal(t, "Fund A", port.product)

	m, _ = send(t, m, "/products")
	assert.Equal(t, "Funds: Fund A", m.status)

	m, _ = send(t, m, "/clear")
	assert.Empty(t, m.history)

	m, _ = send(t, m, "/nope")
	assert.Contains(t, m.status, "Unknown command")
}

func TestModel_QuitKeys(t *testing.T) {
	_, cmd := New(&fakePort{}, 0).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
