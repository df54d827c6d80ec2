package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fundqa/internal/domain"
)

// QueryPort is the TUI-facing subset of the pipeline.
type QueryPort interface {
	Query(ctx context.Context, question, product string, topK int) domain.Response
	ListProducts() []string
}

type exchange struct {
	question string
	resp     domain.Response
	pending  bool
}

type answerMsg struct {
	idx  int
	resp domain.Response
}

// Model is the Bubble Tea model for the interactive chat.
type Model struct {
	service  QueryPort
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	product  string
	topK     int
	timeout  time.Duration
	status   string
	ready    bool
}

// New creates a chat model. topK <= 0 lets the pipeline pick its default.
func New(service QueryPort, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about a fund, /product <name>, /products, /clear"
	ti.Focus()
	ti.CharLimit = 500
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		topK:     topK,
		timeout:  90 * time.Second,
		status:   fmt.Sprintf("%d funds indexed. Ask a factual question.", len(service.ListProducts())),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around transcript and input boxes
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.refresh()
		return m, nil
	case answerMsg:
		if msg.idx < len(m.history) {
			m.history[msg.idx] = exchange{question: m.history[msg.idx].question, resp: msg.resp}
		}
		m.status = statusFor(msg.resp)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			if strings.HasPrefix(text, "/") {
				m.command(text)
				m.refresh()
				return m, nil
			}
			m.history = append(m.history, exchange{question: text, pending: true})
			m.status = "Thinking..."
			m.refresh()
			return m, m.ask(len(m.history)-1, text)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(idx int, question string) tea.Cmd {
	svc, product, topK, timeout := m.service, m.product, m.topK, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return answerMsg{idx: idx, resp: svc.Query(ctx, question, product, topK)}
	}
}

func (m *Model) command(text string) {
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/product":
		m.product = arg
		if arg == "" {
			m.status = "Product filter cleared."
		} else {
			m.status = fmt.Sprintf("Product filter: %s", arg)
		}
	case "/products":
		m.status = "Funds: " + strings.Join(m.service.ListProducts(), ", ")
	case "/clear":
		m.history = nil
		m.status = "Cleared."
	default:
		m.status = "Unknown command " + name
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Mutual Fund FAQ"
	if m.product != "" {
		title += "  [" + m.product + "]"
	}
	header := lipgloss.NewStyle().Bold(true).Render(title)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, e := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(youStyle.Render("You: "))
		b.WriteString(e.question)
		b.WriteString("\n")
		if e.pending {
			b.WriteString(mutedStyle.Render("..."))
			continue
		}
		if e.resp.Rejected {
			b.WriteString(rejectedStyle.Render(e.resp.Answer))
		} else {
			b.WriteString(e.resp.Answer)
		}
		if len(e.resp.Sources) > 0 {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(renderSources(e.resp.Sources)))
		}
	}
	return b.String()
}

func renderSources(srcs []domain.Source) string {
	parts := make([]string, len(srcs))
	for i, s := range srcs {
		parts[i] = fmt.Sprintf("%s/%s %.3f", s.ProductName, s.Category, s.Similarity)
	}
	return "sources: " + strings.Join(parts, ", ")
}

func statusFor(r domain.Response) string {
	if r.Rejected {
		return "Rejected: " + string(r.RejectionReason)
	}
	return fmt.Sprintf("confidence=%.3f", r.Confidence)
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	youStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	rejectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
