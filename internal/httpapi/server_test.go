package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundqa/internal/domain"
	"fundqa/internal/service"
)

type call struct {
	question, product string
	topK              int
}

type fakeQuerier struct {
	calls []call
	resp  domain.Response
}

func (f *fakeQuerier) Query(_ context.Context, question, product string, topK int) domain.Response {
	f.calls = append(f.calls, call{question, product, topK})
	return f.resp
}

func (f *fakeQuerier) ListProducts() []string { return []string{"Fund A", "Fund B"} }

func (f *fakeQuerier) Stats() service.Stats {
	return service.Stats{Passages: 7, Products: 2, Vectorizer: "hash", Dimension: 128}
}

func newTestServer(q *fakeQuerier) *Server {
	return NewServer(q, Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleQuery(t *testing.T) {
	q := &fakeQuerier{resp: domain.Response{
		Answer:       "The exit load is 1%.",
		Sources:      []domain.Source{{ProductName: "Fund A", Category: domain.CategoryFees, Similarity: 0.81, PrimarySourceURL: "https://x"}},
		Confidence:   0.81,
		CitationLink: "https://x",
		Timestamp:    "2024-06-01",
	}}
	rec := do(t, newTestServer(q), http.MethodPost, "/api/query",
		`{"question":"What is the exit load?","fund_name":"Fund A","top_k":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, q.calls, 1)
	assert.Equal(t, call{"What is the exit load?", "Fund A", 2}, q.calls[0])

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "What is the exit load?", got["query"])
	assert.Equal(t, "https://x", got["citation_link"])
	assert.Equal(t, "2024-06-01", got["timestamp"])
	assert.Equal(t, false, got["rejected"])
	assert.NotContains(t, got, "rejection_reason")
	src := got["sources"].([]any)[0].(map[string]any)
	assert.Equal(t, "Fund A", src["fund_name"])
	assert.Equal(t, "fees", src["chunk_type"])
	assert.NotContains(t, src, "PrimarySourceURL")
}

func TestHandleQuery_RejectionHasNullTimestamp(t *testing.T) {
	q := &fakeQuerier{resp: domain.Response{
		Answer:          "I can only answer factual questions.",
		Sources:         []domain.Source{},
		Rejected:        true,
		RejectionReason: domain.RejectionOpinionated,
	}}
	rec := do(t, newTestServer(q), http.MethodPost, "/api/query", `{"question":"Should I buy Fund A?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Contains(t, got, "timestamp")
	assert.Nil(t, got["timestamp"])
	assert.Equal(t, "Should I buy Fund A?", got["query"])
	assert.Equal(t, "opinionated", got["rejection_reason"])
}

func TestHandleQuery_DefaultsTopK(t *testing.T) {
	q := &fakeQuerier{}
	rec := do(t, newTestServer(q), http.MethodPost, "/api/query", `{"question":"What is NAV?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, call{"What is NAV?", "", 3}, q.calls[0])
}

func TestHandleQuery_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing question", `{"top_k":3}`, http.StatusUnprocessableEntity},
		{"blank question", `{"question":"   "}`, http.StatusUnprocessableEntity},
		{"top_k too small", `{"question":"q","top_k":0}`, http.StatusUnprocessableEntity},
		{"top_k too large", `{"question":"q","top_k":11}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{}
			rec := do(t, newTestServer(q), http.MethodPost, "/api/query", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Empty(t, q.calls)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestHandleQuerySimple(t *testing.T) {
	q := &fakeQuerier{resp: domain.Response{Answer: "ok", Sources: []domain.Source{}}}
	srv := newTestServer(q)

	rec := do(t, srv, http.MethodGet, "/api/query/simple?question=What+is+NAV%3F", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, call{"What is NAV?", "", 3}, q.calls[0])
	assert.Contains(t, rec.Body.String(), `"query":"What is NAV?"`)

	rec = do(t, srv, http.MethodGet, "/api/query/simple", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/query/simple?question=x&top_k=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleSchemes(t *testing.T) {
	rec := do(t, newTestServer(&fakeQuerier{}), http.MethodGet, "/api/schemes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"funds":[{"name":"Fund A","available":true},{"name":"Fund B","available":true}],"total":2}`,
		rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	rec := do(t, newTestServer(&fakeQuerier{}), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"status":"healthy","version":"1.0.0","rag_initialized":true,"chunks_loaded":7,"funds_available":2}`,
		rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestServer(&fakeQuerier{}), http.MethodOptions, "/api/query", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverer(t *testing.T) {
	s := NewServer(panicQuerier{&fakeQuerier{}}, Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := do(t, s, http.MethodGet, "/api/schemes", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panicQuerier struct{ *fakeQuerier }

func (panicQuerier) ListProducts() []string { panic("boom") }
