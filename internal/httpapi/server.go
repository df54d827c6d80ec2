// Package httpapi exposes the query pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fundqa/internal/domain"
	"fundqa/internal/service"
)

// Querier is the part of the pipeline the HTTP layer needs.
type Querier interface {
	Query(ctx context.Context, question, product string, topK int) domain.Response
	ListProducts() []string
	Stats() service.Stats
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigin     string
	ServiceName    string
	Version        string
	RequestTimeout time.Duration
	DefaultTopK    int
	MaxTopK        int
}

func DefaultOptions() Options {
	return Options{
		CORSOrigin:     "*",
		ServiceName:    "fundqa",
		Version:        "1.0.0",
		RequestTimeout: 60 * time.Second,
		DefaultTopK:    3,
		MaxTopK:        10,
	}
}

const maxQuestionLen = 2000

// Server routes HTTP requests to a Querier.
type Server struct {
	q       Querier
	opts    Options
	log     *slog.Logger
	handler http.Handler
}

func NewServer(q Querier, opts Options, log *slog.Logger) *Server {
	def := DefaultOptions()
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = def.CORSOrigin
	}
	if opts.ServiceName == "" {
		opts.ServiceName = def.ServiceName
	}
	if opts.Version == "" {
		opts.Version = def.Version
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = def.RequestTimeout
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = def.MaxTopK
	}
	if opts.DefaultTopK <= 0 || opts.DefaultTopK > opts.MaxTopK {
		opts.DefaultTopK = min(def.DefaultTopK, opts.MaxTopK)
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{q: q, opts: opts, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors(opts.CORSOrigin))
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/", s.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/schemes", s.handleSchemes)
		r.Post("/query", s.handleQuery)
		r.Get("/query/simple", s.handleQuerySimple)
	})

	s.handler = traced(r, opts.ServiceName)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type queryRequest struct {
	Question string  `json:"question"`
	FundName *string `json:"fund_name,omitempty"`
	TopK     *int    `json:"top_k,omitempty"`
}

type queryResponse struct {
	domain.Response
	Query string `json:"query"`
}

type fundInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

type fundsResponse struct {
	Funds []fundInfo `json:"funds"`
	Total int        `json:"total"`
}

type healthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	RAGInitialized bool   `json:"rag_initialized"`
	ChunksLoaded   int    `json:"chunks_loaded"`
	FundsAvailable int    `json:"funds_available"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Mutual Fund FAQ API",
		"version": s.opts.Version,
		"endpoints": map[string]string{
			"/api/query":        "POST - Ask a factual question about a tracked fund",
			"/api/query/simple": "GET - Ask via ?question=",
			"/api/schemes":      "GET - List indexed schemes",
			"/api/health":       "GET - Health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.q.Stats()
	status := "healthy"
	if st.Passages == 0 {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, healthResponse{
		Status:         status,
		Version:        s.opts.Version,
		RAGInitialized: true,
		ChunksLoaded:   st.Passages,
		FundsAvailable: st.Products,
	})
}

func (s *Server) handleSchemes(w http.ResponseWriter, r *http.Request) {
	names := s.q.ListProducts()
	funds := make([]fundInfo, len(names))
	for i, n := range names {
		funds[i] = fundInfo{Name: n, Available: true}
	}
	respondJSON(w, http.StatusOK, fundsResponse{Funds: funds, Total: len(funds)})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	topK := s.opts.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	product := ""
	if req.FundName != nil {
		product = *req.FundName
	}
	if err := s.validate(req.Question, topK); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}
	resp := s.q.Query(r.Context(), req.Question, product, topK)
	respondJSON(w, http.StatusOK, queryResponse{Response: resp, Query: req.Question})
}

func (s *Server) handleQuerySimple(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	question := q.Get("question")
	topK := s.opts.DefaultTopK
	if raw := q.Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "top_k must be an integer", nil)
			return
		}
		topK = n
	}
	if err := s.validate(question, topK); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}
	resp := s.q.Query(r.Context(), question, q.Get("fund_name"), topK)
	respondJSON(w, http.StatusOK, queryResponse{Response: resp, Query: question})
}

func (s *Server) validate(question string, topK int) error {
	switch {
	case strings.TrimSpace(question) == "":
		return errors.New("question is required")
	case len(question) > maxQuestionLen:
		return errors.New("question is too long")
	case topK < 1 || topK > s.opts.MaxTopK:
		return errors.New("top_k must be between 1 and " + strconv.Itoa(s.opts.MaxTopK))
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["detail"] = err.Error()
	}
	respondJSON(w, status, response)
}
