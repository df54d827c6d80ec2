// Package service holds the query pipeline: classify, route, retrieve,
// generate and format. A Pipeline is built once at start-up and shared by
// every transport.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"fundqa/internal/classifier"
	"fundqa/internal/domain"
	"fundqa/internal/formatter"
	"fundqa/internal/generation"
	"fundqa/internal/prompt"
	"fundqa/internal/retriever"
	"fundqa/internal/vectorstore"
	"fundqa/internal/vectorstore/memory"
)

const (
	GreetingConfidence = 0.5
	GeneralConfidence  = 0.7

	NoInformationMessage = "I couldn't find relevant information to answer your question. Please ensure your question is about factual information like expense ratios, exit loads, minimum SIP amounts, lock-in periods, riskometer ratings, benchmarks, or how to download statements. How else can I help you?"
)

// Deps are the collaborators a Pipeline is assembled from.
type Deps struct {
	Records    domain.RecordSource
	Chunker    domain.Chunker
	Vectorizer domain.Vectorizer
	Cache      domain.VectorCache
	Classifier *classifier.Classifier
	Retriever  *retriever.Retriever
	Formatter  *formatter.Formatter
	Generator  domain.Generator
}

// Options tune query handling.
type Options struct {
	DefaultTopK int
	MaxTopK     int
}

func DefaultOptions() Options {
	return Options{DefaultTopK: retriever.DefaultTopK, MaxTopK: 10}
}

// Stats describes the built index.
type Stats struct {
	Passages   int
	Products   int
	Vectorizer string
	Dimension  int
}

// Pipeline answers questions over an immutable passage index. It is safe
// for concurrent use.
type Pipeline struct {
	index      vectorstore.Index
	vectorizer domain.Vectorizer
	cache      domain.VectorCache
	classifier *classifier.Classifier
	retriever  *retriever.Retriever
	formatter  *formatter.Formatter
	generator  domain.Generator
	opts       Options
	logger     *slog.Logger
}

// New loads records and builds the index. Errors here are configuration or
// ingestion failures and should stop the process.
func New(deps Deps, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case deps.Records == nil:
		return nil, errors.New("service: record source is required")
	case deps.Chunker == nil, deps.Vectorizer == nil:
		return nil, errors.New("service: chunker and vectorizer are required")
	case deps.Generator == nil:
		return nil, errors.New("service: generator is required")
	}
	if deps.Classifier == nil {
		deps.Classifier = classifier.New(classifier.Config{})
	}
	if deps.Retriever == nil {
		deps.Retriever = retriever.New(retriever.Options{})
	}
	if deps.Formatter == nil {
		deps.Formatter = formatter.New(nil, nil)
	}
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = DefaultOptions().DefaultTopK
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = DefaultOptions().MaxTopK
	}

	recs, err := deps.Records.Records()
	if err != nil {
		return nil, fmt.Errorf("service: load records: %w", err)
	}
	idx, err := memory.Build(recs, memory.BuildOptions{
		Chunker:    deps.Chunker,
		Vectorizer: deps.Vectorizer,
		Cache:      deps.Cache,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("service: build index: %w", err)
	}
	return &Pipeline{
		index:      idx,
		vectorizer: deps.Vectorizer,
		cache:      deps.Cache,
		classifier: deps.Classifier,
		retriever:  deps.Retriever,
		formatter:  deps.Formatter,
		generator:  deps.Generator,
		opts:       opts,
		logger:     logger,
	}, nil
}

// Close releases the vector cache.
func (p *Pipeline) Close() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Close()
}

// ListProducts returns the distinct product names in the index.
func (p *Pipeline) ListProducts() []string {
	return append([]string(nil), p.index.Products()...)
}

func (p *Pipeline) Stats() Stats {
	return Stats{
		Passages:   p.index.Len(),
		Products:   len(p.index.Products()),
		Vectorizer: p.vectorizer.Name(),
		Dimension:  p.index.Dimension(),
	}
}

// Query answers one question. It never fails: every outcome, including
// policy rejections and upstream errors, is a well-formed Response.
func (p *Pipeline) Query(ctx context.Context, question, product string, topK int) domain.Response {
	log := p.logger.With("query_id", uuid.NewString())
	question = strings.TrimSpace(question)
	product = strings.TrimSpace(product)
	topK = p.clampTopK(topK)

	d := p.classifier.Classify(question)

	if d.IsGreeting && !d.HasPII() {
		log.Info("query routed", "branch", "greeting")
		return p.greeting(ctx, log, question)
	}
	if !d.CanAnswer {
		log.Info("query routed", "branch", "rejected", "reason", d.RejectionReason)
		f := p.formatter.Rejection(d.RejectionReason)
		return domain.Response{
			Answer:          f.Answer,
			Sources:         []domain.Source{},
			CitationLink:    f.CitationLink,
			Rejected:        true,
			RejectionReason: d.RejectionReason,
		}
	}

	if product == "" {
		if name, ok := p.classifier.ExtractProduct(question); ok {
			product = name
		} else if p.classifier.IsGeneralFinanceQuestion(question) {
			log.Info("query routed", "branch", "general")
			return p.general(ctx, log, question)
		}
	}
	log.Info("query routed", "branch", "product", "product", product, "top_k", topK)
	return p.grounded(ctx, log, question, product, topK)
}

func (p *Pipeline) greeting(ctx context.Context, log *slog.Logger, question string) domain.Response {
	text, err := p.generator.Generate(ctx, prompt.Greeting(question))
	if resp, failed := p.failed(log, text, err); failed {
		return resp
	}
	f := p.formatter.Format(text, nil, "", true)
	return domain.Response{Answer: f.Answer, Sources: []domain.Source{}, Confidence: GreetingConfidence}
}

func (p *Pipeline) general(ctx context.Context, log *slog.Logger, question string) domain.Response {
	text, err := p.generator.Generate(ctx, prompt.General(question))
	if resp, failed := p.failed(log, text, err); failed {
		return resp
	}
	f := p.formatter.Format(text, nil, "", false)
	return domain.Response{Answer: f.Answer, Sources: []domain.Source{}, Confidence: GeneralConfidence}
}

func (p *Pipeline) grounded(ctx context.Context, log *slog.Logger, question, product string, topK int) domain.Response {
	candidates := p.retriever.FilterByProduct(product, p.index.Passages())
	if len(candidates) == 0 {
		log.Info("no passages to search")
		return failure(NoInformationMessage)
	}
	qvec, err := p.vectorizer.Embed(question)
	if err != nil {
		log.Error("query embedding failed", "error", err)
		return failure(generation.FailureMessage)
	}
	results := p.retriever.Search(question, qvec, candidates, topK)
	if len(results) == 0 {
		return failure(NoInformationMessage)
	}

	text, err := p.generator.Generate(ctx, prompt.Grounded(question, prompt.Context(results)))
	if resp, failed := p.failed(log, text, err); failed {
		return resp
	}

	srcs := make([]domain.Source, len(results))
	for i, r := range results {
		srcs[i] = domain.Source{
			ProductName:      r.Passage.ProductName,
			Category:         r.Passage.Category,
			Similarity:       round3(r.CombinedScore),
			PrimarySourceURL: r.Passage.PrimarySourceURL,
			SourceURLs:       r.Passage.SourceURLs,
		}
	}
	f := p.formatter.Format(text, srcs, product, false)
	confidence := round3(results[0].CombinedScore)
	log.Info("query answered", "retrieved", len(results), "confidence", confidence, "cited", f.CitationLink != "")
	return domain.Response{
		Answer:       f.Answer,
		Sources:      f.Sources,
		Confidence:   confidence,
		CitationLink: f.CitationLink,
		Timestamp:    domain.AsOfDate(f.Timestamp),
	}
}

// failed converts a generation error, or generated text that merely relays
// an upstream error, into an uncited zero-confidence response.
func (p *Pipeline) failed(log *slog.Logger, text string, err error) (domain.Response, bool) {
	if err != nil {
		log.Error("generation failed", "error", err)
		return failure(generation.UserMessage(err)), true
	}
	if generation.LooksLikeError(text) {
		log.Warn("generated text looks like an upstream error")
		return failure(formatter.LimitSentences(text, formatter.MaxSentences)), true
	}
	return domain.Response{}, false
}

func failure(msg string) domain.Response {
	return domain.Response{Answer: msg, Sources: []domain.Source{}}
}

func (p *Pipeline) clampTopK(k int) int {
	if k <= 0 {
		return p.opts.DefaultTopK
	}
	if k > p.opts.MaxTopK {
		return p.opts.MaxTopK
	}
	return k
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
