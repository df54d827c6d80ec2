package main

import (
	"fmt"
	"log/slog"
	"os"

	"fundqa/internal/chunker"
	"fundqa/internal/classifier"
	"fundqa/internal/config"
	"fundqa/internal/domain"
	"fundqa/internal/embedding/hashing"
	"fundqa/internal/embedding/openai"
	"fundqa/internal/embedding/tfidf"
	"fundqa/internal/formatter"
	"fundqa/internal/generation"
	"fundqa/internal/records"
	"fundqa/internal/retriever"
	"fundqa/internal/service"
	"fundqa/internal/sources"
	"fundqa/internal/summarizer"
	"fundqa/internal/vectorcache"
)

// buildPipeline assembles every collaborator from cfg and builds the index.
// Any error is a start-up failure.
func buildPipeline(cfg *config.AppConfig, log *slog.Logger) (*service.Pipeline, error) {
	vec, err := newVectorizer(cfg.Vectorizer)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(cfg.Generator, log)
	if err != nil {
		return nil, err
	}
	cache, err := newCache(cfg.VectorCache, log)
	if err != nil {
		return nil, err
	}

	resolver := sources.NewResolver(sources.Config{
		DomainPriority:   cfg.Citation.DomainPriority,
		Overrides:        cfg.Overrides(),
		EducationalURL:   cfg.Citation.EducationalURL,
		FactsheetBaseURL: cfg.Citation.FactsheetBaseURL,
	})

	p, err := service.New(service.Deps{
		Records:    records.NewDir(cfg.Data.Dir, log),
		Chunker:    chunker.NewProductChunker(resolver),
		Vectorizer: vec,
		Cache:      cache,
		Classifier: classifier.New(classifier.Config{
			Products:           cfg.Products,
			SpecificIndicators: cfg.Classifier.SpecificIndicators,
		}),
		Retriever: retriever.New(retriever.Options{FuzzyThreshold: cfg.Retrieval.FuzzyThreshold}),
		Formatter: formatter.New(resolver, nil),
		Generator: gen,
	}, service.Options{
		DefaultTopK: cfg.Retrieval.TopK,
		MaxTopK:     cfg.Retrieval.MaxTopK,
	}, log)
	if err != nil {
		cache.Close()
		return nil, err
	}
	return p, nil
}

func newVectorizer(cfg config.VectorizerConfig) (domain.Vectorizer, error) {
	switch cfg.Type {
	case "hash", "":
		return hashing.NewEmbedder(cfg.Dimension), nil
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai vectorizer config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Timeout:    config.Seconds(cfg.OpenAI.TimeoutSecs),
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai vectorizer init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: vectorizer %q", config.ErrUnknownType, cfg.Type)
	}
}

func newCache(cfg config.VectorCacheConfig, log *slog.Logger) (domain.VectorCache, error) {
	switch cfg.Type {
	case "none", "":
		return vectorcache.Nop{}, nil
	case "file":
		return vectorcache.OpenFile(cfg.Path, log), nil
	case "sqlite":
		c, err := vectorcache.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open vector cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: vector cache %q", config.ErrUnknownType, cfg.Type)
	}
}

func newGenerator(cfg config.GeneratorConfig, log *slog.Logger) (domain.Generator, error) {
	var gen domain.Generator
	switch cfg.Type {
	case "extractive":
		// local and deterministic, nothing to retry
		return summarizer.NewExtractive(cfg.MaxLines), nil
	case "gemini", "":
		g, err := generation.NewGemini(generation.GeminiConfig{
			APIKey:  os.Getenv(cfg.APIKeyEnv),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: config.Seconds(cfg.TimeoutSecs),
		})
		if err != nil {
			return nil, fmt.Errorf("gemini generator (%s): %w", cfg.APIKeyEnv, err)
		}
		gen = g
	case "openai":
		g, err := generation.NewOpenAI(generation.OpenAIConfig{
			APIKey:      os.Getenv(cfg.APIKeyEnv),
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     config.Seconds(cfg.TimeoutSecs),
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("openai generator (%s): %w", cfg.APIKeyEnv, err)
		}
		gen = g
	default:
		return nil, fmt.Errorf("%w: generator %q", config.ErrUnknownType, cfg.Type)
	}
	return generation.WithRetry(gen, generation.RetryConfig{
		Attempts:  cfg.Retry.Attempts,
		BaseDelay: config.Seconds(cfg.Retry.BaseDelaySecs),
	}, log), nil
}
