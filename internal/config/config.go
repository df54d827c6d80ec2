package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"fundqa/internal/domain"
)

// ErrUnknownType is returned when a component type is not recognised.
var ErrUnknownType = errors.New("config: unknown type")

// DataConfig points at the scraped product records.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// VectorizerConfig selects and configures the text vectorizer.
type VectorizerConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorCacheConfig selects where computed vectors are persisted.
type VectorCacheConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// RetryConfig controls rate-limit retries of the generator.
type RetryConfig struct {
	Attempts      int `yaml:"attempts"`
	BaseDelaySecs int `yaml:"base_delay_secs"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type        string      `yaml:"type"`
	APIKeyEnv   string      `yaml:"api_key_env,omitempty"`
	Model       string      `yaml:"model,omitempty"`
	BaseURL     string      `yaml:"base_url,omitempty"`
	TimeoutSecs int         `yaml:"timeout_secs"`
	Temperature float64     `yaml:"temperature,omitempty"`
	MaxLines    int         `yaml:"max_lines,omitempty"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetrievalConfig tunes hybrid search.
type RetrievalConfig struct {
	TopK           int     `yaml:"top_k"`
	MaxTopK        int     `yaml:"max_top_k"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// CitationConfig tunes citation URL selection.
type CitationConfig struct {
	DomainPriority   []string `yaml:"domain_priority"`
	EducationalURL   string   `yaml:"educational_url"`
	FactsheetBaseURL string   `yaml:"factsheet_base_url"`
}

// ClassifierConfig extends the built-in classifier tables.
type ClassifierConfig struct {
	SpecificIndicators []string `yaml:"specific_indicators,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr               string `yaml:"addr"`
	CORSOrigin         string `yaml:"cors_origin"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data        DataConfig        `yaml:"data"`
	Vectorizer  VectorizerConfig  `yaml:"vectorizer"`
	VectorCache VectorCacheConfig `yaml:"vector_cache"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Citation    CitationConfig    `yaml:"citation"`
	Products    []domain.Product  `yaml:"products"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// Validate checks the component type selectors.
func (c *AppConfig) Validate() error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"vectorizer.type", c.Vectorizer.Type, []string{"hash", "tfidf", "openai"}},
		{"vector_cache.type", c.VectorCache.Type, []string{"none", "file", "sqlite"}},
		{"generator.type", c.Generator.Type, []string{"gemini", "openai", "extractive"}},
		{"log.format", c.Log.Format, []string{"text", "json"}},
	}
	for _, ch := range checks {
		ok := false
		for _, a := range ch.allowed {
			if ch.value == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: %s=%q", ErrUnknownType, ch.field, ch.value)
		}
	}
	if c.Retrieval.TopK > c.Retrieval.MaxTopK {
		return fmt.Errorf("config: retrieval.top_k %d exceeds max_top_k %d", c.Retrieval.TopK, c.Retrieval.MaxTopK)
	}
	return nil
}

// Overrides returns the per-product citation override table.
func (c *AppConfig) Overrides() map[string][]string {
	out := make(map[string][]string)
	for _, p := range c.Products {
		if len(p.SourceURLs) > 0 {
			out[p.Name] = p.SourceURLs
		}
	}
	return out
}

// Seconds converts a config seconds field to a duration.
func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/fundqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/fundqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fundqa", "config.yaml"), nil
}

// DefaultProducts is the tracked fund catalog.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{
			Name:       "HDFC Large and Mid Cap Fund",
			Aliases:    []string{"hdfc large and mid cap fund", "hdfc large and mid cap", "large and mid cap fund", "large and mid cap"},
			SourceURLs: []string{"https://www.hdfcfund.com/explore/mutual-funds/hdfc-large-and-mid-cap-fund/direct"},
		},
		{
			Name:       "HDFC Flexi Cap Fund",
			Aliases:    []string{"hdfc flexi cap fund", "hdfc flexi cap", "flexi cap fund", "flexi cap"},
			SourceURLs: []string{"https://www.hdfcfund.com/explore/mutual-funds/hdfc-flexi-cap-fund/direct"},
		},
		{
			Name:       "HDFC ELSS Tax Saver Fund",
			Aliases:    []string{"hdfc elss tax saver fund", "hdfc elss tax saver", "hdfc elss fund", "hdfc elss", "elss tax saver", "elss"},
			SourceURLs: []string{"https://www.hdfcfund.com/explore/mutual-funds/hdfc-elss-tax-saver/direct"},
		},
	}
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Data:        DataConfig{Dir: "data/scraped"},
		Vectorizer:  VectorizerConfig{Type: "hash", Dimension: 128},
		VectorCache: VectorCacheConfig{Type: "none"},
		Generator: GeneratorConfig{
			Type:        "gemini",
			APIKeyEnv:   "GEMINI_API_KEY",
			TimeoutSecs: 30,
			Retry:       RetryConfig{Attempts: 3, BaseDelaySecs: 2},
		},
		Retrieval: RetrievalConfig{TopK: 3, MaxTopK: 10, FuzzyThreshold: 0.6},
		Citation: CitationConfig{
			DomainPriority:   []string{"hdfcfund.com", "sebi.gov.in", "amfiindia.com", "groww.in"},
			EducationalURL:   "https://groww.in/p/mutual-funds",
			FactsheetBaseURL: "https://groww.in/mutual-funds",
		},
		Products: DefaultProducts(),
		Server:   ServerConfig{Addr: ":8000", CORSOrigin: "*", RequestTimeoutSecs: 60},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = def.Data.Dir
	}
	if cfg.Vectorizer.Type == "" {
		cfg.Vectorizer.Type = def.Vectorizer.Type
	}
	if cfg.Vectorizer.Type == "hash" && cfg.Vectorizer.Dimension == 0 {
		cfg.Vectorizer.Dimension = def.Vectorizer.Dimension
	}
	if cfg.Vectorizer.Type == "openai" {
		if cfg.Vectorizer.OpenAI == nil {
			cfg.Vectorizer.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Vectorizer.OpenAI.BaseURL == "" {
			cfg.Vectorizer.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Vectorizer.OpenAI.APIKeyEnv == "" {
			cfg.Vectorizer.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Vectorizer.OpenAI.Model == "" {
			cfg.Vectorizer.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Vectorizer.OpenAI.TimeoutSecs == 0 {
			cfg.Vectorizer.OpenAI.TimeoutSecs = 30
		}
		if cfg.Vectorizer.OpenAI.MaxRetries == 0 {
			cfg.Vectorizer.OpenAI.MaxRetries = 3
		}
	}
	if cfg.VectorCache.Type == "" {
		cfg.VectorCache.Type = "none"
	}
	// kept beside the data dir so the records loader never sees it
	if cfg.VectorCache.Path == "" {
		cacheDir := filepath.Join(filepath.Dir(filepath.Clean(cfg.Data.Dir)), "cache")
		switch cfg.VectorCache.Type {
		case "file":
			cfg.VectorCache.Path = filepath.Join(cacheDir, "vectors.json")
		case "sqlite":
			cfg.VectorCache.Path = filepath.Join(cacheDir, "vectors.db")
		}
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = def.Generator.Type
	}
	if cfg.Generator.APIKeyEnv == "" {
		switch cfg.Generator.Type {
		case "gemini":
			cfg.Generator.APIKeyEnv = "GEMINI_API_KEY"
		case "openai":
			cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
	if cfg.Generator.Retry.Attempts == 0 {
		cfg.Generator.Retry.Attempts = def.Generator.Retry.Attempts
	}
	if cfg.Generator.Retry.BaseDelaySecs == 0 {
		cfg.Generator.Retry.BaseDelaySecs = def.Generator.Retry.BaseDelaySecs
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = def.Retrieval.MaxTopK
	}
	if cfg.Retrieval.FuzzyThreshold == 0 {
		cfg.Retrieval.FuzzyThreshold = def.Retrieval.FuzzyThreshold
	}
	if len(cfg.Citation.DomainPriority) == 0 {
		cfg.Citation.DomainPriority = def.Citation.DomainPriority
	}
	if cfg.Citation.EducationalURL == "" {
		cfg.Citation.EducationalURL = def.Citation.EducationalURL
	}
	if cfg.Citation.FactsheetBaseURL == "" {
		cfg.Citation.FactsheetBaseURL = def.Citation.FactsheetBaseURL
	}
	if cfg.Products == nil {
		cfg.Products = def.Products
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = def.Server.CORSOrigin
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = def.Server.RequestTimeoutSecs
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}
