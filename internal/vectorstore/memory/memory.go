package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"fundqa/internal/domain"
	"fundqa/internal/vectorcache"
	"fundqa/internal/vectorstore"
)

var _ vectorstore.Index = (*Index)(nil)

// Index is an in-memory passage index. Vectors are attached during Build and
// nothing is mutated afterwards, so concurrent queries need no locking.
type Index struct {
	dimension int
	passages  []domain.Passage
	products  []string
}

// BuildOptions carries the collaborators used to build an Index.
type BuildOptions struct {
	Chunker    domain.Chunker
	Vectorizer domain.Vectorizer
	Cache      domain.VectorCache
	Logger     *slog.Logger
}

// Build renders every record into passages, prepares the vectorizer over the
// passage corpus and embeds each passage, reusing cached vectors whose width
// matches the vectorizer.
func Build(records []domain.ProductRecord, opts BuildOptions) (*Index, error) {
	if opts.Chunker == nil || opts.Vectorizer == nil {
		return nil, errors.New("memory: chunker and vectorizer are required")
	}
	if opts.Cache == nil {
		opts.Cache = vectorcache.Nop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var passages []domain.Passage
	for _, r := range records {
		passages = append(passages, opts.Chunker.Render(r)...)
	}
	idx := &Index{passages: passages, products: distinctProducts(passages)}
	if len(passages) == 0 {
		logger.Warn("index built with no passages", "records", len(records))
		return idx, nil
	}

	corpus := make([]string, len(passages))
	for i, p := range passages {
		corpus[i] = p.Text
	}
	if err := opts.Vectorizer.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("memory: prepare vectorizer: %w", err)
	}

	name := opts.Vectorizer.Name()
	hits := 0
	for i := range idx.passages {
		p := &idx.passages[i]
		key := vectorcache.Key(name, p.Text)
		if v, ok := opts.Cache.Get(key); ok && len(v) == opts.Vectorizer.Dimension() {
			p.Vector = v
			hits++
			continue
		}
		v, err := opts.Vectorizer.Embed(p.Text)
		if err != nil {
			return nil, fmt.Errorf("memory: embed passage %d (%s/%s): %w", i, p.ProductName, p.Category, err)
		}
		p.Vector = v
		opts.Cache.Put(key, v)
	}
	idx.dimension = opts.Vectorizer.Dimension()
	for _, p := range idx.passages {
		if len(p.Vector) != idx.dimension {
			return nil, fmt.Errorf("memory: vector dimension mismatch: got %d, want %d", len(p.Vector), idx.dimension)
		}
	}
	if err := opts.Cache.Save(); err != nil {
		logger.Warn("vector cache save failed", "error", err)
	}
	logger.Info("index built",
		"records", len(records),
		"passages", len(idx.passages),
		"products", len(idx.products),
		"vectorizer", name,
		"dimension", idx.dimension,
		"cache_hits", hits,
	)
	return idx, nil
}

// Passages returns the indexed passages. Callers must not modify them.
func (x *Index) Passages() []domain.Passage { return x.passages }

// Products returns distinct product names, sorted.
func (x *Index) Products() []string { return x.products }

func (x *Index) Len() int { return len(x.passages) }

// Dimension returns the shared vector width, 0 for an empty index.
func (x *Index) Dimension() int { return x.dimension }

func distinctProducts(passages []domain.Passage) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range passages {
		if _, ok := seen[p.ProductName]; ok {
			continue
		}
		seen[p.ProductName] = struct{}{}
		out = append(out, p.ProductName)
	}
	sort.Strings(out)
	return out
}
