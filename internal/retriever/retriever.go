// Package retriever ranks passages for a question by combining vector
// similarity with keyword and intent boosts.
package retriever

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"fundqa/internal/domain"
	"fundqa/internal/embedding"
)

const (
	DefaultTopK           = 3
	DefaultFuzzyThreshold = 0.6
	termBoost             = 0.3
	intentBoost           = 0.2
)

var importantTerms = compileTerms(
	"expense ratio", "exit load", "minimum sip", "lock-in",
	"riskometer", "benchmark", "nav", "aum",
)

// intentRule maps question cues to the category the asker most likely
// wants. Only the first matching rule counts.
type intentRule struct {
	cues     []string
	category domain.Category
}

var intentRules = []intentRule{
	{[]string{"expense", "ratio"}, domain.CategoryFees},
	{[]string{"exit load"}, domain.CategoryFees},
	{[]string{"sip", "minimum"}, domain.CategoryInvestmentTerms},
	{[]string{"lock"}, domain.CategoryInvestmentTerms},
	{[]string{"riskometer", "benchmark"}, domain.CategoryRiskPerformance},
}

var fuzzyStopwords = map[string]struct{}{"the": {}, "fund": {}, "mutual": {}}

// Options tunes retrieval.
type Options struct {
	FuzzyThreshold float64
}

// Retriever is stateless apart from its options and safe for concurrent use.
type Retriever struct {
	threshold float64
}

func New(opts Options) *Retriever {
	if opts.FuzzyThreshold <= 0 || opts.FuzzyThreshold > 1 {
		opts.FuzzyThreshold = DefaultFuzzyThreshold
	}
	return &Retriever{threshold: opts.FuzzyThreshold}
}

// Search scores every passage and returns at most topK results ordered by
// combined score, ties kept in passage order.
func (r *Retriever) Search(question string, qvec []float64, passages []domain.Passage, topK int) []domain.RetrievalResult {
	if topK <= 0 {
		topK = DefaultTopK
	}
	q := strings.ToLower(question)
	intent, hasIntent := detectIntent(q)

	results := make([]domain.RetrievalResult, 0, len(passages))
	for _, p := range passages {
		sem := embedding.Similarity(qvec, p.Vector)
		boost := 0.0
		text := strings.ToLower(p.Text)
		for _, t := range importantTerms {
			if t.MatchString(q) && t.MatchString(text) {
				boost += termBoost
			}
		}
		if hasIntent && p.Category == intent {
			boost += intentBoost
		}
		results = append(results, domain.RetrievalResult{
			Passage:       p,
			SemanticScore: sem,
			KeywordBoost:  boost,
			CombinedScore: math.Min(1, sem+boost),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CombinedScore > results[j].CombinedScore
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// FilterByProduct narrows passages to product: case-insensitive substring
// first, then fuzzy token overlap, then the full set when nothing matches.
// An empty product returns passages unchanged.
func (r *Retriever) FilterByProduct(product string, passages []domain.Passage) []domain.Passage {
	product = strings.TrimSpace(product)
	if product == "" {
		return passages
	}
	want := strings.ToLower(product)
	var exact []domain.Passage
	for _, p := range passages {
		if strings.Contains(strings.ToLower(p.ProductName), want) {
			exact = append(exact, p)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	var fuzzy []domain.Passage
	for _, p := range passages {
		if r.FuzzyMatch(product, p.ProductName) {
			fuzzy = append(fuzzy, p)
		}
	}
	if len(fuzzy) > 0 {
		return fuzzy
	}
	return passages
}

// FuzzyMatch reports whether enough of the query name's significant tokens
// appear in the candidate name.
func (r *Retriever) FuzzyMatch(query, candidate string) bool {
	qt := significantTokens(query)
	if len(qt) == 0 {
		return false
	}
	ct := significantTokens(candidate)
	hit := 0
	for t := range qt {
		if _, ok := ct[t]; ok {
			hit++
		}
	}
	return float64(hit)/float64(len(qt)) >= r.threshold
}

func significantTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if _, stop := fuzzyStopwords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func detectIntent(q string) (domain.Category, bool) {
	for _, rule := range intentRules {
		for _, cue := range rule.cues {
			if strings.Contains(q, cue) {
				return rule.category, true
			}
		}
	}
	return "", false
}

func compileTerms(terms ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return out
}
