// Package classifier decides whether a question may be answered. Policy is
// expressed as ordered rule tables in rules.go; this file only evaluates them.
package classifier

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"fundqa/internal/domain"
)

// Config supplies the product catalog used for alias extraction and for
// telling general questions apart from product questions.
type Config struct {
	Products           []domain.Product
	SpecificIndicators []string
}

type alias struct {
	text      string
	canonical string
	rule      rule
}

// Classifier evaluates the policy tables. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	aliases    []alias
	indicators table
}

// New builds a Classifier. Nil indicators fall back to DefaultSpecificIndicators.
func New(cfg Config) *Classifier {
	ind := cfg.SpecificIndicators
	if ind == nil {
		ind = DefaultSpecificIndicators
	}
	c := &Classifier{}
	seen := make(map[string]struct{})
	addAlias := func(text, canonical string) {
		text = normalize(text)
		if text == "" {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		c.aliases = append(c.aliases, alias{text: text, canonical: canonical, rule: phrase("product", text)})
	}
	for _, p := range cfg.Products {
		addAlias(p.Name, p.Name)
		for _, a := range p.Aliases {
			addAlias(a, p.Name)
		}
	}
	// Longest alias wins so "hdfc elss tax saver" beats "hdfc elss".
	sort.SliceStable(c.aliases, func(i, j int) bool { return len(c.aliases[i].text) > len(c.aliases[j].text) })

	var rules []rule
	for _, i := range ind {
		if i = normalize(i); i != "" {
			rules = append(rules, phrase("indicator", i))
		}
	}
	for _, a := range c.aliases {
		rules = append(rules, a.rule)
	}
	c.indicators = rules
	return c
}

// Classify computes every flag for question and derives the verdict.
// PII dominates the rejection reason, then opinion, then factual-ness.
func (c *Classifier) Classify(question string) domain.QueryDecision {
	q := normalize(question)
	d := domain.QueryDecision{
		IsGreeting:    greetingRules.any(q),
		IsFactual:     isFactual(q),
		IsOpinionated: isOpinionated(q),
	}
	for _, r := range piiRules {
		if r.re.MatchString(question) {
			if d.PIIFlags == nil {
				d.PIIFlags = make(map[domain.PIIKind]bool)
			}
			d.PIIFlags[r.kind] = true
		}
	}
	switch {
	case d.HasPII():
		d.RejectionReason = domain.RejectionPII
	case d.IsOpinionated:
		d.RejectionReason = domain.RejectionOpinionated
	case !d.IsFactual:
		d.RejectionReason = domain.RejectionNotFactual
	}
	d.CanAnswer = d.RejectionReason == domain.RejectionNone
	return d
}

// IsGreeting reports whether question contains a greeting phrase.
func (c *Classifier) IsGreeting(question string) bool {
	return greetingRules.any(normalize(question))
}

// IsGeneralFinanceQuestion reports whether question is an educational
// finance question that names no tracked product.
func (c *Classifier) IsGeneralFinanceQuestion(question string) bool {
	q := normalize(question)
	if c.indicators.any(q) {
		return false
	}
	return generalPatterns.any(q) && financeTerms.any(q)
}

// ExtractProduct maps a known alias in question to its canonical product name.
func (c *Classifier) ExtractProduct(question string) (string, bool) {
	q := normalize(question)
	for _, a := range c.aliases {
		if a.rule.match(q) {
			return a.canonical, true
		}
	}
	return "", false
}

func isFactual(q string) bool {
	return factualRules.any(q) || startsWithQuestionWord(q)
}

func isOpinionated(q string) bool {
	if factualExclusions.any(q) {
		return false
	}
	return opinionRules.any(q)
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(s)))
}
