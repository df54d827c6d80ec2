// Package summarizer answers from retrieved context without a remote model by
// ranking context lines against the question. It serves offline runs and
// local development.
package summarizer

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"fundqa/internal/prompt"
)

const (
	greetingReply = "Hello! How can I help you with information about mutual funds today?"
	generalReply  = "I can explain fund facts from indexed documents in offline mode. Ask about a fund's expense ratio, exit load, minimum SIP, lock-in period, riskometer or benchmark."
	noMatchReply  = "The provided context does not contain this information."
)

// Extractive implements domain.Generator by selecting the context lines that
// best overlap the question.
type Extractive struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	maxLines     int
}

// NewExtractive creates an extractive generator returning at most maxLines
// lines (3 when maxLines <= 0).
func NewExtractive(maxLines int) *Extractive {
	if maxLines <= 0 {
		maxLines = 3
	}
	return &Extractive{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`),
		stopwords:    defaultStopwords(),
		maxLines:     maxLines,
	}
}

func (s *Extractive) Generate(_ context.Context, p string) (string, error) {
	kind, question, ctx := prompt.Parse(p)
	switch kind {
	case prompt.KindGreeting:
		return greetingReply, nil
	case prompt.KindGeneral:
		return generalReply, nil
	}
	return s.answer(question, ctx), nil
}

func (s *Extractive) answer(question, ctx string) string {
	qset := s.tokenSet(question)
	lines := factLines(ctx)

	type pair struct {
		idx   int
		score float64
	}
	var scores []pair
	for i, l := range lines {
		if sc := s.overlap(qset, l); sc > 0 {
			scores = append(scores, pair{i, sc})
		}
	}
	if len(scores) == 0 {
		return noMatchReply
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	n := s.maxLines
	if n > len(scores) {
		n = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, n)
	for i := 0; i < n; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, n)
	for i, idx := range selected {
		out[i] = strings.TrimRight(lines[idx], ".") + "."
	}
	return strings.Join(out, " ")
}

// factLines drops source tags and section headers, keeping "Label: value" lines.
func factLines(ctx string) []string {
	var out []string
	for _, l := range strings.Split(ctx, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "[Source:") || strings.HasSuffix(l, ":") {
			continue
		}
		out = append(out, l)
	}
	return out
}

// overlap is the Ochiai coefficient between the question tokens and the
// line's tokens.
func (s *Extractive) overlap(qset map[string]struct{}, line string) float64 {
	lset := s.tokenSet(line)
	if len(qset) == 0 || len(lset) == 0 {
		return 0
	}
	inter := 0
	for t := range lset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / (math.Sqrt(float64(len(qset))) * math.Sqrt(float64(len(lset))))
}

func (s *Extractive) tokenSet(text string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, tok := range s.tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, ok := s.stopwords[tok]; ok {
			continue
		}
		m[tok] = struct{}{}
	}
	return m
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "when", "where", "how", "does", "do", "tell", "me", "please", "fund", "funds",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
