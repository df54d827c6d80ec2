// Package formatter turns generated text into the final, policy-compliant
// answer: performance claims stripped, body capped at three sentences and
// a dated citation appended when the answer is grounded in sources.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fundqa/internal/domain"
	"fundqa/internal/sources"
)

// MaxSentences caps the answer body. Citation text is not counted.
const MaxSentences = 3

const (
	piiMessage = "I appreciate you reaching out, but I cannot accept personal information like PAN, Aadhaar, account numbers, OTPs, emails, or phone numbers. " +
		"Please do not share such information. I'm here to help with factual questions about mutual funds."
	opinionMessage = "Thank you for your question. I can only provide factual information about mutual funds. " +
		"I cannot provide investment advice, recommendations, or opinions. " +
		"For educational resources on mutual fund investing, please visit: %s."
	notFactualMessage = "Thank you for your question. I can help you with factual questions about mutual funds such as expense ratios, exit loads, minimum SIP amounts, lock-in periods, riskometer ratings, benchmarks, and how to download statements. " +
		"Please feel free to ask me about any of these topics."
	unknownRejectionMessage = "I can only answer factual questions about mutual funds."
)

type substitution struct {
	re   *regexp.Regexp
	with string
}

var performanceClaims = []substitution{
	{regexp.MustCompile(`(?i)returns?\s+(?:of|are|is)\s+[0-9.]+%`), ""},
	{regexp.MustCompile(`(?i)[0-9.]+%\s+returns?`), ""},
	{regexp.MustCompile(`(?i)outperforms?`), ""},
	{regexp.MustCompile(`(?i)better\s+than`), ""},
	{regexp.MustCompile(`(?i)worse\s+than`), ""},
	{regexp.MustCompile(`(?i)compare\s+returns?`), "For performance details, please refer to the official factsheet"},
}

var noInformation = regexp.MustCompile(`(?i)` + strings.Join([]string{
	`does not contain`, `not available`, `couldn't find`, `could not find`,
	`no information`, `not in context`, `not found`, `unavailable`,
	`does not have`, `doesn't have`, `not present`, `not provided`,
	`cannot find`, `unable to find`, `no data`, `no details`,
	`lacks information`, `missing information`, `insufficient information`,
	`not enough information`,
	`apologize.*not.*contain`, `apologize.*not.*available`,
	`apologize.*couldn't`, `apologize.*no information`,
}, "|"))

// A sentence ends at . ! or ? followed by whitespace or end of text, so
// decimals and URLs stay intact.
var sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)

// Formatter is safe for concurrent use.
type Formatter struct {
	resolver *sources.Resolver
	now      func() time.Time
}

// New returns a Formatter. A nil clock uses time.Now.
func New(resolver *sources.Resolver, clock func() time.Time) *Formatter {
	if resolver == nil {
		resolver = sources.NewResolver(sources.Config{})
	}
	if clock == nil {
		clock = time.Now
	}
	return &Formatter{resolver: resolver, now: clock}
}

// Format post-processes a generated answer. Greetings, answers without
// sources and answers that admit missing information get no citation.
func (f *Formatter) Format(answer string, srcs []domain.Source, product string, isGreeting bool) domain.Formatted {
	body := LimitSentences(StripPerformanceClaims(answer), MaxSentences)
	out := domain.Formatted{Answer: body, Sources: srcs}
	if isGreeting || len(srcs) == 0 || IndicatesNoInformation(body) {
		return out
	}
	out.CitationLink = f.Citation(srcs, product)
	out.Timestamp = f.now().Format("2006-01-02")
	out.Answer = appendCitation(body, out.CitationLink, out.Timestamp)
	return out
}

// Rejection returns the fixed message for reason. Only opinion rejections
// carry a link, pointing at the educational page.
func (f *Formatter) Rejection(reason domain.RejectionReason) domain.Formatted {
	var out domain.Formatted
	switch reason {
	case domain.RejectionPII:
		out.Answer = piiMessage
	case domain.RejectionOpinionated:
		out.Answer = fmt.Sprintf(opinionMessage, f.resolver.EducationalURL())
		out.CitationLink = f.resolver.EducationalURL()
	case domain.RejectionNotFactual:
		out.Answer = notFactualMessage
	default:
		out.Answer = unknownRejectionMessage
	}
	out.Answer = LimitSentences(out.Answer, MaxSentences)
	return out
}

// Citation picks the link for an answer: a primary source URL, then the
// best-ranked domain across all source URLs, then the product override,
// then a factsheet slug, then the educational page.
func (f *Formatter) Citation(srcs []domain.Source, product string) string {
	for _, s := range srcs {
		if strings.HasPrefix(s.PrimarySourceURL, "http") {
			return s.PrimarySourceURL
		}
	}
	var all []string
	for _, s := range srcs {
		all = append(all, s.SourceURLs...)
	}
	if u, ok := f.resolver.ByDomain(all); ok {
		return u
	}
	if product == "" && len(srcs) > 0 {
		product = srcs[0].ProductName
	}
	if u, ok := f.resolver.Override(product); ok {
		return u
	}
	if product != "" {
		return f.resolver.Factsheet(product)
	}
	return f.resolver.EducationalURL()
}

// StripPerformanceClaims removes return figures and comparative phrasing.
func StripPerformanceClaims(text string) string {
	for _, s := range performanceClaims {
		text = s.re.ReplaceAllString(text, s.with)
	}
	return strings.TrimSpace(text)
}

// IndicatesNoInformation reports whether text admits the answer was not found.
func IndicatesNoInformation(text string) bool {
	return noInformation.MatchString(text)
}

// LimitSentences truncates text to max sentences, ensuring terminal punctuation.
func LimitSentences(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 {
		return ""
	}
	ends := sentenceEnd.FindAllStringSubmatchIndex(text, -1)
	count := len(ends)
	// Trailing text without terminal punctuation is a sentence of its own.
	if count == 0 || ends[count-1][1] < len(text) {
		count++
	}
	if text == "" || count <= max {
		return text
	}
	cut := strings.TrimSpace(text[:ends[max-1][2]])
	if !strings.ContainsAny(cut[len(cut)-1:], ".!?") {
		cut += "."
	}
	return cut
}

func appendCitation(body, link, date string) string {
	citation := "Last updated from sources: " + date + ". For more details, visit: " + link
	if body == "" {
		return citation
	}
	if strings.ContainsAny(body[len(body)-1:], ".!?") {
		return body + " " + citation
	}
	return body + ". " + citation
}
