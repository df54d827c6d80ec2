package classifier

import (
	"regexp"
	"strings"

	"fundqa/internal/domain"
)

// rule is one entry of a policy table. A rule matches either a literal
// phrase on word boundaries or a raw pattern.
type rule struct {
	tag string
	re  *regexp.Regexp
}

func (r rule) match(q string) bool { return r.re.MatchString(q) }

func phrase(tag, p string) rule {
	return rule{tag: tag, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)}
}

func pattern(tag, p string) rule {
	return rule{tag: tag, re: regexp.MustCompile(p)}
}

func phrases(tag string, ps ...string) []rule {
	out := make([]rule, len(ps))
	for i, p := range ps {
		out[i] = phrase(tag, p)
	}
	return out
}

// table is an ordered rule list; the first matching rule names the hit.
type table []rule

func (t table) first(q string) (rule, bool) {
	for _, r := range t {
		if r.match(q) {
			return r, true
		}
	}
	return rule{}, false
}

func (t table) any(q string) bool {
	_, ok := t.first(q)
	return ok
}

var greetingRules = table(phrases("greeting",
	"hello", "hi", "hey", "greetings",
	"good morning", "good afternoon", "good evening", "good night",
	"namaste", "namaskar", "thanks", "thank you",
	"bye", "goodbye", "see you", "how are you", "how do you do",
))

type piiRule struct {
	kind domain.PIIKind
	re   *regexp.Regexp
}

var piiRules = []piiRule{
	{domain.PIIPAN, regexp.MustCompile(`(?i)\b[A-Z]{5}[0-9]{4}[A-Z]\b`)},
	{domain.PIIAadhaar, regexp.MustCompile(`\b[0-9]{4}\s?[0-9]{4}\s?[0-9]{4}\b`)},
	{domain.PIIAccountNumber, regexp.MustCompile(`\b\d{9,18}\b`)},
	{domain.PIIOTP, regexp.MustCompile(`(?i)\b\d{4,6}\b.*\botp\b|\botp\b.*\b\d{4,6}\b`)},
	{domain.PIIEmail, regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{domain.PIIPhone, regexp.MustCompile(`\b[6-9]\d{9}\b|\+91[6-9]\d{9}\b`)},
}

// Factual phrasings that share words with the advice list.
var factualExclusions = table(phrases("exclusion",
	"how to download", "download statements", "download capital",
	"description of", "overview of", "meaning of", "what is the meaning",
))

var opinionRules = table(append(
	phrases("advice",
		"should i", "should i buy", "should i sell", "should i invest", "should invest",
		"is it good", "is it bad", "good for", "bad for",
		"recommend", "advice", "opinion", "suggest",
		"best fund", "worst fund", "good investment", "worth", "worth it",
		"compare returns", "which is better",
		"performance", "returns", "profit", "loss", "gain",
	),
	pattern("advice", `\bis\b.*\bgood\b`),
	pattern("advice", `\bis\b.*\bbad\b`),
	pattern("comparison", `which.*better`),
	pattern("comparison", `which.*best`),
	pattern("comparison", `which.*worse`),
	pattern("comparison", `compare.*fund`),
	pattern("comparison", `better.*than`),
	pattern("comparison", `worse.*than`),
))

var educationKeywords = phrases("education",
	"what is", "what are", "what does", "what do",
	"explain", "define", "definition", "meaning",
	"how does", "how do", "how is", "how are",
	"tell me about", "can you explain", "can you tell me",
	"mutual fund", "mutual funds", "expense ratio", "exit load",
	"sip", "systematic investment plan", "lumpsum", "lump sum",
	"nav", "net asset value", "aum", "assets under management",
	"benchmark", "riskometer", "lock-in period", "lock in period",
	"direct plan", "regular plan", "growth option", "dividend option",
	"equity fund", "debt fund", "hybrid fund", "elss", "tax saver",
	"large cap", "mid cap", "small cap", "flexi cap", "multi cap",
	"fund manager", "amc", "asset management company", "sebi", "amfi",
	"factsheet", "portfolio", "diversification", "volatility", "returns",
	"investment", "investing", "investor", "redemption", "switch",
	"stp", "systematic transfer plan", "swp", "systematic withdrawal plan",
)

var productKeywords = phrases("factual",
	"expense ratio", "exit load", "entry load", "minimum sip", "sip amount",
	"lock-in", "lock in", "riskometer", "benchmark", "nav", "aum",
	"fund manager", "launch date", "investment objective", "category",
	"download", "statement", "statements", "factsheet",
	"what is", "how to", "when", "where", "who", "which",
	"details", "information", "description", "describe", "overview", "explain",
	"meaning of", "capital-gains", "capital gains",
)

var factualRules = concat(greetingRules, educationKeywords, productKeywords)

var questionWords = []string{"what", "when", "where", "who", "which", "how"}

// Educational phrasings that introduce a general finance question.
var generalPatterns = table(phrases("general",
	"what is", "what are", "what does", "what do",
	"explain", "define", "definition of", "meaning of",
	"how does", "how do", "how is", "how are",
	"tell me about", "can you explain", "can you tell me",
))

var financeTerms = table(phrases("finance",
	"mutual fund", "mutual funds", "funds", "expense ratio", "exit load", "sip", "nav", "aum",
	"benchmark", "riskometer", "lock-in", "direct plan", "regular plan",
	"equity", "debt", "fund", "investment", "investing", "portfolio",
	"amc", "sebi", "amfi", "elss", "tax saver",
))

// DefaultSpecificIndicators mark a question as being about a tracked
// product rather than general education.
var DefaultSpecificIndicators = []string{
	"hdfc", "elss", "flexi cap", "large and mid cap", "fund name", "scheme", "specific fund",
}

func concat(ts ...[]rule) table {
	var out table
	for _, t := range ts {
		out = append(out, t...)
	}
	return out
}

func startsWithQuestionWord(q string) bool {
	for _, w := range questionWords {
		if q == w || strings.HasPrefix(q, w+" ") || strings.HasPrefix(q, w+"'") || strings.HasPrefix(q, w+"?") {
			return true
		}
	}
	return false
}
