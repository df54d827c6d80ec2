// Package prompt renders the instructions sent to the generator for each
// answer branch.
package prompt

import (
	"fmt"
	"strings"

	"fundqa/internal/domain"
)

// Kind identifies which branch a prompt was built for.
type Kind int

const (
	KindGeneral Kind = iota
	KindGreeting
	KindGrounded
)

const (
	greetingMarker = "User said: "
	contextMarker  = "Context (from official sources only):\n"
	questionMarker = "Question: "
)

const greetingTemplate = `You are a friendly and helpful assistant for mutual funds in India. A user has greeted you.

Respond politely and warmly to the greeting. Offer to help them with information about mutual funds.
Keep your response to 1-2 sentences.

` + greetingMarker + `%s

Your response:`

const generalTemplate = `You are a helpful and knowledgeable assistant for mutual funds and finance in India. Answer the following question using your general knowledge.

CRITICAL CONSTRAINTS:
1. Provide factual, educational information only
2. DO NOT provide investment advice, recommendations, or opinions
3. DO NOT make performance claims or compute/compare returns
4. DO NOT make claims about any specific fund
5. Keep the answer to a maximum of 3 sentences
6. Maintain a polite and professional tone

` + questionMarker + `%s

Answer:`

const groundedTemplate = `You are a polite and helpful assistant for mutual funds in India. Provide factual information only.

CRITICAL CONSTRAINTS:
1. Answer ONLY from the context below; if the information is not in the context, say so clearly
2. DO NOT provide investment advice, recommendations, or opinions
3. DO NOT make performance claims or compute/compare returns
4. Keep the answer to a maximum of 3 sentences
5. Include EVERY numeric value and percentage from the context that answers the question
6. When both Direct Plan and Regular Plan values are present, name both explicitly

` + contextMarker + `%s

` + questionMarker + `%s

Answer:`

// Greeting asks for a short friendly reply.
func Greeting(question string) string {
	return fmt.Sprintf(greetingTemplate, question)
}

// General asks for an educational answer from the model's own knowledge.
func General(question string) string {
	return fmt.Sprintf(generalTemplate, question)
}

// Grounded asks for an answer restricted to context.
func Grounded(question, context string) string {
	return fmt.Sprintf(groundedTemplate, context, question)
}

// Context renders retrieved passages as tagged blocks separated by blank lines.
func Context(results []domain.RetrievalResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[Source: %s - %s]\n%s", r.Passage.ProductName, r.Passage.Category, r.Passage.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// Parse recovers the branch, question and context from a rendered prompt.
// Offline generators use it to answer without a model.
func Parse(p string) (kind Kind, question, context string) {
	if i := strings.Index(p, greetingMarker); i >= 0 {
		return KindGreeting, firstLine(p[i+len(greetingMarker):]), ""
	}
	kind = KindGeneral
	if i := strings.Index(p, contextMarker); i >= 0 {
		kind = KindGrounded
		rest := p[i+len(contextMarker):]
		if j := strings.LastIndex(rest, "\n\n"+questionMarker); j >= 0 {
			context = rest[:j]
		}
	}
	if i := strings.LastIndex(p, questionMarker); i >= 0 {
		question = firstLine(p[i+len(questionMarker):])
	}
	return kind, question, context
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
