// Package generation talks to text generation backends and maps their
// failures onto messages that are safe to show to users.
package generation

import (
	"errors"
	"fmt"
	"strings"

	"fundqa/internal/domain"
)

var (
	// ErrRateLimited marks a throttled request (HTTP 429 or resource exhausted).
	ErrRateLimited = errors.New("generation: rate limited")
	// ErrMissingAPIKey is a configuration failure surfaced at start-up.
	ErrMissingAPIKey = errors.New("generation: missing API key")
	// ErrEmptyResponse means the backend answered without any candidate text.
	ErrEmptyResponse = errors.New("generation: empty response")
)

// Generator produces text for a prompt.
type Generator = domain.Generator

// StatusError is a non-2xx response from a backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation: status %d: %s", e.Code, e.Message)
}

const (
	RateLimitedMessage = "The API is currently experiencing high traffic. Please wait a moment and try again. If this persists, you may have reached your API quota limit."
	FailureMessage     = "I encountered an error while generating the answer. Please try again later."
	EmptyMessage       = "I couldn't generate an answer. Please try rephrasing your question."
)

// UserMessage maps a generation error to fixed user-facing text. Raw error
// details never leave this function.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return RateLimitedMessage
	case errors.Is(err, ErrEmptyResponse):
		return EmptyMessage
	default:
		return FailureMessage
	}
}

// Phrases that mark text as a relayed failure rather than an answer. A bare
// "error" is absent since "tracking error" is a fund metric.
var errorMarkers = []string{
	"encountered an error",
	"experiencing high traffic",
	"temporarily unavailable",
	"rate limit",
	"quota limit",
	"api is currently",
	"please wait a moment",
}

// LooksLikeError reports whether generated text is actually an upstream
// error or throttling notice.
func LooksLikeError(text string) bool {
	t := strings.ToLower(text)
	for _, m := range errorMarkers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}
