package domain

import "encoding/json"

// PIIKind names a class of personal data detected in a question.
type PIIKind string

const (
	PIIPAN           PIIKind = "pan"
	PIIAadhaar       PIIKind = "aadhaar"
	PIIAccountNumber PIIKind = "account_number"
	PIIOTP           PIIKind = "otp"
	PIIEmail         PIIKind = "email"
	PIIPhone         PIIKind = "phone"
)

// RejectionReason is the policy reason a question is refused.
type RejectionReason string

const (
	RejectionNone        RejectionReason = ""
	RejectionPII         RejectionReason = "pii_detected"
	RejectionOpinionated RejectionReason = "opinionated"
	RejectionNotFactual  RejectionReason = "not_factual"
)

// QueryDecision is the classifier verdict for a single question.
type QueryDecision struct {
	IsGreeting      bool
	IsFactual       bool
	IsOpinionated   bool
	PIIFlags        map[PIIKind]bool
	CanAnswer       bool
	RejectionReason RejectionReason
}

// HasPII reports whether any PII kind was flagged.
func (d QueryDecision) HasPII() bool { return len(d.PIIFlags) > 0 }

// Formatted is the formatter output for one answer.
type Formatted struct {
	Answer       string
	CitationLink string
	Sources      []Source
	Timestamp    string
}

// AsOfDate is the "last updated" date of a cited answer. The empty value
// encodes as JSON null.
type AsOfDate string

func (d AsOfDate) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// Response is the outcome of one query. Every path through the pipeline
// produces a well-formed Response.
type Response struct {
	Answer          string          `json:"answer"`
	Sources         []Source        `json:"sources"`
	Confidence      float64         `json:"confidence"`
	CitationLink    string          `json:"citation_link"`
	Timestamp       AsOfDate        `json:"timestamp"`
	Rejected        bool            `json:"rejected"`
	RejectionReason RejectionReason `json:"rejection_reason,omitempty"`
}
