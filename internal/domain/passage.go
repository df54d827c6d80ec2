package domain

// Category tags the topic of a passage.
type Category string

const (
	CategoryIdentity        Category = "identity"
	CategoryInvestmentTerms Category = "investment-terms"
	CategoryFees            Category = "fees"
	CategoryRiskPerformance Category = "risk-performance"
	CategoryOther           Category = "other"
)

// Categories lists every category in rendering order.
var Categories = []Category{
	CategoryIdentity,
	CategoryInvestmentTerms,
	CategoryFees,
	CategoryRiskPerformance,
	CategoryOther,
}

// Passage is a rendered, categorized text block derived from one record.
// It is the unit of retrieval.
type Passage struct {
	Text             string
	ProductName      string
	Category         Category
	SourceURLs       []string
	PrimarySourceURL string
	Vector           []float64
}

// RetrievalResult scores one passage against one query.
type RetrievalResult struct {
	Passage       Passage
	SemanticScore float64
	KeywordBoost  float64
	CombinedScore float64
}

// Source is the per-passage metadata returned with an answer. URL fields feed
// citation selection and are not serialized.
type Source struct {
	ProductName      string   `json:"fund_name"`
	Category         Category `json:"chunk_type"`
	Similarity       float64  `json:"similarity"`
	PrimarySourceURL string   `json:"-"`
	SourceURLs       []string `json:"-"`
}
