package domain

import (
	"encoding/json"
	"strings"
)

// SourceDescriptor is one declared origin of a product record.
type SourceDescriptor struct {
	URL    string `json:"url"`
	Origin string `json:"type,omitempty"`
}

// UnmarshalJSON accepts either a bare URL string or a {"url","type"} object.
func (s *SourceDescriptor) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		s.URL = raw
		s.Origin = ""
		return nil
	}
	type alias SourceDescriptor
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = SourceDescriptor(obj)
	return nil
}

// ProductRecord is the structured, pre-extracted data for one tracked product.
// Records are read-only once loaded.
type ProductRecord struct {
	Name    string             `json:"fund_name"`
	Fields  map[string]any     `json:"data"`
	Sources []SourceDescriptor `json:"sources"`
}

// SourceURLs returns the declared source URLs in order, skipping blanks.
func (r ProductRecord) SourceURLs() []string {
	out := make([]string, 0, len(r.Sources))
	for _, s := range r.Sources {
		u := strings.TrimSpace(s.URL)
		if u == "" {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Product is a catalog entry used for name extraction from free text.
type Product struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	// SourceURLs is the per-product override table used when a record
	// declares no usable source.
	SourceURLs []string `yaml:"source_urls"`
}
