// Package sources picks citation URLs for products.
package sources

import (
	"strings"
)

// DefaultDomainPriority orders known domains from highest to lowest trust.
var DefaultDomainPriority = []string{
	"hdfcfund.com",
	"sebi.gov.in",
	"amfiindia.com",
	"groww.in",
}

const (
	DefaultEducationalURL   = "https://groww.in/p/mutual-funds"
	DefaultFactsheetBaseURL = "https://groww.in/mutual-funds"
)

// Resolver selects the single best URL for a product.
type Resolver struct {
	priority      []string
	overrides     map[string][]string
	educational   string
	factsheetBase string
}

// Config configures a Resolver. Zero values fall back to the package defaults.
type Config struct {
	DomainPriority   []string
	Overrides        map[string][]string
	EducationalURL   string
	FactsheetBaseURL string
}

// NewResolver builds a Resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		priority:      cfg.DomainPriority,
		overrides:     make(map[string][]string, len(cfg.Overrides)),
		educational:   cfg.EducationalURL,
		factsheetBase: strings.TrimRight(cfg.FactsheetBaseURL, "/"),
	}
	if len(r.priority) == 0 {
		r.priority = DefaultDomainPriority
	}
	if r.educational == "" {
		r.educational = DefaultEducationalURL
	}
	if r.factsheetBase == "" {
		r.factsheetBase = DefaultFactsheetBaseURL
	}
	for name, urls := range cfg.Overrides {
		r.overrides[strings.ToLower(strings.TrimSpace(name))] = urls
	}
	return r
}

// EducationalURL is the generic last-resort link.
func (r *Resolver) EducationalURL() string { return r.educational }

// ByDomain scans urls in domain priority order and returns the first hit.
// When no known domain matches, the first http(s) URL is returned.
func (r *Resolver) ByDomain(urls []string) (string, bool) {
	for _, domain := range r.priority {
		for _, u := range urls {
			if strings.Contains(u, domain) {
				return u, true
			}
		}
	}
	for _, u := range urls {
		if isHTTP(u) {
			return u, true
		}
	}
	return "", false
}

// Override returns the configured URL for a product, if any.
func (r *Resolver) Override(product string) (string, bool) {
	urls, ok := r.overrides[strings.ToLower(strings.TrimSpace(product))]
	if !ok {
		return "", false
	}
	return r.ByDomain(urls)
}

// Primary computes the primary source URL for a record: declared sources
// first, then the override table, then the educational default. When urls is
// non-empty the result is always one of them.
func (r *Resolver) Primary(product string, urls []string) string {
	if u, ok := r.ByDomain(urls); ok {
		return u
	}
	if len(urls) > 0 {
		return urls[0]
	}
	if u, ok := r.Override(product); ok {
		return u
	}
	return r.educational
}

// Factsheet builds a slug URL for a product name under the factsheet base.
func (r *Resolver) Factsheet(product string) string {
	return r.factsheetBase + "/" + Slug(product)
}

// Slug lowercases a product name, replaces '&' with "and" and joins words with '-'.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "&", "and")
	return strings.Join(strings.Fields(s), "-")
}

func isHTTP(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
