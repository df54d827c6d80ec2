package chunker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fundqa/internal/domain"
	"fundqa/internal/sources"
)

// alternativesSuffix marks internal alternate-value fields that are never rendered.
const alternativesSuffix = "_alternatives"

type fieldLabel struct {
	key   string
	label string
}

type section struct {
	category domain.Category
	header   func(product string) string
	fields   []fieldLabel
}

// sections is the fixed field-to-label mapping per category. The "other"
// category is derived from whatever these do not claim.
var sections = []section{
	{
		category: domain.CategoryIdentity,
		header:   func(p string) string { return "Fund Name: " + p },
		fields: []fieldLabel{
			{"fund_category", "Category"},
			{"scheme_type", "Scheme Type"},
			{"asset_class", "Asset Class"},
			{"launch_date", "Launch Date"},
			{"investment_objective", "Investment Objective"},
		},
	},
	{
		category: domain.CategoryInvestmentTerms,
		header:   func(p string) string { return "Investment Details for " + p + ":" },
		fields: []fieldLabel{
			{"minimum_sip", "Minimum SIP Amount"},
			{"minimum_sip_amount", "Minimum SIP Amount"},
			{"minimum_lumpsum", "Minimum Lumpsum Investment"},
			{"minimum_lumpsum_investment", "Minimum Lumpsum Investment"},
			{"lock_in_period", "Lock-in Period"},
			{"available_plans", "Available Plans"},
			{"available_options", "Available Options"},
		},
	},
	{
		category: domain.CategoryFees,
		header:   func(p string) string { return "Fees and Charges for " + p + ":" },
		fields: []fieldLabel{
			{"expense_ratio", "Expense Ratio"},
			{"exit_load", "Exit Load"},
			{"entry_load", "Entry Load"},
		},
	},
	{
		category: domain.CategoryRiskPerformance,
		header:   func(p string) string { return "Risk and Performance for " + p + ":" },
		fields: []fieldLabel{
			{"riskometer", "Riskometer Rating"},
			{"benchmark_index", "Benchmark Index"},
			{"benchmark", "Benchmark Index"},
			{"nav", "NAV"},
			{"aum", "AUM (Assets Under Management)"},
			{"fund_managers", "Fund Manager(s)"},
		},
	},
}

var claimed = func() map[string]struct{} {
	m := map[string]struct{}{"fund_name": {}}
	for _, s := range sections {
		for _, f := range s.fields {
			m[f.key] = struct{}{}
		}
	}
	return m
}()

// ProductChunker renders a product record into at most one passage per category.
type ProductChunker struct {
	resolver *sources.Resolver
}

// NewProductChunker creates a chunker that uses resolver to pick each record's
// primary source URL.
func NewProductChunker(resolver *sources.Resolver) *ProductChunker {
	if resolver == nil {
		resolver = sources.NewResolver(sources.Config{})
	}
	return &ProductChunker{resolver: resolver}
}

// Render converts record into passages. A record without fields yields none.
func (c *ProductChunker) Render(record domain.ProductRecord) []domain.Passage {
	if len(record.Fields) == 0 {
		return nil
	}
	urls := record.SourceURLs()
	primary := c.resolver.Primary(record.Name, urls)

	var passages []domain.Passage
	add := func(cat domain.Category, header string, lines []string) {
		if len(lines) == 0 {
			return
		}
		text := header + "\n" + strings.Join(lines, "\n")
		passages = append(passages, domain.Passage{
			Text:             text,
			ProductName:      record.Name,
			Category:         cat,
			SourceURLs:       append([]string(nil), urls...),
			PrimarySourceURL: primary,
		})
	}

	for _, s := range sections {
		var lines []string
		for _, f := range s.fields {
			v, ok := record.Fields[f.key]
			if !ok {
				continue
			}
			if f.key == "expense_ratio" {
				lines = append(lines, expenseRatioLines(v)...)
				continue
			}
			if rendered := renderValue(v); rendered != "" {
				lines = append(lines, f.label+": "+rendered)
			}
		}
		add(s.category, s.header(record.Name), lines)
	}

	add(domain.CategoryOther, "Additional Information for "+record.Name+":", otherLines(record.Fields))
	return passages
}

func otherLines(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := claimed[k]; ok {
			continue
		}
		if strings.HasSuffix(k, alternativesSuffix) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	// A Caser is stateful; one per call keeps Render safe to share.
	titler := cases.Title(language.English)
	var lines []string
	for _, k := range keys {
		rendered := renderValue(fields[k])
		if rendered == "" {
			continue
		}
		lines = append(lines, titler.String(strings.ReplaceAll(k, "_", " "))+": "+rendered)
	}
	return lines
}

// expenseRatioLines keeps Direct and Regular plan values on separate lines.
func expenseRatioLines(v any) []string {
	switch er := v.(type) {
	case map[string]any:
		direct, hasDirect := er["direct_plan"]
		regular, hasRegular := er["regular_plan"]
		if hasDirect && hasRegular {
			lines := []string{
				"Expense Ratio - Direct Plan: " + renderValue(direct),
				"Expense Ratio - Regular Plan: " + renderValue(regular),
			}
			if date := renderValue(er["as_on_date"]); date != "" {
				lines = append(lines, "As on Date: "+date)
			}
			return lines
		}
		if s := renderValue(er); s != "" {
			return []string{"Expense Ratio: " + s}
		}
		return nil
	case []any:
		var lines []string
		for _, item := range er {
			m, ok := item.(map[string]any)
			if !ok {
				if s := renderValue(item); s != "" {
					lines = append(lines, "Expense Ratio: "+s)
				}
				continue
			}
			plan := renderValue(m["plan_type"])
			if plan == "" {
				plan = "Unknown"
			}
			value := renderValue(m["value"])
			if value == "" {
				value = "N/A"
			}
			line := fmt.Sprintf("Expense Ratio - %s: %s%s", plan, value, renderValue(m["unit"]))
			if date := renderValue(m["as_on_date"]); date != "" {
				line += " (as on " + date + ")"
			}
			lines = append(lines, line)
		}
		return lines
	default:
		if s := renderValue(v); s != "" {
			return []string{"Expense Ratio: " + s}
		}
		return nil
	}
}

// renderValue turns a heterogeneous JSON value into a single display string.
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := renderValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := renderValue(t[k]); s != "" {
				parts = append(parts, strings.ReplaceAll(k, "_", " ")+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
