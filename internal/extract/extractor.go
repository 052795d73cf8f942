package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avetrov/claimsift/internal/ingest"
	"github.com/avetrov/claimsift/internal/model"
	"golang.org/x/net/html"
)

// fieldCategory maps known claim-bearing record fields to their default
// category. List-valued fields hold one claim per element; string-valued
// fields hold declarative sentences.
var fieldCategory = map[string]model.ClaimCategory{
	"key_risks":            model.CategoryRisk,
	"risk_factors":         model.CategoryRisk,
	"critical_risks":       model.CategoryRisk,
	"legal_issues":         model.CategoryLegal,
	"compliance_findings":  model.CategoryLegal,
	"contract_findings":    model.CategoryLegal,
	"financial_highlights": model.CategoryFinancial,
	"key_findings":         model.CategoryOther,
	"strategic_insights":   model.CategoryOther,
	"recommendations":      model.CategoryOther,
	"observations":         model.CategoryOther,
}

// legalCues refine the category of claims found in generic fields
var legalCues = []string{"litigation", "covenant", "indemnity", "contract", "regulatory", "compliance", "lawsuit"}

// financialCues refine the category of claims found in generic fields
var financialCues = []string{"valuation", "ebitda", "revenue", "margin", "debt", "cash flow", "goodwill", "impairment"}

// ClaimExtractor pulls candidate claims out of agent-output records
type ClaimExtractor struct {
	minLength int
	maxLength int
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{
		minLength: 10,
		maxLength: 1000,
	}
}

// Extract extracts claims from a single agent record. Missing or malformed
// fields are skipped, never raised: an agent with no claim-bearing fields
// yields an empty list.
func (e *ClaimExtractor) Extract(record ingest.AgentRecord) []model.Claim {
	var claims []model.Claim

	// Deterministic field order regardless of map iteration
	keys := make([]string, 0, len(record.Fields))
	for k := range record.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, field := range keys {
		category, known := fieldCategory[field]
		if !known {
			continue
		}

		for _, text := range e.statements(record.Fields[field]) {
			text = stripMarkup(text)
			if len(text) < e.minLength || len(text) > e.maxLength {
				continue
			}
			claims = append(claims, model.Claim{
				SourceAgent: record.Agent,
				Text:        text,
				Category:    refineCategory(category, text),
				Field:       field,
			})
		}
	}

	return dedupeClaims(claims)
}

// ExtractAll extracts claims from all records, preserving record order
func (e *ClaimExtractor) ExtractAll(records []ingest.AgentRecord) []model.Claim {
	var claims []model.Claim
	for _, record := range records {
		claims = append(claims, e.Extract(record)...)
	}
	return claims
}

// statements flattens a field value into candidate claim texts. Lists yield
// one statement per string element; plain strings yield one statement;
// anything else yields nothing.
func (e *ClaimExtractor) statements(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case map[string]any:
				// Structured list entries carry their statement under
				// "text" or "description"
				if text, ok := s["text"].(string); ok {
					out = append(out, text)
				} else if text, ok := s["description"].(string); ok {
					out = append(out, text)
				}
			case float64:
				out = append(out, fmt.Sprintf("%v", s))
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}

// refineCategory upgrades a generic category when the text carries a clear
// legal or financial cue
func refineCategory(category model.ClaimCategory, text string) model.ClaimCategory {
	if category != model.CategoryOther {
		return category
	}
	lower := strings.ToLower(text)
	for _, cue := range legalCues {
		if strings.Contains(lower, cue) {
			return model.CategoryLegal
		}
	}
	for _, cue := range financialCues {
		if strings.Contains(lower, cue) {
			return model.CategoryFinancial
		}
	}
	return model.CategoryOther
}

// stripMarkup removes embedded HTML from claim text, keeping visible text
// only. Upstream agents emit HTML-formatted narrative in some fields.
func stripMarkup(text string) string {
	if !strings.ContainsRune(text, '<') {
		return strings.TrimSpace(collapseSpaces(text))
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return strings.TrimSpace(collapseSpaces(text))
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				buf.WriteString(t)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// dedupeClaims removes duplicate claims within one extraction pass
func dedupeClaims(claims []model.Claim) []model.Claim {
	seen := make(map[string]bool)
	var unique []model.Claim

	for _, claim := range claims {
		key := claim.SourceAgent + "|" + strings.ToLower(strings.TrimSpace(claim.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, claim)
		}
	}

	return unique
}
