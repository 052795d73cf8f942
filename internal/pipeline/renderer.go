package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/avetrov/claimsift/internal/model"
)

// Renderer writes consolidated insights to files and the terminal
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the insights as indented JSON
func (r *Renderer) RenderJSON(insights *model.ConsolidatedInsights, path string) error {
	data, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable summary grouped by category
func (r *Renderer) RenderMarkdown(insights *model.ConsolidatedInsights, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Consolidated Insights\n\n")
	fmt.Fprintf(&b, "- Source: `%s`\n", insights.Source)
	fmt.Fprintf(&b, "- Generated: %s\n", insights.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Agents reported: %d\n", insights.AgentsReported)
	fmt.Fprintf(&b, "- Claims: %d extracted, %d retained, %d failed verification\n\n",
		insights.ClaimsExtracted, insights.ClaimsRetained, insights.FailedCount)

	for _, category := range model.Categories() {
		claims := insights.Categories[category]
		if len(claims) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s (%d)\n\n", titleCase(string(category)), len(claims))
		fmt.Fprintf(&b, "| Agent | Claim | Score | Verified | Confidence | Note |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
		for _, vc := range claims {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %.2f | %s |\n",
				vc.Claim.SourceAgent,
				escapeCell(vc.Claim.Text),
				vc.Claim.Score,
				checkmark(vc.Result.Verified),
				vc.Result.Confidence,
				escapeCell(vc.Result.Note))
		}
		b.WriteString("\n")
	}

	if len(insights.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range insights.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n")
		b.WriteString("Generated by claimsift. Verification describes support, not truth.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

// RenderSummary prints a one-screen summary to stdout
func (r *Renderer) RenderSummary(insights *model.ConsolidatedInsights) {
	fmt.Printf("\nConsolidated insights for %s\n", insights.Source)
	fmt.Printf("  Agents reported:  %d\n", insights.AgentsReported)
	fmt.Printf("  Claims extracted: %d\n", insights.ClaimsExtracted)
	fmt.Printf("  Claims retained:  %d\n", insights.ClaimsRetained)
	for _, category := range model.Categories() {
		if n := len(insights.Categories[category]); n > 0 {
			fmt.Printf("  %-10s %d claims\n", string(category)+":", n)
		}
	}
	if insights.FailedCount > 0 {
		fmt.Printf("  ⚠ %d claims failed verification\n", insights.FailedCount)
	}
	if len(insights.Warnings) > 0 {
		fmt.Printf("  ⚠ %d ingestion warnings\n", len(insights.Warnings))
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func checkmark(verified bool) string {
	if verified {
		return "✓"
	}
	return "✗"
}

// escapeCell keeps claim text from breaking the Markdown table
func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	return strings.ReplaceAll(text, "\n", " ")
}
