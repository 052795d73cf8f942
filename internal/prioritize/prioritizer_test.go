package prioritize

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/avetrov/claimsift/internal/model"
)

func testKeywords() map[string]int {
	return map[string]int{
		"valuation":     3,
		"ebitda":        3,
		"critical_risk": 3,
		"covenant":      2,
		"litigation":    2,
	}
}

func makeClaims(agent string, texts ...string) []model.Claim {
	claims := make([]model.Claim, 0, len(texts))
	for _, text := range texts {
		claims = append(claims, model.Claim{SourceAgent: agent, Text: text, Category: model.CategoryOther})
	}
	return claims
}

func TestPrioritizer_Score(t *testing.T) {
	p := NewPrioritizer(model.BudgetConfig{Default: 5}, testKeywords())

	cases := []struct {
		text string
		want int
	}{
		{"The valuation assumes aggressive growth", 3},
		{"EBITDA covenant breach is likely", 5},
		{"Nothing notable here", 0},
		{"VALUATION and Litigation both flagged", 5},
	}

	for _, tc := range cases {
		if got := p.Score(tc.text); got != tc.want {
			t.Errorf("Score(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestPrioritizer_BudgetBound(t *testing.T) {
	budgets := model.BudgetConfig{
		Default:  5,
		PerAgent: map[string]int{"financial_analyst": 3},
	}
	p := NewPrioritizer(budgets, testKeywords())

	var claims []model.Claim
	for i := 0; i < 10; i++ {
		claims = append(claims, model.Claim{
			SourceAgent: "financial_analyst",
			Text:        fmt.Sprintf("finding %d mentions valuation", i),
		})
	}

	retained := p.Prioritize(claims)
	if len(retained) != 3 {
		t.Errorf("expected 3 retained claims, got %d", len(retained))
	}
}

func TestPrioritizer_HighScoresNeverDropped(t *testing.T) {
	budgets := model.BudgetConfig{Default: 2}
	p := NewPrioritizer(budgets, testKeywords())

	claims := makeClaims("legal_counsel",
		"A minor observation with no keywords",
		"Litigation risk around the covenant structure", // score 4
		"Another plain note",
		"EBITDA valuation dispute is unresolved", // score 6
	)

	retained := p.Prioritize(claims)
	if len(retained) != 2 {
		t.Fatalf("expected 2 retained claims, got %d", len(retained))
	}

	// Score-descending truncation: the two scored claims survive
	if retained[0].Text != "EBITDA valuation dispute is unresolved" {
		t.Errorf("expected highest-scored claim first, got %q", retained[0].Text)
	}
	if retained[1].Text != "Litigation risk around the covenant structure" {
		t.Errorf("expected second-scored claim second, got %q", retained[1].Text)
	}
}

func TestPrioritizer_StableOnTies(t *testing.T) {
	p := NewPrioritizer(model.BudgetConfig{Default: 10}, testKeywords())

	claims := makeClaims("risk_team",
		"first unscored claim here",
		"second unscored claim here",
		"third unscored claim here",
	)

	retained := p.Prioritize(claims)

	texts := make([]string, len(retained))
	for i, c := range retained {
		texts[i] = c.Text
	}

	want := []string{
		"first unscored claim here",
		"second unscored claim here",
		"third unscored claim here",
	}
	if !reflect.DeepEqual(texts, want) {
		t.Errorf("tied claims reordered: %v", texts)
	}
}

func TestPrioritizer_AgentWithZeroClaims(t *testing.T) {
	p := NewPrioritizer(model.BudgetConfig{Default: 5}, testKeywords())

	retained := p.Prioritize(nil)
	if len(retained) != 0 {
		t.Errorf("expected no claims, got %d", len(retained))
	}
}

func TestPrioritizer_GroupedByAgent(t *testing.T) {
	p := NewPrioritizer(model.BudgetConfig{Default: 5}, testKeywords())

	claims := append(makeClaims("agent_a", "a one plain", "a two valuation"),
		makeClaims("agent_b", "b one plain")...)
	claims = append(claims, makeClaims("agent_a", "a three plain")...)

	retained := p.Prioritize(claims)
	if len(retained) != 4 {
		t.Fatalf("expected 4 claims, got %d", len(retained))
	}

	// All of agent_a's claims come before agent_b's, in first-seen agent order
	agents := make([]string, len(retained))
	for i, c := range retained {
		agents[i] = c.SourceAgent
	}
	want := []string{"agent_a", "agent_a", "agent_a", "agent_b"}
	if !reflect.DeepEqual(agents, want) {
		t.Errorf("expected grouping %v, got %v", want, agents)
	}
}

func TestPrioritizer_Idempotent(t *testing.T) {
	p := NewPrioritizer(model.BudgetConfig{Default: 3}, testKeywords())

	claims := makeClaims("agent",
		"valuation claim",
		"plain claim one",
		"litigation claim",
		"plain claim two",
	)

	first := p.Prioritize(claims)
	second := p.Prioritize(claims)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical ordering and scores on repeated prioritization")
	}
}

func TestPrioritizer_RetainedCountsExample(t *testing.T) {
	budgets := model.BudgetConfig{
		Default: 5,
		PerAgent: map[string]int{
			"financial_analyst": 15,
			"legal_counsel":     10,
			"risk_team":         8,
		},
	}
	p := NewPrioritizer(budgets, testKeywords())

	var claims []model.Claim
	for i := 0; i < 20; i++ {
		claims = append(claims, model.Claim{SourceAgent: "financial_analyst", Text: fmt.Sprintf("fin %d", i)})
	}
	for i := 0; i < 5; i++ {
		claims = append(claims, model.Claim{SourceAgent: "legal_counsel", Text: fmt.Sprintf("leg %d", i)})
	}
	for i := 0; i < 2; i++ {
		claims = append(claims, model.Claim{SourceAgent: "risk_team", Text: fmt.Sprintf("risk %d", i)})
	}

	retained := p.Prioritize(claims)
	if len(retained) != 22 {
		t.Fatalf("expected 22 retained claims (15+5+2), got %d", len(retained))
	}

	counts := map[string]int{}
	for _, c := range retained {
		counts[c.SourceAgent]++
	}
	if counts["financial_analyst"] != 15 || counts["legal_counsel"] != 5 || counts["risk_team"] != 2 {
		t.Errorf("expected counts 15/5/2, got %v", counts)
	}
}
