package extract

import (
	"reflect"
	"testing"

	"github.com/avetrov/claimsift/internal/ingest"
	"github.com/avetrov/claimsift/internal/model"
)

func TestClaimExtractor_BasicExtraction(t *testing.T) {
	extractor := NewClaimExtractor()

	record := ingest.AgentRecord{
		Agent: "risk_team",
		Fields: map[string]any{
			"key_risks": []any{
				"Customer concentration exceeds 40% of revenue",
				"Key-person dependency on the founding CTO",
			},
			"irrelevant_field": "ignored entirely",
		},
	}

	claims := extractor.Extract(record)

	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}

	for _, claim := range claims {
		if claim.SourceAgent != "risk_team" {
			t.Errorf("expected source_agent risk_team, got %s", claim.SourceAgent)
		}
		if claim.Category != model.CategoryRisk {
			t.Errorf("expected category risk, got %s", claim.Category)
		}
		if claim.Field != "key_risks" {
			t.Errorf("expected field key_risks, got %s", claim.Field)
		}
	}
}

func TestClaimExtractor_MissingAndMalformedFields(t *testing.T) {
	extractor := NewClaimExtractor()

	cases := []struct {
		name   string
		fields map[string]any
	}{
		{"empty record", map[string]any{}},
		{"nil fields", nil},
		{"wrong type", map[string]any{"key_risks": 42}},
		{"list of numbers", map[string]any{"key_risks": []any{1.0, 2.0}}},
		{"nil list entry", map[string]any{"key_risks": []any{nil}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := extractor.Extract(ingest.AgentRecord{Agent: "a", Fields: tc.fields})
			if len(claims) != 0 {
				t.Errorf("expected no claims, got %d", len(claims))
			}
		})
	}
}

func TestClaimExtractor_StripsMarkup(t *testing.T) {
	extractor := NewClaimExtractor()

	record := ingest.AgentRecord{
		Agent: "legal_counsel",
		Fields: map[string]any{
			"legal_issues": []any{
				"<p>Litigation reserve is <b>understated</b> by management.</p>",
			},
		},
	}

	claims := extractor.Extract(record)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}

	want := "Litigation reserve is understated by management."
	if claims[0].Text != want {
		t.Errorf("expected %q, got %q", want, claims[0].Text)
	}
}

func TestClaimExtractor_StructuredListEntries(t *testing.T) {
	extractor := NewClaimExtractor()

	record := ingest.AgentRecord{
		Agent: "financial_analyst",
		Fields: map[string]any{
			"financial_highlights": []any{
				map[string]any{"text": "Gross margin expanded to 62% in the trailing year"},
				map[string]any{"description": "Deferred revenue grew faster than bookings"},
				map[string]any{"irrelevant": "no statement key"},
			},
		},
	}

	claims := extractor.Extract(record)
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	for _, claim := range claims {
		if claim.Category != model.CategoryFinancial {
			t.Errorf("expected category financial, got %s", claim.Category)
		}
	}
}

func TestClaimExtractor_RefinesGenericCategory(t *testing.T) {
	extractor := NewClaimExtractor()

	record := ingest.AgentRecord{
		Agent: "synthesis_agent",
		Fields: map[string]any{
			"strategic_insights": []any{
				"Pending litigation could delay closing by two quarters",
				"EBITDA adjustments need independent validation",
				"Brand positioning remains strong in the region",
			},
		},
	}

	claims := extractor.Extract(record)
	if len(claims) != 3 {
		t.Fatalf("expected 3 claims, got %d", len(claims))
	}

	categories := map[string]model.ClaimCategory{}
	for _, claim := range claims {
		categories[claim.Text] = claim.Category
	}

	if categories["Pending litigation could delay closing by two quarters"] != model.CategoryLegal {
		t.Error("expected litigation claim refined to legal")
	}
	if categories["EBITDA adjustments need independent validation"] != model.CategoryFinancial {
		t.Error("expected ebitda claim refined to financial")
	}
	if categories["Brand positioning remains strong in the region"] != model.CategoryOther {
		t.Error("expected generic claim to stay other")
	}
}

func TestClaimExtractor_Dedupes(t *testing.T) {
	extractor := NewClaimExtractor()

	record := ingest.AgentRecord{
		Agent: "risk_team",
		Fields: map[string]any{
			"key_risks":    []any{"Customer concentration exceeds 40% of revenue"},
			"risk_factors": []any{"customer concentration exceeds 40% of revenue"},
		},
	}

	claims := extractor.Extract(record)
	if len(claims) != 1 {
		t.Errorf("expected duplicate claim removed, got %d claims", len(claims))
	}
}

func TestClaimExtractor_Idempotent(t *testing.T) {
	extractor := NewClaimExtractor()

	records := []ingest.AgentRecord{
		{
			Agent: "financial_analyst",
			Fields: map[string]any{
				"financial_highlights": []any{"Net revenue retention is 118%"},
				"key_findings":         []any{"Valuation multiple is above sector median"},
			},
		},
		{
			Agent: "legal_counsel",
			Fields: map[string]any{
				"legal_issues": []any{"Change-of-control clauses in three major contracts"},
			},
		},
	}

	first := extractor.ExtractAll(records)
	second := extractor.ExtractAll(records)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical claims on repeated extraction")
	}
}
