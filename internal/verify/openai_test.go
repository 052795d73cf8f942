package verify

import (
	"strings"
	"testing"

	"github.com/avetrov/claimsift/internal/model"
)

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider(model.VerifyConfig{})
	if err == nil {
		t.Error("expected error without API key, got nil")
	}
}

func TestNewProvider_Factory(t *testing.T) {
	p, err := NewProvider(model.VerifyConfig{Provider: ""})
	if err != nil {
		t.Fatalf("expected no error for empty provider, got %v", err)
	}
	if p != nil {
		t.Error("expected nil provider when disabled")
	}

	if _, err := NewProvider(model.VerifyConfig{Provider: "watson"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	p, err = NewProvider(model.VerifyConfig{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p == nil || p.Name() != "openai" {
		t.Error("expected openai provider")
	}
}

func TestParseVerdicts_Valid(t *testing.T) {
	content := `[
		{"index": 0, "verified": true, "confidence": 0.9, "note": "consistent"},
		{"index": 1, "verified": false, "confidence": 0.4, "note": "vague"}
	]`

	verdicts, err := parseVerdicts(content, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
	}
	if !verdicts[0].Verified || verdicts[1].Verified {
		t.Error("verdict values not preserved")
	}
}

func TestParseVerdicts_MarkdownFence(t *testing.T) {
	content := "```json\n[{\"index\": 0, \"verified\": true, \"confidence\": 1.0}]\n```"

	verdicts, err := parseVerdicts(content, 1)
	if err != nil {
		t.Fatalf("expected fenced JSON accepted, got %v", err)
	}
	if len(verdicts) != 1 {
		t.Errorf("expected 1 verdict, got %d", len(verdicts))
	}
}

func TestParseVerdicts_CountMismatch(t *testing.T) {
	content := `[{"index": 0, "verified": true, "confidence": 1.0}]`

	_, err := parseVerdicts(content, 2)
	if err == nil {
		t.Fatal("expected count mismatch error, got nil")
	}
	if !strings.Contains(err.Error(), "mismatch") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseVerdicts_IndexOutOfRange(t *testing.T) {
	content := `[{"index": 5, "verified": true, "confidence": 1.0}]`

	if _, err := parseVerdicts(content, 1); err == nil {
		t.Error("expected out-of-range error, got nil")
	}
}

func TestParseVerdicts_DuplicateIndex(t *testing.T) {
	content := `[
		{"index": 0, "verified": true, "confidence": 1.0},
		{"index": 0, "verified": false, "confidence": 0.2}
	]`

	if _, err := parseVerdicts(content, 2); err == nil {
		t.Error("expected duplicate-index error, got nil")
	}
}

func TestParseVerdicts_NotJSON(t *testing.T) {
	if _, err := parseVerdicts("I could not verify these claims.", 1); err == nil {
		t.Error("expected parse error for prose, got nil")
	}
}

func TestBuildPrompt_NumbersClaims(t *testing.T) {
	prompt := BuildPrompt([]string{"first claim", "second claim"})

	if !strings.Contains(prompt, "0. first claim") {
		t.Error("expected claim 0 in prompt")
	}
	if !strings.Contains(prompt, "1. second claim") {
		t.Error("expected claim 1 in prompt")
	}
	if !strings.Contains(prompt, "JSON array") {
		t.Error("expected JSON instruction in prompt")
	}
}
