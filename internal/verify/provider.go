package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/avetrov/claimsift/internal/model"
)

// Provider defines the interface for verification providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// VerifyBatch verifies one batch of claims. The response must carry
	// exactly one item per submitted claim; anything else is a provider
	// error and is retried by the caller.
	VerifyBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// BatchRequest contains one batch of claim texts to verify
type BatchRequest struct {
	// BatchID identifies the batch in diagnostics
	BatchID string

	// Texts are the claim texts, in batch order
	Texts []string

	// Model is the specific model to use (provider-specific)
	Model string
}

// BatchResponse contains the provider's verdicts, one per submitted claim
type BatchResponse struct {
	// Verdicts are positionally matched to BatchRequest.Texts
	Verdicts []Verdict

	// Model is the model that produced the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Verdict is the provider's judgment on a single claim
type Verdict struct {
	Index      int     `json:"index"`          // 0-based position within the batch
	Verified   bool    `json:"verified"`       // Whether the claim is supported
	Confidence float64 `json:"confidence"`     // 0.0-1.0
	Note       string  `json:"note,omitempty"` // Short provider commentary
}

// NewProvider creates a verification provider from configuration. An empty
// provider name disables verification (offline mode) and returns nil.
func NewProvider(cfg model.VerifyConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown verification provider: %s (supported: openai)", cfg.Provider)
	}
}

// BuildPrompt constructs the verification prompt for one batch
func BuildPrompt(texts []string) string {
	var b strings.Builder

	b.WriteString(`You are verifying factual claims extracted from M&A due-diligence analysis.

For EACH numbered claim below, judge whether it reads as a well-formed,
internally consistent factual assertion that a diligence reviewer could act
on. Do not invent external facts.

CRITICAL RULES:
1. Respond with ONLY a JSON array, no prose before or after.
2. The array must have exactly one object per claim, in claim order.
3. Each object: {"index": <0-based claim number>, "verified": <bool>, "confidence": <0.0-1.0>, "note": "<short reason>"}.
4. Never skip a claim and never add extra entries.

Claims:
`)

	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i, text)
	}

	return b.String()
}
