package model

// Claim represents a factual assertion extracted from one agent's output
type Claim struct {
	SourceAgent string        `json:"source_agent"`     // Agent identifier (e.g., "financial_analyst")
	Text        string        `json:"text"`             // The claim text itself
	Category    ClaimCategory `json:"category"`         // Domain classification
	Field       string        `json:"field,omitempty"`  // Record field the claim came from (e.g., "key_risks")
	Score       int           `json:"importance_score"` // Keyword-weight importance score
}

// ClaimCategory classifies the domain of the claim
type ClaimCategory string

const (
	CategoryFinancial ClaimCategory = "financial" // Valuation, earnings, debt, cash flow
	CategoryLegal     ClaimCategory = "legal"     // Contracts, litigation, compliance
	CategoryRisk      ClaimCategory = "risk"      // Operational, market, integration risk
	CategoryOther     ClaimCategory = "other"     // Everything else
)

// Categories lists all claim categories in canonical report order
func Categories() []ClaimCategory {
	return []ClaimCategory{CategoryFinancial, CategoryLegal, CategoryRisk, CategoryOther}
}

// VerificationResult contains the verification outcome for a single claim
type VerificationResult struct {
	ClaimIndex int     `json:"claim_index"`    // Index into the dispatched claim list
	BatchID    string  `json:"batch_id"`       // Batch the claim was submitted in
	Verified   bool    `json:"verified"`       // Whether the provider confirmed the claim
	Confidence float64 `json:"confidence"`     // Provider confidence (0.0-1.0)
	Note       string  `json:"note,omitempty"` // Failure reason or provider commentary
}
