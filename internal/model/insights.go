package model

import "time"

// VerifiedClaim pairs a claim with its verification outcome
type VerifiedClaim struct {
	Claim  Claim              `json:"claim"`
	Result VerificationResult `json:"result"`
}

// ConsolidatedInsights is the final merged, verified view of all agent outputs,
// handed to downstream report generators. Built once per run; read-only afterwards.
type ConsolidatedInsights struct {
	GeneratedAt time.Time `json:"generated_at"` // When the run completed
	Source      string    `json:"source"`       // Input file or directory scanned

	Categories map[ClaimCategory][]VerifiedClaim `json:"categories"` // Claims grouped by domain

	AgentsReported  int `json:"agents_reported"`  // Agents that supplied a non-empty record
	ClaimsExtracted int `json:"claims_extracted"` // Claims before prioritization
	ClaimsRetained  int `json:"claims_retained"`  // Claims after budget truncation
	FailedCount     int `json:"failed_count"`     // Claims whose verification failed

	Warnings []string `json:"warnings,omitempty"` // Boundary coercions and degraded-mode notes
}

// Failed reports whether any claim failed verification
func (c *ConsolidatedInsights) Failed() bool {
	return c.FailedCount > 0
}

// Total returns the number of verified-claim pairs across all categories
func (c *ConsolidatedInsights) Total() int {
	total := 0
	for _, claims := range c.Categories {
		total += len(claims)
	}
	return total
}

// RunState tracks the pipeline through a single run
type RunState string

const (
	StateIdle         RunState = "idle"
	StateExtracting   RunState = "extracting"
	StatePrioritizing RunState = "prioritizing"
	StateVerifying    RunState = "verifying"
	StateAggregating  RunState = "aggregating"
	StateDone         RunState = "done"
	StateFailed       RunState = "failed"
)
