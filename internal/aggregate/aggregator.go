package aggregate

import (
	"fmt"
	"time"

	"github.com/avetrov/claimsift/internal/model"
)

// IntegrityError signals corrupted pipeline state: a verification result that
// does not line up with the claims actually submitted. Unlike verification
// failures, this aborts the run.
type IntegrityError struct {
	BatchID string
	Reason  string
}

func (e *IntegrityError) Error() string {
	if e.BatchID != "" {
		return fmt.Sprintf("aggregation integrity violation in batch %s: %s", e.BatchID, e.Reason)
	}
	return fmt.Sprintf("aggregation integrity violation: %s", e.Reason)
}

// Aggregator merges verification results into consolidated insights
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate groups (claim, result) pairs by category. Grouping preserves
// claim priority order within each category, so the output is deterministic
// regardless of which batch completed first. Claim/result mismatches are
// fatal; verification failures are counted, not raised.
func (a *Aggregator) Aggregate(claims []model.Claim, results []model.VerificationResult, source string, warnings []string) (*model.ConsolidatedInsights, error) {
	if len(results) != len(claims) {
		return nil, &IntegrityError{
			Reason: fmt.Sprintf("result count %d does not match claim count %d", len(results), len(claims)),
		}
	}

	seen := make([]bool, len(claims))
	for _, result := range results {
		if result.ClaimIndex < 0 || result.ClaimIndex >= len(claims) {
			return nil, &IntegrityError{
				BatchID: result.BatchID,
				Reason:  fmt.Sprintf("result references claim index %d, but only %d claims were submitted", result.ClaimIndex, len(claims)),
			}
		}
		if seen[result.ClaimIndex] {
			return nil, &IntegrityError{
				BatchID: result.BatchID,
				Reason:  fmt.Sprintf("claim index %d has more than one result", result.ClaimIndex),
			}
		}
		seen[result.ClaimIndex] = true
	}

	insights := &model.ConsolidatedInsights{
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Categories:  make(map[model.ClaimCategory][]model.VerifiedClaim),
		Warnings:    warnings,
	}

	byIndex := make(map[int]model.VerificationResult, len(results))
	for _, result := range results {
		byIndex[result.ClaimIndex] = result
	}

	// Walk claims in priority order so category grouping is deterministic
	for i, claim := range claims {
		result := byIndex[i]
		insights.Categories[claim.Category] = append(insights.Categories[claim.Category], model.VerifiedClaim{
			Claim:  claim,
			Result: result,
		})
		if !result.Verified {
			insights.FailedCount++
		}
	}

	return insights, nil
}
