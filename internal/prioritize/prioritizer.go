package prioritize

import (
	"sort"
	"strings"

	"github.com/avetrov/claimsift/internal/model"
)

// Prioritizer scores claims by keyword weight and truncates each agent's
// claims to its budget
type Prioritizer struct {
	budgets  model.BudgetConfig
	keywords map[string]int
}

// NewPrioritizer creates a new prioritizer
func NewPrioritizer(budgets model.BudgetConfig, keywords map[string]int) *Prioritizer {
	return &Prioritizer{
		budgets:  budgets,
		keywords: keywords,
	}
}

// Prioritize scores every claim, ranks each agent's claims by score
// descending (stable on ties, preserving extraction order), and truncates to
// that agent's budget. The returned list is grouped by agent in first-seen
// order; an agent with zero claims contributes nothing.
func (p *Prioritizer) Prioritize(claims []model.Claim) []model.Claim {
	byAgent := make(map[string][]model.Claim)
	var agentOrder []string

	for _, claim := range claims {
		claim.Score = p.Score(claim.Text)
		if _, seen := byAgent[claim.SourceAgent]; !seen {
			agentOrder = append(agentOrder, claim.SourceAgent)
		}
		byAgent[claim.SourceAgent] = append(byAgent[claim.SourceAgent], claim)
	}

	var retained []model.Claim
	for _, agent := range agentOrder {
		agentClaims := byAgent[agent]

		sort.SliceStable(agentClaims, func(i, j int) bool {
			return agentClaims[i].Score > agentClaims[j].Score
		})

		budget := p.budgets.Budget(agent)
		if len(agentClaims) > budget {
			agentClaims = agentClaims[:budget]
		}

		retained = append(retained, agentClaims...)
	}

	return retained
}

// Score computes the importance score for a claim text: the sum of matched
// keyword weights, case-insensitive substring match, 0 if nothing matches
func (p *Prioritizer) Score(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for keyword, weight := range p.keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			score += weight
		}
	}
	return score
}
