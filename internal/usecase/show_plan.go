package usecase

import (
	"context"
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/sling/internal/domain"
)

// ShowPlan resolves a plan by name or file without touching the network
type ShowPlan struct {
	plans PlanRepository
}

// NewShowPlan creates a new ShowPlan use case
func NewShowPlan(plans PlanRepository) *ShowPlan {
	return &ShowPlan{plans: plans}
}

// ShowPlanResult contains a validated plan
type ShowPlanResult struct {
	Plan *domain.Plan
}

// Run loads and validates the plan. Unknown names get fuzzy suggestions.
func (uc *ShowPlan) Run(ctx context.Context, nameOrPath string) (*ShowPlanResult, error) {
	plan, err := uc.plans.GetPlan(ctx, nameOrPath)
	if err != nil {
		if suggestions := uc.Suggest(ctx, nameOrPath); len(suggestions) > 0 {
			return nil, fmt.Errorf("%w (did you mean %s?)", err, suggestions[0])
		}
		return nil, err
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", plan.Name, err)
	}

	return &ShowPlanResult{Plan: plan}, nil
}

// Suggest returns known plan names that fuzzy-match query, best match first
func (uc *ShowPlan) Suggest(ctx context.Context, query string) []string {
	names := lo.Map(uc.plans.ListPlans(ctx), func(p *domain.Plan, _ int) string {
		return p.Name
	})

	return lo.Map(fuzzy.Find(query, names), func(m fuzzy.Match, _ int) string {
		return m.Str
	})
}
