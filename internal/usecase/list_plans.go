package usecase

import (
	"context"
	"sort"
)

// PlanSummary is one row of the plan listing
type PlanSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
	Deploys     int    `json:"deploys"`
}

// ListPlans lists the deployment plans that can be run by name
type ListPlans struct {
	plans PlanRepository
}

// NewListPlans creates a new ListPlans use case
func NewListPlans(plans PlanRepository) *ListPlans {
	return &ListPlans{plans: plans}
}

// Run returns the available plans sorted by name
func (uc *ListPlans) Run(ctx context.Context) []PlanSummary {
	plans := uc.plans.ListPlans(ctx)

	summaries := make([]PlanSummary, 0, len(plans))
	for _, plan := range plans {
		summaries = append(summaries, PlanSummary{
			Name:        plan.Name,
			Description: plan.Description,
			Steps:       len(plan.Steps),
			Deploys:     len(plan.DeploySteps()),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}
