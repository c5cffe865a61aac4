package core

import (
	"context"
	"fmt"

	"obracore/pkg/domain"
)

// NewPlanProjectCapRule returns the rule flagging organizations whose plan
// caps projects when the cap is exceeded. Warn severity: existing data stays
// writable after a downgrade.
func NewPlanProjectCapRule() domain.Rule {
	return planProjectCapRule{}
}

type planProjectCapRule struct{}

func (planProjectCapRule) Name() string { return "plan_project_cap" }

func (planProjectCapRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	counts := make(map[string]int)
	for _, project := range view.ListProjects() {
		counts[project.OrganizationID]++
	}

	res := domain.Result{}
	for _, org := range view.ListOrganizations() {
		if org.PlanID == nil {
			continue
		}
		plan, ok := view.FindPlan(*org.PlanID)
		if !ok || plan.MaxProjects <= 0 {
			continue
		}
		if count := counts[org.ID]; count > plan.MaxProjects {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "plan_project_cap",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("organization %s (%s) exceeds plan %s project cap: %d/%d", org.Name, org.ID, plan.Name, count, plan.MaxProjects),
				Entity:   domain.EntityOrganization,
				EntityID: org.ID,
			})
		}
	}
	return res, nil
}
