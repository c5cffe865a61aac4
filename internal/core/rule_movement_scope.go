package core

import (
	"context"
	"fmt"

	"obracore/pkg/domain"
)

// NewMovementScopeRule returns the rule flagging movements whose project
// belongs to a different organization. Cross-tenant references are tolerated
// but surfaced at warn severity.
func NewMovementScopeRule() domain.Rule {
	return movementScopeRule{}
}

type movementScopeRule struct{}

func (movementScopeRule) Name() string { return "movement_scope" }

func (movementScopeRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, movement := range view.ListMovements() {
		if movement.ProjectID == nil {
			continue
		}
		project, ok := view.FindProject(*movement.ProjectID)
		if !ok || project.OrganizationID == movement.OrganizationID {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "movement_scope",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("movement %s references project %s of organization %s, not %s", movement.ID, project.ID, project.OrganizationID, movement.OrganizationID),
			Entity:   domain.EntityMovement,
			EntityID: movement.ID,
		})
	}
	return res, nil
}
