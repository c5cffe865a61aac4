package core

import (
	"context"
	"fmt"

	"obracore/pkg/domain"
)

// NewBudgetIntegrityRule returns the blocking rule enforcing that budget
// lines reference an existing budget and task and carry sane quantities.
func NewBudgetIntegrityRule() domain.Rule {
	return budgetIntegrityRule{}
}

type budgetIntegrityRule struct{}

func (budgetIntegrityRule) Name() string { return "budget_integrity" }

func (budgetIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(line domain.BudgetTask, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "budget_integrity",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityBudgetTask,
			EntityID: line.ID,
		})
	}
	for _, line := range view.ListBudgetTasks() {
		if _, ok := view.FindBudget(line.BudgetID); !ok {
			block(line, fmt.Sprintf("budget line %s references missing budget %s", line.ID, line.BudgetID))
		}
		if line.TaskID != "" {
			if _, ok := view.FindTask(line.TaskID); !ok {
				block(line, fmt.Sprintf("budget line %s references missing task %s", line.ID, line.TaskID))
			}
		}
		if line.Quantity < 0 {
			block(line, fmt.Sprintf("budget line %s has negative quantity %v", line.ID, line.Quantity))
		}
	}
	return res, nil
}
