package core

import (
	"context"

	"obracore/pkg/domain"
)

// CreateProject persists a new project.
func (s *Service) CreateProject(ctx context.Context, project Project) (Project, Result, error) {
	var created Project
	res, err := s.transact(ctx, "create_project", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateProject(project)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateProject mutates a project using the provided mutator.
func (s *Service) UpdateProject(ctx context.Context, id string, mutator func(*Project) error) (Project, Result, error) {
	var updated Project
	res, err := s.transact(ctx, "update_project", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateProject(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteProject removes a project record.
func (s *Service) DeleteProject(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_project", func(tx domain.Transaction) error {
		return tx.DeleteProject(id)
	}, func() string { return id })
}

// ListProjects returns all projects, newest first.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListProjects()
		return nil
	})
	return sortByCreation(out, func(p Project) Base { return p.Base }), err
}

// ListProjectsByOrganization returns an organization's projects, newest first.
func (s *Service) ListProjectsByOrganization(ctx context.Context, organizationID string) ([]Project, error) {
	var out []Project
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, project := range v.ListProjects() {
			if project.OrganizationID == organizationID {
				out = append(out, project)
			}
		}
		return nil
	})
	return sortByCreation(out, func(p Project) Base { return p.Base }), err
}

// GetProject returns a project by id.
func (s *Service) GetProject(ctx context.Context, id string) (Project, error) {
	var out Project
	err := s.read(ctx, func(v domain.TransactionView) error {
		project, ok := v.FindProject(id)
		if !ok {
			return ErrNotFound{Entity: EntityProject, ID: id}
		}
		out = project
		return nil
	})
	return out, err
}

// AssignProjectOwner sets a project's owner, validating the user inside the
// same transaction.
func (s *Service) AssignProjectOwner(ctx context.Context, projectID, userID string) (Project, Result, error) {
	var updated Project
	res, err := s.transact(ctx, "assign_project_owner", func(tx domain.Transaction) error {
		if _, ok := tx.Snapshot().FindUser(userID); !ok {
			return ErrNotFound{Entity: EntityUser, ID: userID}
		}
		var err error
		updated, err = tx.UpdateProject(projectID, func(p *Project) error {
			p.OwnerID = &userID
			return nil
		})
		return err
	}, func() string { return projectID })
	return updated, res, err
}

// CreateBudget persists a new budget.
func (s *Service) CreateBudget(ctx context.Context, budget Budget) (Budget, Result, error) {
	var created Budget
	res, err := s.transact(ctx, "create_budget", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateBudget(budget)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateBudget mutates a budget using the provided mutator.
func (s *Service) UpdateBudget(ctx context.Context, id string, mutator func(*Budget) error) (Budget, Result, error) {
	var updated Budget
	res, err := s.transact(ctx, "update_budget", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateBudget(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteBudget removes a budget record.
func (s *Service) DeleteBudget(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_budget", func(tx domain.Transaction) error {
		return tx.DeleteBudget(id)
	}, func() string { return id })
}

// ListBudgets returns all budgets, newest first.
func (s *Service) ListBudgets(ctx context.Context) ([]Budget, error) {
	var out []Budget
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListBudgets()
		return nil
	})
	return sortByCreation(out, func(b Budget) Base { return b.Base }), err
}

// ListBudgetsByProject returns a project's budgets, newest first.
func (s *Service) ListBudgetsByProject(ctx context.Context, projectID string) ([]Budget, error) {
	var out []Budget
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, budget := range v.ListBudgets() {
			if budget.ProjectID == projectID {
				out = append(out, budget)
			}
		}
		return nil
	})
	return sortByCreation(out, func(b Budget) Base { return b.Base }), err
}

// GetBudget returns a budget by id.
func (s *Service) GetBudget(ctx context.Context, id string) (Budget, error) {
	var out Budget
	err := s.read(ctx, func(v domain.TransactionView) error {
		budget, ok := v.FindBudget(id)
		if !ok {
			return ErrNotFound{Entity: EntityBudget, ID: id}
		}
		out = budget
		return nil
	})
	return out, err
}

// MoveBudget re-homes a budget under another project, validating the project
// inside the same transaction.
func (s *Service) MoveBudget(ctx context.Context, budgetID, projectID string) (Budget, Result, error) {
	var updated Budget
	res, err := s.transact(ctx, "move_budget", func(tx domain.Transaction) error {
		if _, ok := tx.Snapshot().FindProject(projectID); !ok {
			return ErrNotFound{Entity: EntityProject, ID: projectID}
		}
		var err error
		updated, err = tx.UpdateBudget(budgetID, func(b *Budget) error {
			b.ProjectID = projectID
			return nil
		})
		return err
	}, func() string { return budgetID })
	return updated, res, err
}

// CreateBudgetTask persists a budget line.
func (s *Service) CreateBudgetTask(ctx context.Context, line BudgetTask) (BudgetTask, Result, error) {
	var created BudgetTask
	res, err := s.transact(ctx, "create_budget_task", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateBudgetTask(line)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateBudgetTask mutates a budget line using the provided mutator.
func (s *Service) UpdateBudgetTask(ctx context.Context, id string, mutator func(*BudgetTask) error) (BudgetTask, Result, error) {
	var updated BudgetTask
	res, err := s.transact(ctx, "update_budget_task", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateBudgetTask(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteBudgetTask removes a budget line.
func (s *Service) DeleteBudgetTask(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_budget_task", func(tx domain.Transaction) error {
		return tx.DeleteBudgetTask(id)
	}, func() string { return id })
}

// ListBudgetTasks returns all budget lines, newest first.
func (s *Service) ListBudgetTasks(ctx context.Context) ([]BudgetTask, error) {
	var out []BudgetTask
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListBudgetTasks()
		return nil
	})
	return sortByCreation(out, func(b BudgetTask) Base { return b.Base }), err
}

// ListBudgetTasksByBudget returns a budget's lines, newest first.
func (s *Service) ListBudgetTasksByBudget(ctx context.Context, budgetID string) ([]BudgetTask, error) {
	var out []BudgetTask
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, line := range v.ListBudgetTasks() {
			if line.BudgetID == budgetID {
				out = append(out, line)
			}
		}
		return nil
	})
	return sortByCreation(out, func(b BudgetTask) Base { return b.Base }), err
}

// GetBudgetTask returns a budget line by id.
func (s *Service) GetBudgetTask(ctx context.Context, id string) (BudgetTask, error) {
	var out BudgetTask
	err := s.read(ctx, func(v domain.TransactionView) error {
		line, ok := v.FindBudgetTask(id)
		if !ok {
			return ErrNotFound{Entity: EntityBudgetTask, ID: id}
		}
		out = line
		return nil
	})
	return out, err
}
