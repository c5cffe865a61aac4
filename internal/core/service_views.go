package core

import (
	"context"
	"fmt"
	"sort"

	"obracore/pkg/domain"
)

// ProjectView joins a project with display names resolved from its references.
type ProjectView struct {
	Project
	OrganizationName string `json:"organization_name"`
	OwnerName        string `json:"owner_name,omitempty"`
}

// OrganizationView joins an organization with owner and plan display names.
type OrganizationView struct {
	Organization
	OwnerName string `json:"owner_name"`
	PlanName  string `json:"plan_name,omitempty"`
}

// MovementView joins a movement with project and contact display names.
type MovementView struct {
	Movement
	ProjectName string `json:"project_name,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
}

// ListProjectViews returns all projects with joined display names, newest first.
func (s *Service) ListProjectViews(ctx context.Context) ([]ProjectView, error) {
	var out []ProjectView
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, project := range v.ListProjects() {
			view := ProjectView{Project: project}
			if org, ok := v.FindOrganization(project.OrganizationID); ok {
				view.OrganizationName = org.Name
			}
			if project.OwnerID != nil {
				if owner, ok := v.FindUser(*project.OwnerID); ok {
					view.OwnerName = owner.FullName
				}
			}
			out = append(out, view)
		}
		return nil
	})
	return sortByCreation(out, func(p ProjectView) Base { return p.Base }), err
}

// ListOrganizationViews returns all organizations with joined display names,
// newest first.
func (s *Service) ListOrganizationViews(ctx context.Context) ([]OrganizationView, error) {
	var out []OrganizationView
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, org := range v.ListOrganizations() {
			view := OrganizationView{Organization: org}
			if owner, ok := v.FindUser(org.OwnerID); ok {
				view.OwnerName = owner.FullName
			}
			if org.PlanID != nil {
				if plan, ok := v.FindPlan(*org.PlanID); ok {
					view.PlanName = plan.Name
				}
			}
			out = append(out, view)
		}
		return nil
	})
	return sortByCreation(out, func(o OrganizationView) Base { return o.Base }), err
}

// ListMovementViews returns all movements with joined display names, newest
// first.
func (s *Service) ListMovementViews(ctx context.Context) ([]MovementView, error) {
	var out []MovementView
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, movement := range v.ListMovements() {
			view := MovementView{Movement: movement}
			if movement.ProjectID != nil {
				if project, ok := v.FindProject(*movement.ProjectID); ok {
					view.ProjectName = project.Name
				}
			}
			if movement.ContactID != nil {
				if contact, ok := v.FindContact(*movement.ContactID); ok {
					view.ContactName = contact.FirstName + " " + contact.LastName
				}
			}
			out = append(out, view)
		}
		return nil
	})
	return sortByCreation(out, func(m MovementView) Base { return m.Base }), err
}

// MonthlyFlow aggregates income and expense for one calendar month.
type MonthlyFlow struct {
	Month        string `json:"month"` // YYYY-MM
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
}

// ProjectStats aggregates a project's financial movements.
type ProjectStats struct {
	ProjectID    string        `json:"project_id"`
	IncomeCents  int64         `json:"income_cents"`
	ExpenseCents int64         `json:"expense_cents"`
	BalanceCents int64         `json:"balance_cents"`
	Monthly      []MonthlyFlow `json:"monthly"`
}

// OrganizationStats aggregates an organization's projects and finances.
type OrganizationStats struct {
	OrganizationID   string                `json:"organization_id"`
	ProjectsByStatus map[ProjectStatus]int `json:"projects_by_status"`
	IncomeCents      int64                 `json:"income_cents"`
	ExpenseCents     int64                 `json:"expense_cents"`
	BalanceCents     int64                 `json:"balance_cents"`
}

// ProjectStatsFor aggregates movements scoped to the project: totals plus a
// month-keyed series ordered chronologically.
func (s *Service) ProjectStatsFor(ctx context.Context, projectID string) (ProjectStats, error) {
	stats := ProjectStats{ProjectID: projectID}
	err := s.read(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindProject(projectID); !ok {
			return ErrNotFound{Entity: EntityProject, ID: projectID}
		}
		byMonth := make(map[string]*MonthlyFlow)
		var months []string
		for _, movement := range v.ListMovements() {
			if movement.ProjectID == nil || *movement.ProjectID != projectID {
				continue
			}
			month := movement.OccurredOn.Format("2006-01")
			flow, ok := byMonth[month]
			if !ok {
				flow = &MonthlyFlow{Month: month}
				byMonth[month] = flow
				months = append(months, month)
			}
			switch movement.Kind {
			case MovementIncome:
				stats.IncomeCents += movement.AmountCents
				flow.IncomeCents += movement.AmountCents
			case MovementExpense:
				stats.ExpenseCents += movement.AmountCents
				flow.ExpenseCents += movement.AmountCents
			}
		}
		sort.Strings(months)
		for _, month := range months {
			stats.Monthly = append(stats.Monthly, *byMonth[month])
		}
		return nil
	})
	stats.BalanceCents = stats.IncomeCents - stats.ExpenseCents
	if err != nil {
		return ProjectStats{}, err
	}
	return stats, nil
}

// OrganizationStatsFor aggregates project status counts and finance totals
// for the organization.
func (s *Service) OrganizationStatsFor(ctx context.Context, organizationID string) (OrganizationStats, error) {
	stats := OrganizationStats{
		OrganizationID:   organizationID,
		ProjectsByStatus: make(map[ProjectStatus]int),
	}
	err := s.read(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindOrganization(organizationID); !ok {
			return ErrNotFound{Entity: EntityOrganization, ID: organizationID}
		}
		for _, project := range v.ListProjects() {
			if project.OrganizationID == organizationID {
				stats.ProjectsByStatus[project.Status]++
			}
		}
		for _, movement := range v.ListMovements() {
			if movement.OrganizationID != organizationID {
				continue
			}
			switch movement.Kind {
			case MovementIncome:
				stats.IncomeCents += movement.AmountCents
			case MovementExpense:
				stats.ExpenseCents += movement.AmountCents
			}
		}
		return nil
	})
	stats.BalanceCents = stats.IncomeCents - stats.ExpenseCents
	if err != nil {
		return OrganizationStats{}, err
	}
	return stats, nil
}

// ActivityEntry is one audit change rendered for the recent-activity feed.
type ActivityEntry struct {
	Entity   EntityType   `json:"entity"`
	Action   ChangeAction `json:"action"`
	EntityID string       `json:"entity_id,omitempty"`
	Summary  string       `json:"summary"`
}

// RecentActivities returns the latest audit changes, newest first.
func (s *Service) RecentActivities(limit int) []ActivityEntry {
	changes := s.store.Changes(limit)
	out := make([]ActivityEntry, 0, len(changes))
	for _, change := range changes {
		entry := ActivityEntry{Entity: change.Entity, Action: change.Action}
		record := change.After
		if record == nil {
			record = change.Before
		}
		if identifiable, ok := record.(domain.Identifiable); ok {
			entry.EntityID = identifiable.EntityID()
		}
		entry.Summary = fmt.Sprintf("%s %s %s", change.Action, change.Entity, entry.EntityID)
		out = append(out, entry)
	}
	return out
}
