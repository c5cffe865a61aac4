package core

import (
	"context"
	"testing"
	"time"
)

func TestProjectStatsAggregatesMonthly(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten, project := seedProject(t, svc)

	movements := []Movement{
		{OrganizationID: ten.org.ID, ProjectID: &project.ID, Kind: MovementIncome, AmountCents: 500_00, Currency: "EUR", OccurredOn: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{OrganizationID: ten.org.ID, ProjectID: &project.ID, Kind: MovementExpense, AmountCents: 120_00, Currency: "EUR", OccurredOn: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)},
		{OrganizationID: ten.org.ID, ProjectID: &project.ID, Kind: MovementExpense, AmountCents: 80_00, Currency: "EUR", OccurredOn: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
		// Unscoped movement must not count toward project stats.
		{OrganizationID: ten.org.ID, Kind: MovementIncome, AmountCents: 999_00, Currency: "EUR", OccurredOn: time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)},
	}
	for i, m := range movements {
		if _, _, err := svc.CreateMovement(ctx, m); err != nil {
			t.Fatalf("create movement %d: %v", i, err)
		}
	}

	stats, err := svc.ProjectStatsFor(ctx, project.ID)
	if err != nil {
		t.Fatalf("project stats: %v", err)
	}
	if stats.IncomeCents != 500_00 || stats.ExpenseCents != 200_00 || stats.BalanceCents != 300_00 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if len(stats.Monthly) != 2 {
		t.Fatalf("expected 2 monthly buckets, got %d", len(stats.Monthly))
	}
	if stats.Monthly[0].Month != "2026-01" || stats.Monthly[0].ExpenseCents != 120_00 {
		t.Fatalf("unexpected first bucket: %+v", stats.Monthly[0])
	}
	if stats.Monthly[1].Month != "2026-02" || stats.Monthly[1].ExpenseCents != 80_00 {
		t.Fatalf("unexpected second bucket: %+v", stats.Monthly[1])
	}

	if _, err := svc.ProjectStatsFor(ctx, "missing"); err == nil {
		t.Fatalf("expected not found for unknown project")
	}
}

func TestOrganizationStatsCountsProjectsAndFinances(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)

	for _, status := range []ProjectStatus{ProjectStatusActive, ProjectStatusActive, ProjectStatusFinished} {
		if _, _, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: "P-" + string(status), Status: status}); err != nil {
			t.Fatalf("create project: %v", err)
		}
	}
	if _, _, err := svc.CreateMovement(ctx, Movement{OrganizationID: ten.org.ID, Kind: MovementIncome, AmountCents: 100_00, Currency: "EUR", OccurredOn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("create movement: %v", err)
	}

	stats, err := svc.OrganizationStatsFor(ctx, ten.org.ID)
	if err != nil {
		t.Fatalf("organization stats: %v", err)
	}
	if stats.ProjectsByStatus[ProjectStatusActive] != 2 || stats.ProjectsByStatus[ProjectStatusFinished] != 1 {
		t.Fatalf("unexpected status counts: %+v", stats.ProjectsByStatus)
	}
	if stats.BalanceCents != 100_00 {
		t.Fatalf("unexpected balance: %d", stats.BalanceCents)
	}
}

func TestRecentActivitiesReflectChanges(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)

	project, _, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: "Depot"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := svc.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	activities := svc.RecentActivities(2)
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	// Newest first: the delete precedes the create.
	if activities[0].Action != ActionDelete || activities[0].Entity != EntityProject || activities[0].EntityID != project.ID {
		t.Fatalf("unexpected newest activity: %+v", activities[0])
	}
	if activities[1].Action != ActionCreate {
		t.Fatalf("unexpected second activity: %+v", activities[1])
	}
	if activities[0].Summary == "" {
		t.Fatalf("expected summary text")
	}
}
