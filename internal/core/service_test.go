package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

type tenant struct {
	user User
	org  Organization
}

func seedTenant(t *testing.T, svc *Service) tenant {
	t.Helper()
	ctx := context.Background()
	user, _, err := svc.CreateUser(ctx, User{Email: "owner@example.com", FullName: "Owner"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	org, _, err := svc.CreateOrganization(ctx, Organization{Name: "Acme Builds", OwnerID: user.ID})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}
	return tenant{user: user, org: org}
}

func TestProjectCRUDRoundTrip(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)

	project, _, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: "Tower A"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.ID == "" || project.Status != ProjectStatusPlanned {
		t.Fatalf("unexpected project defaults: %+v", project)
	}

	updated, _, err := svc.UpdateProject(ctx, project.ID, func(p *Project) error {
		p.Status = ProjectStatusActive
		return nil
	})
	if err != nil {
		t.Fatalf("update project: %v", err)
	}
	if updated.Status != ProjectStatusActive {
		t.Fatalf("expected active status, got %s", updated.Status)
	}

	got, err := svc.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.Status != ProjectStatusActive {
		t.Fatalf("stale read after update: %+v", got)
	}

	if _, err := svc.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := svc.GetProject(ctx, project.ID); err == nil {
		t.Fatalf("expected not found after delete")
	}
}

func TestGetReturnsTypedNotFound(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	_, err := svc.GetProject(context.Background(), "missing")
	var notFound ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if notFound.Entity != EntityProject || notFound.ID != "missing" {
		t.Fatalf("unexpected error payload: %+v", notFound)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)

	// The memory store stamps CreatedAt with its own clock; drive it too.
	names := []string{"first", "second", "third"}
	for i, name := range names {
		at := base.Add(time.Duration(i) * time.Hour)
		store := svc.Store()
		if setter, ok := store.(interface{ SetNowFunc(func() time.Time) }); ok {
			setter.SetNowFunc(func() time.Time { return at })
		}
		if _, _, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: name}); err != nil {
			t.Fatalf("create project %s: %v", name, err)
		}
	}

	projects, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}
	if projects[0].Name != "third" || projects[2].Name != "first" {
		t.Fatalf("expected newest-first ordering, got %s..%s", projects[0].Name, projects[2].Name)
	}
}

func TestAssignProjectOwnerValidatesUser(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)

	project, _, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: "Tower B"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	if _, _, err := svc.AssignProjectOwner(ctx, project.ID, "ghost"); err == nil {
		t.Fatalf("expected missing user to fail")
	}

	updated, _, err := svc.AssignProjectOwner(ctx, project.ID, ten.user.ID)
	if err != nil {
		t.Fatalf("assign owner: %v", err)
	}
	if updated.OwnerID == nil || *updated.OwnerID != ten.user.ID {
		t.Fatalf("owner not assigned: %+v", updated)
	}
}

func TestAttachWalletIsIdempotent(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)

	wallet, _, err := svc.CreateWallet(ctx, Wallet{Name: "Main", Currency: "EUR"})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, _, err := svc.AttachWallet(ctx, ten.org.ID, wallet.ID); err != nil {
			t.Fatalf("attach wallet (round %d): %v", i, err)
		}
	}
	org, err := svc.GetOrganization(ctx, ten.org.ID)
	if err != nil {
		t.Fatalf("get organization: %v", err)
	}
	if len(org.WalletIDs) != 1 || org.WalletIDs[0] != wallet.ID {
		t.Fatalf("expected single wallet link, got %v", org.WalletIDs)
	}

	if _, _, err := svc.AttachWallet(ctx, ten.org.ID, "missing-wallet"); err == nil {
		t.Fatalf("expected missing wallet to fail")
	}
}

func TestUpdateContactTypesReplacesTags(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)

	contact, _, err := svc.CreateContact(ctx, Contact{OrganizationID: ten.org.ID, FirstName: "Ana", LastName: "Mason", ContactTypes: []string{"supplier"}})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	updated, _, err := svc.UpdateContactTypes(ctx, contact.ID, []string{"client", "client", "architect"})
	if err != nil {
		t.Fatalf("update contact types: %v", err)
	}
	if len(updated.ContactTypes) != 2 {
		t.Fatalf("expected deduped types, got %v", updated.ContactTypes)
	}
}

func TestMoveTaskCategoryRejectsCycles(t *testing.T) {
	svc := NewInMemoryService(NewRulesEngine())
	ctx := context.Background()

	root, _, err := svc.CreateTaskCategory(ctx, TaskCategory{Name: "Structure"})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, _, err := svc.CreateTaskCategory(ctx, TaskCategory{Name: "Concrete", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	grandchild, _, err := svc.CreateTaskCategory(ctx, TaskCategory{Name: "Rebar", ParentID: &child.ID})
	if err != nil {
		t.Fatalf("create grandchild: %v", err)
	}

	if _, _, err := svc.MoveTaskCategory(ctx, root.ID, &grandchild.ID, 0); err == nil {
		t.Fatalf("expected cycle to be rejected")
	}
	if _, _, err := svc.MoveTaskCategory(ctx, root.ID, &root.ID, 0); err == nil {
		t.Fatalf("expected self-parent to be rejected")
	}

	moved, _, err := svc.MoveTaskCategory(ctx, grandchild.ID, &root.ID, 3)
	if err != nil {
		t.Fatalf("legal move: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != root.ID || moved.Position != 3 {
		t.Fatalf("unexpected node after move: %+v", moved)
	}

	promoted, _, err := svc.MoveTaskCategory(ctx, child.ID, nil, 0)
	if err != nil {
		t.Fatalf("promote to root: %v", err)
	}
	if promoted.ParentID != nil {
		t.Fatalf("expected root node, got parent %v", *promoted.ParentID)
	}
}
