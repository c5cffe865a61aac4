package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"obracore/pkg/domain"
)

func TestStatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obracore.db")

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	ctx := context.Background()
	var unit domain.Unit
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		unit, err = tx.CreateUnit(domain.Unit{Name: "metro cuadrado", Symbol: "m2"})
		return err
	}); err != nil {
		t.Fatalf("create unit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if err := reopened.View(ctx, func(view domain.TransactionView) error {
		got, ok := view.FindUnit(unit.ID)
		if !ok {
			t.Fatalf("expected unit %q after reopen", unit.ID)
		}
		if got.Symbol != "m2" {
			t.Fatalf("expected symbol m2, got %q", got.Symbol)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestReferentialChainPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	var project domain.Project
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		user, err := tx.CreateUser(domain.User{Email: "owner@example.com"})
		if err != nil {
			return err
		}
		org, err := tx.CreateOrganization(domain.Organization{Name: "Acme", OwnerID: user.ID})
		if err != nil {
			return err
		}
		project, err = tx.CreateProject(domain.Project{OrganizationID: org.ID, Name: "Bridge"})
		return err
	}); err != nil {
		t.Fatalf("seed chain: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if err := reopened.View(ctx, func(view domain.TransactionView) error {
		if _, ok := view.FindProject(project.ID); !ok {
			t.Fatalf("expected project %q after reopen", project.ID)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
