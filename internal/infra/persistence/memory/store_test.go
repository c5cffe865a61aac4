package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"obracore/pkg/domain"
)

func seedTenant(t *testing.T, store *Store) (User, Organization) {
	t.Helper()
	var user User
	var org Organization
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		user, err = tx.CreateUser(User{Email: "owner@example.com", FullName: "Owner"})
		if err != nil {
			return err
		}
		org, err = tx.CreateOrganization(Organization{Name: "Acme Builds", OwnerID: user.ID})
		return err
	}); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return user, org
}

func TestCreateProjectDefaultsAndTimestamps(t *testing.T) {
	store := NewStore(nil)
	_, org := seedTenant(t, store)

	var project Project
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		project, err = tx.CreateProject(Project{OrganizationID: org.ID, Name: "Warehouse"})
		return err
	}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.ID == "" {
		t.Fatalf("expected generated project id")
	}
	if project.Status != domain.ProjectStatusPlanned {
		t.Fatalf("expected default status planned, got %q", project.Status)
	}
	if project.CreatedAt.IsZero() || !project.CreatedAt.Equal(project.UpdatedAt) {
		t.Fatalf("expected matching create/update timestamps")
	}
}

func TestTransactionRollbackOnError(t *testing.T) {
	store := NewStore(nil)
	_, org := seedTenant(t, store)

	sentinel := errors.New("boom")
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateProject(Project{OrganizationID: org.ID, Name: "Doomed"}); err != nil {
			return err
		}
		return sentinel
	}); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	if err := store.View(context.Background(), func(view TransactionView) error {
		if got := len(view.ListProjects()); got != 0 {
			t.Fatalf("expected rollback, found %d projects", got)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestDeleteGuardsBlockReferencedEntities(t *testing.T) {
	store := NewStore(nil)
	_, org := seedTenant(t, store)

	var project Project
	var budget Budget
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		project, err = tx.CreateProject(Project{OrganizationID: org.ID, Name: "Tower"})
		if err != nil {
			return err
		}
		budget, err = tx.CreateBudget(Budget{ProjectID: project.ID, Name: "Base", Currency: "EUR"})
		return err
	}); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeleteProject(project.ID)
	}); err == nil {
		t.Fatalf("expected delete project to fail while budget exists")
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if err := tx.DeleteBudget(budget.ID); err != nil {
			return err
		}
		return tx.DeleteProject(project.ID)
	}); err != nil {
		t.Fatalf("delete budget then project: %v", err)
	}
}

func TestCreateMovementValidation(t *testing.T) {
	store := NewStore(nil)
	_, org := seedTenant(t, store)

	cases := []struct {
		name string
		mv   Movement
	}{
		{name: "missing organization", mv: Movement{Kind: domain.MovementExpense, AmountCents: 100, OccurredOn: time.Now()}},
		{name: "bad kind", mv: Movement{OrganizationID: org.ID, Kind: "transfer", AmountCents: 100, OccurredOn: time.Now()}},
		{name: "zero amount", mv: Movement{OrganizationID: org.ID, Kind: domain.MovementIncome, OccurredOn: time.Now()}},
		{name: "missing date", mv: Movement{OrganizationID: org.ID, Kind: domain.MovementIncome, AmountCents: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
				_, err := tx.CreateMovement(tc.mv)
				return err
			}); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block_all" }

func (blockAllRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (Result, error) {
	if len(changes) == 0 {
		return Result{}, nil
	}
	return Result{Violations: []domain.Violation{{Rule: "block_all", Severity: domain.SeverityBlock}}}, nil
}

func TestBlockingRulePreventsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := NewStore(engine)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateUnit(Unit{Name: "metro", Symbol: "m"})
		return err
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if err := store.View(context.Background(), func(view TransactionView) error {
		if got := len(view.ListUnits()); got != 0 {
			t.Fatalf("expected blocked commit, found %d units", got)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestChangesReturnsNewestFirst(t *testing.T) {
	store := NewStore(nil)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	store.SetNowFunc(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	ctx := context.Background()
	for _, name := range []string{"metro", "kilo"} {
		if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
			_, err := tx.CreateUnit(Unit{Name: name, Symbol: name[:1]})
			return err
		}); err != nil {
			t.Fatalf("create unit %s: %v", name, err)
		}
	}

	changes := store.Changes(1)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	unit, ok := changes[0].After.(Unit)
	if !ok {
		t.Fatalf("expected unit payload, got %T", changes[0].After)
	}
	if unit.Name != "kilo" {
		t.Fatalf("expected newest change first, got %q", unit.Name)
	}
	if got := len(store.Changes(0)); got != 2 {
		t.Fatalf("expected full log, got %d", got)
	}
}

func TestSnapshotRoundTripAndMigration(t *testing.T) {
	store := NewStore(nil)
	user, org := seedTenant(t, store)

	snapshot := store.ExportState()
	// Inject an orphaned project to verify migration drops it.
	snapshot.Projects = map[string]Project{
		"orphan": {Base: domain.Base{ID: "orphan"}, OrganizationID: "missing", Name: "Ghost"},
	}

	restored := NewStore(nil)
	restored.ImportState(snapshot)
	if err := restored.View(context.Background(), func(view TransactionView) error {
		if _, ok := view.FindUser(user.ID); !ok {
			t.Fatalf("expected user to survive round trip")
		}
		if _, ok := view.FindOrganization(org.ID); !ok {
			t.Fatalf("expected organization to survive round trip")
		}
		if got := len(view.ListProjects()); got != 0 {
			t.Fatalf("expected orphaned project dropped, found %d", got)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
