package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"obracore/internal/core"
)

const catalogYAML = `
plans:
  - name: Free
    max_projects: 1
    max_users: 2
  - name: Studio
    max_projects: 10
    max_users: 15
    monthly_price_cents: 4900
units:
  - name: Square meter
    symbol: m2
  - name: Cubic meter
    symbol: m3
task_categories:
  - name: Shell
    children:
      - name: Concrete
      - name: Masonry
  - name: Finishes
materials:
  - name: Ready-mix concrete C25
    unit_symbol: m3
    unit_price_cents: 11500
activities:
  - name: Projects
    actions:
      - create_project
      - archive_project
`

func writeSeedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestApplySeedsCatalog(t *testing.T) {
	svc := core.NewInMemoryService(nil)
	file, err := Load(writeSeedFile(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Apply(context.Background(), svc, file); err != nil {
		t.Fatalf("apply: %v", err)
	}

	ctx := context.Background()
	plans, err := svc.ListPlans(ctx)
	if err != nil || len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d (%v)", len(plans), err)
	}
	categories, err := svc.ListTaskCategories(ctx)
	if err != nil || len(categories) != 4 {
		t.Fatalf("expected 4 categories, got %d (%v)", len(categories), err)
	}
	var concreteParent *string
	for _, category := range categories {
		if category.Name == "Concrete" {
			concreteParent = category.ParentID
		}
	}
	if concreteParent == nil {
		t.Fatalf("nested category must get a parent")
	}

	materials, err := svc.ListMaterials(ctx)
	if err != nil || len(materials) != 1 {
		t.Fatalf("expected 1 material, got %d (%v)", len(materials), err)
	}
	if materials[0].UnitID == nil {
		t.Fatalf("material must resolve its unit by symbol")
	}
	actions, err := svc.ListActions(ctx)
	if err != nil || len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d (%v)", len(actions), err)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	svc := core.NewInMemoryService(nil)
	file, err := Load(writeSeedFile(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Apply(ctx, svc, file); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	units, err := svc.ListUnits(ctx)
	if err != nil || len(units) != 2 {
		t.Fatalf("expected 2 units after reapply, got %d (%v)", len(units), err)
	}
	plans, err := svc.ListPlans(ctx)
	if err != nil || len(plans) != 2 {
		t.Fatalf("expected 2 plans after reapply, got %d (%v)", len(plans), err)
	}
}

func TestLoadRejectsUnknownUnitSymbol(t *testing.T) {
	svc := core.NewInMemoryService(nil)
	file := File{
		Materials: []MaterialSeed{{Name: "Rebar", UnitSymbol: "kg"}},
	}
	if err := Apply(context.Background(), svc, file); err == nil {
		t.Fatalf("expected unknown unit symbol error")
	}
}
