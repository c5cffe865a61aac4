// Package seed loads shared catalog data (plans, units, task categories,
// materials, activities and actions) from a YAML file into the store.
// Seeding is idempotent: entries whose name already exists are skipped, so
// it runs safely on every startup.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"obracore/internal/core"
)

// File is the on-disk seed document.
type File struct {
	Plans          []PlanSeed     `yaml:"plans"`
	Units          []UnitSeed     `yaml:"units"`
	TaskCategories []CategorySeed `yaml:"task_categories"`
	Materials      []MaterialSeed `yaml:"materials"`
	Activities     []ActivitySeed `yaml:"activities"`
}

// PlanSeed describes a subscription plan.
type PlanSeed struct {
	Name              string `yaml:"name"`
	MaxProjects       int    `yaml:"max_projects"`
	MaxUsers          int    `yaml:"max_users"`
	MonthlyPriceCents int64  `yaml:"monthly_price_cents"`
}

// UnitSeed describes a measurement unit.
type UnitSeed struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// CategorySeed describes a task category and its children. Nesting in the
// file becomes ParentID links; siblings keep file order as Position.
type CategorySeed struct {
	Name     string         `yaml:"name"`
	Children []CategorySeed `yaml:"children"`
}

// MaterialSeed describes a material, referencing its unit by symbol.
type MaterialSeed struct {
	Name           string `yaml:"name"`
	UnitSymbol     string `yaml:"unit_symbol"`
	UnitPriceCents int64  `yaml:"unit_price_cents"`
}

// ActivitySeed describes an admin activity and its actions.
type ActivitySeed struct {
	Name    string   `yaml:"name"`
	Actions []string `yaml:"actions"`
}

// Load reads and parses a seed file.
func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return file, nil
}

// Apply creates the seeded catalog records that do not exist yet.
func Apply(ctx context.Context, svc *core.Service, file File) error {
	if err := applyPlans(ctx, svc, file.Plans); err != nil {
		return err
	}
	units, err := applyUnits(ctx, svc, file.Units)
	if err != nil {
		return err
	}
	if err := applyCategories(ctx, svc, nil, file.TaskCategories); err != nil {
		return err
	}
	if err := applyMaterials(ctx, svc, units, file.Materials); err != nil {
		return err
	}
	return applyActivities(ctx, svc, file.Activities)
}

func applyPlans(ctx context.Context, svc *core.Service, seeds []PlanSeed) error {
	existing, err := svc.ListPlans(ctx)
	if err != nil {
		return err
	}
	known := map[string]bool{}
	for _, plan := range existing {
		known[plan.Name] = true
	}
	for _, s := range seeds {
		if known[s.Name] {
			continue
		}
		_, _, err := svc.CreatePlan(ctx, core.Plan{
			Name:              s.Name,
			MaxProjects:       s.MaxProjects,
			MaxUsers:          s.MaxUsers,
			MonthlyPriceCents: s.MonthlyPriceCents,
		})
		if err != nil {
			return fmt.Errorf("seed plan %q: %w", s.Name, err)
		}
	}
	return nil
}

// applyUnits returns a symbol -> unit id index for material seeding.
func applyUnits(ctx context.Context, svc *core.Service, seeds []UnitSeed) (map[string]string, error) {
	existing, err := svc.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	bySymbol := map[string]string{}
	known := map[string]bool{}
	for _, unit := range existing {
		bySymbol[unit.Symbol] = unit.ID
		known[unit.Name] = true
	}
	for _, s := range seeds {
		if known[s.Name] {
			continue
		}
		unit, _, err := svc.CreateUnit(ctx, core.Unit{Name: s.Name, Symbol: s.Symbol})
		if err != nil {
			return nil, fmt.Errorf("seed unit %q: %w", s.Name, err)
		}
		bySymbol[unit.Symbol] = unit.ID
	}
	return bySymbol, nil
}

func applyCategories(ctx context.Context, svc *core.Service, parentID *string, seeds []CategorySeed) error {
	existing, err := svc.ListTaskCategories(ctx)
	if err != nil {
		return err
	}
	byName := map[string]string{}
	for _, category := range existing {
		byName[category.Name] = category.ID
	}
	for position, s := range seeds {
		id, ok := byName[s.Name]
		if !ok {
			created, _, err := svc.CreateTaskCategory(ctx, core.TaskCategory{
				Name:     s.Name,
				ParentID: parentID,
				Position: position,
			})
			if err != nil {
				return fmt.Errorf("seed task category %q: %w", s.Name, err)
			}
			id = created.ID
		}
		if err := applyCategories(ctx, svc, &id, s.Children); err != nil {
			return err
		}
	}
	return nil
}

func applyMaterials(ctx context.Context, svc *core.Service, unitsBySymbol map[string]string, seeds []MaterialSeed) error {
	existing, err := svc.ListMaterials(ctx)
	if err != nil {
		return err
	}
	known := map[string]bool{}
	for _, material := range existing {
		known[material.Name] = true
	}
	for _, s := range seeds {
		if known[s.Name] {
			continue
		}
		material := core.Material{Name: s.Name, UnitPriceCents: s.UnitPriceCents}
		if s.UnitSymbol != "" {
			unitID, ok := unitsBySymbol[s.UnitSymbol]
			if !ok {
				return fmt.Errorf("seed material %q: unknown unit symbol %q", s.Name, s.UnitSymbol)
			}
			material.UnitID = &unitID
		}
		if _, _, err := svc.CreateMaterial(ctx, material); err != nil {
			return fmt.Errorf("seed material %q: %w", s.Name, err)
		}
	}
	return nil
}

func applyActivities(ctx context.Context, svc *core.Service, seeds []ActivitySeed) error {
	existingActivities, err := svc.ListActivities(ctx)
	if err != nil {
		return err
	}
	existingActions, err := svc.ListActions(ctx)
	if err != nil {
		return err
	}
	activityByName := map[string]string{}
	for _, activity := range existingActivities {
		activityByName[activity.Name] = activity.ID
	}
	knownActions := map[string]bool{}
	for _, action := range existingActions {
		knownActions[action.Name] = true
	}
	for _, s := range seeds {
		id, ok := activityByName[s.Name]
		if !ok {
			created, _, err := svc.CreateActivity(ctx, core.Activity{Name: s.Name})
			if err != nil {
				return fmt.Errorf("seed activity %q: %w", s.Name, err)
			}
			id = created.ID
		}
		for _, name := range s.Actions {
			if knownActions[name] {
				continue
			}
			if _, _, err := svc.CreateAction(ctx, core.Action{ActivityID: &id, Name: name}); err != nil {
				return fmt.Errorf("seed action %q: %w", name, err)
			}
		}
	}
	return nil
}
