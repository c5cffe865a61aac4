package core

import (
	"context"
	"testing"

	"obracore/pkg/domain"
)

// fakeRuleView implements only the accessors a rule under test touches;
// anything else panics via the embedded nil interface.
type fakeRuleView struct {
	domain.RuleView
	budgetTasks      []BudgetTask
	budgets          map[string]Budget
	tasks            map[string]Task
	siteLogTasks     []SiteLogTask
	siteLogAttendees []SiteLogAttendee
	siteLogFiles     []SiteLogFile
	siteLogs         map[string]SiteLog
	contacts         map[string]Contact
	plans            map[string]Plan
	organizations    []Organization
	projects         []Project
}

func (v fakeRuleView) ListBudgetTasks() []BudgetTask           { return v.budgetTasks }
func (v fakeRuleView) ListSiteLogTasks() []SiteLogTask         { return v.siteLogTasks }
func (v fakeRuleView) ListSiteLogAttendees() []SiteLogAttendee { return v.siteLogAttendees }
func (v fakeRuleView) ListSiteLogFiles() []SiteLogFile         { return v.siteLogFiles }
func (v fakeRuleView) ListOrganizations() []Organization       { return v.organizations }
func (v fakeRuleView) ListProjects() []Project                 { return v.projects }

func (v fakeRuleView) FindBudget(id string) (Budget, bool) {
	b, ok := v.budgets[id]
	return b, ok
}

func (v fakeRuleView) FindTask(id string) (Task, bool) {
	t, ok := v.tasks[id]
	return t, ok
}

func (v fakeRuleView) FindSiteLog(id string) (SiteLog, bool) {
	l, ok := v.siteLogs[id]
	return l, ok
}

func (v fakeRuleView) FindContact(id string) (Contact, bool) {
	c, ok := v.contacts[id]
	return c, ok
}

func (v fakeRuleView) FindPlan(id string) (Plan, bool) {
	p, ok := v.plans[id]
	return p, ok
}

func withID(id string) Base { return Base{ID: id} }

func TestBudgetIntegrityRuleBlocksBrokenLines(t *testing.T) {
	rule := NewBudgetIntegrityRule()
	view := fakeRuleView{
		budgetTasks: []BudgetTask{
			{Base: withID("bt-ok"), BudgetID: "b1", TaskID: "t1", Quantity: 2},
			{Base: withID("bt-no-budget"), BudgetID: "ghost", TaskID: "t1"},
			{Base: withID("bt-no-task"), BudgetID: "b1", TaskID: "ghost"},
			{Base: withID("bt-negative"), BudgetID: "b1", Quantity: -1},
		},
		budgets: map[string]Budget{"b1": {Base: withID("b1")}},
		tasks:   map[string]Task{"t1": {Base: withID("t1")}},
	}

	res, err := rule.Evaluate(context.Background(), view, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %+v", res.Violations)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	for _, v := range res.Violations {
		if v.EntityID == "bt-ok" {
			t.Fatalf("clean line must not be flagged: %+v", v)
		}
	}
}

func TestSiteLogLinksRuleBlocksOrphans(t *testing.T) {
	rule := NewSiteLogLinksRule()
	view := fakeRuleView{
		siteLogs: map[string]SiteLog{"log1": {Base: withID("log1")}},
		contacts: map[string]Contact{"c1": {Base: withID("c1")}},
		siteLogTasks: []SiteLogTask{
			{Base: withID("task-ok"), SiteLogID: "log1"},
			{Base: withID("task-orphan"), SiteLogID: "gone"},
		},
		siteLogAttendees: []SiteLogAttendee{
			{Base: withID("att-ok"), SiteLogID: "log1", ContactID: "c1"},
			{Base: withID("att-bad-contact"), SiteLogID: "log1", ContactID: "gone"},
		},
		siteLogFiles: []SiteLogFile{
			{Base: withID("file-orphan"), SiteLogID: "gone"},
		},
	}

	res, err := rule.Evaluate(context.Background(), view, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 3 || !res.HasBlocking() {
		t.Fatalf("expected 3 blocking violations, got %+v", res.Violations)
	}
}

func TestPlanProjectCapRuleWarnsOverCap(t *testing.T) {
	rule := NewPlanProjectCapRule()
	planID := "starter"
	view := fakeRuleView{
		plans: map[string]Plan{"starter": {Base: withID("starter"), Name: "Starter", MaxProjects: 1}},
		organizations: []Organization{
			{Base: withID("org1"), Name: "Over Cap", PlanID: &planID},
			{Base: withID("org2"), Name: "No Plan"},
		},
		projects: []Project{
			{Base: withID("p1"), OrganizationID: "org1"},
			{Base: withID("p2"), OrganizationID: "org1"},
			{Base: withID("p3"), OrganizationID: "org2"},
		},
	}

	res, err := rule.Evaluate(context.Background(), view, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected single violation, got %+v", res.Violations)
	}
	v := res.Violations[0]
	if v.Severity != SeverityWarn || v.EntityID != "org1" {
		t.Fatalf("unexpected violation: %+v", v)
	}
	if res.HasBlocking() {
		t.Fatalf("warn must not block")
	}
}

func TestDefaultRulesEngineAllowsCleanTenant(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	ctx := context.Background()
	ten := seedTenant(t, svc)
	_, res, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: "Clean"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected no violations, got %+v", res.Violations)
	}
}
