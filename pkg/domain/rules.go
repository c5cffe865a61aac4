package domain

import "context"

// RuleView provides read-only access to domain entities for rule evaluation.
type RuleView interface {
	ListPlans() []Plan
	ListOrganizations() []Organization
	ListProjects() []Project
	ListBudgets() []Budget
	ListBudgetTasks() []BudgetTask
	ListSiteLogs() []SiteLog
	ListSiteLogTasks() []SiteLogTask
	ListSiteLogAttendees() []SiteLogAttendee
	ListSiteLogFiles() []SiteLogFile
	ListMovements() []Movement
	ListContacts() []Contact
	ListTaskCategories() []TaskCategory
	FindPlan(id string) (Plan, bool)
	FindOrganization(id string) (Organization, bool)
	FindProject(id string) (Project, bool)
	FindBudget(id string) (Budget, bool)
	FindBudgetTask(id string) (BudgetTask, bool)
	FindSiteLog(id string) (SiteLog, bool)
	FindWallet(id string) (Wallet, bool)
	FindContact(id string) (Contact, bool)
	FindTaskCategory(id string) (TaskCategory, bool)
	FindTask(id string) (Task, bool)
}

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
