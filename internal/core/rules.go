package core

import "obracore/pkg/domain"

type (
	// Rule is an evaluation executed within a transaction boundary.
	Rule = domain.Rule
	// RuleView is the read-only state rules evaluate against.
	RuleView = domain.RuleView
	// RulesEngine orchestrates rule evaluation.
	RulesEngine = domain.RulesEngine
)

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewMovementScopeRule())
	engine.Register(NewBudgetIntegrityRule())
	engine.Register(NewSiteLogLinksRule())
	engine.Register(NewPlanProjectCapRule())
	return engine
}
