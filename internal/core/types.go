package core

import "obracore/pkg/domain"

type (
	EntityType         = domain.EntityType
	ProjectStatus      = domain.ProjectStatus
	MovementKind       = domain.MovementKind
	Severity           = domain.Severity
	Base               = domain.Base
	Plan               = domain.Plan
	User               = domain.User
	Organization       = domain.Organization
	Wallet             = domain.Wallet
	Project            = domain.Project
	Budget             = domain.Budget
	BudgetTask         = domain.BudgetTask
	SiteLog            = domain.SiteLog
	SiteLogTask        = domain.SiteLogTask
	SiteLogAttendee    = domain.SiteLogAttendee
	SiteLogFile        = domain.SiteLogFile
	Movement           = domain.Movement
	CalendarEvent      = domain.CalendarEvent
	Contact            = domain.Contact
	Unit               = domain.Unit
	TaskCategory       = domain.TaskCategory
	Material           = domain.Material
	TaskMaterial       = domain.TaskMaterial
	Task               = domain.Task
	Activity           = domain.Activity
	Action             = domain.Action
	Change             = domain.Change
	ChangeAction       = domain.ChangeAction
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityPlan            = domain.EntityPlan
	EntityUser            = domain.EntityUser
	EntityOrganization    = domain.EntityOrganization
	EntityWallet          = domain.EntityWallet
	EntityProject         = domain.EntityProject
	EntityBudget          = domain.EntityBudget
	EntityBudgetTask      = domain.EntityBudgetTask
	EntitySiteLog         = domain.EntitySiteLog
	EntitySiteLogTask     = domain.EntitySiteLogTask
	EntitySiteLogAttendee = domain.EntitySiteLogAttendee
	EntitySiteLogFile     = domain.EntitySiteLogFile
	EntityMovement        = domain.EntityMovement
	EntityCalendarEvent   = domain.EntityCalendarEvent
	EntityContact         = domain.EntityContact
	EntityUnit            = domain.EntityUnit
	EntityTaskCategory    = domain.EntityTaskCategory
	EntityMaterial        = domain.EntityMaterial
	EntityTask            = domain.EntityTask
	EntityActivity        = domain.EntityActivity
	EntityAction          = domain.EntityAction
)

const (
	ProjectStatusPlanned  = domain.ProjectStatusPlanned
	ProjectStatusActive   = domain.ProjectStatusActive
	ProjectStatusPaused   = domain.ProjectStatusPaused
	ProjectStatusFinished = domain.ProjectStatusFinished
)

const (
	MovementIncome  = domain.MovementIncome
	MovementExpense = domain.MovementExpense
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
