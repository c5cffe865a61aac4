// Package domain defines the persistent entities, value types, and rule
// evaluation primitives shared by obracore's services and stores.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityPlan identifies a subscription plan record.
	EntityPlan EntityType = "plan"
	// EntityUser identifies a user account record.
	EntityUser EntityType = "user"
	// EntityOrganization identifies a tenant organization record.
	EntityOrganization EntityType = "organization"
	// EntityWallet identifies a wallet record.
	EntityWallet EntityType = "wallet"
	// EntityProject identifies a construction project record.
	EntityProject EntityType = "project"
	// EntityBudget identifies a budget record.
	EntityBudget EntityType = "budget"
	// EntityBudgetTask identifies a budget line record.
	EntityBudgetTask EntityType = "budget_task"
	// EntitySiteLog identifies a site log record.
	EntitySiteLog EntityType = "site_log"
	// EntitySiteLogTask identifies a site log task progress record.
	EntitySiteLogTask EntityType = "site_log_task"
	// EntitySiteLogAttendee identifies a site log attendance record.
	EntitySiteLogAttendee EntityType = "site_log_attendee"
	// EntitySiteLogFile identifies a site log file attachment record.
	EntitySiteLogFile EntityType = "site_log_file"
	// EntityMovement identifies a financial movement record.
	EntityMovement EntityType = "movement"
	// EntityCalendarEvent identifies a calendar event record.
	EntityCalendarEvent EntityType = "calendar_event"
	// EntityContact identifies a contact record.
	EntityContact EntityType = "contact"
	// EntityUnit identifies a measurement unit catalog record.
	EntityUnit EntityType = "unit"
	// EntityTaskCategory identifies a task category tree node.
	EntityTaskCategory EntityType = "task_category"
	// EntityMaterial identifies a material catalog record.
	EntityMaterial EntityType = "material"
	// EntityTask identifies a task catalog record.
	EntityTask EntityType = "task"
	// EntityActivity identifies an activity catalog record.
	EntityActivity EntityType = "activity"
	// EntityAction identifies an action catalog record.
	EntityAction EntityType = "action"
)

// ProjectStatus represents the canonical project workflow states.
type ProjectStatus string

// Canonical project statuses used for dashboards and stats aggregation.
const (
	ProjectStatusPlanned  ProjectStatus = "planned"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusPaused   ProjectStatus = "paused"
	ProjectStatusFinished ProjectStatus = "finished"
)

// MovementKind distinguishes income from expense movements.
type MovementKind string

// Canonical movement kinds recognised by the finance aggregations.
const (
	MovementIncome  MovementKind = "income"
	MovementExpense MovementKind = "expense"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the record identifier. Every entity embeds Base, so any
// record snapshot carried in a Change satisfies Identifiable.
func (b Base) EntityID() string { return b.ID }

// Identifiable is satisfied by all domain records via Base.
type Identifiable interface {
	EntityID() string
}

// Plan describes a subscription tier available to organizations.
type Plan struct {
	Base
	Name              string `json:"name"`
	MaxProjects       int    `json:"max_projects"`
	MaxUsers          int    `json:"max_users"`
	MonthlyPriceCents int64  `json:"monthly_price_cents"`
}

// User represents an account that owns or collaborates on organizations.
type User struct {
	Base
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	PlanID   *string `json:"plan_id"`
}

// Organization is the tenant root every scoped entity hangs off.
type Organization struct {
	Base
	Name      string   `json:"name"`
	OwnerID   string   `json:"owner_id"`
	PlanID    *string  `json:"plan_id"`
	WalletIDs []string `json:"wallet_ids"`
}

// Wallet tracks a money holding shared by one or more organizations.
type Wallet struct {
	Base
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Project captures a construction project within an organization.
type Project struct {
	Base
	OrganizationID string        `json:"organization_id"`
	OwnerID        *string       `json:"owner_id"`
	Name           string        `json:"name"`
	Address        *string       `json:"address,omitempty"`
	Status         ProjectStatus `json:"status"`
	StartDate      *time.Time    `json:"start_date"`
	EndDate        *time.Time    `json:"end_date"`
}

// Budget groups priced lines for a project.
type Budget struct {
	Base
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
}

// BudgetTask is a priced, scheduled line inside a budget. Its start and end
// dates drive the timeline view.
type BudgetTask struct {
	Base
	BudgetID       string     `json:"budget_id"`
	TaskID         string     `json:"task_id"`
	Quantity       float64    `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

// SiteLog records one day of site activity for a project.
type SiteLog struct {
	Base
	ProjectID string    `json:"project_id"`
	LogDate   time.Time `json:"log_date"`
	Notes     *string   `json:"notes,omitempty"`
	Weather   *string   `json:"weather,omitempty"`
}

// SiteLogTask reports progress on a budget line during a site log day.
type SiteLogTask struct {
	Base
	SiteLogID    string  `json:"site_log_id"`
	BudgetTaskID *string `json:"budget_task_id"`
	Progress     float64 `json:"progress"`
	Notes        *string `json:"notes,omitempty"`
}

// SiteLogAttendee records a contact present on site during a log day.
type SiteLogAttendee struct {
	Base
	SiteLogID string  `json:"site_log_id"`
	ContactID string  `json:"contact_id"`
	Role      *string `json:"role,omitempty"`
}

// SiteLogFile references an attachment stored in the blob store.
type SiteLogFile struct {
	Base
	SiteLogID   string `json:"site_log_id"`
	BlobKey     string `json:"blob_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Movement is a single income or expense entry in an organization's finances.
type Movement struct {
	Base
	OrganizationID string       `json:"organization_id"`
	ProjectID      *string      `json:"project_id"`
	WalletID       *string      `json:"wallet_id"`
	ContactID      *string      `json:"contact_id"`
	Kind           MovementKind `json:"kind"`
	AmountCents    int64        `json:"amount_cents"`
	Currency       string       `json:"currency"`
	OccurredOn     time.Time    `json:"occurred_on"`
	Description    *string      `json:"description,omitempty"`
}

// CalendarEvent is a scheduled event, optionally tied to a project.
type CalendarEvent struct {
	Base
	OrganizationID string    `json:"organization_id"`
	ProjectID      *string   `json:"project_id"`
	Title          string    `json:"title"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Notes          *string   `json:"notes,omitempty"`
}

// Contact is an organization-scoped person or company directory entry.
type Contact struct {
	Base
	OrganizationID string   `json:"organization_id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          *string  `json:"email,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	ContactTypes   []string `json:"contact_types"`
}

// Unit is a measurement unit catalog entry (m2, kg, hour...).
type Unit struct {
	Base
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// TaskCategory is a node in the task category tree. Position orders siblings
// under the same parent.
type TaskCategory struct {
	Base
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	Position int     `json:"position"`
}

// Material is a priced material catalog entry.
type Material struct {
	Base
	Name           string  `json:"name"`
	UnitID         *string `json:"unit_id"`
	UnitPriceCents int64   `json:"unit_price_cents"`
}

// TaskMaterial carries the per-task material consumption join.
type TaskMaterial struct {
	MaterialID string  `json:"material_id"`
	Quantity   float64 `json:"quantity"`
}

// Task is a catalog work item composed of materials.
type Task struct {
	Base
	OrganizationID *string        `json:"organization_id"`
	CategoryID     *string        `json:"category_id"`
	UnitID         *string        `json:"unit_id"`
	Name           string         `json:"name"`
	Materials      []TaskMaterial `json:"materials"`
}

// Activity is an admin catalog entry grouping actions.
type Activity struct {
	Base
	Name string `json:"name"`
}

// Action is an admin catalog entry, optionally grouped under an activity.
type Action struct {
	Base
	ActivityID *string `json:"activity_id"`
	Name       string  `json:"name"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action ChangeAction
	Before any
	After  any
}

// ChangeAction indicates the type of modification performed.
type ChangeAction string

// Change actions enumerate supported CRUD operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate ChangeAction = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
