package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreatePlan(Plan) (Plan, error)
	UpdatePlan(id string, mutator func(*Plan) error) (Plan, error)
	DeletePlan(id string) error
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	DeleteUser(id string) error
	CreateOrganization(Organization) (Organization, error)
	UpdateOrganization(id string, mutator func(*Organization) error) (Organization, error)
	DeleteOrganization(id string) error
	CreateWallet(Wallet) (Wallet, error)
	UpdateWallet(id string, mutator func(*Wallet) error) (Wallet, error)
	DeleteWallet(id string) error
	CreateProject(Project) (Project, error)
	UpdateProject(id string, mutator func(*Project) error) (Project, error)
	DeleteProject(id string) error
	CreateBudget(Budget) (Budget, error)
	UpdateBudget(id string, mutator func(*Budget) error) (Budget, error)
	DeleteBudget(id string) error
	CreateBudgetTask(BudgetTask) (BudgetTask, error)
	UpdateBudgetTask(id string, mutator func(*BudgetTask) error) (BudgetTask, error)
	DeleteBudgetTask(id string) error
	CreateSiteLog(SiteLog) (SiteLog, error)
	UpdateSiteLog(id string, mutator func(*SiteLog) error) (SiteLog, error)
	DeleteSiteLog(id string) error
	CreateSiteLogTask(SiteLogTask) (SiteLogTask, error)
	UpdateSiteLogTask(id string, mutator func(*SiteLogTask) error) (SiteLogTask, error)
	DeleteSiteLogTask(id string) error
	CreateSiteLogAttendee(SiteLogAttendee) (SiteLogAttendee, error)
	UpdateSiteLogAttendee(id string, mutator func(*SiteLogAttendee) error) (SiteLogAttendee, error)
	DeleteSiteLogAttendee(id string) error
	CreateSiteLogFile(SiteLogFile) (SiteLogFile, error)
	UpdateSiteLogFile(id string, mutator func(*SiteLogFile) error) (SiteLogFile, error)
	DeleteSiteLogFile(id string) error
	CreateMovement(Movement) (Movement, error)
	UpdateMovement(id string, mutator func(*Movement) error) (Movement, error)
	DeleteMovement(id string) error
	CreateCalendarEvent(CalendarEvent) (CalendarEvent, error)
	UpdateCalendarEvent(id string, mutator func(*CalendarEvent) error) (CalendarEvent, error)
	DeleteCalendarEvent(id string) error
	CreateContact(Contact) (Contact, error)
	UpdateContact(id string, mutator func(*Contact) error) (Contact, error)
	DeleteContact(id string) error
	CreateUnit(Unit) (Unit, error)
	UpdateUnit(id string, mutator func(*Unit) error) (Unit, error)
	DeleteUnit(id string) error
	CreateTaskCategory(TaskCategory) (TaskCategory, error)
	UpdateTaskCategory(id string, mutator func(*TaskCategory) error) (TaskCategory, error)
	DeleteTaskCategory(id string) error
	CreateMaterial(Material) (Material, error)
	UpdateMaterial(id string, mutator func(*Material) error) (Material, error)
	DeleteMaterial(id string) error
	CreateTask(Task) (Task, error)
	UpdateTask(id string, mutator func(*Task) error) (Task, error)
	DeleteTask(id string) error
	CreateActivity(Activity) (Activity, error)
	UpdateActivity(id string, mutator func(*Activity) error) (Activity, error)
	DeleteActivity(id string) error
	CreateAction(Action) (Action, error)
	UpdateAction(id string, mutator func(*Action) error) (Action, error)
	DeleteAction(id string) error
}

// TransactionView provides read-only access to snapshot data for rules and
// service reads.
type TransactionView interface {
	ListPlans() []Plan
	ListUsers() []User
	ListOrganizations() []Organization
	ListWallets() []Wallet
	ListProjects() []Project
	ListBudgets() []Budget
	ListBudgetTasks() []BudgetTask
	ListSiteLogs() []SiteLog
	ListSiteLogTasks() []SiteLogTask
	ListSiteLogAttendees() []SiteLogAttendee
	ListSiteLogFiles() []SiteLogFile
	ListMovements() []Movement
	ListCalendarEvents() []CalendarEvent
	ListContacts() []Contact
	ListUnits() []Unit
	ListTaskCategories() []TaskCategory
	ListMaterials() []Material
	ListTasks() []Task
	ListActivities() []Activity
	ListActions() []Action
	FindPlan(id string) (Plan, bool)
	FindUser(id string) (User, bool)
	FindOrganization(id string) (Organization, bool)
	FindWallet(id string) (Wallet, bool)
	FindProject(id string) (Project, bool)
	FindBudget(id string) (Budget, bool)
	FindBudgetTask(id string) (BudgetTask, bool)
	FindSiteLog(id string) (SiteLog, bool)
	FindSiteLogTask(id string) (SiteLogTask, bool)
	FindSiteLogAttendee(id string) (SiteLogAttendee, bool)
	FindSiteLogFile(id string) (SiteLogFile, bool)
	FindMovement(id string) (Movement, bool)
	FindCalendarEvent(id string) (CalendarEvent, bool)
	FindContact(id string) (Contact, bool)
	FindUnit(id string) (Unit, bool)
	FindTaskCategory(id string) (TaskCategory, bool)
	FindMaterial(id string) (Material, bool)
	FindTask(id string) (Task, bool)
	FindActivity(id string) (Activity, bool)
	FindAction(id string) (Action, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers; everything
// else goes through View.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	Changes(limit int) []Change
}
