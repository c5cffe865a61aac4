// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"obracore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Plan aliases domain.Plan for in-memory persistence operations.
	Plan = domain.Plan
	// User aliases domain.User.
	User = domain.User
	// Organization aliases domain.Organization.
	Organization = domain.Organization
	// Wallet aliases domain.Wallet.
	Wallet = domain.Wallet
	// Project aliases domain.Project.
	Project = domain.Project
	// Budget aliases domain.Budget.
	Budget = domain.Budget
	// BudgetTask aliases domain.BudgetTask.
	BudgetTask = domain.BudgetTask
	// SiteLog aliases domain.SiteLog.
	SiteLog = domain.SiteLog
	// SiteLogTask aliases domain.SiteLogTask.
	SiteLogTask = domain.SiteLogTask
	// SiteLogAttendee aliases domain.SiteLogAttendee.
	SiteLogAttendee = domain.SiteLogAttendee
	// SiteLogFile aliases domain.SiteLogFile.
	SiteLogFile = domain.SiteLogFile
	// Movement aliases domain.Movement.
	Movement = domain.Movement
	// CalendarEvent aliases domain.CalendarEvent.
	CalendarEvent = domain.CalendarEvent
	// Contact aliases domain.Contact.
	Contact = domain.Contact
	// Unit aliases domain.Unit.
	Unit = domain.Unit
	// TaskCategory aliases domain.TaskCategory.
	TaskCategory = domain.TaskCategory
	// Material aliases domain.Material.
	Material = domain.Material
	// Task aliases domain.Task.
	Task = domain.Task
	// Activity aliases domain.Activity.
	Activity = domain.Activity
	// Action aliases domain.Action.
	Action = domain.Action
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

// changeLogCap bounds the retained audit trail; older entries fall off.
const changeLogCap = 512

type memoryState struct {
	plans            map[string]Plan
	users            map[string]User
	organizations    map[string]Organization
	wallets          map[string]Wallet
	projects         map[string]Project
	budgets          map[string]Budget
	budgetTasks      map[string]BudgetTask
	siteLogs         map[string]SiteLog
	siteLogTasks     map[string]SiteLogTask
	siteLogAttendees map[string]SiteLogAttendee
	siteLogFiles     map[string]SiteLogFile
	movements        map[string]Movement
	calendarEvents   map[string]CalendarEvent
	contacts         map[string]Contact
	units            map[string]Unit
	taskCategories   map[string]TaskCategory
	materials        map[string]Material
	tasks            map[string]Task
	activities       map[string]Activity
	actions          map[string]Action
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Plans            map[string]Plan            `json:"plans"`
	Users            map[string]User            `json:"users"`
	Organizations    map[string]Organization    `json:"organizations"`
	Wallets          map[string]Wallet          `json:"wallets"`
	Projects         map[string]Project         `json:"projects"`
	Budgets          map[string]Budget          `json:"budgets"`
	BudgetTasks      map[string]BudgetTask      `json:"budget_tasks"`
	SiteLogs         map[string]SiteLog         `json:"site_logs"`
	SiteLogTasks     map[string]SiteLogTask     `json:"site_log_tasks"`
	SiteLogAttendees map[string]SiteLogAttendee `json:"site_log_attendees"`
	SiteLogFiles     map[string]SiteLogFile     `json:"site_log_files"`
	Movements        map[string]Movement        `json:"movements"`
	CalendarEvents   map[string]CalendarEvent   `json:"calendar_events"`
	Contacts         map[string]Contact         `json:"contacts"`
	Units            map[string]Unit            `json:"units"`
	TaskCategories   map[string]TaskCategory    `json:"task_categories"`
	Materials        map[string]Material        `json:"materials"`
	Tasks            map[string]Task            `json:"tasks"`
	Activities       map[string]Activity        `json:"activities"`
	Actions          map[string]Action          `json:"actions"`
}

func newMemoryState() memoryState {
	return memoryState{
		plans:            make(map[string]Plan),
		users:            make(map[string]User),
		organizations:    make(map[string]Organization),
		wallets:          make(map[string]Wallet),
		projects:         make(map[string]Project),
		budgets:          make(map[string]Budget),
		budgetTasks:      make(map[string]BudgetTask),
		siteLogs:         make(map[string]SiteLog),
		siteLogTasks:     make(map[string]SiteLogTask),
		siteLogAttendees: make(map[string]SiteLogAttendee),
		siteLogFiles:     make(map[string]SiteLogFile),
		movements:        make(map[string]Movement),
		calendarEvents:   make(map[string]CalendarEvent),
		contacts:         make(map[string]Contact),
		units:            make(map[string]Unit),
		taskCategories:   make(map[string]TaskCategory),
		materials:        make(map[string]Material),
		tasks:            make(map[string]Task),
		activities:       make(map[string]Activity),
		actions:          make(map[string]Action),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Plans:            make(map[string]Plan, len(state.plans)),
		Users:            make(map[string]User, len(state.users)),
		Organizations:    make(map[string]Organization, len(state.organizations)),
		Wallets:          make(map[string]Wallet, len(state.wallets)),
		Projects:         make(map[string]Project, len(state.projects)),
		Budgets:          make(map[string]Budget, len(state.budgets)),
		BudgetTasks:      make(map[string]BudgetTask, len(state.budgetTasks)),
		SiteLogs:         make(map[string]SiteLog, len(state.siteLogs)),
		SiteLogTasks:     make(map[string]SiteLogTask, len(state.siteLogTasks)),
		SiteLogAttendees: make(map[string]SiteLogAttendee, len(state.siteLogAttendees)),
		SiteLogFiles:     make(map[string]SiteLogFile, len(state.siteLogFiles)),
		Movements:        make(map[string]Movement, len(state.movements)),
		CalendarEvents:   make(map[string]CalendarEvent, len(state.calendarEvents)),
		Contacts:         make(map[string]Contact, len(state.contacts)),
		Units:            make(map[string]Unit, len(state.units)),
		TaskCategories:   make(map[string]TaskCategory, len(state.taskCategories)),
		Materials:        make(map[string]Material, len(state.materials)),
		Tasks:            make(map[string]Task, len(state.tasks)),
		Activities:       make(map[string]Activity, len(state.activities)),
		Actions:          make(map[string]Action, len(state.actions)),
	}
	for k, v := range state.plans {
		s.Plans[k] = clonePlan(v)
	}
	for k, v := range state.users {
		s.Users[k] = cloneUser(v)
	}
	for k, v := range state.organizations {
		s.Organizations[k] = cloneOrganization(v)
	}
	for k, v := range state.wallets {
		s.Wallets[k] = cloneWallet(v)
	}
	for k, v := range state.projects {
		s.Projects[k] = cloneProject(v)
	}
	for k, v := range state.budgets {
		s.Budgets[k] = cloneBudget(v)
	}
	for k, v := range state.budgetTasks {
		s.BudgetTasks[k] = cloneBudgetTask(v)
	}
	for k, v := range state.siteLogs {
		s.SiteLogs[k] = cloneSiteLog(v)
	}
	for k, v := range state.siteLogTasks {
		s.SiteLogTasks[k] = cloneSiteLogTask(v)
	}
	for k, v := range state.siteLogAttendees {
		s.SiteLogAttendees[k] = cloneSiteLogAttendee(v)
	}
	for k, v := range state.siteLogFiles {
		s.SiteLogFiles[k] = cloneSiteLogFile(v)
	}
	for k, v := range state.movements {
		s.Movements[k] = cloneMovement(v)
	}
	for k, v := range state.calendarEvents {
		s.CalendarEvents[k] = cloneCalendarEvent(v)
	}
	for k, v := range state.contacts {
		s.Contacts[k] = cloneContact(v)
	}
	for k, v := range state.units {
		s.Units[k] = cloneUnit(v)
	}
	for k, v := range state.taskCategories {
		s.TaskCategories[k] = cloneTaskCategory(v)
	}
	for k, v := range state.materials {
		s.Materials[k] = cloneMaterial(v)
	}
	for k, v := range state.tasks {
		s.Tasks[k] = cloneTask(v)
	}
	for k, v := range state.activities {
		s.Activities[k] = cloneActivity(v)
	}
	for k, v := range state.actions {
		s.Actions[k] = cloneAction(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Plans {
		state.plans[k] = clonePlan(v)
	}
	for k, v := range s.Users {
		state.users[k] = cloneUser(v)
	}
	for k, v := range s.Organizations {
		state.organizations[k] = cloneOrganization(v)
	}
	for k, v := range s.Wallets {
		state.wallets[k] = cloneWallet(v)
	}
	for k, v := range s.Projects {
		state.projects[k] = cloneProject(v)
	}
	for k, v := range s.Budgets {
		state.budgets[k] = cloneBudget(v)
	}
	for k, v := range s.BudgetTasks {
		state.budgetTasks[k] = cloneBudgetTask(v)
	}
	for k, v := range s.SiteLogs {
		state.siteLogs[k] = cloneSiteLog(v)
	}
	for k, v := range s.SiteLogTasks {
		state.siteLogTasks[k] = cloneSiteLogTask(v)
	}
	for k, v := range s.SiteLogAttendees {
		state.siteLogAttendees[k] = cloneSiteLogAttendee(v)
	}
	for k, v := range s.SiteLogFiles {
		state.siteLogFiles[k] = cloneSiteLogFile(v)
	}
	for k, v := range s.Movements {
		state.movements[k] = cloneMovement(v)
	}
	for k, v := range s.CalendarEvents {
		state.calendarEvents[k] = cloneCalendarEvent(v)
	}
	for k, v := range s.Contacts {
		state.contacts[k] = cloneContact(v)
	}
	for k, v := range s.Units {
		state.units[k] = cloneUnit(v)
	}
	for k, v := range s.TaskCategories {
		state.taskCategories[k] = cloneTaskCategory(v)
	}
	for k, v := range s.Materials {
		state.materials[k] = cloneMaterial(v)
	}
	for k, v := range s.Tasks {
		state.tasks[k] = cloneTask(v)
	}
	for k, v := range s.Activities {
		state.activities[k] = cloneActivity(v)
	}
	for k, v := range s.Actions {
		state.actions[k] = cloneAction(v)
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from durable backends: nil maps
// become empty, orphaned children of removed parents are dropped, and stale
// references are cleared so the loaded state satisfies the same invariants the
// transactional guards enforce.
//
//nolint:gocyclo // aggregates every per-entity normalization in one pass for parity with stored snapshots.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Plans == nil {
		snapshot.Plans = map[string]Plan{}
	}
	if snapshot.Users == nil {
		snapshot.Users = map[string]User{}
	}
	if snapshot.Organizations == nil {
		snapshot.Organizations = map[string]Organization{}
	}
	if snapshot.Wallets == nil {
		snapshot.Wallets = map[string]Wallet{}
	}
	if snapshot.Projects == nil {
		snapshot.Projects = map[string]Project{}
	}
	if snapshot.Budgets == nil {
		snapshot.Budgets = map[string]Budget{}
	}
	if snapshot.BudgetTasks == nil {
		snapshot.BudgetTasks = map[string]BudgetTask{}
	}
	if snapshot.SiteLogs == nil {
		snapshot.SiteLogs = map[string]SiteLog{}
	}
	if snapshot.SiteLogTasks == nil {
		snapshot.SiteLogTasks = map[string]SiteLogTask{}
	}
	if snapshot.SiteLogAttendees == nil {
		snapshot.SiteLogAttendees = map[string]SiteLogAttendee{}
	}
	if snapshot.SiteLogFiles == nil {
		snapshot.SiteLogFiles = map[string]SiteLogFile{}
	}
	if snapshot.Movements == nil {
		snapshot.Movements = map[string]Movement{}
	}
	if snapshot.CalendarEvents == nil {
		snapshot.CalendarEvents = map[string]CalendarEvent{}
	}
	if snapshot.Contacts == nil {
		snapshot.Contacts = map[string]Contact{}
	}
	if snapshot.Units == nil {
		snapshot.Units = map[string]Unit{}
	}
	if snapshot.TaskCategories == nil {
		snapshot.TaskCategories = map[string]TaskCategory{}
	}
	if snapshot.Materials == nil {
		snapshot.Materials = map[string]Material{}
	}
	if snapshot.Tasks == nil {
		snapshot.Tasks = map[string]Task{}
	}
	if snapshot.Activities == nil {
		snapshot.Activities = map[string]Activity{}
	}
	if snapshot.Actions == nil {
		snapshot.Actions = map[string]Action{}
	}

	planExists := func(id string) bool {
		_, ok := snapshot.Plans[id]
		return ok
	}
	userExists := func(id string) bool {
		_, ok := snapshot.Users[id]
		return ok
	}
	organizationExists := func(id string) bool {
		_, ok := snapshot.Organizations[id]
		return ok
	}
	walletExists := func(id string) bool {
		_, ok := snapshot.Wallets[id]
		return ok
	}
	projectExists := func(id string) bool {
		_, ok := snapshot.Projects[id]
		return ok
	}
	budgetExists := func(id string) bool {
		_, ok := snapshot.Budgets[id]
		return ok
	}
	budgetTaskExists := func(id string) bool {
		_, ok := snapshot.BudgetTasks[id]
		return ok
	}
	siteLogExists := func(id string) bool {
		_, ok := snapshot.SiteLogs[id]
		return ok
	}
	contactExists := func(id string) bool {
		_, ok := snapshot.Contacts[id]
		return ok
	}
	unitExists := func(id string) bool {
		_, ok := snapshot.Units[id]
		return ok
	}
	categoryExists := func(id string) bool {
		_, ok := snapshot.TaskCategories[id]
		return ok
	}
	materialExists := func(id string) bool {
		_, ok := snapshot.Materials[id]
		return ok
	}
	taskExists := func(id string) bool {
		_, ok := snapshot.Tasks[id]
		return ok
	}
	activityExists := func(id string) bool {
		_, ok := snapshot.Activities[id]
		return ok
	}

	for id, user := range snapshot.Users {
		if user.PlanID != nil && !planExists(*user.PlanID) {
			user.PlanID = nil
		}
		snapshot.Users[id] = user
	}

	for id, org := range snapshot.Organizations {
		if org.OwnerID == "" || !userExists(org.OwnerID) {
			delete(snapshot.Organizations, id)
			continue
		}
		if org.PlanID != nil && !planExists(*org.PlanID) {
			org.PlanID = nil
		}
		if filtered, changed := filterIDs(org.WalletIDs, walletExists); changed {
			org.WalletIDs = filtered
		}
		snapshot.Organizations[id] = org
	}

	for id, project := range snapshot.Projects {
		if project.OrganizationID == "" || !organizationExists(project.OrganizationID) {
			delete(snapshot.Projects, id)
			continue
		}
		if project.OwnerID != nil && !userExists(*project.OwnerID) {
			project.OwnerID = nil
		}
		if project.Status == "" {
			project.Status = domain.ProjectStatusPlanned
		}
		snapshot.Projects[id] = project
	}

	for id, budget := range snapshot.Budgets {
		if budget.ProjectID == "" || !projectExists(budget.ProjectID) {
			delete(snapshot.Budgets, id)
		}
	}

	for id, line := range snapshot.BudgetTasks {
		if line.BudgetID == "" || !budgetExists(line.BudgetID) {
			delete(snapshot.BudgetTasks, id)
			continue
		}
		if line.TaskID != "" && !taskExists(line.TaskID) {
			line.TaskID = ""
		}
		snapshot.BudgetTasks[id] = line
	}

	for id, log := range snapshot.SiteLogs {
		if log.ProjectID == "" || !projectExists(log.ProjectID) {
			delete(snapshot.SiteLogs, id)
		}
	}

	for id, slt := range snapshot.SiteLogTasks {
		if slt.SiteLogID == "" || !siteLogExists(slt.SiteLogID) {
			delete(snapshot.SiteLogTasks, id)
			continue
		}
		if slt.BudgetTaskID != nil && !budgetTaskExists(*slt.BudgetTaskID) {
			slt.BudgetTaskID = nil
		}
		snapshot.SiteLogTasks[id] = slt
	}

	for id, att := range snapshot.SiteLogAttendees {
		if att.SiteLogID == "" || !siteLogExists(att.SiteLogID) {
			delete(snapshot.SiteLogAttendees, id)
			continue
		}
		if att.ContactID == "" || !contactExists(att.ContactID) {
			delete(snapshot.SiteLogAttendees, id)
		}
	}

	for id, file := range snapshot.SiteLogFiles {
		if file.SiteLogID == "" || !siteLogExists(file.SiteLogID) {
			delete(snapshot.SiteLogFiles, id)
		}
	}

	for id, mv := range snapshot.Movements {
		if mv.OrganizationID == "" || !organizationExists(mv.OrganizationID) {
			delete(snapshot.Movements, id)
			continue
		}
		if mv.ProjectID != nil && !projectExists(*mv.ProjectID) {
			mv.ProjectID = nil
		}
		if mv.WalletID != nil && !walletExists(*mv.WalletID) {
			mv.WalletID = nil
		}
		if mv.ContactID != nil && !contactExists(*mv.ContactID) {
			mv.ContactID = nil
		}
		snapshot.Movements[id] = mv
	}

	for id, ev := range snapshot.CalendarEvents {
		if ev.OrganizationID == "" || !organizationExists(ev.OrganizationID) {
			delete(snapshot.CalendarEvents, id)
			continue
		}
		if ev.ProjectID != nil && !projectExists(*ev.ProjectID) {
			ev.ProjectID = nil
		}
		snapshot.CalendarEvents[id] = ev
	}

	for id, contact := range snapshot.Contacts {
		if contact.OrganizationID == "" || !organizationExists(contact.OrganizationID) {
			delete(snapshot.Contacts, id)
			continue
		}
		contact.ContactTypes = dedupeStrings(contact.ContactTypes)
		snapshot.Contacts[id] = contact
	}

	for id, cat := range snapshot.TaskCategories {
		if cat.ParentID != nil && (*cat.ParentID == id || !categoryExists(*cat.ParentID)) {
			cat.ParentID = nil
		}
		snapshot.TaskCategories[id] = cat
	}

	for id, mat := range snapshot.Materials {
		if mat.UnitID != nil && !unitExists(*mat.UnitID) {
			mat.UnitID = nil
		}
		snapshot.Materials[id] = mat
	}

	for id, task := range snapshot.Tasks {
		if task.OrganizationID != nil && !organizationExists(*task.OrganizationID) {
			task.OrganizationID = nil
		}
		if task.CategoryID != nil && !categoryExists(*task.CategoryID) {
			task.CategoryID = nil
		}
		if task.UnitID != nil && !unitExists(*task.UnitID) {
			task.UnitID = nil
		}
		kept := task.Materials[:0]
		for _, tm := range task.Materials {
			if materialExists(tm.MaterialID) {
				kept = append(kept, tm)
			}
		}
		task.Materials = kept
		snapshot.Tasks[id] = task
	}

	for id, action := range snapshot.Actions {
		if action.ActivityID != nil && !activityExists(*action.ActivityID) {
			action.ActivityID = nil
		}
		snapshot.Actions[id] = action
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.plans {
		cloned.plans[k] = clonePlan(v)
	}
	for k, v := range s.users {
		cloned.users[k] = cloneUser(v)
	}
	for k, v := range s.organizations {
		cloned.organizations[k] = cloneOrganization(v)
	}
	for k, v := range s.wallets {
		cloned.wallets[k] = cloneWallet(v)
	}
	for k, v := range s.projects {
		cloned.projects[k] = cloneProject(v)
	}
	for k, v := range s.budgets {
		cloned.budgets[k] = cloneBudget(v)
	}
	for k, v := range s.budgetTasks {
		cloned.budgetTasks[k] = cloneBudgetTask(v)
	}
	for k, v := range s.siteLogs {
		cloned.siteLogs[k] = cloneSiteLog(v)
	}
	for k, v := range s.siteLogTasks {
		cloned.siteLogTasks[k] = cloneSiteLogTask(v)
	}
	for k, v := range s.siteLogAttendees {
		cloned.siteLogAttendees[k] = cloneSiteLogAttendee(v)
	}
	for k, v := range s.siteLogFiles {
		cloned.siteLogFiles[k] = cloneSiteLogFile(v)
	}
	for k, v := range s.movements {
		cloned.movements[k] = cloneMovement(v)
	}
	for k, v := range s.calendarEvents {
		cloned.calendarEvents[k] = cloneCalendarEvent(v)
	}
	for k, v := range s.contacts {
		cloned.contacts[k] = cloneContact(v)
	}
	for k, v := range s.units {
		cloned.units[k] = cloneUnit(v)
	}
	for k, v := range s.taskCategories {
		cloned.taskCategories[k] = cloneTaskCategory(v)
	}
	for k, v := range s.materials {
		cloned.materials[k] = cloneMaterial(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	for k, v := range s.activities {
		cloned.activities[k] = cloneActivity(v)
	}
	for k, v := range s.actions {
		cloned.actions[k] = cloneAction(v)
	}
	return cloned
}

func clonePlan(p Plan) Plan { return p }
func cloneUser(u User) User { return u }

func cloneOrganization(o Organization) Organization {
	cp := o
	cp.WalletIDs = append([]string(nil), o.WalletIDs...)
	return cp
}

func cloneWallet(w Wallet) Wallet { return w }

func cloneProject(p Project) Project {
	cp := p
	if p.StartDate != nil {
		t := *p.StartDate
		cp.StartDate = &t
	}
	if p.EndDate != nil {
		t := *p.EndDate
		cp.EndDate = &t
	}
	return cp
}

func cloneBudget(b Budget) Budget { return b }

func cloneBudgetTask(b BudgetTask) BudgetTask {
	cp := b
	if b.StartDate != nil {
		t := *b.StartDate
		cp.StartDate = &t
	}
	if b.EndDate != nil {
		t := *b.EndDate
		cp.EndDate = &t
	}
	return cp
}

func cloneSiteLog(l SiteLog) SiteLog                         { return l }
func cloneSiteLogTask(t SiteLogTask) SiteLogTask             { return t }
func cloneSiteLogAttendee(a SiteLogAttendee) SiteLogAttendee { return a }
func cloneSiteLogFile(f SiteLogFile) SiteLogFile             { return f }
func cloneMovement(m Movement) Movement                      { return m }
func cloneCalendarEvent(e CalendarEvent) CalendarEvent       { return e }

func cloneContact(c Contact) Contact {
	cp := c
	cp.ContactTypes = append([]string(nil), c.ContactTypes...)
	return cp
}

func cloneUnit(u Unit) Unit                     { return u }
func cloneTaskCategory(c TaskCategory) TaskCategory { return c }
func cloneMaterial(m Material) Material         { return m }

func cloneTask(t Task) Task {
	cp := t
	cp.Materials = append([]domain.TaskMaterial(nil), t.Materials...)
	return cp
}

func cloneActivity(a Activity) Activity { return a }
func cloneAction(a Action) Action       { return a }

func containsString(values []string, id string) bool {
	for _, existing := range values {
		if existing == id {
			return true
		}
	}
	return false
}

func dedupeStrings(values []string) []string {
	if len(values) <= 1 {
		return append([]string(nil), values...)
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func filterIDs(values []string, exists func(string) bool) ([]string, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	changed := false
	for _, v := range values {
		if _, ok := seen[v]; ok {
			changed = true
			continue
		}
		seen[v] = struct{}{}
		if !exists(v) {
			changed = true
			continue
		}
		out = append(out, v)
	}
	if !changed && len(out) == len(values) {
		return values, false
	}
	return out, true
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu        sync.RWMutex
	state     memoryState
	engine    *RulesEngine
	nowFn     func() time.Time
	changeLog []Change
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider, primarily for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// Changes returns the most recent committed change records, newest first.
func (s *Store) Changes(limit int) []Change {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.changeLog) {
		limit = len(s.changeLog)
	}
	out := make([]Change, 0, limit)
	for i := len(s.changeLog) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.changeLog[i])
	}
	return out
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	s.changeLog = append(s.changeLog, tx.changes...)
	if overflow := len(s.changeLog) - changeLogCap; overflow > 0 {
		s.changeLog = append([]Change(nil), s.changeLog[overflow:]...)
	}
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) requireOrganization(id string) error {
	if id == "" {
		return errors.New("organization id required")
	}
	if _, ok := tx.state.organizations[id]; !ok {
		return fmt.Errorf("organization %q not found", id)
	}
	return nil
}

func (tx *transaction) requireProject(id string) error {
	if id == "" {
		return errors.New("project id required")
	}
	if _, ok := tx.state.projects[id]; !ok {
		return fmt.Errorf("project %q not found", id)
	}
	return nil
}

func (tx *transaction) requireSiteLog(id string) error {
	if id == "" {
		return errors.New("site log id required")
	}
	if _, ok := tx.state.siteLogs[id]; !ok {
		return fmt.Errorf("site log %q not found", id)
	}
	return nil
}
