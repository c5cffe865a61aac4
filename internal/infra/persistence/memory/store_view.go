package memory

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListPlans returns all plans within the snapshot.
func (v transactionView) ListPlans() []Plan {
	out := make([]Plan, 0, len(v.state.plans))
	for _, p := range v.state.plans {
		out = append(out, clonePlan(p))
	}
	return out
}

// ListUsers returns all users within the snapshot.
func (v transactionView) ListUsers() []User {
	out := make([]User, 0, len(v.state.users))
	for _, u := range v.state.users {
		out = append(out, cloneUser(u))
	}
	return out
}

// ListOrganizations returns all organizations within the snapshot.
func (v transactionView) ListOrganizations() []Organization {
	out := make([]Organization, 0, len(v.state.organizations))
	for _, o := range v.state.organizations {
		out = append(out, cloneOrganization(o))
	}
	return out
}

// ListWallets returns all wallets within the snapshot.
func (v transactionView) ListWallets() []Wallet {
	out := make([]Wallet, 0, len(v.state.wallets))
	for _, w := range v.state.wallets {
		out = append(out, cloneWallet(w))
	}
	return out
}

// ListProjects returns all projects within the snapshot.
func (v transactionView) ListProjects() []Project {
	out := make([]Project, 0, len(v.state.projects))
	for _, p := range v.state.projects {
		out = append(out, cloneProject(p))
	}
	return out
}

// ListBudgets returns all budgets within the snapshot.
func (v transactionView) ListBudgets() []Budget {
	out := make([]Budget, 0, len(v.state.budgets))
	for _, b := range v.state.budgets {
		out = append(out, cloneBudget(b))
	}
	return out
}

// ListBudgetTasks returns all budget lines within the snapshot.
func (v transactionView) ListBudgetTasks() []BudgetTask {
	out := make([]BudgetTask, 0, len(v.state.budgetTasks))
	for _, b := range v.state.budgetTasks {
		out = append(out, cloneBudgetTask(b))
	}
	return out
}

// ListSiteLogs returns all site logs within the snapshot.
func (v transactionView) ListSiteLogs() []SiteLog {
	out := make([]SiteLog, 0, len(v.state.siteLogs))
	for _, l := range v.state.siteLogs {
		out = append(out, cloneSiteLog(l))
	}
	return out
}

// ListSiteLogTasks returns all site log task entries within the snapshot.
func (v transactionView) ListSiteLogTasks() []SiteLogTask {
	out := make([]SiteLogTask, 0, len(v.state.siteLogTasks))
	for _, t := range v.state.siteLogTasks {
		out = append(out, cloneSiteLogTask(t))
	}
	return out
}

// ListSiteLogAttendees returns all site log attendance entries.
func (v transactionView) ListSiteLogAttendees() []SiteLogAttendee {
	out := make([]SiteLogAttendee, 0, len(v.state.siteLogAttendees))
	for _, a := range v.state.siteLogAttendees {
		out = append(out, cloneSiteLogAttendee(a))
	}
	return out
}

// ListSiteLogFiles returns all site log file attachments.
func (v transactionView) ListSiteLogFiles() []SiteLogFile {
	out := make([]SiteLogFile, 0, len(v.state.siteLogFiles))
	for _, f := range v.state.siteLogFiles {
		out = append(out, cloneSiteLogFile(f))
	}
	return out
}

// ListMovements returns all financial movements within the snapshot.
func (v transactionView) ListMovements() []Movement {
	out := make([]Movement, 0, len(v.state.movements))
	for _, m := range v.state.movements {
		out = append(out, cloneMovement(m))
	}
	return out
}

// ListCalendarEvents returns all calendar events within the snapshot.
func (v transactionView) ListCalendarEvents() []CalendarEvent {
	out := make([]CalendarEvent, 0, len(v.state.calendarEvents))
	for _, e := range v.state.calendarEvents {
		out = append(out, cloneCalendarEvent(e))
	}
	return out
}

// ListContacts returns all contacts within the snapshot.
func (v transactionView) ListContacts() []Contact {
	out := make([]Contact, 0, len(v.state.contacts))
	for _, c := range v.state.contacts {
		out = append(out, cloneContact(c))
	}
	return out
}

// ListUnits returns all measurement units within the snapshot.
func (v transactionView) ListUnits() []Unit {
	out := make([]Unit, 0, len(v.state.units))
	for _, u := range v.state.units {
		out = append(out, cloneUnit(u))
	}
	return out
}

// ListTaskCategories returns all task category nodes within the snapshot.
func (v transactionView) ListTaskCategories() []TaskCategory {
	out := make([]TaskCategory, 0, len(v.state.taskCategories))
	for _, c := range v.state.taskCategories {
		out = append(out, cloneTaskCategory(c))
	}
	return out
}

// ListMaterials returns all materials within the snapshot.
func (v transactionView) ListMaterials() []Material {
	out := make([]Material, 0, len(v.state.materials))
	for _, m := range v.state.materials {
		out = append(out, cloneMaterial(m))
	}
	return out
}

// ListTasks returns all catalog tasks within the snapshot.
func (v transactionView) ListTasks() []Task {
	out := make([]Task, 0, len(v.state.tasks))
	for _, t := range v.state.tasks {
		out = append(out, cloneTask(t))
	}
	return out
}

// ListActivities returns all activities within the snapshot.
func (v transactionView) ListActivities() []Activity {
	out := make([]Activity, 0, len(v.state.activities))
	for _, a := range v.state.activities {
		out = append(out, cloneActivity(a))
	}
	return out
}

// ListActions returns all actions within the snapshot.
func (v transactionView) ListActions() []Action {
	out := make([]Action, 0, len(v.state.actions))
	for _, a := range v.state.actions {
		out = append(out, cloneAction(a))
	}
	return out
}

// FindPlan retrieves a plan by ID from the snapshot.
func (v transactionView) FindPlan(id string) (Plan, bool) {
	p, ok := v.state.plans[id]
	if !ok {
		return Plan{}, false
	}
	return clonePlan(p), true
}

// FindUser retrieves a user by ID from the snapshot.
func (v transactionView) FindUser(id string) (User, bool) {
	u, ok := v.state.users[id]
	if !ok {
		return User{}, false
	}
	return cloneUser(u), true
}

// FindOrganization retrieves an organization by ID from the snapshot.
func (v transactionView) FindOrganization(id string) (Organization, bool) {
	o, ok := v.state.organizations[id]
	if !ok {
		return Organization{}, false
	}
	return cloneOrganization(o), true
}

// FindWallet retrieves a wallet by ID from the snapshot.
func (v transactionView) FindWallet(id string) (Wallet, bool) {
	w, ok := v.state.wallets[id]
	if !ok {
		return Wallet{}, false
	}
	return cloneWallet(w), true
}

// FindProject retrieves a project by ID from the snapshot.
func (v transactionView) FindProject(id string) (Project, bool) {
	p, ok := v.state.projects[id]
	if !ok {
		return Project{}, false
	}
	return cloneProject(p), true
}

// FindBudget retrieves a budget by ID from the snapshot.
func (v transactionView) FindBudget(id string) (Budget, bool) {
	b, ok := v.state.budgets[id]
	if !ok {
		return Budget{}, false
	}
	return cloneBudget(b), true
}

// FindBudgetTask retrieves a budget line by ID from the snapshot.
func (v transactionView) FindBudgetTask(id string) (BudgetTask, bool) {
	b, ok := v.state.budgetTasks[id]
	if !ok {
		return BudgetTask{}, false
	}
	return cloneBudgetTask(b), true
}

// FindSiteLog retrieves a site log by ID from the snapshot.
func (v transactionView) FindSiteLog(id string) (SiteLog, bool) {
	l, ok := v.state.siteLogs[id]
	if !ok {
		return SiteLog{}, false
	}
	return cloneSiteLog(l), true
}

// FindSiteLogTask retrieves a site log task entry by ID from the snapshot.
func (v transactionView) FindSiteLogTask(id string) (SiteLogTask, bool) {
	t, ok := v.state.siteLogTasks[id]
	if !ok {
		return SiteLogTask{}, false
	}
	return cloneSiteLogTask(t), true
}

// FindSiteLogAttendee retrieves an attendance entry by ID from the snapshot.
func (v transactionView) FindSiteLogAttendee(id string) (SiteLogAttendee, bool) {
	a, ok := v.state.siteLogAttendees[id]
	if !ok {
		return SiteLogAttendee{}, false
	}
	return cloneSiteLogAttendee(a), true
}

// FindSiteLogFile retrieves a file attachment by ID from the snapshot.
func (v transactionView) FindSiteLogFile(id string) (SiteLogFile, bool) {
	f, ok := v.state.siteLogFiles[id]
	if !ok {
		return SiteLogFile{}, false
	}
	return cloneSiteLogFile(f), true
}

// FindMovement retrieves a movement by ID from the snapshot.
func (v transactionView) FindMovement(id string) (Movement, bool) {
	m, ok := v.state.movements[id]
	if !ok {
		return Movement{}, false
	}
	return cloneMovement(m), true
}

// FindCalendarEvent retrieves a calendar event by ID from the snapshot.
func (v transactionView) FindCalendarEvent(id string) (CalendarEvent, bool) {
	e, ok := v.state.calendarEvents[id]
	if !ok {
		return CalendarEvent{}, false
	}
	return cloneCalendarEvent(e), true
}

// FindContact retrieves a contact by ID from the snapshot.
func (v transactionView) FindContact(id string) (Contact, bool) {
	c, ok := v.state.contacts[id]
	if !ok {
		return Contact{}, false
	}
	return cloneContact(c), true
}

// FindUnit retrieves a measurement unit by ID from the snapshot.
func (v transactionView) FindUnit(id string) (Unit, bool) {
	u, ok := v.state.units[id]
	if !ok {
		return Unit{}, false
	}
	return cloneUnit(u), true
}

// FindTaskCategory retrieves a task category node by ID from the snapshot.
func (v transactionView) FindTaskCategory(id string) (TaskCategory, bool) {
	c, ok := v.state.taskCategories[id]
	if !ok {
		return TaskCategory{}, false
	}
	return cloneTaskCategory(c), true
}

// FindMaterial retrieves a material by ID from the snapshot.
func (v transactionView) FindMaterial(id string) (Material, bool) {
	m, ok := v.state.materials[id]
	if !ok {
		return Material{}, false
	}
	return cloneMaterial(m), true
}

// FindTask retrieves a catalog task by ID from the snapshot.
func (v transactionView) FindTask(id string) (Task, bool) {
	t, ok := v.state.tasks[id]
	if !ok {
		return Task{}, false
	}
	return cloneTask(t), true
}

// FindActivity retrieves an activity by ID from the snapshot.
func (v transactionView) FindActivity(id string) (Activity, bool) {
	a, ok := v.state.activities[id]
	if !ok {
		return Activity{}, false
	}
	return cloneActivity(a), true
}

// FindAction retrieves an action by ID from the snapshot.
func (v transactionView) FindAction(id string) (Action, bool) {
	a, ok := v.state.actions[id]
	if !ok {
		return Action{}, false
	}
	return cloneAction(a), true
}
