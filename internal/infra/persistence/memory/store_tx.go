package memory

import (
	"errors"
	"fmt"

	"obracore/pkg/domain"
)

// CreatePlan stores a new subscription plan within the transaction.
func (tx *transaction) CreatePlan(p Plan) (Plan, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plans[p.ID]; exists {
		return Plan{}, fmt.Errorf("plan %q already exists", p.ID)
	}
	if p.Name == "" {
		return Plan{}, errors.New("plan requires name")
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plans[p.ID] = clonePlan(p)
	tx.recordChange(Change{Entity: domain.EntityPlan, Action: domain.ActionCreate, After: clonePlan(p)})
	return clonePlan(p), nil
}

// UpdatePlan mutates a plan using the provided mutator function.
func (tx *transaction) UpdatePlan(id string, mutator func(*Plan) error) (Plan, error) {
	current, ok := tx.state.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("plan %q not found", id)
	}
	before := clonePlan(current)
	if err := mutator(&current); err != nil {
		return Plan{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.plans[id] = clonePlan(current)
	tx.recordChange(Change{Entity: domain.EntityPlan, Action: domain.ActionUpdate, Before: before, After: clonePlan(current)})
	return clonePlan(current), nil
}

// DeletePlan removes a plan once nothing references it.
func (tx *transaction) DeletePlan(id string) error {
	current, ok := tx.state.plans[id]
	if !ok {
		return fmt.Errorf("plan %q not found", id)
	}
	for _, user := range tx.state.users {
		if user.PlanID != nil && *user.PlanID == id {
			return fmt.Errorf("plan %q still referenced by user %q", id, user.ID)
		}
	}
	for _, org := range tx.state.organizations {
		if org.PlanID != nil && *org.PlanID == id {
			return fmt.Errorf("plan %q still referenced by organization %q", id, org.ID)
		}
	}
	delete(tx.state.plans, id)
	tx.recordChange(Change{Entity: domain.EntityPlan, Action: domain.ActionDelete, Before: clonePlan(current)})
	return nil
}

// CreateUser stores a new user account.
func (tx *transaction) CreateUser(u User) (User, error) {
	if u.ID == "" {
		u.ID = tx.store.newID()
	}
	if _, exists := tx.state.users[u.ID]; exists {
		return User{}, fmt.Errorf("user %q already exists", u.ID)
	}
	if u.Email == "" {
		return User{}, errors.New("user requires email")
	}
	if u.PlanID != nil {
		if _, ok := tx.state.plans[*u.PlanID]; !ok {
			return User{}, fmt.Errorf("plan %q not found", *u.PlanID)
		}
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.users[u.ID] = cloneUser(u)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: cloneUser(u)})
	return cloneUser(u), nil
}

// UpdateUser mutates an existing user account.
func (tx *transaction) UpdateUser(id string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %q not found", id)
	}
	before := cloneUser(current)
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	if current.PlanID != nil {
		if _, ok := tx.state.plans[*current.PlanID]; !ok {
			return User{}, fmt.Errorf("plan %q not found", *current.PlanID)
		}
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.users[id] = cloneUser(current)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})
	return cloneUser(current), nil
}

// DeleteUser removes a user account once no organization or project owns it.
func (tx *transaction) DeleteUser(id string) error {
	current, ok := tx.state.users[id]
	if !ok {
		return fmt.Errorf("user %q not found", id)
	}
	for _, org := range tx.state.organizations {
		if org.OwnerID == id {
			return fmt.Errorf("user %q still owns organization %q", id, org.ID)
		}
	}
	for _, project := range tx.state.projects {
		if project.OwnerID != nil && *project.OwnerID == id {
			return fmt.Errorf("user %q still owns project %q", id, project.ID)
		}
	}
	delete(tx.state.users, id)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionDelete, Before: cloneUser(current)})
	return nil
}

// CreateOrganization stores a new tenant organization.
func (tx *transaction) CreateOrganization(o Organization) (Organization, error) {
	if o.ID == "" {
		o.ID = tx.store.newID()
	}
	if _, exists := tx.state.organizations[o.ID]; exists {
		return Organization{}, fmt.Errorf("organization %q already exists", o.ID)
	}
	if o.Name == "" {
		return Organization{}, errors.New("organization requires name")
	}
	if o.OwnerID == "" {
		return Organization{}, errors.New("organization requires owner id")
	}
	if _, ok := tx.state.users[o.OwnerID]; !ok {
		return Organization{}, fmt.Errorf("user %q not found", o.OwnerID)
	}
	if o.PlanID != nil {
		if _, ok := tx.state.plans[*o.PlanID]; !ok {
			return Organization{}, fmt.Errorf("plan %q not found", *o.PlanID)
		}
	}
	o.WalletIDs = dedupeStrings(o.WalletIDs)
	for _, walletID := range o.WalletIDs {
		if _, ok := tx.state.wallets[walletID]; !ok {
			return Organization{}, fmt.Errorf("wallet %q not found", walletID)
		}
	}
	o.CreatedAt = tx.now
	o.UpdatedAt = tx.now
	tx.state.organizations[o.ID] = cloneOrganization(o)
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionCreate, After: cloneOrganization(o)})
	return cloneOrganization(o), nil
}

// UpdateOrganization mutates an existing organization.
func (tx *transaction) UpdateOrganization(id string, mutator func(*Organization) error) (Organization, error) {
	current, ok := tx.state.organizations[id]
	if !ok {
		return Organization{}, fmt.Errorf("organization %q not found", id)
	}
	before := cloneOrganization(current)
	if err := mutator(&current); err != nil {
		return Organization{}, err
	}
	if current.OwnerID == "" {
		return Organization{}, errors.New("organization requires owner id")
	}
	if _, ok := tx.state.users[current.OwnerID]; !ok {
		return Organization{}, fmt.Errorf("user %q not found", current.OwnerID)
	}
	if current.PlanID != nil {
		if _, ok := tx.state.plans[*current.PlanID]; !ok {
			return Organization{}, fmt.Errorf("plan %q not found", *current.PlanID)
		}
	}
	current.WalletIDs = dedupeStrings(current.WalletIDs)
	for _, walletID := range current.WalletIDs {
		if _, ok := tx.state.wallets[walletID]; !ok {
			return Organization{}, fmt.Errorf("wallet %q not found", walletID)
		}
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.organizations[id] = cloneOrganization(current)
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionUpdate, Before: before, After: cloneOrganization(current)})
	return cloneOrganization(current), nil
}

// DeleteOrganization removes a tenant once its scoped records are gone.
func (tx *transaction) DeleteOrganization(id string) error {
	current, ok := tx.state.organizations[id]
	if !ok {
		return fmt.Errorf("organization %q not found", id)
	}
	for _, project := range tx.state.projects {
		if project.OrganizationID == id {
			return fmt.Errorf("organization %q still referenced by project %q", id, project.ID)
		}
	}
	for _, mv := range tx.state.movements {
		if mv.OrganizationID == id {
			return fmt.Errorf("organization %q still referenced by movement %q", id, mv.ID)
		}
	}
	for _, ev := range tx.state.calendarEvents {
		if ev.OrganizationID == id {
			return fmt.Errorf("organization %q still referenced by calendar event %q", id, ev.ID)
		}
	}
	for _, contact := range tx.state.contacts {
		if contact.OrganizationID == id {
			return fmt.Errorf("organization %q still referenced by contact %q", id, contact.ID)
		}
	}
	for _, task := range tx.state.tasks {
		if task.OrganizationID != nil && *task.OrganizationID == id {
			return fmt.Errorf("organization %q still referenced by task %q", id, task.ID)
		}
	}
	delete(tx.state.organizations, id)
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionDelete, Before: cloneOrganization(current)})
	return nil
}

// CreateWallet stores a new wallet.
func (tx *transaction) CreateWallet(w Wallet) (Wallet, error) {
	if w.ID == "" {
		w.ID = tx.store.newID()
	}
	if _, exists := tx.state.wallets[w.ID]; exists {
		return Wallet{}, fmt.Errorf("wallet %q already exists", w.ID)
	}
	if w.Name == "" {
		return Wallet{}, errors.New("wallet requires name")
	}
	w.CreatedAt = tx.now
	w.UpdatedAt = tx.now
	tx.state.wallets[w.ID] = cloneWallet(w)
	tx.recordChange(Change{Entity: domain.EntityWallet, Action: domain.ActionCreate, After: cloneWallet(w)})
	return cloneWallet(w), nil
}

// UpdateWallet mutates an existing wallet.
func (tx *transaction) UpdateWallet(id string, mutator func(*Wallet) error) (Wallet, error) {
	current, ok := tx.state.wallets[id]
	if !ok {
		return Wallet{}, fmt.Errorf("wallet %q not found", id)
	}
	before := cloneWallet(current)
	if err := mutator(&current); err != nil {
		return Wallet{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.wallets[id] = cloneWallet(current)
	tx.recordChange(Change{Entity: domain.EntityWallet, Action: domain.ActionUpdate, Before: before, After: cloneWallet(current)})
	return cloneWallet(current), nil
}

// DeleteWallet removes a wallet once no movement or organization references it.
func (tx *transaction) DeleteWallet(id string) error {
	current, ok := tx.state.wallets[id]
	if !ok {
		return fmt.Errorf("wallet %q not found", id)
	}
	for _, mv := range tx.state.movements {
		if mv.WalletID != nil && *mv.WalletID == id {
			return fmt.Errorf("wallet %q still referenced by movement %q", id, mv.ID)
		}
	}
	for _, org := range tx.state.organizations {
		if containsString(org.WalletIDs, id) {
			return fmt.Errorf("wallet %q still referenced by organization %q", id, org.ID)
		}
	}
	delete(tx.state.wallets, id)
	tx.recordChange(Change{Entity: domain.EntityWallet, Action: domain.ActionDelete, Before: cloneWallet(current)})
	return nil
}

// CreateProject stores a new construction project.
func (tx *transaction) CreateProject(p Project) (Project, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.projects[p.ID]; exists {
		return Project{}, fmt.Errorf("project %q already exists", p.ID)
	}
	if p.Name == "" {
		return Project{}, errors.New("project requires name")
	}
	if err := tx.requireOrganization(p.OrganizationID); err != nil {
		return Project{}, err
	}
	if p.OwnerID != nil {
		if _, ok := tx.state.users[*p.OwnerID]; !ok {
			return Project{}, fmt.Errorf("user %q not found", *p.OwnerID)
		}
	}
	if p.Status == "" {
		p.Status = domain.ProjectStatusPlanned
	}
	if !validProjectStatus(p.Status) {
		return Project{}, fmt.Errorf("invalid project status %q", p.Status)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.projects[p.ID] = cloneProject(p)
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionCreate, After: cloneProject(p)})
	return cloneProject(p), nil
}

// UpdateProject mutates an existing project.
func (tx *transaction) UpdateProject(id string, mutator func(*Project) error) (Project, error) {
	current, ok := tx.state.projects[id]
	if !ok {
		return Project{}, fmt.Errorf("project %q not found", id)
	}
	before := cloneProject(current)
	if err := mutator(&current); err != nil {
		return Project{}, err
	}
	if err := tx.requireOrganization(current.OrganizationID); err != nil {
		return Project{}, err
	}
	if current.OwnerID != nil {
		if _, ok := tx.state.users[*current.OwnerID]; !ok {
			return Project{}, fmt.Errorf("user %q not found", *current.OwnerID)
		}
	}
	if !validProjectStatus(current.Status) {
		return Project{}, fmt.Errorf("invalid project status %q", current.Status)
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.projects[id] = cloneProject(current)
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionUpdate, Before: before, After: cloneProject(current)})
	return cloneProject(current), nil
}

// DeleteProject removes a project once its children are gone.
func (tx *transaction) DeleteProject(id string) error {
	current, ok := tx.state.projects[id]
	if !ok {
		return fmt.Errorf("project %q not found", id)
	}
	for _, budget := range tx.state.budgets {
		if budget.ProjectID == id {
			return fmt.Errorf("project %q still referenced by budget %q", id, budget.ID)
		}
	}
	for _, log := range tx.state.siteLogs {
		if log.ProjectID == id {
			return fmt.Errorf("project %q still referenced by site log %q", id, log.ID)
		}
	}
	for _, mv := range tx.state.movements {
		if mv.ProjectID != nil && *mv.ProjectID == id {
			return fmt.Errorf("project %q still referenced by movement %q", id, mv.ID)
		}
	}
	for _, ev := range tx.state.calendarEvents {
		if ev.ProjectID != nil && *ev.ProjectID == id {
			return fmt.Errorf("project %q still referenced by calendar event %q", id, ev.ID)
		}
	}
	delete(tx.state.projects, id)
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionDelete, Before: cloneProject(current)})
	return nil
}

// CreateBudget stores a new budget.
func (tx *transaction) CreateBudget(b Budget) (Budget, error) {
	if b.ID == "" {
		b.ID = tx.store.newID()
	}
	if _, exists := tx.state.budgets[b.ID]; exists {
		return Budget{}, fmt.Errorf("budget %q already exists", b.ID)
	}
	if err := tx.requireProject(b.ProjectID); err != nil {
		return Budget{}, err
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	tx.state.budgets[b.ID] = cloneBudget(b)
	tx.recordChange(Change{Entity: domain.EntityBudget, Action: domain.ActionCreate, After: cloneBudget(b)})
	return cloneBudget(b), nil
}

// UpdateBudget mutates an existing budget.
func (tx *transaction) UpdateBudget(id string, mutator func(*Budget) error) (Budget, error) {
	current, ok := tx.state.budgets[id]
	if !ok {
		return Budget{}, fmt.Errorf("budget %q not found", id)
	}
	before := cloneBudget(current)
	if err := mutator(&current); err != nil {
		return Budget{}, err
	}
	if err := tx.requireProject(current.ProjectID); err != nil {
		return Budget{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.budgets[id] = cloneBudget(current)
	tx.recordChange(Change{Entity: domain.EntityBudget, Action: domain.ActionUpdate, Before: before, After: cloneBudget(current)})
	return cloneBudget(current), nil
}

// DeleteBudget removes a budget once its lines are gone.
func (tx *transaction) DeleteBudget(id string) error {
	current, ok := tx.state.budgets[id]
	if !ok {
		return fmt.Errorf("budget %q not found", id)
	}
	for _, line := range tx.state.budgetTasks {
		if line.BudgetID == id {
			return fmt.Errorf("budget %q still referenced by budget task %q", id, line.ID)
		}
	}
	delete(tx.state.budgets, id)
	tx.recordChange(Change{Entity: domain.EntityBudget, Action: domain.ActionDelete, Before: cloneBudget(current)})
	return nil
}

// CreateBudgetTask stores a new priced budget line.
func (tx *transaction) CreateBudgetTask(b BudgetTask) (BudgetTask, error) {
	if b.ID == "" {
		b.ID = tx.store.newID()
	}
	if _, exists := tx.state.budgetTasks[b.ID]; exists {
		return BudgetTask{}, fmt.Errorf("budget task %q already exists", b.ID)
	}
	if b.BudgetID == "" {
		return BudgetTask{}, errors.New("budget task requires budget id")
	}
	if _, ok := tx.state.budgets[b.BudgetID]; !ok {
		return BudgetTask{}, fmt.Errorf("budget %q not found", b.BudgetID)
	}
	if b.TaskID != "" {
		if _, ok := tx.state.tasks[b.TaskID]; !ok {
			return BudgetTask{}, fmt.Errorf("task %q not found", b.TaskID)
		}
	}
	if b.Quantity < 0 {
		return BudgetTask{}, errors.New("budget task quantity must not be negative")
	}
	if b.StartDate != nil && b.EndDate != nil && b.EndDate.Before(*b.StartDate) {
		return BudgetTask{}, errors.New("budget task end date before start date")
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	tx.state.budgetTasks[b.ID] = cloneBudgetTask(b)
	tx.recordChange(Change{Entity: domain.EntityBudgetTask, Action: domain.ActionCreate, After: cloneBudgetTask(b)})
	return cloneBudgetTask(b), nil
}

// UpdateBudgetTask mutates an existing budget line.
func (tx *transaction) UpdateBudgetTask(id string, mutator func(*BudgetTask) error) (BudgetTask, error) {
	current, ok := tx.state.budgetTasks[id]
	if !ok {
		return BudgetTask{}, fmt.Errorf("budget task %q not found", id)
	}
	before := cloneBudgetTask(current)
	if err := mutator(&current); err != nil {
		return BudgetTask{}, err
	}
	if _, ok := tx.state.budgets[current.BudgetID]; !ok {
		return BudgetTask{}, fmt.Errorf("budget %q not found", current.BudgetID)
	}
	if current.TaskID != "" {
		if _, ok := tx.state.tasks[current.TaskID]; !ok {
			return BudgetTask{}, fmt.Errorf("task %q not found", current.TaskID)
		}
	}
	if current.Quantity < 0 {
		return BudgetTask{}, errors.New("budget task quantity must not be negative")
	}
	if current.StartDate != nil && current.EndDate != nil && current.EndDate.Before(*current.StartDate) {
		return BudgetTask{}, errors.New("budget task end date before start date")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.budgetTasks[id] = cloneBudgetTask(current)
	tx.recordChange(Change{Entity: domain.EntityBudgetTask, Action: domain.ActionUpdate, Before: before, After: cloneBudgetTask(current)})
	return cloneBudgetTask(current), nil
}

// DeleteBudgetTask removes a budget line once no site log entry references it.
func (tx *transaction) DeleteBudgetTask(id string) error {
	current, ok := tx.state.budgetTasks[id]
	if !ok {
		return fmt.Errorf("budget task %q not found", id)
	}
	for _, slt := range tx.state.siteLogTasks {
		if slt.BudgetTaskID != nil && *slt.BudgetTaskID == id {
			return fmt.Errorf("budget task %q still referenced by site log task %q", id, slt.ID)
		}
	}
	delete(tx.state.budgetTasks, id)
	tx.recordChange(Change{Entity: domain.EntityBudgetTask, Action: domain.ActionDelete, Before: cloneBudgetTask(current)})
	return nil
}

// CreateSiteLog stores a new site log.
func (tx *transaction) CreateSiteLog(l SiteLog) (SiteLog, error) {
	if l.ID == "" {
		l.ID = tx.store.newID()
	}
	if _, exists := tx.state.siteLogs[l.ID]; exists {
		return SiteLog{}, fmt.Errorf("site log %q already exists", l.ID)
	}
	if err := tx.requireProject(l.ProjectID); err != nil {
		return SiteLog{}, err
	}
	if l.LogDate.IsZero() {
		return SiteLog{}, errors.New("site log requires log date")
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.siteLogs[l.ID] = cloneSiteLog(l)
	tx.recordChange(Change{Entity: domain.EntitySiteLog, Action: domain.ActionCreate, After: cloneSiteLog(l)})
	return cloneSiteLog(l), nil
}

// UpdateSiteLog mutates an existing site log.
func (tx *transaction) UpdateSiteLog(id string, mutator func(*SiteLog) error) (SiteLog, error) {
	current, ok := tx.state.siteLogs[id]
	if !ok {
		return SiteLog{}, fmt.Errorf("site log %q not found", id)
	}
	before := cloneSiteLog(current)
	if err := mutator(&current); err != nil {
		return SiteLog{}, err
	}
	if err := tx.requireProject(current.ProjectID); err != nil {
		return SiteLog{}, err
	}
	if current.LogDate.IsZero() {
		return SiteLog{}, errors.New("site log requires log date")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.siteLogs[id] = cloneSiteLog(current)
	tx.recordChange(Change{Entity: domain.EntitySiteLog, Action: domain.ActionUpdate, Before: before, After: cloneSiteLog(current)})
	return cloneSiteLog(current), nil
}

// DeleteSiteLog removes a site log once its entries are gone.
func (tx *transaction) DeleteSiteLog(id string) error {
	current, ok := tx.state.siteLogs[id]
	if !ok {
		return fmt.Errorf("site log %q not found", id)
	}
	for _, slt := range tx.state.siteLogTasks {
		if slt.SiteLogID == id {
			return fmt.Errorf("site log %q still referenced by site log task %q", id, slt.ID)
		}
	}
	for _, att := range tx.state.siteLogAttendees {
		if att.SiteLogID == id {
			return fmt.Errorf("site log %q still referenced by attendee %q", id, att.ID)
		}
	}
	for _, file := range tx.state.siteLogFiles {
		if file.SiteLogID == id {
			return fmt.Errorf("site log %q still referenced by file %q", id, file.ID)
		}
	}
	delete(tx.state.siteLogs, id)
	tx.recordChange(Change{Entity: domain.EntitySiteLog, Action: domain.ActionDelete, Before: cloneSiteLog(current)})
	return nil
}

// CreateSiteLogTask stores a new site log progress entry.
func (tx *transaction) CreateSiteLogTask(t SiteLogTask) (SiteLogTask, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.siteLogTasks[t.ID]; exists {
		return SiteLogTask{}, fmt.Errorf("site log task %q already exists", t.ID)
	}
	if err := tx.requireSiteLog(t.SiteLogID); err != nil {
		return SiteLogTask{}, err
	}
	if t.BudgetTaskID != nil {
		if _, ok := tx.state.budgetTasks[*t.BudgetTaskID]; !ok {
			return SiteLogTask{}, fmt.Errorf("budget task %q not found", *t.BudgetTaskID)
		}
	}
	if t.Progress < 0 || t.Progress > 100 {
		return SiteLogTask{}, errors.New("site log task progress out of range")
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.siteLogTasks[t.ID] = cloneSiteLogTask(t)
	tx.recordChange(Change{Entity: domain.EntitySiteLogTask, Action: domain.ActionCreate, After: cloneSiteLogTask(t)})
	return cloneSiteLogTask(t), nil
}

// UpdateSiteLogTask mutates an existing site log progress entry.
func (tx *transaction) UpdateSiteLogTask(id string, mutator func(*SiteLogTask) error) (SiteLogTask, error) {
	current, ok := tx.state.siteLogTasks[id]
	if !ok {
		return SiteLogTask{}, fmt.Errorf("site log task %q not found", id)
	}
	before := cloneSiteLogTask(current)
	if err := mutator(&current); err != nil {
		return SiteLogTask{}, err
	}
	if err := tx.requireSiteLog(current.SiteLogID); err != nil {
		return SiteLogTask{}, err
	}
	if current.BudgetTaskID != nil {
		if _, ok := tx.state.budgetTasks[*current.BudgetTaskID]; !ok {
			return SiteLogTask{}, fmt.Errorf("budget task %q not found", *current.BudgetTaskID)
		}
	}
	if current.Progress < 0 || current.Progress > 100 {
		return SiteLogTask{}, errors.New("site log task progress out of range")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.siteLogTasks[id] = cloneSiteLogTask(current)
	tx.recordChange(Change{Entity: domain.EntitySiteLogTask, Action: domain.ActionUpdate, Before: before, After: cloneSiteLogTask(current)})
	return cloneSiteLogTask(current), nil
}

// DeleteSiteLogTask removes a site log progress entry.
func (tx *transaction) DeleteSiteLogTask(id string) error {
	current, ok := tx.state.siteLogTasks[id]
	if !ok {
		return fmt.Errorf("site log task %q not found", id)
	}
	delete(tx.state.siteLogTasks, id)
	tx.recordChange(Change{Entity: domain.EntitySiteLogTask, Action: domain.ActionDelete, Before: cloneSiteLogTask(current)})
	return nil
}

// CreateSiteLogAttendee stores a new attendance entry.
func (tx *transaction) CreateSiteLogAttendee(a SiteLogAttendee) (SiteLogAttendee, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.siteLogAttendees[a.ID]; exists {
		return SiteLogAttendee{}, fmt.Errorf("site log attendee %q already exists", a.ID)
	}
	if err := tx.requireSiteLog(a.SiteLogID); err != nil {
		return SiteLogAttendee{}, err
	}
	if a.ContactID == "" {
		return SiteLogAttendee{}, errors.New("site log attendee requires contact id")
	}
	if _, ok := tx.state.contacts[a.ContactID]; !ok {
		return SiteLogAttendee{}, fmt.Errorf("contact %q not found", a.ContactID)
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.siteLogAttendees[a.ID] = cloneSiteLogAttendee(a)
	tx.recordChange(Change{Entity: domain.EntitySiteLogAttendee, Action: domain.ActionCreate, After: cloneSiteLogAttendee(a)})
	return cloneSiteLogAttendee(a), nil
}

// UpdateSiteLogAttendee mutates an existing attendance entry.
func (tx *transaction) UpdateSiteLogAttendee(id string, mutator func(*SiteLogAttendee) error) (SiteLogAttendee, error) {
	current, ok := tx.state.siteLogAttendees[id]
	if !ok {
		return SiteLogAttendee{}, fmt.Errorf("site log attendee %q not found", id)
	}
	before := cloneSiteLogAttendee(current)
	if err := mutator(&current); err != nil {
		return SiteLogAttendee{}, err
	}
	if err := tx.requireSiteLog(current.SiteLogID); err != nil {
		return SiteLogAttendee{}, err
	}
	if _, ok := tx.state.contacts[current.ContactID]; !ok {
		return SiteLogAttendee{}, fmt.Errorf("contact %q not found", current.ContactID)
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.siteLogAttendees[id] = cloneSiteLogAttendee(current)
	tx.recordChange(Change{Entity: domain.EntitySiteLogAttendee, Action: domain.ActionUpdate, Before: before, After: cloneSiteLogAttendee(current)})
	return cloneSiteLogAttendee(current), nil
}

// DeleteSiteLogAttendee removes an attendance entry.
func (tx *transaction) DeleteSiteLogAttendee(id string) error {
	current, ok := tx.state.siteLogAttendees[id]
	if !ok {
		return fmt.Errorf("site log attendee %q not found", id)
	}
	delete(tx.state.siteLogAttendees, id)
	tx.recordChange(Change{Entity: domain.EntitySiteLogAttendee, Action: domain.ActionDelete, Before: cloneSiteLogAttendee(current)})
	return nil
}

// CreateSiteLogFile stores a new file attachment record.
func (tx *transaction) CreateSiteLogFile(f SiteLogFile) (SiteLogFile, error) {
	if f.ID == "" {
		f.ID = tx.store.newID()
	}
	if _, exists := tx.state.siteLogFiles[f.ID]; exists {
		return SiteLogFile{}, fmt.Errorf("site log file %q already exists", f.ID)
	}
	if err := tx.requireSiteLog(f.SiteLogID); err != nil {
		return SiteLogFile{}, err
	}
	if f.BlobKey == "" {
		return SiteLogFile{}, errors.New("site log file requires blob key")
	}
	f.CreatedAt = tx.now
	f.UpdatedAt = tx.now
	tx.state.siteLogFiles[f.ID] = cloneSiteLogFile(f)
	tx.recordChange(Change{Entity: domain.EntitySiteLogFile, Action: domain.ActionCreate, After: cloneSiteLogFile(f)})
	return cloneSiteLogFile(f), nil
}

// UpdateSiteLogFile mutates an existing file attachment record.
func (tx *transaction) UpdateSiteLogFile(id string, mutator func(*SiteLogFile) error) (SiteLogFile, error) {
	current, ok := tx.state.siteLogFiles[id]
	if !ok {
		return SiteLogFile{}, fmt.Errorf("site log file %q not found", id)
	}
	before := cloneSiteLogFile(current)
	if err := mutator(&current); err != nil {
		return SiteLogFile{}, err
	}
	if err := tx.requireSiteLog(current.SiteLogID); err != nil {
		return SiteLogFile{}, err
	}
	if current.BlobKey == "" {
		return SiteLogFile{}, errors.New("site log file requires blob key")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.siteLogFiles[id] = cloneSiteLogFile(current)
	tx.recordChange(Change{Entity: domain.EntitySiteLogFile, Action: domain.ActionUpdate, Before: before, After: cloneSiteLogFile(current)})
	return cloneSiteLogFile(current), nil
}

// DeleteSiteLogFile removes a file attachment record.
func (tx *transaction) DeleteSiteLogFile(id string) error {
	current, ok := tx.state.siteLogFiles[id]
	if !ok {
		return fmt.Errorf("site log file %q not found", id)
	}
	delete(tx.state.siteLogFiles, id)
	tx.recordChange(Change{Entity: domain.EntitySiteLogFile, Action: domain.ActionDelete, Before: cloneSiteLogFile(current)})
	return nil
}

// CreateMovement stores a new financial movement.
func (tx *transaction) CreateMovement(m Movement) (Movement, error) {
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.movements[m.ID]; exists {
		return Movement{}, fmt.Errorf("movement %q already exists", m.ID)
	}
	if err := tx.requireOrganization(m.OrganizationID); err != nil {
		return Movement{}, err
	}
	if err := tx.validateMovementRefs(&m); err != nil {
		return Movement{}, err
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.movements[m.ID] = cloneMovement(m)
	tx.recordChange(Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: cloneMovement(m)})
	return cloneMovement(m), nil
}

func (tx *transaction) validateMovementRefs(m *Movement) error {
	if m.Kind != domain.MovementIncome && m.Kind != domain.MovementExpense {
		return fmt.Errorf("invalid movement kind %q", m.Kind)
	}
	if m.AmountCents <= 0 {
		return errors.New("movement amount must be positive")
	}
	if m.OccurredOn.IsZero() {
		return errors.New("movement requires occurrence date")
	}
	if m.ProjectID != nil {
		if _, ok := tx.state.projects[*m.ProjectID]; !ok {
			return fmt.Errorf("project %q not found", *m.ProjectID)
		}
	}
	if m.WalletID != nil {
		if _, ok := tx.state.wallets[*m.WalletID]; !ok {
			return fmt.Errorf("wallet %q not found", *m.WalletID)
		}
	}
	if m.ContactID != nil {
		if _, ok := tx.state.contacts[*m.ContactID]; !ok {
			return fmt.Errorf("contact %q not found", *m.ContactID)
		}
	}
	return nil
}

// UpdateMovement mutates an existing financial movement.
func (tx *transaction) UpdateMovement(id string, mutator func(*Movement) error) (Movement, error) {
	current, ok := tx.state.movements[id]
	if !ok {
		return Movement{}, fmt.Errorf("movement %q not found", id)
	}
	before := cloneMovement(current)
	if err := mutator(&current); err != nil {
		return Movement{}, err
	}
	if err := tx.requireOrganization(current.OrganizationID); err != nil {
		return Movement{}, err
	}
	if err := tx.validateMovementRefs(&current); err != nil {
		return Movement{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.movements[id] = cloneMovement(current)
	tx.recordChange(Change{Entity: domain.EntityMovement, Action: domain.ActionUpdate, Before: before, After: cloneMovement(current)})
	return cloneMovement(current), nil
}

// DeleteMovement removes a financial movement.
func (tx *transaction) DeleteMovement(id string) error {
	current, ok := tx.state.movements[id]
	if !ok {
		return fmt.Errorf("movement %q not found", id)
	}
	delete(tx.state.movements, id)
	tx.recordChange(Change{Entity: domain.EntityMovement, Action: domain.ActionDelete, Before: cloneMovement(current)})
	return nil
}

// CreateCalendarEvent stores a new calendar event.
func (tx *transaction) CreateCalendarEvent(e CalendarEvent) (CalendarEvent, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.calendarEvents[e.ID]; exists {
		return CalendarEvent{}, fmt.Errorf("calendar event %q already exists", e.ID)
	}
	if err := tx.requireOrganization(e.OrganizationID); err != nil {
		return CalendarEvent{}, err
	}
	if err := tx.validateCalendarEvent(&e); err != nil {
		return CalendarEvent{}, err
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.calendarEvents[e.ID] = cloneCalendarEvent(e)
	tx.recordChange(Change{Entity: domain.EntityCalendarEvent, Action: domain.ActionCreate, After: cloneCalendarEvent(e)})
	return cloneCalendarEvent(e), nil
}

func (tx *transaction) validateCalendarEvent(e *CalendarEvent) error {
	if e.Title == "" {
		return errors.New("calendar event requires title")
	}
	if e.StartsAt.IsZero() || e.EndsAt.IsZero() {
		return errors.New("calendar event requires start and end")
	}
	if e.EndsAt.Before(e.StartsAt) {
		return errors.New("calendar event ends before it starts")
	}
	if e.ProjectID != nil {
		if _, ok := tx.state.projects[*e.ProjectID]; !ok {
			return fmt.Errorf("project %q not found", *e.ProjectID)
		}
	}
	return nil
}

// UpdateCalendarEvent mutates an existing calendar event.
func (tx *transaction) UpdateCalendarEvent(id string, mutator func(*CalendarEvent) error) (CalendarEvent, error) {
	current, ok := tx.state.calendarEvents[id]
	if !ok {
		return CalendarEvent{}, fmt.Errorf("calendar event %q not found", id)
	}
	before := cloneCalendarEvent(current)
	if err := mutator(&current); err != nil {
		return CalendarEvent{}, err
	}
	if err := tx.requireOrganization(current.OrganizationID); err != nil {
		return CalendarEvent{}, err
	}
	if err := tx.validateCalendarEvent(&current); err != nil {
		return CalendarEvent{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.calendarEvents[id] = cloneCalendarEvent(current)
	tx.recordChange(Change{Entity: domain.EntityCalendarEvent, Action: domain.ActionUpdate, Before: before, After: cloneCalendarEvent(current)})
	return cloneCalendarEvent(current), nil
}

// DeleteCalendarEvent removes a calendar event.
func (tx *transaction) DeleteCalendarEvent(id string) error {
	current, ok := tx.state.calendarEvents[id]
	if !ok {
		return fmt.Errorf("calendar event %q not found", id)
	}
	delete(tx.state.calendarEvents, id)
	tx.recordChange(Change{Entity: domain.EntityCalendarEvent, Action: domain.ActionDelete, Before: cloneCalendarEvent(current)})
	return nil
}

// CreateContact stores a new contact.
func (tx *transaction) CreateContact(c Contact) (Contact, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.contacts[c.ID]; exists {
		return Contact{}, fmt.Errorf("contact %q already exists", c.ID)
	}
	if err := tx.requireOrganization(c.OrganizationID); err != nil {
		return Contact{}, err
	}
	if c.FirstName == "" && c.LastName == "" {
		return Contact{}, errors.New("contact requires a name")
	}
	c.ContactTypes = dedupeStrings(c.ContactTypes)
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.contacts[c.ID] = cloneContact(c)
	tx.recordChange(Change{Entity: domain.EntityContact, Action: domain.ActionCreate, After: cloneContact(c)})
	return cloneContact(c), nil
}

// UpdateContact mutates an existing contact.
func (tx *transaction) UpdateContact(id string, mutator func(*Contact) error) (Contact, error) {
	current, ok := tx.state.contacts[id]
	if !ok {
		return Contact{}, fmt.Errorf("contact %q not found", id)
	}
	before := cloneContact(current)
	if err := mutator(&current); err != nil {
		return Contact{}, err
	}
	if err := tx.requireOrganization(current.OrganizationID); err != nil {
		return Contact{}, err
	}
	current.ContactTypes = dedupeStrings(current.ContactTypes)
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.contacts[id] = cloneContact(current)
	tx.recordChange(Change{Entity: domain.EntityContact, Action: domain.ActionUpdate, Before: before, After: cloneContact(current)})
	return cloneContact(current), nil
}

// DeleteContact removes a contact once nothing references it.
func (tx *transaction) DeleteContact(id string) error {
	current, ok := tx.state.contacts[id]
	if !ok {
		return fmt.Errorf("contact %q not found", id)
	}
	for _, mv := range tx.state.movements {
		if mv.ContactID != nil && *mv.ContactID == id {
			return fmt.Errorf("contact %q still referenced by movement %q", id, mv.ID)
		}
	}
	for _, att := range tx.state.siteLogAttendees {
		if att.ContactID == id {
			return fmt.Errorf("contact %q still referenced by site log attendee %q", id, att.ID)
		}
	}
	delete(tx.state.contacts, id)
	tx.recordChange(Change{Entity: domain.EntityContact, Action: domain.ActionDelete, Before: cloneContact(current)})
	return nil
}

// CreateUnit stores a new measurement unit.
func (tx *transaction) CreateUnit(u Unit) (Unit, error) {
	if u.ID == "" {
		u.ID = tx.store.newID()
	}
	if _, exists := tx.state.units[u.ID]; exists {
		return Unit{}, fmt.Errorf("unit %q already exists", u.ID)
	}
	if u.Name == "" {
		return Unit{}, errors.New("unit requires name")
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.units[u.ID] = cloneUnit(u)
	tx.recordChange(Change{Entity: domain.EntityUnit, Action: domain.ActionCreate, After: cloneUnit(u)})
	return cloneUnit(u), nil
}

// UpdateUnit mutates an existing measurement unit.
func (tx *transaction) UpdateUnit(id string, mutator func(*Unit) error) (Unit, error) {
	current, ok := tx.state.units[id]
	if !ok {
		return Unit{}, fmt.Errorf("unit %q not found", id)
	}
	before := cloneUnit(current)
	if err := mutator(&current); err != nil {
		return Unit{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.units[id] = cloneUnit(current)
	tx.recordChange(Change{Entity: domain.EntityUnit, Action: domain.ActionUpdate, Before: before, After: cloneUnit(current)})
	return cloneUnit(current), nil
}

// DeleteUnit removes a unit once no material or task references it.
func (tx *transaction) DeleteUnit(id string) error {
	current, ok := tx.state.units[id]
	if !ok {
		return fmt.Errorf("unit %q not found", id)
	}
	for _, mat := range tx.state.materials {
		if mat.UnitID != nil && *mat.UnitID == id {
			return fmt.Errorf("unit %q still referenced by material %q", id, mat.ID)
		}
	}
	for _, task := range tx.state.tasks {
		if task.UnitID != nil && *task.UnitID == id {
			return fmt.Errorf("unit %q still referenced by task %q", id, task.ID)
		}
	}
	delete(tx.state.units, id)
	tx.recordChange(Change{Entity: domain.EntityUnit, Action: domain.ActionDelete, Before: cloneUnit(current)})
	return nil
}

// CreateTaskCategory stores a new task category node.
func (tx *transaction) CreateTaskCategory(c TaskCategory) (TaskCategory, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.taskCategories[c.ID]; exists {
		return TaskCategory{}, fmt.Errorf("task category %q already exists", c.ID)
	}
	if c.Name == "" {
		return TaskCategory{}, errors.New("task category requires name")
	}
	if c.ParentID != nil {
		if *c.ParentID == c.ID {
			return TaskCategory{}, errors.New("task category cannot parent itself")
		}
		if _, ok := tx.state.taskCategories[*c.ParentID]; !ok {
			return TaskCategory{}, fmt.Errorf("task category %q not found", *c.ParentID)
		}
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.taskCategories[c.ID] = cloneTaskCategory(c)
	tx.recordChange(Change{Entity: domain.EntityTaskCategory, Action: domain.ActionCreate, After: cloneTaskCategory(c)})
	return cloneTaskCategory(c), nil
}

// UpdateTaskCategory mutates an existing task category node.
func (tx *transaction) UpdateTaskCategory(id string, mutator func(*TaskCategory) error) (TaskCategory, error) {
	current, ok := tx.state.taskCategories[id]
	if !ok {
		return TaskCategory{}, fmt.Errorf("task category %q not found", id)
	}
	before := cloneTaskCategory(current)
	if err := mutator(&current); err != nil {
		return TaskCategory{}, err
	}
	if current.ParentID != nil {
		if *current.ParentID == id {
			return TaskCategory{}, errors.New("task category cannot parent itself")
		}
		if _, ok := tx.state.taskCategories[*current.ParentID]; !ok {
			return TaskCategory{}, fmt.Errorf("task category %q not found", *current.ParentID)
		}
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.taskCategories[id] = cloneTaskCategory(current)
	tx.recordChange(Change{Entity: domain.EntityTaskCategory, Action: domain.ActionUpdate, Before: before, After: cloneTaskCategory(current)})
	return cloneTaskCategory(current), nil
}

// DeleteTaskCategory removes a category node once it has no children or tasks.
func (tx *transaction) DeleteTaskCategory(id string) error {
	current, ok := tx.state.taskCategories[id]
	if !ok {
		return fmt.Errorf("task category %q not found", id)
	}
	for _, cat := range tx.state.taskCategories {
		if cat.ParentID != nil && *cat.ParentID == id {
			return fmt.Errorf("task category %q still referenced by child category %q", id, cat.ID)
		}
	}
	for _, task := range tx.state.tasks {
		if task.CategoryID != nil && *task.CategoryID == id {
			return fmt.Errorf("task category %q still referenced by task %q", id, task.ID)
		}
	}
	delete(tx.state.taskCategories, id)
	tx.recordChange(Change{Entity: domain.EntityTaskCategory, Action: domain.ActionDelete, Before: cloneTaskCategory(current)})
	return nil
}

// CreateMaterial stores a new material catalog entry.
func (tx *transaction) CreateMaterial(m Material) (Material, error) {
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.materials[m.ID]; exists {
		return Material{}, fmt.Errorf("material %q already exists", m.ID)
	}
	if m.Name == "" {
		return Material{}, errors.New("material requires name")
	}
	if m.UnitID != nil {
		if _, ok := tx.state.units[*m.UnitID]; !ok {
			return Material{}, fmt.Errorf("unit %q not found", *m.UnitID)
		}
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.materials[m.ID] = cloneMaterial(m)
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionCreate, After: cloneMaterial(m)})
	return cloneMaterial(m), nil
}

// UpdateMaterial mutates an existing material catalog entry.
func (tx *transaction) UpdateMaterial(id string, mutator func(*Material) error) (Material, error) {
	current, ok := tx.state.materials[id]
	if !ok {
		return Material{}, fmt.Errorf("material %q not found", id)
	}
	before := cloneMaterial(current)
	if err := mutator(&current); err != nil {
		return Material{}, err
	}
	if current.UnitID != nil {
		if _, ok := tx.state.units[*current.UnitID]; !ok {
			return Material{}, fmt.Errorf("unit %q not found", *current.UnitID)
		}
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.materials[id] = cloneMaterial(current)
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionUpdate, Before: before, After: cloneMaterial(current)})
	return cloneMaterial(current), nil
}

// DeleteMaterial removes a material once no task consumes it.
func (tx *transaction) DeleteMaterial(id string) error {
	current, ok := tx.state.materials[id]
	if !ok {
		return fmt.Errorf("material %q not found", id)
	}
	for _, task := range tx.state.tasks {
		for _, tm := range task.Materials {
			if tm.MaterialID == id {
				return fmt.Errorf("material %q still referenced by task %q", id, task.ID)
			}
		}
	}
	delete(tx.state.materials, id)
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionDelete, Before: cloneMaterial(current)})
	return nil
}

// CreateTask stores a new catalog task.
func (tx *transaction) CreateTask(t Task) (Task, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.tasks[t.ID]; exists {
		return Task{}, fmt.Errorf("task %q already exists", t.ID)
	}
	if t.Name == "" {
		return Task{}, errors.New("task requires name")
	}
	if err := tx.validateTaskRefs(&t); err != nil {
		return Task{}, err
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.tasks[t.ID] = cloneTask(t)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionCreate, After: cloneTask(t)})
	return cloneTask(t), nil
}

func (tx *transaction) validateTaskRefs(t *Task) error {
	if t.OrganizationID != nil {
		if _, ok := tx.state.organizations[*t.OrganizationID]; !ok {
			return fmt.Errorf("organization %q not found", *t.OrganizationID)
		}
	}
	if t.CategoryID != nil {
		if _, ok := tx.state.taskCategories[*t.CategoryID]; !ok {
			return fmt.Errorf("task category %q not found", *t.CategoryID)
		}
	}
	if t.UnitID != nil {
		if _, ok := tx.state.units[*t.UnitID]; !ok {
			return fmt.Errorf("unit %q not found", *t.UnitID)
		}
	}
	for _, tm := range t.Materials {
		if _, ok := tx.state.materials[tm.MaterialID]; !ok {
			return fmt.Errorf("material %q not found", tm.MaterialID)
		}
		if tm.Quantity < 0 {
			return errors.New("task material quantity must not be negative")
		}
	}
	return nil
}

// UpdateTask mutates an existing catalog task.
func (tx *transaction) UpdateTask(id string, mutator func(*Task) error) (Task, error) {
	current, ok := tx.state.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("task %q not found", id)
	}
	before := cloneTask(current)
	if err := mutator(&current); err != nil {
		return Task{}, err
	}
	if err := tx.validateTaskRefs(&current); err != nil {
		return Task{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.tasks[id] = cloneTask(current)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})
	return cloneTask(current), nil
}

// DeleteTask removes a catalog task once no budget line references it.
func (tx *transaction) DeleteTask(id string) error {
	current, ok := tx.state.tasks[id]
	if !ok {
		return fmt.Errorf("task %q not found", id)
	}
	for _, line := range tx.state.budgetTasks {
		if line.TaskID == id {
			return fmt.Errorf("task %q still referenced by budget task %q", id, line.ID)
		}
	}
	delete(tx.state.tasks, id)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionDelete, Before: cloneTask(current)})
	return nil
}

// CreateActivity stores a new activity catalog entry.
func (tx *transaction) CreateActivity(a Activity) (Activity, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.activities[a.ID]; exists {
		return Activity{}, fmt.Errorf("activity %q already exists", a.ID)
	}
	if a.Name == "" {
		return Activity{}, errors.New("activity requires name")
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.activities[a.ID] = cloneActivity(a)
	tx.recordChange(Change{Entity: domain.EntityActivity, Action: domain.ActionCreate, After: cloneActivity(a)})
	return cloneActivity(a), nil
}

// UpdateActivity mutates an existing activity catalog entry.
func (tx *transaction) UpdateActivity(id string, mutator func(*Activity) error) (Activity, error) {
	current, ok := tx.state.activities[id]
	if !ok {
		return Activity{}, fmt.Errorf("activity %q not found", id)
	}
	before := cloneActivity(current)
	if err := mutator(&current); err != nil {
		return Activity{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.activities[id] = cloneActivity(current)
	tx.recordChange(Change{Entity: domain.EntityActivity, Action: domain.ActionUpdate, Before: before, After: cloneActivity(current)})
	return cloneActivity(current), nil
}

// DeleteActivity removes an activity once no action references it.
func (tx *transaction) DeleteActivity(id string) error {
	current, ok := tx.state.activities[id]
	if !ok {
		return fmt.Errorf("activity %q not found", id)
	}
	for _, action := range tx.state.actions {
		if action.ActivityID != nil && *action.ActivityID == id {
			return fmt.Errorf("activity %q still referenced by action %q", id, action.ID)
		}
	}
	delete(tx.state.activities, id)
	tx.recordChange(Change{Entity: domain.EntityActivity, Action: domain.ActionDelete, Before: cloneActivity(current)})
	return nil
}

// CreateAction stores a new action catalog entry.
func (tx *transaction) CreateAction(a Action) (Action, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.actions[a.ID]; exists {
		return Action{}, fmt.Errorf("action %q already exists", a.ID)
	}
	if a.Name == "" {
		return Action{}, errors.New("action requires name")
	}
	if a.ActivityID != nil {
		if _, ok := tx.state.activities[*a.ActivityID]; !ok {
			return Action{}, fmt.Errorf("activity %q not found", *a.ActivityID)
		}
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.actions[a.ID] = cloneAction(a)
	tx.recordChange(Change{Entity: domain.EntityAction, Action: domain.ActionCreate, After: cloneAction(a)})
	return cloneAction(a), nil
}

// UpdateAction mutates an existing action catalog entry.
func (tx *transaction) UpdateAction(id string, mutator func(*Action) error) (Action, error) {
	current, ok := tx.state.actions[id]
	if !ok {
		return Action{}, fmt.Errorf("action %q not found", id)
	}
	before := cloneAction(current)
	if err := mutator(&current); err != nil {
		return Action{}, err
	}
	if current.ActivityID != nil {
		if _, ok := tx.state.activities[*current.ActivityID]; !ok {
			return Action{}, fmt.Errorf("activity %q not found", *current.ActivityID)
		}
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.actions[id] = cloneAction(current)
	tx.recordChange(Change{Entity: domain.EntityAction, Action: domain.ActionUpdate, Before: before, After: cloneAction(current)})
	return cloneAction(current), nil
}

// DeleteAction removes an action catalog entry.
func (tx *transaction) DeleteAction(id string) error {
	current, ok := tx.state.actions[id]
	if !ok {
		return fmt.Errorf("action %q not found", id)
	}
	delete(tx.state.actions, id)
	tx.recordChange(Change{Entity: domain.EntityAction, Action: domain.ActionDelete, Before: cloneAction(current)})
	return nil
}

func validProjectStatus(s domain.ProjectStatus) bool {
	switch s {
	case domain.ProjectStatusPlanned, domain.ProjectStatusActive, domain.ProjectStatusPaused, domain.ProjectStatusFinished:
		return true
	default:
		return false
	}
}
