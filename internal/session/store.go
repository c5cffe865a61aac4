// Package session holds the active working context of a client: which
// organization, project, and budget are selected, plus cached snapshots used
// to render scoped screens. One writer mutates the store through Apply;
// readers and subscribers get copies.
package session

import (
	"fmt"
	"sync"

	"obracore/pkg/domain"
)

// Context is the durable session state. Scope ids narrow from organization to
// project to budget; snapshots are denormalized copies for display.
type Context struct {
	OrganizationID  string               `json:"organization_id,omitempty"`
	ProjectID       string               `json:"project_id,omitempty"`
	BudgetID        string               `json:"budget_id,omitempty"`
	Organization    *domain.Organization `json:"organization,omitempty"`
	CurrentProjects []domain.Project     `json:"current_projects,omitempty"`
}

func (c Context) clone() Context {
	out := c
	if c.Organization != nil {
		org := *c.Organization
		org.WalletIDs = append([]string(nil), c.Organization.WalletIDs...)
		out.Organization = &org
	}
	if c.CurrentProjects != nil {
		out.CurrentProjects = append([]domain.Project(nil), c.CurrentProjects...)
	}
	return out
}

// Partial carries the fields an Apply call wants to change. Nil fields are
// left untouched; the merge is shallow and idempotent.
type Partial struct {
	OrganizationID  *string
	ProjectID       *string
	BudgetID        *string
	Organization    *domain.Organization
	CurrentProjects []domain.Project
}

// Persister stores the session context between runs.
type Persister interface {
	Load() (Context, bool, error)
	Save(Context) error
	Clear() error
}

// Store is the single-writer session context store.
type Store struct {
	mu        sync.RWMutex
	ctx       Context
	persister Persister
	subs      map[int]func(Context)
	nextSub   int
}

// NewStore builds a store over the persister, restoring any saved context.
func NewStore(persister Persister) (*Store, error) {
	s := &Store{persister: persister, subs: make(map[int]func(Context))}
	if persister != nil {
		ctx, ok, err := persister.Load()
		if err != nil {
			return nil, fmt.Errorf("load session context: %w", err)
		}
		if ok {
			s.ctx = ctx
		}
	}
	return s, nil
}

// Current returns a copy of the active context.
func (s *Store) Current() Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx.clone()
}

// Apply shallow-merges the partial into the context. Changing the
// organization clears the project and budget selection; changing the project
// clears the budget selection. The merged context is persisted before
// subscribers are notified.
func (s *Store) Apply(p Partial) (Context, error) {
	s.mu.Lock()
	next := s.ctx.clone()

	if p.OrganizationID != nil && *p.OrganizationID != next.OrganizationID {
		next.OrganizationID = *p.OrganizationID
		next.ProjectID = ""
		next.BudgetID = ""
		next.Organization = nil
		next.CurrentProjects = nil
	}
	if p.ProjectID != nil && *p.ProjectID != next.ProjectID {
		next.ProjectID = *p.ProjectID
		next.BudgetID = ""
	}
	if p.BudgetID != nil {
		next.BudgetID = *p.BudgetID
	}
	if p.Organization != nil {
		org := *p.Organization
		org.WalletIDs = append([]string(nil), p.Organization.WalletIDs...)
		next.Organization = &org
	}
	if p.CurrentProjects != nil {
		next.CurrentProjects = append([]domain.Project(nil), p.CurrentProjects...)
	}

	if s.persister != nil {
		if err := s.persister.Save(next); err != nil {
			s.mu.Unlock()
			return Context{}, fmt.Errorf("persist session context: %w", err)
		}
	}
	s.ctx = next
	subs := make([]func(Context), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	snapshot := next.clone()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot.clone())
	}
	return snapshot, nil
}

// Reset clears the context, used on logout.
func (s *Store) Reset() error {
	s.mu.Lock()
	if s.persister != nil {
		if err := s.persister.Clear(); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("clear session context: %w", err)
		}
	}
	s.ctx = Context{}
	subs := make([]func(Context), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Context{})
	}
	return nil
}

// Subscribe registers a callback invoked after every applied change. The
// returned function cancels the subscription.
func (s *Store) Subscribe(fn func(Context)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
