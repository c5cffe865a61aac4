// Package navigation tracks which section and view the client is showing.
// Mutations arrive as typed messages on a single dispatcher goroutine, so
// section and view always change together and rapid-fire navigations
// coalesce to the last one.
package navigation

import (
	"context"
	"sync"
)

// Section is a top-level area of the application.
type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionProjects  Section = "projects"
	SectionFinance   Section = "finance"
	SectionCalendar  Section = "calendar"
	SectionContacts  Section = "contacts"
	SectionAdmin     Section = "admin"
)

// State is the current navigation position.
type State struct {
	Section Section
	View    string
}

// Store holds the navigation state. Only the dispatcher mutates it.
type Store struct {
	mu    sync.RWMutex
	state State
	subs  map[int]func(State)
	next  int
}

// NewStore starts at the dashboard.
func NewStore() *Store {
	return &Store{
		state: State{Section: SectionDashboard, View: "home"},
		subs:  make(map[int]func(State)),
	}
}

// Current returns the navigation position.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a callback for every applied navigation. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Navigate moves to a section/view pair. Section and view always change
// together; there is no way to set one without the other.
func (s *Store) Navigate(section Section, view string) {
	s.apply(State{Section: section, View: view})
}

// apply sets section and view as a pair and notifies subscribers.
func (s *Store) apply(state State) {
	s.mu.Lock()
	s.state = state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// Message is a navigation or cross-component signal consumed by the
// dispatcher.
type Message interface {
	isNavigationMessage()
}

// NavigateMsg moves to a section/view pair.
type NavigateMsg struct {
	Section Section
	View    string
}

func (NavigateMsg) isNavigationMessage() {}

// OpenCreateModalMsg asks the target section to open its create dialog.
type OpenCreateModalMsg struct {
	Section Section
	Entity  string
}

func (OpenCreateModalMsg) isNavigationMessage() {}

// Dispatcher consumes messages on one goroutine. Pending navigations
// coalesce: when several NavigateMsg queue up before the dispatcher runs,
// only the last one is applied.
type Dispatcher struct {
	store   *Store
	msgs    chan Message
	modal   func(OpenCreateModalMsg)
	done    chan struct{}
	stop    context.CancelFunc
	stopped sync.Once
}

// NewDispatcher starts the dispatch goroutine.
func NewDispatcher(store *Store, onModal func(OpenCreateModalMsg)) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		store: store,
		msgs:  make(chan Message, 64),
		modal: onModal,
		done:  make(chan struct{}),
		stop:  cancel,
	}
	go d.run(ctx)
	return d
}

// Dispatch queues a message. Blocks only when the queue is full.
func (d *Dispatcher) Dispatch(msg Message) {
	d.msgs <- msg
}

// Close stops the dispatcher after draining queued messages.
func (d *Dispatcher) Close() {
	d.stopped.Do(func() {
		d.stop()
		<-d.done
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case msg := <-d.msgs:
			d.handle(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-d.msgs:
					d.handle(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) handle(msg Message) {
	switch m := msg.(type) {
	case NavigateMsg:
		// Coalesce: drop this navigation if newer ones are already queued.
		if last, ok := d.pendingNavigate(); ok {
			m = last
		}
		d.store.Navigate(m.Section, m.View)
	case OpenCreateModalMsg:
		if d.modal != nil {
			d.modal(m)
		}
	}
}

// pendingNavigate drains queued messages, returning the newest NavigateMsg
// while re-handling any interleaved modal messages.
func (d *Dispatcher) pendingNavigate() (NavigateMsg, bool) {
	var last NavigateMsg
	found := false
	for {
		select {
		case msg := <-d.msgs:
			switch m := msg.(type) {
			case NavigateMsg:
				last = m
				found = true
			case OpenCreateModalMsg:
				if d.modal != nil {
					d.modal(m)
				}
			}
		default:
			return last, found
		}
	}
}
