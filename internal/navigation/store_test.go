package navigation

import (
	"sync"
	"testing"
	"time"
)

func TestNavigateUpdatesSectionAndViewTogether(t *testing.T) {
	store := NewStore()
	var mu sync.Mutex
	var seen []State
	store.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	dispatcher := NewDispatcher(store, nil)
	dispatcher.Dispatch(NavigateMsg{Section: SectionFinance, View: "movements"})
	dispatcher.Close()

	got := store.Current()
	if got.Section != SectionFinance || got.View != "movements" {
		t.Fatalf("unexpected state %+v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, s := range seen {
		if (s.Section == SectionFinance) != (s.View == "movements") {
			t.Fatalf("section and view updated separately: %+v", s)
		}
	}
}

func TestRapidNavigationsCoalesceToLast(t *testing.T) {
	store := NewStore()
	var mu sync.Mutex
	applied := 0
	store.Subscribe(func(State) {
		mu.Lock()
		applied++
		mu.Unlock()
	})

	dispatcher := NewDispatcher(store, nil)
	// Queue a burst before the dispatcher can drain it; give the first
	// message a head start so the rest coalesce behind it.
	for i, view := range []string{"list", "detail", "gantt", "budget"} {
		dispatcher.Dispatch(NavigateMsg{Section: SectionProjects, View: view})
		if i == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	dispatcher.Close()

	if got := store.Current(); got.View != "budget" {
		t.Fatalf("expected last navigation to win, got %+v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if applied > 4 {
		t.Fatalf("unexpected apply count %d", applied)
	}
}

func TestModalMessagesReachHandler(t *testing.T) {
	store := NewStore()
	var mu sync.Mutex
	var modals []OpenCreateModalMsg
	dispatcher := NewDispatcher(store, func(m OpenCreateModalMsg) {
		mu.Lock()
		modals = append(modals, m)
		mu.Unlock()
	})

	dispatcher.Dispatch(NavigateMsg{Section: SectionContacts, View: "list"})
	dispatcher.Dispatch(OpenCreateModalMsg{Section: SectionContacts, Entity: "contact"})
	dispatcher.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(modals) != 1 || modals[0].Entity != "contact" {
		t.Fatalf("unexpected modal messages %+v", modals)
	}
	if got := store.Current(); got.Section != SectionContacts {
		t.Fatalf("navigation lost around modal message: %+v", got)
	}
}
