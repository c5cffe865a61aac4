package httpapi

import (
	"net/http"

	"obracore/internal/core"
	"obracore/pkg/domain"
)

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request, id string) {
	if id == "export" {
		h.handleMovementExport(w, r)
		return
	}
	if id == "" && r.Method == http.MethodGet {
		query := r.URL.Query()
		if query.Get("view") == "expanded" {
			views, err := h.svc.ListMovementViews(r.Context())
			if err != nil {
				writeReadError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": views})
			return
		}
		if orgID := query.Get("organization_id"); orgID != "" {
			movements, err := h.svc.ListMovementsByOrganization(r.Context(), orgID)
			if err != nil {
				writeReadError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": movements})
			return
		}
	}
	serveResource(w, r, id, crudOps[core.Movement]{
		list:   h.svc.ListMovements,
		create: h.svc.CreateMovement,
		get:    h.svc.GetMovement,
		update: h.svc.UpdateMovement,
		delete: h.svc.DeleteMovement,
		base:   func(m *core.Movement) *domain.Base { return &m.Base },
	})
}

func (h *Handler) handleCalendarEvents(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.CalendarEvent]{
		list:   h.svc.ListCalendarEvents,
		create: h.svc.CreateCalendarEvent,
		get:    h.svc.GetCalendarEvent,
		update: h.svc.UpdateCalendarEvent,
		delete: h.svc.DeleteCalendarEvent,
		base:   func(e *core.CalendarEvent) *domain.Base { return &e.Base },
	})
}

func (h *Handler) handleContacts(w http.ResponseWriter, r *http.Request, id, action string) {
	switch action {
	case "":
		serveResource(w, r, id, crudOps[core.Contact]{
			list:   h.svc.ListContacts,
			create: h.svc.CreateContact,
			get:    h.svc.GetContact,
			update: h.svc.UpdateContact,
			delete: h.svc.DeleteContact,
			base:   func(c *core.Contact) *domain.Base { return &c.Base },
		})
	case "types":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			Types []string `json:"types"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		contact, res, err := h.svc.UpdateContactTypes(r.Context(), id, body.Types)
		if err != nil {
			writeMutationError(w, err)
			return
		}
		respondResult(w, http.StatusOK, contact, res)
	default:
		http.NotFound(w, r)
	}
}
