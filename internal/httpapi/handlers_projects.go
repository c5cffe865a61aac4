package httpapi

import (
	"net/http"

	"obracore/internal/core"
	"obracore/pkg/domain"
)

func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request, id, action string) {
	switch action {
	case "":
		if id == "" && r.Method == http.MethodGet {
			query := r.URL.Query()
			if query.Get("view") == "expanded" {
				views, err := h.svc.ListProjectViews(r.Context())
				if err != nil {
					writeReadError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"data": views})
				return
			}
			if orgID := query.Get("organization_id"); orgID != "" {
				projects, err := h.svc.ListProjectsByOrganization(r.Context(), orgID)
				if err != nil {
					writeReadError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"data": projects})
				return
			}
		}
		serveResource(w, r, id, crudOps[core.Project]{
			list:   h.svc.ListProjects,
			create: h.svc.CreateProject,
			get:    h.svc.GetProject,
			update: h.svc.UpdateProject,
			delete: h.svc.DeleteProject,
			base:   func(p *core.Project) *domain.Base { return &p.Base },
		})
	case "stats":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		stats, err := h.svc.ProjectStatsFor(r.Context(), id)
		if err != nil {
			writeReadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": stats})
	case "owner":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			UserID string `json:"user_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		project, res, err := h.svc.AssignProjectOwner(r.Context(), id, body.UserID)
		if err != nil {
			writeMutationError(w, err)
			return
		}
		respondResult(w, http.StatusOK, project, res)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleBudgets(w http.ResponseWriter, r *http.Request, id, action string) {
	switch action {
	case "":
	case "move":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			ProjectID string `json:"project_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		budget, res, err := h.svc.MoveBudget(r.Context(), id, body.ProjectID)
		if err != nil {
			writeMutationError(w, err)
			return
		}
		respondResult(w, http.StatusOK, budget, res)
		return
	default:
		http.NotFound(w, r)
		return
	}
	if id == "" && r.Method == http.MethodGet {
		if projectID := r.URL.Query().Get("project_id"); projectID != "" {
			budgets, err := h.svc.ListBudgetsByProject(r.Context(), projectID)
			if err != nil {
				writeReadError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": budgets})
			return
		}
	}
	serveResource(w, r, id, crudOps[core.Budget]{
		list:   h.svc.ListBudgets,
		create: h.svc.CreateBudget,
		get:    h.svc.GetBudget,
		update: h.svc.UpdateBudget,
		delete: h.svc.DeleteBudget,
		base:   func(b *core.Budget) *domain.Base { return &b.Base },
	})
}

func (h *Handler) handleBudgetTasks(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" && r.Method == http.MethodGet {
		if budgetID := r.URL.Query().Get("budget_id"); budgetID != "" {
			lines, err := h.svc.ListBudgetTasksByBudget(r.Context(), budgetID)
			if err != nil {
				writeReadError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": lines})
			return
		}
	}
	serveResource(w, r, id, crudOps[core.BudgetTask]{
		list:   h.svc.ListBudgetTasks,
		create: h.svc.CreateBudgetTask,
		get:    h.svc.GetBudgetTask,
		update: h.svc.UpdateBudgetTask,
		delete: h.svc.DeleteBudgetTask,
		base:   func(bt *core.BudgetTask) *domain.Base { return &bt.Base },
	})
}
