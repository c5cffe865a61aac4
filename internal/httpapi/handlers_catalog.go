package httpapi

import (
	"net/http"

	"obracore/internal/core"
	"obracore/pkg/domain"
)

func (h *Handler) handleUnits(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.Unit]{
		list:   h.svc.ListUnits,
		create: h.svc.CreateUnit,
		get:    h.svc.GetUnit,
		update: h.svc.UpdateUnit,
		delete: h.svc.DeleteUnit,
		base:   func(u *core.Unit) *domain.Base { return &u.Base },
	})
}

func (h *Handler) handleTaskCategories(w http.ResponseWriter, r *http.Request, id, action string) {
	switch action {
	case "":
		serveResource(w, r, id, crudOps[core.TaskCategory]{
			list:   h.svc.ListTaskCategories,
			create: h.svc.CreateTaskCategory,
			get:    h.svc.GetTaskCategory,
			update: h.svc.UpdateTaskCategory,
			delete: h.svc.DeleteTaskCategory,
			base:   func(c *core.TaskCategory) *domain.Base { return &c.Base },
		})
	case "move":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			ParentID *string `json:"parent_id"`
			Position int     `json:"position"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		category, res, err := h.svc.MoveTaskCategory(r.Context(), id, body.ParentID, body.Position)
		if err != nil {
			writeMutationError(w, err)
			return
		}
		respondResult(w, http.StatusOK, category, res)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleMaterials(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.Material]{
		list:   h.svc.ListMaterials,
		create: h.svc.CreateMaterial,
		get:    h.svc.GetMaterial,
		update: h.svc.UpdateMaterial,
		delete: h.svc.DeleteMaterial,
		base:   func(m *core.Material) *domain.Base { return &m.Base },
	})
}

func (h *Handler) handleTasks(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.Task]{
		list:   h.svc.ListTasks,
		create: h.svc.CreateTask,
		get:    h.svc.GetTask,
		update: h.svc.UpdateTask,
		delete: h.svc.DeleteTask,
		base:   func(t *core.Task) *domain.Base { return &t.Base },
	})
}

func (h *Handler) handleActivities(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.Activity]{
		list:   h.svc.ListActivities,
		create: h.svc.CreateActivity,
		get:    h.svc.GetActivity,
		update: h.svc.UpdateActivity,
		delete: h.svc.DeleteActivity,
		base:   func(a *core.Activity) *domain.Base { return &a.Base },
	})
}

func (h *Handler) handleActions(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.Action]{
		list:   h.svc.ListActions,
		create: h.svc.CreateAction,
		get:    h.svc.GetAction,
		update: h.svc.UpdateAction,
		delete: h.svc.DeleteAction,
		base:   func(a *core.Action) *domain.Base { return &a.Base },
	})
}
