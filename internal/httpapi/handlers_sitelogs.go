package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"obracore/internal/core"
	"obracore/pkg/domain"
)

func (h *Handler) handleSiteLogs(w http.ResponseWriter, r *http.Request, id string) {
	if id == "bundle" {
		h.handleSiteLogBundle(w, r)
		return
	}
	if id == "" && r.Method == http.MethodGet {
		if projectID := r.URL.Query().Get("project_id"); projectID != "" {
			logs, err := h.svc.ListSiteLogsByProject(r.Context(), projectID)
			if err != nil {
				writeReadError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": logs})
			return
		}
	}
	serveResource(w, r, id, crudOps[core.SiteLog]{
		list:   h.svc.ListSiteLogs,
		create: h.svc.CreateSiteLog,
		get:    h.svc.GetSiteLog,
		update: h.svc.UpdateSiteLog,
		delete: h.svc.DeleteSiteLog,
		base:   func(l *core.SiteLog) *domain.Base { return &l.Base },
	})
}

// handleSiteLogBundle runs the multi-step site log creation. File payloads
// arrive base64-encoded in the JSON body.
func (h *Handler) handleSiteLogBundle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var input core.SiteLogBundleInput
	if !decodeBody(w, r, &input) {
		return
	}
	bundle, err := h.svc.CreateSiteLogBundle(r.Context(), input)
	if err != nil {
		var inFlight core.ErrBundleInFlight
		if errors.As(err, &inFlight) {
			writeError(w, http.StatusConflict, inFlight.Error())
			return
		}
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": bundle})
}

func (h *Handler) handleSiteLogTasks(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.SiteLogTask]{
		list:   h.svc.ListSiteLogTasks,
		create: h.svc.CreateSiteLogTask,
		update: h.svc.UpdateSiteLogTask,
		delete: h.svc.DeleteSiteLogTask,
		base:   func(t *core.SiteLogTask) *domain.Base { return &t.Base },
	})
}

func (h *Handler) handleSiteLogAttendees(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.SiteLogAttendee]{
		list:   h.svc.ListSiteLogAttendees,
		create: h.svc.CreateSiteLogAttendee,
		update: h.svc.UpdateSiteLogAttendee,
		delete: h.svc.DeleteSiteLogAttendee,
		base:   func(a *core.SiteLogAttendee) *domain.Base { return &a.Base },
	})
}

func (h *Handler) handleSiteLogFiles(w http.ResponseWriter, r *http.Request, id, action string) {
	switch {
	case action == "content" && r.Method == http.MethodGet:
		file, content, err := h.svc.OpenSiteLogFile(r.Context(), id)
		if err != nil {
			writeReadError(w, err)
			return
		}
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	case action != "":
		http.NotFound(w, r)
	default:
		serveResource(w, r, id, crudOps[core.SiteLogFile]{
			list:   h.svc.ListSiteLogFiles,
			create: h.svc.CreateSiteLogFile,
			delete: h.svc.DeleteSiteLogFile,
			base:   func(f *core.SiteLogFile) *domain.Base { return &f.Base },
		})
	}
}
