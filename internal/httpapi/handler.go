// Package httpapi exposes the REST surface over the core service: CRUD per
// entity under /api/v1, the site-log bundle endpoint, stats and activity
// feeds, health, and Prometheus metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"obracore/internal/core"
	"obracore/pkg/domain"
)

const apiPrefix = "/api/v1"

// Handler routes REST requests to the core service.
type Handler struct {
	svc     *core.Service
	auth    *Authenticator
	metrics http.Handler
}

// Option customizes the handler.
type Option func(*Handler)

// WithAuthenticator enables bearer-token verification.
func WithAuthenticator(auth *Authenticator) Option {
	return func(h *Handler) { h.auth = auth }
}

// WithMetricsHandler mounts the given handler at /metrics.
func WithMetricsHandler(metrics http.Handler) Option {
	return func(h *Handler) { h.metrics = metrics }
}

// NewHandler constructs the API handler.
func NewHandler(svc *core.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/healthz" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	case path == "/metrics":
		if h.metrics == nil {
			http.NotFound(w, r)
			return
		}
		h.metrics.ServeHTTP(w, r)
		return
	}

	if h.auth != nil {
		authed, ok := h.auth.authorize(w, r)
		if !ok {
			return
		}
		r = authed
	}

	if !strings.HasPrefix(path, apiPrefix) {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(path, apiPrefix), "/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	segments := strings.Split(rest, "/")
	resource := segments[0]
	var id, action string
	if len(segments) > 1 {
		id = segments[1]
	}
	if len(segments) > 2 {
		action = segments[2]
	}
	if len(segments) > 3 {
		http.NotFound(w, r)
		return
	}

	switch resource {
	case "recent-activities":
		h.handleRecentActivities(w, r)
	case "plans":
		h.handlePlans(w, r, id)
	case "users":
		h.handleUsers(w, r, id)
	case "organizations":
		h.handleOrganizations(w, r, id, action)
	case "wallets":
		h.handleWallets(w, r, id)
	case "projects":
		h.handleProjects(w, r, id, action)
	case "budgets":
		h.handleBudgets(w, r, id, action)
	case "budget-tasks":
		h.handleBudgetTasks(w, r, id)
	case "site-logs":
		h.handleSiteLogs(w, r, id)
	case "site-log-tasks":
		h.handleSiteLogTasks(w, r, id)
	case "site-log-attendees":
		h.handleSiteLogAttendees(w, r, id)
	case "site-log-files":
		h.handleSiteLogFiles(w, r, id, action)
	case "movements":
		h.handleMovements(w, r, id)
	case "calendar-events":
		h.handleCalendarEvents(w, r, id)
	case "contacts":
		h.handleContacts(w, r, id, action)
	case "units":
		h.handleUnits(w, r, id)
	case "task-categories":
		h.handleTaskCategories(w, r, id, action)
	case "materials":
		h.handleMaterials(w, r, id)
	case "tasks":
		h.handleTasks(w, r, id)
	case "activities":
		h.handleActivities(w, r, id)
	case "actions":
		h.handleActions(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleRecentActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": h.svc.RecentActivities(limit)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// decodeBody rejects unknown fields so client typos surface as 400s.
func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeMutationError maps service errors: 404 for unknown ids, 409 for
// blocking rule violations, 400 for validation failures.
func writeMutationError(w http.ResponseWriter, err error) {
	var notFound core.ErrNotFound
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}
	var ruleErr domain.RuleViolationError
	if errors.As(err, &ruleErr) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      ruleErr.Error(),
			"violations": ruleErr.Result.Violations,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeReadError(w http.ResponseWriter, err error) {
	var notFound core.ErrNotFound
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// respondResult emits the entity plus any non-blocking rule violations.
func respondResult(w http.ResponseWriter, status int, entity any, res domain.Result) {
	payload := map[string]any{"data": entity}
	if len(res.Violations) > 0 {
		payload["violations"] = res.Violations
	}
	writeJSON(w, status, payload)
}
