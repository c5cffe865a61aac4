package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"obracore/internal/blob"
	"obracore/internal/core"
)

func newTestHandler(t *testing.T) (*Handler, *core.Service) {
	t.Helper()
	svc := core.NewInMemoryService(nil, core.WithBlobStore(blob.NewMemory()))
	return NewHandler(svc), svc
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, into); err != nil {
		t.Fatalf("decode data: %v (%s)", err, envelope.Data)
	}
}

func createViaAPI[T any](t *testing.T, h http.Handler, path string, payload any) T {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, path, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST %s: %d %s", path, rec.Code, rec.Body.String())
	}
	var created T
	decodeData(t, rec, &created)
	return created
}

func seedTenantViaAPI(t *testing.T, h http.Handler) (core.User, core.Organization) {
	t.Helper()
	user := createViaAPI[core.User](t, h, "/api/v1/users", map[string]any{
		"email":     "owner@example.com",
		"full_name": "Owner",
	})
	org := createViaAPI[core.Organization](t, h, "/api/v1/organizations", map[string]any{
		"name":     "Acme Builds",
		"owner_id": user.ID,
	})
	return user, org
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)
	_, org := seedTenantViaAPI(t, h)

	project := createViaAPI[core.Project](t, h, "/api/v1/projects", map[string]any{
		"organization_id": org.ID,
		"name":            "Riverside Tower",
	})
	if project.Status != core.ProjectStatusPlanned {
		t.Fatalf("expected default status, got %q", project.Status)
	}

	rec := doJSON(t, h, http.MethodPatch, "/api/v1/projects/"+project.ID, map[string]any{
		"name":   "Riverside Tower II",
		"status": "active",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	var patched core.Project
	decodeData(t, rec, &patched)
	if patched.Name != "Riverside Tower II" || patched.Status != core.ProjectStatusActive {
		t.Fatalf("unexpected patched project %+v", patched)
	}
	if patched.ID != project.ID || !patched.CreatedAt.Equal(project.CreatedAt) {
		t.Fatalf("patch must not rewrite identity: %+v", patched)
	}
	if patched.OrganizationID != org.ID {
		t.Fatalf("patch dropped untouched field: %+v", patched)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/projects?organization_id="+org.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list: %d", rec.Code)
	}
	var projects []core.Project
	decodeData(t, rec, &projects)
	if len(projects) != 1 || projects[0].ID != project.ID {
		t.Fatalf("unexpected filtered list %+v", projects)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/projects/"+project.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/projects/"+project.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUnknownIDReturns404AndBadBody400(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/projects/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/projects", map[string]any{
		"organization_id": "org-x",
		"name":            "Ghost",
		"bogus_field":     true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestDeleteReferencedBudgetIsRejected(t *testing.T) {
	h, _ := newTestHandler(t)
	_, org := seedTenantViaAPI(t, h)
	project := createViaAPI[core.Project](t, h, "/api/v1/projects", map[string]any{
		"organization_id": org.ID,
		"name":            "Depot",
	})
	budget := createViaAPI[core.Budget](t, h, "/api/v1/budgets", map[string]any{
		"project_id": project.ID,
		"name":       "Structure",
		"currency":   "EUR",
	})
	createViaAPI[core.BudgetTask](t, h, "/api/v1/budget-tasks", map[string]any{
		"budget_id":        budget.ID,
		"quantity":         4,
		"unit_price_cents": 1500,
	})

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/budgets/"+budget.ID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected referenced delete to fail with 400, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSiteLogBundleEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	_, org := seedTenantViaAPI(t, h)
	project := createViaAPI[core.Project](t, h, "/api/v1/projects", map[string]any{
		"organization_id": org.ID,
		"name":            "Harbor Hall",
	})
	contact := createViaAPI[core.Contact](t, h, "/api/v1/contacts", map[string]any{
		"organization_id": org.ID,
		"first_name":      "Lena",
		"last_name":       "Vogt",
	})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/site-logs/bundle", map[string]any{
		"project_id": project.ID,
		"log_date":   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		"tasks":      []map[string]any{{"progress": 0.4}},
		"attendees":  []map[string]any{{"contact_id": contact.ID}},
		"files": []map[string]any{{
			"file_name":    "pour.jpg",
			"content_type": "image/jpeg",
			"content":      []byte("jpeg-bytes"),
		}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("bundle: %d %s", rec.Code, rec.Body.String())
	}
	var bundle core.SiteLogBundle
	decodeData(t, rec, &bundle)
	if bundle.SiteLog.ProjectID != project.ID || len(bundle.Files) != 1 {
		t.Fatalf("unexpected bundle %+v", bundle)
	}

	// The stored attachment is served back verbatim.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/site-log-files/"+bundle.Files[0].ID+"/content", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("content: %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "jpeg-bytes" {
		t.Fatalf("unexpected content %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("unexpected content type %q", ct)
	}

	// A bundle referencing an unknown contact fails and leaves nothing behind.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/site-logs/bundle", map[string]any{
		"project_id": project.ID,
		"log_date":   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		"attendees":  []map[string]any{{"contact_id": "missing"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for broken bundle, got %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/site-logs?project_id="+project.ID, nil)
	var logs []core.SiteLog
	decodeData(t, rec, &logs)
	if len(logs) != 1 {
		t.Fatalf("failed bundle must not leave a site log: %+v", logs)
	}
}

func TestStatsAndActivityEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)
	_, org := seedTenantViaAPI(t, h)
	project := createViaAPI[core.Project](t, h, "/api/v1/projects", map[string]any{
		"organization_id": org.ID,
		"name":            "Quarry",
	})
	createViaAPI[core.Movement](t, h, "/api/v1/movements", map[string]any{
		"organization_id": org.ID,
		"project_id":      project.ID,
		"kind":            "income",
		"amount_cents":    250000,
		"currency":        "EUR",
		"occurred_on":     time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	})

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/projects/%s/stats", project.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
	}
	var stats core.ProjectStats
	decodeData(t, rec, &stats)
	if stats.IncomeCents != 250000 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/recent-activities?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activities: %d", rec.Code)
	}
	var feed struct {
		Activities []core.ActivityEntry `json:"activities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed.Activities) != 2 {
		t.Fatalf("expected limited feed, got %d entries", len(feed.Activities))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/recent-activities?limit=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestContactTypesAndCategoryMoveRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	_, org := seedTenantViaAPI(t, h)
	contact := createViaAPI[core.Contact](t, h, "/api/v1/contacts", map[string]any{
		"organization_id": org.ID,
		"first_name":      "Igor",
		"last_name":       "Mann",
	})

	rec := doJSON(t, h, http.MethodPut, "/api/v1/contacts/"+contact.ID+"/types", map[string]any{
		"types": []string{"supplier", "foreman"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("types: %d %s", rec.Code, rec.Body.String())
	}
	var updated core.Contact
	decodeData(t, rec, &updated)
	if len(updated.ContactTypes) != 2 {
		t.Fatalf("unexpected contact types %+v", updated.ContactTypes)
	}

	parent := createViaAPI[core.TaskCategory](t, h, "/api/v1/task-categories", map[string]any{"name": "Shell"})
	child := createViaAPI[core.TaskCategory](t, h, "/api/v1/task-categories", map[string]any{"name": "Concrete"})
	rec = doJSON(t, h, http.MethodPut, "/api/v1/task-categories/"+child.ID+"/move", map[string]any{
		"parent_id": parent.ID,
		"position":  1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: %d %s", rec.Code, rec.Body.String())
	}
	var moved core.TaskCategory
	decodeData(t, rec, &moved)
	if moved.ParentID == nil || *moved.ParentID != parent.ID || moved.Position != 1 {
		t.Fatalf("unexpected moved category %+v", moved)
	}
}

func TestHealthzAndUnknownRoutes(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/unknown-resource", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/projects/x/y/z", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deep path, got %d", rec.Code)
	}
}
