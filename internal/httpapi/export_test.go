package httpapi

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMovementExportCSV(t *testing.T) {
	h, _ := newTestHandler(t)
	_, org := seedTenantViaAPI(t, h)
	createViaAPI[map[string]any](t, h, "/api/v1/movements", map[string]any{
		"organization_id": org.ID,
		"kind":            "expense",
		"amount_cents":    32000,
		"currency":        "EUR",
		"occurred_on":     time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
	})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/movements/export?format=csv&organization_id="+org.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[1][2] != "expense" || rows[1][3] != "32000" {
		t.Fatalf("unexpected row %v", rows[1])
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/movements/export?format=xml", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}
}
