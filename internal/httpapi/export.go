package httpapi

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"obracore/internal/core"
)

// negotiateExportFormat picks csv or json from the format query parameter,
// falling back to the Accept header and defaulting to json.
func negotiateExportFormat(r *http.Request) string {
	wanted := strings.ToLower(r.URL.Query().Get("format"))
	if wanted == "" {
		if strings.Contains(r.Header.Get("Accept"), "text/csv") {
			wanted = "csv"
		} else {
			wanted = "json"
		}
	}
	switch wanted {
	case "csv", "json":
		return wanted
	}
	return ""
}

// handleMovementExport streams the movement ledger, optionally scoped to one
// organization, as a CSV or JSON download.
func (h *Handler) handleMovementExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	format := negotiateExportFormat(r)
	if format == "" {
		writeError(w, http.StatusBadRequest, "unsupported export format")
		return
	}

	views, err := h.svc.ListMovementViews(r.Context())
	if err != nil {
		writeReadError(w, err)
		return
	}
	if orgID := r.URL.Query().Get("organization_id"); orgID != "" {
		filtered := views[:0]
		for _, view := range views {
			if view.OrganizationID == orgID {
				filtered = append(filtered, view)
			}
		}
		views = filtered
	}

	if format == "json" {
		writeJSON(w, http.StatusOK, map[string]any{"data": views})
		return
	}
	streamMovementCSV(w, views)
}

func streamMovementCSV(w http.ResponseWriter, views []core.MovementView) {
	filename := fmt.Sprintf("movements-%s.csv", time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "occurred_on", "kind", "amount_cents", "currency", "project", "contact", "description"}
	if err := writer.Write(header); err != nil {
		return
	}
	for _, view := range views {
		description := ""
		if view.Description != nil {
			description = *view.Description
		}
		record := []string{
			view.ID,
			view.OccurredOn.UTC().Format("2006-01-02"),
			string(view.Kind),
			fmt.Sprintf("%d", view.AmountCents),
			view.Currency,
			view.ProjectName,
			view.ContactName,
			description,
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
}
