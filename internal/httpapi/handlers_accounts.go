package httpapi

import (
	"net/http"

	"obracore/internal/core"
	"obracore/pkg/domain"
)

func (h *Handler) handlePlans(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.Plan]{
		list:   h.svc.ListPlans,
		create: h.svc.CreatePlan,
		get:    h.svc.GetPlan,
		update: h.svc.UpdatePlan,
		delete: h.svc.DeletePlan,
		base:   func(p *core.Plan) *domain.Base { return &p.Base },
	})
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.User]{
		list:   h.svc.ListUsers,
		create: h.svc.CreateUser,
		get:    h.svc.GetUser,
		update: h.svc.UpdateUser,
		delete: h.svc.DeleteUser,
		base:   func(u *core.User) *domain.Base { return &u.Base },
	})
}

func (h *Handler) handleOrganizations(w http.ResponseWriter, r *http.Request, id, action string) {
	switch action {
	case "":
		if id == "" && r.Method == http.MethodGet && r.URL.Query().Get("view") == "expanded" {
			views, err := h.svc.ListOrganizationViews(r.Context())
			if err != nil {
				writeReadError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": views})
			return
		}
		serveResource(w, r, id, crudOps[core.Organization]{
			list:   h.svc.ListOrganizations,
			create: h.svc.CreateOrganization,
			get:    h.svc.GetOrganization,
			update: h.svc.UpdateOrganization,
			delete: h.svc.DeleteOrganization,
			base:   func(o *core.Organization) *domain.Base { return &o.Base },
		})
	case "stats":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		stats, err := h.svc.OrganizationStatsFor(r.Context(), id)
		if err != nil {
			writeReadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": stats})
	case "wallets":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			WalletID string `json:"wallet_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		org, res, err := h.svc.AttachWallet(r.Context(), id, body.WalletID)
		if err != nil {
			writeMutationError(w, err)
			return
		}
		respondResult(w, http.StatusOK, org, res)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleWallets(w http.ResponseWriter, r *http.Request, id string) {
	serveResource(w, r, id, crudOps[core.Wallet]{
		list:   h.svc.ListWallets,
		create: h.svc.CreateWallet,
		get:    h.svc.GetWallet,
		update: h.svc.UpdateWallet,
		delete: h.svc.DeleteWallet,
		base:   func(wl *core.Wallet) *domain.Base { return &wl.Base },
	})
}
