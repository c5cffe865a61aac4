package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"obracore/internal/core"
	"obracore/pkg/domain"
)

// crudOps binds one REST resource to its service methods. Resources that
// cannot be deleted or patched leave the corresponding op nil and the verb
// answers 405.
type crudOps[T any] struct {
	list   func(context.Context) ([]T, error)
	create func(context.Context, T) (T, core.Result, error)
	get    func(context.Context, string) (T, error)
	update func(context.Context, string, func(*T) error) (T, core.Result, error)
	delete func(context.Context, string) (core.Result, error)
	base   func(*T) *domain.Base
}

// serveResource dispatches collection and item verbs for one resource.
func serveResource[T any](w http.ResponseWriter, r *http.Request, id string, ops crudOps[T]) {
	ctx := r.Context()
	switch {
	case id == "" && r.Method == http.MethodGet:
		items, err := ops.list(ctx)
		if err != nil {
			writeReadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": items})
	case id == "" && r.Method == http.MethodPost:
		var payload T
		if !decodeBody(w, r, &payload) {
			return
		}
		created, res, err := ops.create(ctx, payload)
		if err != nil {
			writeMutationError(w, err)
			return
		}
		respondResult(w, http.StatusCreated, created, res)
	case id != "" && r.Method == http.MethodGet:
		if ops.get == nil {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		item, err := ops.get(ctx, id)
		if err != nil {
			writeReadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": item})
	case id != "" && r.Method == http.MethodPatch:
		if ops.update == nil {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		patchResource(w, r, id, ops)
	case id != "" && r.Method == http.MethodDelete:
		if ops.delete == nil {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		res, err := ops.delete(ctx, id)
		if err != nil {
			writeMutationError(w, err)
			return
		}
		payload := map[string]any{"deleted": id}
		if len(res.Violations) > 0 {
			payload["violations"] = res.Violations
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// patchResource merges the request body over the stored record inside the
// update transaction. Identity and timestamps cannot be overwritten.
func patchResource[T any](w http.ResponseWriter, r *http.Request, id string, ops crudOps[T]) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}
	updated, res, err := ops.update(r.Context(), id, func(item *T) error {
		preserved := *ops.base(item)
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(item); err != nil {
			return err
		}
		*ops.base(item) = preserved
		return nil
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	respondResult(w, http.StatusOK, updated, res)
}
