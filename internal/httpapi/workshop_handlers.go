package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"growiq.org/internal/audit"
	"growiq.org/internal/auth"
	"growiq.org/internal/workshop"
)

type submitWorkshopRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type rejectWorkshopRequest struct {
	Reason string `json:"reason"`
}

type listWorkshopsResponse struct {
	Items []*workshop.Workshop `json:"items"`
}

func (a *API) handleWorkshopsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.submitWorkshop(w, r)
	case http.MethodGet:
		a.listWorkshops(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWorkshopResource dispatches /v1/workshops/{id} and the approval
// actions /v1/workshops/{id}/approve and /v1/workshops/{id}/reject.
func (a *API) handleWorkshopResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/workshops/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.getWorkshop(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "approve":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.approveWorkshop(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "reject":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.rejectWorkshop(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) submitWorkshop(w http.ResponseWriter, r *http.Request) {
	user, err := a.gate.RequireUser(r)
	if err != nil {
		a.handleGateError(w, r, err)
		return
	}
	var req submitWorkshopRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ws, err := a.workshops.Submit(r.Context(), user, req.Title, req.Description)
	if err != nil {
		handleWorkshopError(w, r, err)
		return
	}
	ctx := auth.ContextWithUser(r.Context(), user)
	_ = audit.LogEvent(ctx, "workshop.submit", map[string]any{
		"workshop_id": ws.ID,
		"status":      string(ws.Status),
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/workshops/%s", ws.ID))
	writeJSON(w, http.StatusCreated, ws)
}

func (a *API) listWorkshops(w http.ResponseWriter, r *http.Request) {
	if _, err := a.gate.RequireUser(r); err != nil {
		a.handleGateError(w, r, err)
		return
	}
	status := workshop.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	items, err := a.workshops.List(r.Context(), status)
	if err != nil {
		handleWorkshopError(w, r, err)
		return
	}
	if items == nil {
		items = []*workshop.Workshop{}
	}
	writeJSON(w, http.StatusOK, listWorkshopsResponse{Items: items})
}

func (a *API) getWorkshop(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := a.gate.RequireUser(r); err != nil {
		a.handleGateError(w, r, err)
		return
	}
	ws, err := a.workshops.Get(r.Context(), id)
	if err != nil {
		handleWorkshopError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (a *API) approveWorkshop(w http.ResponseWriter, r *http.Request, id string) {
	user, err := a.gate.RequireCapability(r, auth.CapApproveWorkshops)
	if err != nil {
		a.handleGateError(w, r, err)
		return
	}
	ws, err := a.workshops.Approve(r.Context(), user, id)
	if err != nil {
		handleWorkshopError(w, r, err)
		return
	}
	ctx := auth.ContextWithUser(r.Context(), user)
	_ = audit.LogEvent(ctx, "workshop.approve", map[string]any{
		"workshop_id": ws.ID,
	})
	writeJSON(w, http.StatusOK, ws)
}

func (a *API) rejectWorkshop(w http.ResponseWriter, r *http.Request, id string) {
	user, err := a.gate.RequireCapability(r, auth.CapApproveWorkshops)
	if err != nil {
		a.handleGateError(w, r, err)
		return
	}
	var req rejectWorkshopRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ws, err := a.workshops.Reject(r.Context(), user, id, req.Reason)
	if err != nil {
		handleWorkshopError(w, r, err)
		return
	}
	ctx := auth.ContextWithUser(r.Context(), user)
	_ = audit.LogEvent(ctx, "workshop.reject", map[string]any{
		"workshop_id": ws.ID,
		"reason":      ws.RejectReason,
	})
	writeJSON(w, http.StatusOK, ws)
}

func handleWorkshopError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workshop.ErrInvalidInput), errors.Is(err, workshop.ErrReasonRequired):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, workshop.ErrAlreadyDecided):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, workshop.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
