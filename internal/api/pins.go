package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/docservice"
)

// ListPins handles GET /api/pins.
//
//	@Summary		List saved pins, optionally filtered by state
//	@Tags			pins
//	@Produce		json
//	@Param			state	query		string	false	"Filter by state"	Enums(ok, relocated, lost)
//	@Success		200		{object}	PinListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pins [get]
func (h *Handler) ListPins(w http.ResponseWriter, r *http.Request) {
	pins, err := h.svc.ListPins(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, "list pins", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pins": pins,
	})
}

// CreatePin handles POST /api/pins.
//
//	@Summary		Pin a line by number or by display text
//	@Tags			pins
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PinRequest	true	"Document path plus a line number or display text"
//	@Success		201		{object}	models.Pin
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pins [post]
func (h *Handler) CreatePin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req docservice.PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	pin, err := h.svc.CreatePin(r.Context(), req)
	if err != nil {
		writeError(w, "create pin", err)
		return
	}
	writeJSON(w, http.StatusCreated, pin)
}

// DeletePin handles DELETE /api/pins/{id}.
//
//	@Summary		Delete a pin
//	@Tags			pins
//	@Param			id	path	string	true	"Pin ID"
//	@Success		204	"Pin deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pins/{id} [delete]
func (h *Handler) DeletePin(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePin(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete pin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolvePin handles POST /api/pins/{id}/resolve.
//
//	@Summary		Re-resolve a pin against the current document
//	@Tags			pins
//	@Produce		json
//	@Param			id	path		string	true	"Pin ID"
//	@Success		200	{object}	PinResolution
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pins/{id}/resolve [post]
func (h *Handler) ResolvePin(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ResolvePin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "resolve pin", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ResolveAnchor handles POST /api/resolve.
//
//	@Summary		Resolve an ad-hoc anchor without storing a pin
//	@Tags			pins
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Anchor	true	"Anchor to resolve"
//	@Success		200		{object}	AnchorResolution
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [post]
func (h *Handler) ResolveAnchor(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var a anchor.Anchor
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.ResolveAnchor(r.Context(), a)
	if err != nil {
		writeError(w, "resolve anchor", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
