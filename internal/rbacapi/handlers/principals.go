// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toPrincipalResponse(p *model.Principal) models.PrincipalResponse {
	return models.PrincipalResponse{
		ID: p.ID, OrganizationID: p.OrganizationID, Username: p.Username, CreatedAt: p.CreatedAt,
	}
}

func (h *Handler) CreatePrincipal(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePrincipalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.principals.Create(r.Context(), &model.Principal{
		OrganizationID: r.PathValue("org"), Username: req.Username,
	}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created principal", map[string]any{"principal_id": created.ID})
	writeSuccess(w, http.StatusCreated, toPrincipalResponse(created))
}

func (h *Handler) ListPrincipals(w http.ResponseWriter, r *http.Request) {
	principals, err := h.principals.ListByOrganization(r.Context(), r.PathValue("org"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.PrincipalResponse, 0, len(principals))
	for _, p := range principals {
		out = append(out, toPrincipalResponse(&p))
	}
	writeList(w, out)
}

func (h *Handler) GetPrincipal(w http.ResponseWriter, r *http.Request) {
	p, err := h.principals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPrincipalResponse(p))
}

func (h *Handler) UpdatePrincipal(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePrincipalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.principals.Update(r.Context(), r.PathValue("id"), req.Username, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated principal", map[string]any{"principal_id": updated.ID})
	writeSuccess(w, http.StatusOK, toPrincipalResponse(updated))
}

func (h *Handler) DeletePrincipal(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	principalID := r.PathValue("id")
	if err := h.principals.Delete(r.Context(), principalID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "deleted principal", map[string]any{"principal_id": principalID})
	w.WriteHeader(http.StatusNoContent)
}
