// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toOrganizationResponse(o *model.Organization) models.OrganizationResponse {
	return models.OrganizationResponse{ID: o.ID, Name: o.Name, CreatedAt: o.CreatedAt}
}

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.orgs.Create(r.Context(), &model.Organization{Name: req.Name}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created organization", map[string]any{"organization_id": created.ID})
	writeSuccess(w, http.StatusCreated, toOrganizationResponse(created))
}

func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrganizationResponse(&o))
	}
	writeList(w, out)
}

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.orgs.Update(r.Context(), r.PathValue("id"), req.Name, req.URL, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated organization", map[string]any{"organization_id": updated.ID})
	writeSuccess(w, http.StatusOK, toOrganizationResponse(updated))
}

func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	orgID := r.PathValue("id")
	if err := h.orgs.Delete(r.Context(), orgID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "deleted organization", map[string]any{"organization_id": orgID})
	w.WriteHeader(http.StatusNoContent)
}
