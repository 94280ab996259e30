// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toResourceResponse(r *model.Resource) models.ResourceResponse {
	return models.ResourceResponse{
		ID: r.ID, RealmID: r.RealmID, ResourceName: r.ResourceName,
		AllowableActions: r.AllowableActions, CreatedAt: r.CreatedAt,
	}
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req models.CreateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.resources.Create(r.Context(), &model.Resource{
		RealmID: r.PathValue("realm"), ResourceName: req.ResourceName, AllowableActions: req.AllowableActions,
	}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created resource", map[string]any{"resource_id": created.ID})
	writeSuccess(w, http.StatusCreated, toResourceResponse(created))
}

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resources.ListByRealm(r.Context(), r.PathValue("realm"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.ResourceResponse, 0, len(resources))
	for _, res := range resources {
		out = append(out, toResourceResponse(&res))
	}
	writeList(w, out)
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.resources.Get(r.Context(), r.PathValue("realm"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toResourceResponse(res))
}

func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.resources.Update(r.Context(), r.PathValue("realm"), r.PathValue("id"), req.AllowableActions, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated resource", map[string]any{"resource_id": updated.ID})
	writeSuccess(w, http.StatusOK, toResourceResponse(updated))
}

func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	resourceID := r.PathValue("id")
	if err := h.resources.Delete(r.Context(), r.PathValue("realm"), resourceID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "deleted resource", map[string]any{"resource_id": resourceID})
	w.WriteHeader(http.StatusNoContent)
}
