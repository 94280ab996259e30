// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toGroupResponse(g *model.Group) models.GroupResponse {
	return models.GroupResponse{
		ID: g.ID, OrganizationID: g.OrganizationID, Name: g.Name, CreatedAt: g.CreatedAt,
	}
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.groups.Create(r.Context(), &model.Group{
		OrganizationID: r.PathValue("org"), Name: req.Name,
	}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created group", map[string]any{"group_id": created.ID})
	writeSuccess(w, http.StatusCreated, toGroupResponse(created))
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ByOrganization(r.Context(), r.PathValue("org"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(&g))
	}
	writeList(w, out)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.groups.Update(r.Context(), r.PathValue("group"), req.Name, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated group", map[string]any{"group_id": updated.ID})
	writeSuccess(w, http.StatusOK, toGroupResponse(updated))
}

func (h *Handler) AddPrincipalToGroup(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	groupID, principalID := r.PathValue("group"), r.PathValue("principal")
	if err := h.groups.AddPrincipal(r.Context(), groupID, principalID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "added principal to group", map[string]any{
		"group_id": groupID, "principal_id": principalID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemovePrincipalFromGroup(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	groupID, principalID := r.PathValue("group"), r.PathValue("principal")
	if err := h.groups.RemovePrincipal(r.Context(), groupID, principalID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "removed principal from group", map[string]any{
		"group_id": groupID, "principal_id": principalID,
	})
	w.WriteHeader(http.StatusNoContent)
}
