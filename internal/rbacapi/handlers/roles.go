// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toRoleResponse(ro *model.Role) models.RoleResponse {
	return models.RoleResponse{
		ID: ro.ID, RealmID: ro.RealmID, OrganizationID: ro.OrganizationID,
		Name: ro.Name, ParentID: ro.ParentID, CreatedAt: ro.CreatedAt,
	}
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.roles.Create(r.Context(), &model.Role{
		RealmID: r.PathValue("realm"), OrganizationID: r.PathValue("org"),
		Name: req.Name, ParentID: req.ParentID,
	}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created role", map[string]any{"role_id": created.ID})
	writeSuccess(w, http.StatusCreated, toRoleResponse(created))
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.ByOrganization(r.Context(), r.PathValue("org"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.RoleResponse, 0, len(roles))
	for _, ro := range roles {
		out = append(out, toRoleResponse(&ro))
	}
	writeList(w, out)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.roles.Update(r.Context(), r.PathValue("role"), req.Name, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated role", map[string]any{"role_id": updated.ID})
	writeSuccess(w, http.StatusOK, toRoleResponse(updated))
}

func (h *Handler) GrantRoleToPrincipal(w http.ResponseWriter, r *http.Request) {
	var req models.GrantClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	effectiveAt, expiredAt, err := parseGrantTimes(req)
	if err != nil {
		writeError(w, err)
		return
	}
	roleID, principalID := r.PathValue("role"), r.PathValue("principal")
	row := &model.RoleRoleable{
		RoleID: roleID, RoleableID: principalID, RoleableType: model.RoleablePrincipal,
		Constraints: req.Constraints, EffectiveAt: effectiveAt, ExpiredAt: expiredAt,
	}
	if err := h.roleGrants.Grant(r.Context(), row); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "granted role", map[string]any{
		"role_id": roleID, "principal_id": principalID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RevokeRoleFromPrincipal(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	roleID, principalID := r.PathValue("role"), r.PathValue("principal")
	if err := h.roleGrants.Revoke(r.Context(), roleID, principalID, model.RoleablePrincipal); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "revoked role", map[string]any{
		"role_id": roleID, "principal_id": principalID,
	})
	w.WriteHeader(http.StatusNoContent)
}
