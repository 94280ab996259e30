// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toRealmResponse(r *model.Realm) models.RealmResponse {
	return models.RealmResponse{ID: r.ID, CreatedAt: r.CreatedAt}
}

func (h *Handler) CreateRealm(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRealmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.realms.Create(r.Context(), &model.Realm{ID: req.ID}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created realm", map[string]any{"realm_id": created.ID})
	writeSuccess(w, http.StatusCreated, toRealmResponse(created))
}

func (h *Handler) ListRealms(w http.ResponseWriter, r *http.Request) {
	realms, err := h.realms.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.RealmResponse, 0, len(realms))
	for _, re := range realms {
		out = append(out, toRealmResponse(&re))
	}
	writeList(w, out)
}

func (h *Handler) GetRealm(w http.ResponseWriter, r *http.Request) {
	realm, err := h.realms.Get(r.Context(), r.PathValue("realm"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toRealmResponse(realm))
}

func (h *Handler) UpdateRealm(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRealmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.realms.Update(r.Context(), r.PathValue("realm"), req.Description, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated realm", map[string]any{"realm_id": updated.ID})
	writeSuccess(w, http.StatusOK, toRealmResponse(updated))
}

func (h *Handler) DeleteRealm(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	realmID := r.PathValue("realm")
	if err := h.realms.Delete(r.Context(), realmID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "deleted realm", map[string]any{"realm_id": realmID})
	w.WriteHeader(http.StatusNoContent)
}
