// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"time"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toResourceInstanceResponse(i *model.ResourceInstance) models.ResourceInstanceResponse {
	return models.ResourceInstanceResponse{
		ID: i.ID, ResourceID: i.ResourceID, Scope: i.Scope, RefID: i.RefID,
		Status: string(i.Status), CreatedAt: i.CreatedAt,
	}
}

func (h *Handler) CreateResourceInstance(w http.ResponseWriter, r *http.Request) {
	var req models.CreateResourceInstanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	status := model.InstanceStatus(req.Status)
	created, err := h.enforcer.Create(r.Context(), sec, &model.ResourceInstance{
		ResourceID: r.PathValue("res"), Scope: req.Scope, RefID: req.RefID, Status: status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created resource instance", map[string]any{"instance_id": created.ID})
	writeSuccess(w, http.StatusCreated, toResourceInstanceResponse(created))
}

func (h *Handler) GetResourceInstance(w http.ResponseWriter, r *http.Request) {
	inst, err := h.instances.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toResourceInstanceResponse(inst))
}

func (h *Handler) UpdateResourceInstance(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateResourceInstanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.instances.Update(r.Context(), r.PathValue("id"), model.InstanceStatus(req.Status), sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated resource instance", map[string]any{"instance_id": updated.ID})
	writeSuccess(w, http.StatusOK, toResourceInstanceResponse(updated))
}

func toResourceQuotaResponse(q *model.ResourceQuota) models.ResourceQuotaResponse {
	return models.ResourceQuotaResponse{
		ID: q.ID, ResourceID: q.ResourceID, LicensePolicyID: q.LicensePolicyID, Scope: q.Scope,
		MaxValue: q.MaxValue, EffectiveAt: q.EffectiveAt, ExpiredAt: q.ExpiredAt,
	}
}

func (h *Handler) CreateResourceQuota(w http.ResponseWriter, r *http.Request) {
	var req models.CreateResourceQuotaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	effectiveAt, err := time.Parse(time.RFC3339, req.EffectiveAt)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Custom, "parsing effective_at", err))
		return
	}
	expiredAt, err := time.Parse(time.RFC3339, req.ExpiredAt)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Custom, "parsing expired_at", err))
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.quotas.Create(r.Context(), &model.ResourceQuota{
		ResourceID: r.PathValue("res"), LicensePolicyID: req.LicensePolicyID, Scope: req.Scope,
		MaxValue: req.MaxValue, EffectiveAt: effectiveAt, ExpiredAt: expiredAt,
	}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created resource quota", map[string]any{"quota_id": created.ID})
	writeSuccess(w, http.StatusCreated, toResourceQuotaResponse(created))
}

func (h *Handler) GetResourceQuota(w http.ResponseWriter, r *http.Request) {
	q, err := h.quotas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toResourceQuotaResponse(q))
}

func (h *Handler) UpdateResourceQuota(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateResourceQuotaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	effectiveAt, err := time.Parse(time.RFC3339, req.EffectiveAt)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Custom, "parsing effective_at", err))
		return
	}
	expiredAt, err := time.Parse(time.RFC3339, req.ExpiredAt)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Custom, "parsing expired_at", err))
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.quotas.Update(r.Context(), r.PathValue("id"), req.MaxValue, effectiveAt, expiredAt, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated resource quota", map[string]any{"quota_id": updated.ID})
	writeSuccess(w, http.StatusOK, toResourceQuotaResponse(updated))
}
