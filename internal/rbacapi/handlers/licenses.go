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

func toLicensePolicyResponse(p *model.LicensePolicy) models.LicensePolicyResponse {
	return models.LicensePolicyResponse{
		ID: p.ID, OrganizationID: p.OrganizationID, Name: p.Name,
		EffectiveAt: p.EffectiveAt, ExpiredAt: p.ExpiredAt,
	}
}

func (h *Handler) CreateLicensePolicy(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLicensePolicyRequest
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
	created, err := h.licenses.Create(r.Context(), &model.LicensePolicy{
		OrganizationID: r.PathValue("org"), Name: req.Name,
		EffectiveAt: effectiveAt, ExpiredAt: expiredAt,
	}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created license policy", map[string]any{"license_policy_id": created.ID})
	writeSuccess(w, http.StatusCreated, toLicensePolicyResponse(created))
}

func (h *Handler) GetLicensePolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.licenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toLicensePolicyResponse(policy))
}

func (h *Handler) UpdateLicensePolicy(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateLicensePolicyRequest
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
	updated, err := h.licenses.Update(r.Context(), r.PathValue("id"), req.Name, effectiveAt, expiredAt, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated license policy", map[string]any{"license_policy_id": updated.ID})
	writeSuccess(w, http.StatusOK, toLicensePolicyResponse(updated))
}

func (h *Handler) DeleteLicensePolicy(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	policyID := r.PathValue("id")
	if err := h.licenses.Delete(r.Context(), policyID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "deleted license policy", map[string]any{"license_policy_id": policyID})
	w.WriteHeader(http.StatusNoContent)
}
