// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"time"

	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

func toClaimResponse(c *model.Claim) models.ClaimResponse {
	return models.ClaimResponse{
		ID: c.ID, RealmID: c.RealmID, ResourceID: c.ResourceID,
		Action: c.Action, Effect: string(c.Effect), CreatedAt: c.CreatedAt,
	}
}

func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.claims.Create(r.Context(), &model.Claim{
		RealmID: r.PathValue("realm"), ResourceID: req.ResourceID,
		Action: req.Action, Effect: model.Effect(req.Effect),
	}, sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "created claim", map[string]any{"claim_id": created.ID})
	writeSuccess(w, http.StatusCreated, toClaimResponse(created))
}

func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claims.ByRealmAndResource(r.Context(), r.PathValue("realm"), r.PathValue("res"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.ClaimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, toClaimResponse(&c))
	}
	writeList(w, out)
}

func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	c, err := h.claims.Get(r.Context(), r.PathValue("realm"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toClaimResponse(c))
}

func (h *Handler) UpdateClaim(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.claims.Update(r.Context(), r.PathValue("realm"), r.PathValue("id"), req.Action, model.Effect(req.Effect), sec.PrincipalID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionUpdate, "updated claim", map[string]any{"claim_id": updated.ID})
	writeSuccess(w, http.StatusOK, toClaimResponse(updated))
}

func (h *Handler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	claimID := r.PathValue("id")
	if err := h.claims.Delete(r.Context(), r.PathValue("realm"), claimID); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "deleted claim", map[string]any{"claim_id": claimID})
	w.WriteHeader(http.StatusNoContent)
}

func parseGrantTimes(req models.GrantClaimRequest) (effectiveAt, expiredAt time.Time, err error) {
	if req.EffectiveAt != "" {
		if effectiveAt, err = time.Parse(time.RFC3339, req.EffectiveAt); err != nil {
			return
		}
	}
	if req.ExpiredAt != "" {
		expiredAt, err = time.Parse(time.RFC3339, req.ExpiredAt)
	}
	return
}

func (h *Handler) grantClaim(w http.ResponseWriter, r *http.Request, claimableID string, claimableType model.ClaimableType) {
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
	claimID := r.PathValue("claim")
	row := &model.ClaimClaimable{
		ClaimID: claimID, ClaimableID: claimableID, ClaimableType: claimableType,
		Scope: req.Scope, Constraints: req.Constraints, EffectiveAt: effectiveAt, ExpiredAt: expiredAt,
	}
	if err := h.claimGrants.Grant(r.Context(), row); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionCreate, "granted claim", map[string]any{
		"claim_id": claimID, "claimable_id": claimableID, "claimable_type": claimableType,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revokeClaim(w http.ResponseWriter, r *http.Request, claimableID string, claimableType model.ClaimableType) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}
	claimID := r.PathValue("claim")
	if err := h.claimGrants.Revoke(r.Context(), claimID, claimableID, claimableType); err != nil {
		writeError(w, err)
		return
	}
	h.audit.Record(r.Context(), sec, audit.ActionDelete, "revoked claim", map[string]any{
		"claim_id": claimID, "claimable_id": claimableID, "claimable_type": claimableType,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GrantClaimToPrincipal(w http.ResponseWriter, r *http.Request) {
	h.grantClaim(w, r, r.PathValue("principal"), model.ClaimablePrincipal)
}

func (h *Handler) RevokeClaimFromPrincipal(w http.ResponseWriter, r *http.Request) {
	h.revokeClaim(w, r, r.PathValue("principal"), model.ClaimablePrincipal)
}

func (h *Handler) GrantClaimToRole(w http.ResponseWriter, r *http.Request) {
	h.grantClaim(w, r, r.PathValue("role"), model.ClaimableRole)
}

func (h *Handler) RevokeClaimFromRole(w http.ResponseWriter, r *http.Request) {
	h.revokeClaim(w, r, r.PathValue("role"), model.ClaimableRole)
}

func (h *Handler) GrantClaimToLicense(w http.ResponseWriter, r *http.Request) {
	h.grantClaim(w, r, r.PathValue("license"), model.ClaimableLicensePolicy)
}

func (h *Handler) RevokeClaimFromLicense(w http.ResponseWriter, r *http.Request) {
	h.revokeClaim(w, r, r.PathValue("license"), model.ClaimableLicensePolicy)
}
