// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package handlers implements the HTTP/JSON REST surface of the RBAC
// engine: CRUD over realms, resources, claims, organizations, license
// policies, principals, groups, roles, resource instances and quotas, plus
// the GET /api/check permission-check endpoint.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/decision"
	"github.com/plexrbac/engine/internal/rbac/eval"
	"github.com/plexrbac/engine/internal/rbac/quota"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/store"
	apimiddleware "github.com/plexrbac/engine/internal/rbacapi/middleware"
	"github.com/plexrbac/engine/internal/rbacapi/models"
	"github.com/plexrbac/engine/internal/version"
	chainmw "github.com/plexrbac/engine/pkg/middleware"
)

// securityContext retrieves the SecurityContext attached by
// apimiddleware.SecurityMiddleware.
func securityContext(r *http.Request) (model.SecurityContext, error) {
	return apimiddleware.FromContext(r.Context())
}

// Handler holds every repository and engine the HTTP surface dispatches to.
type Handler struct {
	realms       *store.RealmRepository
	resources    *store.ResourceRepository
	claims       *store.ClaimRepository
	claimGrants  *store.ClaimClaimableRepository
	orgs         *store.OrganizationRepository
	licenses     *store.LicensePolicyRepository
	principals   *store.PrincipalRepository
	groups       *store.GroupRepository
	roles        *store.RoleRepository
	roleGrants   *store.RoleRoleableRepository
	quotas       *store.ResourceQuotaRepository
	instances    *store.ResourceInstanceRepository
	auditRecords *store.AuditRecordRepository

	audit     *audit.Writer
	evaluator *eval.Evaluator
	engine    *decision.Engine
	enforcer  *quota.Enforcer

	logger *slog.Logger
}

// Deps bundles everything New needs to construct a Handler.
type Deps struct {
	Realms       *store.RealmRepository
	Resources    *store.ResourceRepository
	Claims       *store.ClaimRepository
	ClaimGrants  *store.ClaimClaimableRepository
	Orgs         *store.OrganizationRepository
	Licenses     *store.LicensePolicyRepository
	Principals   *store.PrincipalRepository
	Groups       *store.GroupRepository
	Roles        *store.RoleRepository
	RoleGrants   *store.RoleRoleableRepository
	Quotas       *store.ResourceQuotaRepository
	Instances    *store.ResourceInstanceRepository
	AuditRecords *store.AuditRecordRepository

	Audit     *audit.Writer
	Evaluator *eval.Evaluator
	Engine    *decision.Engine
	Enforcer  *quota.Enforcer

	Logger *slog.Logger
}

// New constructs a Handler from deps.
func New(d Deps) *Handler {
	return &Handler{
		realms:       d.Realms,
		resources:    d.Resources,
		claims:       d.Claims,
		claimGrants:  d.ClaimGrants,
		orgs:         d.Orgs,
		licenses:     d.Licenses,
		principals:   d.Principals,
		groups:       d.Groups,
		roles:        d.Roles,
		roleGrants:   d.RoleGrants,
		quotas:       d.Quotas,
		instances:    d.Instances,
		auditRecords: d.AuditRecords,
		audit:        d.Audit,
		evaluator:    d.Evaluator,
		engine:       d.Engine,
		enforcer:     d.Enforcer,
		logger:       d.Logger,
	}
}

// Routes wires every endpoint, with the security-context middleware applied
// to every route under /api.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	routes := chainmw.NewRouteBuilder(mux).With(apimiddleware.LoggerMiddleware(h.logger))

	routes.HandleFunc("GET /health", h.Health)
	routes.HandleFunc("GET /version", h.Version)

	api := routes.With(apimiddleware.SecurityMiddleware())

	api.HandleFunc("POST /api/realms", h.CreateRealm)
	api.HandleFunc("GET /api/realms", h.ListRealms)
	api.HandleFunc("GET /api/realms/{realm}", h.GetRealm)
	api.HandleFunc("PUT /api/realms/{realm}", h.UpdateRealm)
	api.HandleFunc("DELETE /api/realms/{realm}", h.DeleteRealm)

	api.HandleFunc("POST /api/realms/{realm}/resources", h.CreateResource)
	api.HandleFunc("GET /api/realms/{realm}/resources", h.ListResources)
	api.HandleFunc("GET /api/realms/{realm}/resources/{id}", h.GetResource)
	api.HandleFunc("PUT /api/realms/{realm}/resources/{id}", h.UpdateResource)
	api.HandleFunc("DELETE /api/realms/{realm}/resources/{id}", h.DeleteResource)

	api.HandleFunc("POST /api/realms/{realm}/resources/{res}/claims", h.CreateClaim)
	api.HandleFunc("GET /api/realms/{realm}/resources/{res}/claims", h.ListClaims)
	api.HandleFunc("GET /api/realms/{realm}/claims/{id}", h.GetClaim)
	api.HandleFunc("PUT /api/realms/{realm}/claims/{id}", h.UpdateClaim)
	api.HandleFunc("DELETE /api/realms/{realm}/claims/{id}", h.DeleteClaim)

	api.HandleFunc("PUT /api/claims/{claim}/principals/{principal}", h.GrantClaimToPrincipal)
	api.HandleFunc("DELETE /api/claims/{claim}/principals/{principal}", h.RevokeClaimFromPrincipal)
	api.HandleFunc("PUT /api/claims/{claim}/roles/{role}", h.GrantClaimToRole)
	api.HandleFunc("DELETE /api/claims/{claim}/roles/{role}", h.RevokeClaimFromRole)
	api.HandleFunc("PUT /api/claims/{claim}/licenses/{license}", h.GrantClaimToLicense)
	api.HandleFunc("DELETE /api/claims/{claim}/licenses/{license}", h.RevokeClaimFromLicense)

	api.HandleFunc("POST /api/realms/{realm}/resources/{res}/instances", h.CreateResourceInstance)
	api.HandleFunc("GET /api/realms/{realm}/resources/{res}/instances/{id}", h.GetResourceInstance)
	api.HandleFunc("PUT /api/realms/{realm}/resources/{res}/instances/{id}", h.UpdateResourceInstance)

	api.HandleFunc("POST /api/realms/{realm}/resources/{res}/quotas", h.CreateResourceQuota)
	api.HandleFunc("GET /api/realms/{realm}/resources/{res}/quotas/{id}", h.GetResourceQuota)
	api.HandleFunc("PUT /api/realms/{realm}/resources/{res}/quotas/{id}", h.UpdateResourceQuota)

	api.HandleFunc("POST /api/orgs", h.CreateOrganization)
	api.HandleFunc("GET /api/orgs", h.ListOrganizations)
	api.HandleFunc("GET /api/orgs/{id}", h.GetOrganization)
	api.HandleFunc("PUT /api/orgs/{id}", h.UpdateOrganization)
	api.HandleFunc("DELETE /api/orgs/{id}", h.DeleteOrganization)

	api.HandleFunc("POST /api/orgs/{org}/licenses", h.CreateLicensePolicy)
	api.HandleFunc("GET /api/orgs/{org}/licenses/{id}", h.GetLicensePolicy)
	api.HandleFunc("PUT /api/orgs/{org}/licenses/{id}", h.UpdateLicensePolicy)
	api.HandleFunc("DELETE /api/orgs/{org}/licenses/{id}", h.DeleteLicensePolicy)

	api.HandleFunc("POST /api/orgs/{org}/principals", h.CreatePrincipal)
	api.HandleFunc("GET /api/orgs/{org}/principals", h.ListPrincipals)
	api.HandleFunc("GET /api/orgs/{org}/principals/{id}", h.GetPrincipal)
	api.HandleFunc("PUT /api/orgs/{org}/principals/{id}", h.UpdatePrincipal)
	api.HandleFunc("DELETE /api/orgs/{org}/principals/{id}", h.DeletePrincipal)

	api.HandleFunc("POST /api/orgs/{org}/groups", h.CreateGroup)
	api.HandleFunc("GET /api/orgs/{org}/groups", h.ListGroups)
	api.HandleFunc("PUT /api/orgs/{org}/groups/{group}", h.UpdateGroup)
	api.HandleFunc("PUT /api/orgs/{org}/groups/{group}/principals/{principal}", h.AddPrincipalToGroup)
	api.HandleFunc("DELETE /api/orgs/{org}/groups/{group}/principals/{principal}", h.RemovePrincipalFromGroup)

	api.HandleFunc("POST /api/realms/{realm}/orgs/{org}/roles", h.CreateRole)
	api.HandleFunc("GET /api/realms/{realm}/orgs/{org}/roles", h.ListRoles)
	api.HandleFunc("PUT /api/roles/{role}", h.UpdateRole)
	api.HandleFunc("PUT /api/roles/{role}/principals/{principal}", h.GrantRoleToPrincipal)
	api.HandleFunc("DELETE /api/roles/{role}/principals/{principal}", h.RevokeRoleFromPrincipal)

	api.HandleFunc("GET /api/check", h.Check)

	return mux
}

func writeSuccess[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.SuccessResponse(data))
}

func writeList[T any](w http.ResponseWriter, items []T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(models.ListSuccessResponse(items))
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.ToHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse(err.Error(), string(apperr.KindOf(err))))
}

func decodeJSON(r *http.Request, out any) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.Custom, "decoding request body", err)
	}
	if err := models.Validate(out); err != nil {
		return apperr.Wrap(apperr.Custom, "validating request body", err)
	}
	return nil
}

// Health handles liveness checks.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Version reports build metadata.
func (h *Handler) Version(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, version.Get())
}
