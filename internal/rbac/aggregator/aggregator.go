// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package aggregator hydrates a principal: resolves role inheritance, walks
// group memberships, and collects the set of claim grants applicable to the
// principal under a realm.
package aggregator

import (
	"context"
	"time"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/store"
)

// Aggregator hydrates principals per the eight-step resolution procedure.
type Aggregator struct {
	principals *store.PrincipalRepository
	roles      *store.RoleRepository
	roleGrants *store.RoleRoleableRepository
	claims     *store.ClaimRepository
	claimGrants *store.ClaimClaimableRepository
	licenses   *store.LicensePolicyRepository
	resources  *store.ResourceRepository
	audit      *audit.Writer

	// now is substitutable in tests; defaults to time.Now().UTC.
	now func() time.Time
}

func New(
	principals *store.PrincipalRepository,
	roles *store.RoleRepository,
	roleGrants *store.RoleRoleableRepository,
	claims *store.ClaimRepository,
	claimGrants *store.ClaimClaimableRepository,
	licenses *store.LicensePolicyRepository,
	resources *store.ResourceRepository,
	auditWriter *audit.Writer,
) *Aggregator {
	return &Aggregator{
		principals:  principals,
		roles:       roles,
		roleGrants:  roleGrants,
		claims:      claims,
		claimGrants: claimGrants,
		licenses:    licenses,
		resources:   resources,
		audit:       auditWriter,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Hydrate resolves realmID/principalID into a HydratedPrincipal.
func (a *Aggregator) Hydrate(ctx context.Context, sec model.SecurityContext, realmID, principalID string) (*model.HydratedPrincipal, error) {
	now := a.now()

	// Step 1: load the principal.
	principal, err := a.principals.Get(ctx, principalID)
	if err != nil {
		return nil, err
	}

	// Step 2: all roles of the principal's organization.
	orgRoles, err := a.roles.ByOrganization(ctx, principal.OrganizationID)
	if err != nil {
		return nil, err
	}

	hydrated := &model.HydratedPrincipal{
		Principal:      *principal,
		RoleIDs:        map[string]struct{}{},
		GroupIDs:       map[string]struct{}{},
		Resources:      map[string]model.Resource{},
		OrgClaimScopes: map[string]struct{}{},
	}

	// Step 3: direct role grants to the principal, with ancestor walk.
	directGrants, err := a.roleGrants.ActiveByRoleable(ctx, principal.ID, model.RoleablePrincipal, now)
	if err != nil {
		return nil, err
	}
	for _, grant := range directGrants {
		a.addRoleWithAncestors(ctx, sec, grant.RoleID, orgRoles, hydrated)
	}

	// Step 4: group memberships, and roles granted to those groups.
	groupIDs, err := a.principals.GroupIDsForPrincipal(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	for _, groupID := range groupIDs {
		hydrated.GroupIDs[groupID] = struct{}{}
		groupGrants, err := a.roleGrants.ActiveByRoleable(ctx, groupID, model.RoleableGroup, now)
		if err != nil {
			return nil, err
		}
		for _, grant := range groupGrants {
			a.addRoleWithAncestors(ctx, sec, grant.RoleID, orgRoles, hydrated)
		}
	}

	// Step 5: org claim/license layer.
	orgClaims, err := a.buildOrgClaims(ctx, sec, realmID, principal.OrganizationID, now)
	if err != nil {
		return nil, err
	}

	// Step 6: derive claim_id_scopes and claims_by_id.
	claimIDScopes := map[[2]string]struct{}{}
	claimsByID := map[string]model.Claim{}
	for _, oc := range orgClaims {
		claimsByID[oc.Claim.ID] = oc.Claim
		if oc.Kind == model.ClaimableSourceRealm {
			hydrated.AmbientRealm = true
		}
		if oc.Scope != "" || oc.Constraints != "" {
			claimIDScopes[[2]string{oc.Claim.ID, oc.Scope}] = struct{}{}
			hydrated.OrgClaimScopes[oc.Scope] = struct{}{}
		}
	}

	// Step 7: claim grants to each resolved role.
	for roleID := range hydrated.RoleIDs {
		grants, err := a.claimGrants.ActiveByClaimable(ctx, roleID, model.ClaimableRole, now)
		if err != nil {
			return nil, err
		}
		for _, grant := range grants {
			a.addClaimGrant(ctx, sec, grant, claimsByID, claimIDScopes, model.ClaimableSourceRole, roleID, hydrated, realmID)
		}
	}

	// Step 8: claim grants directly to the principal.
	directClaimGrants, err := a.claimGrants.ActiveByClaimable(ctx, principal.ID, model.ClaimablePrincipal, now)
	if err != nil {
		return nil, err
	}
	for _, grant := range directClaimGrants {
		a.addClaimGrant(ctx, sec, grant, claimsByID, claimIDScopes, model.ClaimableSourcePrincipal, "", hydrated, realmID)
	}

	return hydrated, nil
}

// addRoleWithAncestors adds roleID to hydrated and recurses through
// parent_id, guarded by hydrated.RoleIDs itself as the visited set so
// cyclic graphs terminate instead of looping forever.
func (a *Aggregator) addRoleWithAncestors(ctx context.Context, sec model.SecurityContext, roleID string, orgRoles map[string]model.Role, hydrated *model.HydratedPrincipal) {
	if _, seen := hydrated.RoleIDs[roleID]; seen {
		return
	}
	role, ok := orgRoles[roleID]
	if !ok {
		a.audit.Warn(ctx, sec, "skipped dangling role reference", map[string]any{"role_id": roleID})
		return
	}
	hydrated.RoleIDs[roleID] = struct{}{}
	if role.ParentID != nil && *role.ParentID != "" {
		a.addRoleWithAncestors(ctx, sec, *role.ParentID, orgRoles, hydrated)
	}
}

// buildOrgClaims implements step 5: the license-gated (or realm-ambient)
// org claim layer.
func (a *Aggregator) buildOrgClaims(ctx context.Context, sec model.SecurityContext, realmID, organizationID string, now time.Time) ([]model.ResolvedClaim, error) {
	policy, err := a.licenses.ActiveForOrganization(ctx, organizationID, now)
	if err == nil {
		grants, err := a.claimGrants.ActiveByClaimable(ctx, policy.ID, model.ClaimableLicensePolicy, now)
		if err != nil {
			return nil, err
		}
		claimIDs := make([]string, 0, len(grants))
		for _, g := range grants {
			claimIDs = append(claimIDs, g.ClaimID)
		}
		claimsByID, err := a.claims.ByIDs(ctx, claimIDs)
		if err != nil {
			return nil, err
		}
		out := make([]model.ResolvedClaim, 0, len(grants))
		for _, g := range grants {
			claim, ok := claimsByID[g.ClaimID]
			if !ok {
				a.audit.Warn(ctx, sec, "skipped dangling claim reference on license policy", map[string]any{"claim_id": g.ClaimID})
				continue
			}
			out = append(out, model.ResolvedClaim{
				Kind:        model.ClaimableSourceLicensePolicy,
				Claim:       claim,
				ClaimableID: policy.ID,
				Scope:       g.Scope,
				Constraints: g.Constraints,
			})
		}
		return out, nil
	}
	if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}

	// No license policy configured: realm claims are ambiently available.
	realmClaims, err := a.claims.ByRealm(ctx, realmID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ResolvedClaim, 0, len(realmClaims))
	for _, claim := range realmClaims {
		out = append(out, model.ResolvedClaim{
			Kind:        model.ClaimableSourceRealm,
			Claim:       claim,
			ClaimableID: realmID,
		})
	}
	return out, nil
}

// addClaimGrant implements the shared body of steps 7/8: validate the grant
// against claims_by_id and, when claim_id_scopes is non-empty, against the
// license envelope, then add it to the hydrated principal.
func (a *Aggregator) addClaimGrant(
	ctx context.Context, sec model.SecurityContext,
	grant model.ClaimClaimable,
	claimsByID map[string]model.Claim,
	claimIDScopes map[[2]string]struct{},
	source model.ClaimableSource,
	roleID string,
	hydrated *model.HydratedPrincipal,
	realmID string,
) {
	claim, ok := claimsByID[grant.ClaimID]
	if !ok {
		a.audit.Warn(ctx, sec, "skipped dangling claim reference", map[string]any{"claim_id": grant.ClaimID})
		return
	}

	if len(claimIDScopes) > 0 && (grant.Scope != "" || grant.Constraints != "") {
		if _, inEnvelope := claimIDScopes[[2]string{grant.ClaimID, grant.Scope}]; !inEnvelope {
			a.audit.Warn(ctx, sec, "skipped grant exceeding license envelope", map[string]any{
				"claim_id": grant.ClaimID, "scope": grant.Scope,
			})
			return
		}
	}

	resolved := model.ResolvedClaim{
		Kind:        source,
		Claim:       claim,
		ClaimableID: grant.ClaimableID,
		RoleID:      roleID,
		Scope:       grant.Scope,
		Constraints: grant.Constraints,
	}
	hydrated.Claims = append(hydrated.Claims, resolved)

	if _, ok := hydrated.Resources[claim.ResourceID]; !ok {
		if res, err := a.resources.Get(ctx, realmID, claim.ResourceID); err == nil {
			hydrated.Resources[claim.ResourceID] = *res
		}
	}
}
