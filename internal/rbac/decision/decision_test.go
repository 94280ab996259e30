// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package decision_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plexrbac/engine/internal/rbac/aggregator"
	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/decision"
	"github.com/plexrbac/engine/internal/rbac/eval"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/store"
	"github.com/plexrbac/engine/internal/rbac/storetest"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	ctx    context.Context
	sec    model.SecurityContext
	engine *decision.Engine

	realms       *store.RealmRepository
	resources    *store.ResourceRepository
	claims       *store.ClaimRepository
	claimGrants  *store.ClaimClaimableRepository
	orgs         *store.OrganizationRepository
	licenses     *store.LicensePolicyRepository
	principals   *store.PrincipalRepository
	roles        *store.RoleRepository
	roleGrants   *store.RoleRoleableRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.NewDB(t)
	evaluator, err := eval.New()
	require.NoError(t, err)

	f := &fixture{
		ctx:         context.Background(),
		sec:         model.SecurityContext{PrincipalID: "test-actor"},
		realms:      store.NewRealmRepository(db),
		resources:   store.NewResourceRepository(db),
		claims:      store.NewClaimRepository(db),
		claimGrants: store.NewClaimClaimableRepository(db),
		orgs:        store.NewOrganizationRepository(db),
		licenses:    store.NewLicensePolicyRepository(db),
		principals:  store.NewPrincipalRepository(db),
		roles:       store.NewRoleRepository(db),
		roleGrants:  store.NewRoleRoleableRepository(db),
	}
	auditWriter := audit.New(store.NewAuditRecordRepository(db), noopLogger())
	agg := aggregator.New(f.principals, f.roles, f.roleGrants, f.claims, f.claimGrants, f.licenses, f.resources, auditWriter)
	f.engine = decision.New(agg, evaluator)
	return f
}

func TestS1_TellerReadInRegion(t *testing.T) {
	f := newFixture(t)

	_, err := f.realms.Create(f.ctx, &model.Realm{ID: "banking"}, "setup")
	require.NoError(t, err)
	org, err := f.orgs.Create(f.ctx, &model.Organization{Name: "bank-of-flakes"}, "setup")
	require.NoError(t, err)

	res, err := f.resources.Create(f.ctx, &model.Resource{RealmID: "banking", ResourceName: "DepositAccount"}, "setup")
	require.NoError(t, err)
	claim, err := f.claims.Create(f.ctx, &model.Claim{RealmID: "banking", ResourceID: res.ID, Action: "(READ|UPDATE)", Effect: model.EffectAllow}, "setup")
	require.NoError(t, err)

	employee, err := f.roles.Create(f.ctx, &model.Role{RealmID: "banking", OrganizationID: org.ID, Name: "Employee"}, "setup")
	require.NoError(t, err)
	teller, err := f.roles.Create(f.ctx, &model.Role{RealmID: "banking", OrganizationID: org.ID, Name: "Teller", ParentID: &employee.ID}, "setup")
	require.NoError(t, err)

	tom, err := f.principals.Create(f.ctx, &model.Principal{OrganizationID: org.ID, Username: "tom"}, "setup")
	require.NoError(t, err)

	require.NoError(t, f.roleGrants.Grant(f.ctx, &model.RoleRoleable{
		RoleID: teller.ID, RoleableID: tom.ID, RoleableType: model.RoleablePrincipal,
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))
	require.NoError(t, f.claimGrants.Grant(f.ctx, &model.ClaimClaimable{
		ClaimID: claim.ID, ClaimableID: teller.ID, ClaimableType: model.ClaimableRole,
		Scope: "U.S.", Constraints: `employeeRegion == "Midwest"`,
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))

	result, err := f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "banking", PrincipalID: tom.ID, Action: "READ",
		ResourceName: "DepositAccount", ResourceScope: "U.S.",
		Context: map[string]eval.Value{"employeeRegion": eval.String("Midwest")},
	})
	require.NoError(t, err)
	require.Equal(t, decision.ResultAllow, result)

	_, err = f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "banking", PrincipalID: tom.ID, Action: "READ",
		ResourceName: "DepositAccount", ResourceScope: "U.S.",
		Context: map[string]eval.Value{"employeeRegion": eval.String("Northeast")},
	})
	require.True(t, apperr.Is(err, apperr.Evaluation))

	_, err = f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "banking", PrincipalID: tom.ID, Action: "DELETE",
		ResourceName: "DepositAccount", ResourceScope: "U.S.",
		Context: map[string]eval.Value{"employeeRegion": eval.String("Midwest")},
	})
	require.True(t, apperr.Is(err, apperr.Evaluation))
}

func TestS2_GeoFencedFeatureFlag(t *testing.T) {
	f := newFixture(t)

	_, err := f.realms.Create(f.ctx, &model.Realm{ID: "flags"}, "setup")
	require.NoError(t, err)
	org, err := f.orgs.Create(f.ctx, &model.Organization{Name: "acme"}, "setup")
	require.NoError(t, err)
	res, err := f.resources.Create(f.ctx, &model.Resource{RealmID: "flags", ResourceName: "Feature"}, "setup")
	require.NoError(t, err)
	claim, err := f.claims.Create(f.ctx, &model.Claim{RealmID: "flags", ResourceID: res.ID, Action: "VIEW", Effect: model.EffectAllow}, "setup")
	require.NoError(t, err)
	customer, err := f.roles.Create(f.ctx, &model.Role{RealmID: "flags", OrganizationID: org.ID, Name: "Customer"}, "setup")
	require.NoError(t, err)
	p, err := f.principals.Create(f.ctx, &model.Principal{OrganizationID: org.ID, Username: "dana"}, "setup")
	require.NoError(t, err)

	require.NoError(t, f.roleGrants.Grant(f.ctx, &model.RoleRoleable{
		RoleID: customer.ID, RoleableID: p.ID, RoleableType: model.RoleablePrincipal,
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))
	require.NoError(t, f.claimGrants.Grant(f.ctx, &model.ClaimClaimable{
		ClaimID: claim.ID, ClaimableID: customer.ID, ClaimableType: model.ClaimableRole,
		Scope: "UI::Flag::BasicReport",
		Constraints: "geo_distance_km(customer_lat, customer_lon, 47.620422, -122.349358) < 100",
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))

	result, err := f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "flags", PrincipalID: p.ID, Action: "VIEW",
		ResourceName: "Feature", ResourceScope: "UI::Flag::BasicReport",
		Context: map[string]eval.Value{
			"customer_lat": eval.Float(46.879967),
			"customer_lon": eval.Float(-121.726906),
		},
	})
	require.NoError(t, err)
	require.Equal(t, decision.ResultAllow, result)

	_, err = f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "flags", PrincipalID: p.ID, Action: "VIEW",
		ResourceName: "Feature", ResourceScope: "UI::Flag::BasicReport",
		Context: map[string]eval.Value{
			"customer_lat": eval.Float(37.3230),
			"customer_lon": eval.Float(-122.0322),
		},
	})
	require.True(t, apperr.Is(err, apperr.Evaluation))
}

func TestS3_LicensePolicyGating(t *testing.T) {
	f := newFixture(t)

	_, err := f.realms.Create(f.ctx, &model.Realm{ID: "flags"}, "setup")
	require.NoError(t, err)
	freemium, err := f.orgs.Create(f.ctx, &model.Organization{Name: "Freemium"}, "setup")
	require.NoError(t, err)
	res, err := f.resources.Create(f.ctx, &model.Resource{RealmID: "flags", ResourceName: "Feature"}, "setup")
	require.NoError(t, err)
	claim, err := f.claims.Create(f.ctx, &model.Claim{RealmID: "flags", ResourceID: res.ID, Action: "VIEW", Effect: model.EffectAllow}, "setup")
	require.NoError(t, err)

	policy, err := f.licenses.Create(f.ctx, &model.LicensePolicy{
		OrganizationID: freemium.ID, Name: "Freemium Plan",
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}, "setup")
	require.NoError(t, err)
	require.NoError(t, f.claimGrants.Grant(f.ctx, &model.ClaimClaimable{
		ClaimID: claim.ID, ClaimableID: policy.ID, ClaimableType: model.ClaimableLicensePolicy,
		Scope: "UI::Flag::BasicReport",
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))

	customer, err := f.roles.Create(f.ctx, &model.Role{RealmID: "flags", OrganizationID: freemium.ID, Name: "Customer"}, "setup")
	require.NoError(t, err)
	frank, err := f.principals.Create(f.ctx, &model.Principal{OrganizationID: freemium.ID, Username: "frank"}, "setup")
	require.NoError(t, err)
	require.NoError(t, f.roleGrants.Grant(f.ctx, &model.RoleRoleable{
		RoleID: customer.ID, RoleableID: frank.ID, RoleableType: model.RoleablePrincipal,
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))
	for _, scope := range []string{"UI::Flag::BasicReport", "UI::Flag::AdvancedReport"} {
		require.NoError(t, f.claimGrants.Grant(f.ctx, &model.ClaimClaimable{
			ClaimID: claim.ID, ClaimableID: customer.ID, ClaimableType: model.ClaimableRole,
			Scope: scope, EffectiveAt: farPast(), ExpiredAt: farFuture(),
		}))
	}

	result, err := f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "flags", PrincipalID: frank.ID, Action: "VIEW",
		ResourceName: "Feature", ResourceScope: "UI::Flag::BasicReport",
	})
	require.NoError(t, err)
	require.Equal(t, decision.ResultAllow, result)

	_, err = f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "flags", PrincipalID: frank.ID, Action: "VIEW",
		ResourceName: "Feature", ResourceScope: "UI::Flag::AdvancedReport",
	})
	require.True(t, apperr.Is(err, apperr.Evaluation))
}

func TestS4_RoleInheritance(t *testing.T) {
	f := newFixture(t)

	_, err := f.realms.Create(f.ctx, &model.Realm{ID: "banking"}, "setup")
	require.NoError(t, err)
	org, err := f.orgs.Create(f.ctx, &model.Organization{Name: "bank-of-flakes"}, "setup")
	require.NoError(t, err)
	res, err := f.resources.Create(f.ctx, &model.Resource{RealmID: "banking", ResourceName: "DepositAccount"}, "setup")
	require.NoError(t, err)
	claim, err := f.claims.Create(f.ctx, &model.Claim{RealmID: "banking", ResourceID: res.ID, Action: "(CREATE|DELETE)", Effect: model.EffectAllow}, "setup")
	require.NoError(t, err)

	employee, err := f.roles.Create(f.ctx, &model.Role{RealmID: "banking", OrganizationID: org.ID, Name: "Employee"}, "setup")
	require.NoError(t, err)
	teller, err := f.roles.Create(f.ctx, &model.Role{RealmID: "banking", OrganizationID: org.ID, Name: "Teller", ParentID: &employee.ID}, "setup")
	require.NoError(t, err)
	csr, err := f.roles.Create(f.ctx, &model.Role{RealmID: "banking", OrganizationID: org.ID, Name: "CSR", ParentID: &teller.ID}, "setup")
	require.NoError(t, err)

	cassy, err := f.principals.Create(f.ctx, &model.Principal{OrganizationID: org.ID, Username: "cassy"}, "setup")
	require.NoError(t, err)
	require.NoError(t, f.roleGrants.Grant(f.ctx, &model.RoleRoleable{
		RoleID: csr.ID, RoleableID: cassy.ID, RoleableType: model.RoleablePrincipal,
		EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))
	require.NoError(t, f.claimGrants.Grant(f.ctx, &model.ClaimClaimable{
		ClaimID: claim.ID, ClaimableID: csr.ID, ClaimableType: model.ClaimableRole,
		Scope: "U.S.", EffectiveAt: farPast(), ExpiredAt: farFuture(),
	}))

	result, err := f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "banking", PrincipalID: cassy.ID, Action: "DELETE",
		ResourceName: "DepositAccount", ResourceScope: "U.S.",
	})
	require.NoError(t, err)
	require.Equal(t, decision.ResultAllow, result)

	_, err = f.engine.Check(f.ctx, f.sec, decision.PermissionRequest{
		RealmID: "banking", PrincipalID: cassy.ID, Action: "DELETE",
		ResourceName: "DepositAccount", ResourceScope: "U.K.",
	})
	require.True(t, apperr.Is(err, apperr.Evaluation))
}

func farPast() time.Time   { return time.Now().UTC().AddDate(-1, 0, 0) }
func farFuture() time.Time { return time.Now().UTC().AddDate(1, 0, 0) }
