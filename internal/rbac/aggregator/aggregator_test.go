// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package aggregator_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plexrbac/engine/internal/rbac/aggregator"
	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/store"
	"github.com/plexrbac/engine/internal/rbac/storetest"
)

func TestHydrateSkipsDanglingRoleReferenceAndAudits(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)

	realms := store.NewRealmRepository(db)
	resources := store.NewResourceRepository(db)
	claims := store.NewClaimRepository(db)
	claimGrants := store.NewClaimClaimableRepository(db)
	orgs := store.NewOrganizationRepository(db)
	licenses := store.NewLicensePolicyRepository(db)
	principals := store.NewPrincipalRepository(db)
	roles := store.NewRoleRepository(db)
	roleGrants := store.NewRoleRoleableRepository(db)
	auditRepo := store.NewAuditRecordRepository(db)
	auditWriter := audit.New(auditRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := realms.Create(ctx, &model.Realm{ID: "r"}, "setup")
	require.NoError(t, err)
	org, err := orgs.Create(ctx, &model.Organization{Name: "org"}, "setup")
	require.NoError(t, err)
	p, err := principals.Create(ctx, &model.Principal{OrganizationID: org.ID, Username: "u"}, "setup")
	require.NoError(t, err)

	// Grant a role id that is never created in this organization, simulating
	// a role deleted after the grant row was written.
	require.NoError(t, roleGrants.Grant(ctx, &model.RoleRoleable{
		RoleID: "missing-role", RoleableID: p.ID, RoleableType: model.RoleablePrincipal,
		EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
	}))

	agg := aggregator.New(principals, roles, roleGrants, claims, claimGrants, licenses, resources, auditWriter)

	sec := model.SecurityContext{PrincipalID: "actor"}
	hydrated, err := agg.Hydrate(ctx, sec, "r", p.ID)
	require.NoError(t, err)
	require.Empty(t, hydrated.RoleIDs)

	records, err := auditRepo.List(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	require.Equal(t, "WARN", records[0].Action)
}

func TestHydrateResolvesRoleAncestry(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)

	realms := store.NewRealmRepository(db)
	resources := store.NewResourceRepository(db)
	claims := store.NewClaimRepository(db)
	claimGrants := store.NewClaimClaimableRepository(db)
	orgs := store.NewOrganizationRepository(db)
	licenses := store.NewLicensePolicyRepository(db)
	principals := store.NewPrincipalRepository(db)
	roles := store.NewRoleRepository(db)
	roleGrants := store.NewRoleRoleableRepository(db)
	auditWriter := audit.New(store.NewAuditRecordRepository(db), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := realms.Create(ctx, &model.Realm{ID: "r"}, "setup")
	require.NoError(t, err)
	org, err := orgs.Create(ctx, &model.Organization{Name: "org"}, "setup")
	require.NoError(t, err)
	parent, err := roles.Create(ctx, &model.Role{RealmID: "r", OrganizationID: org.ID, Name: "Employee"}, "setup")
	require.NoError(t, err)
	child, err := roles.Create(ctx, &model.Role{RealmID: "r", OrganizationID: org.ID, Name: "Teller", ParentID: &parent.ID}, "setup")
	require.NoError(t, err)
	p, err := principals.Create(ctx, &model.Principal{OrganizationID: org.ID, Username: "u"}, "setup")
	require.NoError(t, err)
	require.NoError(t, roleGrants.Grant(ctx, &model.RoleRoleable{
		RoleID: child.ID, RoleableID: p.ID, RoleableType: model.RoleablePrincipal,
		EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
	}))

	agg := aggregator.New(principals, roles, roleGrants, claims, claimGrants, licenses, resources, auditWriter)
	hydrated, err := agg.Hydrate(ctx, model.SecurityContext{PrincipalID: "actor"}, "r", p.ID)
	require.NoError(t, err)

	_, hasChild := hydrated.RoleIDs[child.ID]
	_, hasParent := hydrated.RoleIDs[parent.ID]
	require.True(t, hasChild)
	require.True(t, hasParent)
}
