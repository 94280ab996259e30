// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/store"
	"github.com/plexrbac/engine/internal/rbac/storetest"
)

func TestResourceRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)
	realms := store.NewRealmRepository(db)
	resources := store.NewResourceRepository(db)

	_, err := realms.Create(ctx, &model.Realm{ID: "r"}, "setup")
	require.NoError(t, err)

	created, err := resources.Create(ctx, &model.Resource{
		RealmID: "r", ResourceName: "Project", AllowableActions: "(CREATE|DELETE)",
	}, "setup")
	require.NoError(t, err)

	fetched, err := resources.Get(ctx, "r", created.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(created, fetched, cmpopts.EquateApproxTime(time.Microsecond)); diff != "" {
		t.Fatalf("round-trip mismatch (-created +fetched):\n%s", diff)
	}
}

func TestRealmNotFound(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)
	realms := store.NewRealmRepository(db)

	_, err := realms.Get(ctx, "missing")
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestLicensePolicyDuplicateActiveRejected(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)
	orgs := store.NewOrganizationRepository(db)
	licenses := store.NewLicensePolicyRepository(db)

	org, err := orgs.Create(ctx, &model.Organization{Name: "org"}, "setup")
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = licenses.Create(ctx, &model.LicensePolicy{
		OrganizationID: org.ID, Name: "first", EffectiveAt: now.AddDate(-1, 0, 0), ExpiredAt: now.AddDate(1, 0, 0),
	}, "setup")
	require.NoError(t, err)

	_, err = licenses.Create(ctx, &model.LicensePolicy{
		OrganizationID: org.ID, Name: "second", EffectiveAt: now.AddDate(-1, 0, 0), ExpiredAt: now.AddDate(1, 0, 0),
	}, "setup")
	require.True(t, apperr.Is(err, apperr.Duplicate))
}

func TestClaimClaimableUniqueGrantRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)
	realms := store.NewRealmRepository(db)
	resources := store.NewResourceRepository(db)
	claims := store.NewClaimRepository(db)
	claimGrants := store.NewClaimClaimableRepository(db)

	_, err := realms.Create(ctx, &model.Realm{ID: "r"}, "setup")
	require.NoError(t, err)
	res, err := resources.Create(ctx, &model.Resource{RealmID: "r", ResourceName: "X"}, "setup")
	require.NoError(t, err)
	claim, err := claims.Create(ctx, &model.Claim{RealmID: "r", ResourceID: res.ID, Action: "READ"}, "setup")
	require.NoError(t, err)

	row := &model.ClaimClaimable{
		ClaimID: claim.ID, ClaimableID: "p1", ClaimableType: model.ClaimablePrincipal,
		Scope: "s", EffectiveAt: time.Now().UTC(), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
	}
	require.NoError(t, claimGrants.Grant(ctx, row))

	dup := &model.ClaimClaimable{
		ClaimID: claim.ID, ClaimableID: "p1", ClaimableType: model.ClaimablePrincipal,
		Scope: "s2", EffectiveAt: time.Now().UTC(), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
	}
	err = claimGrants.Grant(ctx, dup)
	require.True(t, apperr.Is(err, apperr.Duplicate))
}
