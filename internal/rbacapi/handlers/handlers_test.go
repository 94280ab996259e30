// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plexrbac/engine/internal/rbac/aggregator"
	"github.com/plexrbac/engine/internal/rbac/audit"
	"github.com/plexrbac/engine/internal/rbac/decision"
	"github.com/plexrbac/engine/internal/rbac/eval"
	"github.com/plexrbac/engine/internal/rbac/quota"
	"github.com/plexrbac/engine/internal/rbac/store"
	"github.com/plexrbac/engine/internal/rbac/storetest"
	"github.com/plexrbac/engine/internal/rbacapi/handlers"
)

func newTestHandler(t *testing.T) *handlers.Handler {
	t.Helper()
	db := storetest.NewDB(t)

	realms := store.NewRealmRepository(db)
	resources := store.NewResourceRepository(db)
	claims := store.NewClaimRepository(db)
	claimGrants := store.NewClaimClaimableRepository(db)
	orgs := store.NewOrganizationRepository(db)
	licenses := store.NewLicensePolicyRepository(db)
	principals := store.NewPrincipalRepository(db)
	groups := store.NewGroupRepository(db)
	roles := store.NewRoleRepository(db)
	roleGrants := store.NewRoleRoleableRepository(db)
	quotas := store.NewResourceQuotaRepository(db)
	instances := store.NewResourceInstanceRepository(db)
	auditRecords := store.NewAuditRecordRepository(db)

	auditWriter := audit.New(auditRecords, slog.New(slog.NewTextHandler(io.Discard, nil)))
	evaluator, err := eval.New()
	require.NoError(t, err)
	agg := aggregator.New(principals, roles, roleGrants, claims, claimGrants, licenses, resources, auditWriter)
	engine := decision.New(agg, evaluator)
	enforcer := quota.New(principals, licenses, instances)

	return handlers.New(handlers.Deps{
		Realms: realms, Resources: resources, Claims: claims, ClaimGrants: claimGrants,
		Orgs: orgs, Licenses: licenses, Principals: principals, Groups: groups,
		Roles: roles, RoleGrants: roleGrants, Quotas: quotas, Instances: instances,
		AuditRecords: auditRecords,
		Audit:        auditWriter, Evaluator: evaluator, Engine: engine, Enforcer: enforcer,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func doRequest(t *testing.T, mux http.Handler, method, path, principal string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(payload))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Realm", "r1")
	if principal != "" {
		req.Header.Set("X-Principal", principal)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRealmCRUD(t *testing.T) {
	h := newTestHandler(t)
	mux := h.Routes()

	rec := doRequest(t, mux, "POST", "/api/realms", "admin", map[string]string{"id": "r1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, mux, "GET", "/api/realms/r1", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, "DELETE", "/api/realms/r1", "admin", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, mux, "GET", "/api/realms/r1", "admin", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckEndpointAllowsMatchingClaim(t *testing.T) {
	h := newTestHandler(t)
	mux := h.Routes()

	require.Equal(t, http.StatusCreated, doRequest(t, mux, "POST", "/api/realms", "setup", map[string]string{"id": "r1"}).Code)

	var resourceResp struct {
		Data struct{ ID string } `json:"data"`
	}
	rec := doRequest(t, mux, "POST", "/api/realms/r1/resources", "setup", map[string]string{"resourceName": "Project"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resourceResp))

	var claimResp struct {
		Data struct{ ID string } `json:"data"`
	}
	rec = doRequest(t, mux, "POST", "/api/realms/r1/resources/"+resourceResp.Data.ID+"/claims", "setup", map[string]string{
		"resourceId": resourceResp.Data.ID, "action": "(CREATE|READ)", "effect": "Allow",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claimResp))

	var orgResp struct {
		Data struct{ ID string } `json:"data"`
	}
	rec = doRequest(t, mux, "POST", "/api/orgs", "setup", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orgResp))

	var principalResp struct {
		Data struct{ ID string } `json:"data"`
	}
	rec = doRequest(t, mux, "POST", "/api/orgs/"+orgResp.Data.ID+"/principals", "setup", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &principalResp))

	rec = doRequest(t, mux, "PUT", "/api/claims/"+claimResp.Data.ID+"/principals/"+principalResp.Data.ID, "setup", map[string]string{
		"scope": "org1", "effectiveAt": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	req := httptest.NewRequest("GET", "/api/check?action=CREATE&resource=Project&scope=org1", nil)
	req.Header.Set("X-Realm", "r1")
	req.Header.Set("X-Principal", principalResp.Data.ID)
	checkRec := httptest.NewRecorder()
	mux.ServeHTTP(checkRec, req)
	require.Equal(t, http.StatusOK, checkRec.Code)

	var checkResp struct {
		Data struct{ Result string } `json:"data"`
	}
	require.NoError(t, json.Unmarshal(checkRec.Body.Bytes(), &checkResp))
	require.Equal(t, string(decision.ResultAllow), checkResp.Data.Result)
}
