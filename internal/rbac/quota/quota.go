// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package quota implements the Quota Enforcer: gates creation of a
// ResourceInstance against the active ResourceQuota for its (resource,
// scope), counting completed instances plus recently-created in-flight
// instances.
package quota

import (
	"context"
	"time"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/metrics"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/store"
)

// Enforcer gates ResourceInstance creation.
type Enforcer struct {
	principals *store.PrincipalRepository
	licenses   *store.LicensePolicyRepository
	instances  *store.ResourceInstanceRepository
	quota      *metrics.Quota

	now func() time.Time
}

func New(principals *store.PrincipalRepository, licenses *store.LicensePolicyRepository, instances *store.ResourceInstanceRepository) *Enforcer {
	return &Enforcer{
		principals: principals,
		licenses:   licenses,
		instances:  instances,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics attaches a Quota collector, returning e for chaining.
func (e *Enforcer) WithMetrics(q *metrics.Quota) *Enforcer {
	e.quota = q
	return e
}

// Create enforces the quota for (inst.ResourceID, inst.Scope) and, if under
// the cap, persists inst. The active license policy id is resolved from
// sec.PrincipalID's organization and stamped onto the instance regardless
// of caller-supplied values.
func (e *Enforcer) Create(ctx context.Context, sec model.SecurityContext, inst *model.ResourceInstance) (*model.ResourceInstance, error) {
	principal, err := e.principals.Get(ctx, sec.PrincipalID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	policy, err := e.licenses.ActiveForOrganization(ctx, principal.OrganizationID, now)
	if err != nil {
		return nil, err
	}

	if inst.Status == "" {
		inst.Status = model.StatusInflight
	}

	result, err := e.instances.CreateLocked(ctx, inst, policy.ID, now, func(quota *model.ResourceQuota, completed, recentInflight int64) error {
		count := completed + recentInflight
		if count >= quota.MaxValue {
			return apperr.Newf(apperr.QuotaExceeded,
				"quota %s exceeded for resource %s scope %q: %d/%d in use",
				quota.ID, inst.ResourceID, inst.Scope, count, quota.MaxValue)
		}
		return nil
	})
	if apperr.Is(err, apperr.QuotaExceeded) {
		e.quota.ObserveRejection(inst.ResourceID, inst.Scope)
	}
	return result, err
}
