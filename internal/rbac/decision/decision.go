// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package decision implements the Claim Filter and Decision Engine: given a
// PermissionRequest, it collects candidate claims, matches the requested
// action by regex, evaluates constraints, and returns Allow/Deny or a
// structured Evaluation error.
package decision

import (
	"context"
	"fmt"
	"sort"

	"github.com/plexrbac/engine/internal/rbac/aggregator"
	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/eval"
	"github.com/plexrbac/engine/internal/rbac/metrics"
	"github.com/plexrbac/engine/internal/rbac/model"
)

// Result is the outcome of a permission check.
type Result string

const (
	ResultAllow Result = "Allow"
	ResultDeny  Result = "Deny"
)

// PermissionRequest is the input to Check.
type PermissionRequest struct {
	RealmID       string
	PrincipalID   string
	Action        string
	ResourceName  string
	ResourceScope string
	Context       map[string]eval.Value
}

// candidate is a single (claim, grant, resource) tuple considered by the
// decision engine, in the deterministic order described by SPEC_FULL §4.4.
type candidate struct {
	claim        model.Claim
	grantScope   string
	constraints  string
	resourceName string
}

// Engine is the Claim Filter + Decision Engine.
type Engine struct {
	aggregator *aggregator.Aggregator
	evaluator  *eval.Evaluator
	decisions  *metrics.Decisions
}

func New(agg *aggregator.Aggregator, evaluator *eval.Evaluator) *Engine {
	return &Engine{aggregator: agg, evaluator: evaluator}
}

// WithMetrics attaches a Decisions collector, returning e for chaining.
func (e *Engine) WithMetrics(d *metrics.Decisions) *Engine {
	e.decisions = d
	return e
}

// Check answers Allow|Deny for req, or an apperr.Evaluation error describing
// why no candidate matched.
func (e *Engine) Check(ctx context.Context, sec model.SecurityContext, req PermissionRequest) (Result, error) {
	hydrated, err := e.aggregator.Hydrate(ctx, sec, req.RealmID, req.PrincipalID)
	if err != nil {
		return "", err
	}

	candidates, licenseGatePassed := collectCandidates(hydrated, req.ResourceName, req.ResourceScope)
	if !licenseGatePassed {
		e.decisions.Observe(req.ResourceName, "error")
		return "", apperr.Newf(apperr.Evaluation,
			"license gate: org claims do not cover scope %q", req.ResourceScope)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].resourceName != candidates[j].resourceName {
			return candidates[i].resourceName < candidates[j].resourceName
		}
		return candidates[i].claim.ID < candidates[j].claim.ID
	})

	considered := make([]string, 0, len(candidates))
	for _, c := range candidates {
		matched, err := eval.RegexFind(c.claim.Action, req.Action)
		if err != nil {
			return "", apperr.Wrap(apperr.Evaluation, "matching claim action", err)
		}
		if !matched {
			considered = append(considered, fmt.Sprintf("claim %s on %s scope %q: action %q does not match %q",
				c.claim.ID, c.resourceName, c.grantScope, req.Action, c.claim.Action))
			continue
		}

		if c.constraints != "" {
			ok, err := e.evaluator.Evaluate(c.constraints, req.Context)
			if err != nil {
				return "", err
			}
			if !ok {
				considered = append(considered, fmt.Sprintf("claim %s on %s scope %q: constraint false", c.claim.ID, c.resourceName, c.grantScope))
				continue
			}
		}

		if c.claim.Effect == model.EffectDeny {
			e.decisions.Observe(req.ResourceName, "deny")
			return ResultDeny, nil
		}
		e.decisions.Observe(req.ResourceName, "allow")
		return ResultAllow, nil
	}

	e.decisions.Observe(req.ResourceName, "error")
	return "", apperr.Newf(apperr.Evaluation,
		"no claim matched action %q on resource %q scope %q; candidates considered: %v",
		req.Action, req.ResourceName, req.ResourceScope, considered)
}

// collectCandidates implements step 2 of the Claim Filter & Decision Engine
// algorithm: the license gate pre-check, then candidate tuple emission.
func collectCandidates(hydrated *model.HydratedPrincipal, resourceName, resourceScope string) ([]candidate, bool) {
	// License gate: an ambient-realm org (no license policy configured)
	// bypasses the gate entirely, per the documented resolution of design
	// note 2. Otherwise the org's license layer must mention resourceScope.
	licenseGatePassed := hydrated.AmbientRealm
	if !licenseGatePassed {
		_, licenseGatePassed = hydrated.OrgClaimScopes[resourceScope]
	}
	if !licenseGatePassed {
		return nil, false
	}

	var out []candidate
	for _, rc := range hydrated.Claims {
		if rc.Scope != resourceScope {
			continue
		}
		res, ok := hydrated.Resources[rc.Claim.ResourceID]
		if !ok || res.ResourceName != resourceName {
			continue
		}
		out = append(out, candidate{
			claim:        rc.Claim,
			grantScope:   rc.Scope,
			constraints:  rc.Constraints,
			resourceName: res.ResourceName,
		})
	}
	return out, true
}
