// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package model defines the entity types of the authorization data model.
package model

import "time"

// Effect is the outcome a matched Claim produces.
type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// InstanceStatus is the lifecycle state of a ResourceInstance.
type InstanceStatus string

const (
	StatusInflight  InstanceStatus = "INFLIGHT"
	StatusPending   InstanceStatus = "PENDING"
	StatusFailed    InstanceStatus = "FAILED"
	StatusCompleted InstanceStatus = "COMPLETED"
	StatusUnknown   InstanceStatus = "UNKNOWN"
)

// RoleableType discriminates the polymorphic target of a RoleRoleable row.
type RoleableType string

const (
	RoleablePrincipal RoleableType = "Principal"
	RoleableGroup     RoleableType = "Group"
)

// ClaimableType discriminates the polymorphic target of a ClaimClaimable row.
type ClaimableType string

const (
	ClaimablePrincipal     ClaimableType = "Principal"
	ClaimableRole          ClaimableType = "Role"
	ClaimableLicensePolicy ClaimableType = "LicensePolicy"
)

// Realm is the top-level security namespace owning Resources and Claims.
type Realm struct {
	ID          string `gorm:"column:id;primaryKey" json:"id"`
	Description string `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
}

// Resource is a protected kind of object identified by name within a realm.
type Resource struct {
	ID                string `gorm:"column:id;primaryKey" json:"id"`
	RealmID           string `gorm:"column:realm_id;index" json:"realm_id"`
	ResourceName      string `gorm:"column:resource_name;index" json:"resource_name"`
	AllowableActions  string `gorm:"column:allowable_actions" json:"allowable_actions"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	CreatedBy         string    `json:"created_by"`
	UpdatedBy         string    `json:"updated_by"`
}

// Claim is a permission template: (resource, action-regex, effect).
type Claim struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	RealmID    string `gorm:"column:realm_id;index" json:"realm_id"`
	ResourceID string `gorm:"column:resource_id;index" json:"resource_id"`
	Action     string `gorm:"column:action" json:"action"`
	Effect     Effect `gorm:"column:effect" json:"effect"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreatedBy  string    `json:"created_by"`
	UpdatedBy  string    `json:"updated_by"`
}

// Organization is a tenant; may form a tree via ParentID.
type Organization struct {
	ID        string  `gorm:"column:id;primaryKey" json:"id"`
	ParentID  *string `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Name      string  `gorm:"column:name" json:"name"`
	URL       string  `gorm:"column:url" json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
}

// LicensePolicy is a tenant-wide entitlement window. At most one is active per org.
type LicensePolicy struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	OrganizationID string    `gorm:"column:organization_id;index" json:"organization_id"`
	Name           string    `gorm:"column:name" json:"name"`
	EffectiveAt    time.Time `gorm:"column:effective_at" json:"effective_at"`
	ExpiredAt      time.Time `gorm:"column:expired_at" json:"expired_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	CreatedBy      string    `json:"created_by"`
	UpdatedBy      string    `json:"updated_by"`
}

// Active reports whether now falls within [EffectiveAt, ExpiredAt].
func (p LicensePolicy) Active(now time.Time) bool {
	return !now.Before(p.EffectiveAt) && !now.After(p.ExpiredAt)
}

// Principal is a user/service identity inside an organization.
type Principal struct {
	ID             string `gorm:"column:id;primaryKey" json:"id"`
	OrganizationID string `gorm:"column:organization_id;index" json:"organization_id"`
	Username       string `gorm:"column:username" json:"username"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	CreatedBy      string    `json:"created_by"`
	UpdatedBy      string    `json:"updated_by"`
}

// Group is an optional hierarchy of groups inside an organization.
type Group struct {
	ID             string  `gorm:"column:id;primaryKey" json:"id"`
	OrganizationID string  `gorm:"column:organization_id;index" json:"organization_id"`
	ParentID       *string `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Name           string  `gorm:"column:name" json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	CreatedBy      string    `json:"created_by"`
	UpdatedBy      string    `json:"updated_by"`
}

// Role lives in a realm and an org; inheritance via ParentID.
type Role struct {
	ID             string  `gorm:"column:id;primaryKey" json:"id"`
	RealmID        string  `gorm:"column:realm_id;index" json:"realm_id"`
	OrganizationID string  `gorm:"column:organization_id;index" json:"organization_id"`
	ParentID       *string `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Name           string  `gorm:"column:name" json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	CreatedBy      string    `json:"created_by"`
	UpdatedBy      string    `json:"updated_by"`
}

// ResourceInstance is an accounting row consumed by the quota enforcer.
type ResourceInstance struct {
	ID              string         `gorm:"column:id;primaryKey" json:"id"`
	ResourceID      string         `gorm:"column:resource_id;index:idx_instance_lookup" json:"resource_id"`
	LicensePolicyID string         `gorm:"column:license_policy_id" json:"license_policy_id"`
	Scope           string         `gorm:"column:scope;index:idx_instance_lookup" json:"scope"`
	RefID           string         `gorm:"column:ref_id" json:"ref_id"`
	Status          InstanceStatus `gorm:"column:status;index:idx_instance_lookup" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CreatedBy       string         `json:"created_by"`
	UpdatedBy       string         `json:"updated_by"`
}

// ResourceQuota is active when now falls in [EffectiveAt, ExpiredAt].
type ResourceQuota struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	ResourceID      string    `gorm:"column:resource_id;index:idx_quota_lookup" json:"resource_id"`
	LicensePolicyID string    `gorm:"column:license_policy_id" json:"license_policy_id"`
	Scope           string    `gorm:"column:scope;index:idx_quota_lookup" json:"scope"`
	MaxValue        int64     `gorm:"column:max_value" json:"max_value"`
	EffectiveAt     time.Time `gorm:"column:effective_at" json:"effective_at"`
	ExpiredAt       time.Time `gorm:"column:expired_at" json:"expired_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatedBy       string    `json:"created_by"`
	UpdatedBy       string    `json:"updated_by"`
}

// Active reports whether now falls within [EffectiveAt, ExpiredAt].
func (q ResourceQuota) Active(now time.Time) bool {
	return !now.Before(q.EffectiveAt) && !now.After(q.ExpiredAt)
}

// GroupPrincipal is a membership row.
type GroupPrincipal struct {
	GroupID     string `gorm:"column:group_id;primaryKey" json:"group_id"`
	PrincipalID string `gorm:"column:principal_id;primaryKey" json:"principal_id"`
}

// RoleRoleable is a role grant to a Principal or a Group.
type RoleRoleable struct {
	RoleID       string       `gorm:"column:role_id;primaryKey" json:"role_id"`
	RoleableID   string       `gorm:"column:roleable_id;primaryKey" json:"roleable_id"`
	RoleableType RoleableType `gorm:"column:roleable_type;primaryKey" json:"roleable_type"`
	Constraints  string       `gorm:"column:constraints" json:"constraints"`
	EffectiveAt  time.Time    `gorm:"column:effective_at" json:"effective_at"`
	ExpiredAt    time.Time    `gorm:"column:expired_at" json:"expired_at"`
}

// Active reports whether now falls within [EffectiveAt, ExpiredAt].
func (r RoleRoleable) Active(now time.Time) bool {
	return !now.Before(r.EffectiveAt) && !now.After(r.ExpiredAt)
}

// ClaimClaimable is a claim grant to a Principal, a Role, or a LicensePolicy.
type ClaimClaimable struct {
	ClaimID       string        `gorm:"column:claim_id;primaryKey" json:"claim_id"`
	ClaimableID   string        `gorm:"column:claimable_id;primaryKey" json:"claimable_id"`
	ClaimableType ClaimableType `gorm:"column:claimable_type;primaryKey" json:"claimable_type"`
	Scope         string        `gorm:"column:scope" json:"scope"`
	Constraints   string        `gorm:"column:constraints" json:"constraints"`
	EffectiveAt   time.Time     `gorm:"column:effective_at" json:"effective_at"`
	ExpiredAt     time.Time     `gorm:"column:expired_at" json:"expired_at"`
}

// Active reports whether now falls within [EffectiveAt, ExpiredAt].
func (c ClaimClaimable) Active(now time.Time) bool {
	return !now.Before(c.EffectiveAt) && !now.After(c.ExpiredAt)
}

// AuditRecord is an append-only log of a mutation or notable anomaly.
type AuditRecord struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Message   string    `gorm:"column:message" json:"message"`
	Action    string    `gorm:"column:action" json:"action"`
	Context   string    `gorm:"column:context" json:"context"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	CreatedBy string    `gorm:"column:created_by" json:"created_by"`
}

// ResolvedClaim is the tagged-union read view over ClaimClaimable sources
// described by the design notes: a small discriminated struct standing in
// for the source's Claimable::Realm|LicensePolicy|Role|Principal variants.
type ResolvedClaim struct {
	Kind        ClaimableSource
	Claim       Claim
	ClaimableID string
	RoleID      string // set when Kind == ClaimableSourceRole
	Scope       string
	Constraints string
}

// ClaimableSource discriminates where a ResolvedClaim originated.
type ClaimableSource string

const (
	ClaimableSourceRealm         ClaimableSource = "Realm"
	ClaimableSourceLicensePolicy ClaimableSource = "LicensePolicy"
	ClaimableSourceRole          ClaimableSource = "Role"
	ClaimableSourcePrincipal     ClaimableSource = "Principal"
)

// HydratedPrincipal is the Aggregator's output: a principal together with
// the transitively-resolved roles, groups, claims, and referenced resources.
type HydratedPrincipal struct {
	Principal Principal
	RoleIDs   map[string]struct{}
	GroupIDs  map[string]struct{}
	Claims    []ResolvedClaim
	Resources map[string]Resource // keyed by resource id

	// AmbientRealm is true when the organization has no active license
	// policy, so the realm's claims are ambiently available and the
	// license gate of the Claim Filter is bypassed entirely (resolution of
	// design note 2: Realm(...) entries pass every scope).
	AmbientRealm bool
	// OrgClaimScopes is the set of scopes mentioned by the org's license
	// layer, used by the Claim Filter's license-gate pre-check.
	OrgClaimScopes map[string]struct{}
}

// SecurityContext carries the caller identity explicitly through every
// operation, per the design note against process-global storage.
type SecurityContext struct {
	RealmID     string
	PrincipalID string
	Properties  map[string]string
}
