// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package models

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation on req.
func Validate(req any) error {
	return validate.Struct(req)
}

// CreateRealmRequest is the request body for creating a Realm.
type CreateRealmRequest struct {
	ID string `json:"id" validate:"required"`
}

// CreateResourceRequest is the request body for creating a Resource.
type CreateResourceRequest struct {
	ResourceName     string `json:"resourceName" validate:"required"`
	AllowableActions string `json:"allowableActions,omitempty"`
}

// UpdateRealmRequest is the request body for updating a Realm.
type UpdateRealmRequest struct {
	Description string `json:"description,omitempty"`
}

// UpdateResourceRequest is the request body for updating a Resource.
type UpdateResourceRequest struct {
	AllowableActions string `json:"allowableActions,omitempty"`
}

// CreateClaimRequest is the request body for creating a Claim.
type CreateClaimRequest struct {
	ResourceID string `json:"resourceId" validate:"required"`
	Action     string `json:"action" validate:"required"`
	Effect     string `json:"effect,omitempty" validate:"omitempty,oneof=Allow Deny"`
}

// CreateOrganizationRequest is the request body for creating an Organization.
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateLicensePolicyRequest is the request body for creating a LicensePolicy.
type CreateLicensePolicyRequest struct {
	Name        string `json:"name" validate:"required"`
	EffectiveAt string `json:"effectiveAt,omitempty"`
	ExpiredAt   string `json:"expiredAt,omitempty"`
}

// CreatePrincipalRequest is the request body for creating a Principal.
type CreatePrincipalRequest struct {
	Username string `json:"username" validate:"required"`
}

// CreateGroupRequest is the request body for creating a Group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateRoleRequest is the request body for creating a Role.
type CreateRoleRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parentId,omitempty"`
}

// CreateResourceInstanceRequest is the request body for creating a
// ResourceInstance, routed through the Quota Enforcer.
type CreateResourceInstanceRequest struct {
	Scope  string `json:"scope" validate:"required"`
	RefID  string `json:"refId" validate:"required"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=INFLIGHT COMPLETED FAILED"`
}

// CreateResourceQuotaRequest is the request body for creating a ResourceQuota.
type CreateResourceQuotaRequest struct {
	LicensePolicyID string `json:"licensePolicyId" validate:"required"`
	Scope           string `json:"scope" validate:"required"`
	MaxValue        int64  `json:"maxValue" validate:"required,gt=0"`
	EffectiveAt     string `json:"effectiveAt,omitempty"`
	ExpiredAt       string `json:"expiredAt,omitempty"`
}

// UpdateClaimRequest is the request body for updating a Claim.
type UpdateClaimRequest struct {
	Action string `json:"action" validate:"required"`
	Effect string `json:"effect,omitempty" validate:"omitempty,oneof=Allow Deny"`
}

// UpdateOrganizationRequest is the request body for updating an Organization.
type UpdateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url,omitempty"`
}

// UpdateLicensePolicyRequest is the request body for updating a LicensePolicy.
type UpdateLicensePolicyRequest struct {
	Name        string `json:"name" validate:"required"`
	EffectiveAt string `json:"effectiveAt,omitempty"`
	ExpiredAt   string `json:"expiredAt,omitempty"`
}

// UpdatePrincipalRequest is the request body for updating a Principal.
type UpdatePrincipalRequest struct {
	Username string `json:"username" validate:"required"`
}

// UpdateGroupRequest is the request body for updating a Group.
type UpdateGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateRoleRequest is the request body for updating a Role.
type UpdateRoleRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateResourceQuotaRequest is the request body for updating a ResourceQuota.
type UpdateResourceQuotaRequest struct {
	MaxValue    int64  `json:"maxValue" validate:"required,gt=0"`
	EffectiveAt string `json:"effectiveAt,omitempty"`
	ExpiredAt   string `json:"expiredAt,omitempty"`
}

// UpdateResourceInstanceRequest is the request body for updating a
// ResourceInstance's status.
type UpdateResourceInstanceRequest struct {
	Status string `json:"status" validate:"required,oneof=INFLIGHT COMPLETED FAILED"`
}

// GrantClaimRequest is the request body for associating a Claim with a
// principal, role, or license policy (the claimable path segment picks
// which).
type GrantClaimRequest struct {
	Scope       string `json:"scope,omitempty"`
	Constraints string `json:"constraints,omitempty"`
	EffectiveAt string `json:"effectiveAt,omitempty"`
	ExpiredAt   string `json:"expiredAt,omitempty"`
}
