// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package models defines the HTTP request/response DTOs for the RBAC API,
// decoupled from the internal/rbac/model persistence types.
package models

import "time"

// APIResponse is the standard response envelope.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ListResponse is a simple (non-paginated) list envelope.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

func SuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{Success: true, Data: data}
}

func ListSuccessResponse[T any](items []T) APIResponse[ListResponse[T]] {
	return APIResponse[ListResponse[T]]{
		Success: true,
		Data:    ListResponse[T]{Items: items, TotalCount: len(items)},
	}
}

func ErrorResponse(message, code string) APIResponse[any] {
	return APIResponse[any]{Success: false, Error: message, Code: code}
}

// RealmResponse represents a Realm in API responses.
type RealmResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResourceResponse represents a Resource in API responses.
type ResourceResponse struct {
	ID               string    `json:"id"`
	RealmID          string    `json:"realmId"`
	ResourceName     string    `json:"resourceName"`
	AllowableActions string    `json:"allowableActions,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ClaimResponse represents a Claim in API responses.
type ClaimResponse struct {
	ID         string    `json:"id"`
	RealmID    string    `json:"realmId"`
	ResourceID string    `json:"resourceId"`
	Action     string    `json:"action"`
	Effect     string    `json:"effect"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OrganizationResponse represents an Organization in API responses.
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// LicensePolicyResponse represents a LicensePolicy in API responses.
type LicensePolicyResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	EffectiveAt    time.Time `json:"effectiveAt"`
	ExpiredAt      time.Time `json:"expiredAt"`
}

// PrincipalResponse represents a Principal in API responses.
type PrincipalResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Username       string    `json:"username"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GroupResponse represents a Group in API responses.
type GroupResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RoleResponse represents a Role in API responses.
type RoleResponse struct {
	ID             string    `json:"id"`
	RealmID        string    `json:"realmId"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	ParentID       *string   `json:"parentId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ResourceInstanceResponse represents a ResourceInstance in API responses.
type ResourceInstanceResponse struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	Scope      string    `json:"scope"`
	RefID      string    `json:"refId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ResourceQuotaResponse represents a ResourceQuota in API responses.
type ResourceQuotaResponse struct {
	ID              string    `json:"id"`
	ResourceID      string    `json:"resourceId"`
	LicensePolicyID string    `json:"licensePolicyId"`
	Scope           string    `json:"scope"`
	MaxValue        int64     `json:"maxValue"`
	EffectiveAt     time.Time `json:"effectiveAt"`
	ExpiredAt       time.Time `json:"expiredAt"`
}

// CheckResponse represents the outcome of a permission check.
type CheckResponse struct {
	Result string `json:"result"`
}
