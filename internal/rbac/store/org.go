// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// OrganizationRepository persists Organization entities.
type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization, actor string) (*model.Organization, error) {
	now := time.Now().UTC()
	org.ID = newID()
	org.CreatedAt, org.UpdatedAt = now, now
	org.CreatedBy, org.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return nil, translate(err, "organization")
	}
	return org, nil
}

func (r *OrganizationRepository) Get(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, translate(err, "organization")
	}
	return &org, nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]model.Organization, error) {
	var orgs []model.Organization
	if err := r.db.WithContext(ctx).Find(&orgs).Error; err != nil {
		return nil, translate(err, "organization")
	}
	return orgs, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, id, name, url string, actor string) (*model.Organization, error) {
	org, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	org.Name = name
	org.URL = url
	org.UpdatedAt = time.Now().UTC()
	org.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(org).Error; err != nil {
		return nil, translate(err, "organization")
	}
	return org, nil
}

func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Organization{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "organization")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "organization")
	}
	return nil
}

// LicensePolicyRepository persists LicensePolicy entities. At most one is
// active per organization; Create enforces that before inserting, since no
// portable partial-unique-index syntax covers "unique while active" across
// SQLite/Postgres/MySQL uniformly.
type LicensePolicyRepository struct {
	db *gorm.DB
}

func NewLicensePolicyRepository(db *gorm.DB) *LicensePolicyRepository {
	return &LicensePolicyRepository{db: db}
}

func (r *LicensePolicyRepository) Create(ctx context.Context, policy *model.LicensePolicy, actor string) (*model.LicensePolicy, error) {
	now := time.Now().UTC()

	var existing []model.LicensePolicy
	err := r.db.WithContext(ctx).Where(
		"organization_id = ? AND effective_at <= ? AND expired_at >= ?",
		policy.OrganizationID, policy.ExpiredAt, policy.EffectiveAt,
	).Find(&existing).Error
	if err != nil {
		return nil, translate(err, "license policy")
	}
	for _, e := range existing {
		if e.Active(now) && policy.Active(now) {
			return nil, translate(errDuplicateActiveLicense, "license policy")
		}
	}

	policy.ID = newID()
	policy.CreatedAt, policy.UpdatedAt = now, now
	policy.CreatedBy, policy.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, translate(err, "license policy")
	}
	return policy, nil
}

var errDuplicateActiveLicense = &duplicateActiveLicenseErr{}

type duplicateActiveLicenseErr struct{}

func (*duplicateActiveLicenseErr) Error() string {
	return "unique constraint: organization already has an active license policy"
}

func (r *LicensePolicyRepository) Get(ctx context.Context, id string) (*model.LicensePolicy, error) {
	var p model.LicensePolicy
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "license policy")
	}
	return &p, nil
}

// ActiveForOrganization returns the organization's currently active license
// policy, or NotFound if none is active.
func (r *LicensePolicyRepository) ActiveForOrganization(ctx context.Context, organizationID string, now time.Time) (*model.LicensePolicy, error) {
	var p model.LicensePolicy
	err := r.db.WithContext(ctx).Where(
		"organization_id = ? AND effective_at <= ? AND expired_at >= ?", organizationID, now, now,
	).Order("effective_at desc").First(&p).Error
	if err != nil {
		return nil, translate(err, "license policy")
	}
	return &p, nil
}

func (r *LicensePolicyRepository) Update(ctx context.Context, id, name string, effectiveAt, expiredAt time.Time, actor string) (*model.LicensePolicy, error) {
	policy, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	candidate := model.LicensePolicy{EffectiveAt: effectiveAt, ExpiredAt: expiredAt}
	var existing []model.LicensePolicy
	err = r.db.WithContext(ctx).Where(
		"organization_id = ? AND id <> ? AND effective_at <= ? AND expired_at >= ?",
		policy.OrganizationID, id, expiredAt, effectiveAt,
	).Find(&existing).Error
	if err != nil {
		return nil, translate(err, "license policy")
	}
	for _, e := range existing {
		if e.Active(now) && candidate.Active(now) {
			return nil, translate(errDuplicateActiveLicense, "license policy")
		}
	}

	policy.Name = name
	policy.EffectiveAt = effectiveAt
	policy.ExpiredAt = expiredAt
	policy.UpdatedAt = now
	policy.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(policy).Error; err != nil {
		return nil, translate(err, "license policy")
	}
	return policy, nil
}

func (r *LicensePolicyRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.LicensePolicy{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "license policy")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "license policy")
	}
	return nil
}
