// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// ResourceRepository persists Resource entities, tenant-scoped to a realm.
type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource, actor string) (*model.Resource, error) {
	now := time.Now().UTC()
	res.ID = newID()
	res.CreatedAt, res.UpdatedAt = now, now
	res.CreatedBy, res.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		return nil, translate(err, "resource")
	}
	return res, nil
}

func (r *ResourceRepository) Get(ctx context.Context, realmID, id string) (*model.Resource, error) {
	var res model.Resource
	if err := r.db.WithContext(ctx).First(&res, "id = ? AND realm_id = ?", id, realmID).Error; err != nil {
		return nil, translate(err, "resource")
	}
	return &res, nil
}

func (r *ResourceRepository) ListByRealm(ctx context.Context, realmID string) ([]model.Resource, error) {
	var out []model.Resource
	if err := r.db.WithContext(ctx).Where("realm_id = ?", realmID).Find(&out).Error; err != nil {
		return nil, translate(err, "resource")
	}
	return out, nil
}

func (r *ResourceRepository) ByName(ctx context.Context, realmID, resourceName string) ([]model.Resource, error) {
	var out []model.Resource
	if err := r.db.WithContext(ctx).Where("realm_id = ? AND resource_name = ?", realmID, resourceName).Find(&out).Error; err != nil {
		return nil, translate(err, "resource")
	}
	return out, nil
}

func (r *ResourceRepository) Update(ctx context.Context, realmID, id string, allowableActions string, actor string) (*model.Resource, error) {
	res, err := r.Get(ctx, realmID, id)
	if err != nil {
		return nil, err
	}
	res.AllowableActions = allowableActions
	res.UpdatedAt = time.Now().UTC()
	res.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(res).Error; err != nil {
		return nil, translate(err, "resource")
	}
	return res, nil
}

func (r *ResourceRepository) Delete(ctx context.Context, realmID, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Resource{}, "id = ? AND realm_id = ?", id, realmID)
	if res.Error != nil {
		return translate(res.Error, "resource")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "resource")
	}
	return nil
}
