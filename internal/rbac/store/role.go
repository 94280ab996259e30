// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// RoleRepository persists Role entities and their RoleRoleable grant rows.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *model.Role, actor string) (*model.Role, error) {
	now := time.Now().UTC()
	role.ID = newID()
	role.CreatedAt, role.UpdatedAt = now, now
	role.CreatedBy, role.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, translate(err, "role")
	}
	return role, nil
}

func (r *RoleRepository) Get(ctx context.Context, id string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err, "role")
	}
	return &role, nil
}

// ByOrganization loads every role owned by an organization into a map keyed
// by id, the org_roles lookup the aggregator needs for ancestry walks.
func (r *RoleRepository) ByOrganization(ctx context.Context, organizationID string) (map[string]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Where("organization_id = ?", organizationID).Find(&roles).Error; err != nil {
		return nil, translate(err, "role")
	}
	out := make(map[string]model.Role, len(roles))
	for _, role := range roles {
		out[role.ID] = role
	}
	return out, nil
}

func (r *RoleRepository) Update(ctx context.Context, id, name, actor string) (*model.Role, error) {
	role, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Name = name
	role.UpdatedAt = time.Now().UTC()
	role.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(role).Error; err != nil {
		return nil, translate(err, "role")
	}
	return role, nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Role{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "role")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "role")
	}
	return nil
}

// RoleRoleableRepository persists RoleRoleable grant rows.
type RoleRoleableRepository struct {
	db *gorm.DB
}

func NewRoleRoleableRepository(db *gorm.DB) *RoleRoleableRepository {
	return &RoleRoleableRepository{db: db}
}

func (r *RoleRoleableRepository) Grant(ctx context.Context, row *model.RoleRoleable) error {
	if row.EffectiveAt.IsZero() {
		row.EffectiveAt = time.Now().UTC()
	}
	if row.ExpiredAt.IsZero() {
		row.ExpiredAt = row.EffectiveAt.AddDate(100, 0, 0)
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "role grant")
	}
	return nil
}

func (r *RoleRoleableRepository) Revoke(ctx context.Context, roleID, roleableID string, roleableType model.RoleableType) error {
	res := r.db.WithContext(ctx).Delete(&model.RoleRoleable{},
		"role_id = ? AND roleable_id = ? AND roleable_type = ?", roleID, roleableID, roleableType)
	if res.Error != nil {
		return translate(res.Error, "role grant")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "role grant")
	}
	return nil
}

// ActiveByRoleable returns active role grants for a principal or group id.
func (r *RoleRoleableRepository) ActiveByRoleable(ctx context.Context, roleableID string, roleableType model.RoleableType, now time.Time) ([]model.RoleRoleable, error) {
	var rows []model.RoleRoleable
	err := r.db.WithContext(ctx).Where(
		"roleable_id = ? AND roleable_type = ? AND effective_at <= ? AND expired_at >= ?",
		roleableID, roleableType, now, now,
	).Find(&rows).Error
	if err != nil {
		return nil, translate(err, "role grant")
	}
	return rows, nil
}
