// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// PrincipalRepository persists Principal entities.
type PrincipalRepository struct {
	db *gorm.DB
}

func NewPrincipalRepository(db *gorm.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *model.Principal, actor string) (*model.Principal, error) {
	now := time.Now().UTC()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now
	p.CreatedBy, p.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, translate(err, "principal")
	}
	return p, nil
}

func (r *PrincipalRepository) Get(ctx context.Context, id string) (*model.Principal, error) {
	var p model.Principal
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "principal")
	}
	return &p, nil
}

func (r *PrincipalRepository) ListByOrganization(ctx context.Context, organizationID string) ([]model.Principal, error) {
	var out []model.Principal
	if err := r.db.WithContext(ctx).Where("organization_id = ?", organizationID).Find(&out).Error; err != nil {
		return nil, translate(err, "principal")
	}
	return out, nil
}

// GroupIDsForPrincipal returns the ids of groups the principal belongs to.
func (r *PrincipalRepository) GroupIDsForPrincipal(ctx context.Context, principalID string) ([]string, error) {
	var rows []model.GroupPrincipal
	if err := r.db.WithContext(ctx).Where("principal_id = ?", principalID).Find(&rows).Error; err != nil {
		return nil, translate(err, "group membership")
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.GroupID)
	}
	return ids, nil
}

func (r *PrincipalRepository) Update(ctx context.Context, id, username, actor string) (*model.Principal, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Username = username
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, translate(err, "principal")
	}
	return p, nil
}

func (r *PrincipalRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Principal{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "principal")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "principal")
	}
	return nil
}

// GroupRepository persists Group entities.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g *model.Group, actor string) (*model.Group, error) {
	now := time.Now().UTC()
	g.ID = newID()
	g.CreatedAt, g.UpdatedAt = now, now
	g.CreatedBy, g.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, translate(err, "group")
	}
	return g, nil
}

func (r *GroupRepository) Get(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, translate(err, "group")
	}
	return &g, nil
}

func (r *GroupRepository) ByOrganization(ctx context.Context, organizationID string) (map[string]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Where("organization_id = ?", organizationID).Find(&groups).Error; err != nil {
		return nil, translate(err, "group")
	}
	out := make(map[string]model.Group, len(groups))
	for _, g := range groups {
		out[g.ID] = g
	}
	return out, nil
}

func (r *GroupRepository) AddPrincipal(ctx context.Context, groupID, principalID string) error {
	row := &model.GroupPrincipal{GroupID: groupID, PrincipalID: principalID}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "group membership")
	}
	return nil
}

func (r *GroupRepository) RemovePrincipal(ctx context.Context, groupID, principalID string) error {
	res := r.db.WithContext(ctx).Delete(&model.GroupPrincipal{}, "group_id = ? AND principal_id = ?", groupID, principalID)
	if res.Error != nil {
		return translate(res.Error, "group membership")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "group membership")
	}
	return nil
}

func (r *GroupRepository) Update(ctx context.Context, id, name, actor string) (*model.Group, error) {
	g, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Name = name
	g.UpdatedAt = time.Now().UTC()
	g.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(g).Error; err != nil {
		return nil, translate(err, "group")
	}
	return g, nil
}

func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Group{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "group")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "group")
	}
	return nil
}
