// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// ClaimRepository persists Claim entities and their grant rows.
type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Create(ctx context.Context, claim *model.Claim, actor string) (*model.Claim, error) {
	now := time.Now().UTC()
	claim.ID = newID()
	if claim.Effect == "" {
		claim.Effect = model.EffectAllow
	}
	claim.CreatedAt, claim.UpdatedAt = now, now
	claim.CreatedBy, claim.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		return nil, translate(err, "claim")
	}
	return claim, nil
}

func (r *ClaimRepository) Get(ctx context.Context, realmID, id string) (*model.Claim, error) {
	var c model.Claim
	if err := r.db.WithContext(ctx).First(&c, "id = ? AND realm_id = ?", id, realmID).Error; err != nil {
		return nil, translate(err, "claim")
	}
	return &c, nil
}

// ByIDs bulk-loads claims by id, used by the aggregator to resolve
// claims_by_id without one query per grant row.
func (r *ClaimRepository) ByIDs(ctx context.Context, ids []string) (map[string]model.Claim, error) {
	if len(ids) == 0 {
		return map[string]model.Claim{}, nil
	}
	var claims []model.Claim
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&claims).Error; err != nil {
		return nil, translate(err, "claim")
	}
	out := make(map[string]model.Claim, len(claims))
	for _, c := range claims {
		out[c.ID] = c
	}
	return out, nil
}

// ByRealm lists every claim in a realm.
func (r *ClaimRepository) ByRealm(ctx context.Context, realmID string) ([]model.Claim, error) {
	var claims []model.Claim
	if err := r.db.WithContext(ctx).Where("realm_id = ?", realmID).Find(&claims).Error; err != nil {
		return nil, translate(err, "claim")
	}
	return claims, nil
}

// ByRealmAndResource lists claims for a specific resource within a realm.
func (r *ClaimRepository) ByRealmAndResource(ctx context.Context, realmID, resourceID string) ([]model.Claim, error) {
	var claims []model.Claim
	if err := r.db.WithContext(ctx).Where("realm_id = ? AND resource_id = ?", realmID, resourceID).Find(&claims).Error; err != nil {
		return nil, translate(err, "claim")
	}
	return claims, nil
}

func (r *ClaimRepository) Update(ctx context.Context, realmID, id, action string, effect model.Effect, actor string) (*model.Claim, error) {
	claim, err := r.Get(ctx, realmID, id)
	if err != nil {
		return nil, err
	}
	claim.Action = action
	claim.Effect = effect
	claim.UpdatedAt = time.Now().UTC()
	claim.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(claim).Error; err != nil {
		return nil, translate(err, "claim")
	}
	return claim, nil
}

func (r *ClaimRepository) Delete(ctx context.Context, realmID, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Claim{}, "id = ? AND realm_id = ?", id, realmID)
	if res.Error != nil {
		return translate(res.Error, "claim")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "claim")
	}
	return nil
}

// ClaimClaimableRepository persists ClaimClaimable grant rows.
type ClaimClaimableRepository struct {
	db *gorm.DB
}

func NewClaimClaimableRepository(db *gorm.DB) *ClaimClaimableRepository {
	return &ClaimClaimableRepository{db: db}
}

func (r *ClaimClaimableRepository) Grant(ctx context.Context, row *model.ClaimClaimable) error {
	if row.EffectiveAt.IsZero() {
		row.EffectiveAt = time.Now().UTC()
	}
	if row.ExpiredAt.IsZero() {
		row.ExpiredAt = row.EffectiveAt.AddDate(100, 0, 0)
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "claim grant")
	}
	return nil
}

func (r *ClaimClaimableRepository) Revoke(ctx context.Context, claimID, claimableID string, claimableType model.ClaimableType) error {
	res := r.db.WithContext(ctx).Delete(&model.ClaimClaimable{},
		"claim_id = ? AND claimable_id = ? AND claimable_type = ?", claimID, claimableID, claimableType)
	if res.Error != nil {
		return translate(res.Error, "claim grant")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "claim grant")
	}
	return nil
}

// ActiveByClaimable returns grants for a claimable id/type active at now.
func (r *ClaimClaimableRepository) ActiveByClaimable(ctx context.Context, claimableID string, claimableType model.ClaimableType, now time.Time) ([]model.ClaimClaimable, error) {
	var rows []model.ClaimClaimable
	err := r.db.WithContext(ctx).Where(
		"claimable_id = ? AND claimable_type = ? AND effective_at <= ? AND expired_at >= ?",
		claimableID, claimableType, now, now,
	).Find(&rows).Error
	if err != nil {
		return nil, translate(err, "claim grant")
	}
	return rows, nil
}
