// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/model"
)

// ResourceQuotaRepository persists ResourceQuota entities.
type ResourceQuotaRepository struct {
	db *gorm.DB
}

func NewResourceQuotaRepository(db *gorm.DB) *ResourceQuotaRepository {
	return &ResourceQuotaRepository{db: db}
}

func (r *ResourceQuotaRepository) Create(ctx context.Context, q *model.ResourceQuota, actor string) (*model.ResourceQuota, error) {
	now := time.Now().UTC()
	q.ID = newID()
	q.CreatedAt, q.UpdatedAt = now, now
	q.CreatedBy, q.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, translate(err, "resource quota")
	}
	return q, nil
}

func (r *ResourceQuotaRepository) Get(ctx context.Context, id string) (*model.ResourceQuota, error) {
	var q model.ResourceQuota
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err, "resource quota")
	}
	return &q, nil
}

func (r *ResourceQuotaRepository) Update(ctx context.Context, id string, maxValue int64, effectiveAt, expiredAt time.Time, actor string) (*model.ResourceQuota, error) {
	q, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	q.MaxValue = maxValue
	q.EffectiveAt = effectiveAt
	q.ExpiredAt = expiredAt
	q.UpdatedAt = time.Now().UTC()
	q.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(q).Error; err != nil {
		return nil, translate(err, "resource quota")
	}
	return q, nil
}

// activeForUpdate returns the active quota for (resourceID, scope), taking
// a row lock on supporting drivers so the quota enforcer's check-then-insert
// is atomic across concurrent callers. Must be called inside db's active
// transaction (pass a *gorm.DB obtained from db.Transaction's callback).
func activeForUpdate(tx *gorm.DB, resourceID, scope string, now time.Time) (*model.ResourceQuota, error) {
	var q model.ResourceQuota
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(
		"resource_id = ? AND scope = ? AND effective_at <= ? AND expired_at >= ?",
		resourceID, scope, now, now,
	).Order("effective_at desc").First(&q).Error
	if err != nil {
		return nil, translate(err, "resource quota")
	}
	return &q, nil
}

// ResourceInstanceRepository persists ResourceInstance entities and backs
// the quota enforcer's atomic check-and-insert.
type ResourceInstanceRepository struct {
	db *gorm.DB
}

func NewResourceInstanceRepository(db *gorm.DB) *ResourceInstanceRepository {
	return &ResourceInstanceRepository{db: db}
}

func (r *ResourceInstanceRepository) Get(ctx context.Context, id string) (*model.ResourceInstance, error) {
	var inst model.ResourceInstance
	if err := r.db.WithContext(ctx).First(&inst, "id = ?", id).Error; err != nil {
		return nil, translate(err, "resource instance")
	}
	return &inst, nil
}

func (r *ResourceInstanceRepository) Update(ctx context.Context, id string, status model.InstanceStatus, actor string) (*model.ResourceInstance, error) {
	inst, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inst.Status = status
	inst.UpdatedAt = time.Now().UTC()
	inst.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(inst).Error; err != nil {
		return nil, translate(err, "resource instance")
	}
	return inst, nil
}

// CountCompleted counts COMPLETED instances for (resourceID, scope).
func CountCompleted(tx *gorm.DB, resourceID, scope string) (int64, error) {
	var count int64
	err := tx.Model(&model.ResourceInstance{}).Where(
		"resource_id = ? AND scope = ? AND status = ?", resourceID, scope, model.StatusCompleted,
	).Count(&count).Error
	if err != nil {
		return 0, translate(err, "resource instance")
	}
	return count, nil
}

// CountRecentInflight counts INFLIGHT instances created within the last
// hour for (resourceID, scope); older in-flight rows are abandoned and do
// not count against the quota.
func CountRecentInflight(tx *gorm.DB, resourceID, scope string, now time.Time) (int64, error) {
	var count int64
	err := tx.Model(&model.ResourceInstance{}).Where(
		"resource_id = ? AND scope = ? AND status = ? AND created_at >= ?",
		resourceID, scope, model.StatusInflight, now.Add(-time.Hour),
	).Count(&count).Error
	if err != nil {
		return 0, translate(err, "resource instance")
	}
	return count, nil
}

// CreateLocked is the atomic half of the quota enforcer: within a single
// transaction it row-locks the active quota, recomputes the count, and
// either inserts the instance or fails QuotaExceeded. The transaction
// boundary plus the row lock is what prevents two concurrent creators from
// both observing count = max-1.
func (r *ResourceInstanceRepository) CreateLocked(ctx context.Context, inst *model.ResourceInstance, licensePolicyID string, now time.Time, check func(quota *model.ResourceQuota, completed, recentInflight int64) error) (*model.ResourceInstance, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quota, err := activeForUpdate(tx, inst.ResourceID, inst.Scope, now)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				return apperr.New(apperr.QuotaExceeded, "quota not found")
			}
			return err
		}
		completed, err := CountCompleted(tx, inst.ResourceID, inst.Scope)
		if err != nil {
			return err
		}
		recent, err := CountRecentInflight(tx, inst.ResourceID, inst.Scope, now)
		if err != nil {
			return err
		}
		if err := check(quota, completed, recent); err != nil {
			return err
		}

		inst.ID = newID()
		inst.LicensePolicyID = licensePolicyID
		inst.CreatedAt, inst.UpdatedAt = now, now
		if err := tx.Create(inst).Error; err != nil {
			return translate(err, "resource instance")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}
