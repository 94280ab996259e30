// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// AuditRecordRepository persists append-only AuditRecord rows.
type AuditRecordRepository struct {
	db *gorm.DB
}

func NewAuditRecordRepository(db *gorm.DB) *AuditRecordRepository {
	return &AuditRecordRepository{db: db}
}

func (r *AuditRecordRepository) Create(ctx context.Context, rec *model.AuditRecord) error {
	rec.ID = newAuditID()
	rec.CreatedAt = time.Now().UTC()
	return translate(r.db.WithContext(ctx).Create(rec).Error, "audit record")
}

func (r *AuditRecordRepository) List(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	var out []model.AuditRecord
	q := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err, "audit record")
	}
	return out, nil
}
