// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// RealmRepository persists Realm entities. Realm ids are caller-supplied
// names, per the data model ("id (name)"), so Create does not mint a UUID.
type RealmRepository struct {
	db *gorm.DB
}

func NewRealmRepository(db *gorm.DB) *RealmRepository {
	return &RealmRepository{db: db}
}

func (r *RealmRepository) Create(ctx context.Context, realm *model.Realm, actor string) (*model.Realm, error) {
	now := time.Now().UTC()
	realm.CreatedAt, realm.UpdatedAt = now, now
	realm.CreatedBy, realm.UpdatedBy = actor, actor
	if err := r.db.WithContext(ctx).Create(realm).Error; err != nil {
		return nil, translate(err, "realm")
	}
	return realm, nil
}

func (r *RealmRepository) Get(ctx context.Context, id string) (*model.Realm, error) {
	var realm model.Realm
	if err := r.db.WithContext(ctx).First(&realm, "id = ?", id).Error; err != nil {
		return nil, translate(err, "realm")
	}
	return &realm, nil
}

func (r *RealmRepository) List(ctx context.Context) ([]model.Realm, error) {
	var realms []model.Realm
	if err := r.db.WithContext(ctx).Find(&realms).Error; err != nil {
		return nil, translate(err, "realm")
	}
	return realms, nil
}

func (r *RealmRepository) Update(ctx context.Context, id string, description string, actor string) (*model.Realm, error) {
	realm, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	realm.Description = description
	realm.UpdatedAt = time.Now().UTC()
	realm.UpdatedBy = actor
	if err := r.db.WithContext(ctx).Save(realm).Error; err != nil {
		return nil, translate(err, "realm")
	}
	return realm, nil
}

func (r *RealmRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Realm{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "realm")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "realm")
	}
	return nil
}
