// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package store is the Repository Layer: CRUD with invariants over the
// entity types of the data model, returning domain values rather than
// storage rows.
package store

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plexrbac/engine/internal/rbac/model"
)

// Open dials the database named by DATABASE_URL, dispatching on scheme:
// postgres://, mysql://, or sqlite://<path> (tests use an in-memory
// shared-cache name such as sqlite://file:<name>?mode=memory&cache=shared).
// DATABASE_URL is the only required runtime configuration of the core.
func Open(databaseURL string) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "mysql://"):
		return mysql.Open(strings.TrimPrefix(databaseURL, "mysql://")), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case databaseURL == "":
		return nil, fmt.Errorf("DATABASE_URL must not be empty")
	default:
		// bare path or ":memory:"-style DSN, handed straight to the sqlite driver
		return sqlite.Open(databaseURL), nil
	}
}

// AutoMigrate registers every entity table named in the data model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Realm{},
		&model.Resource{},
		&model.Claim{},
		&model.Organization{},
		&model.LicensePolicy{},
		&model.Principal{},
		&model.Group{},
		&model.Role{},
		&model.ResourceInstance{},
		&model.ResourceQuota{},
		&model.GroupPrincipal{},
		&model.RoleRoleable{},
		&model.ClaimClaimable{},
		&model.AuditRecord{},
	)
}
