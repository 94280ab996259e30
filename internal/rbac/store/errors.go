// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/apperr"
)

// translate normalizes a gorm error into the closed apperr taxonomy. GORM
// has no portable "is this a uniqueness violation" classifier, so duplicate
// detection falls back to substring matching on the driver-specific message
// (SQLite, Postgres, and MySQL all phrase it differently).
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Newf(apperr.NotFound, "%s not found", entity)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return apperr.Wrap(apperr.Duplicate, entity+" already exists", err)
	}
	return apperr.Wrap(apperr.Persistence, "storage error on "+entity, err)
}
