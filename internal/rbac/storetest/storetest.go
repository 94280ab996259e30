// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package storetest provides an in-memory database fixture shared by the
// core packages' tests, so decision/quota/aggregator tests exercise a real
// (if ephemeral) store instead of hand-rolled mocks.
package storetest

import (
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plexrbac/engine/internal/rbac/store"
)

// TB is the subset of *testing.T (and Ginkgo's GinkgoTInterface) NewDB
// needs, letting both testify-style and ginkgo-style specs share this
// fixture.
type TB interface {
	Helper()
	Name() string
	Errorf(format string, args ...any)
	FailNow()
}

// NewDB opens a fresh SQLite in-memory database and migrates every entity
// table, failing the test immediately on error.
func NewDB(t TB) *gorm.DB {
	t.Helper()
	// A unique DSN per test keeps parallel subtests from sharing a database,
	// since ":memory:" alone is scoped to the connection, not the process.
	db, err := store.Open("sqlite://file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))
	return db
}
