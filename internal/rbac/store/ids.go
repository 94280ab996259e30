// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "github.com/google/uuid"

// newID generates an opaque entity id.
func newID() string {
	return uuid.New().String()
}

// newAuditID generates a time-ordered audit record id, falling back to a
// random v4 id if v7 generation fails (exhausted entropy source, clock
// read failure) — the same fallback the audit logger pattern this is
// grounded on uses.
func newAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
