// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package audit records mutations and notable read-path anomalies as
// persisted AuditRecord rows. Writes are best-effort: a failure to persist
// an entry is logged and discarded, never propagated to the caller.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/store"
)

// ActionKind is the kind of operation a record describes: one of the three
// mutations, a read (GET), or a warning (WARN).
type ActionKind string

const (
	ActionCreate ActionKind = "CREATE"
	ActionUpdate ActionKind = "UPDATE"
	ActionDelete ActionKind = "DELETE"
	ActionGet    ActionKind = "GET"
	ActionWarn   ActionKind = "WARN"
)

// Writer persists AuditRecord rows through the repository layer.
type Writer struct {
	repo   *store.AuditRecordRepository
	logger *slog.Logger
}

func New(repo *store.AuditRecordRepository, logger *slog.Logger) *Writer {
	return &Writer{repo: repo, logger: logger.With("module", "audit")}
}

// Record writes an AuditRecord for a mutation or anomaly. sec.PrincipalID is
// the acting principal; context is an arbitrary JSON-serializable payload
// describing the affected entity.
func (w *Writer) Record(ctx context.Context, sec model.SecurityContext, action ActionKind, message string, extra map[string]any) {
	payload, err := json.Marshal(extra)
	if err != nil {
		payload = []byte("{}")
	}
	rec := &model.AuditRecord{
		Message:   message,
		Action:    string(action),
		Context:   string(payload),
		CreatedBy: sec.PrincipalID,
	}
	if err := w.repo.Create(ctx, rec); err != nil {
		w.logger.Warn("audit write failed", "error", err, "action", action, "message", message)
	}
}

// Warn is a convenience wrapper for the Aggregator's dangling-reference
// skips, which are recorded as audit-only warnings per the design.
func (w *Writer) Warn(ctx context.Context, sec model.SecurityContext, message string, extra map[string]any) {
	w.Record(ctx, sec, ActionWarn, message, extra)
}
