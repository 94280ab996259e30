// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"strings"

	"github.com/plexrbac/engine/internal/rbac/decision"
	"github.com/plexrbac/engine/internal/rbac/eval"
	"github.com/plexrbac/engine/internal/rbacapi/models"
)

// Check handles GET /api/check?action=...&resource=...&scope=...&context.key=value.
// Every query parameter prefixed "context." becomes a string-valued entry in
// the constraint evaluation context.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	sec, err := securityContext(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	req := decision.PermissionRequest{
		RealmID:       sec.RealmID,
		PrincipalID:   sec.PrincipalID,
		Action:        q.Get("action"),
		ResourceName:  q.Get("resource"),
		ResourceScope: q.Get("scope"),
		Context:       make(map[string]eval.Value),
	}
	for key, values := range q {
		name, ok := strings.CutPrefix(key, "context.")
		if !ok || len(values) == 0 {
			continue
		}
		req.Context[name] = eval.String(values[0])
	}

	result, err := h.engine.Check(r.Context(), sec, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, models.CheckResponse{Result: string(result)})
}
