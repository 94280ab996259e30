// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"net/http"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/model"
)

type contextKey struct{}

var securityContextKey = contextKey{}

// SecurityMiddleware extracts the caller's realm and principal from the
// X-Realm and X-Principal headers and attaches a model.SecurityContext to
// the request context. It does not itself authenticate the caller; it
// establishes who the engine should evaluate claims on behalf of.
func SecurityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sec := model.SecurityContext{
				RealmID:     r.Header.Get("X-Realm"),
				PrincipalID: r.Header.Get("X-Principal"),
			}
			ctx := context.WithValue(r.Context(), securityContextKey, sec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the SecurityContext attached by SecurityMiddleware.
// It returns apperr.Security if the caller presented no principal.
func FromContext(ctx context.Context) (model.SecurityContext, error) {
	sec, ok := ctx.Value(securityContextKey).(model.SecurityContext)
	if !ok || sec.PrincipalID == "" {
		return model.SecurityContext{}, apperr.New(apperr.Security, "missing X-Principal header")
	}
	return sec, nil
}
