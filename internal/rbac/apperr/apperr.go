// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package apperr defines the closed error taxonomy shared by the repository
// layer, the aggregator, the decision engine, and the quota enforcer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the seven error categories the core produces uniformly.
type Kind string

const (
	NotFound       Kind = "NotFound"
	Duplicate      Kind = "Duplicate"
	Persistence    Kind = "Persistence"
	Security       Kind = "Security"
	Evaluation     Kind = "Evaluation"
	QuotaExceeded  Kind = "QuotaExceeded"
	Custom         Kind = "Custom"
)

// Error wraps a Kind, a human message, and an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to Custom for unrecognized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Custom
}

// ToHTTPStatus is the single translator named by the error handling design:
// repository and engine errors map to HTTP status at the edge through this
// function alone, never through ad hoc per-handler switches.
func ToHTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case Duplicate:
		return http.StatusConflict
	case Persistence:
		return http.StatusInternalServerError
	case Security:
		return http.StatusUnauthorized
	case Evaluation:
		return http.StatusUnauthorized
	case QuotaExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
