// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package eval implements the Expression Evaluator: a boolean predicate
// evaluated against a context bag, with a fixed built-in function library.
// The grammar is realized directly by CEL (Common Expression Language),
// which already provides infix boolean/relational/arithmetic expressions,
// parenthesization, literals, and context-variable resolution.
package eval

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/plexrbac/engine/internal/rbac/apperr"
)

// Kind identifies a Value's dynamic type, mirroring the Bool|Int|Float|String
// union of the design.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
)

// Value is one of Bool | Int | Float | String, the context bag's value type.
type Value struct {
	Kind Kind
	B    bool
	I    int64
	F    float64
	S    string
}

func Bool(b bool) Value     { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value     { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, F: f} }
func String(s string) Value { return Value{Kind: KindString, S: s} }

func (v Value) native() any {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.I
	case KindFloat:
		return v.F
	default:
		return v.S
	}
}

// Evaluator compiles and evaluates constraint expressions. It is built once
// per process: the built-in function table is read-only after New, per the
// design note against request-time registration.
type Evaluator struct {
	env *cel.Env

	mu    sync.Mutex
	cache map[string]cel.Program
}

// New constructs an Evaluator with the fixed built-in function library.
func New() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.HomogeneousAggregateLiterals(),
		cel.EagerlyValidateDeclarations(true),
		cel.DefaultUTCTimeZone(true),
		ext.Strings(),
		ext.Math(),
		ClockFunctions(),
		GeoFunctions(),
		RegexFunctions(),
	)
	if err != nil {
		return nil, fmt.Errorf("build cel environment: %w", err)
	}
	return &Evaluator{env: env, cache: make(map[string]cel.Program)}, nil
}

// Evaluate evaluates expr against ctx, returning true/false or an
// apperr.Evaluation error describing why the expression could not be
// resolved to a boolean.
func (e *Evaluator) Evaluate(expr string, ctx map[string]Value) (bool, error) {
	prg, err := e.program(expr, ctx)
	if err != nil {
		return false, err
	}

	vars := make(map[string]any, len(ctx))
	for k, v := range ctx {
		vars[k] = v.native()
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, apperr.Wrap(apperr.Evaluation, fmt.Sprintf("evaluating %q", expr), err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, apperr.Newf(apperr.Evaluation, "expression %q did not evaluate to a boolean, got %T", expr, out.Value())
	}
	return b, nil
}

// program compiles expr (against an environment extended with ctx's
// identifiers as declared variables) and caches the result, since the same
// constraint string is evaluated repeatedly across decisions.
func (e *Evaluator) program(expr string, ctx map[string]Value) (cel.Program, error) {
	e.mu.Lock()
	if prg, ok := e.cache[expr]; ok {
		e.mu.Unlock()
		return prg, nil
	}
	e.mu.Unlock()

	decls := make([]cel.EnvOption, 0, len(ctx))
	for name, v := range ctx {
		decls = append(decls, cel.Variable(name, celTypeOf(v)))
	}
	env, err := e.env.Extend(decls...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Evaluation, fmt.Sprintf("extending environment for %q", expr), err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, apperr.Wrap(apperr.Evaluation, fmt.Sprintf("compiling expression %q", expr), iss.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, apperr.Wrap(apperr.Evaluation, fmt.Sprintf("building program for %q", expr), err)
	}

	e.mu.Lock()
	e.cache[expr] = prg
	e.mu.Unlock()
	return prg, nil
}

func celTypeOf(v Value) *cel.Type {
	switch v.Kind {
	case KindBool:
		return cel.BoolType
	case KindInt:
		return cel.IntType
	case KindFloat:
		return cel.DoubleType
	default:
		return cel.StringType
	}
}
