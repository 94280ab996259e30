// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvaluateBooleanAndComparisons(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	ok, err := e.Evaluate(`employeeRegion == "Midwest"`, map[string]Value{
		"employeeRegion": String("Midwest"),
	})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Evaluate(`employeeRegion == "Midwest"`, map[string]Value{
		"employeeRegion": String("Northeast"),
	})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvaluateGeoDistance(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	ctx := map[string]Value{
		"customer_lat": Float(46.879967),
		"customer_lon": Float(-121.726906),
	}
	ok, err := e.Evaluate(`geo_distance_km(customer_lat, customer_lon, 47.620422, -122.349358) < 100`, ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ctx = map[string]Value{
		"customer_lat": Float(37.3230),
		"customer_lon": Float(-122.0322),
	}
	ok, err = e.Evaluate(`geo_distance_km(customer_lat, customer_lon, 47.620422, -122.349358) < 100`, ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegexFunctions(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	ok, err := e.Evaluate(`regex_find("(CREATE|DELETE)", "DELETE")`, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Evaluate(`regex_match("CREATE", "CREATE_ACCOUNT")`, nil)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = e.Evaluate(`regex_find("CREATE", "CREATE_ACCOUNT")`, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestClockFunctions(t *testing.T) {
	restore := nowFunc
	defer func() { nowFunc = restore }()
	nowFunc = func() time.Time { return time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC) }

	e, err := New()
	require.NoError(t, err)

	ok, err := e.Evaluate(`current_year() == 2026 && current_month() == 3 && day_of_month() == 5`, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Evaluate(`current_weekday() == "Thursday"`, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluateNonBooleanResultIsEvaluationError(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, err = e.Evaluate(`1 + 2`, nil)
	require.Error(t, err)
}

func TestEvaluateUnknownIdentifierIsEvaluationError(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, err = e.Evaluate(`unknownField == "x"`, nil)
	require.Error(t, err)
}
