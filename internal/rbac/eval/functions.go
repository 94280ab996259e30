// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"fmt"
	"math"
	"regexp"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

const earthRadiusKm = 6371.0

// GeoFunctions registers geo_distance_km, the haversine great-circle
// distance between two lat/lon points in kilometers.
func GeoFunctions() cel.EnvOption {
	return cel.Function("geo_distance_km",
		cel.Overload("geo_distance_km_double_double_double_double",
			[]*cel.Type{cel.DoubleType, cel.DoubleType, cel.DoubleType, cel.DoubleType},
			cel.DoubleType,
			cel.FunctionBinding(func(args ...ref.Val) ref.Val {
				lat1 := args[0].Value().(float64)
				lon1 := args[1].Value().(float64)
				lat2 := args[2].Value().(float64)
				lon2 := args[3].Value().(float64)
				return types.Double(haversineKm(lat1, lon1, lat2, lon2))
			}),
		),
	)
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// regexCache memoizes compiled patterns: constraint strings (and therefore
// their embedded regex literals) repeat across decisions.
var regexCache sync.Map // map[string]*regexp.Regexp

func compileCached(pattern string) (*regexp.Regexp, error) {
	if v, ok := regexCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// RegexFind reports whether pattern is found anywhere in subject. It is the
// same regex_find semantics CEL expressions get via the built-in function,
// exposed directly for the Decision Engine's action-regex match so that
// match inputs (which may contain arbitrary regex metacharacters) never
// have to round-trip through CEL string-literal syntax.
func RegexFind(pattern, subject string) (bool, error) {
	re, err := compileCached(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid action pattern %q: %w", pattern, err)
	}
	return re.MatchString(subject), nil
}

// RegexFunctions registers regex_match (full-string match) and regex_find
// (found anywhere in the subject).
func RegexFunctions() cel.EnvOption {
	return cel.Lib(regexLib{})
}

type regexLib struct{}

func (regexLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("regex_match",
			cel.Overload("regex_match_string_string", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					re, err := compileCached(lhs.Value().(string))
					if err != nil {
						return types.NewErr("regex_match: invalid pattern: %v", err)
					}
					return types.Bool(fullMatch(re, rhs.Value().(string)))
				}),
			),
		),
		cel.Function("regex_find",
			cel.Overload("regex_find_string_string", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					re, err := compileCached(lhs.Value().(string))
					if err != nil {
						return types.NewErr("regex_find: invalid pattern: %v", err)
					}
					return types.Bool(re.MatchString(rhs.Value().(string)))
				}),
			),
		),
	}
}

func (regexLib) ProgramOptions() []cel.ProgramOption { return nil }

// fullMatch anchors pattern against the entire subject string, since Go's
// regexp.MatchString (used for regex_find) already searches anywhere.
func fullMatch(re *regexp.Regexp, s string) bool {
	anchored, err := compileCached(`^(?:` + re.String() + `)\z`)
	if err != nil {
		return false
	}
	return anchored.MatchString(s)
}

// ClockFunctions registers the fixed set of UTC-now accessors and the two
// date/datetime-to-epoch-seconds constructors.
func ClockFunctions() cel.EnvOption {
	return cel.Lib(clockLib{})
}

type clockLib struct{}

func (clockLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		nowFn("current_year", func(t time.Time) int64 { return int64(t.Year()) }),
		nowFn("current_month", func(t time.Time) int64 { return int64(t.Month()) }),
		nowFn("current_ordinal", func(t time.Time) int64 { return int64(t.YearDay()) }),
		nowFn("day_of_month", func(t time.Time) int64 { return int64(t.Day()) }),
		nowFn("current_epoch_secs", func(t time.Time) int64 { return t.Unix() }),
		cel.Function("current_weekday",
			cel.Overload("current_weekday_", []*cel.Type{}, cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.String(nowFunc().Weekday().String())
				}),
			),
		),
		cel.Function("date_epoch_secs",
			cel.Overload("date_epoch_secs_int_int_int",
				[]*cel.Type{cel.IntType, cel.IntType, cel.IntType}, cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					y := args[0].Value().(int64)
					m := args[1].Value().(int64)
					d := args[2].Value().(int64)
					t := time.Date(int(y), time.Month(m), int(d), 0, 0, 0, 0, time.UTC)
					return types.Int(t.Unix())
				}),
			),
		),
		cel.Function("datetime_epoch_secs",
			cel.Overload("datetime_epoch_secs_int_int_int_int_int_int",
				[]*cel.Type{cel.IntType, cel.IntType, cel.IntType, cel.IntType, cel.IntType, cel.IntType}, cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					y := args[0].Value().(int64)
					m := args[1].Value().(int64)
					d := args[2].Value().(int64)
					h := args[3].Value().(int64)
					mi := args[4].Value().(int64)
					s := args[5].Value().(int64)
					t := time.Date(int(y), time.Month(m), int(d), int(h), int(mi), int(s), 0, time.UTC)
					return types.Int(t.Unix())
				}),
			),
		),
	}
}

func (clockLib) ProgramOptions() []cel.ProgramOption { return nil }

func nowFn(name string, extract func(time.Time) int64) cel.EnvOption {
	return cel.Function(name,
		cel.Overload(name+"_", []*cel.Type{}, cel.IntType,
			cel.FunctionBinding(func(args ...ref.Val) ref.Val {
				return types.Int(extract(nowFunc()))
			}),
		),
	)
}

// nowFunc is a var, not a direct time.Now() call, so tests can substitute a
// fixed clock without reaching into the evaluator's internals.
var nowFunc = func() time.Time { return time.Now().UTC() }
