// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes build-time metadata, normally stamped in by
// -ldflags at build time.
package version

import (
	"log/slog"
	"runtime"
)

// These are overridden at build time via:
//
//	-ldflags "-X github.com/plexrbac/engine/internal/version.gitRevision=... -X .../buildTime=..."
var (
	gitRevision = "unknown"
	buildTime   = "unknown"
)

// Info holds build and runtime version metadata.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	GitRevision string `json:"gitRevision"`
	BuildTime   string `json:"buildTime"`
	GoOS        string `json:"goOS"`
	GoArch      string `json:"goArch"`
	GoVersion   string `json:"goVersion"`
}

// Get returns the current build's version info.
func Get() Info {
	return Info{
		Name:        "rbac-api",
		Version:     "0.1.0",
		GitRevision: gitRevision,
		BuildTime:   buildTime,
		GoOS:        runtime.GOOS,
		GoArch:      runtime.GOARCH,
		GoVersion:   runtime.Version(),
	}
}

// GetLogKeyValues returns Info as slog key-value pairs, for startup logging.
func GetLogKeyValues() []any {
	v := Get()
	return []any{
		slog.String("version", v.Version),
		slog.String("gitRevision", v.GitRevision),
		slog.String("buildTime", v.BuildTime),
		slog.String("goVersion", v.GoVersion),
	}
}
