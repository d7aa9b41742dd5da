// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

// Set at build time via ldflags, e.g.
//
//	go build -ldflags "-X github.com/avolkau/minipress/internal/version.Version=v1.2.3"
var (
	Version   = "dev"     // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit = "unknown" // Short git commit hash (e.g., "abc1234")
	BuildTime = "unknown" // Build timestamp in RFC3339 format
)

// Info contains build-time version information.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// Get returns the build-time version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}
