// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestGetDefaults(t *testing.T) {
	info := Get()

	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GitCommit != GitCommit {
		t.Errorf("GitCommit = %q, want %q", info.GitCommit, GitCommit)
	}
	if info.BuildTime != BuildTime {
		t.Errorf("BuildTime = %q, want %q", info.BuildTime, BuildTime)
	}
}

func TestDefaultVersion(t *testing.T) {
	// Before ldflags injection the defaults must be non-empty so health
	// responses and -version output never show blanks.
	if Version == "" {
		t.Error("Version default is empty")
	}
	if GitCommit == "" {
		t.Error("GitCommit default is empty")
	}
	if BuildTime == "" {
		t.Error("BuildTime default is empty")
	}
}
