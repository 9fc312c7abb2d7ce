package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestBuild_Short(t *testing.T) {
	tests := []struct {
		name  string
		build Build
		want  string
	}{
		{"unknown commit", Build{Version: "1.0.0", Commit: "unknown"}, "1.0.0"},
		{"short commit", Build{Version: "1.0.0", Commit: "abc"}, "1.0.0"},
		{"full commit hash", Build{Version: "1.0.0", Commit: "abc1234567890"}, "1.0.0 (abc1234)"},
		{"exactly 7 char commit", Build{Version: "2.0.0", Commit: "1234567"}, "2.0.0"},
		{"dirty tree", Build{Version: "1.0.0", Commit: "abc1234567890", Modified: true}, "1.0.0 (abc1234-dirty)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_WithBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.24.11",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	got := Build{Version: "1.0.0", Commit: "unknown", BuildDate: "unknown"}.withBuildInfo(info)
	if got.Commit != "0123456789abcdef" || got.BuildDate != "2026-10-01T12:00:00Z" {
		t.Errorf("withBuildInfo() = %+v", got)
	}
	if !got.Modified || got.GoVersion != "go1.24.11" {
		t.Errorf("withBuildInfo() = %+v", got)
	}

	// ldflags values win over the VCS stamp.
	got = Build{Version: "1.0.0", Commit: "release", BuildDate: "2026-09-30"}.withBuildInfo(info)
	if got.Commit != "release" || got.BuildDate != "2026-09-30" {
		t.Errorf("ldflags values overwritten: %+v", got)
	}
}

func TestFull(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	defer func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	}()

	Version = "1.2.3"
	Commit = "abcdef123456"
	BuildDate = "2026-01-15"

	got := Full()
	for _, part := range []string{"pbnrt version 1.2.3", "Commit: abcdef123456", "Built: 2026-01-15", "Go: go"} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if parts := strings.Split(Version, "."); len(parts) < 2 {
		t.Errorf("Version %q doesn't appear to be semver", Version)
	}
}
