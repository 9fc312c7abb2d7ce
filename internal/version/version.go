// Package version reports which pbnrt build is running.
package version

import (
	"runtime"
	"runtime/debug"
)

// Release builds set these through ldflags:
// go build -ldflags "-X pbnrt/internal/version.Version=1.0.0 -X pbnrt/internal/version.Commit=abc123"
// Builds without ldflags fall back to the VCS stamp of the Go toolchain.
var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string
	Commit    string
	BuildDate string
	// Modified is set when the binary was built from a dirty tree.
	Modified  bool
	GoVersion string
}

// Current returns the build information, filling whatever ldflags left
// unset from runtime/debug.
func Current() Build {
	b := Build{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: runtime.Version()}
	if info, ok := debug.ReadBuildInfo(); ok {
		b = b.withBuildInfo(info)
	}
	return b
}

func (b Build) withBuildInfo(info *debug.BuildInfo) Build {
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" && s.Value != "" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.BuildDate == "unknown" && s.Value != "" {
				b.BuildDate = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	if info.GoVersion != "" {
		b.GoVersion = info.GoVersion
	}
	return b
}

// Short is the version plus an abbreviated commit when one is known.
func (b Build) Short() string {
	if b.Commit == "unknown" || len(b.Commit) <= 7 {
		return b.Version
	}
	s := b.Version + " (" + b.Commit[:7]
	if b.Modified {
		s += "-dirty"
	}
	return s + ")"
}

// Info returns the short version string of the running binary.
func Info() string {
	return Current().Short()
}

// Full returns complete version information
func Full() string {
	b := Current()
	commit := b.Commit
	if b.Modified {
		commit += " (modified)"
	}
	return "pbnrt version " + b.Version + "\n" +
		"Commit: " + commit + "\n" +
		"Built: " + b.BuildDate + "\n" +
		"Go: " + b.GoVersion
}
