package version

import (
	"runtime/debug"
	"testing"
)

func TestResolveStampedWins(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Main:      debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	info := resolve(Info{Version: "v1.0.0", Commit: "0123456789abcdef"}, bi)
	if info.Version != "v1.0.0" || info.Commit != "0123456789abcdef" {
		t.Fatalf("stamped values overridden: %+v", info)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Fatalf("build time = %q", info.BuildTime)
	}
	if info.GoVersion != "go1.26.0" {
		t.Fatalf("go version = %q", info.GoVersion)
	}
}

func TestResolveFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	info := resolve(Info{}, bi)
	if got, want := info.String(), "v0.3.0 (0123456789ab-dirty)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	info := resolve(Info{}, nil)
	if info.Version != develVersion {
		t.Fatalf("version = %q", info.Version)
	}
	if info.GoVersion == "" {
		t.Fatal("expected runtime go version")
	}
	if info.String() != develVersion {
		t.Fatalf("String() = %q", info.String())
	}
}
