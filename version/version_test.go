package version

import (
	"strings"
	"testing"
)

func setBuildVars(t *testing.T, v, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, GitCommit, BuildTime = v, commit, buildTime
}

func TestGetUsesLinkerValues(t *testing.T) {
	setBuildVars(t, "1.0.0", "abc1234def", "2026-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"version only", Info{Version: "dev"}, "dev"},
		{"with commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsRelease(t *testing.T) {
	if (Info{Version: "dev"}).IsRelease() {
		t.Error("dev should not be a release")
	}
	if (Info{Version: "1.0.0", Dirty: true}).IsRelease() {
		t.Error("dirty build should not be a release")
	}
	if !(Info{Version: "1.0.0"}).IsRelease() {
		t.Error("expected 1.0.0 to be a release")
	}
}

func TestBanner(t *testing.T) {
	setBuildVars(t, "2.0.0", "", "2026-01-15T10:30:00Z")
	banner := Banner("oswald")
	if !strings.HasPrefix(banner, "oswald 2.0.0") {
		t.Errorf("unexpected banner %q", banner)
	}
	if !strings.HasSuffix(banner, "(built 2026-01-15T10:30:00Z)") {
		t.Errorf("expected build time in banner, got %q", banner)
	}
}
