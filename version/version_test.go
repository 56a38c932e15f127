package version

import "testing"

func TestGet_UsesLinkerValues(t *testing.T) {
	origV, origC, origB := Version, GitCommit, BuildTime
	defer func() { Version, GitCommit, BuildTime = origV, origC, origB }()

	Version, GitCommit, BuildTime = "1.4.0", "abcdef0123", "2026-01-02T03:04:05Z"
	info := Get()
	if info.Version != "1.4.0" {
		t.Errorf("version = %q", info.Version)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("commit must be shortened, got %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("build time = %q", info.BuildTime)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
