package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	info := Get()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
}

func TestApplySettings(t *testing.T) {
	info := Info{Version: "1.0.0"}
	applySettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-15T10:30:00Z"},
		{Key: "vcs.modified", Value: "true"},
	})
	if info.GitCommit != "0123456" {
		t.Errorf("GitCommit = %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" || !info.IsDirty {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestApplySettingsKeepsLinkerValues(t *testing.T) {
	info := Info{GitCommit: "abc1234", BuildTime: "ldflags"}
	applySettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffffffffff"},
		{Key: "vcs.time", Value: "vcs"},
	})
	if info.GitCommit != "abc1234" || info.BuildTime != "ldflags" {
		t.Errorf("linker values overwritten: %+v", info)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.2.0", GitCommit: "abc1234"}, "1.2.0 (abc1234)"},
		{Info{Version: "1.2.0", GitCommit: "abc1234", IsDirty: true}, "1.2.0 (abc1234-dirty)"},
	}
	for _, tc := range tests {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
