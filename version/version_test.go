package version

import (
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if info.Version == "" {
		t.Error("expected a version string")
	}
}

func TestShort(t *testing.T) {
	s := Short()
	if s == "" {
		t.Fatal("expected non-empty short version")
	}
	if !strings.HasPrefix(s, Version) {
		t.Errorf("expected short version to start with %q, got %q", Version, s)
	}
}
