package util

import (
	"reflect"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	if !IsEmpty("") || !IsEmpty("   ") || !IsEmpty("\t") {
		t.Error("expected blank strings to be empty")
	}
	if IsEmpty("x") {
		t.Error("expected 'x' to be non-empty")
	}
}

func TestFlattenStrings(t *testing.T) {
	got := FlattenStrings([]string{"/r/*", "", "/git/*", "  "}, ",")
	if got != "/r/*,/git/*" {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestResolveToken(t *testing.T) {
	got := ResolveToken("${contextFolder}", "/srv/app", "${contextFolder}/data")
	if got != "/srv/app/data" {
		t.Errorf("unexpected substitution: %q", got)
	}

	// No token: path is unchanged.
	got = ResolveToken("${contextFolder}", "/srv/app", "/opt/data")
	if got != "/opt/data" {
		t.Errorf("expected unchanged path, got %q", got)
	}
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
