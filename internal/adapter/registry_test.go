package adapter

import (
	"testing"

	"github.com/restage/restage/internal/workspace"
)

func TestResolveBuiltins(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		appID string
		want  workspace.Capability
	}{
		{"Safari", workspace.CapabilityTabs},
		{"com.apple.Safari", workspace.CapabilityTabs},
		{"Microsoft Word", workspace.CapabilityDocuments},
		{"com.microsoft.Excel", workspace.CapabilityDocuments},
		{"Logos", workspace.CapabilityLayout},
		{"Terminal", workspace.CapabilityNone},
		{"", workspace.CapabilityNone},
	}
	for _, tc := range cases {
		if got := r.Resolve(tc.appID).Capability(); got != tc.want {
			t.Fatalf("Resolve(%q).Capability() = %s, want %s", tc.appID, got, tc.want)
		}
	}
}

func TestResolveExactBeatsPrefix(t *testing.T) {
	r := NewEmptyRegistry()
	r.RegisterPrefix("com.microsoft.", DocumentAdapter{})
	r.Register("com.microsoft.Edge", TabAdapter{})
	if got := r.Resolve("com.microsoft.Edge").Capability(); got != workspace.CapabilityTabs {
		t.Fatalf("exact rule must win, got %s", got)
	}
	if got := r.Resolve("com.microsoft.Word").Capability(); got != workspace.CapabilityDocuments {
		t.Fatalf("prefix rule must apply, got %s", got)
	}
}

func TestResolveLongestPrefixWins(t *testing.T) {
	r := NewEmptyRegistry()
	r.RegisterPrefix("com.", Generic{})
	r.RegisterPrefix("com.jetbrains.", DocumentAdapter{})
	if got := r.Resolve("com.jetbrains.goland").Capability(); got != workspace.CapabilityDocuments {
		t.Fatalf("longest prefix must win, got %s", got)
	}
}

func TestRegisterFamily(t *testing.T) {
	r := NewEmptyRegistry()
	if err := r.RegisterFamily("Firefox", "tabs"); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterFamily("org.mozilla.", "tabs"); err != nil {
		t.Fatal(err)
	}
	if got := r.Resolve("Firefox").Capability(); got != workspace.CapabilityTabs {
		t.Fatalf("exact family binding, got %s", got)
	}
	if got := r.Resolve("org.mozilla.firefox").Capability(); got != workspace.CapabilityTabs {
		t.Fatalf("prefix family binding, got %s", got)
	}
	if err := r.RegisterFamily("X", "spreadsheets"); err == nil {
		t.Fatal("unknown family must be rejected")
	}
}

func TestForFamily(t *testing.T) {
	for family, want := range map[string]workspace.Capability{
		"tabs":      workspace.CapabilityTabs,
		"documents": workspace.CapabilityDocuments,
		"layout":    workspace.CapabilityLayout,
		"generic":   workspace.CapabilityNone,
		" Tabs ":    workspace.CapabilityTabs,
	} {
		a, err := ForFamily(family)
		if err != nil {
			t.Fatalf("ForFamily(%q): %v", family, err)
		}
		if a.Capability() != want {
			t.Fatalf("ForFamily(%q) = %s, want %s", family, a.Capability(), want)
		}
	}
}
