// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reconcile

import (
	"strings"
	"testing"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// =============================================================================
// NormalizeName Tests
// =============================================================================

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hyphen suffix", "foo-settings.xml", "foo"},
		{"uppercase underscore", "FOO_SETTINGS.XML", "foo"},
		{"dot suffix", "foo.settings", "foo"},
		{"bare settings", "settings.xml", ""},
		{"license properties", "license-aem.properties", "aem"},
		{"no suffix word", "customer.xml", "customer"},
		{"trailing separators", "bar-_.xml", "bar"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizeName_Idempotence verifies that name variants collapse to
// the same comparison key.
func TestNormalizeName_Idempotence(t *testing.T) {
	variants := []string{"foo-settings.xml", "FOO_SETTINGS.XML", "foo.settings"}
	for _, v := range variants {
		if got := NormalizeName(v); got != "foo" {
			t.Errorf("NormalizeName(%q) = %q, want foo", v, got)
		}
	}
}

// =============================================================================
// DeriveName Tests
// =============================================================================

func TestDeriveName_NeverEmpty(t *testing.T) {
	tests := []struct {
		name string
		cand models.Candidate
	}{
		{"normal", models.Candidate{Path: "/m2/client-a/client-a-settings.xml", Name: "client-a-settings.xml"}},
		{"bare settings with parent", models.Candidate{Path: "/x/y/settings.xml", Name: "settings.xml"}},
		{"bare settings no parent", models.Candidate{Path: "/settings.xml", Name: "settings.xml"}},
		{"empty everything", models.Candidate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveName(tt.cand, 3)
			if got == "" {
				t.Fatalf("DeriveName(%+v) returned empty string", tt.cand)
			}
		})
	}
}

func TestDeriveName_ParentDirFallback(t *testing.T) {
	c := models.Candidate{Path: "/x/y/settings.xml", Name: "settings.xml"}
	if got := DeriveName(c, 0); got != "y" {
		t.Errorf("DeriveName = %q, want parent dir fallback %q", got, "y")
	}
}

func TestDeriveName_SyntheticFallback(t *testing.T) {
	c := models.Candidate{Path: "/settings.xml", Name: "settings.xml"}
	got := DeriveName(c, 7)
	if !strings.HasPrefix(got, "imported-") {
		t.Errorf("DeriveName = %q, want synthetic imported-* name", got)
	}
	if !strings.HasSuffix(got, "-7") {
		t.Errorf("DeriveName = %q, want index suffix for uniqueness", got)
	}
}

// =============================================================================
// Reconcile Tests
// =============================================================================

func TestReconcile_ExcludesActivePath(t *testing.T) {
	candidates := []models.Candidate{
		{Path: "/home/u/.m2/settings.xml", Name: "settings.xml"},
		{Path: "/home/u/.m2.client/settings.xml", Name: "settings.xml"},
	}
	got := Reconcile(candidates, nil, "/home/u/.m2/settings.xml")
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Path != "/home/u/.m2.client/settings.xml" {
		t.Errorf("wrong survivor: %q", got[0].Path)
	}
}

func TestReconcile_ActivePathExcludedRegardlessOfName(t *testing.T) {
	candidates := []models.Candidate{
		{Path: "/active/path.xml", Name: "completely-unique-name.xml"},
	}
	got := Reconcile(candidates, nil, "/active/path.xml")
	if len(got) != 0 {
		t.Errorf("active path must never be re-offered, got %v", got)
	}
}

// TestReconcile_ExactMatchScenario mirrors the dedup case where both the
// parent directory and the normalized name collide with an existing id.
func TestReconcile_ExactMatchScenario(t *testing.T) {
	candidates := []models.Candidate{{Path: "/m2/a/settings.xml"}}
	existing := []ImportedRef{{ID: "a", Name: "a", Path: "/other/a-settings.xml"}}

	got := Reconcile(candidates, existing, "")
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestReconcile_NameCollision(t *testing.T) {
	candidates := []models.Candidate{
		{Path: "/scan/client-b-settings.xml", Name: "client-b-settings.xml"},
		{Path: "/scan/client-c-settings.xml", Name: "client-c-settings.xml"},
	}
	existing := []ImportedRef{{ID: "id-1", Name: "client-b"}}

	got := Reconcile(candidates, existing, "")
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Name != "client-c-settings.xml" {
		t.Errorf("wrong survivor: %q", got[0].Name)
	}
}

func TestReconcile_CaseInsensitive(t *testing.T) {
	candidates := []models.Candidate{
		{Path: "/scan/CLIENT-B-SETTINGS.XML", Name: "CLIENT-B-SETTINGS.XML"},
	}
	existing := []ImportedRef{{Name: "client-b"}}

	if got := Reconcile(candidates, existing, ""); len(got) != 0 {
		t.Errorf("matching must be case-insensitive, got %v", got)
	}
}

func TestReconcile_PreservesScanOrder(t *testing.T) {
	candidates := []models.Candidate{
		{Path: "/scan/z-settings.xml", Name: "z-settings.xml"},
		{Path: "/scan/a-settings.xml", Name: "a-settings.xml"},
		{Path: "/scan/m-settings.xml", Name: "m-settings.xml"},
	}
	got := Reconcile(candidates, nil, "")
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for i, want := range []string{"z-settings.xml", "a-settings.xml", "m-settings.xml"} {
		if got[i].Name != want {
			t.Errorf("position %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	if got := Reconcile(nil, nil, ""); len(got) != 0 {
		t.Errorf("nil candidates should yield empty result, got %v", got)
	}
	candidates := []models.Candidate{{Path: "/a/b.xml", Name: "b.xml"}}
	if got := Reconcile(candidates, nil, ""); len(got) != 1 {
		t.Errorf("no existing records should pass all candidates, got %v", got)
	}
}

// TestReconcile_EmptyNormalizedNeverMatchesEmpty guards against a
// candidate whose name normalizes to "" matching an existing record
// whose identifiers were also skipped as empty.
func TestReconcile_EmptyNormalizedNeverMatchesEmpty(t *testing.T) {
	candidates := []models.Candidate{{Path: "/top/settings.xml", Name: "settings.xml"}}
	existing := []ImportedRef{{ID: "", Name: ""}}

	got := Reconcile(candidates, existing, "")
	if len(got) != 1 {
		t.Errorf("empty identifiers must not exclude candidates, got %v", got)
	}
}
