// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aemdev/aemctl/pkg/logging"
)

func quietScanner(javaPaths, nodePaths, instancePaths []string) *Scanner {
	return New(javaPaths, nodePaths, instancePaths, nil, logging.New(logging.Config{Quiet: true}))
}

// makeJVM creates a fake JVM home with a release file and java binary.
func makeJVM(t *testing.T, root, name, version, implementor string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Join(dir, "bin"), 0755); err != nil {
		t.Fatal(err)
	}
	release := "JAVA_VERSION=\"" + version + "\"\nIMPLEMENTOR=\"" + implementor + "\"\n"
	if err := os.WriteFile(filepath.Join(dir, "release"), []byte(release), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bin", "java"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

// =============================================================================
// ExtractMajorVersion Tests
// =============================================================================

func TestExtractMajorVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.8.0_301", "8"},
		{"17.0.1", "17"},
		{"11.0.21+9", "11"},
		{"21", "21"},
		{"1.7.0", "7"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExtractMajorVersion(tt.in); got != tt.want {
				t.Errorf("ExtractMajorVersion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Release File Tests
// =============================================================================

func TestParseReleaseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "release")
	content := `IMPLEMENTOR="Eclipse Adoptium"
IMPLEMENTOR_VERSION="Temurin-17.0.1+12"
JAVA_VERSION="17.0.1"
OS_NAME="Linux"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	version, implementor, ok := parseReleaseFile(path)
	if !ok {
		t.Fatal("parseReleaseFile() ok = false")
	}
	if version != "17.0.1" {
		t.Errorf("version = %q", version)
	}
	if implementor != "Eclipse Adoptium" {
		t.Errorf("implementor = %q", implementor)
	}
}

func TestParseReleaseFile_NoVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "release")
	os.WriteFile(path, []byte("OS_NAME=\"Linux\"\n"), 0644)

	if _, _, ok := parseReleaseFile(path); ok {
		t.Error("expected ok = false without JAVA_VERSION")
	}
}

// =============================================================================
// Vendor Heuristic Tests
// =============================================================================

func TestVendorFromHints(t *testing.T) {
	tests := []struct {
		name        string
		implementor string
		dirName     string
		want        string
	}{
		{"temurin implementor", "Eclipse Adoptium", "jdk-17", "Eclipse Adoptium"},
		{"zulu dir", "", "zulu-17", "Azul Zulu"},
		{"corretto dir", "", "amazon-corretto-11", "Amazon Corretto"},
		{"graalvm", "GraalVM Community", "graalvm-ce", "GraalVM"},
		{"oracle", "Oracle Corporation", "jdk-21", "Oracle"},
		{"openjdk dir", "", "openjdk-17", "OpenJDK"},
		{"unmapped implementor passes through", "FancyVendor Inc", "jdk", "FancyVendor Inc"},
		{"nothing known", "", "jdk-17", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vendorFromHints(tt.implementor, tt.dirName); got != tt.want {
				t.Errorf("vendorFromHints(%q, %q) = %q, want %q", tt.implementor, tt.dirName, got, tt.want)
			}
		})
	}
}

// =============================================================================
// ScanJavaVersions Tests
// =============================================================================

func TestScanJavaVersions(t *testing.T) {
	root := t.TempDir()
	makeJVM(t, root, "temurin-17", "17.0.1", "Eclipse Adoptium")
	makeJVM(t, root, "zulu-8", "1.8.0_301", "Azul Systems, Inc.")

	s := quietScanner([]string{root}, nil, nil)
	t.Setenv("JAVA_HOME", "")
	got := s.ScanJavaVersions()

	if len(got) != 2 {
		t.Fatalf("found %d JVMs, want 2", len(got))
	}
	// Sorted by major version descending.
	if got[0].MajorVersion != "17" {
		t.Errorf("got[0].MajorVersion = %q, want 17", got[0].MajorVersion)
	}
	if got[1].MajorVersion != "8" {
		t.Errorf("got[1].MajorVersion = %q, want 8", got[1].MajorVersion)
	}
	if got[1].Vendor != "Azul Zulu" {
		t.Errorf("got[1].Vendor = %q, want Azul Zulu", got[1].Vendor)
	}
}

func TestScanJavaVersions_IgnoresNonJVMDirs(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "not-a-jvm"), 0755)
	makeJVM(t, root, "jdk-21", "21.0.1", "Oracle Corporation")

	s := quietScanner([]string{root}, nil, nil)
	t.Setenv("JAVA_HOME", "")
	got := s.ScanJavaVersions()
	if len(got) != 1 {
		t.Fatalf("found %d JVMs, want 1", len(got))
	}
}

func TestScanJavaVersions_MissingRoot(t *testing.T) {
	s := quietScanner([]string{"/nonexistent/jvm/root"}, nil, nil)
	t.Setenv("JAVA_HOME", "")
	if got := s.ScanJavaVersions(); len(got) != 0 {
		t.Errorf("expected empty result for missing root, got %v", got)
	}
}

func TestScanJavaVersions_JavaHome(t *testing.T) {
	root := t.TempDir()
	jvm := makeJVM(t, root, "custom-jdk", "11.0.2", "OpenJDK")

	s := quietScanner(nil, nil, nil)
	t.Setenv("JAVA_HOME", jvm)
	got := s.ScanJavaVersions()
	if len(got) != 1 {
		t.Fatalf("found %d JVMs, want 1 from JAVA_HOME", len(got))
	}
	if got[0].Version != "11.0.2" {
		t.Errorf("Version = %q", got[0].Version)
	}
}
