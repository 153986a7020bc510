// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package license

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

func writeLicense(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "license.properties")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// =============================================================================
// ParseFile Tests
// =============================================================================

func TestParseFile(t *testing.T) {
	path := writeLicense(t, `# Adobe Experience Manager license
license.product.name=Adobe Experience Manager
license.product.version=6.5.0
license.customer.name=Acme Corp
license.downloadID=dl-12345
license.1=AAAA
license.2=BBBB
license.3=CCCC
`)

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if got.ProductName != "Adobe Experience Manager" {
		t.Errorf("ProductName = %q", got.ProductName)
	}
	if got.ProductVersion != "6.5.0" {
		t.Errorf("ProductVersion = %q", got.ProductVersion)
	}
	if got.CustomerName != "Acme Corp" {
		t.Errorf("CustomerName = %q", got.CustomerName)
	}
	if got.DownloadID != "dl-12345" {
		t.Errorf("DownloadID = %q", got.DownloadID)
	}
	if got.LicenseKey != "AAAA-BBBB-CCCC" {
		t.Errorf("LicenseKey = %q, want AAAA-BBBB-CCCC", got.LicenseKey)
	}
}

// TestParseFile_KeyPartsNumericOrder verifies license.10 sorts after
// license.2 (numeric, not lexicographic).
func TestParseFile_KeyPartsNumericOrder(t *testing.T) {
	path := writeLicense(t, `license.10=JJ
license.2=BB
license.1=AA
`)

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if got.LicenseKey != "AA-BB-JJ" {
		t.Errorf("LicenseKey = %q, want AA-BB-JJ", got.LicenseKey)
	}
}

func TestParseFile_MissingKeys(t *testing.T) {
	path := writeLicense(t, "license.product.name=AEM\n")

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if got.CustomerName != "" || got.LicenseKey != "" {
		t.Errorf("missing keys should yield empty fields, got %+v", got)
	}
}

func TestParseFile_Nonexistent(t *testing.T) {
	if _, err := ParseFile("/nonexistent/license.properties"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

// =============================================================================
// DeriveStatus Tests
// =============================================================================

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := writeLicense(t, "license.product.name=AEM\n")

	tests := []struct {
		name string
		lic  models.License
		want models.LicenseStatus
	}{
		{"no expiry, file exists", models.License{LicenseFilePath: existing}, models.LicenseValid},
		{"no expiry, file missing", models.License{LicenseFilePath: "/gone/license.properties"}, models.LicenseUnknown},
		{"no expiry, key only", models.License{LicenseKey: "AAAA"}, models.LicenseValid},
		{"no expiry, nothing", models.License{}, models.LicenseUnknown},
		{"expired", models.License{ExpiryDate: "2026-05-01"}, models.LicenseExpired},
		{"expiring soon", models.License{ExpiryDate: "2026-06-15"}, models.LicenseExpiring},
		{"expiring boundary", models.License{ExpiryDate: "2026-07-01"}, models.LicenseExpiring},
		{"valid", models.License{ExpiryDate: "2027-06-01"}, models.LicenseValid},
		{"rfc3339 expiry accepted", models.License{ExpiryDate: "2027-06-01T00:00:00Z"}, models.LicenseValid},
		{"garbage date", models.License{ExpiryDate: "soon"}, models.LicenseInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.lic, now); got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Summarize Tests
// =============================================================================

func TestSummarize(t *testing.T) {
	licenses := []models.License{
		{Status: models.LicenseValid},
		{Status: models.LicenseValid},
		{Status: models.LicenseExpiring},
		{Status: models.LicenseExpired},
		{Status: models.LicenseInvalid},
		{Status: models.LicenseUnknown},
	}

	got := Summarize(licenses)
	if got.Total != 6 {
		t.Errorf("Total = %d, want 6", got.Total)
	}
	if got.Valid != 2 || got.Expiring != 1 || got.Expired != 1 || got.Invalid != 1 || got.Unknown != 1 {
		t.Errorf("unexpected stats: %+v", got)
	}
}
