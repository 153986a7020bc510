// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package license reads AEM license.properties files and derives license
status from expiry metadata.

AEM license files are Java properties. The interesting keys are
license.product.name, license.product.version, license.customer.name,
license.downloadID, and the split key material stored as license.1,
license.2, ... which must be joined with "-" in numeric order.
*/
package license

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// ExpiringWindowDays is how close to expiry a license is flagged as
// expiring rather than valid.
const ExpiringWindowDays = 30

// ParseFile reads a license.properties file.
//
// Returns an error when the file cannot be read or parsed; missing
// individual keys are not errors, the corresponding fields are left
// empty.
func ParseFile(path string) (models.ParsedLicense, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters: "=:",
	}, path)
	if err != nil {
		return models.ParsedLicense{}, fmt.Errorf("reading license file %s: %w", path, err)
	}

	section := cfg.Section("")
	parsed := models.ParsedLicense{
		ProductName:    section.Key("license.product.name").String(),
		ProductVersion: section.Key("license.product.version").String(),
		CustomerName:   section.Key("license.customer.name").String(),
		DownloadID:     section.Key("license.downloadID").String(),
		ExpiryDate:     section.Key("license.expiry.date").String(),
	}
	parsed.LicenseKey = joinKeyParts(section)
	return parsed, nil
}

// joinKeyParts collects license.1, license.2, ... and joins them with
// "-" in numeric order of the suffix.
func joinKeyParts(section *ini.Section) string {
	type part struct {
		n     int
		value string
	}
	var parts []part
	for _, key := range section.Keys() {
		name := key.Name()
		if !strings.HasPrefix(name, "license.") {
			continue
		}
		suffix := strings.TrimPrefix(name, "license.")
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		parts = append(parts, part{n: n, value: key.String()})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })

	values := make([]string, len(parts))
	for i, p := range parts {
		values[i] = p.value
	}
	return strings.Join(values, "-")
}

// DeriveStatus computes the status of a license record.
//
// Rules, checked in order:
//   - no expiry date: valid when the license file exists (or no file is
//     referenced but a key is present), unknown otherwise — including
//     when the referenced file is missing
//   - expiry date that parses as neither RFC3339 nor YYYY-MM-DD: invalid
//   - expired (days < 0): expired
//   - within ExpiringWindowDays: expiring
//   - otherwise: valid
func DeriveStatus(lic models.License, now time.Time) models.LicenseStatus {
	if lic.ExpiryDate == "" {
		if lic.LicenseFilePath != "" {
			if _, err := os.Stat(lic.LicenseFilePath); err == nil {
				return models.LicenseValid
			}
			return models.LicenseUnknown
		}
		if lic.LicenseKey != "" {
			return models.LicenseValid
		}
		return models.LicenseUnknown
	}

	expiry, err := time.Parse(time.RFC3339, lic.ExpiryDate)
	if err != nil {
		expiry, err = time.Parse("2006-01-02", lic.ExpiryDate)
		if err != nil {
			return models.LicenseInvalid
		}
	}

	days := int(expiry.Sub(now).Hours() / 24)
	switch {
	case days < 0:
		return models.LicenseExpired
	case days <= ExpiringWindowDays:
		return models.LicenseExpiring
	default:
		return models.LicenseValid
	}
}

// Stats aggregates license counts per status for summary output.
type Stats struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
	Invalid  int `json:"invalid"`
	Unknown  int `json:"unknown"`
}

// Summarize tallies the given licenses by status.
func Summarize(licenses []models.License) Stats {
	stats := Stats{Total: len(licenses)}
	for _, lic := range licenses {
		switch lic.Status {
		case models.LicenseValid:
			stats.Valid++
		case models.LicenseExpiring:
			stats.Expiring++
		case models.LicenseExpired:
			stats.Expired++
		case models.LicenseInvalid:
			stats.Invalid++
		default:
			stats.Unknown++
		}
	}
	return stats
}
