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
	"sort"
	"strconv"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// ScanNodeVersions walks the configured Node roots and returns the
// versions found, newest first.
//
// Version-manager layouts name each child directory after the version
// ("v18.19.0" for nvm, "18.19.0" for fnm); a child qualifies when it
// contains bin/node.
func (s *Scanner) ScanNodeVersions() []models.NodeInstallation {
	seen := make(map[string]struct{})
	var installations []models.NodeInstallation

	for _, root := range s.NodePaths {
		entries, err := os.ReadDir(root)
		if err != nil {
			s.Logger.Debug("skipping node root", "path", root, "error", err.Error())
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			// fnm nests the installation one level down.
			if nested := filepath.Join(dir, "installation"); dirExists(nested) {
				dir = nested
			}
			if !fileExists(filepath.Join(dir, "bin", "node")) {
				continue
			}
			version := NormalizeNodeVersion(entry.Name())
			if version == "" {
				continue
			}
			if _, dup := seen[version]; dup {
				continue
			}
			seen[version] = struct{}{}
			installations = append(installations, models.NodeInstallation{
				Path:    dir,
				Version: version,
			})
		}
	}

	sort.Slice(installations, func(i, j int) bool {
		return CompareVersions(installations[i].Version, installations[j].Version) > 0
	})
	return installations
}

// NormalizeNodeVersion strips the "v" prefix from a version directory
// name: "v18.19.0" yields "18.19.0". Returns "" for names that don't
// look like versions.
func NormalizeNodeVersion(name string) string {
	version := strings.TrimPrefix(name, "v")
	if version == "" {
		return ""
	}
	first := version[0]
	if first < '0' || first > '9' {
		return ""
	}
	return version
}

// CompareVersions compares dotted numeric versions. Returns a negative
// number when a < b, zero when equal, positive when a > b. Missing
// segments count as zero, so "18" equals "18.0.0".
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(numericPrefix(as[i]))
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(numericPrefix(bs[i]))
		}
		if av != bv {
			return av - bv
		}
	}
	return 0
}

// numericPrefix trims pre-release suffixes like "0-rc1" to "0".
func numericPrefix(s string) string {
	for i, r := range s {
		if r < '0' || r > '9' {
			return s[:i]
		}
	}
	return s
}
