// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/license"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// licenseScanDepth caps the walk below each root; AEM keeps
// license.properties next to the quickstart jar, never deeper.
const licenseScanDepth = 3

// ScanLicenseFiles walks root for license.properties files. Each match
// is parsed so candidates carry product and customer names for display.
func (s *Scanner) ScanLicenseFiles(root string) []models.Candidate {
	var candidates []models.Candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable subtrees
		}
		if d.IsDir() {
			if depthBelow(root, path) > licenseScanDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(d.Name(), "license.properties") {
			return nil
		}
		candidates = append(candidates, s.licenseCandidate(path))
		return nil
	})
	if err != nil {
		s.Logger.Debug("license scan aborted", "root", root, "error", err.Error())
	}
	return candidates
}

// ScanDefaultLicenseLocations searches the configured instance roots
// and the working directory for license files.
func (s *Scanner) ScanDefaultLicenseLocations() []models.Candidate {
	roots := make([]string, 0, len(s.InstancePaths)+1)
	roots = append(roots, s.InstancePaths...)
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}

	var candidates []models.Candidate
	for _, root := range roots {
		candidates = append(candidates, s.ScanLicenseFiles(root)...)
	}
	return dedupeByPath(candidates)
}

func (s *Scanner) licenseCandidate(path string) models.Candidate {
	c := models.Candidate{
		Path:            path,
		Name:            filepath.Base(path),
		ParentDirectory: filepath.Base(filepath.Dir(path)),
	}
	if parsed, err := license.ParseFile(path); err == nil {
		c.ProductName = parsed.ProductName
		c.CustomerName = parsed.CustomerName
	}
	return c
}

func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
