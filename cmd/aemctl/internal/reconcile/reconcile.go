// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package reconcile filters freshly scanned candidate artifacts against
already-imported records.

Filesystem scans return raw disk matches with no knowledge of what has
already been registered, and imported configs are stored under normalized
folder names (e.g. ~/.m2.{name}/) that never exactly equal the scanned
path. Matching is therefore heuristic: exact path equality for the active
config, and normalized-name or parent-directory comparison for everything
else.

# Limitations

Two legitimately distinct files whose names normalize to the same
comparison key are treated as duplicates and the second is dropped. This
matches the historical behavior; callers that need disambiguation must
surface the raw scan list instead.
*/
package reconcile

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// ImportedRef is the minimal view of an already-registered artifact the
// filter compares against. Any stored entity can provide one.
type ImportedRef struct {
	ID   string
	Name string
	Path string
}

// suffixWords are stripped from candidate names before comparison.
// "settings" covers Maven settings files; "license" and "properties"
// cover AEM license files.
var suffixWords = []string{"settings", "license", "properties"}

// NormalizeName reduces a file name to its comparison key: the extension
// is dropped, known suffix words are removed case-insensitively, leading
// and trailing separator runes are trimmed, and the result is lowercased.
//
// "foo-settings.xml", "FOO_SETTINGS.XML", and "foo.settings" all yield
// "foo".
func NormalizeName(name string) string {
	base := name
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	lower := strings.ToLower(base)
	for _, word := range suffixWords {
		lower = strings.ReplaceAll(lower, word, "")
	}
	return strings.Trim(lower, "-_.")
}

// ParentDir returns the lowercased basename of the directory containing
// path, or "" when the path has no meaningful parent.
func ParentDir(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.ToLower(base)
}

// DeriveName produces a non-empty display name for a candidate.
//
// The fallback chain is: normalized candidate name, then the parent
// directory basename, then a synthetic timestamp+index name. The index
// keeps synthetic names unique when many candidates in one batch
// normalize to nothing.
func DeriveName(c models.Candidate, index int) string {
	if name := NormalizeName(candidateName(c)); name != "" {
		return name
	}
	if parent := ParentDir(c.Path); parent != "" {
		return parent
	}
	return fmt.Sprintf("imported-%d-%d", time.Now().Unix(), index)
}

// Reconcile returns the candidates that are genuinely new, preserving
// scan order.
//
// A candidate is excluded when its exact path equals activePath, or when
// its parent-directory basename or normalized name matches the name or
// id of any existing record. activePath may be empty when no config is
// active.
func Reconcile(candidates []models.Candidate, existing []ImportedRef, activePath string) []models.Candidate {
	excludedPaths := make(map[string]struct{}, 1)
	if activePath != "" {
		excludedPaths[activePath] = struct{}{}
	}

	existingIdentifiers := make(map[string]struct{}, len(existing)*2)
	for _, ref := range existing {
		if ref.Name != "" {
			existingIdentifiers[strings.ToLower(ref.Name)] = struct{}{}
		}
		if ref.ID != "" {
			existingIdentifiers[strings.ToLower(ref.ID)] = struct{}{}
		}
	}

	result := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, found := excludedPaths[c.Path]; found {
			continue
		}
		normalized := NormalizeName(candidateName(c))
		parent := ParentDir(c.Path)
		if _, found := existingIdentifiers[parent]; found && parent != "" {
			continue
		}
		if _, found := existingIdentifiers[normalized]; found && normalized != "" {
			continue
		}
		result = append(result, c)
	}
	return result
}

// candidateName prefers the scanner-provided name, falling back to the
// path basename.
func candidateName(c models.Candidate) string {
	if c.Name != "" {
		return c.Name
	}
	return filepath.Base(c.Path)
}
