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
	"regexp"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

var (
	xmlCommentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	localRepoPattern  = regexp.MustCompile(`<localRepository>\s*(.*?)\s*</localRepository>`)
)

// ScanMavenSettings discovers Maven settings files.
//
// With an empty root, the standard locations are searched: settings
// files directly under ~/.m2 (settings.xml, settings-*.xml), sibling
// config folders named ~/.m2.{name}/, $MAVEN_HOME and $M2_HOME
// conf/settings.xml, plus any extra configured roots. With a non-empty
// root, only that directory is walked.
func (s *Scanner) ScanMavenSettings(root string) []models.Candidate {
	if root != "" {
		return s.collectSettingsFiles(root)
	}

	var candidates []models.Candidate
	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, s.collectSettingsFiles(filepath.Join(home, ".m2"))...)
		candidates = append(candidates, s.collectM2Siblings(home)...)
	}
	for _, env := range []string{"MAVEN_HOME", "M2_HOME"} {
		if mavenHome := os.Getenv(env); mavenHome != "" {
			path := filepath.Join(mavenHome, "conf", "settings.xml")
			if fileExists(path) {
				candidates = append(candidates, s.settingsCandidate(path))
			}
		}
	}
	for _, extra := range s.MavenPaths {
		candidates = append(candidates, s.collectSettingsFiles(extra)...)
	}
	return dedupeByPath(candidates)
}

// collectSettingsFiles returns candidates for every settings*.xml
// directly under dir.
func (s *Scanner) collectSettingsFiles(dir string) []models.Candidate {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.Logger.Debug("skipping maven root", "path", dir, "error", err.Error())
		return nil
	}
	var candidates []models.Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasPrefix(name, "settings") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		candidates = append(candidates, s.settingsCandidate(filepath.Join(dir, entry.Name())))
	}
	return candidates
}

// collectM2Siblings finds imported-config folders named ~/.m2.{name}/
// that hold a settings.xml.
func (s *Scanner) collectM2Siblings(home string) []models.Candidate {
	entries, err := os.ReadDir(home)
	if err != nil {
		return nil
	}
	var candidates []models.Candidate
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ".m2.") {
			continue
		}
		path := filepath.Join(home, entry.Name(), "settings.xml")
		if fileExists(path) {
			candidates = append(candidates, s.settingsCandidate(path))
		}
	}
	return candidates
}

func (s *Scanner) settingsCandidate(path string) models.Candidate {
	c := models.Candidate{
		Path:            path,
		Name:            filepath.Base(path),
		ParentDirectory: filepath.Base(filepath.Dir(path)),
	}
	if repo, err := ExtractLocalRepository(path); err == nil {
		c.LocalRepository = repo
	}
	return c
}

// ExtractLocalRepository reads the <localRepository> element from a
// settings.xml. Commented-out declarations are ignored, and values
// containing unresolved ${...} placeholders are rejected because they
// cannot be displayed as a usable path.
//
// Returns "" with a nil error when the file has no usable declaration.
func ExtractLocalRepository(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	stripped := xmlCommentPattern.ReplaceAll(data, nil)
	match := localRepoPattern.FindSubmatch(stripped)
	if match == nil {
		return "", nil
	}
	value := strings.TrimSpace(string(match[1]))
	if strings.Contains(value, "${") {
		return "", nil
	}
	return value, nil
}

func dedupeByPath(candidates []models.Candidate) []models.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if _, dup := seen[c.Path]; dup {
			continue
		}
		seen[c.Path] = struct{}{}
		out = append(out, c)
	}
	return out
}
