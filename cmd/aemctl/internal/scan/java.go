// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package scan discovers Java and Node installations, Maven settings
files, AEM license files, and AEM instances on the local filesystem.

Scanners return raw disk matches. They know nothing about what has
already been imported; the reconcile package filters their output
against registered records.
*/
package scan

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/pkg/logging"
)

// Scanner walks the configured filesystem roots.
type Scanner struct {
	// JavaPaths are directories whose immediate children are JVM
	// installations, e.g. /usr/lib/jvm.
	JavaPaths []string

	// NodePaths are version-manager roots whose children are Node
	// versions, e.g. ~/.nvm/versions/node.
	NodePaths []string

	// InstancePaths are roots searched recursively for quickstart jars.
	InstancePaths []string

	// MavenPaths are extra roots besides the standard locations.
	MavenPaths []string

	Logger *logging.Logger
}

// New creates a Scanner. A nil logger falls back to the default.
func New(javaPaths, nodePaths, instancePaths, mavenPaths []string, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scanner{
		JavaPaths:     javaPaths,
		NodePaths:     nodePaths,
		InstancePaths: instancePaths,
		MavenPaths:    mavenPaths,
		Logger:        logger,
	}
}

// =============================================================================
// Java discovery
// =============================================================================

// vendorNames maps IMPLEMENTOR hints and directory-name fragments to
// display vendors.
var vendorNames = []struct {
	hint   string
	vendor string
}{
	{"temurin", "Eclipse Adoptium"},
	{"adoptium", "Eclipse Adoptium"},
	{"zulu", "Azul Zulu"},
	{"azul", "Azul Zulu"},
	{"corretto", "Amazon Corretto"},
	{"amazon", "Amazon Corretto"},
	{"graalvm", "GraalVM"},
	{"oracle", "Oracle"},
	{"openjdk", "OpenJDK"},
}

// ScanJavaVersions walks every configured Java root plus JAVA_HOME and
// returns the JVMs found, sorted by major version descending.
//
// Unreadable directories are skipped with a log line; a scan never
// fails because one root is broken.
func (s *Scanner) ScanJavaVersions() []models.JavaInstallation {
	seen := make(map[string]struct{})
	var installations []models.JavaInstallation

	add := func(dir string) {
		resolved, err := filepath.EvalSymlinks(dir)
		if err != nil {
			resolved = dir
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		if inst, ok := inspectJavaDir(resolved); ok {
			seen[resolved] = struct{}{}
			installations = append(installations, inst)
		}
	}

	for _, root := range s.JavaPaths {
		entries, err := os.ReadDir(root)
		if err != nil {
			s.Logger.Debug("skipping java root", "path", root, "error", err.Error())
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && entry.Type()&os.ModeSymlink == 0 {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			// macOS JVM bundles nest the real home one level down.
			if nested := filepath.Join(dir, "Contents", "Home"); dirExists(nested) {
				dir = nested
			}
			add(dir)
		}
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		add(home)
	}

	sort.Slice(installations, func(i, j int) bool {
		return majorAsInt(installations[i].MajorVersion) > majorAsInt(installations[j].MajorVersion)
	})
	return installations
}

// inspectJavaDir reads <dir>/release and reports whether dir looks like
// a JVM home.
func inspectJavaDir(dir string) (models.JavaInstallation, bool) {
	releasePath := filepath.Join(dir, "release")
	version, implementor, ok := parseReleaseFile(releasePath)
	if !ok {
		// No release file: accept the directory only when it has a
		// java binary, with the version left unknown.
		if !fileExists(filepath.Join(dir, "bin", "java")) {
			return models.JavaInstallation{}, false
		}
		return models.JavaInstallation{
			Path:         dir,
			Version:      "unknown",
			MajorVersion: "",
			Vendor:       vendorFromHints("", filepath.Base(dir)),
		}, true
	}

	return models.JavaInstallation{
		Path:         dir,
		Version:      version,
		MajorVersion: ExtractMajorVersion(version),
		Vendor:       vendorFromHints(implementor, filepath.Base(dir)),
	}, true
}

// parseReleaseFile extracts JAVA_VERSION and IMPLEMENTOR from a JVM
// release file. Values are quoted in the file:
//
//	JAVA_VERSION="17.0.1"
//	IMPLEMENTOR="Eclipse Adoptium"
func parseReleaseFile(path string) (version, implementor string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch strings.TrimSpace(key) {
		case "JAVA_VERSION":
			version = value
		case "IMPLEMENTOR":
			implementor = value
		}
	}
	if version == "" {
		return "", "", false
	}
	return version, implementor, true
}

// vendorFromHints resolves a display vendor from the release file's
// IMPLEMENTOR, falling back to fragments of the directory name.
func vendorFromHints(implementor, dirName string) string {
	if implementor != "" {
		lower := strings.ToLower(implementor)
		for _, v := range vendorNames {
			if strings.Contains(lower, v.hint) {
				return v.vendor
			}
		}
		return implementor
	}
	lower := strings.ToLower(dirName)
	for _, v := range vendorNames {
		if strings.Contains(lower, v.hint) {
			return v.vendor
		}
	}
	return "Unknown"
}

// ExtractMajorVersion reduces a full Java version to its major number:
// "1.8.0_301" yields "8", "17.0.1" yields "17".
func ExtractMajorVersion(version string) string {
	if version == "" {
		return ""
	}
	parts := strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return ""
	}
	// Legacy scheme: 1.x.y means major x.
	if parts[0] == "1" && len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}

func majorAsInt(major string) int {
	n := 0
	for _, r := range major {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
