// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// Default AEM ports by role.
const (
	DefaultAuthorPort  = 4502
	DefaultPublishPort = 4503
)

// quickstartNamePattern matches self-describing quickstart jar names
// like aem-author-p4502.jar or cq-publish-p4503.jar, capturing the role
// and port.
var quickstartNamePattern = regexp.MustCompile(`^(?:aem|cq)-?(author|publish)-?p(\d+)\.jar$`)

// instanceScanDepth caps the walk below each configured root.
const instanceScanDepth = 4

// DiscoveredInstance is a quickstart jar found on disk together with
// the role and port inferred from its name.
type DiscoveredInstance struct {
	JarPath      string              `json:"jarPath"`
	Dir          string              `json:"dir"`
	Name         string              `json:"name"`
	InstanceType models.InstanceType `json:"instanceType"`
	Port         int                 `json:"port"`
}

// ScanAemInstances finds quickstart jars under the configured instance
// roots. Role and port come from the jar name when it is
// self-describing, otherwise from path hints with author defaults.
func (s *Scanner) ScanAemInstances() []DiscoveredInstance {
	var discovered []DiscoveredInstance
	seen := make(map[string]struct{})

	for _, root := range s.InstancePaths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if depthBelow(root, path) > instanceScanDepth {
					return filepath.SkipDir
				}
				return nil
			}
			if !isQuickstartJar(d.Name()) {
				return nil
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}
			discovered = append(discovered, describeQuickstart(path))
			return nil
		})
		if err != nil {
			s.Logger.Debug("instance scan aborted", "root", root, "error", err.Error())
		}
	}
	return discovered
}

// isQuickstartJar reports whether a file name looks like an AEM
// quickstart jar.
func isQuickstartJar(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".jar") {
		return false
	}
	return strings.HasPrefix(lower, "aem") ||
		strings.HasPrefix(lower, "cq") ||
		strings.Contains(lower, "quickstart")
}

// describeQuickstart infers role and port for a quickstart jar.
func describeQuickstart(jarPath string) DiscoveredInstance {
	dir := filepath.Dir(jarPath)
	name := strings.ToLower(filepath.Base(jarPath))

	d := DiscoveredInstance{
		JarPath:      jarPath,
		Dir:          dir,
		Name:         filepath.Base(dir),
		InstanceType: models.InstanceAuthor,
		Port:         DefaultAuthorPort,
	}

	if m := quickstartNamePattern.FindStringSubmatch(name); m != nil {
		d.InstanceType = models.InstanceType(m[1])
		if port, err := strconv.Atoi(m[2]); err == nil {
			d.Port = port
		}
		return d
	}

	// Fallback: look for role hints in the surrounding path.
	lowerPath := strings.ToLower(jarPath)
	if strings.Contains(lowerPath, "publish") {
		d.InstanceType = models.InstancePublish
		d.Port = DefaultPublishPort
	}
	return d
}
