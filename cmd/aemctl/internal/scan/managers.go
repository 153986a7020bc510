// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// DetectVersionManagers reports which Java/Node version managers are
// installed, by probing their well-known root directories.
func (s *Scanner) DetectVersionManagers() []models.VersionManager {
	home, err := os.UserHomeDir()
	if err != nil {
		s.Logger.Warn("cannot resolve home directory", "error", err.Error())
		return nil
	}

	probes := []struct {
		kind models.VersionManagerKind
		name string
		root string
	}{
		{models.ManagerSDKMan, "SDKMAN!", filepath.Join(home, ".sdkman")},
		{models.ManagerNVM, "nvm", filepath.Join(home, ".nvm")},
		{models.ManagerFNM, "fnm", filepath.Join(home, ".fnm")},
		{models.ManagerFNM, "fnm", filepath.Join(home, ".local", "share", "fnm")},
	}

	seen := make(map[models.VersionManagerKind]struct{})
	var managers []models.VersionManager
	for _, probe := range probes {
		if _, dup := seen[probe.kind]; dup {
			continue
		}
		if !dirExists(probe.root) {
			continue
		}
		seen[probe.kind] = struct{}{}
		managers = append(managers, models.VersionManager{
			ID:   string(probe.kind),
			Name: probe.name,
			Kind: probe.kind,
			Root: probe.root,
		})
	}

	// A system java/node on PATH counts as the "system" manager.
	if _, err := exec.LookPath("java"); err == nil {
		managers = append(managers, models.VersionManager{
			ID:   string(models.ManagerSystem),
			Name: "System PATH",
			Kind: models.ManagerSystem,
		})
	}
	return managers
}
