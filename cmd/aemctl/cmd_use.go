// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/scan"
)

func runUseJava(a *appContext, cmd *cobra.Command, args []string) error {
	install := models.JavaInstallation{
		Path:         args[0],
		Version:      switchVersion,
		MajorVersion: scan.ExtractMajorVersion(switchVersion),
	}

	result := a.switcher.SwitchJava(install)
	reportSwitch(a, "java", install.Path, result)
	if jsonOutput {
		return outputJSON(result)
	}
	return nil
}

func runUseNode(a *appContext, cmd *cobra.Command, args []string) error {
	version := switchVersion
	if version == "" {
		version = scan.NormalizeNodeVersion(filepath.Base(args[0]))
	}
	install := models.NodeInstallation{
		Path:    args[0],
		Version: version,
	}

	result := a.switcher.SwitchNode(install)
	reportSwitch(a, "node", install.Path, result)
	if jsonOutput {
		return outputJSON(result)
	}
	return nil
}

// reportSwitch prints the outcome and journals successful switches.
func reportSwitch(a *appContext, runtime, path string, result models.SwitchResult) {
	if !jsonOutput {
		if result.Success {
			printSuccess("%s", result.Message)
		} else {
			printWarning("%s", result.Message)
		}
		for _, e := range result.Errors {
			printWarning("  %s", e)
		}
	}

	if result.Success && a.journal != nil {
		if err := a.journal.Record(journal.Event{
			Kind:    journal.KindVersionSwitched,
			Summary: result.Message,
			Fields:  map[string]string{"runtime": runtime, "path": path},
		}); err != nil {
			a.logger.Warn("journal write failed", "error", err.Error())
		}
	}
}
