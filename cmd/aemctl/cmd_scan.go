// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
)

func runScanJava(a *appContext, cmd *cobra.Command, args []string) error {
	var installs []models.JavaInstallation
	_ = util.SpinWhile("Scanning for JVMs", func() error {
		installs = a.scanner.ScanJavaVersions()
		return nil
	})

	if jsonOutput {
		return outputJSON(installs)
	}
	if len(installs) == 0 {
		printWarning("no JVMs found under the configured scan roots")
		return nil
	}
	rows := make([][]string, 0, len(installs))
	for _, j := range installs {
		rows = append(rows, []string{j.MajorVersion, j.Version, dash(j.Vendor), j.Path})
	}
	renderTable([]string{"MAJOR", "VERSION", "VENDOR", "PATH"}, rows)
	return nil
}

func runScanNode(a *appContext, cmd *cobra.Command, args []string) error {
	var installs []models.NodeInstallation
	_ = util.SpinWhile("Scanning for Node.js versions", func() error {
		installs = a.scanner.ScanNodeVersions()
		return nil
	})

	if jsonOutput {
		return outputJSON(installs)
	}
	if len(installs) == 0 {
		printWarning("no Node.js versions found under the configured scan roots")
		return nil
	}
	rows := make([][]string, 0, len(installs))
	for _, n := range installs {
		rows = append(rows, []string{n.Version, n.Path})
	}
	renderTable([]string{"VERSION", "PATH"}, rows)
	return nil
}

func runScanManagers(a *appContext, cmd *cobra.Command, args []string) error {
	managers := a.scanner.DetectVersionManagers()

	if jsonOutput {
		return outputJSON(managers)
	}
	if len(managers) == 0 {
		printWarning("no version managers detected")
		return nil
	}
	rows := make([][]string, 0, len(managers))
	for _, m := range managers {
		rows = append(rows, []string{m.Name, string(m.Kind), m.Root})
	}
	renderTable([]string{"NAME", "KIND", "ROOT"}, rows)
	return nil
}

func runScanMaven(a *appContext, cmd *cobra.Command, args []string) error {
	candidates := a.scanner.ScanMavenSettings(scanRoot)

	if jsonOutput {
		return outputJSON(candidates)
	}
	if len(candidates) == 0 {
		printWarning("no settings.xml files found")
		return nil
	}
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{c.Name, dash(c.LocalRepository), c.Path})
	}
	renderTable([]string{"NAME", "LOCAL REPO", "PATH"}, rows)
	return nil
}

func runScanLicenses(a *appContext, cmd *cobra.Command, args []string) error {
	var candidates []models.Candidate
	err := util.SpinWhile("Scanning for license files", func() error {
		if scanRoot != "" {
			candidates = a.scanner.ScanLicenseFiles(scanRoot)
			return nil
		}
		candidates = a.scanner.ScanDefaultLicenseLocations()
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(candidates)
	}
	if len(candidates) == 0 {
		printWarning("no license.properties files found")
		fmt.Println("  try: aemctl scan licenses --root ~/aem")
		return nil
	}
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{dash(c.ProductName), dash(c.CustomerName), c.Path})
	}
	renderTable([]string{"PRODUCT", "CUSTOMER", "PATH"}, rows)
	return nil
}

func runScanInstances(a *appContext, cmd *cobra.Command, args []string) error {
	var discovered []scanResultRow
	err := util.SpinWhile("Scanning for quickstart jars", func() error {
		for _, d := range a.scanner.ScanAemInstances() {
			discovered = append(discovered, scanResultRow{d.Name, string(d.InstanceType), d.Port, d.JarPath})
		}
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(discovered)
	}
	if len(discovered) == 0 {
		printWarning("no quickstart jars found under the configured instance roots")
		return nil
	}
	rows := make([][]string, 0, len(discovered))
	for _, d := range discovered {
		rows = append(rows, []string{d.Name, d.Type, strconv.Itoa(d.Port), d.JarPath})
	}
	renderTable([]string{"NAME", "TYPE", "PORT", "JAR"}, rows)
	fmt.Println()
	fmt.Println("register one with: aemctl instance add <name> --path <jar> --type <type> --port <port>")
	return nil
}

type scanResultRow struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Port    int    `json:"port"`
	JarPath string `json:"jarPath"`
}
