// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/importer"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/license"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/reconcile"
)

func licenseStatusStyle(status models.LicenseStatus) lipgloss.Style {
	switch status {
	case models.LicenseValid:
		return styles.Success
	case models.LicenseExpiring:
		return styles.Warning
	case models.LicenseExpired, models.LicenseInvalid:
		return styles.Error
	default:
		return styles.Muted
	}
}

func runLicenseList(a *appContext, cmd *cobra.Command, args []string) error {
	licenses := a.store.ListLicenses()

	if jsonOutput {
		return outputJSON(map[string]any{
			"licenses": licenses,
			"stats":    license.Summarize(licenses),
		})
	}
	if len(licenses) == 0 {
		printWarning("no licenses registered")
		fmt.Println("  discover files with: aemctl scan licenses")
		return nil
	}
	rows := make([][]string, 0, len(licenses))
	for _, lic := range licenses {
		rows = append(rows, []string{
			lic.Name,
			dash(lic.ProductName),
			dash(lic.CustomerName),
			dash(lic.ExpiryDate),
			styled(licenseStatusStyle(lic.Status), string(lic.Status)),
		})
	}
	renderTable([]string{"NAME", "PRODUCT", "CUSTOMER", "EXPIRES", "STATUS"}, rows)

	stats := license.Summarize(licenses)
	if stats.Expiring > 0 || stats.Expired > 0 {
		fmt.Println()
		printWarning("%d expiring, %d expired", stats.Expiring, stats.Expired)
	}
	return nil
}

func runLicenseParse(a *appContext, cmd *cobra.Command, args []string) error {
	parsed, err := license.ParseFile(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(parsed)
	}
	rows := [][]string{
		{"Product", dash(parsed.ProductName)},
		{"Version", dash(parsed.ProductVersion)},
		{"Customer", dash(parsed.CustomerName)},
		{"Download ID", dash(parsed.DownloadID)},
		{"Expires", dash(parsed.ExpiryDate)},
		{"Key", dash(parsed.LicenseKey)},
	}
	renderTable([]string{"FIELD", "VALUE"}, rows)
	return nil
}

func runLicenseAdd(a *appContext, cmd *cobra.Command, args []string) error {
	lic := models.License{
		Name:  args[0],
		Notes: licenseNotes,
	}
	if licenseFromFile != "" {
		parsed, err := license.ParseFile(licenseFromFile)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", licenseFromFile, err)
		}
		lic.LicenseFilePath = licenseFromFile
		lic.LicenseKey = parsed.LicenseKey
		lic.ProductName = parsed.ProductName
		lic.ProductVersion = parsed.ProductVersion
		lic.CustomerName = parsed.CustomerName
		lic.DownloadID = parsed.DownloadID
		lic.ExpiryDate = parsed.ExpiryDate
	}
	if lic.ProductName == "" {
		lic.ProductName = "Adobe Experience Manager"
	}

	created, err := a.store.AddLicense(lic)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(created)
	}
	printSuccess("registered license %q (%s)", created.Name,
		styled(licenseStatusStyle(created.Status), string(created.Status)))
	return nil
}

func runLicenseImportAll(a *appContext, cmd *cobra.Command, args []string) error {
	var candidates []models.Candidate
	if scanRoot != "" {
		candidates = a.scanner.ScanLicenseFiles(scanRoot)
	} else {
		candidates = a.scanner.ScanDefaultLicenseLocations()
	}

	existing := make([]reconcile.ImportedRef, 0)
	for _, lic := range a.store.ListLicenses() {
		existing = append(existing, reconcile.ImportedRef{ID: lic.ID, Name: lic.Name, Path: lic.LicenseFilePath})
	}
	fresh := reconcile.Reconcile(candidates, existing, "")
	if len(fresh) == 0 {
		printWarning("nothing new to import (%d candidates already registered)", len(candidates))
		return nil
	}

	result, err := importer.New(a.logger).ImportAll(cmd.Context(), fresh,
		func(ctx context.Context, name, path string) error {
			parsed, parseErr := license.ParseFile(path)
			if parseErr != nil {
				return parseErr
			}
			product := parsed.ProductName
			if product == "" {
				product = "Adobe Experience Manager"
			}
			_, addErr := a.store.AddLicense(models.License{
				Name:            name,
				LicenseFilePath: path,
				LicenseKey:      parsed.LicenseKey,
				ProductName:     product,
				ProductVersion:  parsed.ProductVersion,
				CustomerName:    parsed.CustomerName,
				DownloadID:      parsed.DownloadID,
				ExpiryDate:      parsed.ExpiryDate,
			})
			return addErr
		},
		func(current, total int) {
			if !jsonOutput {
				fmt.Printf("\r  importing %d/%d", current, total)
			}
		})
	if !jsonOutput {
		fmt.Println()
	}
	if err != nil {
		return err
	}

	recordImport(a, "license", result)
	if jsonOutput {
		return outputJSON(result)
	}
	printSuccess("imported %d licenses (%d failed)", result.SuccessCount, result.FailCount)
	return nil
}

func runLicenseRemove(a *appContext, cmd *cobra.Command, args []string) error {
	lic, err := a.resolveLicense(args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteLicense(lic.ID); err != nil {
		return err
	}
	printSuccess("removed license %q", lic.Name)
	return nil
}
