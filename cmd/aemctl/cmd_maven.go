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

	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/importer"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/reconcile"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/scan"
)

// recordImport journals a finished batch import.
func recordImport(a *appContext, kind string, result importer.Result) {
	if a.journal == nil || result.SuccessCount == 0 {
		return
	}
	if err := a.journal.Record(journal.Event{
		Kind:    journal.KindArtifactImported,
		Summary: fmt.Sprintf("imported %d %s artifacts", result.SuccessCount, kind),
		Fields:  map[string]string{"kind": kind},
	}); err != nil {
		a.logger.Warn("journal write failed", "error", err.Error())
	}
}

func runMavenList(a *appContext, cmd *cobra.Command, args []string) error {
	configs := a.store.ListMavenConfigs()

	if jsonOutput {
		return outputJSON(map[string]any{
			"configs":    configs,
			"activePath": a.store.ActiveMavenPath(),
		})
	}
	if len(configs) == 0 {
		printWarning("no maven configs registered")
		fmt.Println("  discover settings files with: aemctl scan maven")
		return nil
	}
	rows := make([][]string, 0, len(configs))
	for _, cfg := range configs {
		active := markActive(cfg.IsActive)
		if cfg.IsActive {
			active = styled(styles.Active, active)
		}
		rows = append(rows, []string{active, cfg.Name, dash(cfg.LocalRepository), cfg.Path})
	}
	renderTable([]string{"", "NAME", "LOCAL REPO", "PATH"}, rows)
	return nil
}

func runMavenAdd(a *appContext, cmd *cobra.Command, args []string) error {
	if mavenSettingsPath == "" {
		return fmt.Errorf("--path is required")
	}

	cfg := models.MavenConfig{
		Name: args[0],
		Path: mavenSettingsPath,
	}
	// Best-effort: a settings.xml without <localRepository> is normal.
	if repo, err := scan.ExtractLocalRepository(mavenSettingsPath); err == nil {
		cfg.LocalRepository = repo
	}

	created, err := a.store.AddMavenConfig(cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(created)
	}
	printSuccess("registered maven config %q", created.Name)
	return nil
}

func runMavenUse(a *appContext, cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveMavenConfig(args[0])
	if err != nil {
		return err
	}

	switched, err := a.switcher.SwitchMavenConfig(cfg.ID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(switched)
	}
	printSuccess("%q is now the active maven config", switched.Name)
	return nil
}

func runMavenImportAll(a *appContext, cmd *cobra.Command, args []string) error {
	candidates := a.scanner.ScanMavenSettings(scanRoot)

	existing := make([]reconcile.ImportedRef, 0)
	for _, cfg := range a.store.ListMavenConfigs() {
		existing = append(existing, reconcile.ImportedRef{ID: cfg.ID, Name: cfg.Name, Path: cfg.Path})
	}
	fresh := reconcile.Reconcile(candidates, existing, a.store.ActiveMavenPath())
	if len(fresh) == 0 {
		printWarning("nothing new to import (%d candidates already registered)", len(candidates))
		return nil
	}

	result, err := importer.New(a.logger).ImportAll(cmd.Context(), fresh,
		func(ctx context.Context, name, path string) error {
			cfg := models.MavenConfig{Name: name, Path: path}
			if repo, repoErr := scan.ExtractLocalRepository(path); repoErr == nil {
				cfg.LocalRepository = repo
			}
			_, addErr := a.store.AddMavenConfig(cfg)
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

	recordImport(a, "maven", result)
	if jsonOutput {
		return outputJSON(result)
	}
	printSuccess("imported %d maven configs (%d failed)", result.SuccessCount, result.FailCount)
	return nil
}

func runMavenRemove(a *appContext, cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveMavenConfig(args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteMavenConfig(cfg.ID); err != nil {
		return err
	}
	printSuccess("removed maven config %q", cfg.Name)
	return nil
}
