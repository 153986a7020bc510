// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
)

func runProfileList(a *appContext, cmd *cobra.Command, args []string) error {
	profiles := a.profiles.List()

	if jsonOutput {
		return outputJSON(profiles)
	}
	if len(profiles) == 0 {
		printWarning("no profiles yet")
		fmt.Println("  create one with: aemctl profile create <name>")
		return nil
	}
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		active := markActive(p.IsActive)
		if p.IsActive {
			active = styled(styles.Active, active)
		}
		rows = append(rows, []string{
			active, p.Name, dash(p.JavaVersion), dash(p.NodeVersion),
			shortTime(p.UpdatedAt),
		})
	}
	renderTable([]string{"", "NAME", "JAVA", "NODE", "UPDATED"}, rows)
	return nil
}

func runProfileShow(a *appContext, cmd *cobra.Command, args []string) error {
	p, err := a.resolveProfile(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(p)
	}
	printTitle(p.Name)
	rows := [][]string{
		{"ID", p.ID},
		{"Active", markActive(p.IsActive)},
		{"Description", dash(p.Description)},
		{"Java", dash(p.JavaVersion)},
		{"Java path", dash(p.JavaPath)},
		{"Node", dash(p.NodeVersion)},
		{"Node path", dash(p.NodePath)},
		{"Maven config", dash(p.MavenConfigID)},
		{"Author instance", dash(p.AuthorInstanceID)},
		{"Publish instance", dash(p.PublishInstanceID)},
		{"Created", shortTime(p.CreatedAt)},
		{"Updated", shortTime(p.UpdatedAt)},
	}
	renderTable([]string{"FIELD", "VALUE"}, rows)
	if len(p.EnvVars) > 0 {
		fmt.Println()
		envRows := make([][]string, 0, len(p.EnvVars))
		for k, v := range p.EnvVars {
			envRows = append(envRows, []string{k, v})
		}
		renderTable([]string{"ENV VAR", "VALUE"}, envRows)
	}
	return nil
}

func runProfileCreate(a *appContext, cmd *cobra.Command, args []string) error {
	envVars, err := parseEnvVars(profileEnvVars)
	if err != nil {
		return err
	}

	created, err := a.profiles.Create(models.Profile{
		Name:          args[0],
		Description:   profileDescription,
		JavaPath:      profileJavaPath,
		JavaVersion:   profileJavaVersion,
		NodePath:      profileNodePath,
		NodeVersion:   profileNodeVersion,
		MavenConfigID: profileMavenID,
		EnvVars:       envVars,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(created)
	}
	printSuccess("created profile %q (%s)", created.Name, created.ID)
	return nil
}

func runProfileActivate(a *appContext, cmd *cobra.Command, args []string) error {
	p, err := a.resolveProfile(args[0])
	if err != nil {
		return err
	}

	var result models.SwitchResult
	err = util.SpinWhile(fmt.Sprintf("Activating %s", p.Name), func() error {
		var actErr error
		result, actErr = a.profiles.Activate(p.ID)
		return actErr
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}
	if result.Success {
		printSuccess("%s", result.Message)
	} else {
		printWarning("%s", result.Message)
	}
	for _, e := range result.Errors {
		printWarning("  %s", e)
	}
	return nil
}

func runProfileDelete(a *appContext, cmd *cobra.Command, args []string) error {
	p, err := a.resolveProfile(args[0])
	if err != nil {
		return err
	}
	if err := a.profiles.Delete(p.ID); err != nil {
		return err
	}
	printSuccess("deleted profile %q", p.Name)
	return nil
}

func runProfileDuplicate(a *appContext, cmd *cobra.Command, args []string) error {
	p, err := a.resolveProfile(args[0])
	if err != nil {
		return err
	}
	dup, err := a.profiles.Duplicate(p.ID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(dup)
	}
	printSuccess("duplicated %q as %q", p.Name, dup.Name)
	return nil
}

func runProfileExport(a *appContext, cmd *cobra.Command, args []string) error {
	p, err := a.resolveProfile(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return a.profiles.Export(p.ID, os.Stdout)
	}

	f, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()
	if err := a.profiles.Export(p.ID, f); err != nil {
		return err
	}
	printSuccess("exported %q to %s", p.Name, args[1])
	return nil
}

func runProfileImport(a *appContext, cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	imported, err := a.profiles.Import(f)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(imported)
	}
	printSuccess("imported profile %q (%s)", imported.Name, imported.ID)
	return nil
}
