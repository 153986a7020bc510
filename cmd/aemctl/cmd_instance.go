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

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
)

// statusStyle picks a display style for an instance status cell.
func statusStyle(status models.InstanceStatus) lipgloss.Style {
	switch status {
	case models.StatusRunning:
		return styles.Success
	case models.StatusStarting, models.StatusStopping:
		return styles.Warning
	case models.StatusError, models.StatusPortConflict:
		return styles.Error
	default:
		return styles.Muted
	}
}

func runInstanceList(a *appContext, cmd *cobra.Command, args []string) error {
	instances := a.store.ListInstances()

	// Listing re-detects status so the table reflects reality, not the
	// last persisted transition.
	for i, inst := range instances {
		instances[i].Status = a.instances.DetectStatus(cmd.Context(), inst)
	}

	if jsonOutput {
		return outputJSON(instances)
	}
	if len(instances) == 0 {
		printWarning("no instances registered")
		fmt.Println("  discover jars with: aemctl scan instances")
		return nil
	}
	rows := make([][]string, 0, len(instances))
	for _, inst := range instances {
		pid := "-"
		if inst.PID > 0 {
			pid = strconv.Itoa(inst.PID)
		}
		rows = append(rows, []string{
			inst.Name,
			string(inst.InstanceType),
			fmt.Sprintf("%s:%d", inst.Host, inst.Port),
			styled(statusStyle(inst.Status), string(inst.Status)),
			pid,
		})
	}
	renderTable([]string{"NAME", "TYPE", "ADDRESS", "STATUS", "PID"}, rows)
	return nil
}

func runInstanceAdd(a *appContext, cmd *cobra.Command, args []string) error {
	if instancePath == "" {
		return fmt.Errorf("--path is required")
	}
	port := instancePort
	if port == 0 {
		switch models.InstanceType(instanceType) {
		case models.InstancePublish:
			port = 4503
		default:
			port = 4502
		}
	}

	created, err := a.store.AddInstance(models.Instance{
		Name:         args[0],
		InstanceType: models.InstanceType(instanceType),
		Host:         instanceHost,
		Port:         port,
		Path:         instancePath,
		JavaOpts:     instanceJavaOpts,
		RunModes:     instanceRunModes,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(created)
	}
	printSuccess("registered instance %q on %s:%d", created.Name, created.Host, created.Port)
	return nil
}

func runInstanceRemove(a *appContext, cmd *cobra.Command, args []string) error {
	inst, err := a.resolveInstance(args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteInstance(inst.ID); err != nil {
		return err
	}
	printSuccess("removed instance %q (files on disk untouched)", inst.Name)
	return nil
}

func runInstanceStart(a *appContext, cmd *cobra.Command, args []string) error {
	inst, err := a.resolveInstance(args[0])
	if err != nil {
		return err
	}

	var started models.Instance
	err = util.SpinWhileContext(cmd.Context(),
		fmt.Sprintf("Starting %s", inst.Name), func() error {
			var startErr error
			started, startErr = a.instances.Start(cmd.Context(), inst.ID)
			return startErr
		})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(started)
	}
	printSuccess("%s is %s (pid %d) at %s", started.Name, started.Status, started.PID, started.URL())
	return nil
}

func runInstanceStop(a *appContext, cmd *cobra.Command, args []string) error {
	inst, err := a.resolveInstance(args[0])
	if err != nil {
		return err
	}

	var stopped models.Instance
	err = util.SpinWhileContext(cmd.Context(),
		fmt.Sprintf("Stopping %s", inst.Name), func() error {
			var stopErr error
			stopped, stopErr = a.instances.Stop(cmd.Context(), inst.ID)
			return stopErr
		})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(stopped)
	}
	printSuccess("%s is %s", stopped.Name, stopped.Status)
	return nil
}

func runInstanceStatus(a *appContext, cmd *cobra.Command, args []string) error {
	inst, err := a.resolveInstance(args[0])
	if err != nil {
		return err
	}

	refreshed, err := a.instances.RefreshStatus(cmd.Context(), inst.ID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(refreshed)
	}
	fmt.Printf("%s: %s\n", refreshed.Name, styled(statusStyle(refreshed.Status), string(refreshed.Status)))
	return nil
}

func runInstanceHealth(a *appContext, cmd *cobra.Command, args []string) error {
	inst, err := a.resolveInstance(args[0])
	if err != nil {
		return err
	}

	var report models.HealthReport
	err = util.SpinWhileContext(cmd.Context(),
		fmt.Sprintf("Checking %s", inst.Name), func() error {
			var checkErr error
			report, checkErr = a.instances.CheckHealth(cmd.Context(), inst.ID)
			return checkErr
		})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(report)
	}
	printTitle(fmt.Sprintf("%s (%s)", inst.Name, inst.URL()))
	rows := [][]string{
		{"Reachable", strconv.FormatBool(report.Reachable)},
		{"Bundles", fmt.Sprintf("%d active / %d total", report.BundlesActive, report.BundlesTotal)},
		{"Heap", fmt.Sprintf("%d MB / %d MB", report.HeapUsedMB, report.HeapMaxMB)},
		{"Product", dash(report.ProductInfo)},
		{"Checked", shortTime(report.CheckedAt)},
	}
	renderTable([]string{"CHECK", "RESULT"}, rows)
	return nil
}
