// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
)

func runInit(a *appContext, cmd *cobra.Command, args []string) error {
	st := a.env.CheckEnvironmentStatus()
	if st.Initialized() {
		printSuccess("environment already initialized at %s", a.cfg.DataDir)
		return nil
	}

	if err := a.env.InitializeEnvironment(); err != nil {
		return err
	}
	printSuccess("initialized aemctl environment")
	fmt.Println("  data:", a.cfg.DataDir)
	fmt.Println("  next: aemctl scan java, then aemctl profile create <name>")
	return nil
}

func runStatus(a *appContext, cmd *cobra.Command, args []string) error {
	st := a.env.CheckEnvironmentStatus()

	if jsonOutput {
		return outputJSON(map[string]any{
			"environment": st,
			"javaTarget":  a.switcher.CurrentJavaTarget(),
			"nodeTarget":  a.switcher.CurrentNodeTarget(),
		})
	}

	printTitle("Environment")
	check := func(ok bool) string {
		if ok {
			return styled(styles.Success, "ok")
		}
		return styled(styles.Error, "missing")
	}
	rows := [][]string{
		{"Base directory", check(st.BaseDirExists)},
		{"Config file", check(st.ConfigExists)},
		{"Data directory", check(st.DataDirExists)},
		{"Java symlink", dash(a.switcher.CurrentJavaTarget())},
		{"Node symlink", dash(a.switcher.CurrentNodeTarget())},
		{"Shell rc block", strconv.FormatBool(st.ShellBlockPresent)},
	}
	renderTable([]string{"COMPONENT", "STATE"}, rows)

	fmt.Println()
	if active, ok := a.profiles.Active(); ok {
		printSuccess("active profile: %s", active.Name)
	} else {
		printWarning("no active profile")
	}

	instances := a.store.ListInstances()
	if len(instances) > 0 {
		fmt.Println()
		instRows := make([][]string, 0, len(instances))
		for _, inst := range instances {
			status := a.instances.DetectStatus(cmd.Context(), inst)
			instRows = append(instRows, []string{
				inst.Name,
				fmt.Sprintf("%s:%d", inst.Host, inst.Port),
				styled(statusStyle(status), string(status)),
			})
		}
		renderTable([]string{"INSTANCE", "ADDRESS", "STATUS"}, instRows)
	}
	return nil
}

func runExport(a *appContext, cmd *cobra.Command, args []string) error {
	// The journal holds a lock on its directory; release it so the zip
	// sees quiesced files.
	a.closeData()

	err := util.SpinWhile("Exporting environment", func() error {
		return a.env.ExportAll(args[0])
	})
	if err != nil {
		return err
	}
	printSuccess("exported environment to %s", args[0])
	return nil
}

func runImport(a *appContext, cmd *cobra.Command, args []string) error {
	// Close before the import replaces the files underneath.
	a.closeData()

	err := util.SpinWhile("Importing environment", func() error {
		return a.env.ImportAll(args[0])
	})
	if err != nil {
		return err
	}
	printSuccess("imported environment from %s", args[0])
	fmt.Println("  run `aemctl status` to verify")
	return nil
}

func runReset(a *appContext, cmd *cobra.Command, args []string) error {
	if !resetConfirmed {
		printWarning("this deletes ALL profiles, instances, licenses, and maven configs")
		fmt.Print("type 'reset' to continue: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(line) != "reset" {
			fmt.Println("aborted")
			return nil
		}
	}

	// The store watcher and journal hold the data directory open;
	// release them before it is removed.
	a.closeData()

	if err := a.env.ResetAll(); err != nil {
		return err
	}
	printSuccess("environment reset; run `aemctl init` to start over")
	return nil
}

func runEvents(a *appContext, cmd *cobra.Command, args []string) error {
	if a.journal == nil {
		return fmt.Errorf("journal unavailable (is another aemctl process running?)")
	}

	events, err := a.journal.Recent(eventsLimit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(events)
	}
	if len(events) == 0 {
		printWarning("no events recorded yet")
		return nil
	}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{shortTime(ev.Time), string(ev.Kind), ev.Summary})
	}
	renderTable([]string{"TIME", "KIND", "SUMMARY"}, rows)
	return nil
}
