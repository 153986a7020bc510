// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	jsonOutput bool // machine-readable output for scripting

	// profile create/update flags
	profileDescription string
	profileJavaPath    string
	profileJavaVersion string
	profileNodePath    string
	profileNodeVersion string
	profileMavenID     string
	profileEnvVars     []string

	// instance add flags
	instanceType     string
	instanceHost     string
	instancePort     int
	instancePath     string
	instanceJavaOpts string
	instanceRunModes []string

	// license add flags
	licenseFromFile string
	licenseNotes    string

	// maven add flags
	mavenSettingsPath string

	// scan flags
	scanRoot string

	// switch flags
	switchVersion string

	// environment flags
	resetConfirmed bool
	eventsLimit    int

	// serve flags
	serveAddr string

	rootCmd = &cobra.Command{
		Use:   "aemctl",
		Short: "Manage local AEM development environments",
		Long: `aemctl manages the moving parts of a local Adobe Experience Manager
setup: discovered Java and Node versions, Maven settings, license files,
quickstart instances, and named profiles that bundle them together.`,
	}

	// --- Discovery ---
	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Discover runtimes, settings, licenses, and instances on disk",
	}
	scanJavaCmd = &cobra.Command{
		Use:   "java",
		Short: "Discover installed JVMs",
		Run:   withApp(runScanJava), // Defined in cmd_scan.go
	}
	scanNodeCmd = &cobra.Command{
		Use:   "node",
		Short: "Discover installed Node.js versions",
		Run:   withApp(runScanNode), // Defined in cmd_scan.go
	}
	scanManagersCmd = &cobra.Command{
		Use:   "managers",
		Short: "Detect version managers (sdkman, nvm, fnm)",
		Run:   withApp(runScanManagers), // Defined in cmd_scan.go
	}
	scanMavenCmd = &cobra.Command{
		Use:   "maven",
		Short: "Discover Maven settings.xml candidates",
		Run:   withApp(runScanMaven), // Defined in cmd_scan.go
	}
	scanLicensesCmd = &cobra.Command{
		Use:   "licenses",
		Short: "Discover license.properties files",
		Run:   withApp(runScanLicenses), // Defined in cmd_scan.go
	}
	scanInstancesCmd = &cobra.Command{
		Use:   "instances",
		Short: "Discover AEM quickstart jars",
		Run:   withApp(runScanInstances), // Defined in cmd_scan.go
	}

	// --- Profiles ---
	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Manage named environment profiles",
	}
	profileListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		Run:   withApp(runProfileList), // Defined in cmd_profile.go
	}
	profileShowCmd = &cobra.Command{
		Use:   "show [name-or-id]",
		Short: "Show one profile in full",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runProfileShow), // Defined in cmd_profile.go
	}
	profileCreateCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new profile",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runProfileCreate), // Defined in cmd_profile.go
	}
	profileActivateCmd = &cobra.Command{
		Use:   "activate [name-or-id]",
		Short: "Activate a profile and apply its environment",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runProfileActivate), // Defined in cmd_profile.go
	}
	profileDeleteCmd = &cobra.Command{
		Use:   "delete [name-or-id]",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runProfileDelete), // Defined in cmd_profile.go
	}
	profileDuplicateCmd = &cobra.Command{
		Use:   "duplicate [name-or-id]",
		Short: "Copy a profile under a fresh name",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runProfileDuplicate), // Defined in cmd_profile.go
	}
	profileExportCmd = &cobra.Command{
		Use:   "export [name-or-id] [file]",
		Short: "Export a profile as YAML (stdout when no file is given)",
		Args:  cobra.RangeArgs(1, 2),
		Run:   withApp(runProfileExport), // Defined in cmd_profile.go
	}
	profileImportCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Import a YAML profile",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runProfileImport), // Defined in cmd_profile.go
	}

	// --- Instances ---
	instanceCmd = &cobra.Command{
		Use:   "instance",
		Short: "Manage local AEM quickstart instances",
	}
	instanceListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered instances with live status",
		Run:   withApp(runInstanceList), // Defined in cmd_instance.go
	}
	instanceAddCmd = &cobra.Command{
		Use:   "add [name]",
		Short: "Register a quickstart instance",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runInstanceAdd), // Defined in cmd_instance.go
	}
	instanceRemoveCmd = &cobra.Command{
		Use:   "remove [name-or-id]",
		Short: "Deregister an instance (never touches files on disk)",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runInstanceRemove), // Defined in cmd_instance.go
	}
	instanceStartCmd = &cobra.Command{
		Use:   "start [name-or-id]",
		Short: "Launch the instance's quickstart process",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runInstanceStart), // Defined in cmd_instance.go
	}
	instanceStopCmd = &cobra.Command{
		Use:   "stop [name-or-id]",
		Short: "Stop the instance",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runInstanceStop), // Defined in cmd_instance.go
	}
	instanceStatusCmd = &cobra.Command{
		Use:   "status [name-or-id]",
		Short: "Re-detect and persist the instance's status",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runInstanceStatus), // Defined in cmd_instance.go
	}
	instanceHealthCmd = &cobra.Command{
		Use:   "health [name-or-id]",
		Short: "Query the running instance's Felix console",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runInstanceHealth), // Defined in cmd_instance.go
	}

	// --- Licenses ---
	licenseCmd = &cobra.Command{
		Use:   "license",
		Short: "Manage AEM license registrations",
	}
	licenseListCmd = &cobra.Command{
		Use:   "list",
		Short: "List licenses with derived status",
		Run:   withApp(runLicenseList), // Defined in cmd_license.go
	}
	licenseParseCmd = &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a license.properties file without registering it",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runLicenseParse), // Defined in cmd_license.go
	}
	licenseAddCmd = &cobra.Command{
		Use:   "add [name]",
		Short: "Register a license, optionally prefilled from a file",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runLicenseAdd), // Defined in cmd_license.go
	}
	licenseRemoveCmd = &cobra.Command{
		Use:   "remove [name-or-id]",
		Short: "Delete a license registration",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runLicenseRemove), // Defined in cmd_license.go
	}
	licenseImportAllCmd = &cobra.Command{
		Use:   "import-all",
		Short: "Scan for license files and register every new one",
		Run:   withApp(runLicenseImportAll), // Defined in cmd_license.go
	}

	// --- Maven ---
	mavenCmd = &cobra.Command{
		Use:   "maven",
		Short: "Manage Maven settings.xml configurations",
	}
	mavenListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered Maven configs",
		Run:   withApp(runMavenList), // Defined in cmd_maven.go
	}
	mavenAddCmd = &cobra.Command{
		Use:   "add [name]",
		Short: "Register a settings.xml file",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runMavenAdd), // Defined in cmd_maven.go
	}
	mavenUseCmd = &cobra.Command{
		Use:   "use [name-or-id]",
		Short: "Install the config as ~/.m2/settings.xml",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runMavenUse), // Defined in cmd_maven.go
	}
	mavenRemoveCmd = &cobra.Command{
		Use:   "remove [name-or-id]",
		Short: "Delete a Maven config registration",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runMavenRemove), // Defined in cmd_maven.go
	}
	mavenImportAllCmd = &cobra.Command{
		Use:   "import-all",
		Short: "Scan for settings.xml files and register every new one",
		Run:   withApp(runMavenImportAll), // Defined in cmd_maven.go
	}

	// --- Direct version switching ---
	useCmd = &cobra.Command{
		Use:   "use",
		Short: "Repoint the java or node symlink directly",
	}
	useJavaCmd = &cobra.Command{
		Use:   "java [path]",
		Short: "Point the java \"current\" symlink at an installation",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runUseJava), // Defined in cmd_use.go
	}
	useNodeCmd = &cobra.Command{
		Use:   "node [path]",
		Short: "Point the node \"current\" symlink at an installation",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runUseNode), // Defined in cmd_use.go
	}

	// --- Environment ---
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the ~/.aemctl directory layout and default config",
		Run:   withApp(runInit), // Defined in cmd_env.go
	}
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show environment, symlink, and instance status",
		Run:   withApp(runStatus), // Defined in cmd_env.go
	}
	exportCmd = &cobra.Command{
		Use:   "export [file.zip]",
		Short: "Export config and data as a portable zip bundle",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runExport), // Defined in cmd_env.go
	}
	importCmd = &cobra.Command{
		Use:   "import [file.zip]",
		Short: "Import a previously exported bundle, replacing current data",
		Args:  cobra.ExactArgs(1),
		Run:   withApp(runImport), // Defined in cmd_env.go
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "DANGER: wipe all registered data and start over",
		Run:   withApp(runReset), // Defined in cmd_env.go
	}
	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "Show recent journal events, newest first",
		Run:   withApp(runEvents), // Defined in cmd_env.go
	}

	// --- Serve ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the aemctl HTTP API on loopback",
		Run:   withApp(runServe), // Defined in cmd_serve.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output machine-readable JSON instead of tables")

	rootCmd.AddCommand(scanCmd)
	scanCmd.AddCommand(scanJavaCmd)
	scanCmd.AddCommand(scanNodeCmd)
	scanCmd.AddCommand(scanManagersCmd)
	scanCmd.AddCommand(scanMavenCmd)
	scanCmd.AddCommand(scanLicensesCmd)
	scanCmd.AddCommand(scanInstancesCmd)
	scanMavenCmd.Flags().StringVar(&scanRoot, "root", "", "Directory to scan instead of the standard locations")
	scanLicensesCmd.Flags().StringVar(&scanRoot, "root", "", "Directory to walk (default: configured instance roots)")

	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileActivateCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileDuplicateCmd)
	profileCmd.AddCommand(profileExportCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCreateCmd.Flags().StringVar(&profileDescription, "description", "", "Free-form description")
	profileCreateCmd.Flags().StringVar(&profileJavaPath, "java-path", "", "JVM installation directory for this profile")
	profileCreateCmd.Flags().StringVar(&profileJavaVersion, "java-version", "", "Display version for the JVM selection")
	profileCreateCmd.Flags().StringVar(&profileNodePath, "node-path", "", "Node installation directory for this profile")
	profileCreateCmd.Flags().StringVar(&profileNodeVersion, "node-version", "", "Display version for the Node selection")
	profileCreateCmd.Flags().StringVar(&profileMavenID, "maven-config", "", "Maven config id to install on activation")
	profileCreateCmd.Flags().StringArrayVar(&profileEnvVars, "env", nil, "Extra environment variable KEY=VALUE (repeatable)")

	rootCmd.AddCommand(instanceCmd)
	instanceCmd.AddCommand(instanceListCmd)
	instanceCmd.AddCommand(instanceAddCmd)
	instanceCmd.AddCommand(instanceRemoveCmd)
	instanceCmd.AddCommand(instanceStartCmd)
	instanceCmd.AddCommand(instanceStopCmd)
	instanceCmd.AddCommand(instanceStatusCmd)
	instanceCmd.AddCommand(instanceHealthCmd)
	instanceAddCmd.Flags().StringVar(&instanceType, "type", "author", "Instance role: author, publish, or dispatcher")
	instanceAddCmd.Flags().StringVar(&instanceHost, "host", "localhost", "Host the instance binds")
	instanceAddCmd.Flags().IntVar(&instancePort, "port", 0, "HTTP port (default 4502 author, 4503 publish)")
	instanceAddCmd.Flags().StringVar(&instancePath, "path", "", "Quickstart jar path (required)")
	instanceAddCmd.Flags().StringVar(&instanceJavaOpts, "java-opts", "", "Extra JVM options for launches")
	instanceAddCmd.Flags().StringSliceVar(&instanceRunModes, "run-modes", nil, "Sling run modes (comma-separated)")

	rootCmd.AddCommand(licenseCmd)
	licenseCmd.AddCommand(licenseListCmd)
	licenseCmd.AddCommand(licenseParseCmd)
	licenseCmd.AddCommand(licenseAddCmd)
	licenseCmd.AddCommand(licenseRemoveCmd)
	licenseCmd.AddCommand(licenseImportAllCmd)
	licenseAddCmd.Flags().StringVar(&licenseFromFile, "from", "", "license.properties file to prefill fields from")
	licenseAddCmd.Flags().StringVar(&licenseNotes, "notes", "", "Free-form notes")
	licenseImportAllCmd.Flags().StringVar(&scanRoot, "root", "", "Directory to walk (default: standard locations)")

	rootCmd.AddCommand(mavenCmd)
	mavenCmd.AddCommand(mavenListCmd)
	mavenCmd.AddCommand(mavenAddCmd)
	mavenCmd.AddCommand(mavenUseCmd)
	mavenCmd.AddCommand(mavenRemoveCmd)
	mavenCmd.AddCommand(mavenImportAllCmd)
	mavenAddCmd.Flags().StringVar(&mavenSettingsPath, "path", "", "settings.xml file to register (required)")
	mavenImportAllCmd.Flags().StringVar(&scanRoot, "root", "", "Directory to scan instead of the standard locations")

	rootCmd.AddCommand(useCmd)
	useCmd.AddCommand(useJavaCmd)
	useCmd.AddCommand(useNodeCmd)
	useJavaCmd.Flags().StringVar(&switchVersion, "version", "", "Display version for active-profile bookkeeping")
	useNodeCmd.Flags().StringVar(&switchVersion, "version", "", "Display version for active-profile bookkeeping")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "Maximum events to show")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:7645)")
}
