// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// CurrentConfigVersion is written into new config files. Bump when the
// schema changes in a way the loader must migrate.
const CurrentConfigVersion = "1"

type AemctlConfig struct {
	// Meta carries schema bookkeeping.
	Meta MetaConfig `yaml:"meta"`

	// DataDir is where profiles, instances, licenses, and Maven config
	// records are persisted.
	DataDir string `yaml:"data_dir"`

	// Scan configures the filesystem roots searched during discovery.
	Scan ScanConfig `yaml:"scan"`

	// HTTP configures the local API exposed by `aemctl serve`.
	HTTP HTTPConfig `yaml:"http"`

	// Lifecycle configures instance start/stop behavior.
	Lifecycle LifecycleConfig `yaml:"lifecycle"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type ScanConfig struct {
	JavaPaths     []string `yaml:"java_paths"`     // e.g. ["/usr/lib/jvm", "~/.sdkman/candidates/java"]
	NodePaths     []string `yaml:"node_paths"`     // e.g. ["~/.nvm/versions/node"]
	InstancePaths []string `yaml:"instance_paths"` // roots searched for quickstart jars
	MavenPaths    []string `yaml:"maven_paths"`    // extra roots besides ~/.m2
}

type HTTPConfig struct {
	// Addr is the listen address for serve mode. Loopback only by
	// default; this API has no authentication.
	Addr string `yaml:"addr"` // e.g. 127.0.0.1:7645
}

type LifecycleConfig struct {
	// StartSettleMS is how long to wait after a successful start request
	// before re-querying instance status.
	StartSettleMS int `yaml:"start_settle_ms"` // e.g. 2000

	// StopSettleMS is the equivalent wait after a stop request.
	StopSettleMS int `yaml:"stop_settle_ms"` // e.g. 1500

	// AdminUser and AdminPassword authenticate the graceful shutdown
	// request against the Felix console.
	AdminUser     string `yaml:"admin_user"`     // default "admin"
	AdminPassword string `yaml:"admin_password"` // default "admin"
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
	Dir   string `yaml:"dir"`   // e.g. ~/.aemctl/logs
}

// StartSettle returns the post-start wait as a duration.
func (l LifecycleConfig) StartSettle() time.Duration {
	return time.Duration(l.StartSettleMS) * time.Millisecond
}

// StopSettle returns the post-stop wait as a duration.
func (l LifecycleConfig) StopSettle() time.Duration {
	return time.Duration(l.StopSettleMS) * time.Millisecond
}

// buildDefaultJavaPaths returns the JVM roots that exist on this host.
func buildDefaultJavaPaths() []string {
	home, _ := os.UserHomeDir()
	candidates := []string{
		filepath.Join(home, ".sdkman", "candidates", "java"),
		filepath.Join(home, ".jenv", "versions"),
	}
	switch runtime.GOOS {
	case "darwin":
		candidates = append(candidates, "/Library/Java/JavaVirtualMachines")
	case "linux":
		candidates = append(candidates, "/usr/lib/jvm", "/opt/java")
	}
	return existingOnly(candidates)
}

// buildDefaultNodePaths returns the Node version-manager roots that exist.
func buildDefaultNodePaths() []string {
	home, _ := os.UserHomeDir()
	candidates := []string{
		filepath.Join(home, ".nvm", "versions", "node"),
		filepath.Join(home, ".fnm", "node-versions"),
		filepath.Join(home, ".local", "share", "fnm", "node-versions"),
	}
	return existingOnly(candidates)
}

func existingOnly(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func DefaultConfig() AemctlConfig {
	home, _ := os.UserHomeDir()
	return AemctlConfig{
		Meta:    MetaConfig{Version: CurrentConfigVersion},
		DataDir: filepath.Join(home, ".aemctl", "data"),
		Scan: ScanConfig{
			JavaPaths:     buildDefaultJavaPaths(),
			NodePaths:     buildDefaultNodePaths(),
			InstancePaths: []string{filepath.Join(home, "aem")},
			MavenPaths:    []string{},
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:7645",
		},
		Lifecycle: LifecycleConfig{
			StartSettleMS: 2000,
			StopSettleMS:  1500,
			AdminUser:     "admin",
			AdminPassword: "admin",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(home, ".aemctl", "logs"),
		},
	}
}
