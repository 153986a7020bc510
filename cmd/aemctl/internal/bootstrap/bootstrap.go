// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package bootstrap owns the ~/.aemctl environment as a whole:
// first-run initialization, status reporting, zip export/import of
// all configuration and data, and the full reset.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aemdev/aemctl/cmd/aemctl/config"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/envswitch"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

// =============================================================================
// Environment
// =============================================================================

// Environment bundles the paths and collaborators the bootstrap
// operations act on.
type Environment struct {
	baseDir    string
	configPath string
	dataDir    string
	switcher   envswitch.Switcher
	logger     *logging.Logger
}

// Config configures an Environment. Zero-value paths default to the
// standard ~/.aemctl layout.
type Config struct {
	// BaseDir is the aemctl home. Default: ~/.aemctl
	BaseDir string

	// ConfigPath is the yaml config file. Default: <BaseDir>/aemctl.yaml
	ConfigPath string

	// DataDir holds the store files. Default: <BaseDir>/data
	DataDir string

	// Switcher is consulted for shell block status and removal.
	// Optional; status reports ShellBlockPresent=false without it.
	Switcher envswitch.Switcher

	// Logger may be nil; the default logger is used.
	Logger *logging.Logger
}

// New creates an Environment with defaults applied.
func New(cfg Config) (*Environment, error) {
	if cfg.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("bootstrap: resolve home directory: %w", err)
		}
		cfg.BaseDir = filepath.Join(home, ".aemctl")
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = filepath.Join(cfg.BaseDir, "aemctl.yaml")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.BaseDir, "data")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Environment{
		baseDir:    cfg.BaseDir,
		configPath: cfg.ConfigPath,
		dataDir:    cfg.DataDir,
		switcher:   cfg.Switcher,
		logger:     cfg.Logger,
	}, nil
}

// DataDir returns the store directory the environment manages.
func (e *Environment) DataDir() string { return e.dataDir }

// =============================================================================
// Status
// =============================================================================

// Status describes how much of the environment exists.
type Status struct {
	BaseDirExists     bool   `json:"baseDirExists"`
	ConfigExists      bool   `json:"configExists"`
	DataDirExists     bool   `json:"dataDirExists"`
	JavaLinkExists    bool   `json:"javaLinkExists"`
	NodeLinkExists    bool   `json:"nodeLinkExists"`
	ShellBlockPresent bool   `json:"shellBlockPresent"`
	ActiveProfileID   string `json:"activeProfileId,omitempty"`
}

// Initialized reports whether the essential pieces exist.
func (s Status) Initialized() bool {
	return s.BaseDirExists && s.ConfigExists && s.DataDirExists
}

// CheckEnvironmentStatus inspects the filesystem without changing it.
func (e *Environment) CheckEnvironmentStatus() Status {
	st := Status{
		BaseDirExists:  dirExists(e.baseDir),
		ConfigExists:   fileExists(e.configPath),
		DataDirExists:  dirExists(e.dataDir),
		JavaLinkExists: linkExists(filepath.Join(e.baseDir, "java", "current")),
		NodeLinkExists: linkExists(filepath.Join(e.baseDir, "node", "current")),
	}
	if e.switcher != nil {
		st.ShellBlockPresent = e.switcher.ShellBlockPresent()
	}
	st.ActiveProfileID = e.activeProfileID()
	return st
}

// activeProfileID reads state.json directly; status must not need an
// open store.
func (e *Environment) activeProfileID() string {
	raw, err := os.ReadFile(filepath.Join(e.dataDir, "state.json"))
	if err != nil {
		return ""
	}
	var state struct {
		ActiveProfileID string `json:"activeProfileId"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return ""
	}
	return state.ActiveProfileID
}

// =============================================================================
// Initialization
// =============================================================================

// InitializeEnvironment creates the ~/.aemctl tree: base dir, symlink
// dirs, data dir with empty stores, and a default config file.
// Existing pieces are left alone, so re-running is always safe.
func (e *Environment) InitializeEnvironment() error {
	dirs := []string{
		e.baseDir,
		filepath.Join(e.baseDir, "java"),
		filepath.Join(e.baseDir, "node"),
		e.dataDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if !fileExists(e.configPath) {
		cfg := config.DefaultConfig()
		cfg.DataDir = e.dataDir
		raw, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(e.configPath, raw, 0o644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		e.logger.Info("default config written", "path", e.configPath)
	}

	// Opening the store materializes the empty collections.
	st, err := store.Open(e.dataDir, e.logger)
	if err != nil {
		return fmt.Errorf("initialize data store: %w", err)
	}
	if err := st.Close(); err != nil {
		return err
	}

	e.logger.Info("environment initialized", "base", e.baseDir)
	return nil
}

// =============================================================================
// Reset
// =============================================================================

// ResetAll wipes the data directory and config back to a fresh
// install and strips the shell managed block. Symlinks under the base
// dir are removed too. Confirmation is the caller's responsibility.
func (e *Environment) ResetAll() error {
	if err := os.RemoveAll(e.dataDir); err != nil {
		return fmt.Errorf("remove data dir: %w", err)
	}
	if err := os.Remove(e.configPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove config: %w", err)
	}
	for _, link := range []string{
		filepath.Join(e.baseDir, "java", "current"),
		filepath.Join(e.baseDir, "node", "current"),
	} {
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove symlink %s: %w", link, err)
		}
	}
	if e.switcher != nil {
		if err := e.switcher.RemoveShellBlock(); err != nil {
			return fmt.Errorf("remove shell block: %w", err)
		}
	}

	e.logger.Info("environment reset")
	return e.InitializeEnvironment()
}

// =============================================================================
// FS Helpers
// =============================================================================

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func linkExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
