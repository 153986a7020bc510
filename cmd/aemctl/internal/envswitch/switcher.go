// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package envswitch makes a Java or Node installation "current" by
// repointing well-known symlinks, and keeps the Maven settings file
// and the shell rc managed block in step with the active profile.
package envswitch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

// =============================================================================
// Switcher Interface
// =============================================================================

// Switcher coordinates version switches and their side effects.
//
// # Description
//
// The symlink change is the authoritative, user-facing effect of a
// switch. Updating the active profile's bookkeeping fields afterwards
// is best-effort: a bookkeeping failure is logged and swallowed, never
// rolled back and never surfaced as a switch failure.
//
// # Thread Safety
//
// Implementations are safe for concurrent use only to the extent the
// underlying filesystem operations are; callers serialize switches.
type Switcher interface {
	// SwitchJava points the java "current" symlink at the installation.
	SwitchJava(java models.JavaInstallation) models.SwitchResult

	// SwitchNode points the node "current" symlink at the installation.
	SwitchNode(node models.NodeInstallation) models.SwitchResult

	// SwitchMavenConfig copies the named config over ~/.m2/settings.xml,
	// backing up the original once, and flips the active flag.
	SwitchMavenConfig(id string) (models.MavenConfig, error)

	// CurrentJavaTarget returns the java symlink's target, or "".
	CurrentJavaTarget() string

	// CurrentNodeTarget returns the node symlink's target, or "".
	CurrentNodeTarget() string

	// SyncShellBlock rewrites the managed block in the user's shell rc
	// files to reflect the profile's environment.
	SyncShellBlock(p models.Profile) error

	// RemoveShellBlock strips the managed block from the rc files.
	RemoveShellBlock() error

	// ShellBlockPresent reports whether any rc file carries the
	// managed block.
	ShellBlockPresent() bool
}

// =============================================================================
// Default Implementation
// =============================================================================

// Config configures a DefaultSwitcher. Zero-value fields get defaults
// under the user's home directory.
type Config struct {
	// BaseDir holds the java/ and node/ symlink directories.
	// Default: ~/.aemctl
	BaseDir string

	// M2Dir is the Maven user directory. Default: ~/.m2
	M2Dir string

	// RcFiles are the shell rc files carrying the managed block.
	// Default: whichever of ~/.bashrc and ~/.zshrc exist, or
	// ~/.bashrc when neither does.
	RcFiles []string

	// Store receives best-effort profile patches and the Maven
	// active-flag flip. Required.
	Store *store.Store

	// Logger may be nil; the default logger is used.
	Logger *logging.Logger
}

// DefaultSwitcher is the filesystem-backed Switcher.
type DefaultSwitcher struct {
	baseDir string
	m2Dir   string
	rcFiles []string
	store   *store.Store
	logger  *logging.Logger
}

var _ Switcher = (*DefaultSwitcher)(nil)

// New creates a DefaultSwitcher, filling in home-relative defaults.
func New(cfg Config) (*DefaultSwitcher, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("envswitch: store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	home, err := os.UserHomeDir()
	if err != nil && (cfg.BaseDir == "" || cfg.M2Dir == "" || len(cfg.RcFiles) == 0) {
		return nil, fmt.Errorf("envswitch: resolve home directory: %w", err)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Join(home, ".aemctl")
	}
	if cfg.M2Dir == "" {
		cfg.M2Dir = filepath.Join(home, ".m2")
	}
	if len(cfg.RcFiles) == 0 {
		cfg.RcFiles = defaultRcFiles(home)
	}

	return &DefaultSwitcher{
		baseDir: cfg.BaseDir,
		m2Dir:   cfg.M2Dir,
		rcFiles: cfg.RcFiles,
		store:   cfg.Store,
		logger:  cfg.Logger,
	}, nil
}

// defaultRcFiles returns the rc files to manage: every standard file
// that already exists, or ~/.bashrc as the file to create.
func defaultRcFiles(home string) []string {
	candidates := []string{
		filepath.Join(home, ".bashrc"),
		filepath.Join(home, ".zshrc"),
	}
	var existing []string
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			existing = append(existing, c)
		}
	}
	if len(existing) == 0 {
		return candidates[:1]
	}
	return existing
}

// JavaLinkPath returns the java "current" symlink location.
func (s *DefaultSwitcher) JavaLinkPath() string {
	return filepath.Join(s.baseDir, "java", "current")
}

// NodeLinkPath returns the node "current" symlink location.
func (s *DefaultSwitcher) NodeLinkPath() string {
	return filepath.Join(s.baseDir, "node", "current")
}

// =============================================================================
// Version Switches
// =============================================================================

// SwitchJava repoints the java symlink, then best-effort patches the
// active profile's java fields.
func (s *DefaultSwitcher) SwitchJava(java models.JavaInstallation) models.SwitchResult {
	if err := s.switchLink(s.JavaLinkPath(), java.Path); err != nil {
		return models.SwitchResult{Success: false, Errors: []string{err.Error()}}
	}

	patched, err := s.store.PatchActiveProfile(func(p *models.Profile) {
		p.JavaPath = java.Path
		p.JavaVersion = java.Version
	})
	if err != nil {
		// Bookkeeping only; the symlink change stands.
		s.logger.Warn("active profile java fields not updated",
			"path", java.Path, "error", err.Error())
	}

	s.logger.Info("java switched", "path", java.Path, "version", java.Version,
		"profilePatched", patched && err == nil)
	return models.SwitchResult{
		Success: true,
		Message: fmt.Sprintf("java %s is now current", java.Version),
	}
}

// SwitchNode repoints the node symlink, then best-effort patches the
// active profile's node fields.
func (s *DefaultSwitcher) SwitchNode(node models.NodeInstallation) models.SwitchResult {
	if err := s.switchLink(s.NodeLinkPath(), node.Path); err != nil {
		return models.SwitchResult{Success: false, Errors: []string{err.Error()}}
	}

	patched, err := s.store.PatchActiveProfile(func(p *models.Profile) {
		p.NodePath = node.Path
		p.NodeVersion = node.Version
	})
	if err != nil {
		s.logger.Warn("active profile node fields not updated",
			"path", node.Path, "error", err.Error())
	}

	s.logger.Info("node switched", "path", node.Path, "version", node.Version,
		"profilePatched", patched && err == nil)
	return models.SwitchResult{
		Success: true,
		Message: fmt.Sprintf("node %s is now current", node.Version),
	}
}

// switchLink replaces the symlink at link with one pointing at target.
// Remove-then-symlink: a stale link must never survive a failed
// switch pointing at the old target alongside a new profile.
func (s *DefaultSwitcher) switchLink(link, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("switch target: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("switch target %s is not a directory", target)
	}

	if err := os.MkdirAll(filepath.Dir(link), 0o750); err != nil {
		return fmt.Errorf("prepare symlink directory: %w", err)
	}
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove previous symlink: %w", err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}
	return nil
}

// CurrentJavaTarget returns where the java symlink points, or "".
func (s *DefaultSwitcher) CurrentJavaTarget() string {
	target, err := os.Readlink(s.JavaLinkPath())
	if err != nil {
		return ""
	}
	return target
}

// CurrentNodeTarget returns where the node symlink points, or "".
func (s *DefaultSwitcher) CurrentNodeTarget() string {
	target, err := os.Readlink(s.NodeLinkPath())
	if err != nil {
		return ""
	}
	return target
}

// =============================================================================
// Maven Settings Switch
// =============================================================================

// SwitchMavenConfig installs the named Maven config as
// ~/.m2/settings.xml. The pre-existing settings.xml is backed up to
// settings.xml.backup exactly once; later switches never overwrite
// that backup.
func (s *DefaultSwitcher) SwitchMavenConfig(id string) (models.MavenConfig, error) {
	cfg, err := s.store.GetMavenConfig(id)
	if err != nil {
		return models.MavenConfig{}, err
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return models.MavenConfig{}, fmt.Errorf("maven config file: %w", err)
	}

	settings := filepath.Join(s.m2Dir, "settings.xml")
	backup := settings + ".backup"

	if err := os.MkdirAll(s.m2Dir, 0o750); err != nil {
		return models.MavenConfig{}, fmt.Errorf("prepare maven directory: %w", err)
	}
	if _, err := os.Stat(settings); err == nil {
		if _, err := os.Stat(backup); os.IsNotExist(err) {
			if err := copyFile(settings, backup); err != nil {
				return models.MavenConfig{}, fmt.Errorf("back up settings.xml: %w", err)
			}
			s.logger.Info("settings.xml backed up", "backup", backup)
		}
	}

	if err := copyFile(cfg.Path, settings); err != nil {
		return models.MavenConfig{}, fmt.Errorf("install settings.xml: %w", err)
	}

	active, err := s.store.SetActiveMavenConfig(id)
	if err != nil {
		return models.MavenConfig{}, err
	}
	s.logger.Info("maven config switched", "name", active.Name, "path", active.Path)
	return active, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
