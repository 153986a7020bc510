// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package profile manages named development profiles: validated CRUD,
// exclusive activation with its environment side effects, and yaml
// export/import.
package profile

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/envswitch"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

// profileValidate is the validator instance for profile input.
var profileValidate = validator.New()

// =============================================================================
// Manager
// =============================================================================

// Manager composes the store, switch coordinator and journal into the
// profile operations the CLI and HTTP API expose.
//
// # Description
//
// Activation follows the critical-effect-then-bookkeeping pattern:
// flipping the active profile in the store is the authoritative step
// and its failure fails the call. The environment side effects (java
// and node symlinks, Maven settings, shell rc block) run afterwards,
// each independently; their failures are collected on the
// SwitchResult but never roll back the activation.
//
// # Thread Safety
//
// Safe for concurrent use; the store serializes all state changes.
type Manager struct {
	store    *store.Store
	switcher envswitch.Switcher
	journal  *journal.Journal
	logger   *logging.Logger
}

// Config configures a Manager.
type Config struct {
	// Store is required.
	Store *store.Store

	// Switcher applies activation side effects. Required.
	Switcher envswitch.Switcher

	// Journal records profile events. Optional.
	Journal *journal.Journal

	// Logger may be nil; the default logger is used.
	Logger *logging.Logger
}

// New creates a Manager.
func New(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("profile: store is required")
	}
	if cfg.Switcher == nil {
		return nil, fmt.Errorf("profile: switcher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Manager{
		store:    cfg.Store,
		switcher: cfg.Switcher,
		journal:  cfg.Journal,
		logger:   cfg.Logger,
	}, nil
}

// =============================================================================
// CRUD
// =============================================================================

// List returns all profiles.
func (m *Manager) List() []models.Profile {
	return m.store.ListProfiles()
}

// Get returns a profile by id.
func (m *Manager) Get(id string) (models.Profile, error) {
	return m.store.GetProfile(id)
}

// Active returns the active profile, if any.
func (m *Manager) Active() (models.Profile, bool) {
	return m.store.ActiveProfile()
}

// Create validates and persists a new profile.
func (m *Manager) Create(p models.Profile) (models.Profile, error) {
	if err := validateProfile(p); err != nil {
		return models.Profile{}, err
	}
	created, err := m.store.CreateProfile(p)
	if err != nil {
		return models.Profile{}, err
	}
	m.record(journal.KindProfileCreated, created.ID,
		fmt.Sprintf("created profile %q", created.Name))
	return created, nil
}

// Update validates and replaces an existing profile.
func (m *Manager) Update(p models.Profile) (models.Profile, error) {
	if err := validateProfile(p); err != nil {
		return models.Profile{}, err
	}
	return m.store.UpdateProfile(p)
}

// Delete removes a profile. The active profile cannot be deleted.
func (m *Manager) Delete(id string) error {
	p, err := m.store.GetProfile(id)
	if err != nil {
		return err
	}
	if err := m.store.DeleteProfile(id); err != nil {
		return err
	}
	m.record(journal.KindProfileDeleted, id,
		fmt.Sprintf("deleted profile %q", p.Name))
	return nil
}

// Duplicate copies a profile under a disambiguated name.
func (m *Manager) Duplicate(id string) (models.Profile, error) {
	return m.store.DuplicateProfile(id)
}

// =============================================================================
// Activation
// =============================================================================

// Activate makes the profile the single active one and applies its
// environment. Side-effect failures are reported, not fatal.
func (m *Manager) Activate(id string) (models.SwitchResult, error) {
	if err := m.store.SetActiveProfile(id); err != nil {
		return models.SwitchResult{}, err
	}
	p, err := m.store.GetProfile(id)
	if err != nil {
		return models.SwitchResult{}, err
	}

	var sideErrs []string

	if p.JavaPath != "" {
		res := m.switcher.SwitchJava(models.JavaInstallation{
			Path:    p.JavaPath,
			Version: p.JavaVersion,
		})
		if !res.Success {
			sideErrs = append(sideErrs, prefixed("java", res.Errors)...)
		}
	}
	if p.NodePath != "" {
		res := m.switcher.SwitchNode(models.NodeInstallation{
			Path:    p.NodePath,
			Version: p.NodeVersion,
		})
		if !res.Success {
			sideErrs = append(sideErrs, prefixed("node", res.Errors)...)
		}
	}
	if p.MavenConfigID != "" {
		if _, err := m.switcher.SwitchMavenConfig(p.MavenConfigID); err != nil {
			sideErrs = append(sideErrs, fmt.Sprintf("maven: %v", err))
		}
	}
	if err := m.switcher.SyncShellBlock(p); err != nil {
		sideErrs = append(sideErrs, fmt.Sprintf("shell: %v", err))
	}

	for _, e := range sideErrs {
		m.logger.Warn("activation side effect failed", "profile", p.Name, "error", e)
	}
	m.record(journal.KindProfileActivated, p.ID,
		fmt.Sprintf("activated profile %q", p.Name))

	return models.SwitchResult{
		Success: true,
		Errors:  sideErrs,
		Message: fmt.Sprintf("profile %q is now active", p.Name),
	}, nil
}

// =============================================================================
// Export / Import
// =============================================================================

// Export writes the profile as yaml. Identity and runtime fields are
// preserved so a round-trip import can detect provenance, but import
// always reassigns them.
func (m *Manager) Export(id string, w io.Writer) error {
	p, err := m.store.GetProfile(id)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(p)
}

// Import reads a yaml profile and stores it as a new, inactive
// profile with a fresh identity.
func (m *Manager) Import(r io.Reader) (models.Profile, error) {
	var p models.Profile
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return models.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := validateProfile(p); err != nil {
		return models.Profile{}, err
	}
	imported, err := m.store.ImportProfile(p)
	if err != nil {
		return models.Profile{}, err
	}
	m.record(journal.KindArtifactImported, imported.ID,
		fmt.Sprintf("imported profile %q", imported.Name))
	return imported, nil
}

// =============================================================================
// Helpers
// =============================================================================

func validateProfile(p models.Profile) error {
	if err := profileValidate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

func prefixed(subsystem string, errs []string) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = fmt.Sprintf("%s: %s", subsystem, e)
	}
	return out
}

func (m *Manager) record(kind journal.EventKind, entityID, summary string) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Record(journal.Event{
		Kind:     kind,
		EntityID: entityID,
		Summary:  summary,
	}); err != nil {
		m.logger.Warn("journal write failed", "kind", string(kind), "error", err.Error())
	}
}
