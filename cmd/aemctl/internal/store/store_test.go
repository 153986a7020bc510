// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/pkg/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), logging.New(logging.Config{Quiet: true}))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// Profile Tests
// =============================================================================

func TestCreateProfile_AssignsIdentity(t *testing.T) {
	s := openTestStore(t)

	p, err := s.CreateProfile(models.Profile{Name: "dev"})
	if err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if p.ID == "" {
		t.Error("expected assigned id")
	}
	if p.IsActive {
		t.Error("new profile must not be active")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}
}

func TestCreateProfile_DuplicateName(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.CreateProfile(models.Profile{Name: "dev"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateProfile(models.Profile{Name: "DEV"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

// TestSetActiveProfile_Exclusivity verifies that after activating B,
// exactly one profile is active and it is B.
func TestSetActiveProfile_Exclusivity(t *testing.T) {
	s := openTestStore(t)

	a, _ := s.CreateProfile(models.Profile{Name: "a"})
	b, _ := s.CreateProfile(models.Profile{Name: "b"})

	if err := s.SetActiveProfile(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActiveProfile(b.ID); err != nil {
		t.Fatal(err)
	}

	var activeIDs []string
	for _, p := range s.ListProfiles() {
		if p.IsActive {
			activeIDs = append(activeIDs, p.ID)
		}
	}
	if len(activeIDs) != 1 || activeIDs[0] != b.ID {
		t.Errorf("active profiles = %v, want exactly [%s]", activeIDs, b.ID)
	}
}

// TestSetActiveProfile_SurvivesReload verifies activation is persisted,
// not just mirrored in memory.
func TestSetActiveProfile_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	logger := logging.New(logging.Config{Quiet: true})

	s, err := Open(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := s.CreateProfile(models.Profile{Name: "dev"})
	if err := s.SetActiveProfile(p.ID); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	active, ok := s2.ActiveProfile()
	if !ok {
		t.Fatal("expected an active profile after reload")
	}
	if active.ID != p.ID {
		t.Errorf("active = %s, want %s", active.ID, p.ID)
	}
}

func TestDeleteProfile_RefusesActive(t *testing.T) {
	s := openTestStore(t)

	p, _ := s.CreateProfile(models.Profile{Name: "dev"})
	if err := s.SetActiveProfile(p.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteProfile(p.ID); !errors.Is(err, ErrActiveProfileDelete) {
		t.Errorf("expected ErrActiveProfileDelete, got %v", err)
	}

	// Deactivate, then delete succeeds.
	if err := s.SetActiveProfile(""); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProfile(p.ID); err != nil {
		t.Errorf("DeleteProfile() after deactivation error = %v", err)
	}
}

func TestDuplicateProfile(t *testing.T) {
	s := openTestStore(t)

	src, _ := s.CreateProfile(models.Profile{
		Name:    "dev",
		EnvVars: map[string]string{"AEM_ENV": "dev"},
	})
	if err := s.SetActiveProfile(src.ID); err != nil {
		t.Fatal(err)
	}

	clone, err := s.DuplicateProfile(src.ID)
	if err != nil {
		t.Fatalf("DuplicateProfile() error = %v", err)
	}
	if clone.ID == src.ID {
		t.Error("clone must get a fresh id")
	}
	if clone.Name != "dev (copy)" {
		t.Errorf("clone name = %q, want %q", clone.Name, "dev (copy)")
	}
	if clone.IsActive {
		t.Error("clone must never be active")
	}
	// Env vars are copied, not shared.
	clone.EnvVars["AEM_ENV"] = "other"
	reread, _ := s.GetProfile(src.ID)
	if reread.EnvVars["AEM_ENV"] != "dev" {
		t.Error("duplicate shares the source EnvVars map")
	}
}

func TestDuplicateProfile_NameDisambiguation(t *testing.T) {
	s := openTestStore(t)

	src, _ := s.CreateProfile(models.Profile{Name: "dev"})
	first, _ := s.DuplicateProfile(src.ID)
	second, err := s.DuplicateProfile(src.ID)
	if err != nil {
		t.Fatalf("second DuplicateProfile() error = %v", err)
	}
	if first.Name == second.Name {
		t.Errorf("duplicate names collide: %q", second.Name)
	}
	if !strings.HasPrefix(second.Name, "dev (copy)") {
		t.Errorf("second clone name = %q", second.Name)
	}
}

func TestImportProfile_FreshIdentity(t *testing.T) {
	s := openTestStore(t)

	existing, _ := s.CreateProfile(models.Profile{Name: "dev"})

	imported, err := s.ImportProfile(models.Profile{
		ID:       existing.ID, // ids from files are never trusted
		Name:     "dev",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("ImportProfile() error = %v", err)
	}
	if imported.ID == existing.ID {
		t.Error("import must assign a fresh id")
	}
	if imported.IsActive {
		t.Error("imported profile must not be active")
	}
	if imported.Name != "dev (imported)" {
		t.Errorf("imported name = %q", imported.Name)
	}
}

func TestPatchActiveProfile(t *testing.T) {
	s := openTestStore(t)

	// No active profile: patch is a reported no-op.
	patched, err := s.PatchActiveProfile(func(p *models.Profile) { p.JavaVersion = "17" })
	if err != nil || patched {
		t.Errorf("PatchActiveProfile() = (%v, %v), want (false, nil)", patched, err)
	}

	p, _ := s.CreateProfile(models.Profile{Name: "dev"})
	if err := s.SetActiveProfile(p.ID); err != nil {
		t.Fatal(err)
	}

	patched, err = s.PatchActiveProfile(func(p *models.Profile) {
		p.JavaVersion = "17"
		p.JavaPath = "/usr/lib/jvm/temurin-17"
	})
	if err != nil || !patched {
		t.Fatalf("PatchActiveProfile() = (%v, %v), want (true, nil)", patched, err)
	}

	got, _ := s.GetProfile(p.ID)
	if got.JavaVersion != "17" || got.JavaPath != "/usr/lib/jvm/temurin-17" {
		t.Errorf("patch not persisted: %+v", got)
	}
	if !got.IsActive {
		t.Error("patch must not clear the active flag")
	}
}

// TestSetActiveProfile_Concurrent hammers activation from multiple
// goroutines and verifies the exclusivity invariant still holds.
func TestSetActiveProfile_Concurrent(t *testing.T) {
	s := openTestStore(t)

	var ids []string
	for i := 0; i < 4; i++ {
		p, err := s.CreateProfile(models.Profile{Name: fmt.Sprintf("p%d", i)})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, p.ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SetActiveProfile(ids[i%len(ids)])
		}(i)
	}
	wg.Wait()

	active := 0
	for _, p := range s.ListProfiles() {
		if p.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active count = %d, want 1", active)
	}
}

// =============================================================================
// Instance Tests
// =============================================================================

func TestInstanceCRUD(t *testing.T) {
	s := openTestStore(t)

	inst, err := s.AddInstance(models.Instance{
		Name:         "local author",
		InstanceType: models.InstanceAuthor,
		Host:         "localhost",
		Port:         4502,
		Path:         "/opt/aem/author",
	})
	if err != nil {
		t.Fatalf("AddInstance() error = %v", err)
	}
	if inst.Status != models.StatusStopped {
		t.Errorf("new instance status = %s, want stopped", inst.Status)
	}

	inst.Port = 14502
	if _, err := s.UpdateInstance(inst); err != nil {
		t.Fatalf("UpdateInstance() error = %v", err)
	}
	got, _ := s.GetInstance(inst.ID)
	if got.Port != 14502 {
		t.Errorf("Port = %d, want 14502", got.Port)
	}

	if err := s.DeleteInstance(inst.ID); err != nil {
		t.Fatalf("DeleteInstance() error = %v", err)
	}
	if _, err := s.GetInstance(inst.ID); !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("expected ErrInstanceNotFound, got %v", err)
	}
}

func TestSetInstanceStatus(t *testing.T) {
	s := openTestStore(t)

	inst, _ := s.AddInstance(models.Instance{
		Name:         "author",
		InstanceType: models.InstanceAuthor,
		Host:         "localhost",
		Port:         4502,
		Path:         "/opt/aem/author",
	})

	got, err := s.SetInstanceStatus(inst.ID, models.StatusStarting, 0)
	if err != nil {
		t.Fatalf("SetInstanceStatus() error = %v", err)
	}
	if got.Status != models.StatusStarting {
		t.Errorf("Status = %s, want starting", got.Status)
	}

	got, _ = s.SetInstanceStatus(inst.ID, models.StatusRunning, 4321)
	if got.PID != 4321 {
		t.Errorf("PID = %d, want 4321", got.PID)
	}

	got, _ = s.SetInstanceStatus(inst.ID, models.StatusStopped, 0)
	if got.PID != 0 {
		t.Errorf("stopped instance should clear PID, got %d", got.PID)
	}
}

// =============================================================================
// Maven Config Tests
// =============================================================================

func TestSetActiveMavenConfig_Exclusivity(t *testing.T) {
	s := openTestStore(t)

	a, _ := s.AddMavenConfig(models.MavenConfig{Name: "client-a", Path: "/m2/a/settings.xml"})
	b, _ := s.AddMavenConfig(models.MavenConfig{Name: "client-b", Path: "/m2/b/settings.xml"})

	if _, err := s.SetActiveMavenConfig(a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetActiveMavenConfig(b.ID); err != nil {
		t.Fatal(err)
	}

	active := 0
	for _, cfg := range s.ListMavenConfigs() {
		if cfg.IsActive {
			active++
			if cfg.ID != b.ID {
				t.Errorf("wrong active config: %s", cfg.ID)
			}
		}
	}
	if active != 1 {
		t.Errorf("active count = %d, want 1", active)
	}
	if got := s.ActiveMavenPath(); got != "/m2/b/settings.xml" {
		t.Errorf("ActiveMavenPath() = %q", got)
	}
}

func TestSetActiveMavenConfig_Unknown(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.SetActiveMavenConfig("missing"); !errors.Is(err, ErrMavenConfigNotFound) {
		t.Errorf("expected ErrMavenConfigNotFound, got %v", err)
	}
}

// =============================================================================
// License Tests
// =============================================================================

func TestLicenseCRUD_StatusDerived(t *testing.T) {
	s := openTestStore(t)

	lic, err := s.AddLicense(models.License{
		Name:        "prod license",
		ProductName: "Adobe Experience Manager",
		LicenseKey:  "AAAA-BBBB",
	})
	if err != nil {
		t.Fatalf("AddLicense() error = %v", err)
	}
	if lic.Status != models.LicenseValid {
		t.Errorf("Status = %s, want valid", lic.Status)
	}

	lic.ExpiryDate = "2000-01-01"
	updated, err := s.UpdateLicense(lic)
	if err != nil {
		t.Fatalf("UpdateLicense() error = %v", err)
	}
	if updated.Status != models.LicenseExpired {
		t.Errorf("Status = %s, want expired", updated.Status)
	}

	if err := s.DeleteLicense(lic.ID); err != nil {
		t.Fatalf("DeleteLicense() error = %v", err)
	}
	if _, err := s.GetLicense(lic.ID); !errors.Is(err, ErrLicenseNotFound) {
		t.Errorf("expected ErrLicenseNotFound, got %v", err)
	}
}
