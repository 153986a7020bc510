// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package bootstrap

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/envswitch"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

func testEnv(t *testing.T, sw envswitch.Switcher) *Environment {
	t.Helper()
	base := filepath.Join(t.TempDir(), ".aemctl")
	e, err := New(Config{
		BaseDir:  base,
		Switcher: sw,
		Logger:   logging.New(logging.Config{Quiet: true}),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

// openStore opens the environment's data store for seeding test data.
func openStore(t *testing.T, e *Environment) *store.Store {
	t.Helper()
	st, err := store.Open(e.DataDir(), logging.New(logging.Config{Quiet: true}))
	if err != nil {
		t.Fatal(err)
	}
	return st
}

// =============================================================================
// Initialization Tests
// =============================================================================

func TestInitializeEnvironment(t *testing.T) {
	e := testEnv(t, nil)

	before := e.CheckEnvironmentStatus()
	if before.Initialized() {
		t.Fatal("fresh environment must not report initialized")
	}

	if err := e.InitializeEnvironment(); err != nil {
		t.Fatalf("InitializeEnvironment() error = %v", err)
	}

	after := e.CheckEnvironmentStatus()
	if !after.Initialized() {
		t.Errorf("status after init = %+v", after)
	}
	for _, sub := range []string{"java", "node", "data"} {
		if !dirExists(filepath.Join(e.baseDir, sub)) {
			t.Errorf("missing directory %s", sub)
		}
	}
	if !fileExists(e.configPath) {
		t.Error("default config not written")
	}
}

func TestInitializeEnvironment_Idempotent(t *testing.T) {
	e := testEnv(t, nil)
	if err := e.InitializeEnvironment(); err != nil {
		t.Fatal(err)
	}

	// Customize the config, then re-init: the file must survive.
	if err := os.WriteFile(e.configPath, []byte("data_dir: /custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.InitializeEnvironment(); err != nil {
		t.Fatalf("second init error = %v", err)
	}
	raw, _ := os.ReadFile(e.configPath)
	if string(raw) != "data_dir: /custom\n" {
		t.Error("re-init overwrote the existing config")
	}
}

func TestCheckEnvironmentStatus_ActiveProfile(t *testing.T) {
	e := testEnv(t, nil)
	if err := e.InitializeEnvironment(); err != nil {
		t.Fatal(err)
	}

	st := openStore(t, e)
	p, err := st.CreateProfile(models.Profile{Name: "dev"})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SetActiveProfile(p.ID); err != nil {
		t.Fatal(err)
	}
	st.Close()

	status := e.CheckEnvironmentStatus()
	if status.ActiveProfileID != p.ID {
		t.Errorf("ActiveProfileID = %q, want %q", status.ActiveProfileID, p.ID)
	}
}

// =============================================================================
// Export / Import Tests
// =============================================================================

func TestExportImportRoundTrip(t *testing.T) {
	src := testEnv(t, nil)
	if err := src.InitializeEnvironment(); err != nil {
		t.Fatal(err)
	}

	st := openStore(t, src)
	p, err := st.CreateProfile(models.Profile{Name: "exported", JavaVersion: "17.0.1"})
	if err != nil {
		t.Fatal(err)
	}
	st.Close()

	bundle := filepath.Join(t.TempDir(), "backup.zip")
	if err := src.ExportAll(bundle); err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	dst := testEnv(t, nil)
	if err := dst.InitializeEnvironment(); err != nil {
		t.Fatal(err)
	}
	if err := dst.ImportAll(bundle); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	st2 := openStore(t, dst)
	defer st2.Close()
	got, err := st2.GetProfile(p.ID)
	if err != nil {
		t.Fatalf("profile missing after import: %v", err)
	}
	if got.Name != "exported" || got.JavaVersion != "17.0.1" {
		t.Errorf("profile = %+v", got)
	}
}

func TestImportAll_ReplacesExistingData(t *testing.T) {
	src := testEnv(t, nil)
	src.InitializeEnvironment()
	bundle := filepath.Join(t.TempDir(), "empty.zip")
	if err := src.ExportAll(bundle); err != nil {
		t.Fatal(err)
	}

	dst := testEnv(t, nil)
	dst.InitializeEnvironment()
	st := openStore(t, dst)
	st.CreateProfile(models.Profile{Name: "doomed"})
	st.Close()

	if err := dst.ImportAll(bundle); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	st2 := openStore(t, dst)
	defer st2.Close()
	if got := st2.ListProfiles(); len(got) != 0 {
		t.Errorf("pre-import data survived: %v", got)
	}
}

func TestImportAll_RejectsMissingManifest(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "bad.zip")
	f, _ := os.Create(bundle)
	zw := zip.NewWriter(f)
	w, _ := zw.Create("data/profiles/x.json")
	w.Write([]byte("{}"))
	zw.Close()
	f.Close()

	e := testEnv(t, nil)
	e.InitializeEnvironment()
	if err := e.ImportAll(bundle); err == nil {
		t.Error("bundle without manifest must be rejected")
	}
}

func TestImportAll_RejectsWrongVersion(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "future.zip")
	f, _ := os.Create(bundle)
	zw := zip.NewWriter(f)
	w, _ := zw.Create(manifestName)
	w.Write([]byte("version: \"99\"\n"))
	zw.Close()
	f.Close()

	e := testEnv(t, nil)
	e.InitializeEnvironment()
	if err := e.ImportAll(bundle); err == nil {
		t.Error("future bundle version must be rejected")
	}
}

func TestImportAll_RejectsEscapingEntries(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "evil.zip")
	f, _ := os.Create(bundle)
	zw := zip.NewWriter(f)
	w, _ := zw.Create(manifestName)
	w.Write([]byte("version: \"1\"\n"))
	w, _ = zw.Create("../outside.txt")
	w.Write([]byte("escape"))
	zw.Close()
	f.Close()

	e := testEnv(t, nil)
	e.InitializeEnvironment()
	if err := e.ImportAll(bundle); err == nil {
		t.Error("path traversal entry must be rejected")
	}
}

// =============================================================================
// Reset Tests
// =============================================================================

func TestResetAll(t *testing.T) {
	removedBlock := false
	sw := &envswitch.MockSwitcher{
		RemoveShellBlockFunc: func() error { removedBlock = true; return nil },
	}
	e := testEnv(t, sw)
	e.InitializeEnvironment()

	st := openStore(t, e)
	st.CreateProfile(models.Profile{Name: "doomed"})
	st.Close()

	if err := e.ResetAll(); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if !removedBlock {
		t.Error("shell block not removed")
	}

	// Back to a fresh, initialized environment.
	status := e.CheckEnvironmentStatus()
	if !status.Initialized() {
		t.Errorf("status after reset = %+v", status)
	}
	st2 := openStore(t, e)
	defer st2.Close()
	if got := st2.ListProfiles(); len(got) != 0 {
		t.Errorf("profiles survived reset: %v", got)
	}
}
