// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/reconcile"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/scan"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

// writeSettings creates dir/settings.xml with a minimal valid body.
func writeSettings(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "settings.xml")
	require.NoError(t, os.WriteFile(path, []byte("<settings></settings>"), 0644))
	return path
}

// TestScanReconcileImportFlow drives the full bulk-import pipeline:
// candidates come from a real filesystem scan, the reconcile filter
// drops the one already registered, and the survivors land in the
// store under derived names.
func TestScanReconcileImportFlow(t *testing.T) {
	quiet := logging.New(logging.Config{Quiet: true})
	root := t.TempDir()

	writeSettings(t, filepath.Join(root, "client-a"))
	writeSettings(t, filepath.Join(root, "client-b"))
	alreadyImported := writeSettings(t, filepath.Join(root, "client-c"))

	st, err := store.Open(t.TempDir(), quiet)
	require.NoError(t, err)
	defer st.Close()

	// client-c is pre-registered under its parent-directory name, the
	// same key Reconcile compares against.
	_, err = st.AddMavenConfig(models.MavenConfig{Name: "client-c", Path: alreadyImported})
	require.NoError(t, err)

	scanner := scan.New(nil, nil, nil, nil, quiet)
	var candidates []models.Candidate
	for _, dir := range []string{"client-a", "client-b", "client-c"} {
		candidates = append(candidates, scanner.ScanMavenSettings(filepath.Join(root, dir))...)
	}
	require.Len(t, candidates, 3)

	var existing []reconcile.ImportedRef
	for _, cfg := range st.ListMavenConfigs() {
		existing = append(existing, reconcile.ImportedRef{ID: cfg.ID, Name: cfg.Name, Path: cfg.Path})
	}
	fresh := reconcile.Reconcile(candidates, existing, st.ActiveMavenPath())
	require.Len(t, fresh, 2, "client-c should be filtered as already imported")

	result, err := New(quiet).ImportAll(context.Background(), fresh,
		func(ctx context.Context, name, path string) error {
			_, addErr := st.AddMavenConfig(models.MavenConfig{Name: name, Path: path})
			return addErr
		}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.FailCount)

	names := make(map[string]bool)
	for _, cfg := range st.ListMavenConfigs() {
		names[cfg.Name] = true
	}
	assert.True(t, names["client-a"], "derived name should be the parent directory")
	assert.True(t, names["client-b"])
	assert.Len(t, names, 3)

	// A second pass over the same disk state must find nothing new.
	existing = existing[:0]
	for _, cfg := range st.ListMavenConfigs() {
		existing = append(existing, reconcile.ImportedRef{ID: cfg.ID, Name: cfg.Name, Path: cfg.Path})
	}
	assert.Empty(t, reconcile.Reconcile(candidates, existing, st.ActiveMavenPath()))
}
