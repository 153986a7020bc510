// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package bootstrap

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Archive layout constants.
const (
	manifestName    = "aemctl-manifest.yaml"
	manifestVersion = "1"
	configEntry     = "aemctl.yaml"
	dataPrefix      = "data/"
)

// manifest describes an export bundle. Version gates imports so a
// future layout change cannot be silently misread.
type manifest struct {
	Version   string    `yaml:"version"`
	CreatedAt time.Time `yaml:"createdAt"`
	Files     []string  `yaml:"files"`
}

// =============================================================================
// Export
// =============================================================================

// ExportAll writes the config file and every data file into a zip
// bundle at zipPath, with a manifest describing the contents.
func (e *Environment) ExportAll(zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	var entries []string

	if fileExists(e.configPath) {
		if err := addFileToZip(zw, e.configPath, configEntry); err != nil {
			return err
		}
		entries = append(entries, configEntry)
	}

	err = filepath.WalkDir(e.dataDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(e.dataDir, p)
		if err != nil {
			return err
		}
		entry := dataPrefix + filepath.ToSlash(rel)
		if err := addFileToZip(zw, p, entry); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("bundle data files: %w", err)
	}

	m := manifest{Version: manifestVersion, CreatedAt: time.Now().UTC(), Files: entries}
	raw, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	w, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return err
	}
	e.logger.Info("environment exported", "bundle", zipPath, "files", len(entries))
	return out.Close()
}

func addFileToZip(zw *zip.Writer, srcPath, entry string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(entry)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

// =============================================================================
// Import
// =============================================================================

// ImportAll restores an export bundle. The bundle is validated and
// fully extracted into a staging directory first; only then is the
// live data swapped, so a corrupt bundle can never leave the
// environment half-replaced.
func (e *Environment) ImportAll(zipPath string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	defer zr.Close()

	m, err := readManifest(&zr.Reader)
	if err != nil {
		return err
	}
	if m.Version != manifestVersion {
		return fmt.Errorf("unsupported bundle version %q (want %q)", m.Version, manifestVersion)
	}

	staging, err := os.MkdirTemp(filepath.Dir(e.dataDir), ".import-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	var stagedConfig string
	for _, f := range zr.File {
		if f.Name == manifestName {
			continue
		}
		entry := path.Clean(f.Name)
		if entry != configEntry && !strings.HasPrefix(entry, dataPrefix) {
			return fmt.Errorf("bundle entry %q outside expected layout", f.Name)
		}
		dst := filepath.Join(staging, filepath.FromSlash(entry))
		if !strings.HasPrefix(dst, staging+string(filepath.Separator)) {
			return fmt.Errorf("bundle entry %q escapes extraction root", f.Name)
		}
		if err := extractZipFile(f, dst); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
		if entry == configEntry {
			stagedConfig = dst
		}
	}

	// Swap the data directory: move the old one aside, promote the
	// staged one, drop the old only after the promotion succeeded.
	stagedData := filepath.Join(staging, "data")
	if err := os.MkdirAll(stagedData, 0o750); err != nil {
		return err
	}
	old := e.dataDir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	if dirExists(e.dataDir) {
		if err := os.Rename(e.dataDir, old); err != nil {
			return fmt.Errorf("set aside current data: %w", err)
		}
	}
	if err := os.Rename(stagedData, e.dataDir); err != nil {
		// Promotion failed: put the old data back.
		if dirExists(old) {
			_ = os.Rename(old, e.dataDir)
		}
		return fmt.Errorf("promote imported data: %w", err)
	}
	_ = os.RemoveAll(old)

	if stagedConfig != "" {
		if err := copyRegularFile(stagedConfig, e.configPath); err != nil {
			return fmt.Errorf("restore config: %w", err)
		}
	}

	e.logger.Info("environment imported", "bundle", zipPath, "files", len(m.Files))
	return nil
}

func readManifest(zr *zip.Reader) (manifest, error) {
	for _, f := range zr.File {
		if f.Name != manifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return manifest{}, err
		}
		defer rc.Close()

		var m manifest
		if err := yaml.NewDecoder(rc).Decode(&m); err != nil {
			return manifest{}, fmt.Errorf("parse manifest: %w", err)
		}
		return m, nil
	}
	return manifest{}, fmt.Errorf("bundle has no %s", manifestName)
}

func extractZipFile(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyRegularFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
