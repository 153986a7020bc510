// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package store persists aemctl entities as JSON files under the data
directory.

Layout:

	<dataDir>/profiles/<id>.json   one file per profile
	<dataDir>/instances.json       all instances
	<dataDir>/licenses.json        all licenses
	<dataDir>/maven_configs.json   all Maven config records
	<dataDir>/state.json           active profile id

The store keeps an in-memory mirror of every file, guarded by one mutex.
Writes go through to disk immediately. An fsnotify watcher marks the
mirror dirty when another process (or the user) edits the files, and the
next read reloads from disk.

# Thread Safety

All exported methods are safe for concurrent use.
*/
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/pkg/logging"
)

// Sentinel errors returned by store operations.
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrInstanceNotFound    = errors.New("instance not found")
	ErrLicenseNotFound     = errors.New("license not found")
	ErrMavenConfigNotFound = errors.New("maven config not found")
	ErrDuplicateName       = errors.New("name already in use")
	ErrActiveProfileDelete = errors.New("cannot delete the active profile")
)

const (
	profilesDirName  = "profiles"
	instancesFile    = "instances.json"
	licensesFile     = "licenses.json"
	mavenConfigsFile = "maven_configs.json"
	stateFile        = "state.json"
)

// appState is the contents of state.json.
type appState struct {
	ActiveProfileID string `json:"activeProfileId,omitempty"`
}

// Store owns the persisted entity collections.
type Store struct {
	dataDir string
	logger  *logging.Logger

	mu           sync.Mutex
	profiles     map[string]models.Profile
	instances    []models.Instance
	licenses     []models.License
	mavenConfigs []models.MavenConfig
	state        appState

	watcher *fsnotify.Watcher
	dirty   atomic.Bool
	done    chan struct{}
}

// Open loads (or initializes) the store at dataDir and starts the change
// watcher. Callers must Close the returned store.
func Open(dataDir string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(filepath.Join(dataDir, profilesDirName), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		dataDir:  dataDir,
		logger:   logger,
		profiles: make(map[string]models.Profile),
		done:     make(chan struct{}),
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	if err := s.startWatcher(); err != nil {
		// The watcher is an optimization; the store still works with
		// stale-mirror risk only for out-of-band edits.
		logger.Warn("data watcher unavailable", "error", err.Error())
	}
	return s, nil
}

// Close stops the change watcher.
func (s *Store) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// DataDir returns the directory the store persists into.
func (s *Store) DataDir() string {
	return s.dataDir
}

// =============================================================================
// Loading and saving
// =============================================================================

func (s *Store) loadAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAllLocked()
}

func (s *Store) loadAllLocked() error {
	profiles, err := s.loadProfiles()
	if err != nil {
		return err
	}
	s.profiles = profiles

	if err := loadJSON(filepath.Join(s.dataDir, instancesFile), &s.instances); err != nil {
		return err
	}
	if err := loadJSON(filepath.Join(s.dataDir, licensesFile), &s.licenses); err != nil {
		return err
	}
	if err := loadJSON(filepath.Join(s.dataDir, mavenConfigsFile), &s.mavenConfigs); err != nil {
		return err
	}
	if err := loadJSON(filepath.Join(s.dataDir, stateFile), &s.state); err != nil {
		return err
	}

	// The per-file IsActive flags follow state.json, which is
	// authoritative for activation.
	for id, p := range s.profiles {
		p.IsActive = id == s.state.ActiveProfileID
		s.profiles[id] = p
	}
	return nil
}

func (s *Store) loadProfiles() (map[string]models.Profile, error) {
	dir := filepath.Join(s.dataDir, profilesDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.Profile{}, nil
		}
		return nil, fmt.Errorf("reading profiles directory: %w", err)
	}

	profiles := make(map[string]models.Profile, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var p models.Profile
		path := filepath.Join(dir, entry.Name())
		if err := loadJSON(path, &p); err != nil {
			s.logger.Warn("skipping unreadable profile file", "path", path, "error", err.Error())
			continue
		}
		if p.ID == "" {
			continue
		}
		profiles[p.ID] = p
	}
	return profiles, nil
}

// loadJSON reads path into v. A missing file leaves v untouched.
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// saveJSON writes v to path atomically (temp file + rename).
func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func (s *Store) saveProfileLocked(p models.Profile) error {
	path := filepath.Join(s.dataDir, profilesDirName, p.ID+".json")
	return saveJSON(path, p)
}

func (s *Store) removeProfileFileLocked(id string) error {
	path := filepath.Join(s.dataDir, profilesDirName, id+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing profile file: %w", err)
	}
	return nil
}

func (s *Store) saveInstancesLocked() error {
	return saveJSON(filepath.Join(s.dataDir, instancesFile), s.instances)
}

func (s *Store) saveLicensesLocked() error {
	return saveJSON(filepath.Join(s.dataDir, licensesFile), s.licenses)
}

func (s *Store) saveMavenConfigsLocked() error {
	return saveJSON(filepath.Join(s.dataDir, mavenConfigsFile), s.mavenConfigs)
}

func (s *Store) saveStateLocked() error {
	return saveJSON(filepath.Join(s.dataDir, stateFile), s.state)
}

// =============================================================================
// Change watcher
// =============================================================================

func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.dataDir); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(filepath.Join(s.dataDir, profilesDirName)); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Our own atomic writes rename a .tmp file into
				// place; those events are indistinguishable from
				// external edits, so every change marks dirty.
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					s.dirty.Store(true)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("data watcher error", "error", err.Error())
			}
		}
	}()
	return nil
}

// reloadIfDirtyLocked refreshes the mirror when the watcher saw changes.
// Callers must hold s.mu.
func (s *Store) reloadIfDirtyLocked() {
	if !s.dirty.Swap(false) {
		return
	}
	if err := s.loadAllLocked(); err != nil {
		s.logger.Error("reloading data files", "error", err.Error())
	}
}
