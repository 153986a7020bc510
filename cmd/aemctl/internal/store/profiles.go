// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// ListProfiles returns all profiles sorted by name.
func (s *Store) ListProfiles() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetProfile returns the profile with the given id.
func (s *Store) GetProfile(id string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return p, nil
}

// ActiveProfile returns the currently active profile, or false when no
// profile is active.
func (s *Store) ActiveProfile() (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	if s.state.ActiveProfileID == "" {
		return models.Profile{}, false
	}
	p, ok := s.profiles[s.state.ActiveProfileID]
	return p, ok
}

// CreateProfile persists a new profile. The id, timestamps, and active
// flag are assigned here; callers fill the selection fields only.
// Duplicate names are rejected.
func (s *Store) CreateProfile(p models.Profile) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	if s.nameInUseLocked(p.Name, "") {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}

	now := time.Now()
	p.ID = uuid.NewString()
	p.IsActive = false
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.saveProfileLocked(p); err != nil {
		return models.Profile{}, err
	}
	s.profiles[p.ID] = p
	return p, nil
}

// UpdateProfile replaces the stored profile with the same id. The
// active flag and creation time cannot be changed through updates.
func (s *Store) UpdateProfile(p models.Profile) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	current, ok := s.profiles[p.ID]
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, p.ID)
	}
	if s.nameInUseLocked(p.Name, p.ID) {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}

	p.IsActive = current.IsActive
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now()

	if err := s.saveProfileLocked(p); err != nil {
		return models.Profile{}, err
	}
	s.profiles[p.ID] = p
	return p, nil
}

// DeleteProfile removes a profile. Deleting the active profile is
// refused; callers must activate another profile first.
func (s *Store) DeleteProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	if _, ok := s.profiles[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	if s.state.ActiveProfileID == id {
		return ErrActiveProfileDelete
	}
	if err := s.removeProfileFileLocked(id); err != nil {
		return err
	}
	delete(s.profiles, id)
	return nil
}

// DuplicateProfile clones a profile under a fresh id. The copy gets
// " (copy)" appended to its name, disambiguated with a counter when
// that name is also taken, and is never active.
func (s *Store) DuplicateProfile(id string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	src, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}

	clone := src
	clone.ID = uuid.NewString()
	clone.IsActive = false
	clone.Name = s.availableNameLocked(src.Name + " (copy)")
	if len(src.EnvVars) > 0 {
		clone.EnvVars = make(map[string]string, len(src.EnvVars))
		for k, v := range src.EnvVars {
			clone.EnvVars[k] = v
		}
	}
	now := time.Now()
	clone.CreatedAt = now
	clone.UpdatedAt = now

	if err := s.saveProfileLocked(clone); err != nil {
		return models.Profile{}, err
	}
	s.profiles[clone.ID] = clone
	return clone, nil
}

// ImportProfile persists a profile deserialized from an export file.
// A fresh id is always assigned so an import can never collide with an
// existing profile, and the name is suffixed with " (imported)".
func (s *Store) ImportProfile(p models.Profile) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	p.ID = uuid.NewString()
	p.IsActive = false
	p.Name = s.availableNameLocked(p.Name + " (imported)")
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.saveProfileLocked(p); err != nil {
		return models.Profile{}, err
	}
	s.profiles[p.ID] = p
	return p, nil
}

// SetActiveProfile flips activation to the given id. The previous
// active profile is deactivated in the same write, keeping the
// collection-wide at-most-one-active invariant. Passing "" deactivates
// all profiles.
func (s *Store) SetActiveProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	if id != "" {
		if _, ok := s.profiles[id]; !ok {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
	}

	previous := s.state.ActiveProfileID
	s.state.ActiveProfileID = id
	if err := s.saveStateLocked(); err != nil {
		s.state.ActiveProfileID = previous
		return err
	}

	now := time.Now()
	for pid, p := range s.profiles {
		wasActive := p.IsActive
		p.IsActive = pid == id
		if p.IsActive != wasActive {
			p.UpdatedAt = now
			if err := s.saveProfileLocked(p); err != nil {
				s.logger.Error("persisting profile active flag", "profile_id", pid, "error", err.Error())
			}
		}
		s.profiles[pid] = p
	}
	return nil
}

// PatchActiveProfile applies fn to the active profile and persists the
// result. Returns false when no profile is active.
func (s *Store) PatchActiveProfile(fn func(*models.Profile)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	id := s.state.ActiveProfileID
	if id == "" {
		return false, nil
	}
	p, ok := s.profiles[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}

	fn(&p)
	p.ID = id // the callback cannot re-identify the profile
	p.IsActive = true
	p.UpdatedAt = time.Now()

	if err := s.saveProfileLocked(p); err != nil {
		return false, err
	}
	s.profiles[id] = p
	return true, nil
}

// nameInUseLocked reports whether another profile (excluding exceptID)
// already uses name, case-insensitively.
func (s *Store) nameInUseLocked(name, exceptID string) bool {
	for id, p := range s.profiles {
		if id == exceptID {
			continue
		}
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// availableNameLocked appends a counter until the name is free.
func (s *Store) availableNameLocked(base string) string {
	name := base
	for i := 2; s.nameInUseLocked(name, ""); i++ {
		name = fmt.Sprintf("%s %d", base, i)
	}
	return name
}
