// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// ListMavenConfigs returns all Maven config records in insertion order.
func (s *Store) ListMavenConfigs() []models.MavenConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	out := make([]models.MavenConfig, len(s.mavenConfigs))
	copy(out, s.mavenConfigs)
	return out
}

// GetMavenConfig returns the config with the given id.
func (s *Store) GetMavenConfig(id string) (models.MavenConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for _, cfg := range s.mavenConfigs {
		if cfg.ID == id {
			return cfg, nil
		}
	}
	return models.MavenConfig{}, fmt.Errorf("%w: %s", ErrMavenConfigNotFound, id)
}

// ActiveMavenPath returns the path of the active Maven config, or ""
// when none is active. The reconciliation filter uses this to keep the
// active settings file out of scan results.
func (s *Store) ActiveMavenPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for _, cfg := range s.mavenConfigs {
		if cfg.IsActive {
			return cfg.Path
		}
	}
	return ""
}

// AddMavenConfig persists a new Maven config record.
func (s *Store) AddMavenConfig(cfg models.MavenConfig) (models.MavenConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	cfg.ID = uuid.NewString()
	cfg.IsActive = false
	cfg.CreatedAt = time.Now()
	s.mavenConfigs = append(s.mavenConfigs, cfg)
	if err := s.saveMavenConfigsLocked(); err != nil {
		s.mavenConfigs = s.mavenConfigs[:len(s.mavenConfigs)-1]
		return models.MavenConfig{}, err
	}
	return cfg, nil
}

// DeleteMavenConfig removes a config record.
func (s *Store) DeleteMavenConfig(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for i := range s.mavenConfigs {
		if s.mavenConfigs[i].ID == id {
			s.mavenConfigs = append(s.mavenConfigs[:i], s.mavenConfigs[i+1:]...)
			return s.saveMavenConfigsLocked()
		}
	}
	return fmt.Errorf("%w: %s", ErrMavenConfigNotFound, id)
}

// SetActiveMavenConfig flips the active flag to the given id, clearing
// it on every other record in the same write. At most one config is
// active afterwards.
func (s *Store) SetActiveMavenConfig(id string) (models.MavenConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	var activated *models.MavenConfig
	for i := range s.mavenConfigs {
		s.mavenConfigs[i].IsActive = s.mavenConfigs[i].ID == id
		if s.mavenConfigs[i].IsActive {
			activated = &s.mavenConfigs[i]
		}
	}
	if activated == nil {
		return models.MavenConfig{}, fmt.Errorf("%w: %s", ErrMavenConfigNotFound, id)
	}
	if err := s.saveMavenConfigsLocked(); err != nil {
		return models.MavenConfig{}, err
	}
	return *activated, nil
}
