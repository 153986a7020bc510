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

	"github.com/aemdev/aemctl/cmd/aemctl/internal/license"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// ListLicenses returns all licenses with freshly derived status.
func (s *Store) ListLicenses() []models.License {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	now := time.Now()
	out := make([]models.License, len(s.licenses))
	for i, lic := range s.licenses {
		lic.Status = license.DeriveStatus(lic, now)
		out[i] = lic
	}
	return out
}

// GetLicense returns the license with the given id.
func (s *Store) GetLicense(id string) (models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for _, lic := range s.licenses {
		if lic.ID == id {
			lic.Status = license.DeriveStatus(lic, time.Now())
			return lic, nil
		}
	}
	return models.License{}, fmt.Errorf("%w: %s", ErrLicenseNotFound, id)
}

// AddLicense persists a new license record. The id and derived status
// are assigned here.
func (s *Store) AddLicense(lic models.License) (models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	lic.ID = uuid.NewString()
	lic.Status = license.DeriveStatus(lic, time.Now())
	s.licenses = append(s.licenses, lic)
	if err := s.saveLicensesLocked(); err != nil {
		s.licenses = s.licenses[:len(s.licenses)-1]
		return models.License{}, err
	}
	return lic, nil
}

// UpdateLicense replaces the stored license with the same id and
// re-derives its status.
func (s *Store) UpdateLicense(lic models.License) (models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for i := range s.licenses {
		if s.licenses[i].ID == lic.ID {
			previous := s.licenses[i]
			lic.Status = license.DeriveStatus(lic, time.Now())
			s.licenses[i] = lic
			if err := s.saveLicensesLocked(); err != nil {
				s.licenses[i] = previous
				return models.License{}, err
			}
			return lic, nil
		}
	}
	return models.License{}, fmt.Errorf("%w: %s", ErrLicenseNotFound, lic.ID)
}

// DeleteLicense removes a license record. The underlying
// license.properties file on disk is left alone.
func (s *Store) DeleteLicense(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for i := range s.licenses {
		if s.licenses[i].ID == id {
			s.licenses = append(s.licenses[:i], s.licenses[i+1:]...)
			return s.saveLicensesLocked()
		}
	}
	return fmt.Errorf("%w: %s", ErrLicenseNotFound, id)
}
