// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// ListInstances returns all instances in insertion order.
func (s *Store) ListInstances() []models.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	out := make([]models.Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// GetInstance returns the instance with the given id.
func (s *Store) GetInstance(id string) (models.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for _, inst := range s.instances {
		if inst.ID == id {
			return inst, nil
		}
	}
	return models.Instance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
}

// AddInstance persists a new instance. The id is assigned here and the
// status starts as stopped.
func (s *Store) AddInstance(inst models.Instance) (models.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	inst.ID = uuid.NewString()
	if inst.Status == "" {
		inst.Status = models.StatusStopped
	}
	s.instances = append(s.instances, inst)
	if err := s.saveInstancesLocked(); err != nil {
		s.instances = s.instances[:len(s.instances)-1]
		return models.Instance{}, err
	}
	return inst, nil
}

// UpdateInstance replaces the stored instance with the same id.
func (s *Store) UpdateInstance(inst models.Instance) (models.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for i := range s.instances {
		if s.instances[i].ID == inst.ID {
			previous := s.instances[i]
			s.instances[i] = inst
			if err := s.saveInstancesLocked(); err != nil {
				s.instances[i] = previous
				return models.Instance{}, err
			}
			return inst, nil
		}
	}
	return models.Instance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, inst.ID)
}

// DeleteInstance removes an instance.
func (s *Store) DeleteInstance(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for i := range s.instances {
		if s.instances[i].ID == id {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			return s.saveInstancesLocked()
		}
	}
	return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
}

// SetInstanceStatus records a status transition, optionally with the
// process id for started instances.
func (s *Store) SetInstanceStatus(id string, status models.InstanceStatus, pid int) (models.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfDirtyLocked()

	for i := range s.instances {
		if s.instances[i].ID == id {
			s.instances[i].Status = status
			if pid != 0 || status == models.StatusStopped {
				s.instances[i].PID = pid
			}
			if err := s.saveInstancesLocked(); err != nil {
				return models.Instance{}, err
			}
			return s.instances[i], nil
		}
	}
	return models.Instance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
}
