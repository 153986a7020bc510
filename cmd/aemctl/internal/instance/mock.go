// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package instance

import (
	"context"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// MockController is a test double for Controller.
type MockController struct {
	StartFunc         func(ctx context.Context, id string) (models.Instance, error)
	StopFunc          func(ctx context.Context, id string) (models.Instance, error)
	RefreshStatusFunc func(ctx context.Context, id string) (models.Instance, error)
	DetectStatusFunc  func(ctx context.Context, inst models.Instance) models.InstanceStatus
	CheckHealthFunc   func(ctx context.Context, id string) (models.HealthReport, error)
}

var _ Controller = (*MockController)(nil)

func (m *MockController) Start(ctx context.Context, id string) (models.Instance, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, id)
	}
	return models.Instance{ID: id, Status: models.StatusRunning}, nil
}

func (m *MockController) Stop(ctx context.Context, id string) (models.Instance, error) {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, id)
	}
	return models.Instance{ID: id, Status: models.StatusStopped}, nil
}

func (m *MockController) RefreshStatus(ctx context.Context, id string) (models.Instance, error) {
	if m.RefreshStatusFunc != nil {
		return m.RefreshStatusFunc(ctx, id)
	}
	return models.Instance{ID: id}, nil
}

func (m *MockController) DetectStatus(ctx context.Context, inst models.Instance) models.InstanceStatus {
	if m.DetectStatusFunc != nil {
		return m.DetectStatusFunc(ctx, inst)
	}
	return models.StatusUnknown
}

func (m *MockController) CheckHealth(ctx context.Context, id string) (models.HealthReport, error) {
	if m.CheckHealthFunc != nil {
		return m.CheckHealthFunc(ctx, id)
	}
	return models.HealthReport{}, nil
}

// MockLauncher is a test double for Launcher.
type MockLauncher struct {
	LaunchFunc       func(ctx context.Context, inst models.Instance) (int, error)
	KillByPortFunc   func(ctx context.Context, port int) error
	PortOwnerFunc    func(ctx context.Context, port int) (int, string, error)
	ProcessAliveFunc func(pid int) bool
}

var _ Launcher = (*MockLauncher)(nil)

func (m *MockLauncher) Launch(ctx context.Context, inst models.Instance) (int, error) {
	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx, inst)
	}
	return 12345, nil
}

func (m *MockLauncher) KillByPort(ctx context.Context, port int) error {
	if m.KillByPortFunc != nil {
		return m.KillByPortFunc(ctx, port)
	}
	return nil
}

func (m *MockLauncher) PortOwner(ctx context.Context, port int) (int, string, error) {
	if m.PortOwnerFunc != nil {
		return m.PortOwnerFunc(ctx, port)
	}
	return 0, "", nil
}

func (m *MockLauncher) ProcessAlive(pid int) bool {
	if m.ProcessAliveFunc != nil {
		return m.ProcessAliveFunc(pid)
	}
	return false
}
