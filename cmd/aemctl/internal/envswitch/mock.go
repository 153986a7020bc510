// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package envswitch

import "github.com/aemdev/aemctl/cmd/aemctl/internal/models"

// MockSwitcher is a test double for Switcher. Unset function fields
// return success-shaped zero values.
type MockSwitcher struct {
	SwitchJavaFunc        func(java models.JavaInstallation) models.SwitchResult
	SwitchNodeFunc        func(node models.NodeInstallation) models.SwitchResult
	SwitchMavenConfigFunc func(id string) (models.MavenConfig, error)
	CurrentJavaTargetFunc func() string
	CurrentNodeTargetFunc func() string
	SyncShellBlockFunc    func(p models.Profile) error
	RemoveShellBlockFunc  func() error
	ShellBlockPresentFunc func() bool
}

var _ Switcher = (*MockSwitcher)(nil)

func (m *MockSwitcher) SwitchJava(java models.JavaInstallation) models.SwitchResult {
	if m.SwitchJavaFunc != nil {
		return m.SwitchJavaFunc(java)
	}
	return models.SwitchResult{Success: true}
}

func (m *MockSwitcher) SwitchNode(node models.NodeInstallation) models.SwitchResult {
	if m.SwitchNodeFunc != nil {
		return m.SwitchNodeFunc(node)
	}
	return models.SwitchResult{Success: true}
}

func (m *MockSwitcher) SwitchMavenConfig(id string) (models.MavenConfig, error) {
	if m.SwitchMavenConfigFunc != nil {
		return m.SwitchMavenConfigFunc(id)
	}
	return models.MavenConfig{ID: id, IsActive: true}, nil
}

func (m *MockSwitcher) CurrentJavaTarget() string {
	if m.CurrentJavaTargetFunc != nil {
		return m.CurrentJavaTargetFunc()
	}
	return ""
}

func (m *MockSwitcher) CurrentNodeTarget() string {
	if m.CurrentNodeTargetFunc != nil {
		return m.CurrentNodeTargetFunc()
	}
	return ""
}

func (m *MockSwitcher) SyncShellBlock(p models.Profile) error {
	if m.SyncShellBlockFunc != nil {
		return m.SyncShellBlockFunc(p)
	}
	return nil
}

func (m *MockSwitcher) RemoveShellBlock() error {
	if m.RemoveShellBlockFunc != nil {
		return m.RemoveShellBlockFunc()
	}
	return nil
}

func (m *MockSwitcher) ShellBlockPresent() bool {
	if m.ShellBlockPresentFunc != nil {
		return m.ShellBlockPresentFunc()
	}
	return false
}
