// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// Commands accept either an entity name or its id. IDs are uuids the
// user will rarely type; names are matched case-insensitively.

func (a *appContext) resolveProfile(ref string) (models.Profile, error) {
	if p, err := a.store.GetProfile(ref); err == nil {
		return p, nil
	}
	for _, p := range a.store.ListProfiles() {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return models.Profile{}, fmt.Errorf("no profile named %q", ref)
}

func (a *appContext) resolveInstance(ref string) (models.Instance, error) {
	if inst, err := a.store.GetInstance(ref); err == nil {
		return inst, nil
	}
	for _, inst := range a.store.ListInstances() {
		if strings.EqualFold(inst.Name, ref) {
			return inst, nil
		}
	}
	return models.Instance{}, fmt.Errorf("no instance named %q", ref)
}

func (a *appContext) resolveLicense(ref string) (models.License, error) {
	if lic, err := a.store.GetLicense(ref); err == nil {
		return lic, nil
	}
	for _, lic := range a.store.ListLicenses() {
		if strings.EqualFold(lic.Name, ref) {
			return lic, nil
		}
	}
	return models.License{}, fmt.Errorf("no license named %q", ref)
}

func (a *appContext) resolveMavenConfig(ref string) (models.MavenConfig, error) {
	if cfg, err := a.store.GetMavenConfig(ref); err == nil {
		return cfg, nil
	}
	for _, cfg := range a.store.ListMavenConfigs() {
		if strings.EqualFold(cfg.Name, ref) {
			return cfg, nil
		}
	}
	return models.MavenConfig{}, fmt.Errorf("no maven config named %q", ref)
}

// parseEnvVars turns repeated KEY=VALUE flags into a map.
func parseEnvVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --env %q, expected KEY=VALUE", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
