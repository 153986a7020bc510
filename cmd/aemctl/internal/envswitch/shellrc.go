// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package envswitch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
)

// Managed block markers. Everything between them is owned by aemctl
// and rewritten wholesale; user content outside is never touched.
const (
	blockBegin = "# AEM Environment Manager - Managed Block"
	blockEnd   = "# AEM Environment Manager - End Managed Block"
)

// =============================================================================
// Shell RC Managed Block
// =============================================================================

// SyncShellBlock rewrites the managed block in every configured rc
// file to export the profile's environment. Files that fail are
// collected; the rest are still updated.
func (s *DefaultSwitcher) SyncShellBlock(p models.Profile) error {
	block, err := s.renderBlock(p)
	if err != nil {
		return err
	}

	var errs []error
	for _, rc := range s.rcFiles {
		if err := upsertManagedBlock(rc, block); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rc, err))
		}
	}
	return errors.Join(errs...)
}

// RemoveShellBlock strips the managed block from every configured rc
// file. Used by environment reset.
func (s *DefaultSwitcher) RemoveShellBlock() error {
	var errs []error
	for _, rc := range s.rcFiles {
		if err := upsertManagedBlock(rc, nil); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rc, err))
		}
	}
	return errors.Join(errs...)
}

// ShellBlockPresent reports whether any configured rc file carries
// the managed block.
func (s *DefaultSwitcher) ShellBlockPresent() bool {
	for _, rc := range s.rcFiles {
		raw, err := os.ReadFile(rc)
		if err != nil {
			continue
		}
		if begin, _ := findBlock(strings.Split(string(raw), "\n")); begin != -1 {
			return true
		}
	}
	return false
}

// renderBlock builds the managed block lines for a profile: symlink
// driven JAVA_HOME/PATH exports first, profile env vars after.
func (s *DefaultSwitcher) renderBlock(p models.Profile) ([]string, error) {
	lines := []string{blockBegin}

	javaLink := s.JavaLinkPath()
	nodeLink := s.NodeLinkPath()
	lines = append(lines,
		fmt.Sprintf(`export JAVA_HOME="%s"`, javaLink),
		fmt.Sprintf(`export PATH="%s:%s:$PATH"`,
			filepath.Join(javaLink, "bin"), filepath.Join(nodeLink, "bin")),
	)

	if len(p.EnvVars) > 0 {
		vars, err := util.FromMap(p.EnvVars)
		if err != nil {
			return nil, fmt.Errorf("profile env vars: %w", err)
		}
		lines = append(lines, vars.ExportLines()...)
	}

	lines = append(lines, blockEnd)
	return lines, nil
}

// upsertManagedBlock replaces the block between the markers in the rc
// file, appending one when absent. A nil block removes any existing
// block. A missing rc file is created only when there is a block to
// write.
func upsertManagedBlock(rcPath string, block []string) error {
	raw, err := os.ReadFile(rcPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if block == nil {
			return nil
		}
		raw = nil
	}

	lines := strings.Split(string(raw), "\n")
	begin, end := findBlock(lines)

	var out []string
	switch {
	case begin == -1:
		out = lines
		// Drop a single trailing empty line before appending so we
		// don't accumulate blank gaps on repeated syncs.
		if n := len(out); n > 0 && out[n-1] == "" {
			out = out[:n-1]
		}
		if block != nil {
			if len(out) > 0 {
				out = append(out, "")
			}
			out = append(out, block...)
		}
	default:
		out = append(out, lines[:begin]...)
		if block != nil {
			out = append(out, block...)
		} else if begin > 0 && out[len(out)-1] == "" {
			out = out[:len(out)-1]
		}
		out = append(out, lines[end+1:]...)
		for n := len(out); n > 0 && out[n-1] == ""; n = len(out) {
			out = out[:n-1]
		}
	}

	content := strings.Join(out, "\n")
	if content != "" {
		content += "\n"
	}

	tmp := rcPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, rcPath)
}

// findBlock returns the marker line indexes, or (-1, -1). A begin
// marker without an end marker claims through end-of-file so a
// truncated block heals on the next sync.
func findBlock(lines []string) (int, int) {
	begin := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if begin == -1 && trimmed == blockBegin {
			begin = i
			continue
		}
		if begin != -1 && trimmed == blockEnd {
			return begin, i
		}
	}
	if begin != -1 {
		return begin, len(lines) - 1
	}
	return -1, -1
}
