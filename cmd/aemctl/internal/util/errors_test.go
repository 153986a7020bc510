// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"errors"
	"fmt"
	"testing"
)

func TestCommandError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "with stderr",
			err:  &CommandError{Command: "java -jar quickstart.jar", ExitCode: 1, Stderr: "Address already in use"},
			want: "java -jar quickstart.jar (exit 1): Address already in use",
		},
		{
			name: "wrapped only",
			err:  &CommandError{Command: "lsof -ti :4502", ExitCode: -1, Wrapped: errors.New("executable not found")},
			want: "lsof -ti :4502 (exit -1): executable not found",
		},
		{
			name: "bare",
			err:  &CommandError{Command: "kill", ExitCode: 137},
			want: "kill (exit 137)",
		},
		{
			name: "stderr wins over wrapped",
			err:  &CommandError{Command: "java", ExitCode: 2, Stderr: "bad flag", Wrapped: errors.New("exit status 2")},
			want: "java (exit 2): bad flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewCommandError("curl", 7, "", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	var cmdErr *CommandError
	wrapped := fmt.Errorf("stop instance: %w", err)
	if !errors.As(wrapped, &cmdErr) {
		t.Fatal("errors.As should find the CommandError through the chain")
	}
	if cmdErr.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", cmdErr.ExitCode)
	}
}

func TestNewCommandError_TrimsStderr(t *testing.T) {
	err := NewCommandError("java", 1, "  out of memory \n", nil)
	if err.Stderr != "out of memory" {
		t.Errorf("Stderr = %q, want trimmed", err.Stderr)
	}
}

func TestWrapCommandError(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		if got := WrapCommandError(nil, "cmd", 0, ""); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("no double wrap", func(t *testing.T) {
		orig := NewCommandError("java", 1, "boom", nil)
		if got := WrapCommandError(orig, "other", 2, "other stderr"); got != orig {
			t.Error("existing CommandError should be returned unchanged")
		}
	})

	t.Run("wraps plain error", func(t *testing.T) {
		inner := errors.New("no such file")
		got := WrapCommandError(inner, "java -jar missing.jar", -1, "")
		if got.Command != "java -jar missing.jar" {
			t.Errorf("Command = %q", got.Command)
		}
		if !errors.Is(got, inner) {
			t.Error("wrapped error lost")
		}
	})
}

func TestExtractStderr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("nope"), ""},
		{"direct", NewCommandError("java", 1, "heap exhausted", nil), "heap exhausted"},
		{
			"through chain",
			fmt.Errorf("start author: %w", NewCommandError("java", 1, "port in use", nil)),
			"port in use",
		},
		{"empty stderr skipped", NewCommandError("java", 1, "", errors.New("x")), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractStderr(tt.err); got != tt.want {
				t.Errorf("ExtractStderr() = %q, want %q", got, tt.want)
			}
		})
	}
}
