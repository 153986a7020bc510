// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"errors"
	"reflect"
	"testing"
)

func TestEnvVar_Validate(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"JAVA_HOME", false},
		{"_PRIVATE", false},
		{"AEM_PORT_4502", false},
		{"", true},
		{"4502_PORT", true},
		{"BAD-KEY", true},
		{"BAD KEY", true},
		{"$(rm -rf /)", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := EnvVar{Key: tt.key, Value: "v"}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEnvVarKey) {
				t.Errorf("error should wrap ErrInvalidEnvVarKey, got %v", err)
			}
		})
	}
}

func TestEnvVar_Redacted(t *testing.T) {
	secret := EnvVar{Key: "AEM_ADMIN_PASSWORD", Value: "hunter2", Sensitive: true}
	if got := secret.Redacted(); got != "AEM_ADMIN_PASSWORD=[REDACTED]" {
		t.Errorf("Redacted() = %q", got)
	}
	plain := EnvVar{Key: "JAVA_HOME", Value: "/opt/jdk"}
	if got := plain.Redacted(); got != "JAVA_HOME=/opt/jdk" {
		t.Errorf("Redacted() = %q", got)
	}
}

func TestEnvVars_AddAndReplace(t *testing.T) {
	vars := EmptyEnvVars()
	if err := vars.Add("JAVA_HOME", "/opt/jdk11", false); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := vars.Add("NODE_HOME", "/opt/node18", false); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Replacing keeps the original position.
	if err := vars.Add("JAVA_HOME", "/opt/jdk17", false); err != nil {
		t.Fatalf("Add replace: %v", err)
	}

	if vars.Len() != 2 {
		t.Fatalf("Len = %d, want 2", vars.Len())
	}
	want := []string{"JAVA_HOME=/opt/jdk17", "NODE_HOME=/opt/node18"}
	if got := vars.ToSlice(); !reflect.DeepEqual(got, want) {
		t.Errorf("ToSlice() = %v, want %v", got, want)
	}
	if !vars.Has("NODE_HOME") || vars.Get("JAVA_HOME") != "/opt/jdk17" {
		t.Error("lookup after replace broken")
	}
}

func TestEnvVars_AddRejectsInvalidKey(t *testing.T) {
	vars := EmptyEnvVars()
	if err := vars.Add("bad key", "v", false); !errors.Is(err, ErrInvalidEnvVarKey) {
		t.Errorf("expected ErrInvalidEnvVarKey, got %v", err)
	}
	if vars.Len() != 0 {
		t.Error("invalid key must not be stored")
	}
}

func TestEnvVars_ExportLines(t *testing.T) {
	vars := EmptyEnvVars()
	vars.Add("NODE_OPTIONS", `--max-old-space-size=4096`, false)
	vars.Add("AEM_GREETING", `say "hello"`, false)

	want := []string{
		`export AEM_GREETING="say \"hello\""`,
		`export NODE_OPTIONS="--max-old-space-size=4096"`,
	}
	if got := vars.ExportLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines() = %v, want %v", got, want)
	}
}

func TestEnvVars_MergeAndClone(t *testing.T) {
	base := EmptyEnvVars()
	base.Add("JAVA_HOME", "/opt/jdk11", false)
	base.Add("MAVEN_OPTS", "-Xmx1g", false)

	overlay := EmptyEnvVars()
	overlay.Add("JAVA_HOME", "/opt/jdk17", false)
	overlay.Add("NODE_HOME", "/opt/node", false)

	merged := base.Merge(overlay)
	if merged.Get("JAVA_HOME") != "/opt/jdk17" {
		t.Errorf("overlay should win, got %q", merged.Get("JAVA_HOME"))
	}
	if merged.Len() != 3 {
		t.Errorf("merged Len = %d, want 3", merged.Len())
	}
	// Inputs untouched.
	if base.Get("JAVA_HOME") != "/opt/jdk11" || base.Len() != 2 {
		t.Error("Merge modified the receiver")
	}

	clone := base.Clone()
	clone.Add("EXTRA", "1", false)
	if base.Has("EXTRA") {
		t.Error("Clone shares storage with original")
	}
}

func TestFromMap(t *testing.T) {
	vars, err := FromMap(map[string]string{
		"AEM_LICENSE_KEY": "abc",
		"JAVA_HOME":       "/opt/jdk",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	redacted := vars.RedactedSlice()
	want := []string{"AEM_LICENSE_KEY=[REDACTED]", "JAVA_HOME=/opt/jdk"}
	if !reflect.DeepEqual(redacted, want) {
		t.Errorf("RedactedSlice() = %v, want %v", redacted, want)
	}
}

func TestFromMap_InvalidKey(t *testing.T) {
	if _, err := FromMap(map[string]string{"not valid": "v"}); !errors.Is(err, ErrInvalidEnvVarKey) {
		t.Errorf("expected ErrInvalidEnvVarKey, got %v", err)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"AEM_ADMIN_PASSWORD", true},
		{"api_token", true},
		{"LICENSE_KEY", true},
		{"GIT_CREDENTIAL_HELPER", true},
		{"JAVA_HOME", false},
		{"PATH", false},
	}
	for _, tt := range tests {
		if got := isSensitiveKey(tt.key); got != tt.want {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
