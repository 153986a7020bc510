// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// Package-level Variables
// =============================================================================

// envVarKeyPattern validates environment variable key names against
// POSIX naming conventions. This also blocks shell metacharacter
// injection when keys end up in generated rc-file blocks.
var envVarKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ErrInvalidEnvVarKey is returned when an environment variable key is invalid.
var ErrInvalidEnvVarKey = fmt.Errorf("invalid environment variable key")

// sensitiveKeyFragments marks keys whose values must never be logged
// or echoed in plain text.
var sensitiveKeyFragments = []string{"PASSWORD", "SECRET", "TOKEN", "KEY", "CREDENTIAL"}

// =============================================================================
// EnvVar Type
// =============================================================================

// EnvVar is a single environment variable carried by a profile.
//
// # Description
//
// A typed environment variable with key validation and sensitivity
// marking. Sensitive values are redacted when rendered for logs.
//
// # Thread Safety
//
// EnvVar is safe for concurrent reads. Do not modify after creation.
type EnvVar struct {
	// Key is the environment variable name.
	// Must match pattern: ^[a-zA-Z_][a-zA-Z0-9_]*$
	Key string

	// Value is the environment variable value. Not validated.
	Value string

	// Sensitive marks the value for redaction in logs and display.
	Sensitive bool
}

// String renders the variable as KEY=VALUE. Use Redacted for logging.
func (e EnvVar) String() string {
	return fmt.Sprintf("%s=%s", e.Key, e.Value)
}

// Redacted renders the variable with the value replaced by [REDACTED]
// when the variable is sensitive.
func (e EnvVar) Redacted() string {
	if e.Sensitive {
		return fmt.Sprintf("%s=[REDACTED]", e.Key)
	}
	return e.String()
}

// Validate checks the key against POSIX naming conventions.
func (e EnvVar) Validate() error {
	if !envVarKeyPattern.MatchString(e.Key) {
		return fmt.Errorf("%w: %q", ErrInvalidEnvVarKey, e.Key)
	}
	return nil
}

// =============================================================================
// EnvVars Collection
// =============================================================================

// EnvVars is an ordered collection of environment variables.
//
// # Thread Safety
//
// EnvVars is NOT thread-safe. Do not modify concurrently.
type EnvVars struct {
	vars []EnvVar
}

// NewEnvVars builds a collection, validating every key. Returns an
// error naming the first invalid key.
func NewEnvVars(vars ...EnvVar) (*EnvVars, error) {
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &EnvVars{vars: append([]EnvVar(nil), vars...)}, nil
}

// EmptyEnvVars returns an empty, ready-to-use collection.
func EmptyEnvVars() *EnvVars {
	return &EnvVars{}
}

// Add validates and appends a variable. A duplicate key replaces the
// earlier value in place, preserving its position.
func (e *EnvVars) Add(key, value string, sensitive bool) error {
	v := EnvVar{Key: key, Value: value, Sensitive: sensitive}
	if err := v.Validate(); err != nil {
		return err
	}
	for i := range e.vars {
		if e.vars[i].Key == key {
			e.vars[i] = v
			return nil
		}
	}
	e.vars = append(e.vars, v)
	return nil
}

// Get returns the value for key, or "" if absent.
func (e *EnvVars) Get(key string) string {
	for _, v := range e.vars {
		if v.Key == key {
			return v.Value
		}
	}
	return ""
}

// Has reports whether key is present.
func (e *EnvVars) Has(key string) bool {
	for _, v := range e.vars {
		if v.Key == key {
			return true
		}
	}
	return false
}

// Len returns the number of variables.
func (e *EnvVars) Len() int {
	return len(e.vars)
}

// ToSlice renders KEY=VALUE strings suitable for exec.Cmd.Env.
func (e *EnvVars) ToSlice() []string {
	out := make([]string, len(e.vars))
	for i, v := range e.vars {
		out[i] = v.String()
	}
	return out
}

// ToMap returns a key-value map copy of the collection.
func (e *EnvVars) ToMap() map[string]string {
	out := make(map[string]string, len(e.vars))
	for _, v := range e.vars {
		out[v.Key] = v.Value
	}
	return out
}

// RedactedSlice renders the collection with sensitive values hidden.
// Use this form in logs.
func (e *EnvVars) RedactedSlice() []string {
	out := make([]string, len(e.vars))
	for i, v := range e.vars {
		out[i] = v.Redacted()
	}
	return out
}

// ExportLines renders `export KEY="VALUE"` lines for a shell rc block,
// sorted by key so regenerated blocks diff cleanly. Double quotes in
// values are escaped.
func (e *EnvVars) ExportLines() []string {
	sorted := append([]EnvVar(nil), e.vars...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	out := make([]string, len(sorted))
	for i, v := range sorted {
		escaped := strings.ReplaceAll(v.Value, `"`, `\"`)
		out[i] = fmt.Sprintf(`export %s="%s"`, v.Key, escaped)
	}
	return out
}

// Clone returns an independent copy of the collection.
func (e *EnvVars) Clone() *EnvVars {
	return &EnvVars{vars: append([]EnvVar(nil), e.vars...)}
}

// Merge returns a new collection containing e's variables overlaid
// with other's. Neither input is modified.
func (e *EnvVars) Merge(other *EnvVars) *EnvVars {
	merged := e.Clone()
	if other == nil {
		return merged
	}
	for _, v := range other.vars {
		// Add cannot fail here: v was validated on entry.
		_ = merged.Add(v.Key, v.Value, v.Sensitive)
	}
	return merged
}

// =============================================================================
// Construction Helpers
// =============================================================================

// FromMap builds a collection from a plain map, marking keys that look
// secret-bearing as sensitive. Iteration order of the map is
// normalized by sorting keys.
func FromMap(m map[string]string) (*EnvVars, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := EmptyEnvVars()
	for _, k := range keys {
		if err := out.Add(k, m[k], isSensitiveKey(k)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// isSensitiveKey reports whether a key name suggests a secret value.
func isSensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(upper, fragment) {
			return true
		}
	}
	return false
}
