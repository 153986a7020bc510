// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package util provides foundational utilities for the aemctl CLI.
//
// This is a leaf package: everything here depends only on the Go
// standard library, so any internal package may import it without
// creating cycles.
//
// # Overview
//
//   - Command Errors: rich error wrapping for process and control failures
//   - Environment Variables: validated env var handling with redaction
//   - Progress Indicators: CLI spinner for long-running operations
//   - Ring Buffer: bounded event buffer for status broadcasting
//   - Goroutine Safety: panic recovery for background goroutines
//   - Timeouts: minimum and default timeout enforcement
//
// # Thread Safety
//
// All types are safe for concurrent use unless their documentation
// says otherwise. [RingBuffer] and [Spinner] are mutex-protected;
// [EnvVars] must not be modified concurrently.
package util
