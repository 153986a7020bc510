// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import "time"

// =============================================================================
// Timeout Enforcement
// =============================================================================

// Probe timeouts for instance status detection. The TCP probe stays
// short so status listings feel instant; the HTTP probe allows for a
// quickstart that is up but still warming its bundles.
const (
	MinProbeTimeout     = 100 * time.Millisecond
	DefaultTCPTimeout   = 500 * time.Millisecond
	DefaultHTTPTimeout  = 3 * time.Second
	DefaultShutdownWait = 30 * time.Second
)

// EnforceMinTimeout raises requested to minimum when it is shorter.
// Zero and negative values are treated as "too short".
func EnforceMinTimeout(requested, minimum time.Duration) time.Duration {
	if requested < minimum {
		return minimum
	}
	return requested
}

// EnforceDefaultTimeout substitutes defaultVal when requested is zero
// or negative.
func EnforceDefaultTimeout(requested, defaultVal time.Duration) time.Duration {
	if requested <= 0 {
		return defaultVal
	}
	return requested
}
