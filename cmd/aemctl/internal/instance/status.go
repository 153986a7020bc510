// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package instance

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// loginPath is the cheapest authenticated-surface page a healthy
// quickstart serves; it renders long before all bundles are active.
const loginPath = "/libs/granite/core/content/login.html"

// =============================================================================
// Hybrid Status Detection
// =============================================================================

// DetectStatus determines what is actually happening on the
// instance's port, in three escalating probes:
//
//  1. TCP dial (short timeout). Port closed: stopped, or starting
//     when our launched PID is still alive but not yet listening.
//  2. Port ownership. A listener that is not a JVM means some other
//     service owns the port: port_conflict.
//  3. HTTP GET of the login page. Served: running. Refused or
//     erroring while the socket accepts: starting (warming up).
//
// Detection never mutates anything; use RefreshStatus to persist.
func (c *DefaultController) DetectStatus(ctx context.Context, inst models.Instance) models.InstanceStatus {
	addr := net.JoinHostPort(hostOrDefault(inst.Host), fmt.Sprintf("%d", inst.Port))

	dialer := net.Dialer{Timeout: c.tcpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if inst.PID > 0 && c.launcher.ProcessAlive(inst.PID) {
			return models.StatusStarting
		}
		return models.StatusStopped
	}
	conn.Close()

	// Someone is listening. A non-Java owner is a conflict; an
	// undeterminable owner (lsof missing, permissions) falls through
	// to the HTTP probe rather than guessing.
	if pid, command, err := c.launcher.PortOwner(ctx, inst.Port); err == nil && command != "" {
		if !isJavaCommand(command) {
			c.logger.Warn("port owned by foreign process",
				"port", inst.Port, "pid", pid, "command", command)
			return models.StatusPortConflict
		}
	}

	switch c.probeLogin(ctx, inst) {
	case probeServed:
		return models.StatusRunning
	case probeWarming:
		return models.StatusStarting
	default:
		return models.StatusUnknown
	}
}

type probeResult int

const (
	probeServed probeResult = iota
	probeWarming
	probeFailed
)

// probeLogin checks whether the quickstart serves its login page yet.
func (c *DefaultController) probeLogin(ctx context.Context, inst models.Instance) probeResult {
	ctx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inst.URL()+loginPath, nil)
	if err != nil {
		return probeFailed
	}
	resp, err := c.client.Do(req)
	if err != nil {
		// Socket accepted but HTTP not up yet: the JVM is warming.
		return probeWarming
	}
	defer resp.Body.Close()

	if resp.StatusCode < 500 {
		return probeServed
	}
	return probeWarming
}

// isJavaCommand matches JVM process names across vendors and
// platforms (java, java.exe, openjdk possibilities).
func isJavaCommand(command string) bool {
	lower := strings.ToLower(strings.TrimSuffix(command, ".exe"))
	return lower == "java" || strings.HasPrefix(lower, "jdk") || strings.HasPrefix(lower, "openjdk")
}

func hostOrDefault(host string) string {
	if host == "" {
		return "localhost"
	}
	return host
}
