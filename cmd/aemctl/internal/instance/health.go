// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package instance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
)

// Felix console endpoints queried by the health check.
const (
	bundlesPath     = "/system/console/bundles.json"
	memoryUsagePath = "/system/console/memoryusage"
	productInfoPath = "/system/console/status-productinfo.txt"
)

var (
	heapUsedPattern = regexp.MustCompile(`(?i)used[^0-9]*(\d+)\s*MB`)
	heapMaxPattern  = regexp.MustCompile(`(?i)(?:max|total)[^0-9]*(\d+)\s*MB`)
)

// bundlesResponse is the Felix web console bundle listing. The "s"
// array is [total, active, fragment, resolved, installed].
type bundlesResponse struct {
	Status string `json:"status"`
	S      []int  `json:"s"`
}

// =============================================================================
// Health Check
// =============================================================================

// CheckHealth takes a single-shot reading of a running instance's
// Felix console: bundle counts, heap usage, and product info. Each
// sub-query is independent; a failed one leaves its fields zero while
// the report still returns.
func (c *DefaultController) CheckHealth(ctx context.Context, id string) (models.HealthReport, error) {
	inst, err := c.store.GetInstance(id)
	if err != nil {
		return models.HealthReport{}, err
	}

	report := models.HealthReport{CheckedAt: time.Now().UTC()}

	body, err := c.consoleGet(ctx, inst, bundlesPath)
	if err != nil {
		// Console unreachable: report the instance as such rather
		// than failing the whole call.
		c.logger.Debug("bundles query failed", "name", inst.Name, "error", err.Error())
		return report, nil
	}
	report.Reachable = true

	var bundles bundlesResponse
	if err := json.Unmarshal(body, &bundles); err == nil && len(bundles.S) >= 2 {
		report.BundlesTotal = bundles.S[0]
		report.BundlesActive = bundles.S[1]
	}

	if body, err := c.consoleGet(ctx, inst, memoryUsagePath); err == nil {
		report.HeapUsedMB, report.HeapMaxMB = parseHeapUsage(string(body))
	} else {
		c.logger.Debug("memory query failed", "name", inst.Name, "error", err.Error())
	}

	if body, err := c.consoleGet(ctx, inst, productInfoPath); err == nil {
		report.ProductInfo = firstLine(string(body))
	} else {
		c.logger.Debug("product info query failed", "name", inst.Name, "error", err.Error())
	}

	return report, nil
}

// consoleGet fetches a console endpoint with admin auth.
func (c *DefaultController) consoleGet(ctx context.Context, inst models.Instance, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inst.URL()+path, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.adminUser, c.adminPass)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", path, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// parseHeapUsage extracts used/max heap MB from the memoryusage
// console page, tolerating its HTML wrapping.
func parseHeapUsage(body string) (used, max int) {
	if m := heapUsedPattern.FindStringSubmatch(body); m != nil {
		used, _ = strconv.Atoi(m[1])
	}
	if m := heapMaxPattern.FindStringSubmatch(body); m != nil {
		max, _ = strconv.Atoi(m[1])
	}
	return used, max
}

// firstLine returns the first non-empty trimmed line.
func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
