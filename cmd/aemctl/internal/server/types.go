// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIVersion is the aemctl HTTP API version.
const APIVersion = "0.1.0"

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse answers GET /v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse answers GET /v1/ready.
type ReadyResponse struct {
	Ready         bool `json:"ready"`
	ProfileCount  int  `json:"profileCount"`
	InstanceCount int  `json:"instanceCount"`
}

// ParseLicenseRequest asks for a license.properties file to be read.
type ParseLicenseRequest struct {
	Path string `json:"path" binding:"required"`
}

// SwitchLinkRequest repoints the java or node "current" symlink.
type SwitchLinkRequest struct {
	Path    string `json:"path" binding:"required"`
	Version string `json:"version,omitempty"`
}

// BundleRequest names a zip path for environment export or import.
type BundleRequest struct {
	Path string `json:"path" binding:"required"`
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
