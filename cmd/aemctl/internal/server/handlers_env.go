// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/scan"
)

// HandleEnvironmentStatus handles GET /v1/environment/status.
func (s *Server) HandleEnvironmentStatus(c *gin.Context) {
	status := s.env.CheckEnvironmentStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"initialized": status.Initialized(),
		"javaTarget":  s.switcher.CurrentJavaTarget(),
		"nodeTarget":  s.switcher.CurrentNodeTarget(),
	})
}

// HandleInitializeEnvironment handles POST /v1/environment/init.
//
// Idempotent: re-running against an initialized environment succeeds
// without touching existing config or data.
func (s *Server) HandleInitializeEnvironment(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleInitializeEnvironment")

	if err := s.env.InitializeEnvironment(); err != nil {
		logger.Error("initialization failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "INIT_FAILED",
		})
		return
	}

	logger.Info("environment initialized")
	c.JSON(http.StatusOK, gin.H{"status": s.env.CheckEnvironmentStatus()})
}

// HandleExportEnvironment handles POST /v1/environment/export.
//
// Request Body:
//
//	BundleRequest naming the zip path to write.
func (s *Server) HandleExportEnvironment(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleExportEnvironment")

	var req BundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "path is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := s.env.ExportAll(req.Path); err != nil {
		logger.Error("export failed", "path", req.Path, "error", err.Error())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "EXPORT_FAILED",
		})
		return
	}

	logger.Info("environment exported", "path", req.Path)
	c.JSON(http.StatusOK, gin.H{"path": req.Path})
}

// HandleImportEnvironment handles POST /v1/environment/import.
//
// Description:
//
//	Replaces the current config and data with the bundle's contents.
//	The swap is staged and atomic: a malformed bundle leaves the
//	environment untouched.
//
// Response:
//
//	200 OK: import applied
//	422 Unprocessable Entity: unreadable, mislaid, or wrong-version bundle
func (s *Server) HandleImportEnvironment(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleImportEnvironment")

	var req BundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "path is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := s.env.ImportAll(req.Path); err != nil {
		logger.Warn("import rejected", "path", req.Path, "error", err.Error())
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "IMPORT_FAILED",
		})
		return
	}

	logger.Info("environment imported", "path", req.Path)
	c.JSON(http.StatusOK, gin.H{"path": req.Path})
}

// HandleResetEnvironment handles POST /v1/environment/reset.
//
// Destructive: wipes all registered data, removes the symlinks and
// shell block, and re-initializes an empty environment. The CLI gates
// this behind a confirmation prompt; API callers are expected to
// confirm on their side.
func (s *Server) HandleResetEnvironment(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleResetEnvironment")

	if err := s.env.ResetAll(); err != nil {
		logger.Error("reset failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "RESET_FAILED",
		})
		return
	}

	logger.Info("environment reset")
	c.JSON(http.StatusOK, gin.H{"status": s.env.CheckEnvironmentStatus()})
}

// HandleSwitchJava handles POST /v1/switch/java.
//
// Repoints the java "current" symlink directly, outside any profile.
// The version field is optional display metadata for the bookkeeping
// patch on the active profile.
func (s *Server) HandleSwitchJava(c *gin.Context) {
	var req SwitchLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "path is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result := s.switcher.SwitchJava(models.JavaInstallation{
		Path:         req.Path,
		Version:      req.Version,
		MajorVersion: scan.ExtractMajorVersion(req.Version),
	})
	s.recordSwitch("java", req.Path, result)
	c.JSON(switchStatusCode(result), result)
}

// HandleSwitchNode handles POST /v1/switch/node.
func (s *Server) HandleSwitchNode(c *gin.Context) {
	var req SwitchLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "path is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result := s.switcher.SwitchNode(models.NodeInstallation{
		Path:    req.Path,
		Version: scan.NormalizeNodeVersion(req.Version),
	})
	s.recordSwitch("node", req.Path, result)
	c.JSON(switchStatusCode(result), result)
}

// HandleRecentEvents handles GET /v1/events.
//
// Query Parameters:
//
//	limit: Maximum events to return, newest first (optional, default 50)
func (s *Server) HandleRecentEvents(c *gin.Context) {
	if s.journal == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "event journal is not configured",
			Code:  "JOURNAL_UNAVAILABLE",
		})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  "INVALID_LIMIT",
			})
			return
		}
		limit = parsed
	}

	events, err := s.journal.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "JOURNAL_READ_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// recordSwitch writes a best-effort journal event for a direct
// symlink switch.
func (s *Server) recordSwitch(runtime, path string, result models.SwitchResult) {
	if s.journal == nil || !result.Success {
		return
	}
	if err := s.journal.Record(journal.Event{
		Kind:    journal.KindVersionSwitched,
		Summary: runtime + " switched to " + path,
		Fields:  map[string]string{"runtime": runtime, "path": path},
	}); err != nil {
		s.logger.Warn("journal write failed", "kind", string(journal.KindVersionSwitched), "error", err.Error())
	}
}

// switchStatusCode maps a SwitchResult onto an HTTP status.
func switchStatusCode(result models.SwitchResult) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}
