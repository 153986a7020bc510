// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
)

// HandleListProfiles handles GET /v1/profiles.
func (s *Server) HandleListProfiles(c *gin.Context) {
	profiles := s.profiles.List()
	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "count": len(profiles)})
}

// HandleGetProfile handles GET /v1/profiles/:id.
func (s *Server) HandleGetProfile(c *gin.Context) {
	p, err := s.profiles.Get(c.Param("id"))
	if err != nil {
		s.profileError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// HandleCreateProfile handles POST /v1/profiles.
//
// Request Body:
//
//	models.Profile (ID, IsActive, and timestamps are server-assigned)
//
// Response:
//
//	201 Created: the stored profile
//	400 Bad Request: validation failure
//	409 Conflict: name already in use
func (s *Server) HandleCreateProfile(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleCreateProfile")

	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	created, err := s.profiles.Create(p)
	if err != nil {
		s.profileError(c, err)
		return
	}
	logger.Info("profile created", "profile_id", created.ID, "name", created.Name)
	c.JSON(http.StatusCreated, created)
}

// HandleUpdateProfile handles PUT /v1/profiles/:id.
func (s *Server) HandleUpdateProfile(c *gin.Context) {
	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	p.ID = c.Param("id")

	updated, err := s.profiles.Update(p)
	if err != nil {
		s.profileError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandleDeleteProfile handles DELETE /v1/profiles/:id.
func (s *Server) HandleDeleteProfile(c *gin.Context) {
	if err := s.profiles.Delete(c.Param("id")); err != nil {
		s.profileError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleActivateProfile handles POST /v1/profiles/:id/activate.
//
// Description:
//
//	Marks the profile active and applies its environment side effects.
//	The response is a SwitchResult: activation can succeed while
//	individual side effects (symlinks, settings.xml, shell block)
//	report errors alongside.
//
// Response:
//
//	200 OK: models.SwitchResult
//	404 Not Found: unknown profile
func (s *Server) HandleActivateProfile(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleActivateProfile")

	id := c.Param("id")
	result, err := s.profiles.Activate(id)
	if err != nil {
		s.profileError(c, err)
		return
	}

	logger.Info("profile activated", "profile_id", id, "side_effect_errors", len(result.Errors))
	c.JSON(http.StatusOK, result)
}

// HandleDuplicateProfile handles POST /v1/profiles/:id/duplicate.
func (s *Server) HandleDuplicateProfile(c *gin.Context) {
	dup, err := s.profiles.Duplicate(c.Param("id"))
	if err != nil {
		s.profileError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dup)
}

// HandleExportProfile handles GET /v1/profiles/:id/export.
//
// The profile is streamed as YAML so it can be saved straight to a
// file and re-imported on another machine.
func (s *Server) HandleExportProfile(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.profiles.Get(id); err != nil {
		s.profileError(c, err)
		return
	}

	c.Header("Content-Type", "application/yaml")
	c.Status(http.StatusOK)
	if err := s.profiles.Export(id, c.Writer); err != nil {
		s.logger.Warn("profile export failed mid-stream", "profile_id", id, "error", err.Error())
	}
}

// HandleImportProfile handles POST /v1/profiles/import.
//
// Request Body:
//
//	A YAML profile document, as produced by the export endpoint.
//
// Response:
//
//	201 Created: the imported profile with a fresh ID
//	400 Bad Request: malformed YAML or validation failure
func (s *Server) HandleImportProfile(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleImportProfile")

	imported, err := s.profiles.Import(c.Request.Body)
	if err != nil {
		logger.Warn("profile import rejected", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "IMPORT_FAILED",
		})
		return
	}

	logger.Info("profile imported", "profile_id", imported.ID, "name", imported.Name)
	c.JSON(http.StatusCreated, imported)
}

// profileError maps profile and store errors onto HTTP status codes.
func (s *Server) profileError(c *gin.Context, err error) {
	statusCode := http.StatusBadRequest
	errCode := "PROFILE_OPERATION_FAILED"

	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		statusCode = http.StatusNotFound
		errCode = "PROFILE_NOT_FOUND"
	case errors.Is(err, store.ErrDuplicateName):
		statusCode = http.StatusConflict
		errCode = "DUPLICATE_NAME"
	case errors.Is(err, store.ErrActiveProfileDelete):
		statusCode = http.StatusConflict
		errCode = "PROFILE_ACTIVE"
	}

	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}
