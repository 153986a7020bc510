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

// HandleListMavenConfigs handles GET /v1/maven.
func (s *Server) HandleListMavenConfigs(c *gin.Context) {
	configs := s.store.ListMavenConfigs()
	c.JSON(http.StatusOK, gin.H{
		"configs":    configs,
		"count":      len(configs),
		"activePath": s.store.ActiveMavenPath(),
	})
}

// HandleGetMavenConfig handles GET /v1/maven/:id.
func (s *Server) HandleGetMavenConfig(c *gin.Context) {
	cfg, err := s.store.GetMavenConfig(c.Param("id"))
	if err != nil {
		s.mavenError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// HandleCreateMavenConfig handles POST /v1/maven.
func (s *Server) HandleCreateMavenConfig(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleCreateMavenConfig")

	var cfg models.MavenConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if err := serverValidate.Struct(cfg); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
		return
	}

	created, err := s.store.AddMavenConfig(cfg)
	if err != nil {
		s.mavenError(c, err)
		return
	}
	logger.Info("maven config registered", "config_id", created.ID, "path", created.Path)
	c.JSON(http.StatusCreated, created)
}

// HandleDeleteMavenConfig handles DELETE /v1/maven/:id.
func (s *Server) HandleDeleteMavenConfig(c *gin.Context) {
	if err := s.store.DeleteMavenConfig(c.Param("id")); err != nil {
		s.mavenError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleActivateMavenConfig handles POST /v1/maven/:id/activate.
//
// Description:
//
//	Copies the config over ~/.m2/settings.xml (backing up the original
//	once) and marks it active. A best-effort journal event records the
//	switch.
//
// Response:
//
//	200 OK: the now-active config
//	404 Not Found: unknown config
//	422 Unprocessable Entity: the source file is gone
func (s *Server) HandleActivateMavenConfig(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleActivateMavenConfig")

	id := c.Param("id")
	cfg, err := s.switcher.SwitchMavenConfig(id)
	if err != nil {
		if errors.Is(err, store.ErrMavenConfigNotFound) {
			s.mavenError(c, err)
			return
		}
		logger.Warn("maven switch failed", "config_id", id, "error", err.Error())
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "SWITCH_FAILED",
		})
		return
	}

	logger.Info("maven config activated", "config_id", cfg.ID, "name", cfg.Name)
	c.JSON(http.StatusOK, cfg)
}

// mavenError maps Maven config store errors onto HTTP status codes.
func (s *Server) mavenError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errCode := "MAVEN_OPERATION_FAILED"

	switch {
	case errors.Is(err, store.ErrMavenConfigNotFound):
		statusCode = http.StatusNotFound
		errCode = "MAVEN_CONFIG_NOT_FOUND"
	case errors.Is(err, store.ErrDuplicateName):
		statusCode = http.StatusConflict
		errCode = "DUPLICATE_NAME"
	}

	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}
