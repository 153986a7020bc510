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
	"github.com/go-playground/validator/v10"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/instance"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
)

// serverValidate checks struct tags on request bodies the store does
// not validate itself.
var serverValidate = validator.New()

// HandleListInstances handles GET /v1/instances.
func (s *Server) HandleListInstances(c *gin.Context) {
	instances := s.store.ListInstances()
	c.JSON(http.StatusOK, gin.H{"instances": instances, "count": len(instances)})
}

// HandleGetInstance handles GET /v1/instances/:id.
func (s *Server) HandleGetInstance(c *gin.Context) {
	inst, err := s.store.GetInstance(c.Param("id"))
	if err != nil {
		s.instanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

// HandleCreateInstance handles POST /v1/instances.
//
// Request Body:
//
//	models.Instance (ID, Status, and PID are server-assigned)
//
// Response:
//
//	201 Created: the stored instance
//	400 Bad Request: validation failure
//	409 Conflict: name already in use
func (s *Server) HandleCreateInstance(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleCreateInstance")

	var inst models.Instance
	if err := c.ShouldBindJSON(&inst); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if err := serverValidate.Struct(inst); err != nil {
		logger.Warn("instance validation failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
		return
	}

	created, err := s.store.AddInstance(inst)
	if err != nil {
		s.instanceError(c, err)
		return
	}
	logger.Info("instance registered", "instance_id", created.ID, "name", created.Name, "port", created.Port)
	c.JSON(http.StatusCreated, created)
}

// HandleUpdateInstance handles PUT /v1/instances/:id.
func (s *Server) HandleUpdateInstance(c *gin.Context) {
	var inst models.Instance
	if err := c.ShouldBindJSON(&inst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	inst.ID = c.Param("id")
	if err := serverValidate.Struct(inst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
		return
	}

	updated, err := s.store.UpdateInstance(inst)
	if err != nil {
		s.instanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandleDeleteInstance handles DELETE /v1/instances/:id.
func (s *Server) HandleDeleteInstance(c *gin.Context) {
	if err := s.store.DeleteInstance(c.Param("id")); err != nil {
		s.instanceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleStartInstance handles POST /v1/instances/:id/start.
//
// Description:
//
//	Launches the quickstart jar and waits through the settle window.
//	The returned instance reflects the post-settle detected status,
//	usually "starting"; clients follow the /ws/status socket for the
//	transition to "running".
//
// Response:
//
//	200 OK: the instance after launch and re-detection
//	404 Not Found: unknown instance
//	409 Conflict: already running or starting
//	500 Internal Server Error: launch failure
func (s *Server) HandleStartInstance(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleStartInstance")

	id := c.Param("id")
	inst, err := s.instances.Start(c.Request.Context(), id)
	if err != nil {
		logger.Warn("start failed", "instance_id", id, "error", err.Error())
		s.instanceError(c, err)
		return
	}

	logger.Info("instance started", "instance_id", id, "status", string(inst.Status), "pid", inst.PID)
	s.hub.PublishInstanceStatus(inst)
	c.JSON(http.StatusOK, inst)
}

// HandleStopInstance handles POST /v1/instances/:id/stop.
func (s *Server) HandleStopInstance(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleStopInstance")

	id := c.Param("id")
	inst, err := s.instances.Stop(c.Request.Context(), id)
	if err != nil {
		logger.Warn("stop failed", "instance_id", id, "error", err.Error())
		s.instanceError(c, err)
		return
	}

	logger.Info("instance stopped", "instance_id", id, "status", string(inst.Status))
	s.hub.PublishInstanceStatus(inst)
	c.JSON(http.StatusOK, inst)
}

// HandleRefreshInstance handles POST /v1/instances/:id/refresh.
//
// Re-runs hybrid status detection and persists the result. Useful
// after a process died outside aemctl's control.
func (s *Server) HandleRefreshInstance(c *gin.Context) {
	inst, err := s.instances.RefreshStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.instanceError(c, err)
		return
	}
	s.hub.PublishInstanceStatus(inst)
	c.JSON(http.StatusOK, inst)
}

// HandleInstanceHealth handles GET /v1/instances/:id/health.
//
// Response:
//
//	200 OK: models.HealthReport (Reachable=false when the console is down)
//	404 Not Found: unknown instance
func (s *Server) HandleInstanceHealth(c *gin.Context) {
	report, err := s.instances.CheckHealth(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.instanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// instanceError maps instance and store errors onto HTTP status codes.
func (s *Server) instanceError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errCode := "INSTANCE_OPERATION_FAILED"

	switch {
	case errors.Is(err, store.ErrInstanceNotFound):
		statusCode = http.StatusNotFound
		errCode = "INSTANCE_NOT_FOUND"
	case errors.Is(err, store.ErrDuplicateName):
		statusCode = http.StatusConflict
		errCode = "DUPLICATE_NAME"
	case errors.Is(err, instance.ErrAlreadyRunning):
		statusCode = http.StatusConflict
		errCode = "ALREADY_RUNNING"
	case errors.Is(err, instance.ErrNotRunning):
		statusCode = http.StatusConflict
		errCode = "NOT_RUNNING"
	}

	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}
