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

	"github.com/aemdev/aemctl/cmd/aemctl/internal/license"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
)

// HandleListLicenses handles GET /v1/licenses.
func (s *Server) HandleListLicenses(c *gin.Context) {
	licenses := s.store.ListLicenses()
	c.JSON(http.StatusOK, gin.H{
		"licenses": licenses,
		"count":    len(licenses),
		"stats":    license.Summarize(licenses),
	})
}

// HandleGetLicense handles GET /v1/licenses/:id.
func (s *Server) HandleGetLicense(c *gin.Context) {
	lic, err := s.store.GetLicense(c.Param("id"))
	if err != nil {
		s.licenseError(c, err)
		return
	}
	c.JSON(http.StatusOK, lic)
}

// HandleCreateLicense handles POST /v1/licenses.
func (s *Server) HandleCreateLicense(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleCreateLicense")

	var lic models.License
	if err := c.ShouldBindJSON(&lic); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if err := serverValidate.Struct(lic); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
		return
	}

	created, err := s.store.AddLicense(lic)
	if err != nil {
		s.licenseError(c, err)
		return
	}
	logger.Info("license registered", "license_id", created.ID, "product", created.ProductName)
	c.JSON(http.StatusCreated, created)
}

// HandleUpdateLicense handles PUT /v1/licenses/:id.
func (s *Server) HandleUpdateLicense(c *gin.Context) {
	var lic models.License
	if err := c.ShouldBindJSON(&lic); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	lic.ID = c.Param("id")
	if err := serverValidate.Struct(lic); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
		return
	}

	updated, err := s.store.UpdateLicense(lic)
	if err != nil {
		s.licenseError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandleDeleteLicense handles DELETE /v1/licenses/:id.
func (s *Server) HandleDeleteLicense(c *gin.Context) {
	if err := s.store.DeleteLicense(c.Param("id")); err != nil {
		s.licenseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleParseLicense handles POST /v1/licenses/parse.
//
// Description:
//
//	Reads a license.properties file and returns its fields without
//	creating a record, so the client can prefill a registration form.
//
// Request Body:
//
//	ParseLicenseRequest
//
// Response:
//
//	200 OK: models.ParsedLicense
//	400 Bad Request: missing path
//	422 Unprocessable Entity: unreadable or malformed file
func (s *Server) HandleParseLicense(c *gin.Context) {
	var req ParseLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "path is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	parsed, err := license.ParseFile(req.Path)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "PARSE_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, parsed)
}

// licenseError maps license store errors onto HTTP status codes.
func (s *Server) licenseError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errCode := "LICENSE_OPERATION_FAILED"

	switch {
	case errors.Is(err, store.ErrLicenseNotFound):
		statusCode = http.StatusNotFound
		errCode = "LICENSE_NOT_FOUND"
	case errors.Is(err, store.ErrDuplicateName):
		statusCode = http.StatusConflict
		errCode = "DUPLICATE_NAME"
	}

	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}
