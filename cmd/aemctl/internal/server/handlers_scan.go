// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Scan endpoints run synchronously; discovery walks are bounded by the
// scanner's depth limits, so even a cold-cache scan answers in well
// under a second on a development machine.

// HandleScanJava handles GET /v1/scan/java.
func (s *Server) HandleScanJava(c *gin.Context) {
	installs := s.scanner.ScanJavaVersions()
	c.JSON(http.StatusOK, gin.H{"installations": installs, "count": len(installs)})
}

// HandleScanNode handles GET /v1/scan/node.
func (s *Server) HandleScanNode(c *gin.Context) {
	installs := s.scanner.ScanNodeVersions()
	c.JSON(http.StatusOK, gin.H{"installations": installs, "count": len(installs)})
}

// HandleDetectManagers handles GET /v1/scan/managers.
func (s *Server) HandleDetectManagers(c *gin.Context) {
	managers := s.scanner.DetectVersionManagers()
	c.JSON(http.StatusOK, gin.H{"managers": managers, "count": len(managers)})
}

// HandleScanMaven handles GET /v1/scan/maven.
//
// Query Parameters:
//
//	root: Directory to scan instead of the standard locations (optional)
func (s *Server) HandleScanMaven(c *gin.Context) {
	candidates := s.scanner.ScanMavenSettings(c.Query("root"))
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "count": len(candidates)})
}

// HandleScanLicenses handles GET /v1/scan/licenses.
//
// Query Parameters:
//
//	root: Directory to walk for license.properties files (required)
func (s *Server) HandleScanLicenses(c *gin.Context) {
	root := c.Query("root")
	if root == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "root query parameter is required",
			Code:  "MISSING_ROOT",
		})
		return
	}
	candidates := s.scanner.ScanLicenseFiles(root)
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "count": len(candidates)})
}

// HandleScanDefaultLicenses handles GET /v1/scan/licenses/defaults.
func (s *Server) HandleScanDefaultLicenses(c *gin.Context) {
	candidates := s.scanner.ScanDefaultLicenseLocations()
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "count": len(candidates)})
}

// HandleScanInstances handles GET /v1/scan/instances.
func (s *Server) HandleScanInstances(c *gin.Context) {
	discovered := s.scanner.ScanAemInstances()
	c.JSON(http.StatusOK, gin.H{"instances": discovered, "count": len(discovered)})
}
