// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all aemctl API routes with the router group.
//
// Description:
//
//	Registers every /v1/* endpoint with the given Gin router group.
//	The group should already carry any required middleware.
//
// Discovery Endpoints:
//
//	GET  /v1/scan/java - Discover installed JVMs
//	GET  /v1/scan/node - Discover installed Node.js versions
//	GET  /v1/scan/managers - Detect version managers (sdkman, nvm, ...)
//	GET  /v1/scan/maven - Discover Maven settings.xml candidates
//	GET  /v1/scan/licenses - Discover license.properties files under a root
//	GET  /v1/scan/licenses/defaults - Scan the default license locations
//	GET  /v1/scan/instances - Discover AEM quickstart jars
//
// Profile Endpoints:
//
//	GET    /v1/profiles - List profiles
//	POST   /v1/profiles - Create a profile
//	GET    /v1/profiles/:id - Get a profile
//	PUT    /v1/profiles/:id - Update a profile
//	DELETE /v1/profiles/:id - Delete a profile
//	POST   /v1/profiles/:id/activate - Activate with environment side effects
//	POST   /v1/profiles/:id/duplicate - Copy a profile under a fresh name
//	GET    /v1/profiles/:id/export - Export one profile as YAML
//	POST   /v1/profiles/import - Import a YAML profile
//
// Instance Endpoints:
//
//	GET    /v1/instances - List instances
//	POST   /v1/instances - Register an instance
//	GET    /v1/instances/:id - Get an instance
//	PUT    /v1/instances/:id - Update an instance
//	DELETE /v1/instances/:id - Deregister an instance
//	POST   /v1/instances/:id/start - Launch the quickstart process
//	POST   /v1/instances/:id/stop - Stop the process
//	POST   /v1/instances/:id/refresh - Re-detect and persist status
//	GET    /v1/instances/:id/health - Query the Felix console
//
// License Endpoints:
//
//	GET    /v1/licenses - List licenses
//	POST   /v1/licenses - Register a license
//	GET    /v1/licenses/:id - Get a license
//	PUT    /v1/licenses/:id - Update a license
//	DELETE /v1/licenses/:id - Delete a license
//	POST   /v1/licenses/parse - Parse a license.properties file
//
// Maven Endpoints:
//
//	GET    /v1/maven - List Maven configs
//	POST   /v1/maven - Register a Maven config
//	GET    /v1/maven/:id - Get a Maven config
//	DELETE /v1/maven/:id - Delete a Maven config
//	POST   /v1/maven/:id/activate - Install the config as ~/.m2/settings.xml
//
// Environment Endpoints:
//
//	GET  /v1/environment/status - Bootstrap and symlink status
//	POST /v1/environment/init - Create the base directory layout
//	POST /v1/environment/export - Export config and data as a zip bundle
//	POST /v1/environment/import - Import a previously exported bundle
//	POST /v1/environment/reset - Wipe and re-initialize everything
//	POST /v1/switch/java - Repoint the java "current" symlink
//	POST /v1/switch/node - Repoint the node "current" symlink
//	GET  /v1/events - Recent journal events
//
// Health Endpoints:
//
//	GET /v1/health - Liveness check
//	GET /v1/ready - Readiness check with store counts
//
// Example:
//
//	srv, _ := server.New(server.Config{...})
//	router := gin.New()
//	v1 := router.Group("/v1")
//	srv.RegisterRoutes(v1)
func (s *Server) RegisterRoutes(rg *gin.RouterGroup) {
	scanGroup := rg.Group("/scan")
	{
		scanGroup.GET("/java", s.HandleScanJava)
		scanGroup.GET("/node", s.HandleScanNode)
		scanGroup.GET("/managers", s.HandleDetectManagers)
		scanGroup.GET("/maven", s.HandleScanMaven)
		scanGroup.GET("/licenses", s.HandleScanLicenses)
		scanGroup.GET("/licenses/defaults", s.HandleScanDefaultLicenses)
		scanGroup.GET("/instances", s.HandleScanInstances)
	}

	profiles := rg.Group("/profiles")
	{
		profiles.GET("", s.HandleListProfiles)
		profiles.POST("", s.HandleCreateProfile)
		profiles.POST("/import", s.HandleImportProfile)
		profiles.GET("/:id", s.HandleGetProfile)
		profiles.PUT("/:id", s.HandleUpdateProfile)
		profiles.DELETE("/:id", s.HandleDeleteProfile)
		profiles.POST("/:id/activate", s.HandleActivateProfile)
		profiles.POST("/:id/duplicate", s.HandleDuplicateProfile)
		profiles.GET("/:id/export", s.HandleExportProfile)
	}

	instances := rg.Group("/instances")
	{
		instances.GET("", s.HandleListInstances)
		instances.POST("", s.HandleCreateInstance)
		instances.GET("/:id", s.HandleGetInstance)
		instances.PUT("/:id", s.HandleUpdateInstance)
		instances.DELETE("/:id", s.HandleDeleteInstance)
		instances.POST("/:id/start", s.HandleStartInstance)
		instances.POST("/:id/stop", s.HandleStopInstance)
		instances.POST("/:id/refresh", s.HandleRefreshInstance)
		instances.GET("/:id/health", s.HandleInstanceHealth)
	}

	licenses := rg.Group("/licenses")
	{
		licenses.GET("", s.HandleListLicenses)
		licenses.POST("", s.HandleCreateLicense)
		licenses.POST("/parse", s.HandleParseLicense)
		licenses.GET("/:id", s.HandleGetLicense)
		licenses.PUT("/:id", s.HandleUpdateLicense)
		licenses.DELETE("/:id", s.HandleDeleteLicense)
	}

	maven := rg.Group("/maven")
	{
		maven.GET("", s.HandleListMavenConfigs)
		maven.POST("", s.HandleCreateMavenConfig)
		maven.GET("/:id", s.HandleGetMavenConfig)
		maven.DELETE("/:id", s.HandleDeleteMavenConfig)
		maven.POST("/:id/activate", s.HandleActivateMavenConfig)
	}

	env := rg.Group("/environment")
	{
		env.GET("/status", s.HandleEnvironmentStatus)
		env.POST("/init", s.HandleInitializeEnvironment)
		env.POST("/export", s.HandleExportEnvironment)
		env.POST("/import", s.HandleImportEnvironment)
		env.POST("/reset", s.HandleResetEnvironment)
	}

	switchGroup := rg.Group("/switch")
	{
		switchGroup.POST("/java", s.HandleSwitchJava)
		switchGroup.POST("/node", s.HandleSwitchNode)
	}

	rg.GET("/events", s.HandleRecentEvents)

	rg.GET("/health", s.HandleHealth)
	rg.GET("/ready", s.HandleReady)
}
