// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package server exposes the aemctl environment over HTTP.
//
// # Description
//
// Every operation the CLI offers is also available as a REST endpoint
// under /v1, so editor plugins and local dashboards can drive the same
// store, scanner, and lifecycle code paths. The server binds loopback
// only by default; it carries no authentication and must never be
// exposed beyond the developer machine.
//
// # Thread Safety
//
// Handlers are safe for concurrent use; the store and journal provide
// their own locking, and instance lifecycle calls serialize per
// instance inside the controller.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/bootstrap"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/envswitch"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/instance"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/profile"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/scan"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

// DefaultAddr is the loopback listen address used when none is given.
const DefaultAddr = "127.0.0.1:7645"

// Config assembles the subsystems the server fronts.
type Config struct {
	// Addr is the listen address. Default: DefaultAddr.
	Addr string

	// Store is the persistence layer. Required.
	Store *store.Store

	// Scanner performs filesystem discovery. Required.
	Scanner *scan.Scanner

	// Profiles manages profile CRUD and activation. Required.
	Profiles *profile.Manager

	// Instances controls AEM process lifecycle. Required.
	Instances instance.Controller

	// Switcher manages java/node symlinks and the shell block. Required.
	Switcher envswitch.Switcher

	// Env handles bootstrap, reset, and bundle export/import. Required.
	Env *bootstrap.Environment

	// Journal records audit events and serves the events endpoint.
	// Optional.
	Journal *journal.Journal

	// Logger may be nil; the default logger is used.
	Logger *logging.Logger
}

// Server is the aemctl HTTP API.
type Server struct {
	addr      string
	store     *store.Store
	scanner   *scan.Scanner
	profiles  *profile.Manager
	instances instance.Controller
	switcher  envswitch.Switcher
	env       *bootstrap.Environment
	journal   *journal.Journal
	hub       *Hub
	metrics   *Metrics
	logger    *logging.Logger
}

// New validates the config and builds a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: Store is required")
	}
	if cfg.Scanner == nil {
		return nil, fmt.Errorf("server: Scanner is required")
	}
	if cfg.Profiles == nil {
		return nil, fmt.Errorf("server: Profiles is required")
	}
	if cfg.Instances == nil {
		return nil, fmt.Errorf("server: Instances is required")
	}
	if cfg.Switcher == nil {
		return nil, fmt.Errorf("server: Switcher is required")
	}
	if cfg.Env == nil {
		return nil, fmt.Errorf("server: Env is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	metrics := NewMetrics()
	return &Server{
		addr:      cfg.Addr,
		store:     cfg.Store,
		scanner:   cfg.Scanner,
		profiles:  cfg.Profiles,
		instances: cfg.Instances,
		switcher:  cfg.Switcher,
		env:       cfg.Env,
		journal:   cfg.Journal,
		hub:       NewHub(cfg.Logger, metrics),
		metrics:   metrics,
		logger:    cfg.Logger,
	}, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.metrics.Middleware())

	v1 := router.Group("/v1")
	s.RegisterRoutes(v1)

	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.GET("/ws/status", s.hub.HandleStatusSocket)
	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("aemctl API listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// HandleHealth handles GET /v1/health.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: APIVersion,
	})
}

// HandleReady handles GET /v1/ready.
//
// Ready means the store is open and readable; the counts double as a
// cheap smoke signal for dashboards.
func (s *Server) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:         true,
		ProfileCount:  len(s.store.ListProfiles()),
		InstanceCount: len(s.store.ListInstances()),
	})
}
