// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package instance drives the AEM quickstart process lifecycle:
// launching, graceful shutdown, hybrid status detection, and Felix
// console health checks.
package instance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
	"github.com/aemdev/aemctl/pkg/logging"
)

// Sentinel errors for lifecycle preconditions.
var (
	ErrAlreadyRunning = errors.New("instance is already running or starting")
	ErrNotRunning     = errors.New("instance is not running")
)

// =============================================================================
// Controller Interface
// =============================================================================

// Controller manages local AEM instance processes.
//
// # Description
//
// Start and Stop set the transitional status (starting/stopping)
// optimistically before touching the process, wait a settle delay,
// then persist whatever hybrid detection actually observes. A failed
// launch therefore rolls back by re-detection, not by undo logic.
//
// # Thread Safety
//
// Safe for concurrent use; per-instance races (two Starts for the
// same ID) are resolved by the status precondition checks.
type Controller interface {
	// Start launches the instance and returns its post-settle state.
	Start(ctx context.Context, id string) (models.Instance, error)

	// Stop shuts the instance down and returns its post-settle state.
	Stop(ctx context.Context, id string) (models.Instance, error)

	// RefreshStatus runs hybrid detection and persists the result.
	RefreshStatus(ctx context.Context, id string) (models.Instance, error)

	// DetectStatus runs hybrid detection without persisting.
	DetectStatus(ctx context.Context, inst models.Instance) models.InstanceStatus

	// CheckHealth queries the Felix console of a running instance.
	CheckHealth(ctx context.Context, id string) (models.HealthReport, error)
}

// =============================================================================
// Default Controller
// =============================================================================

// Config configures a DefaultController.
type Config struct {
	// Store persists instance status transitions. Required.
	Store *store.Store

	// Journal records lifecycle events. Optional.
	Journal *journal.Journal

	// Logger may be nil; the default logger is used.
	Logger *logging.Logger

	// Launcher may be nil; a DefaultLauncher is used.
	Launcher Launcher

	// HTTPClient is used for shutdown, status and health requests.
	// Timeouts are applied per-request; the client itself needs none.
	HTTPClient *http.Client

	// AdminUser and AdminPassword authenticate console requests.
	// Default: admin/admin, the quickstart's development default.
	AdminUser     string
	AdminPassword string

	// StartSettle and StopSettle are the delays between issuing a
	// lifecycle command and re-detecting status.
	StartSettle time.Duration
	StopSettle  time.Duration

	// TCPTimeout and HTTPTimeout bound the status probes.
	TCPTimeout  time.Duration
	HTTPTimeout time.Duration
}

// DefaultController is the production Controller.
type DefaultController struct {
	store       *store.Store
	journal     *journal.Journal
	logger      *logging.Logger
	launcher    Launcher
	client      *http.Client
	adminUser   string
	adminPass   string
	startSettle time.Duration
	stopSettle  time.Duration
	tcpTimeout  time.Duration
	httpTimeout time.Duration
}

var _ Controller = (*DefaultController)(nil)

// NewController creates a DefaultController with defaults applied.
func NewController(cfg Config) (*DefaultController, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("instance: store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Launcher == nil {
		cfg.Launcher = &DefaultLauncher{}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin"
	}

	return &DefaultController{
		store:       cfg.Store,
		journal:     cfg.Journal,
		logger:      cfg.Logger,
		launcher:    cfg.Launcher,
		client:      cfg.HTTPClient,
		adminUser:   cfg.AdminUser,
		adminPass:   cfg.AdminPassword,
		startSettle: util.EnforceDefaultTimeout(cfg.StartSettle, 2*time.Second),
		stopSettle:  util.EnforceDefaultTimeout(cfg.StopSettle, 1500*time.Millisecond),
		tcpTimeout:  util.EnforceDefaultTimeout(cfg.TCPTimeout, util.DefaultTCPTimeout),
		httpTimeout: util.EnforceDefaultTimeout(cfg.HTTPTimeout, util.DefaultHTTPTimeout),
	}, nil
}

// =============================================================================
// Lifecycle Operations
// =============================================================================

// Start launches the instance's quickstart jar.
func (c *DefaultController) Start(ctx context.Context, id string) (models.Instance, error) {
	inst, err := c.store.GetInstance(id)
	if err != nil {
		return models.Instance{}, err
	}
	if inst.Status == models.StatusRunning || inst.Status == models.StatusStarting {
		return inst, fmt.Errorf("%w: %s", ErrAlreadyRunning, inst.Name)
	}

	// Optimistic transition so concurrent listings show progress.
	if _, err := c.store.SetInstanceStatus(id, models.StatusStarting, 0); err != nil {
		return models.Instance{}, err
	}

	pid, err := c.launcher.Launch(ctx, inst)
	if err != nil {
		c.logger.Error("instance launch failed", "name", inst.Name, "error", err.Error())
		// Rollback by re-detection: persist what is actually true.
		if refreshed, rerr := c.RefreshStatus(ctx, id); rerr == nil {
			return refreshed, err
		}
		return inst, err
	}
	if _, err := c.store.SetInstanceStatus(id, models.StatusStarting, pid); err != nil {
		return models.Instance{}, err
	}
	c.logger.Info("instance launched", "name", inst.Name, "pid", pid, "port", inst.Port)

	if err := c.settle(ctx, c.startSettle); err != nil {
		return inst, err
	}

	refreshed, err := c.RefreshStatus(ctx, id)
	if err != nil {
		return models.Instance{}, err
	}
	c.record(journal.KindInstanceStarted, refreshed,
		fmt.Sprintf("started %s on port %d", refreshed.Name, refreshed.Port))
	return refreshed, nil
}

// Stop shuts the instance down: graceful console shutdown first,
// kill-by-port as fallback.
func (c *DefaultController) Stop(ctx context.Context, id string) (models.Instance, error) {
	inst, err := c.store.GetInstance(id)
	if err != nil {
		return models.Instance{}, err
	}
	if inst.Status != models.StatusRunning && inst.Status != models.StatusStarting {
		return inst, fmt.Errorf("%w: %s", ErrNotRunning, inst.Name)
	}

	if _, err := c.store.SetInstanceStatus(id, models.StatusStopping, inst.PID); err != nil {
		return models.Instance{}, err
	}

	if err := c.shutdownViaConsole(ctx, inst); err != nil {
		c.logger.Warn("console shutdown failed, killing by port",
			"name", inst.Name, "port", inst.Port, "error", err.Error())
		if killErr := c.launcher.KillByPort(ctx, inst.Port); killErr != nil {
			c.logger.Error("kill by port failed", "name", inst.Name, "error", killErr.Error())
			refreshed, rerr := c.RefreshStatus(ctx, id)
			if rerr != nil {
				return models.Instance{}, rerr
			}
			return refreshed, fmt.Errorf("stop %s: %w", inst.Name, killErr)
		}
	}

	if err := c.settle(ctx, c.stopSettle); err != nil {
		return inst, err
	}

	refreshed, err := c.RefreshStatus(ctx, id)
	if err != nil {
		return models.Instance{}, err
	}
	c.record(journal.KindInstanceStopped, refreshed,
		fmt.Sprintf("stopped %s", refreshed.Name))
	return refreshed, nil
}

// shutdownViaConsole POSTs the Felix vmstat shutdown command.
func (c *DefaultController) shutdownViaConsole(ctx context.Context, inst models.Instance) error {
	ctx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	url := inst.URL() + "/system/console/vmstat?shutdown_type=Stop"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.adminUser, c.adminPass)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("console shutdown returned %s", resp.Status)
	}
	return nil
}

// RefreshStatus persists the detected status. The PID is kept for
// live states and cleared when the instance is down.
func (c *DefaultController) RefreshStatus(ctx context.Context, id string) (models.Instance, error) {
	inst, err := c.store.GetInstance(id)
	if err != nil {
		return models.Instance{}, err
	}

	status := c.DetectStatus(ctx, inst)
	pid := inst.PID
	if status == models.StatusStopped || status == models.StatusPortConflict {
		pid = 0
	}
	return c.store.SetInstanceStatus(id, status, pid)
}

// settle waits for the lifecycle delay, honoring cancellation.
func (c *DefaultController) settle(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// record writes a journal event, best-effort.
func (c *DefaultController) record(kind journal.EventKind, inst models.Instance, summary string) {
	if c.journal == nil {
		return
	}
	err := c.journal.Record(journal.Event{
		Kind:     kind,
		EntityID: inst.ID,
		Summary:  summary,
		Fields: map[string]string{
			"port":   fmt.Sprintf("%d", inst.Port),
			"status": string(inst.Status),
		},
	})
	if err != nil {
		c.logger.Warn("journal write failed", "kind", string(kind), "error", err.Error())
	}
}
