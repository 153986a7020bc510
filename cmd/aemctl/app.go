// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/config"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/bootstrap"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/envswitch"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/instance"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/profile"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/scan"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

// appContext wires the subsystems a command needs. Commands receive a
// fully constructed context and never build subsystems themselves.
type appContext struct {
	cfg       config.AemctlConfig
	logger    *logging.Logger
	store     *store.Store
	journal   *journal.Journal
	scanner   *scan.Scanner
	switcher  envswitch.Switcher
	profiles  *profile.Manager
	instances instance.Controller
	env       *bootstrap.Environment
}

// openApp loads config and constructs every subsystem. The store
// requires an initialized data directory; `aemctl init` creates it.
func openApp() (*appContext, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   parseLogLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "aemctl",
	})

	st, err := store.Open(cfg.DataDir, logger)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("opening data store (run `aemctl init` first?): %w", err)
	}

	sw, err := envswitch.New(envswitch.Config{Store: st, Logger: logger})
	if err != nil {
		st.Close()
		logger.Close()
		return nil, err
	}

	configPath, err := config.Path()
	if err != nil {
		st.Close()
		logger.Close()
		return nil, err
	}
	env, err := bootstrap.New(bootstrap.Config{
		BaseDir:    filepath.Dir(configPath),
		ConfigPath: configPath,
		DataDir:    cfg.DataDir,
		Switcher:   sw,
		Logger:     logger,
	})
	if err != nil {
		st.Close()
		logger.Close()
		return nil, err
	}

	j, err := journal.Open(journal.Config{
		Path: filepath.Join(cfg.DataDir, "journal"),
	})
	if err != nil {
		// The journal is bookkeeping; a locked or corrupt journal must
		// not take the whole CLI down.
		logger.Warn("journal unavailable, events will not be recorded", "error", err.Error())
		j = nil
	}

	mgr, err := profile.New(profile.Config{
		Store:    st,
		Switcher: sw,
		Journal:  j,
		Logger:   logger,
	})
	if err != nil {
		st.Close()
		logger.Close()
		return nil, err
	}

	ctrl, err := instance.NewController(instance.Config{
		Store:         st,
		Journal:       j,
		Logger:        logger,
		AdminUser:     cfg.Lifecycle.AdminUser,
		AdminPassword: cfg.Lifecycle.AdminPassword,
		StartSettle:   cfg.Lifecycle.StartSettle(),
		StopSettle:    cfg.Lifecycle.StopSettle(),
	})
	if err != nil {
		st.Close()
		logger.Close()
		return nil, err
	}

	return &appContext{
		cfg:    cfg,
		logger: logger,
		store:  st,
		journal: j,
		scanner: scan.New(
			cfg.Scan.JavaPaths,
			cfg.Scan.NodePaths,
			cfg.Scan.InstancePaths,
			cfg.Scan.MavenPaths,
			logger,
		),
		switcher:  sw,
		profiles:  mgr,
		instances: ctrl,
		env:       env,
	}, nil
}

// closeData releases the store and journal. Safe to call twice; the
// reset command closes them early so the data directory can be
// removed out from under them.
func (a *appContext) closeData() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("journal close failed", "error", err.Error())
		}
		a.journal = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("store close failed", "error", err.Error())
		}
		a.store = nil
	}
}

// Close releases the store, journal, and log file.
func (a *appContext) Close() {
	a.closeData()
	a.logger.Close()
}

// withApp adapts an appContext-consuming function into a cobra Run.
// Errors print to stderr and exit nonzero.
func withApp(run func(a *appContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		app, err := openApp()
		if err != nil {
			printError("%v", err)
			os.Exit(CLIExitError)
		}
		defer app.Close()

		if err := run(app, cmd, args); err != nil {
			printError("%v", err)
			app.Close()
			os.Exit(CLIExitError)
		}
	}
}

func parseLogLevel(level string) logging.Level {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// shortTime renders timestamps for table cells.
func shortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
