// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/server"
)

func runServe(a *appContext, cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = a.cfg.HTTP.Addr
	}

	srv, err := server.New(server.Config{
		Addr:      addr,
		Store:     a.store,
		Scanner:   a.scanner,
		Profiles:  a.profiles,
		Instances: a.instances,
		Switcher:  a.switcher,
		Env:       a.env,
		Journal:   a.journal,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSuccess("serving on http://%s (ctrl-c to stop)", addr)
	fmt.Println("  api:     /v1")
	fmt.Println("  events:  /ws/status")
	fmt.Println("  metrics: /metrics")

	return srv.Run(ctx)
}
