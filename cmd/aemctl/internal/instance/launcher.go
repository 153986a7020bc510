// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package instance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
)

// =============================================================================
// Launcher Interface
// =============================================================================

// Launcher abstracts process-level operations so the controller can be
// tested without spawning a JVM.
type Launcher interface {
	// Launch starts the quickstart process detached and returns its PID.
	Launch(ctx context.Context, inst models.Instance) (int, error)

	// KillByPort terminates whatever process owns the TCP port.
	KillByPort(ctx context.Context, port int) error

	// PortOwner returns the PID and command name of the process
	// listening on the port, or an error when the port is free or
	// ownership cannot be determined.
	PortOwner(ctx context.Context, port int) (int, string, error)

	// ProcessAlive reports whether the PID refers to a live process.
	ProcessAlive(pid int) bool
}

// =============================================================================
// Default Launcher
// =============================================================================

// DefaultLauncher launches quickstart jars with the java binary on
// PATH and inspects port ownership via lsof.
type DefaultLauncher struct {
	// JavaBinary overrides the java executable. Default: "java".
	JavaBinary string
}

var _ Launcher = (*DefaultLauncher)(nil)

// Launch spawns `java <opts> -Dsling.run.modes=... -Dhttp.port=... -jar
// <quickstart>` with the jar's directory as working directory. The
// process is detached into its own session so it survives aemctl
// exiting; its output goes to aemctl-launch.log next to the jar.
func (l *DefaultLauncher) Launch(ctx context.Context, inst models.Instance) (int, error) {
	if _, err := os.Stat(inst.Path); err != nil {
		return 0, fmt.Errorf("quickstart jar: %w", err)
	}

	java := l.JavaBinary
	if java == "" {
		java = "java"
	}

	args := buildLaunchArgs(inst)
	cmd := exec.Command(java, args...)
	cmd.Dir = filepath.Dir(inst.Path)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	logPath := filepath.Join(cmd.Dir, "aemctl-launch.log")
	if logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o640); err == nil {
		cmd.Stdout = logFile
		cmd.Stderr = logFile
		defer logFile.Close()
	}

	if err := cmd.Start(); err != nil {
		return 0, util.NewCommandError(java+" "+strings.Join(args, " "), -1, "", err)
	}
	pid := cmd.Process.Pid
	// Detach: the quickstart outlives this process; never wait on it.
	_ = cmd.Process.Release()

	// Honor a cancellation that raced the spawn.
	if ctx.Err() != nil {
		_ = kill(pid)
		return 0, ctx.Err()
	}
	return pid, nil
}

// buildLaunchArgs assembles the java argument list: user JavaOpts,
// sling run modes and port system properties, then the jar.
func buildLaunchArgs(inst models.Instance) []string {
	var args []string
	if inst.JavaOpts != "" {
		args = append(args, strings.Fields(inst.JavaOpts)...)
	}

	runModes := inst.RunModes
	if len(runModes) == 0 {
		runModes = []string{string(inst.InstanceType)}
	}
	args = append(args,
		fmt.Sprintf("-Dsling.run.modes=%s", strings.Join(runModes, ",")),
		fmt.Sprintf("-Dhttp.port=%d", inst.Port),
		"-jar", inst.Path,
		"-nointeractive",
	)
	return args
}

// KillByPort terminates the port's owning process: TERM first, KILL
// if the PID cannot be signaled normally.
func (l *DefaultLauncher) KillByPort(ctx context.Context, port int) error {
	pid, _, err := l.PortOwner(ctx, port)
	if err != nil {
		return err
	}
	return kill(pid)
}

// PortOwner shells out to lsof; the command name comes from ps so
// callers can tell a JVM from an unrelated squatter.
func (l *DefaultLauncher) PortOwner(ctx context.Context, port int) (int, string, error) {
	var out, stderr bytes.Buffer
	lsof := exec.CommandContext(ctx, "lsof", "-ti", fmt.Sprintf(":%d", port), "-sTCP:LISTEN")
	lsof.Stdout = &out
	lsof.Stderr = &stderr
	if err := lsof.Run(); err != nil {
		return 0, "", util.WrapCommandError(err, "lsof", exitCode(err), stderr.String())
	}

	first := strings.TrimSpace(strings.SplitN(out.String(), "\n", 2)[0])
	pid, err := strconv.Atoi(first)
	if err != nil {
		return 0, "", fmt.Errorf("parse lsof output %q: %w", first, err)
	}

	out.Reset()
	ps := exec.CommandContext(ctx, "ps", "-o", "comm=", "-p", strconv.Itoa(pid))
	ps.Stdout = &out
	if err := ps.Run(); err != nil {
		// PID without a command name is still useful.
		return pid, "", nil
	}
	command := filepath.Base(strings.TrimSpace(out.String()))
	return pid, command, nil
}

// ProcessAlive checks the PID with signal 0.
func (l *DefaultLauncher) ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func kill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return proc.Kill()
	}
	return nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
