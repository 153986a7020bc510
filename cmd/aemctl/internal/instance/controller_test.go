// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package instance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/journal"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/store"
	"github.com/aemdev/aemctl/pkg/logging"
)

// testController wires a controller to a temp store with short settle
// and probe delays so tests stay fast.
func testController(t *testing.T, launcher Launcher, j *journal.Journal) (*DefaultController, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir(), logging.New(logging.Config{Quiet: true}))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	c, err := NewController(Config{
		Store:       st,
		Journal:     j,
		Logger:      logging.New(logging.Config{Quiet: true}),
		Launcher:    launcher,
		StartSettle: 10 * time.Millisecond,
		StopSettle:  10 * time.Millisecond,
		TCPTimeout:  100 * time.Millisecond,
		HTTPTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return c, st
}

// addInstance stores an author instance on the given port.
func addInstance(t *testing.T, st *store.Store, port int, status models.InstanceStatus) models.Instance {
	t.Helper()
	inst, err := st.AddInstance(models.Instance{
		Name:         "local author",
		InstanceType: models.InstanceAuthor,
		Host:         "127.0.0.1",
		Port:         port,
		Path:         "/opt/aem/author/aem-author-p4502.jar",
	})
	if err != nil {
		t.Fatalf("AddInstance() error = %v", err)
	}
	if status != models.StatusStopped {
		inst, err = st.SetInstanceStatus(inst.ID, status, 0)
		if err != nil {
			t.Fatal(err)
		}
	}
	return inst
}

// serverPort extracts the TCP port of an httptest server.
func serverPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return port
}

// =============================================================================
// Start Tests
// =============================================================================

func TestStart_LaunchedButNotListening(t *testing.T) {
	launcher := &MockLauncher{
		LaunchFunc:       func(_ context.Context, _ models.Instance) (int, error) { return 4242, nil },
		ProcessAliveFunc: func(pid int) bool { return pid == 4242 },
	}
	c, st := testController(t, launcher, nil)
	inst := addInstance(t, st, 34502, models.StatusStopped)

	got, err := c.Start(context.Background(), inst.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// Port closed but the JVM is alive: still booting.
	if got.Status != models.StatusStarting {
		t.Errorf("Status = %s, want starting", got.Status)
	}
	if got.PID != 4242 {
		t.Errorf("PID = %d, want 4242", got.PID)
	}
}

func TestStart_ReachesRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	launcher := &MockLauncher{
		PortOwnerFunc: func(_ context.Context, _ int) (int, string, error) { return 4242, "java", nil },
	}
	j, err := journal.Open(journal.Config{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	c, st := testController(t, launcher, j)
	inst := addInstance(t, st, serverPort(t, srv), models.StatusStopped)

	got, err := c.Start(context.Background(), inst.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got.Status != models.StatusRunning {
		t.Errorf("Status = %s, want running", got.Status)
	}

	events, err := j.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != journal.KindInstanceStarted {
		t.Errorf("journal events = %+v, want one instance.started", events)
	}
}

func TestStart_AlreadyRunning(t *testing.T) {
	c, st := testController(t, &MockLauncher{}, nil)
	inst := addInstance(t, st, 34502, models.StatusRunning)

	if _, err := c.Start(context.Background(), inst.ID); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("error = %v, want ErrAlreadyRunning", err)
	}
}

func TestStart_LaunchFailureRollsBackByReload(t *testing.T) {
	launchErr := errors.New("java not found")
	launcher := &MockLauncher{
		LaunchFunc: func(_ context.Context, _ models.Instance) (int, error) { return 0, launchErr },
	}
	c, st := testController(t, launcher, nil)
	inst := addInstance(t, st, 34502, models.StatusStopped)

	got, err := c.Start(context.Background(), inst.ID)
	if !errors.Is(err, launchErr) {
		t.Fatalf("error = %v, want launch error", err)
	}
	// Detection found nothing on the port and no live PID.
	if got.Status != models.StatusStopped {
		t.Errorf("Status = %s, want stopped after failed launch", got.Status)
	}
	persisted, _ := st.GetInstance(inst.ID)
	if persisted.Status != models.StatusStopped {
		t.Errorf("persisted Status = %s, want stopped", persisted.Status)
	}
}

func TestStart_UnknownInstance(t *testing.T) {
	c, _ := testController(t, &MockLauncher{}, nil)
	if _, err := c.Start(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown instance id")
	}
}

// =============================================================================
// Stop Tests
// =============================================================================

func TestStop_GracefulConsoleShutdown(t *testing.T) {
	var gotShutdown atomic.Bool
	var gotAuth atomic.Bool

	srv := httptest.NewUnstartedServer(nil)
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/system/console/vmstat" &&
			r.URL.Query().Get("shutdown_type") == "Stop" {
			if user, pass, ok := r.BasicAuth(); ok && user == "admin" && pass == "admin" {
				gotAuth.Store(true)
			}
			gotShutdown.Store(true)
			w.WriteHeader(http.StatusOK)
			// Quickstart goes away shortly after acknowledging.
			go func() {
				time.Sleep(5 * time.Millisecond)
				srv.Listener.Close()
			}()
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv.Start()
	defer srv.Close()

	c, st := testController(t, &MockLauncher{}, nil)
	inst := addInstance(t, st, serverPort(t, srv), models.StatusRunning)

	got, err := c.Stop(context.Background(), inst.ID)
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !gotShutdown.Load() {
		t.Error("console shutdown endpoint never called")
	}
	if !gotAuth.Load() {
		t.Error("shutdown request missing admin basic auth")
	}
	if got.Status != models.StatusStopped {
		t.Errorf("Status = %s, want stopped", got.Status)
	}
	if got.PID != 0 {
		t.Errorf("PID = %d, want cleared", got.PID)
	}
}

func TestStop_FallsBackToKillByPort(t *testing.T) {
	var killedPort atomic.Int64
	launcher := &MockLauncher{
		KillByPortFunc: func(_ context.Context, port int) error {
			killedPort.Store(int64(port))
			return nil
		},
	}
	c, st := testController(t, launcher, nil)
	// Nothing listens on the port, so the console POST fails.
	inst := addInstance(t, st, 34777, models.StatusRunning)

	got, err := c.Stop(context.Background(), inst.ID)
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if killedPort.Load() != 34777 {
		t.Errorf("killed port = %d, want 34777", killedPort.Load())
	}
	if got.Status != models.StatusStopped {
		t.Errorf("Status = %s, want stopped", got.Status)
	}
}

func TestStop_KillFailureSurfaces(t *testing.T) {
	killErr := errors.New("operation not permitted")
	launcher := &MockLauncher{
		KillByPortFunc: func(_ context.Context, _ int) error { return killErr },
	}
	c, st := testController(t, launcher, nil)
	inst := addInstance(t, st, 34777, models.StatusRunning)

	if _, err := c.Stop(context.Background(), inst.ID); !errors.Is(err, killErr) {
		t.Errorf("error = %v, want kill error", err)
	}
}

func TestStop_NotRunning(t *testing.T) {
	c, st := testController(t, &MockLauncher{}, nil)
	inst := addInstance(t, st, 34502, models.StatusStopped)

	if _, err := c.Stop(context.Background(), inst.ID); !errors.Is(err, ErrNotRunning) {
		t.Errorf("error = %v, want ErrNotRunning", err)
	}
}

// =============================================================================
// Settle Cancellation
// =============================================================================

func TestStart_CancelledDuringSettle(t *testing.T) {
	launcher := &MockLauncher{
		LaunchFunc: func(_ context.Context, _ models.Instance) (int, error) { return 99, nil },
	}
	st, err := store.Open(t.TempDir(), logging.New(logging.Config{Quiet: true}))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	c, err := NewController(Config{
		Store:       st,
		Logger:      logging.New(logging.Config{Quiet: true}),
		Launcher:    launcher,
		StartSettle: 5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	inst := addInstance(t, st, 34502, models.StatusStopped)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = c.Start(ctx, inst.ID)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Start did not return promptly on cancellation")
	}
}
