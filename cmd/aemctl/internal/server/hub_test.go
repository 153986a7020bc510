// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/pkg/logging"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(logging.New(logging.Config{Quiet: true}), nil)
	t.Cleanup(h.Close)
	return h
}

// dialHub stands up an httptest server around the hub's socket handler
// and connects a client to it.
func dialHub(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(ts.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/status"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) StatusEvent {
	t.Helper()
	if err := ws.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var event StatusEvent
	if err := ws.ReadJSON(&event); err != nil {
		t.Fatalf("reading status event: %v", err)
	}
	return event
}

func TestHub_ReplayThenLiveEvents(t *testing.T) {
	ts := newTestServer(t)

	// Published before any client connects; must arrive as replay.
	ts.srv.hub.PublishInstanceStatus(models.Instance{
		ID: "inst-1", Name: "author", Status: models.StatusStarting,
	})

	ws := dialHub(t, ts)

	replayed := readEvent(t, ws)
	if replayed.InstanceID != "inst-1" || replayed.Status != models.StatusStarting {
		t.Errorf("replayed event = %+v", replayed)
	}

	waitForClients(t, ts.srv.hub, 1)
	ts.srv.hub.PublishInstanceStatus(models.Instance{
		ID: "inst-1", Name: "author", Status: models.StatusRunning, PID: 4242,
	})

	live := readEvent(t, ws)
	if live.Status != models.StatusRunning || live.PID != 4242 {
		t.Errorf("live event = %+v", live)
	}
}

func TestHub_ReplayCapsAtBufferSize(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < statusReplaySize+10; i++ {
		ts.srv.hub.Publish(StatusEvent{InstanceID: "inst-1", Status: models.StatusRunning, PID: i})
	}
	if got := ts.srv.hub.replay.Size(); got != statusReplaySize {
		t.Fatalf("replay size = %d, want %d", got, statusReplaySize)
	}

	ws := dialHub(t, ts)

	// Oldest surviving event is number 10; the first 10 were evicted.
	first := readEvent(t, ws)
	if first.PID != 10 {
		t.Errorf("first replayed PID = %d, want 10", first.PID)
	}
}

func TestHub_PublishWithNoClientsDoesNotBlock(t *testing.T) {
	h := testHub(t)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish(StatusEvent{InstanceID: "inst-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no clients connected")
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	ts := newTestServer(t)
	ws := dialHub(t, ts)

	waitForClients(t, ts.srv.hub, 1)
	ts.srv.hub.Close()

	if err := ws.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var event StatusEvent
	if err := ws.ReadJSON(&event); err == nil {
		t.Error("expected read to fail after hub close")
	}

	// Publishing after close is a silent no-op.
	ts.srv.hub.Publish(StatusEvent{InstanceID: "late"})
	if ts.srv.hub.ClientCount() != 0 {
		t.Errorf("client count after close = %d", ts.srv.hub.ClientCount())
	}
}

func TestHub_CloseClearsClientGauge(t *testing.T) {
	ts := newTestServer(t)
	ws := dialHub(t, ts)

	waitForClients(t, ts.srv.hub, 1)
	if got := testutil.ToFloat64(ts.srv.metrics.WSClients); got != 1 {
		t.Fatalf("ws client gauge = %v, want 1", got)
	}

	ts.srv.hub.Close()
	if got := testutil.ToFloat64(ts.srv.metrics.WSClients); got != 0 {
		t.Errorf("ws client gauge after close = %v, want 0", got)
	}

	// Let the handler goroutine run its deferred cleanup; it must not
	// decrement a second time for a client Close already removed.
	ws.Close()
	time.Sleep(100 * time.Millisecond)
	if got := testutil.ToFloat64(ts.srv.metrics.WSClients); got != 0 {
		t.Errorf("ws client gauge after handler exit = %v, want 0", got)
	}
}

// waitForClients polls until the hub sees the expected client count;
// registration happens on the server goroutine after the dial returns.
func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d", want)
}
