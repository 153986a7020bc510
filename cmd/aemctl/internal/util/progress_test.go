// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// testSpinner returns a spinner writing to buf with a short interval.
// A bytes.Buffer is not a terminal, so Plain mode is forced off
// explicitly to exercise the animation path.
func testSpinner(buf *bytes.Buffer, plain bool) *Spinner {
	return NewSpinner(SpinnerConfig{
		Message:  "scanning",
		Interval: 5 * time.Millisecond,
		Writer:   buf,
		Plain:    plain,
	})
}

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := testSpinner(&buf, false)

	s.Start()
	if !s.IsRunning() {
		t.Error("spinner should be running after Start")
	}
	time.Sleep(25 * time.Millisecond)
	s.Stop()
	if s.IsRunning() {
		t.Error("spinner should not be running after Stop")
	}
	if !strings.Contains(buf.String(), "scanning") {
		t.Error("spinner never rendered its message")
	}
}

func TestSpinner_DoubleStartStop(t *testing.T) {
	var buf bytes.Buffer
	s := testSpinner(&buf, false)
	s.Start()
	s.Start() // no-op
	s.Stop()
	s.Stop() // no-op
	s.StopFailure("late") // no-op on stopped spinner
	if strings.Contains(buf.String(), "late") {
		t.Error("Stop* on a stopped spinner must not write")
	}
}

func TestSpinner_StopSuccessAndFailure(t *testing.T) {
	var buf bytes.Buffer
	s := testSpinner(&buf, true)
	s.Start()
	s.StopSuccess("scan complete")
	if !strings.Contains(buf.String(), "✓ scan complete") {
		t.Errorf("missing success line in %q", buf.String())
	}

	buf.Reset()
	s = testSpinner(&buf, true)
	s.Start()
	s.StopFailure("")
	if !strings.Contains(buf.String(), "✗ Failed") {
		t.Errorf("missing default failure line in %q", buf.String())
	}
}

func TestSpinner_PlainMode(t *testing.T) {
	var buf bytes.Buffer
	s := testSpinner(&buf, true)
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	// Plain mode prints the message once, no escape codes.
	out := buf.String()
	if strings.Count(out, "scanning") != 1 {
		t.Errorf("plain mode should print message exactly once: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("plain mode must not emit escape codes: %q", out)
	}
}

func TestSpinWhile(t *testing.T) {
	wantErr := errors.New("boom")
	if err := SpinWhile("failing op", func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("SpinWhile error = %v, want %v", err, wantErr)
	}
	if err := SpinWhile("ok op", func() error { return nil }); err != nil {
		t.Errorf("SpinWhile error = %v, want nil", err)
	}
}

func TestSpinWhileContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)
	err := SpinWhileContext(ctx, "stuck op", func() error {
		<-block
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
