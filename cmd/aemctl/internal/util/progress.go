// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// =============================================================================
// Progress Indicator Interface
// =============================================================================

// ProgressIndicator provides visual feedback during long-running
// operations such as instance startup or filesystem scans.
//
// Implementations must be safe for concurrent use.
type ProgressIndicator interface {
	// Start begins the progress indication.
	Start()

	// Stop halts the progress indication.
	Stop()

	// SetMessage updates the displayed message.
	SetMessage(message string)

	// IsRunning returns whether the indicator is active.
	IsRunning() bool
}

// =============================================================================
// Spinner
// =============================================================================

// SpinnerConfig configures spinner behavior. All fields have sensible
// defaults applied by NewSpinner.
type SpinnerConfig struct {
	// Message is the text displayed next to the spinner.
	Message string

	// Interval is the time between frame updates. Default: 100ms.
	Interval time.Duration

	// Frames are the animation characters. Default: Braille dots.
	Frames []string

	// Writer is where output is written. Default: os.Stderr.
	Writer io.Writer

	// Plain disables animation and prints Message once. Set
	// automatically when Writer is not a terminal.
	Plain bool
}

// DefaultSpinnerConfig returns the standard spinner setup.
func DefaultSpinnerConfig() SpinnerConfig {
	return SpinnerConfig{
		Message:  "Working...",
		Interval: 100 * time.Millisecond,
		Frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Writer:   os.Stderr,
	}
}

// Spinner is an animated CLI progress indicator. When the output is
// not a terminal (piped, CI) it degrades to a single plain line.
type Spinner struct {
	config  SpinnerConfig
	frame   int
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
}

var _ ProgressIndicator = (*Spinner)(nil)

// NewSpinner creates a spinner, applying defaults for zero-value
// config fields and detecting non-TTY writers.
func NewSpinner(config SpinnerConfig) *Spinner {
	if config.Interval <= 0 {
		config.Interval = 100 * time.Millisecond
	}
	if len(config.Frames) == 0 {
		config.Frames = DefaultSpinnerConfig().Frames
	}
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	if f, ok := config.Writer.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			config.Plain = true
		}
	}
	return &Spinner{config: config}
}

// Start begins the animation. Calling Start on a running spinner is a
// no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	plain := s.config.Plain
	s.mu.Unlock()

	if plain {
		fmt.Fprintf(s.config.Writer, "%s\n", s.config.Message)
		close(s.doneCh)
		return
	}
	go s.spin()
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	if !s.halt() {
		return
	}
	if !s.config.Plain {
		s.clearLine()
	}
}

// StopSuccess halts the animation and prints a checkmark line.
func (s *Spinner) StopSuccess(message string) {
	if !s.halt() {
		return
	}
	if !s.config.Plain {
		s.clearLine()
	}
	if message == "" {
		message = "Done"
	}
	fmt.Fprintf(s.config.Writer, "✓ %s\n", message)
}

// StopFailure halts the animation and prints a failure line.
func (s *Spinner) StopFailure(message string) {
	if !s.halt() {
		return
	}
	if !s.config.Plain {
		s.clearLine()
	}
	if message == "" {
		message = "Failed"
	}
	fmt.Fprintf(s.config.Writer, "✗ %s\n", message)
}

// SetMessage updates the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Message = message
}

// IsRunning reports whether the spinner is active.
func (s *Spinner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// halt stops the spin goroutine and waits for it to exit. Returns
// false if the spinner was not running.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
	return true
}

func (s *Spinner) spin() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	frame := s.config.Frames[s.frame%len(s.config.Frames)]
	message := s.config.Message
	s.frame++
	s.mu.Unlock()
	fmt.Fprintf(s.config.Writer, "\r%s %s", frame, message)
}

func (s *Spinner) clearLine() {
	fmt.Fprint(s.config.Writer, "\r\033[K")
}

// =============================================================================
// Convenience Wrappers
// =============================================================================

// SpinWhile runs fn with a spinner displayed, stopping with a success
// or failure line based on fn's error.
func SpinWhile(message string, fn func() error) error {
	config := DefaultSpinnerConfig()
	config.Message = message
	spinner := NewSpinner(config)
	spinner.Start()

	err := fn()
	if err != nil {
		spinner.StopFailure(fmt.Sprintf("%s: %v", message, err))
		return err
	}
	spinner.StopSuccess(message)
	return nil
}

// SpinWhileContext is SpinWhile with cancellation: if ctx is done
// before fn returns, the spinner stops with a failure line and the
// context error is returned. fn keeps running in the background until
// it returns on its own.
func SpinWhileContext(ctx context.Context, message string, fn func() error) error {
	config := DefaultSpinnerConfig()
	config.Message = message
	spinner := NewSpinner(config)
	spinner.Start()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		if err != nil {
			spinner.StopFailure(fmt.Sprintf("%s: %v", message, err))
			return err
		}
		spinner.StopSuccess(message)
		return nil
	case <-ctx.Done():
		spinner.StopFailure(fmt.Sprintf("%s: %v", message, ctx.Err()))
		return ctx.Err()
	}
}
