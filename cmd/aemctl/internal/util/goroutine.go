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
	"runtime/debug"
)

// =============================================================================
// Goroutine Safety
// =============================================================================

// PanicInfo carries details about a recovered panic.
type PanicInfo struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the panic site.
	Stack string
}

// Error formats the panic for logging.
func (p PanicInfo) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// SafeGo runs fn in a new goroutine with panic recovery. A panic is
// converted into a PanicInfo and handed to onPanic instead of crashing
// the process. Used for background work like status broadcasting where
// one bad event must not take the daemon down.
func SafeGo(fn func(), onPanic func(PanicInfo)) {
	go func() {
		defer RecoverPanic(onPanic)()
		fn()
	}()
}

// SafeGoWithContext is SafeGo for functions that take a context.
func SafeGoWithContext(ctx context.Context, fn func(context.Context), onPanic func(PanicInfo)) {
	go func() {
		defer RecoverPanic(onPanic)()
		fn(ctx)
	}()
}

// RecoverPanic returns a deferred-callable that recovers a panic and
// reports it to onPanic. A nil onPanic swallows the panic silently.
//
//	defer RecoverPanic(func(p PanicInfo) { log.Error(p.Error()) })()
func RecoverPanic(onPanic func(PanicInfo)) func() {
	return func() {
		if v := recover(); v != nil {
			if onPanic != nil {
				onPanic(PanicInfo{Value: v, Stack: string(debug.Stack())})
			}
		}
	}
}
