// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package importer runs batch imports of reconciled candidates.

Imports are strictly sequential: one candidate is parsed and registered
at a time, because the per-item backend work may be resource-bound and
progress must be reported deterministically. A per-item failure is logged
and the loop continues; there is no abort and no rollback of items that
already succeeded. The caller reloads the canonical list afterwards.
*/
package importer

import (
	"context"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/reconcile"
	"github.com/aemdev/aemctl/pkg/logging"
)

// ImportFunc registers one candidate under the given display name.
// Implementations are provided by the Maven and license stores.
type ImportFunc func(ctx context.Context, name, path string) error

// ProgressFunc receives the running tally after each item, completed
// first, then the batch total.
type ProgressFunc func(current, total int)

// Result is the aggregate outcome of a batch import.
type Result struct {
	SuccessCount int
	FailCount    int
}

// Orchestrator imports selected candidates one at a time.
//
// # Thread Safety
//
// An Orchestrator is safe for concurrent use; it holds no mutable state
// between runs.
type Orchestrator struct {
	logger *logging.Logger
}

// New creates an Orchestrator. A nil logger falls back to the default.
func New(logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{logger: logger}
}

// ImportAll imports the selected candidates sequentially.
//
// Each candidate's display name follows the derive chain: normalized
// name, parent directory, synthetic timestamp+index. Failures are
// counted and logged but never stop the loop. The context is checked
// between items; on cancellation the tally so far is returned together
// with the context error, and remaining items are skipped.
//
// progress may be nil.
func (o *Orchestrator) ImportAll(ctx context.Context, selected []models.Candidate, fn ImportFunc, progress ProgressFunc) (Result, error) {
	var result Result
	total := len(selected)

	for i, candidate := range selected {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("batch import cancelled",
				"completed", i,
				"total", total,
			)
			return result, err
		}

		name := reconcile.DeriveName(candidate, i)
		if err := fn(ctx, name, candidate.Path); err != nil {
			result.FailCount++
			o.logger.Error("import failed",
				"name", name,
				"path", candidate.Path,
				"error", err.Error(),
			)
		} else {
			result.SuccessCount++
		}

		if progress != nil {
			progress(i+1, total)
		}
	}

	o.logger.Info("batch import finished",
		"succeeded", result.SuccessCount,
		"failed", result.FailCount,
	)
	return result, nil
}
