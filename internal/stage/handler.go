// Package stage defines the contract the pipeline needs from each action
// handler.
package stage

import (
	"context"
	"log/slog"

	"shelver/internal/records"
)

// Run carries the mutable state of one pipeline pass over a single record.
// Content is the working text produced by extraction and consumed by the
// later stages; it is rebuilt from the file on resume rather than persisted.
type Run struct {
	Record  *records.FileRecord
	Content string
}

// Result reports a successful stage attempt. Skipped marks the stage as a
// no-op for this file; Detail is an optional human-readable note.
type Result struct {
	Skipped bool
	Detail  string
}

// Skip builds a skipped Result with the given note.
func Skip(detail string) Result {
	return Result{Skipped: true, Detail: detail}
}

// Done builds a completed Result with the given note.
func Done(detail string) Result {
	return Result{Detail: detail}
}

// Handler executes one action for one record. Errors classify through the
// services sentinels; a services.BypassError routes the record to the
// bypassed terminal state.
type Handler interface {
	Action() records.Action
	Execute(ctx context.Context, run *Run) (Result, error)
}

// LoggerAware is implemented by handlers that accept a per-run logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
