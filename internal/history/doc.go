// Package history keeps an append-only audit trail of stage executions in
// SQLite. Record logs are overwritten when a stage is retried, so the history
// database preserves the full attempt-by-attempt story for troubleshooting.
package history
