// Package logging wraps log/slog with the attribute helpers and context
// stamping used across shelver.
//
// Loggers are constructed once at the process root from configuration and
// passed down by injection. Standardized field keys (record id, action,
// correlation id) keep structured output uniform so log lines from the
// watcher, pipeline, and services correlate on the same identifiers.
package logging
