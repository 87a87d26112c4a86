// Package daemon assembles the engine: it owns the record store, audit
// history, watcher, and pipeline runner, enforces single-instance execution,
// and drives a clean shutdown.
package daemon
