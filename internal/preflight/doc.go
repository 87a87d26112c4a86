// Package preflight verifies the engine's environment before processing:
// vault directories, registry storage, and the configured external services.
package preflight
