// Package config loads, normalizes, and validates shelver configuration.
//
// Configuration lives in a single TOML file. Load applies repository
// defaults, decodes the file when present, expands ~ in every path field,
// and validates cross-field constraints before anything else starts. Other
// packages receive a *Config by injection from the process root; nothing in
// the repository reads configuration globally.
package config
