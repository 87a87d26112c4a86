// Package testsupport centralizes fixtures shared across package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"shelver/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp vault per test. The
// directories exist on return and the config is normalized.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.VaultDir = filepath.Join(base, "vault")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.LLM.APIKey = "test"
	cfg.Workflow.PersistDebounceMs = 5
	cfg.Workflow.WatchSettleMs = 5

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithMaxFileSizeMiB caps the validation size limit on the test config.
func WithMaxFileSizeMiB(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Validation.MaxFileSizeMiB = size
	}
}

// WithTemplate points the formatting stage at a template file.
func WithTemplate(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Formatting.TemplatePath = path
	}
}
