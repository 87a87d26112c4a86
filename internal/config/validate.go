package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks cross-field constraints after normalization.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.VaultDir) == "" {
		problems = append(problems, "paths.vault_dir must be set")
	}
	if c.Paths.InboxDir == c.Paths.ErrorDir {
		problems = append(problems, "paths.error_dir must differ from paths.inbox_dir")
	}
	if c.Paths.InboxDir == c.Paths.BypassDir {
		problems = append(problems, "paths.bypass_dir must differ from paths.inbox_dir")
	}
	for _, pattern := range c.Validation.IgnorePatterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			problems = append(problems, fmt.Sprintf("validation.ignore_patterns: invalid pattern %q", pattern))
		}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
