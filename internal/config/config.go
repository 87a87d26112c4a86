package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration. InboxDir, ErrorDir, BypassDir, and
// AttachmentsDir are resolved relative to VaultDir when not absolute.
type Paths struct {
	VaultDir       string `toml:"vault_dir"`
	InboxDir       string `toml:"inbox_dir"`
	ErrorDir       string `toml:"error_dir"`
	BypassDir      string `toml:"bypass_dir"`
	AttachmentsDir string `toml:"attachments_dir"`
	LogDir         string `toml:"log_dir"`
}

// Workflow contains pipeline scheduling and persistence timing.
type Workflow struct {
	Workers           int `toml:"workers"`
	QueueSize         int `toml:"queue_size"`
	WatchSettleMs     int `toml:"watch_settle_ms"`
	PersistDebounceMs int `toml:"persist_debounce_ms"`
	StageTimeout      int `toml:"stage_timeout"`
}

// Validation contains the rules the validate stage enforces.
type Validation struct {
	MaxFileSizeMiB    int      `toml:"max_file_size_mib"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	IgnorePatterns    []string `toml:"ignore_patterns"`
}

// LLM contains connection settings for the classification service.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcription contains settings for the audio transcription service.
type Transcription struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// YouTube contains settings for the video transcript fetcher.
type YouTube struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Formatting contains the optional template and append targets used by the
// formatting and append stages.
type Formatting struct {
	TemplatePath string `toml:"template_path"`
	AppendTo     string `toml:"append_to"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completed      bool   `toml:"completed"`
	Bypassed       bool   `toml:"bypassed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shelver.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workflow      Workflow      `toml:"workflow"`
	Validation    Validation    `toml:"validation"`
	LLM           LLM           `toml:"llm"`
	Transcription Transcription `toml:"transcription"`
	YouTube       YouTube       `toml:"youtube"`
	Formatting    Formatting    `toml:"formatting"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shelver/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes and validates a programmatically built config. Load
// does this automatically; callers constructing a Config by hand (tests,
// embedders) call it before use.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("shelver.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs to run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.VaultDir,
		c.Paths.InboxDir,
		c.Paths.ErrorDir,
		c.Paths.BypassDir,
		c.Paths.AttachmentsDir,
		c.Paths.LogDir,
	} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RecordDocumentPath returns the location of the record registry document.
func (c *Config) RecordDocumentPath() string {
	return filepath.Join(c.Paths.LogDir, "records.json")
}

// HistoryDBPath returns the location of the stage-event history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

// WatchSettle returns the watcher write-settle window.
func (c *Config) WatchSettle() time.Duration {
	return time.Duration(c.Workflow.WatchSettleMs) * time.Millisecond
}

// PersistDebounce returns the record store write-coalescing window.
func (c *Config) PersistDebounce() time.Duration {
	return time.Duration(c.Workflow.PersistDebounceMs) * time.Millisecond
}

// StageTimeout returns the per-call budget for external collaborators.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Workflow.StageTimeout) * time.Second
}

// MaxFileSize returns the validate stage size limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.Validation.MaxFileSizeMiB) * 1024 * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
