package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeValidation()
	c.normalizeLLM()
	c.normalizeTranscription()
	c.normalizeYouTube()
	if err := c.normalizeFormatting(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.VaultDir, err = expandPath(c.Paths.VaultDir); err != nil {
		return fmt.Errorf("paths.vault_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	// Vault-relative subdirectories default under the vault root.
	c.Paths.InboxDir = resolveUnder(c.Paths.VaultDir, c.Paths.InboxDir, defaultInboxSubdir)
	c.Paths.ErrorDir = resolveUnder(c.Paths.VaultDir, c.Paths.ErrorDir, defaultErrorSubdir)
	c.Paths.BypassDir = resolveUnder(c.Paths.VaultDir, c.Paths.BypassDir, defaultBypassSubdir)
	c.Paths.AttachmentsDir = resolveUnder(c.Paths.VaultDir, c.Paths.AttachmentsDir, defaultAttachmentsSub)
	return nil
}

func resolveUnder(root, value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkers
	}
	if c.Workflow.QueueSize <= 0 {
		c.Workflow.QueueSize = defaultQueueSize
	}
	if c.Workflow.WatchSettleMs <= 0 {
		c.Workflow.WatchSettleMs = defaultWatchSettleMs
	}
	if c.Workflow.PersistDebounceMs <= 0 {
		c.Workflow.PersistDebounceMs = defaultPersistDebounceMs
	}
	if c.Workflow.StageTimeout <= 0 {
		c.Workflow.StageTimeout = defaultStageTimeout
	}
}

func (c *Config) normalizeValidation() {
	if c.Validation.MaxFileSizeMiB <= 0 {
		c.Validation.MaxFileSizeMiB = defaultMaxFileSizeMiB
	}
	if len(c.Validation.AllowedExtensions) == 0 {
		c.Validation.AllowedExtensions = append([]string(nil), defaultAllowedExtensions...)
	}
	normalized := make([]string, 0, len(c.Validation.AllowedExtensions))
	seen := make(map[string]struct{}, len(c.Validation.AllowedExtensions))
	for _, ext := range c.Validation.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		normalized = append(normalized, ext)
	}
	c.Validation.AllowedExtensions = normalized
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("SHELVER_LLM_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.BaseURL = strings.TrimSpace(c.Transcription.BaseURL)
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = defaultTranscriptionBaseURL
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTimeout
	}
}

func (c *Config) normalizeYouTube() {
	c.YouTube.BaseURL = strings.TrimSpace(c.YouTube.BaseURL)
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeout
	}
}

func (c *Config) normalizeFormatting() error {
	c.Formatting.TemplatePath = strings.TrimSpace(c.Formatting.TemplatePath)
	if c.Formatting.TemplatePath != "" {
		expanded, err := expandPath(c.Formatting.TemplatePath)
		if err != nil {
			return fmt.Errorf("formatting.template_path: %w", err)
		}
		c.Formatting.TemplatePath = expanded
	}
	c.Formatting.AppendTo = strings.TrimSpace(c.Formatting.AppendTo)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}
