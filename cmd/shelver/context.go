package main

import (
	"strings"
	"sync"

	"shelver/internal/config"
	"shelver/internal/history"
	"shelver/internal/logging"
	"shelver/internal/records"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openStore opens the record document for read-style commands. Callers must
// Close it.
func (c *commandContext) openStore() (*records.Store, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := records.Open(cfg.RecordDocumentPath(), logging.NewNop())
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// openHistory opens the audit trail. Callers must Close it.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryDBPath())
}
