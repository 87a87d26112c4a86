package preflight

import (
	"context"

	"shelver/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable checks for the given config. Service checks
// only run when the corresponding integration is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Vault", cfg.Paths.VaultDir),
		CheckDirectoryAccess("Inbox", cfg.Paths.InboxDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckHistoryDB(cfg.HistoryDBPath()),
	}

	results = append(results, CheckLLM(ctx, cfg.LLM))

	if cfg.Transcription.Enabled {
		results = append(results, CheckEndpoint(ctx, "Transcription", cfg.Transcription.BaseURL))
	}
	if cfg.YouTube.Enabled {
		results = append(results, CheckEndpoint(ctx, "YouTube transcripts", cfg.YouTube.BaseURL))
	}
	return results
}
