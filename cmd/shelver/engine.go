package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shelver/internal/daemon"
	"shelver/internal/logging"
	"shelver/internal/records"
)

// withEngine builds the full engine for commands that mutate pipeline state.
// The daemon lock guarantees the CLI never races a running shelverd over the
// same registry.
func withEngine(cmdCtx *commandContext, ctx context.Context, fn func(context.Context, *daemon.Daemon) error) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: "warn", Format: cfg.Logging.Format})
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, d)
}

// waitForTerminal polls the store until the record reaches a terminal state
// or the context expires.
func waitForTerminal(ctx context.Context, d *daemon.Daemon, id string, timeout time.Duration) (*records.FileRecord, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		rec, err := d.Store().Get(id)
		if err != nil {
			return nil, err
		}
		if rec.Status.IsTerminal() {
			return rec, nil
		}
		if time.Now().After(deadline) {
			return rec, errors.New("timed out waiting for the pipeline to finish")
		}
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-ticker.C:
		}
	}
}

func reportOutcome(rec *records.FileRecord) string {
	status := colorize(displayLabel(string(rec.Status)), statusColor(rec.Status))
	switch rec.Status {
	case records.StatusCompleted:
		folder := ""
		if rec.Classification != nil {
			folder = rec.Classification.DestinationFolder
		}
		return fmt.Sprintf("%s: %s → %s", status, rec.CurrentName(), folder)
	case records.StatusError, records.StatusBypassed:
		if _, log := rec.LastError(); log != nil && log.Error != nil {
			return fmt.Sprintf("%s: %s (%s)", status, rec.CurrentName(), log.Error.Message)
		}
	}
	return fmt.Sprintf("%s: %s", status, rec.CurrentName())
}
