package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shelver/internal/daemon"
)

const pipelineWait = 10 * time.Minute

func newRetryCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <record-id>",
		Short: "Return an errored or bypassed file to the inbox and resume it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmdCtx, cmd.Context(), func(ctx context.Context, d *daemon.Daemon) error {
				rec, err := d.Runner().Retry(args[0])
				if err != nil {
					return err
				}
				rec, err = waitForTerminal(ctx, d, rec.ID, pipelineWait)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reportOutcome(rec))
				return nil
			})
		},
	}
}

func newRequeueCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <record-id>",
		Short: "Run a completed file through the pipeline again from scratch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmdCtx, cmd.Context(), func(ctx context.Context, d *daemon.Daemon) error {
				rec, err := d.Runner().Requeue(args[0])
				if err != nil {
					return err
				}
				rec, err = waitForTerminal(ctx, d, rec.ID, pipelineWait)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reportOutcome(rec))
				return nil
			})
		},
	}
}
