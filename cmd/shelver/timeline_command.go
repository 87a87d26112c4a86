package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelver/internal/queries"
)

func newTimelineCommand(cmdCtx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "timeline <record-id>",
		Short: "Show a record's stage history with durations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}

			entries, total := queries.Timeline(rec)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", rec.CurrentName(), colorize(displayLabel(string(rec.Status)), statusColor(rec.Status)))

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				outcome := "completed"
				detail := entry.Log.Detail
				switch {
				case entry.Log.Skipped:
					outcome = "skipped"
				case entry.Log.Error != nil && entry.Log.Error.Bypass:
					outcome = "bypassed"
					detail = entry.Log.Error.Message
				case entry.Log.Error != nil:
					outcome = "errored"
					detail = entry.Log.Error.Message
				}
				rows = append(rows, []string{
					displayLabel(string(entry.Action)),
					outcome,
					truncate(detail, 60),
					formatTimestamp(entry.Log.Timestamp),
					formatDuration(entry.Duration),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Outcome", "Detail", "At", "Took"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "Total: %s\n", formatDuration(total))

			if !full {
				return nil
			}
			hist, err := cmdCtx.openHistory()
			if err != nil {
				return err
			}
			defer hist.Close()

			events, err := hist.ByRecord(cmd.Context(), rec.ID)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nAll attempts:")
			attemptRows := make([][]string, 0, len(events))
			for _, event := range events {
				attemptRows = append(attemptRows, []string{
					displayLabel(string(event.Action)),
					string(event.Outcome),
					truncate(event.Detail, 60),
					formatTimestamp(event.CreatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Outcome", "Detail", "At"},
				attemptRows,
				nil,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include every past attempt from the audit history")
	return cmd
}
