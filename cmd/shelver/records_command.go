package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelver/internal/records"
)

func newRecordsCommand(cmdCtx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List tracked files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var filter records.Status
			if statusFilter != "" {
				parsed, ok := records.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				filter = parsed
			}

			rows := make([][]string, 0, store.Len())
			for _, rec := range store.GetAll() {
				if filter != "" && rec.Status != filter {
					continue
				}
				rows = append(rows, []string{
					rec.ID,
					truncate(rec.CurrentName(), 40),
					colorize(displayLabel(string(rec.Status)), statusColor(rec.Status)),
					displayLabel(string(rec.Cursor())),
					formatTimestamp(rec.LatestTimestamp()),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "File", "Status", "Cursor", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "filter by status (processing, completed, bypassed, error)")
	return cmd
}
