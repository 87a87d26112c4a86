package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelver/internal/queries"
)

func newIssuesCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List files stuck in error or bypassed, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			issues := queries.RecentIssues(store, limit)
			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No issues.")
				return nil
			}

			rows := make([][]string, 0, len(issues))
			for _, issue := range issues {
				rows = append(rows, []string{
					issue.Record.ID,
					truncate(issue.Record.CurrentName(), 40),
					colorize(displayLabel(string(issue.Record.Status)), statusColor(issue.Record.Status)),
					displayLabel(string(issue.Action)),
					truncate(issue.Message, 60),
					formatTimestamp(issue.At),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "File", "Status", "Failed At", "Message", "When"},
				rows,
				nil,
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of issues to show")
	return cmd
}
